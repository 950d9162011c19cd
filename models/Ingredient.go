package models

import (
	"gorm.io/gorm"
)

// Ingredient is a catalog entry. Rows are immutable once created.
type Ingredient struct {
	gorm.Model
	Name     string `gorm:"uniqueIndex;not null" json:"name"`
	Category string `gorm:"index" json:"category"`
	Unit     string `gorm:"not null" json:"unit"`
}
