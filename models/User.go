package models

import "gorm.io/gorm"

// User represents a staff account that can sign in to manage inventory.
type User struct {
	gorm.Model
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Name         string
}
