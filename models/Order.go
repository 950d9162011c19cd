package models

import (
	"time"

	"gorm.io/gorm"
)

// Order records a supplier delivery. DateReceived carries a calendar date only.
type Order struct {
	gorm.Model
	SupplierName string    `gorm:"index;not null" json:"supplier_name"`
	DateReceived time.Time `gorm:"type:date;not null" json:"date_received"`
}
