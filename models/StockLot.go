package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLot is the receipt of one ingredient within one order.
type StockLot struct {
	OrderID         uint            `gorm:"primaryKey;autoIncrement:false" json:"order_id"`
	IngredientID    uint            `gorm:"primaryKey;autoIncrement:false;index" json:"ingredient_id"`
	InitialQuantity decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"initial_quantity"`
	CurrentQuantity decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"current_quantity"`
	Unit            string          `gorm:"not null" json:"unit"`
	Location        string          `json:"location"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// SpoilageWindow stores the onset and hard limit of spoilage, in days from receipt.
type SpoilageWindow struct {
	OrderID      uint      `gorm:"primaryKey;autoIncrement:false" json:"order_id"`
	IngredientID uint      `gorm:"primaryKey;autoIncrement:false" json:"ingredient_id"`
	MinDays      int       `gorm:"not null" json:"spoilage_min_days"`
	MaxDays      int       `gorm:"not null" json:"spoilage_max_days"`
	CreatedAt    time.Time `json:"created_at"`
}

// ConsumptionRecord is an append-only log entry for a successful use of stock.
type ConsumptionRecord struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	OrderID           uint            `gorm:"index:idx_consumption_lot;not null" json:"order_id"`
	IngredientID      uint            `gorm:"index:idx_consumption_lot;not null" json:"ingredient_id"`
	QuantityUsed      decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"quantity_used"`
	RemainingQuantity decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"remaining_quantity"`
	UsedBy            *uint           `json:"used_by,omitempty"`
	RequestID         string          `gorm:"type:varchar(64)" json:"request_id,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}
