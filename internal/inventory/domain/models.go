package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Batch is one acquisition of an ingredient in a fridge. A batch whose
// quantity reaches zero through consumption is deleted, never kept around.
// Batches with identical expiry dates are kept separate to preserve
// acquisition provenance; FIFO ordering falls back to entry date, then ID.
type Batch struct {
	ID           snowflake.ID    `gorm:"primaryKey" json:"id"`
	FridgeID     snowflake.ID    `gorm:"not null;index:idx_batches_fridge_ingredient,priority:1" json:"fridge_id"`
	IngredientID snowflake.ID    `gorm:"not null;index:idx_batches_fridge_ingredient,priority:2" json:"ingredient_id"`
	Quantity     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"quantity"`
	EntryDate    time.Time       `gorm:"type:date;not null" json:"entry_date"`
	ExpiryDate   time.Time       `gorm:"type:date;not null" json:"expiry_date"`
	CreatedAt    time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Batch) TableName() string { return "batches" }

// Receipt summarizes one FIFO consumption.
type Receipt struct {
	IngredientID   snowflake.ID    `json:"ingredient_id"`
	IngredientName string          `json:"ingredient_name"`
	StandardUnit   string          `json:"standard_unit"`
	Requested      decimal.Decimal `json:"requested"`
	Consumed       decimal.Decimal `json:"consumed"`
	Remaining      decimal.Decimal `json:"remaining"`
	BatchesTouched int             `json:"batches_touched"`
}

// FridgeItem is a batch joined with its ingredient for listing.
type FridgeItem struct {
	BatchID         snowflake.ID    `json:"batch_id"`
	FridgeID        snowflake.ID    `json:"fridge_id"`
	IngredientID    snowflake.ID    `json:"ingredient_id"`
	IngredientName  string          `json:"ingredient_name"`
	StandardUnit    string          `json:"standard_unit"`
	Quantity        decimal.Decimal `json:"quantity"`
	EntryDate       time.Time       `json:"entry_date"`
	ExpiryDate      time.Time       `json:"expiry_date"`
	DaysUntilExpiry int             `json:"days_until_expiry"`
}
