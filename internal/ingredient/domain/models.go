package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Unit is the standard unit an ingredient is measured in.
type Unit string

const (
	UnitGrams       Unit = "g"
	UnitMilliliters Unit = "ml"
	UnitPieces      Unit = "pcs"
)

func (u Unit) Valid() bool {
	switch u {
	case UnitGrams, UnitMilliliters, UnitPieces:
		return true
	default:
		return false
	}
}

// Ingredient is a standardized ingredient every fridge item, recipe
// requirement and supplier product refers back to.
type Ingredient struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	Name          string       `gorm:"type:text;not null;uniqueIndex" json:"name"`
	StandardUnit  Unit         `gorm:"type:text;not null" json:"standard_unit"`
	ShelfLifeDays int          `gorm:"not null" json:"shelf_life_days"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Ingredient) TableName() string { return "ingredients" }
