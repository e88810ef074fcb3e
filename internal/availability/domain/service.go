package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

const (
	// LookaheadDays bounds how far into the future scheduled meal plans
	// and pending deliveries are replayed.
	LookaheadDays = 14
	// SupplyShelfBufferDays is the assumed shelf life of a simulated
	// delivery. Real shelf life is not tracked per delivered unit, so the
	// replay gives every arrival a flat buffer after its arrival date.
	SupplyShelfBufferDays = 7
)

// ShortageDetail reports one ingredient the projection found short.
// NeededBy is the date of the first event at which the running quantity
// went negative; ordering a replacement before that date prevents the
// whole downstream cascade.
type ShortageDetail struct {
	IngredientID   snowflake.ID    `json:"ingredient_id"`
	IngredientName string          `json:"ingredient_name"`
	StandardUnit   string          `json:"standard_unit"`
	Shortage       decimal.Decimal `json:"shortage"`
	NeededBy       time.Time       `json:"needed_by"`
}

// Result is the outcome of a timeline availability check.
type Result struct {
	AllAvailable bool             `json:"all_available"`
	Missing      []ShortageDetail `json:"missing,omitempty"`
	Message      string           `json:"message,omitempty"`
}

type CheckRequest struct {
	RecipeID      snowflake.ID
	FridgeID      snowflake.ID
	NeededBy      time.Time
	ExcludePlanID *snowflake.ID
}

type Service interface {
	// Check replays scheduled demand and pending supply against current
	// stock under FIFO discipline and reports projected shortages. A
	// replay failure degrades to AllAvailable=false with a message; it
	// never returns an error for internal simulation faults.
	Check(context.Context, CheckRequest) (Result, error)
	// RefreshMealPlanStatuses recomputes Planned/Ready/Insufficient for
	// every non-terminal meal plan of the fridge's members. Terminal
	// statuses (Finished, Canceled) are never overwritten. Idempotent.
	RefreshMealPlanStatuses(ctx context.Context, fridgeID snowflake.ID) error
}

var ErrRecipeNotFound = errors.New("recipe_not_found")
