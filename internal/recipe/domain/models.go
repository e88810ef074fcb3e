package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Recipe is a user-authored recipe.
type Recipe struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	OwnerID     snowflake.ID `gorm:"not null;index" json:"owner_id"`
	Name        string       `gorm:"type:text;not null" json:"name"`
	Description string       `gorm:"type:text" json:"description,omitempty"`
	CookingTime int          `gorm:"not null;default:0" json:"cooking_time"`
	Status      string       `gorm:"type:text;not null;default:'Published'" json:"status"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Recipe) TableName() string { return "recipes" }

// RecipeRequirement is the per-batch ingredient need of a recipe, in the
// ingredient's standard unit.
type RecipeRequirement struct {
	RecipeID       snowflake.ID    `gorm:"primaryKey" json:"recipe_id"`
	IngredientID   snowflake.ID    `gorm:"primaryKey" json:"ingredient_id"`
	QuantityNeeded decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"quantity_needed"`
}

// TableName sets the database table name.
func (RecipeRequirement) TableName() string { return "recipe_requirements" }

// RecipeStep is one ordered instruction.
type RecipeStep struct {
	RecipeID    snowflake.ID `gorm:"primaryKey" json:"recipe_id"`
	StepNumber  int          `gorm:"primaryKey" json:"step_number"`
	Description string       `gorm:"type:text;not null" json:"description"`
}

// TableName sets the database table name.
func (RecipeStep) TableName() string { return "recipe_steps" }

// RecipeReview is one user's rating of a recipe, upserted per user.
type RecipeReview struct {
	UserID     snowflake.ID `gorm:"primaryKey" json:"user_id"`
	RecipeID   snowflake.ID `gorm:"primaryKey" json:"recipe_id"`
	Rating     int          `gorm:"not null" json:"rating"`
	Comment    string       `gorm:"type:text" json:"comment,omitempty"`
	ReviewDate time.Time    `gorm:"not null" json:"review_date"`
}

// TableName sets the database table name.
func (RecipeReview) TableName() string { return "recipe_reviews" }

// PlanStatus is the lifecycle state of a meal plan. Planned, Ready and
// Insufficient are derived by the availability simulator; Finished and
// Canceled are terminal and only set by explicit user actions.
type PlanStatus string

const (
	PlanStatusPlanned      PlanStatus = "Planned"
	PlanStatusReady        PlanStatus = "Ready"
	PlanStatusInsufficient PlanStatus = "Insufficient"
	PlanStatusFinished     PlanStatus = "Finished"
	PlanStatusCanceled     PlanStatus = "Canceled"
)

func (s PlanStatus) Terminal() bool {
	return s == PlanStatusFinished || s == PlanStatusCanceled
}

// MealPlan schedules a recipe to be cooked from a fridge on a date.
type MealPlan struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID      snowflake.ID `gorm:"not null;index" json:"user_id"`
	RecipeID    snowflake.ID `gorm:"not null;index" json:"recipe_id"`
	FridgeID    snowflake.ID `gorm:"not null;index" json:"fridge_id"`
	PlannedDate time.Time    `gorm:"type:date;not null" json:"planned_date"`
	Status      PlanStatus   `gorm:"type:text;not null;default:'Planned'" json:"status"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (MealPlan) TableName() string { return "meal_plans" }
