package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/homefridge/fridgely/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

type RequirementInput struct {
	IngredientID   snowflake.ID
	QuantityNeeded decimal.Decimal
}

type StepInput struct {
	StepNumber  int
	Description string
}

type CreateRecipeRequest struct {
	OwnerID      snowflake.ID
	Name         string
	Description  string
	CookingTime  int
	Requirements []RequirementInput
	Steps        []StepInput
}

type RequirementDetail struct {
	IngredientID   snowflake.ID    `json:"ingredient_id"`
	IngredientName string          `json:"ingredient_name"`
	StandardUnit   string          `json:"standard_unit"`
	QuantityNeeded decimal.Decimal `json:"quantity_needed"`
}

type RecipeDetail struct {
	Recipe
	Requirements []RequirementDetail `json:"requirements"`
	Steps        []RecipeStep        `json:"steps"`
	AvgRating    *float64            `json:"avg_rating,omitempty"`
	TotalReviews int                 `json:"total_reviews"`
}

type ListRecipeRequest struct {
	Search string
	Page   pagination.Pagination
}

type ListRecipeResponse struct {
	pagination.PageInfo
	Recipes []Recipe `json:"recipes"`
}

type ReviewRequest struct {
	UserID   snowflake.ID
	RecipeID snowflake.ID
	Rating   int
	Comment  string
}

type CookRequest struct {
	RecipeID snowflake.ID
	FridgeID snowflake.ID
	UserID   snowflake.ID
}

type ConsumptionLine struct {
	IngredientName string          `json:"ingredient_name"`
	Quantity       decimal.Decimal `json:"quantity"`
	StandardUnit   string          `json:"standard_unit"`
	BatchesTouched int             `json:"batches_touched"`
}

type CookResult struct {
	RecipeName string            `json:"recipe_name"`
	Consumed   []ConsumptionLine `json:"consumed"`
}

type CreateMealPlanRequest struct {
	UserID      snowflake.ID
	RecipeID    snowflake.ID
	FridgeID    snowflake.ID
	PlannedDate time.Time
}

type ListMealPlanRequest struct {
	UserID    snowflake.ID
	FridgeID  *snowflake.ID
	StartDate *time.Time
	EndDate   *time.Time
}

type MealPlanDetail struct {
	MealPlan
	RecipeName string `json:"recipe_name"`
}

type Service interface {
	Create(context.Context, CreateRecipeRequest) (Recipe, error)
	Get(ctx context.Context, id snowflake.ID) (RecipeDetail, error)
	List(context.Context, ListRecipeRequest) (ListRecipeResponse, error)
	Review(context.Context, ReviewRequest) error
	ListReviews(ctx context.Context, recipeID snowflake.ID) ([]RecipeReview, error)

	// Cook consumes every requirement of the recipe from the fridge via
	// the FIFO ledger. All shortages are checked up front and reported
	// together before anything is consumed.
	Cook(context.Context, CookRequest) (CookResult, error)

	CreateMealPlan(context.Context, CreateMealPlanRequest) (MealPlan, error)
	ListMealPlans(context.Context, ListMealPlanRequest) ([]MealPlanDetail, error)
	// CompleteMealPlan cooks the plan's recipe and marks it Finished.
	CompleteMealPlan(ctx context.Context, planID, userID snowflake.ID) (CookResult, error)
	CancelMealPlan(ctx context.Context, planID, userID snowflake.ID) error
}

var (
	ErrNotFound           = errors.New("recipe_not_found")
	ErrInvalidName        = errors.New("invalid_name")
	ErrNoRequirements     = errors.New("recipe_requirements_required")
	ErrInvalidRequirement = errors.New("invalid_requirement_quantity")
	ErrInvalidRating      = errors.New("invalid_rating")
	ErrPlanNotFound       = errors.New("meal_plan_not_found")
	ErrPlanTerminal       = errors.New("meal_plan_terminal")
	ErrShortIngredient    = errors.New("insufficient_ingredients")
)

// ShortIngredientsError lists every requirement the fridge cannot cover.
// errors.Is(err, ErrShortIngredient) matches it.
type ShortIngredientsError struct {
	Shortages []string
}

func (e *ShortIngredientsError) Error() string {
	return fmt.Sprintf("insufficient ingredients: %s", strings.Join(e.Shortages, ", "))
}

func (e *ShortIngredientsError) Is(target error) bool {
	return target == ErrShortIngredient
}
