package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	availabilitydomain "github.com/homefridge/fridgely/internal/availability/domain"
	"github.com/homefridge/fridgely/internal/clock"
	inventorydomain "github.com/homefridge/fridgely/internal/inventory/domain"
	"github.com/homefridge/fridgely/internal/recipe/domain"
	"github.com/homefridge/fridgely/pkg/db/pagination"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Inventory inventorydomain.Service
	Avail     availabilitydomain.Service
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	inventory inventorydomain.Service
	avail     availabilitydomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("recipe.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		inventory: p.Inventory,
		avail:     p.Avail,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRecipeRequest) (domain.Recipe, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Recipe{}, domain.ErrInvalidName
	}
	if len(req.Requirements) == 0 {
		return domain.Recipe{}, domain.ErrNoRequirements
	}
	for _, r := range req.Requirements {
		if r.QuantityNeeded.LessThanOrEqual(decimal.Zero) {
			return domain.Recipe{}, domain.ErrInvalidRequirement
		}
	}

	now := s.clock.Now()
	recipe := domain.Recipe{
		ID:          s.genID.Generate(),
		OwnerID:     req.OwnerID,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		CookingTime: req.CookingTime,
		Status:      "Published",
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&recipe).Error; err != nil {
			return err
		}
		for _, r := range req.Requirements {
			requirement := domain.RecipeRequirement{
				RecipeID:       recipe.ID,
				IngredientID:   r.IngredientID,
				QuantityNeeded: r.QuantityNeeded,
			}
			if err := tx.Create(&requirement).Error; err != nil {
				return err
			}
		}
		for _, st := range req.Steps {
			step := domain.RecipeStep{
				RecipeID:    recipe.ID,
				StepNumber:  st.StepNumber,
				Description: strings.TrimSpace(st.Description),
			}
			if err := tx.Create(&step).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Recipe{}, err
	}

	return recipe, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (domain.RecipeDetail, error) {
	var recipe domain.Recipe
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&recipe).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeDetail{}, domain.ErrNotFound
		}
		return domain.RecipeDetail{}, err
	}

	requirements, err := s.requirementDetails(ctx, id)
	if err != nil {
		return domain.RecipeDetail{}, err
	}

	var steps []domain.RecipeStep
	err = s.db.WithContext(ctx).
		Where("recipe_id = ?", id).
		Order("step_number ASC").
		Find(&steps).Error
	if err != nil {
		return domain.RecipeDetail{}, err
	}

	detail := domain.RecipeDetail{
		Recipe:       recipe,
		Requirements: requirements,
		Steps:        steps,
	}

	var rating struct {
		Avg   *float64
		Count int
	}
	err = s.db.WithContext(ctx).Raw(
		`SELECT AVG(rating) AS avg, COUNT(rating) AS count
		 FROM recipe_reviews WHERE recipe_id = ?`, id,
	).Scan(&rating).Error
	if err != nil {
		return domain.RecipeDetail{}, err
	}
	detail.AvgRating = rating.Avg
	detail.TotalReviews = rating.Count

	return detail, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRecipeRequest) (domain.ListRecipeResponse, error) {
	limit := req.Page.Limit()
	stmt := s.db.WithContext(ctx).Model(&domain.Recipe{})
	if search := strings.TrimSpace(req.Search); search != "" {
		stmt = stmt.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	if req.Page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(req.Page.PageToken)
		if err != nil {
			return domain.ListRecipeResponse{}, err
		}
		afterID, err := snowflake.ParseString(cursor.ID)
		if err != nil {
			return domain.ListRecipeResponse{}, err
		}
		stmt = stmt.Where("id > ?", afterID)
	}

	var recipes []domain.Recipe
	if err := stmt.Order("id ASC").Limit(limit + 1).Find(&recipes).Error; err != nil {
		return domain.ListRecipeResponse{}, err
	}

	resp := domain.ListRecipeResponse{Recipes: recipes}
	if len(recipes) > limit {
		resp.Recipes = recipes[:limit]
		resp.HasMore = true
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID: resp.Recipes[limit-1].ID.String(),
		})
		if err != nil {
			return domain.ListRecipeResponse{}, err
		}
		resp.NextPageToken = token
	}
	return resp, nil
}

func (s *Service) Review(ctx context.Context, req domain.ReviewRequest) error {
	if req.Rating < 1 || req.Rating > 5 {
		return domain.ErrInvalidRating
	}
	if err := s.ensureRecipe(ctx, req.RecipeID); err != nil {
		return err
	}

	review := domain.RecipeReview{
		UserID:     req.UserID,
		RecipeID:   req.RecipeID,
		Rating:     req.Rating,
		Comment:    strings.TrimSpace(req.Comment),
		ReviewDate: s.clock.Now(),
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&review).Error
}

func (s *Service) ListReviews(ctx context.Context, recipeID snowflake.ID) ([]domain.RecipeReview, error) {
	var reviews []domain.RecipeReview
	err := s.db.WithContext(ctx).
		Where("recipe_id = ?", recipeID).
		Order("review_date DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

func (s *Service) Cook(ctx context.Context, req domain.CookRequest) (domain.CookResult, error) {
	var recipe domain.Recipe
	err := s.db.WithContext(ctx).Where("id = ?", req.RecipeID).Take(&recipe).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.CookResult{}, domain.ErrNotFound
		}
		return domain.CookResult{}, err
	}

	requirements, err := s.requirementDetails(ctx, req.RecipeID)
	if err != nil {
		return domain.CookResult{}, err
	}
	if len(requirements) == 0 {
		return domain.CookResult{}, domain.ErrNoRequirements
	}

	// One fridge scan up front so every shortage is reported at once,
	// instead of failing midway through consumption.
	available, err := s.fridgeTotals(ctx, req.FridgeID)
	if err != nil {
		return domain.CookResult{}, err
	}

	var shortages []string
	for _, r := range requirements {
		have := available[r.IngredientID]
		if have.LessThan(r.QuantityNeeded) {
			shortages = append(shortages, fmt.Sprintf("%s: need %s %s, have %s %s",
				r.IngredientName, r.QuantityNeeded, r.StandardUnit, have, r.StandardUnit))
		}
	}
	if len(shortages) > 0 {
		return domain.CookResult{}, &domain.ShortIngredientsError{Shortages: shortages}
	}

	result := domain.CookResult{RecipeName: recipe.Name}
	for _, r := range requirements {
		receipt, err := s.inventory.Consume(ctx, inventorydomain.ConsumeRequest{
			FridgeID:     req.FridgeID,
			IngredientID: r.IngredientID,
			Quantity:     r.QuantityNeeded,
		})
		if err != nil {
			return domain.CookResult{}, err
		}
		result.Consumed = append(result.Consumed, domain.ConsumptionLine{
			IngredientName: receipt.IngredientName,
			Quantity:       receipt.Consumed,
			StandardUnit:   receipt.StandardUnit,
			BatchesTouched: receipt.BatchesTouched,
		})
	}

	s.log.Info("recipe cooked",
		zap.String("recipe", recipe.Name),
		zap.String("fridge_id", req.FridgeID.String()),
		zap.Int("ingredients", len(result.Consumed)),
	)
	return result, nil
}

func (s *Service) CreateMealPlan(ctx context.Context, req domain.CreateMealPlanRequest) (domain.MealPlan, error) {
	if err := s.ensureRecipe(ctx, req.RecipeID); err != nil {
		return domain.MealPlan{}, err
	}

	now := s.clock.Now()
	plan := domain.MealPlan{
		ID:          s.genID.Generate(),
		UserID:      req.UserID,
		RecipeID:    req.RecipeID,
		FridgeID:    req.FridgeID,
		PlannedDate: clock.Midnight(req.PlannedDate),
		Status:      domain.PlanStatusPlanned,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.db.WithContext(ctx).Create(&plan).Error; err != nil {
		return domain.MealPlan{}, err
	}

	s.refreshStatuses(ctx, req.FridgeID)

	// Re-read so the caller sees the freshly derived status.
	var stored domain.MealPlan
	if err := s.db.WithContext(ctx).Where("id = ?", plan.ID).Take(&stored).Error; err != nil {
		return plan, nil
	}
	return stored, nil
}

func (s *Service) ListMealPlans(ctx context.Context, req domain.ListMealPlanRequest) ([]domain.MealPlanDetail, error) {
	stmt := s.db.WithContext(ctx).
		Table("meal_plans mp").
		Select("mp.*, r.name AS recipe_name").
		Joins("JOIN recipes r ON r.id = mp.recipe_id").
		Where("mp.user_id = ?", req.UserID)
	if req.FridgeID != nil {
		stmt = stmt.Where("mp.fridge_id = ?", *req.FridgeID)
	}
	if req.StartDate != nil {
		stmt = stmt.Where("mp.planned_date >= ?", clock.Midnight(*req.StartDate))
	}
	if req.EndDate != nil {
		stmt = stmt.Where("mp.planned_date <= ?", clock.Midnight(*req.EndDate))
	}

	var plans []domain.MealPlanDetail
	if err := stmt.Order("mp.planned_date ASC").Scan(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

func (s *Service) CompleteMealPlan(ctx context.Context, planID, userID snowflake.ID) (domain.CookResult, error) {
	plan, err := s.plan(ctx, planID, userID)
	if err != nil {
		return domain.CookResult{}, err
	}
	if plan.Status.Terminal() {
		return domain.CookResult{}, domain.ErrPlanTerminal
	}

	result, err := s.Cook(ctx, domain.CookRequest{
		RecipeID: plan.RecipeID,
		FridgeID: plan.FridgeID,
		UserID:   userID,
	})
	if err != nil {
		return domain.CookResult{}, err
	}

	err = s.db.WithContext(ctx).Model(&domain.MealPlan{}).
		Where("id = ?", planID).
		Updates(map[string]any{
			"status":     domain.PlanStatusFinished,
			"updated_at": s.clock.Now(),
		}).Error
	if err != nil {
		return domain.CookResult{}, err
	}
	return result, nil
}

func (s *Service) CancelMealPlan(ctx context.Context, planID, userID snowflake.ID) error {
	plan, err := s.plan(ctx, planID, userID)
	if err != nil {
		return err
	}
	if plan.Status.Terminal() {
		return domain.ErrPlanTerminal
	}

	err = s.db.WithContext(ctx).Model(&domain.MealPlan{}).
		Where("id = ?", planID).
		Updates(map[string]any{
			"status":     domain.PlanStatusCanceled,
			"updated_at": s.clock.Now(),
		}).Error
	if err != nil {
		return err
	}

	// Canceling frees future demand, which may flip other plans to Ready.
	s.refreshStatuses(ctx, plan.FridgeID)
	return nil
}

func (s *Service) plan(ctx context.Context, planID, userID snowflake.ID) (domain.MealPlan, error) {
	var plan domain.MealPlan
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", planID, userID).
		Take(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.MealPlan{}, domain.ErrPlanNotFound
		}
		return domain.MealPlan{}, err
	}
	return plan, nil
}

func (s *Service) ensureRecipe(ctx context.Context, recipeID snowflake.ID) error {
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.Recipe{}).
		Where("id = ?", recipeID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) requirementDetails(ctx context.Context, recipeID snowflake.ID) ([]domain.RequirementDetail, error) {
	var requirements []domain.RequirementDetail
	err := s.db.WithContext(ctx).Raw(
		`SELECT rr.ingredient_id, i.name AS ingredient_name, i.standard_unit, rr.quantity_needed
		 FROM recipe_requirements rr
		 JOIN ingredients i ON i.id = rr.ingredient_id
		 WHERE rr.recipe_id = ?
		 ORDER BY i.name ASC`,
		recipeID,
	).Scan(&requirements).Error
	if err != nil {
		return nil, err
	}
	return requirements, nil
}

// fridgeTotals sums batch quantities per ingredient in Go; decimals are
// stored as numeric text and must not be summed by the database.
func (s *Service) fridgeTotals(ctx context.Context, fridgeID snowflake.ID) (map[snowflake.ID]decimal.Decimal, error) {
	var batches []inventorydomain.Batch
	err := s.db.WithContext(ctx).
		Where("fridge_id = ?", fridgeID).
		Find(&batches).Error
	if err != nil {
		return nil, err
	}

	totals := make(map[snowflake.ID]decimal.Decimal, len(batches))
	for _, b := range batches {
		totals[b.IngredientID] = totals[b.IngredientID].Add(b.Quantity)
	}
	return totals, nil
}

func (s *Service) refreshStatuses(ctx context.Context, fridgeID snowflake.ID) {
	if err := s.avail.RefreshMealPlanStatuses(ctx, fridgeID); err != nil {
		s.log.Warn("meal plan status refresh failed",
			zap.String("fridge_id", fridgeID.String()),
			zap.Error(err),
		)
	}
}
