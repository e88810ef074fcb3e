package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	availabilitydomain "github.com/homefridge/fridgely/internal/availability/domain"
	"github.com/homefridge/fridgely/internal/clock"
	ingredientdomain "github.com/homefridge/fridgely/internal/ingredient/domain"
	inventorydomain "github.com/homefridge/fridgely/internal/inventory/domain"
	inventoryservice "github.com/homefridge/fridgely/internal/inventory/service"
	"github.com/homefridge/fridgely/internal/migration"
	"github.com/homefridge/fridgely/internal/observability"
	"github.com/homefridge/fridgely/internal/recipe/domain"
	"github.com/homefridge/fridgely/pkg/db"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type stubAvail struct {
	refreshes int
}

func (a *stubAvail) Check(context.Context, availabilitydomain.CheckRequest) (availabilitydomain.Result, error) {
	return availabilitydomain.Result{AllAvailable: true}, nil
}

func (a *stubAvail) RefreshMealPlanStatuses(context.Context, snowflake.ID) error {
	a.refreshes++
	return nil
}

type recipeFixture struct {
	svc      domain.Service
	conn     *gorm.DB
	node     *snowflake.Node
	clk      *clock.FakeClock
	avail    *stubAvail
	userID   snowflake.ID
	fridgeID snowflake.ID
}

func setupRecipe(t *testing.T) *recipeFixture {
	t.Helper()

	conn, err := db.NewTest()
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := migration.AutoMigrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	clk := clock.NewFakeClock(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	avail := &stubAvail{}

	inventorySvc := inventoryservice.New(inventoryservice.Params{
		DB:      conn,
		Log:     zap.NewNop(),
		GenID:   node,
		Clock:   clk,
		Avail:   avail,
		Metrics: observability.NewMetrics(),
	})

	svc := New(Params{
		DB:        conn,
		Log:       zap.NewNop(),
		GenID:     node,
		Clock:     clk,
		Inventory: inventorySvc,
		Avail:     avail,
	})

	return &recipeFixture{
		svc:      svc,
		conn:     conn,
		node:     node,
		clk:      clk,
		avail:    avail,
		userID:   node.Generate(),
		fridgeID: node.Generate(),
	}
}

func (f *recipeFixture) seedIngredient(t *testing.T, name, unit string) snowflake.ID {
	t.Helper()
	ing := ingredientdomain.Ingredient{
		ID:            f.node.Generate(),
		Name:          name,
		StandardUnit:  ingredientdomain.Unit(unit),
		ShelfLifeDays: 7,
		CreatedAt:     f.clk.Now(),
	}
	if err := f.conn.Create(&ing).Error; err != nil {
		t.Fatalf("seed ingredient: %v", err)
	}
	return ing.ID
}

func (f *recipeFixture) seedBatch(t *testing.T, ingredientID snowflake.ID, qty string, daysUntilExpiry int) {
	t.Helper()
	batch := inventorydomain.Batch{
		ID:           f.node.Generate(),
		FridgeID:     f.fridgeID,
		IngredientID: ingredientID,
		Quantity:     decimal.RequireFromString(qty),
		EntryDate:    f.clk.Today(),
		ExpiryDate:   f.clk.Today().AddDate(0, 0, daysUntilExpiry),
		CreatedAt:    f.clk.Now(),
	}
	if err := f.conn.Create(&batch).Error; err != nil {
		t.Fatalf("seed batch: %v", err)
	}
}

func (f *recipeFixture) createRecipe(t *testing.T, name string, needs map[snowflake.ID]string) domain.Recipe {
	t.Helper()
	req := domain.CreateRecipeRequest{
		OwnerID:     f.userID,
		Name:        name,
		CookingTime: 20,
	}
	for ingredientID, qty := range needs {
		req.Requirements = append(req.Requirements, domain.RequirementInput{
			IngredientID:   ingredientID,
			QuantityNeeded: decimal.RequireFromString(qty),
		})
	}
	recipe, err := f.svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("create recipe: %v", err)
	}
	return recipe
}

func TestCreateRecipeRequiresRequirements(t *testing.T) {
	f := setupRecipe(t)

	_, err := f.svc.Create(context.Background(), domain.CreateRecipeRequest{
		OwnerID: f.userID,
		Name:    "Air Soup",
	})
	if !errors.Is(err, domain.ErrNoRequirements) {
		t.Fatalf("expected requirements to be mandatory, got %v", err)
	}
}

func TestCookReportsEveryShortageBeforeConsuming(t *testing.T) {
	f := setupRecipe(t)
	milk := f.seedIngredient(t, "Milk", "ml")
	eggs := f.seedIngredient(t, "Eggs", "pcs")
	recipe := f.createRecipe(t, "Custard", map[snowflake.ID]string{milk: "500", eggs: "4"})

	f.seedBatch(t, milk, "200", 5)
	f.seedBatch(t, eggs, "1", 5)

	_, err := f.svc.Cook(context.Background(), domain.CookRequest{
		RecipeID: recipe.ID,
		FridgeID: f.fridgeID,
		UserID:   f.userID,
	})
	if !errors.Is(err, domain.ErrShortIngredient) {
		t.Fatalf("expected short ingredients, got %v", err)
	}

	var shortErr *domain.ShortIngredientsError
	if !errors.As(err, &shortErr) {
		t.Fatalf("expected typed shortage error, got %T", err)
	}
	if len(shortErr.Shortages) != 2 {
		t.Fatalf("expected both shortages reported at once, got %v", shortErr.Shortages)
	}

	// Nothing was consumed.
	var count int64
	if err := f.conn.Model(&inventorydomain.Batch{}).Count(&count).Error; err != nil {
		t.Fatalf("count batches: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected batches untouched, got %d", count)
	}
}

func TestCookConsumesEveryRequirement(t *testing.T) {
	f := setupRecipe(t)
	milk := f.seedIngredient(t, "Milk", "ml")
	eggs := f.seedIngredient(t, "Eggs", "pcs")
	recipe := f.createRecipe(t, "Custard", map[snowflake.ID]string{milk: "500", eggs: "4"})

	f.seedBatch(t, milk, "600", 5)
	f.seedBatch(t, eggs, "6", 5)

	result, err := f.svc.Cook(context.Background(), domain.CookRequest{
		RecipeID: recipe.ID,
		FridgeID: f.fridgeID,
		UserID:   f.userID,
	})
	if err != nil {
		t.Fatalf("cook: %v", err)
	}
	if result.RecipeName != "Custard" {
		t.Fatalf("expected recipe name in result, got %q", result.RecipeName)
	}
	if len(result.Consumed) != 2 {
		t.Fatalf("expected two consumption lines, got %d", len(result.Consumed))
	}

	var batches []inventorydomain.Batch
	if err := f.conn.Order("quantity ASC").Find(&batches).Error; err != nil {
		t.Fatalf("load batches: %v", err)
	}
	if len(batches) != 2 {
		t.Fatalf("expected two partially consumed batches, got %d", len(batches))
	}
	if !batches[0].Quantity.Equal(decimal.RequireFromString("2")) {
		t.Fatalf("expected 2 eggs left, got %s", batches[0].Quantity)
	}
	if !batches[1].Quantity.Equal(decimal.RequireFromString("100")) {
		t.Fatalf("expected 100 ml milk left, got %s", batches[1].Quantity)
	}
}

func TestCompleteMealPlanCooksAndFinishes(t *testing.T) {
	f := setupRecipe(t)
	milk := f.seedIngredient(t, "Milk", "ml")
	recipe := f.createRecipe(t, "Porridge", map[snowflake.ID]string{milk: "200"})
	f.seedBatch(t, milk, "300", 5)

	plan, err := f.svc.CreateMealPlan(context.Background(), domain.CreateMealPlanRequest{
		UserID:      f.userID,
		RecipeID:    recipe.ID,
		FridgeID:    f.fridgeID,
		PlannedDate: f.clk.Today().AddDate(0, 0, 2),
	})
	if err != nil {
		t.Fatalf("create meal plan: %v", err)
	}

	result, err := f.svc.CompleteMealPlan(context.Background(), plan.ID, f.userID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if len(result.Consumed) != 1 {
		t.Fatalf("expected one consumption line, got %d", len(result.Consumed))
	}

	var stored domain.MealPlan
	if err := f.conn.Where("id = ?", plan.ID).Take(&stored).Error; err != nil {
		t.Fatalf("load plan: %v", err)
	}
	if stored.Status != domain.PlanStatusFinished {
		t.Fatalf("expected Finished, got %s", stored.Status)
	}

	// Terminal plans cannot be completed or canceled again.
	if _, err := f.svc.CompleteMealPlan(context.Background(), plan.ID, f.userID); !errors.Is(err, domain.ErrPlanTerminal) {
		t.Fatalf("expected terminal plan error, got %v", err)
	}
	if err := f.svc.CancelMealPlan(context.Background(), plan.ID, f.userID); !errors.Is(err, domain.ErrPlanTerminal) {
		t.Fatalf("expected terminal plan error on cancel, got %v", err)
	}
}

func TestCancelMealPlanTriggersRefresh(t *testing.T) {
	f := setupRecipe(t)
	milk := f.seedIngredient(t, "Milk", "ml")
	recipe := f.createRecipe(t, "Porridge", map[snowflake.ID]string{milk: "200"})

	plan, err := f.svc.CreateMealPlan(context.Background(), domain.CreateMealPlanRequest{
		UserID:      f.userID,
		RecipeID:    recipe.ID,
		FridgeID:    f.fridgeID,
		PlannedDate: f.clk.Today().AddDate(0, 0, 2),
	})
	if err != nil {
		t.Fatalf("create meal plan: %v", err)
	}

	refreshesBefore := f.avail.refreshes
	if err := f.svc.CancelMealPlan(context.Background(), plan.ID, f.userID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if f.avail.refreshes != refreshesBefore+1 {
		t.Fatalf("expected a status refresh after cancel")
	}

	var stored domain.MealPlan
	if err := f.conn.Where("id = ?", plan.ID).Take(&stored).Error; err != nil {
		t.Fatalf("load plan: %v", err)
	}
	if stored.Status != domain.PlanStatusCanceled {
		t.Fatalf("expected Canceled, got %s", stored.Status)
	}
}

func TestReviewUpsertsPerUser(t *testing.T) {
	f := setupRecipe(t)
	milk := f.seedIngredient(t, "Milk", "ml")
	recipe := f.createRecipe(t, "Porridge", map[snowflake.ID]string{milk: "200"})

	review := domain.ReviewRequest{
		UserID:   f.userID,
		RecipeID: recipe.ID,
		Rating:   3,
		Comment:  "fine",
	}
	if err := f.svc.Review(context.Background(), review); err != nil {
		t.Fatalf("review: %v", err)
	}

	review.Rating = 5
	review.Comment = "better the second time"
	if err := f.svc.Review(context.Background(), review); err != nil {
		t.Fatalf("re-review: %v", err)
	}

	reviews, err := f.svc.ListReviews(context.Background(), recipe.ID)
	if err != nil {
		t.Fatalf("list reviews: %v", err)
	}
	if len(reviews) != 1 {
		t.Fatalf("expected one review per user, got %d", len(reviews))
	}
	if reviews[0].Rating != 5 {
		t.Fatalf("expected updated rating 5, got %d", reviews[0].Rating)
	}

	if err := f.svc.Review(context.Background(), domain.ReviewRequest{
		UserID:   f.userID,
		RecipeID: recipe.ID,
		Rating:   6,
	}); !errors.Is(err, domain.ErrInvalidRating) {
		t.Fatalf("expected invalid rating, got %v", err)
	}
}

func TestGetRecipeDetail(t *testing.T) {
	f := setupRecipe(t)
	milk := f.seedIngredient(t, "Milk", "ml")
	recipe := f.createRecipe(t, "Porridge", map[snowflake.ID]string{milk: "200"})

	if err := f.svc.Review(context.Background(), domain.ReviewRequest{
		UserID:   f.userID,
		RecipeID: recipe.ID,
		Rating:   4,
	}); err != nil {
		t.Fatalf("review: %v", err)
	}

	detail, err := f.svc.Get(context.Background(), recipe.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(detail.Requirements) != 1 || detail.Requirements[0].IngredientName != "Milk" {
		t.Fatalf("expected joined requirement detail, got %+v", detail.Requirements)
	}
	if detail.TotalReviews != 1 || detail.AvgRating == nil || *detail.AvgRating != 4 {
		t.Fatalf("expected rating aggregate, got %d reviews avg %v", detail.TotalReviews, detail.AvgRating)
	}
}
