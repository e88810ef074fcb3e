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
	"github.com/homefridge/fridgely/internal/inventory/domain"
	"github.com/homefridge/fridgely/internal/migration"
	"github.com/homefridge/fridgely/internal/observability"
	"github.com/homefridge/fridgely/pkg/db"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type refreshRecorder struct {
	calls int
}

func (r *refreshRecorder) Check(context.Context, availabilitydomain.CheckRequest) (availabilitydomain.Result, error) {
	return availabilitydomain.Result{AllAvailable: true}, nil
}

func (r *refreshRecorder) RefreshMealPlanStatuses(context.Context, snowflake.ID) error {
	r.calls++
	return nil
}

type ledgerFixture struct {
	svc     domain.Service
	conn    *gorm.DB
	node    *snowflake.Node
	clk     *clock.FakeClock
	refresh *refreshRecorder
}

func setupLedger(t *testing.T) *ledgerFixture {
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
	refresh := &refreshRecorder{}

	svc := New(Params{
		DB:      conn,
		Log:     zap.NewNop(),
		GenID:   node,
		Clock:   clk,
		Avail:   refresh,
		Metrics: observability.NewMetrics(),
	})
	return &ledgerFixture{svc: svc, conn: conn, node: node, clk: clk, refresh: refresh}
}

func (f *ledgerFixture) seedIngredient(t *testing.T, name, unit string) snowflake.ID {
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

func (f *ledgerFixture) addBatch(t *testing.T, fridgeID, ingredientID snowflake.ID, qty string, daysUntilExpiry int) domain.Batch {
	t.Helper()
	batch, err := f.svc.Add(context.Background(), domain.AddBatchRequest{
		FridgeID:     fridgeID,
		IngredientID: ingredientID,
		Quantity:     decimal.RequireFromString(qty),
		ExpiryDate:   f.clk.Today().AddDate(0, 0, daysUntilExpiry),
	})
	if err != nil {
		t.Fatalf("add batch: %v", err)
	}
	return batch
}

func (f *ledgerFixture) batches(t *testing.T, fridgeID, ingredientID snowflake.ID) []domain.Batch {
	t.Helper()
	var batches []domain.Batch
	err := f.conn.
		Where("fridge_id = ? AND ingredient_id = ?", fridgeID, ingredientID).
		Order("expiry_date ASC, entry_date ASC, id ASC").
		Find(&batches).Error
	if err != nil {
		t.Fatalf("load batches: %v", err)
	}
	return batches
}

func TestConsumeFIFOAcrossBatches(t *testing.T) {
	f := setupLedger(t)
	fridgeID := f.node.Generate()
	milk := f.seedIngredient(t, "Milk", "ml")

	f.addBatch(t, fridgeID, milk, "500", 2)
	f.addBatch(t, fridgeID, milk, "1000", 9)

	receipt, err := f.svc.Consume(context.Background(), domain.ConsumeRequest{
		FridgeID:     fridgeID,
		IngredientID: milk,
		Quantity:     decimal.RequireFromString("700"),
	})
	if err != nil {
		t.Fatalf("consume: %v", err)
	}

	if !receipt.Consumed.Equal(decimal.RequireFromString("700")) {
		t.Fatalf("expected consumed 700, got %s", receipt.Consumed)
	}
	if !receipt.Remaining.Equal(decimal.RequireFromString("800")) {
		t.Fatalf("expected remaining 800, got %s", receipt.Remaining)
	}
	if receipt.BatchesTouched != 2 {
		t.Fatalf("expected 2 batches touched, got %d", receipt.BatchesTouched)
	}

	batches := f.batches(t, fridgeID, milk)
	if len(batches) != 1 {
		t.Fatalf("expected 1 batch left, got %d", len(batches))
	}
	if !batches[0].Quantity.Equal(decimal.RequireFromString("800")) {
		t.Fatalf("expected surviving batch of 800, got %s", batches[0].Quantity)
	}
}

func TestConsumeInsufficientLeavesBatchesUntouched(t *testing.T) {
	f := setupLedger(t)
	fridgeID := f.node.Generate()
	butter := f.seedIngredient(t, "Butter", "g")

	f.addBatch(t, fridgeID, butter, "60", 5)

	_, err := f.svc.Consume(context.Background(), domain.ConsumeRequest{
		FridgeID:     fridgeID,
		IngredientID: butter,
		Quantity:     decimal.RequireFromString("100"),
	})
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	var stockErr *domain.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected typed insufficient stock error, got %T", err)
	}
	if !stockErr.Requested.Equal(decimal.RequireFromString("100")) ||
		!stockErr.Available.Equal(decimal.RequireFromString("60")) {
		t.Fatalf("expected requested 100 available 60, got %s/%s", stockErr.Requested, stockErr.Available)
	}

	batches := f.batches(t, fridgeID, butter)
	if len(batches) != 1 || !batches[0].Quantity.Equal(decimal.RequireFromString("60")) {
		t.Fatalf("expected the 60g batch untouched, got %+v", batches)
	}
}

func TestConsumeExactBatchBoundary(t *testing.T) {
	f := setupLedger(t)
	fridgeID := f.node.Generate()
	eggs := f.seedIngredient(t, "Eggs", "pcs")

	f.addBatch(t, fridgeID, eggs, "6", 3)
	f.addBatch(t, fridgeID, eggs, "12", 8)

	receipt, err := f.svc.Consume(context.Background(), domain.ConsumeRequest{
		FridgeID:     fridgeID,
		IngredientID: eggs,
		Quantity:     decimal.RequireFromString("6"),
	})
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if receipt.BatchesTouched != 1 {
		t.Fatalf("expected exactly the first batch touched, got %d", receipt.BatchesTouched)
	}

	batches := f.batches(t, fridgeID, eggs)
	if len(batches) != 1 {
		t.Fatalf("expected exhausted batch deleted, got %d batches", len(batches))
	}
	if !batches[0].Quantity.Equal(decimal.RequireFromString("12")) {
		t.Fatalf("expected second batch untouched, got %s", batches[0].Quantity)
	}
}

func TestConsumeEqualExpiryFallsBackToEntryOrder(t *testing.T) {
	f := setupLedger(t)
	fridgeID := f.node.Generate()
	flour := f.seedIngredient(t, "Flour", "g")

	first := f.addBatch(t, fridgeID, flour, "200", 4)
	f.addBatch(t, fridgeID, flour, "300", 4)

	_, err := f.svc.Consume(context.Background(), domain.ConsumeRequest{
		FridgeID:     fridgeID,
		IngredientID: flour,
		Quantity:     decimal.RequireFromString("250"),
	})
	if err != nil {
		t.Fatalf("consume: %v", err)
	}

	batches := f.batches(t, fridgeID, flour)
	if len(batches) != 1 {
		t.Fatalf("expected one batch left, got %d", len(batches))
	}
	if batches[0].ID == first.ID {
		t.Fatalf("expected the earlier batch to be consumed first")
	}
	if !batches[0].Quantity.Equal(decimal.RequireFromString("250")) {
		t.Fatalf("expected 250 left in the later batch, got %s", batches[0].Quantity)
	}
}

func TestAddNeverMergesBatches(t *testing.T) {
	f := setupLedger(t)
	fridgeID := f.node.Generate()
	yogurt := f.seedIngredient(t, "Yogurt", "g")

	f.addBatch(t, fridgeID, yogurt, "150", 6)
	f.addBatch(t, fridgeID, yogurt, "150", 6)

	batches := f.batches(t, fridgeID, yogurt)
	if len(batches) != 2 {
		t.Fatalf("expected two separate batches for equal expiries, got %d", len(batches))
	}
}

func TestAddRejectsPastExpiry(t *testing.T) {
	f := setupLedger(t)
	fridgeID := f.node.Generate()
	cream := f.seedIngredient(t, "Cream", "ml")

	_, err := f.svc.Add(context.Background(), domain.AddBatchRequest{
		FridgeID:     fridgeID,
		IngredientID: cream,
		Quantity:     decimal.RequireFromString("100"),
		ExpiryDate:   f.clk.Today(),
	})
	if !errors.Is(err, domain.ErrInvalidExpiry) {
		t.Fatalf("expected invalid expiry for same-day date, got %v", err)
	}

	_, err = f.svc.Add(context.Background(), domain.AddBatchRequest{
		FridgeID:     fridgeID,
		IngredientID: cream,
		Quantity:     decimal.RequireFromString("0"),
		ExpiryDate:   f.clk.Today().AddDate(0, 0, 3),
	})
	if !errors.Is(err, domain.ErrInvalidQuantity) {
		t.Fatalf("expected invalid quantity for zero amount, got %v", err)
	}
}

func TestMutationsTriggerStatusRefresh(t *testing.T) {
	f := setupLedger(t)
	fridgeID := f.node.Generate()
	milk := f.seedIngredient(t, "Milk", "ml")

	f.addBatch(t, fridgeID, milk, "500", 5)
	if f.refresh.calls != 1 {
		t.Fatalf("expected refresh after add, got %d calls", f.refresh.calls)
	}

	_, err := f.svc.Consume(context.Background(), domain.ConsumeRequest{
		FridgeID:     fridgeID,
		IngredientID: milk,
		Quantity:     decimal.RequireFromString("100"),
	})
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if f.refresh.calls != 2 {
		t.Fatalf("expected refresh after consume, got %d calls", f.refresh.calls)
	}
}

func TestListReportsDaysUntilExpiry(t *testing.T) {
	f := setupLedger(t)
	fridgeID := f.node.Generate()
	cheese := f.seedIngredient(t, "Cheese", "g")

	f.addBatch(t, fridgeID, cheese, "250", 4)

	items, err := f.svc.List(context.Background(), fridgeID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected one item, got %d", len(items))
	}
	if items[0].DaysUntilExpiry != 4 {
		t.Fatalf("expected 4 days until expiry, got %d", items[0].DaysUntilExpiry)
	}
	if items[0].IngredientName != "Cheese" {
		t.Fatalf("expected ingredient name joined, got %q", items[0].IngredientName)
	}
}
