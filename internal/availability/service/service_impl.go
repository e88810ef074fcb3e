package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/homefridge/fridgely/internal/availability/domain"
	"github.com/homefridge/fridgely/internal/clock"
	fridgedomain "github.com/homefridge/fridgely/internal/fridge/domain"
	"github.com/homefridge/fridgely/internal/observability"
	procurementdomain "github.com/homefridge/fridgely/internal/procurement/domain"
	recipedomain "github.com/homefridge/fridgely/internal/recipe/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Clock   clock.Clock
	Fridge  fridgedomain.Service
	Metrics *observability.Metrics
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	clock   clock.Clock
	fridge  fridgedomain.Service
	metrics *observability.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("availability.service"),
		clock:   p.Clock,
		fridge:  p.Fridge,
		metrics: p.Metrics,
	}
}

type requirement struct {
	IngredientID   snowflake.ID
	IngredientName string
	StandardUnit   string
	QuantityNeeded decimal.Decimal
}

// simBatch is an in-memory copy of a batch for replay. The real rows are
// never touched.
type simBatch struct {
	Expiry   time.Time
	Quantity decimal.Decimal
}

// event is one point on the replayed timeline. Supply events carry the
// assumed expiry of the arriving stock.
type event struct {
	Date     time.Time
	Supply   bool
	Quantity decimal.Decimal
	Expiry   time.Time
}

func (s *Service) Check(ctx context.Context, req domain.CheckRequest) (domain.Result, error) {
	s.metrics.AvailabilityChecksTotal.Inc()

	result, err := s.check(ctx, req)
	if err != nil {
		if errors.Is(err, domain.ErrRecipeNotFound) {
			return domain.Result{}, err
		}
		// A projection is advisory. Internal faults degrade to "not
		// available" rather than failing the caller's request.
		s.log.Error("availability check failed",
			zap.String("recipe_id", req.RecipeID.String()),
			zap.String("fridge_id", req.FridgeID.String()),
			zap.Error(err),
		)
		return domain.Result{
			AllAvailable: false,
			Message:      fmt.Sprintf("availability check failed: %v", err),
		}, nil
	}
	return result, nil
}

func (s *Service) check(ctx context.Context, req domain.CheckRequest) (result domain.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("replay panic: %v", r)
		}
	}()

	requirements, err := s.requirements(ctx, req.RecipeID)
	if err != nil {
		return domain.Result{}, err
	}
	if len(requirements) == 0 {
		return domain.Result{}, domain.ErrRecipeNotFound
	}

	today := s.clock.Today()
	windowEnd := today.AddDate(0, 0, domain.LookaheadDays)
	neededBy := clock.Midnight(req.NeededBy)

	ingredientIDs := make([]snowflake.ID, 0, len(requirements))
	for _, r := range requirements {
		ingredientIDs = append(ingredientIDs, r.IngredientID)
	}

	batches, err := s.currentBatches(ctx, req.FridgeID, ingredientIDs, today)
	if err != nil {
		return domain.Result{}, err
	}
	demands, err := s.demandEvents(ctx, req.FridgeID, ingredientIDs, today, windowEnd, req.ExcludePlanID)
	if err != nil {
		return domain.Result{}, err
	}
	supplies, err := s.supplyEvents(ctx, req.FridgeID, ingredientIDs, today, windowEnd)
	if err != nil {
		return domain.Result{}, err
	}

	result = domain.Result{AllAvailable: true}
	for _, r := range requirements {
		events := append([]event{}, demands[r.IngredientID]...)
		events = append(events, supplies[r.IngredientID]...)
		events = append(events, event{Date: neededBy, Quantity: r.QuantityNeeded})

		shortage, firstNegative := replay(batches[r.IngredientID], events)
		if shortage.IsPositive() {
			s.metrics.ShortagesTotal.Inc()
			result.AllAvailable = false
			result.Missing = append(result.Missing, domain.ShortageDetail{
				IngredientID:   r.IngredientID,
				IngredientName: r.IngredientName,
				StandardUnit:   r.StandardUnit,
				Shortage:       shortage,
				NeededBy:       firstNegative,
			})
		}
	}

	if !result.AllAvailable {
		result.Message = fmt.Sprintf("%d ingredient(s) projected short", len(result.Missing))
	}
	return result, nil
}

// replay walks supply and demand events in date order against an
// in-memory batch set. Supply applies before demand on the same date, an
// arrival lands before that day's cooking. Demand consumes FIFO and may
// push the running quantity negative; the returned shortage is the
// magnitude of the lowest point, and firstNegative is the date of the
// first event that went below zero. Ordering a replacement before that
// date prevents every later shortage in the same cascade.
func replay(batches []simBatch, events []event) (shortage decimal.Decimal, firstNegative time.Time) {
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Date.Equal(events[j].Date) {
			return events[i].Date.Before(events[j].Date)
		}
		return events[i].Supply && !events[j].Supply
	})

	stock := decimal.Zero
	for _, b := range batches {
		stock = stock.Add(b.Quantity)
	}

	deficit := decimal.Zero
	minimum := stock
	negative := false

	for _, ev := range events {
		if ev.Supply {
			batches = insertBatch(batches, simBatch{Expiry: ev.Expiry, Quantity: ev.Quantity})
			stock = stock.Add(ev.Quantity)
		} else {
			// Stock that expires before the demand date is gone by the
			// time anyone cooks.
			kept := batches[:0]
			for _, b := range batches {
				if b.Expiry.Before(ev.Date) {
					stock = stock.Sub(b.Quantity)
					continue
				}
				kept = append(kept, b)
			}
			batches = kept

			remaining := ev.Quantity
			for len(batches) > 0 && remaining.IsPositive() {
				take := decimal.Min(batches[0].Quantity, remaining)
				stock = stock.Sub(take)
				remaining = remaining.Sub(take)
				if batches[0].Quantity.Equal(take) {
					batches = batches[1:]
				} else {
					batches[0].Quantity = batches[0].Quantity.Sub(take)
				}
			}
			deficit = deficit.Add(remaining)
		}

		running := stock.Sub(deficit)
		if running.LessThan(minimum) {
			minimum = running
		}
		if running.IsNegative() && !negative {
			negative = true
			firstNegative = ev.Date
		}
	}

	if minimum.IsNegative() {
		return minimum.Neg(), firstNegative
	}
	return decimal.Zero, time.Time{}
}

// insertBatch keeps the replay set in FIFO order, expiry ascending with
// equal expiries in insertion order.
func insertBatch(batches []simBatch, b simBatch) []simBatch {
	i := sort.Search(len(batches), func(i int) bool {
		return batches[i].Expiry.After(b.Expiry)
	})
	batches = append(batches, simBatch{})
	copy(batches[i+1:], batches[i:])
	batches[i] = b
	return batches
}

func (s *Service) RefreshMealPlanStatuses(ctx context.Context, fridgeID snowflake.ID) error {
	s.metrics.StatusRefreshesTotal.Inc()

	var plans []recipedomain.MealPlan
	err := s.db.WithContext(ctx).
		Where("fridge_id = ? AND status IN ?", fridgeID, []recipedomain.PlanStatus{
			recipedomain.PlanStatusPlanned,
			recipedomain.PlanStatusReady,
			recipedomain.PlanStatusInsufficient,
		}).
		Find(&plans).Error
	if err != nil {
		return err
	}

	today := s.clock.Today()
	windowEnd := today.AddDate(0, 0, domain.LookaheadDays)

	for _, plan := range plans {
		status := recipedomain.PlanStatusPlanned
		if !plan.PlannedDate.After(windowEnd) {
			planID := plan.ID
			res, err := s.Check(ctx, domain.CheckRequest{
				RecipeID:      plan.RecipeID,
				FridgeID:      plan.FridgeID,
				NeededBy:      plan.PlannedDate,
				ExcludePlanID: &planID,
			})
			if err != nil {
				return err
			}
			if res.AllAvailable {
				status = recipedomain.PlanStatusReady
			} else {
				status = recipedomain.PlanStatusInsufficient
			}
		}

		if status == plan.Status {
			continue
		}
		err = s.db.WithContext(ctx).Model(&recipedomain.MealPlan{}).
			Where("id = ? AND status NOT IN ?", plan.ID, []recipedomain.PlanStatus{
				recipedomain.PlanStatusFinished,
				recipedomain.PlanStatusCanceled,
			}).
			Updates(map[string]any{
				"status":     status,
				"updated_at": s.clock.Now(),
			}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) requirements(ctx context.Context, recipeID snowflake.ID) ([]requirement, error) {
	var requirements []requirement
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

// currentBatches loads the fridge's unexpired stock for the recipe's
// ingredients, expiry ascending so the copies are already in FIFO order.
func (s *Service) currentBatches(ctx context.Context, fridgeID snowflake.ID, ingredientIDs []snowflake.ID, today time.Time) (map[snowflake.ID][]simBatch, error) {
	var rows []struct {
		IngredientID snowflake.ID
		ExpiryDate   time.Time
		Quantity     decimal.Decimal
	}
	err := s.db.WithContext(ctx).Raw(
		`SELECT ingredient_id, expiry_date, quantity
		 FROM batches
		 WHERE fridge_id = ? AND ingredient_id IN ? AND expiry_date >= ?
		 ORDER BY expiry_date ASC, entry_date ASC, id ASC`,
		fridgeID, ingredientIDs, today,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	batches := make(map[snowflake.ID][]simBatch)
	for _, r := range rows {
		batches[r.IngredientID] = append(batches[r.IngredientID], simBatch{
			Expiry:   r.ExpiryDate,
			Quantity: r.Quantity,
		})
	}
	return batches, nil
}

// demandEvents joins every non-terminal meal plan of the fridge's members
// inside the lookahead window to its recipe's requirements.
func (s *Service) demandEvents(ctx context.Context, fridgeID snowflake.ID, ingredientIDs []snowflake.ID, from, to time.Time, excludePlanID *snowflake.ID) (map[snowflake.ID][]event, error) {
	memberIDs, err := s.fridge.MemberIDs(ctx, fridgeID)
	if err != nil {
		return nil, err
	}

	stmt := s.db.WithContext(ctx).
		Table("meal_plans mp").
		Select("mp.planned_date, rr.ingredient_id, rr.quantity_needed").
		Joins("JOIN recipe_requirements rr ON rr.recipe_id = mp.recipe_id").
		Where("mp.fridge_id = ? AND mp.user_id IN ?", fridgeID, memberIDs).
		Where("mp.status IN ?", []recipedomain.PlanStatus{
			recipedomain.PlanStatusPlanned,
			recipedomain.PlanStatusReady,
			recipedomain.PlanStatusInsufficient,
		}).
		Where("mp.planned_date >= ? AND mp.planned_date <= ?", from, to).
		Where("rr.ingredient_id IN ?", ingredientIDs)
	if excludePlanID != nil {
		stmt = stmt.Where("mp.id <> ?", *excludePlanID)
	}

	var rows []struct {
		PlannedDate    time.Time
		IngredientID   snowflake.ID
		QuantityNeeded decimal.Decimal
	}
	if err := stmt.Scan(&rows).Error; err != nil {
		return nil, err
	}

	demands := make(map[snowflake.ID][]event)
	for _, r := range rows {
		demands[r.IngredientID] = append(demands[r.IngredientID], event{
			Date:     r.PlannedDate,
			Quantity: r.QuantityNeeded,
		})
	}
	return demands, nil
}

// supplyEvents projects not-yet-delivered orders arriving inside the
// window as future stock, converted to standard units. The assumed expiry
// is a flat buffer past the arrival date since shelf life is unknown
// until the delivery is actually booked.
func (s *Service) supplyEvents(ctx context.Context, fridgeID snowflake.ID, ingredientIDs []snowflake.ID, from, to time.Time) (map[snowflake.ID][]event, error) {
	var rows []struct {
		ExpectedArrival time.Time
		IngredientID    snowflake.ID
		Quantity        decimal.Decimal
		UnitQuantity    decimal.Decimal
	}
	err := s.db.WithContext(ctx).Raw(
		`SELECT o.expected_arrival, p.ingredient_id, oi.quantity, p.unit_quantity
		 FROM orders o
		 JOIN order_items oi ON oi.order_id = o.id
		 JOIN products p ON p.sku = oi.sku
		 WHERE o.fridge_id = ?
		   AND p.ingredient_id IN ?
		   AND o.status IN ?
		   AND o.expected_arrival >= ? AND o.expected_arrival <= ?
		 ORDER BY o.expected_arrival ASC`,
		fridgeID, ingredientIDs,
		[]procurementdomain.OrderStatus{
			procurementdomain.OrderStatusPending,
			procurementdomain.OrderStatusProcessing,
			procurementdomain.OrderStatusShipped,
		},
		from, to,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	supplies := make(map[snowflake.ID][]event)
	for _, r := range rows {
		supplies[r.IngredientID] = append(supplies[r.IngredientID], event{
			Date:     r.ExpectedArrival,
			Supply:   true,
			Quantity: r.Quantity.Mul(r.UnitQuantity),
			Expiry:   r.ExpectedArrival.AddDate(0, 0, domain.SupplyShelfBufferDays),
		})
	}
	return supplies, nil
}
