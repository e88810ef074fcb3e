package service

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	availabilitydomain "github.com/homefridge/fridgely/internal/availability/domain"
	"github.com/homefridge/fridgely/internal/clock"
	ingredientdomain "github.com/homefridge/fridgely/internal/ingredient/domain"
	"github.com/homefridge/fridgely/internal/inventory/domain"
	"github.com/homefridge/fridgely/internal/observability"
	"github.com/homefridge/fridgely/pkg/db"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Avail   availabilitydomain.Service
	Metrics *observability.Metrics
}

// Service is the inventory ledger. It is the only writer of batch rows;
// the availability simulator reads them through its own queries.
type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	avail   availabilitydomain.Service
	metrics *observability.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("inventory.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		avail:   p.Avail,
		metrics: p.Metrics,
	}
}

func (s *Service) Add(ctx context.Context, req domain.AddBatchRequest) (domain.Batch, error) {
	if req.Quantity.LessThanOrEqual(decimal.Zero) {
		return domain.Batch{}, domain.ErrInvalidQuantity
	}
	today := s.clock.Today()
	expiry := clock.Midnight(req.ExpiryDate)
	if !expiry.After(today) {
		return domain.Batch{}, domain.ErrInvalidExpiry
	}
	if _, err := s.ingredient(ctx, req.IngredientID); err != nil {
		return domain.Batch{}, err
	}

	batch := domain.Batch{
		ID:           s.genID.Generate(),
		FridgeID:     req.FridgeID,
		IngredientID: req.IngredientID,
		Quantity:     req.Quantity,
		EntryDate:    today,
		ExpiryDate:   expiry,
		CreatedAt:    s.clock.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&batch).Error; err != nil {
		return domain.Batch{}, err
	}

	s.metrics.BatchesAddedTotal.Inc()
	s.refreshStatuses(ctx, req.FridgeID)
	return batch, nil
}

func (s *Service) Consume(ctx context.Context, req domain.ConsumeRequest) (domain.Receipt, error) {
	if req.Quantity.LessThanOrEqual(decimal.Zero) {
		return domain.Receipt{}, domain.ErrInvalidQuantity
	}
	ingredient, err := s.ingredient(ctx, req.IngredientID)
	if err != nil {
		return domain.Receipt{}, err
	}

	var receipt domain.Receipt
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var batches []domain.Batch
		err := db.ForUpdate(tx).
			Where("fridge_id = ? AND ingredient_id = ?", req.FridgeID, req.IngredientID).
			Order("expiry_date ASC, entry_date ASC, id ASC").
			Find(&batches).Error
		if err != nil {
			return err
		}

		total := decimal.Zero
		for _, b := range batches {
			total = total.Add(b.Quantity)
		}

		// Sufficiency must be decided before any mutation so a failed
		// consume leaves every batch untouched.
		if total.LessThan(req.Quantity) {
			return &domain.InsufficientStockError{
				IngredientName: ingredient.Name,
				StandardUnit:   string(ingredient.StandardUnit),
				Requested:      req.Quantity,
				Available:      total,
			}
		}

		remaining := req.Quantity
		touched := 0
		for i := range batches {
			if remaining.IsZero() {
				break
			}
			batch := &batches[i]
			if batch.Quantity.LessThanOrEqual(remaining) {
				remaining = remaining.Sub(batch.Quantity)
				if err := tx.Delete(&domain.Batch{}, "id = ?", batch.ID).Error; err != nil {
					return err
				}
			} else {
				newQty := batch.Quantity.Sub(remaining)
				remaining = decimal.Zero
				err := tx.Model(&domain.Batch{}).
					Where("id = ?", batch.ID).
					Update("quantity", newQty).Error
				if err != nil {
					return err
				}
			}
			touched++
		}

		receipt = domain.Receipt{
			IngredientID:   ingredient.ID,
			IngredientName: ingredient.Name,
			StandardUnit:   string(ingredient.StandardUnit),
			Requested:      req.Quantity,
			Consumed:       req.Quantity,
			Remaining:      total.Sub(req.Quantity),
			BatchesTouched: touched,
		}
		return nil
	})
	if err != nil {
		return domain.Receipt{}, err
	}

	s.metrics.ConsumptionsTotal.Inc()
	s.log.Debug("consumed ingredient",
		zap.String("fridge_id", req.FridgeID.String()),
		zap.String("ingredient", ingredient.Name),
		zap.String("quantity", req.Quantity.String()),
		zap.Int("batches_touched", receipt.BatchesTouched),
	)
	s.refreshStatuses(ctx, req.FridgeID)
	return receipt, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateBatchRequest) (domain.Batch, error) {
	if req.Quantity != nil && req.Quantity.LessThanOrEqual(decimal.Zero) {
		return domain.Batch{}, domain.ErrInvalidQuantity
	}
	var expiry *time.Time
	if req.ExpiryDate != nil {
		e := clock.Midnight(*req.ExpiryDate)
		if !e.After(s.clock.Today()) {
			return domain.Batch{}, domain.ErrInvalidExpiry
		}
		expiry = &e
	}

	var batch domain.Batch
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := db.ForUpdate(tx).Where("id = ?", req.BatchID).Take(&batch).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrBatchNotFound
			}
			return err
		}

		updates := map[string]any{}
		if req.Quantity != nil {
			batch.Quantity = *req.Quantity
			updates["quantity"] = *req.Quantity
		}
		if expiry != nil {
			batch.ExpiryDate = *expiry
			updates["expiry_date"] = *expiry
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&domain.Batch{}).Where("id = ?", batch.ID).Updates(updates).Error
	})
	if err != nil {
		return domain.Batch{}, err
	}

	s.refreshStatuses(ctx, batch.FridgeID)
	return batch, nil
}

func (s *Service) Remove(ctx context.Context, batchID snowflake.ID) error {
	var batch domain.Batch
	err := s.db.WithContext(ctx).Where("id = ?", batchID).Take(&batch).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrBatchNotFound
		}
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&domain.Batch{}, "id = ?", batchID).Error; err != nil {
		return err
	}

	s.refreshStatuses(ctx, batch.FridgeID)
	return nil
}

func (s *Service) List(ctx context.Context, fridgeID snowflake.ID) ([]domain.FridgeItem, error) {
	type row struct {
		ID             snowflake.ID
		FridgeID       snowflake.ID
		IngredientID   snowflake.ID
		IngredientName string
		StandardUnit   string
		Quantity       decimal.Decimal
		EntryDate      time.Time
		ExpiryDate     time.Time
	}

	var rows []row
	err := s.db.WithContext(ctx).Raw(
		`SELECT b.id, b.fridge_id, b.ingredient_id, i.name AS ingredient_name,
		        i.standard_unit, b.quantity, b.entry_date, b.expiry_date
		 FROM batches b
		 JOIN ingredients i ON i.id = b.ingredient_id
		 WHERE b.fridge_id = ?
		 ORDER BY b.expiry_date ASC, b.entry_date ASC, b.id ASC`,
		fridgeID,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	today := s.clock.Today()
	items := make([]domain.FridgeItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, domain.FridgeItem{
			BatchID:         r.ID,
			FridgeID:        r.FridgeID,
			IngredientID:    r.IngredientID,
			IngredientName:  r.IngredientName,
			StandardUnit:    r.StandardUnit,
			Quantity:        r.Quantity,
			EntryDate:       r.EntryDate,
			ExpiryDate:      r.ExpiryDate,
			DaysUntilExpiry: int(clock.Midnight(r.ExpiryDate).Sub(today).Hours() / 24),
		})
	}
	return items, nil
}

func (s *Service) ingredient(ctx context.Context, id snowflake.ID) (ingredientdomain.Ingredient, error) {
	var ingredient ingredientdomain.Ingredient
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&ingredient).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ingredientdomain.Ingredient{}, domain.ErrIngredientNotFound
		}
		return ingredientdomain.Ingredient{}, err
	}
	return ingredient, nil
}

// refreshStatuses reconciles meal plan statuses after an inventory change.
// The mutation has already committed; a refresh failure is logged, not
// returned, so the ledger operation itself still succeeds.
func (s *Service) refreshStatuses(ctx context.Context, fridgeID snowflake.ID) {
	if err := s.avail.RefreshMealPlanStatuses(ctx, fridgeID); err != nil {
		s.log.Warn("meal plan status refresh failed",
			zap.String("fridge_id", fridgeID.String()),
			zap.Error(err),
		)
	}
}
