package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	availabilitydomain "github.com/homefridge/fridgely/internal/availability/domain"
	"github.com/homefridge/fridgely/internal/clock"
	inventorydomain "github.com/homefridge/fridgely/internal/inventory/domain"
	"github.com/homefridge/fridgely/internal/procurement/domain"
	"github.com/homefridge/fridgely/pkg/db"
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
		log:       p.Log.Named("procurement.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		inventory: p.Inventory,
		avail:     p.Avail,
	}
}

func (s *Service) CreatePartner(ctx context.Context, req domain.CreatePartnerRequest) (domain.Partner, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Partner{}, domain.ErrInvalidName
	}

	partner := domain.Partner{
		ID:              s.genID.Generate(),
		Name:            name,
		ContractDate:    clock.Midnight(req.ContractDate),
		AvgShippingDays: req.AvgShippingDays,
		CreditScore:     req.CreditScore,
		CreatedAt:       s.clock.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&partner).Error; err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Partner{}, domain.ErrNameTaken
		}
		return domain.Partner{}, err
	}
	return partner, nil
}

func (s *Service) ListPartners(ctx context.Context) ([]domain.Partner, error) {
	var partners []domain.Partner
	err := s.db.WithContext(ctx).Order("name ASC").Find(&partners).Error
	if err != nil {
		return nil, err
	}
	return partners, nil
}

func (s *Service) CreateProduct(ctx context.Context, req domain.CreateProductRequest) (domain.Product, error) {
	sku := strings.TrimSpace(req.SKU)
	name := strings.TrimSpace(req.Name)
	if sku == "" || name == "" {
		return domain.Product{}, domain.ErrInvalidName
	}
	if req.Price.LessThanOrEqual(decimal.Zero) {
		return domain.Product{}, domain.ErrInvalidPrice
	}
	if req.UnitQuantity.LessThanOrEqual(decimal.Zero) {
		return domain.Product{}, domain.ErrInvalidQuantity
	}

	var count int64
	err := s.db.WithContext(ctx).Model(&domain.Partner{}).
		Where("id = ?", req.PartnerID).
		Count(&count).Error
	if err != nil {
		return domain.Product{}, err
	}
	if count == 0 {
		return domain.Product{}, domain.ErrPartnerNotFound
	}

	product := domain.Product{
		SKU:          sku,
		PartnerID:    req.PartnerID,
		IngredientID: req.IngredientID,
		Name:         name,
		Price:        req.Price,
		SellingUnit:  strings.TrimSpace(req.SellingUnit),
		UnitQuantity: req.UnitQuantity,
		CreatedAt:    s.clock.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&product).Error; err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Product{}, domain.ErrSKUTaken
		}
		return domain.Product{}, err
	}
	return product, nil
}

func (s *Service) ListProducts(ctx context.Context, req domain.ListProductRequest) ([]domain.Product, error) {
	stmt := s.db.WithContext(ctx).Model(&domain.Product{})
	if req.PartnerID != nil {
		stmt = stmt.Where("partner_id = ?", *req.PartnerID)
	}
	if req.IngredientID != nil {
		stmt = stmt.Where("ingredient_id = ?", *req.IngredientID)
	}

	var products []domain.Product
	if err := stmt.Order("price ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Service) AddToList(ctx context.Context, req domain.AddToListRequest) (domain.ShoppingListItem, error) {
	if req.QuantityToBuy.LessThanOrEqual(decimal.Zero) {
		return domain.ShoppingListItem{}, domain.ErrInvalidQuantity
	}

	item := domain.ShoppingListItem{
		UserID:        req.UserID,
		IngredientID:  req.IngredientID,
		QuantityToBuy: req.QuantityToBuy,
		AddedDate:     s.clock.Now(),
	}
	// Re-adding an ingredient replaces the noted quantity.
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&item).Error
	if err != nil {
		return domain.ShoppingListItem{}, err
	}
	return item, nil
}

func (s *Service) ListItems(ctx context.Context, userID snowflake.ID) ([]domain.ShoppingListEntry, error) {
	var entries []domain.ShoppingListEntry
	err := s.db.WithContext(ctx).Raw(
		`SELECT sli.*, i.name AS ingredient_name, i.standard_unit
		 FROM shopping_list_items sli
		 JOIN ingredients i ON i.id = sli.ingredient_id
		 WHERE sli.user_id = ?
		 ORDER BY sli.added_date ASC`,
		userID,
	).Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Service) RemoveFromList(ctx context.Context, userID, ingredientID snowflake.ID) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND ingredient_id = ?", userID, ingredientID).
		Delete(&domain.ShoppingListItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

type pick struct {
	entry   domain.ShoppingListEntry
	product domain.Product
	partner domain.Partner
}

func (s *Service) CreateOrders(ctx context.Context, req domain.CreateOrdersRequest) (domain.CreateOrdersResult, error) {
	entries, err := s.ListItems(ctx, req.UserID)
	if err != nil {
		return domain.CreateOrdersResult{}, err
	}
	if len(entries) == 0 {
		return domain.CreateOrdersResult{}, domain.ErrEmptyList
	}

	// Cheapest product per ingredient, grouped by its partner so each
	// partner gets exactly one order.
	byPartner := make(map[snowflake.ID][]pick)
	partnerOrder := make([]snowflake.ID, 0)
	for _, entry := range entries {
		var product domain.Product
		err := s.db.WithContext(ctx).
			Where("ingredient_id = ?", entry.IngredientID).
			Order("price ASC").
			First(&product).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.CreateOrdersResult{}, &domain.NoProductError{IngredientName: entry.IngredientName}
			}
			return domain.CreateOrdersResult{}, err
		}

		var partner domain.Partner
		if err := s.db.WithContext(ctx).Where("id = ?", product.PartnerID).Take(&partner).Error; err != nil {
			return domain.CreateOrdersResult{}, err
		}

		if _, seen := byPartner[partner.ID]; !seen {
			partnerOrder = append(partnerOrder, partner.ID)
		}
		byPartner[partner.ID] = append(byPartner[partner.ID], pick{entry: entry, product: product, partner: partner})
	}

	today := s.clock.Today()
	result := domain.CreateOrdersResult{TotalAmount: decimal.Zero}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, partnerID := range partnerOrder {
			picks := byPartner[partnerID]
			partner := picks[0].partner

			order := domain.Order{
				ID:              s.genID.Generate(),
				UserID:          req.UserID,
				FridgeID:        req.FridgeID,
				PartnerID:       partnerID,
				OrderDate:       s.clock.Now(),
				ExpectedArrival: today.AddDate(0, 0, partner.AvgShippingDays),
				TotalPrice:      decimal.Zero,
				Status:          domain.OrderStatusPending,
				CreatedAt:       s.clock.Now(),
				UpdatedAt:       s.clock.Now(),
			}

			detail := domain.OrderDetail{PartnerName: partner.Name}
			for _, p := range picks {
				// Shopping list quantities are in standard units; orders
				// count selling units, rounded up to whole units.
				units := p.entry.QuantityToBuy.Div(p.product.UnitQuantity).Ceil()
				subtotal := p.product.Price.Mul(units)
				order.TotalPrice = order.TotalPrice.Add(subtotal)

				detail.Items = append(detail.Items, domain.OrderLineDetail{
					SKU:         p.product.SKU,
					ProductName: p.product.Name,
					Quantity:    units,
					DealPrice:   p.product.Price,
					Subtotal:    subtotal,
				})
			}

			if err := tx.Create(&order).Error; err != nil {
				return err
			}
			for _, line := range detail.Items {
				item := domain.OrderItem{
					OrderID:   order.ID,
					SKU:       line.SKU,
					Quantity:  line.Quantity,
					DealPrice: line.DealPrice,
				}
				if err := tx.Create(&item).Error; err != nil {
					return err
				}
			}

			detail.Order = order
			result.Orders = append(result.Orders, detail)
			result.TotalAmount = result.TotalAmount.Add(order.TotalPrice)
		}

		return tx.Where("user_id = ?", req.UserID).Delete(&domain.ShoppingListItem{}).Error
	})
	if err != nil {
		return domain.CreateOrdersResult{}, err
	}

	s.log.Info("orders created",
		zap.String("user_id", req.UserID.String()),
		zap.Int("orders", len(result.Orders)),
		zap.String("total_amount", result.TotalAmount.String()),
	)

	// New pending supply may flip Insufficient plans back to Ready.
	s.refreshStatuses(ctx, req.FridgeID)
	return result, nil
}

func (s *Service) ListOrders(ctx context.Context, userID snowflake.ID) ([]domain.OrderDetail, error) {
	var orders []domain.Order
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("order_date DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	details := make([]domain.OrderDetail, 0, len(orders))
	for _, order := range orders {
		detail := domain.OrderDetail{Order: order}

		var partner domain.Partner
		if err := s.db.WithContext(ctx).Where("id = ?", order.PartnerID).Take(&partner).Error; err == nil {
			detail.PartnerName = partner.Name
		}

		err = s.db.WithContext(ctx).Raw(
			`SELECT oi.sku, p.name AS product_name, oi.quantity, oi.deal_price,
			        oi.quantity * oi.deal_price AS subtotal
			 FROM order_items oi
			 JOIN products p ON p.sku = oi.sku
			 WHERE oi.order_id = ?`,
			order.ID,
		).Scan(&detail.Items).Error
		if err != nil {
			return nil, err
		}
		details = append(details, detail)
	}
	return details, nil
}

func (s *Service) UpdateStatus(ctx context.Context, req domain.UpdateStatusRequest) (domain.Order, error) {
	if !req.To.Valid() {
		return domain.Order{}, domain.ErrInvalidStatus
	}

	var order domain.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stmt := db.ForUpdate(tx).Where("id = ?", req.OrderID)
		if req.Role == domain.RoleUser {
			stmt = stmt.Where("user_id = ?", req.UserID)
		}
		if err := stmt.Take(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrOrderNotFound
			}
			return err
		}

		if !order.Status.CanTransition(req.To) {
			return domain.ErrInvalidTransition
		}
		if !order.Status.AllowedFor(req.To, req.Role) {
			return domain.ErrTransitionDenied
		}

		order.Status = req.To
		order.UpdatedAt = s.clock.Now()
		return tx.Model(&domain.Order{}).
			Where("id = ?", order.ID).
			Updates(map[string]any{
				"status":     order.Status,
				"updated_at": order.UpdatedAt,
			}).Error
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.log.Info("order status updated",
		zap.String("order_id", order.ID.String()),
		zap.String("status", string(order.Status)),
		zap.String("role", string(req.Role)),
	)

	switch req.To {
	case domain.OrderStatusDelivered:
		if err := s.bookDelivery(ctx, order); err != nil {
			return domain.Order{}, err
		}
	case domain.OrderStatusCancelled:
		// Lost supply may flip Ready plans to Insufficient.
		s.refreshStatuses(ctx, order.FridgeID)
	}

	return order, nil
}

// deliveredLine carries everything needed to book one order line into the
// fridge.
type deliveredLine struct {
	IngredientID  snowflake.ID
	Quantity      decimal.Decimal
	UnitQuantity  decimal.Decimal
	ShelfLifeDays int
}

// bookDelivery turns each line of a delivered order into a fresh batch.
// Quantities convert from selling units to standard units; expiry comes
// from the ingredient's shelf life, unlike the flat buffer the
// availability projection assumes for not-yet-arrived orders.
func (s *Service) bookDelivery(ctx context.Context, order domain.Order) error {
	var lines []deliveredLine
	err := s.db.WithContext(ctx).Raw(
		`SELECT p.ingredient_id, oi.quantity, p.unit_quantity, i.shelf_life_days
		 FROM order_items oi
		 JOIN products p ON p.sku = oi.sku
		 JOIN ingredients i ON i.id = p.ingredient_id
		 WHERE oi.order_id = ?`,
		order.ID,
	).Scan(&lines).Error
	if err != nil {
		return err
	}

	today := s.clock.Today()
	for _, line := range lines {
		_, err := s.inventory.Add(ctx, inventorydomain.AddBatchRequest{
			FridgeID:     order.FridgeID,
			IngredientID: line.IngredientID,
			Quantity:     line.Quantity.Mul(line.UnitQuantity),
			ExpiryDate:   today.AddDate(0, 0, line.ShelfLifeDays),
		})
		if err != nil {
			return err
		}
	}

	s.log.Info("delivery booked",
		zap.String("order_id", order.ID.String()),
		zap.String("fridge_id", order.FridgeID.String()),
		zap.Int("lines", len(lines)),
	)
	return nil
}

func (s *Service) PendingSupply(ctx context.Context, fridgeID, ingredientID snowflake.ID, from, to time.Time) ([]domain.SupplyLine, error) {
	var rows []struct {
		ExpectedArrival time.Time
		Quantity        decimal.Decimal
		UnitQuantity    decimal.Decimal
	}
	err := s.db.WithContext(ctx).Raw(
		`SELECT o.expected_arrival, oi.quantity, p.unit_quantity
		 FROM orders o
		 JOIN order_items oi ON oi.order_id = o.id
		 JOIN products p ON p.sku = oi.sku
		 WHERE o.fridge_id = ?
		   AND p.ingredient_id = ?
		   AND o.status IN ?
		   AND o.expected_arrival >= ? AND o.expected_arrival <= ?
		 ORDER BY o.expected_arrival ASC`,
		fridgeID, ingredientID,
		[]domain.OrderStatus{domain.OrderStatusPending, domain.OrderStatusProcessing, domain.OrderStatusShipped},
		clock.Midnight(from), clock.Midnight(to),
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	lines := make([]domain.SupplyLine, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, domain.SupplyLine{
			ExpectedArrival: r.ExpectedArrival,
			Quantity:        r.Quantity.Mul(r.UnitQuantity),
		})
	}
	return lines, nil
}

func (s *Service) refreshStatuses(ctx context.Context, fridgeID snowflake.ID) {
	if err := s.avail.RefreshMealPlanStatuses(ctx, fridgeID); err != nil {
		s.log.Warn("meal plan status refresh failed",
			zap.String("fridge_id", fridgeID.String()),
			zap.Error(err),
		)
	}
}
