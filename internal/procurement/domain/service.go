package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type CreatePartnerRequest struct {
	Name            string
	ContractDate    time.Time
	AvgShippingDays int
	CreditScore     int
}

type CreateProductRequest struct {
	SKU          string
	PartnerID    snowflake.ID
	IngredientID snowflake.ID
	Name         string
	Price        decimal.Decimal
	SellingUnit  string
	UnitQuantity decimal.Decimal
}

type ListProductRequest struct {
	PartnerID    *snowflake.ID
	IngredientID *snowflake.ID
}

type ShoppingListEntry struct {
	ShoppingListItem
	IngredientName string `json:"ingredient_name"`
	StandardUnit   string `json:"standard_unit"`
}

type AddToListRequest struct {
	UserID        snowflake.ID
	IngredientID  snowflake.ID
	QuantityToBuy decimal.Decimal
}

type CreateOrdersRequest struct {
	UserID   snowflake.ID
	FridgeID snowflake.ID
}

type OrderLineDetail struct {
	SKU         string          `json:"sku"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	DealPrice   decimal.Decimal `json:"deal_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type OrderDetail struct {
	Order
	PartnerName string            `json:"partner_name"`
	Items       []OrderLineDetail `json:"items"`
}

type CreateOrdersResult struct {
	Orders      []OrderDetail   `json:"orders"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type UpdateStatusRequest struct {
	OrderID snowflake.ID
	UserID  snowflake.ID
	Role    ActorRole
	To      OrderStatus
}

// SupplyLine is one pending arrival for an ingredient, already converted
// to the ingredient's standard unit.
type SupplyLine struct {
	ExpectedArrival time.Time
	Quantity        decimal.Decimal
}

type Service interface {
	CreatePartner(context.Context, CreatePartnerRequest) (Partner, error)
	ListPartners(ctx context.Context) ([]Partner, error)
	CreateProduct(context.Context, CreateProductRequest) (Product, error)
	ListProducts(context.Context, ListProductRequest) ([]Product, error)

	AddToList(context.Context, AddToListRequest) (ShoppingListItem, error)
	ListItems(ctx context.Context, userID snowflake.ID) ([]ShoppingListEntry, error)
	RemoveFromList(ctx context.Context, userID, ingredientID snowflake.ID) error

	// CreateOrders turns the user's shopping list into orders, one per
	// partner, picking the cheapest product per ingredient. Clears the
	// list on success.
	CreateOrders(context.Context, CreateOrdersRequest) (CreateOrdersResult, error)
	ListOrders(ctx context.Context, userID snowflake.ID) ([]OrderDetail, error)
	// UpdateStatus advances the order state machine. A transition to
	// Delivered books every line into the fridge as new batches.
	UpdateStatus(context.Context, UpdateStatusRequest) (Order, error)

	// PendingSupply lists arrivals of not-yet-delivered orders for the
	// fridge and ingredient within [from, to], in standard units.
	PendingSupply(ctx context.Context, fridgeID, ingredientID snowflake.ID, from, to time.Time) ([]SupplyLine, error)
}

var (
	ErrPartnerNotFound    = errors.New("partner_not_found")
	ErrProductNotFound    = errors.New("product_not_found")
	ErrOrderNotFound      = errors.New("order_not_found")
	ErrItemNotFound       = errors.New("shopping_list_item_not_found")
	ErrEmptyList          = errors.New("shopping_list_empty")
	ErrInvalidName        = errors.New("invalid_name")
	ErrInvalidPrice       = errors.New("invalid_price")
	ErrInvalidQuantity    = errors.New("invalid_quantity")
	ErrSKUTaken           = errors.New("sku_taken")
	ErrNameTaken          = errors.New("partner_name_taken")
	ErrInvalidStatus      = errors.New("invalid_order_status")
	ErrInvalidTransition  = errors.New("invalid_status_transition")
	ErrTransitionDenied   = errors.New("status_transition_denied")
	ErrNoProductAvailable = errors.New("no_product_available")
)

// NoProductError names the ingredient that no partner sells.
// errors.Is(err, ErrNoProductAvailable) matches it.
type NoProductError struct {
	IngredientName string
}

func (e *NoProductError) Error() string {
	return fmt.Sprintf("no products available for ingredient %q", e.IngredientName)
}

func (e *NoProductError) Is(target error) bool {
	return target == ErrNoProductAvailable
}
