package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Partner is an external supplier fridges order from.
type Partner struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	Name            string       `gorm:"type:text;not null;uniqueIndex" json:"name"`
	ContractDate    time.Time    `gorm:"type:date;not null" json:"contract_date"`
	AvgShippingDays int          `gorm:"not null" json:"avg_shipping_days"`
	CreditScore     int          `gorm:"not null;default:0" json:"credit_score"`
	CreatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Partner) TableName() string { return "partners" }

// Product is a partner's catalog entry for an ingredient. UnitQuantity is
// how many standard units one selling unit contains, e.g. a "1L bottle" of
// milk has UnitQuantity 1000 when milk's standard unit is ml.
type Product struct {
	SKU          string          `gorm:"primaryKey;type:text" json:"sku"`
	PartnerID    snowflake.ID    `gorm:"not null;index" json:"partner_id"`
	IngredientID snowflake.ID    `gorm:"not null;index" json:"ingredient_id"`
	Name         string          `gorm:"type:text;not null" json:"name"`
	Price        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	SellingUnit  string          `gorm:"type:text;not null" json:"selling_unit"`
	UnitQuantity decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_quantity"`
	CreatedAt    time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Product) TableName() string { return "products" }

// ShoppingListItem is a user's note to buy an ingredient, in the
// ingredient's standard unit.
type ShoppingListItem struct {
	UserID        snowflake.ID    `gorm:"primaryKey" json:"user_id"`
	IngredientID  snowflake.ID    `gorm:"primaryKey" json:"ingredient_id"`
	QuantityToBuy decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"quantity_to_buy"`
	AddedDate     time.Time       `gorm:"not null" json:"added_date"`
}

// TableName sets the database table name.
func (ShoppingListItem) TableName() string { return "shopping_list_items" }

// Order is one purchase from one partner, destined for one fridge.
type Order struct {
	ID              snowflake.ID    `gorm:"primaryKey" json:"id"`
	UserID          snowflake.ID    `gorm:"not null;index" json:"user_id"`
	FridgeID        snowflake.ID    `gorm:"not null;index" json:"fridge_id"`
	PartnerID       snowflake.ID    `gorm:"not null;index" json:"partner_id"`
	OrderDate       time.Time       `gorm:"not null" json:"order_date"`
	ExpectedArrival time.Time       `gorm:"type:date;not null" json:"expected_arrival"`
	TotalPrice      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_price"`
	Status          OrderStatus     `gorm:"type:text;not null;default:'Pending'" json:"status"`
	CreatedAt       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Order) TableName() string { return "orders" }

// OrderItem is one product line of an order. Quantity counts selling
// units; DealPrice snapshots the product price at order time.
type OrderItem struct {
	OrderID   snowflake.ID    `gorm:"primaryKey" json:"order_id"`
	SKU       string          `gorm:"primaryKey;type:text" json:"sku"`
	Quantity  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"quantity"`
	DealPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"deal_price"`
}

// TableName sets the database table name.
func (OrderItem) TableName() string { return "order_items" }
