package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type AddBatchRequest struct {
	FridgeID     snowflake.ID
	IngredientID snowflake.ID
	Quantity     decimal.Decimal
	ExpiryDate   time.Time
}

type ConsumeRequest struct {
	FridgeID     snowflake.ID
	IngredientID snowflake.ID
	Quantity     decimal.Decimal
}

type UpdateBatchRequest struct {
	BatchID    snowflake.ID
	Quantity   *decimal.Decimal
	ExpiryDate *time.Time
}

type Service interface {
	// Add creates a new batch. Equal-expiry batches are never merged.
	Add(context.Context, AddBatchRequest) (Batch, error)
	// Consume removes quantity from the fridge's batches in FIFO order
	// (earliest expiry first). All-or-nothing: on insufficient stock no
	// batch is touched.
	Consume(context.Context, ConsumeRequest) (Receipt, error)
	// Update and Remove are administrative corrections that bypass FIFO.
	Update(context.Context, UpdateBatchRequest) (Batch, error)
	Remove(ctx context.Context, batchID snowflake.ID) error
	List(ctx context.Context, fridgeID snowflake.ID) ([]FridgeItem, error)
}

var (
	ErrBatchNotFound      = errors.New("batch_not_found")
	ErrIngredientNotFound = errors.New("ingredient_not_found")
	ErrInvalidQuantity    = errors.New("invalid_quantity")
	ErrInvalidExpiry      = errors.New("invalid_expiry")
	ErrInsufficientStock  = errors.New("insufficient_stock")
)

// InsufficientStockError carries how much was requested versus available.
// errors.Is(err, ErrInsufficientStock) matches it.
type InsufficientStockError struct {
	IngredientName string
	StandardUnit   string
	Requested      decimal.Decimal
	Available      decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock of %s: requested %s %s, available %s %s",
		e.IngredientName, e.Requested, e.StandardUnit, e.Available, e.StandardUnit)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
