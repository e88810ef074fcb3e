package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateIngredientRequest struct {
	Name          string
	StandardUnit  string
	ShelfLifeDays int
}

type ListIngredientRequest struct {
	Search string
}

type Service interface {
	Create(context.Context, CreateIngredientRequest) (Ingredient, error)
	Get(ctx context.Context, id snowflake.ID) (Ingredient, error)
	List(context.Context, ListIngredientRequest) ([]Ingredient, error)
}

var (
	ErrNotFound         = errors.New("ingredient_not_found")
	ErrNameTaken        = errors.New("ingredient_name_taken")
	ErrInvalidName      = errors.New("invalid_name")
	ErrInvalidUnit      = errors.New("invalid_unit")
	ErrInvalidShelfLife = errors.New("invalid_shelf_life")
)
