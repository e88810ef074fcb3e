package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/homefridge/fridgely/internal/ingredient/domain"
	"github.com/homefridge/fridgely/internal/migration"
	"github.com/homefridge/fridgely/pkg/db"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func setupService(t *testing.T) domain.Service {
	t.Helper()

	conn, err := db.NewTest()
	assert.NoError(t, err)
	assert.NoError(t, migration.AutoMigrate(conn))

	node, err := snowflake.NewNode(1)
	assert.NoError(t, err)

	return New(Params{DB: conn, Log: zap.NewNop(), GenID: node})
}

func TestCreateIngredientValidation(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateIngredientRequest{Name: "  ", StandardUnit: "g", ShelfLifeDays: 7})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(ctx, domain.CreateIngredientRequest{Name: "Milk", StandardUnit: "liters", ShelfLifeDays: 7})
	assert.ErrorIs(t, err, domain.ErrInvalidUnit)

	_, err = svc.Create(ctx, domain.CreateIngredientRequest{Name: "Milk", StandardUnit: "ml", ShelfLifeDays: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidShelfLife)

	ing, err := svc.Create(ctx, domain.CreateIngredientRequest{Name: " Milk ", StandardUnit: "ml", ShelfLifeDays: 7})
	assert.NoError(t, err)
	assert.Equal(t, "Milk", ing.Name)
	assert.Equal(t, domain.UnitMilliliters, ing.StandardUnit)
}

func TestCreateIngredientRejectsDuplicateName(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateIngredientRequest{Name: "Eggs", StandardUnit: "pcs", ShelfLifeDays: 14})
	assert.NoError(t, err)

	_, err = svc.Create(ctx, domain.CreateIngredientRequest{Name: "Eggs", StandardUnit: "pcs", ShelfLifeDays: 14})
	assert.ErrorIs(t, err, domain.ErrNameTaken)
}

func TestGetIngredient(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateIngredientRequest{Name: "Flour", StandardUnit: "g", ShelfLifeDays: 90})
	assert.NoError(t, err)

	found, err := svc.Get(ctx, created.ID)
	assert.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = svc.Get(ctx, created.ID+1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListIngredientsFiltersBySearch(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	for _, name := range []string{"Whole Milk", "Oat Milk", "Eggs"} {
		_, err := svc.Create(ctx, domain.CreateIngredientRequest{Name: name, StandardUnit: "ml", ShelfLifeDays: 7})
		assert.NoError(t, err)
	}

	all, err := svc.List(ctx, domain.ListIngredientRequest{})
	assert.NoError(t, err)
	assert.Len(t, all, 3)

	milks, err := svc.List(ctx, domain.ListIngredientRequest{Search: "milk"})
	assert.NoError(t, err)
	assert.Len(t, milks, 2)
	// Ordered by name.
	assert.Equal(t, "Oat Milk", milks[0].Name)
	assert.Equal(t, "Whole Milk", milks[1].Name)
}
