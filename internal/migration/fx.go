package migration

import (
	"github.com/homefridge/fridgely/internal/config"
	fridgedomain "github.com/homefridge/fridgely/internal/fridge/domain"
	ingredientdomain "github.com/homefridge/fridgely/internal/ingredient/domain"
	inventorydomain "github.com/homefridge/fridgely/internal/inventory/domain"
	procurementdomain "github.com/homefridge/fridgely/internal/procurement/domain"
	recipedomain "github.com/homefridge/fridgely/internal/recipe/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		// sqlite is the zero-setup local mode; gorm derives its schema
		// from the models directly.
		if cfg.DBType == "sqlite" {
			return AutoMigrate(conn)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB, cfg.DBType)
	}),
)

// AutoMigrate creates the schema from the model structs. Tests use it
// against in-memory sqlite.
func AutoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&ingredientdomain.Ingredient{},
		&fridgedomain.Fridge{},
		&fridgedomain.FridgeAccess{},
		&inventorydomain.Batch{},
		&recipedomain.Recipe{},
		&recipedomain.RecipeRequirement{},
		&recipedomain.RecipeStep{},
		&recipedomain.RecipeReview{},
		&recipedomain.MealPlan{},
		&procurementdomain.Partner{},
		&procurementdomain.Product{},
		&procurementdomain.ShoppingListItem{},
		&procurementdomain.Order{},
		&procurementdomain.OrderItem{},
	)
}
