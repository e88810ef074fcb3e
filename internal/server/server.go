package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/homefridge/fridgely/internal/availability"
	availabilitydomain "github.com/homefridge/fridgely/internal/availability/domain"
	"github.com/homefridge/fridgely/internal/config"
	"github.com/homefridge/fridgely/internal/fridge"
	fridgedomain "github.com/homefridge/fridgely/internal/fridge/domain"
	"github.com/homefridge/fridgely/internal/ingredient"
	ingredientdomain "github.com/homefridge/fridgely/internal/ingredient/domain"
	"github.com/homefridge/fridgely/internal/inventory"
	inventorydomain "github.com/homefridge/fridgely/internal/inventory/domain"
	"github.com/homefridge/fridgely/internal/migration"
	"github.com/homefridge/fridgely/internal/observability"
	"github.com/homefridge/fridgely/internal/procurement"
	procurementdomain "github.com/homefridge/fridgely/internal/procurement/domain"
	"github.com/homefridge/fridgely/internal/recipe"
	recipedomain "github.com/homefridge/fridgely/internal/recipe/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	observability.Module,
	migration.Module,
	ingredient.Module,
	fridge.Module,
	inventory.Module,
	recipe.Module,
	procurement.Module,
	availability.Module,
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine         *gin.Engine
	cfg            config.Config
	ingredientSvc  ingredientdomain.Service
	fridgeSvc      fridgedomain.Service
	inventorySvc   inventorydomain.Service
	recipeSvc      recipedomain.Service
	procurementSvc procurementdomain.Service
	availSvc       availabilitydomain.Service
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	IngredientSvc  ingredientdomain.Service
	FridgeSvc      fridgedomain.Service
	InventorySvc   inventorydomain.Service
	RecipeSvc      recipedomain.Service
	ProcurementSvc procurementdomain.Service
	AvailSvc       availabilitydomain.Service
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		ingredientSvc:  p.IngredientSvc,
		fridgeSvc:      p.FridgeSvc,
		inventorySvc:   p.InventorySvc,
		recipeSvc:      p.RecipeSvc,
		procurementSvc: p.ProcurementSvc,
		availSvc:       p.AvailSvc,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")

	api.POST("/ingredients", s.CreateIngredient)
	api.GET("/ingredients", s.ListIngredients)
	api.GET("/ingredients/:id", s.GetIngredient)

	api.POST("/fridges", s.CreateFridge)
	api.GET("/fridges", s.ListFridges)
	api.POST("/fridges/:id/members", s.AddFridgeMember)
	api.DELETE("/fridges/:id/members/:userId", s.RemoveFridgeMember)

	api.GET("/fridges/:id/items", s.ListFridgeItems)
	api.POST("/fridges/:id/items", s.AddBatch)
	api.POST("/fridges/:id/consume", s.ConsumeIngredient)
	api.PATCH("/fridges/:id/items/:batchId", s.UpdateBatch)
	api.DELETE("/fridges/:id/items/:batchId", s.RemoveBatch)
	api.GET("/fridges/:id/supply", s.ListPendingSupply)

	api.POST("/recipes", s.CreateRecipe)
	api.GET("/recipes", s.ListRecipes)
	api.GET("/recipes/:id", s.GetRecipe)
	api.POST("/recipes/:id/reviews", s.ReviewRecipe)
	api.GET("/recipes/:id/reviews", s.ListRecipeReviews)
	api.POST("/recipes/:id/cook", s.CookRecipe)

	api.POST("/meal-plans", s.CreateMealPlan)
	api.GET("/meal-plans", s.ListMealPlans)
	api.POST("/meal-plans/:id/complete", s.CompleteMealPlan)
	api.POST("/meal-plans/:id/cancel", s.CancelMealPlan)

	api.POST("/partners", s.CreatePartner)
	api.GET("/partners", s.ListPartners)
	api.POST("/products", s.CreateProduct)
	api.GET("/products", s.ListProducts)

	api.POST("/shopping-list", s.AddToShoppingList)
	api.GET("/shopping-list", s.ListShoppingList)
	api.DELETE("/shopping-list/:ingredientId", s.RemoveFromShoppingList)

	api.POST("/orders", s.CreateOrders)
	api.GET("/orders", s.ListOrders)
	api.POST("/orders/:id/status", s.UpdateOrderStatus)

	api.POST("/availability/check", s.CheckAvailability)
}
