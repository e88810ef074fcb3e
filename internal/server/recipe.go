package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	recipedomain "github.com/homefridge/fridgely/internal/recipe/domain"
	"github.com/homefridge/fridgely/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

type recipeRequirementInput struct {
	IngredientID string          `json:"ingredient_id"`
	Quantity     decimal.Decimal `json:"quantity"`
}

type recipeStepInput struct {
	StepNumber  int    `json:"step_number"`
	Description string `json:"description"`
}

type createRecipeRequest struct {
	Name         string                   `json:"name"`
	Description  string                   `json:"description"`
	CookingTime  int                      `json:"cooking_time"`
	Requirements []recipeRequirementInput `json:"requirements"`
	Steps        []recipeStepInput        `json:"steps"`
}

func (s *Server) CreateRecipe(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req createRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	create := recipedomain.CreateRecipeRequest{
		OwnerID:     userID,
		Name:        req.Name,
		Description: req.Description,
		CookingTime: req.CookingTime,
	}
	for _, r := range req.Requirements {
		ingredientID, err := parseOptionalID(r.IngredientID)
		if err != nil || ingredientID == nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		create.Requirements = append(create.Requirements, recipedomain.RequirementInput{
			IngredientID:   *ingredientID,
			QuantityNeeded: r.Quantity,
		})
	}
	for _, st := range req.Steps {
		create.Steps = append(create.Steps, recipedomain.StepInput{
			StepNumber:  st.StepNumber,
			Description: st.Description,
		})
	}

	resp, err := s.recipeSvc.Create(c.Request.Context(), create)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetRecipe(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.recipeSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListRecipes(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Search string `form:"search"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.recipeSvc.List(c.Request.Context(), recipedomain.ListRecipeRequest{
		Search: query.Search,
		Page:   query.Pagination,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type reviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (s *Server) ReviewRecipe(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	recipeID, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	err = s.recipeSvc.Review(c.Request.Context(), recipedomain.ReviewRequest{
		UserID:   userID,
		RecipeID: recipeID,
		Rating:   req.Rating,
		Comment:  req.Comment,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) ListRecipeReviews(c *gin.Context) {
	recipeID, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.recipeSvc.ListReviews(c.Request.Context(), recipeID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type cookRequest struct {
	FridgeID string `json:"fridge_id"`
}

func (s *Server) CookRecipe(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	recipeID, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req cookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	fridgeID, err := parseOptionalID(req.FridgeID)
	if err != nil || fridgeID == nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if _, err := s.fridgeSvc.CheckAccess(c.Request.Context(), *fridgeID, userID); err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.recipeSvc.Cook(c.Request.Context(), recipedomain.CookRequest{
		RecipeID: recipeID,
		FridgeID: *fridgeID,
		UserID:   userID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type createMealPlanRequest struct {
	RecipeID    string `json:"recipe_id"`
	FridgeID    string `json:"fridge_id"`
	PlannedDate string `json:"planned_date"`
}

func (s *Server) CreateMealPlan(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req createMealPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	recipeID, err := parseOptionalID(req.RecipeID)
	if err != nil || recipeID == nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	fridgeID, err := parseOptionalID(req.FridgeID)
	if err != nil || fridgeID == nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	planned, err := parseDate(req.PlannedDate)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if _, err := s.fridgeSvc.CheckAccess(c.Request.Context(), *fridgeID, userID); err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.recipeSvc.CreateMealPlan(c.Request.Context(), recipedomain.CreateMealPlanRequest{
		UserID:      userID,
		RecipeID:    *recipeID,
		FridgeID:    *fridgeID,
		PlannedDate: planned,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListMealPlans(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	fridgeID, err := parseOptionalID(c.Query("fridge_id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	startDate, err := parseOptionalDate(c.Query("start_date"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	endDate, err := parseOptionalDate(c.Query("end_date"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.recipeSvc.ListMealPlans(c.Request.Context(), recipedomain.ListMealPlanRequest{
		UserID:    userID,
		FridgeID:  fridgeID,
		StartDate: startDate,
		EndDate:   endDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CompleteMealPlan(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	planID, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.recipeSvc.CompleteMealPlan(c.Request.Context(), planID, userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CancelMealPlan(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	planID, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.recipeSvc.CancelMealPlan(c.Request.Context(), planID, userID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
