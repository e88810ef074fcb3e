package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	ingredientdomain "github.com/homefridge/fridgely/internal/ingredient/domain"
)

type createIngredientRequest struct {
	Name          string `json:"name"`
	StandardUnit  string `json:"standard_unit"`
	ShelfLifeDays int    `json:"shelf_life_days"`
}

func (s *Server) CreateIngredient(c *gin.Context) {
	var req createIngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.ingredientSvc.Create(c.Request.Context(), ingredientdomain.CreateIngredientRequest{
		Name:          req.Name,
		StandardUnit:  req.StandardUnit,
		ShelfLifeDays: req.ShelfLifeDays,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetIngredient(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.ingredientSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListIngredients(c *gin.Context) {
	resp, err := s.ingredientSvc.List(c.Request.Context(), ingredientdomain.ListIngredientRequest{
		Search: c.Query("search"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
