package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	availabilitydomain "github.com/homefridge/fridgely/internal/availability/domain"
)

type checkAvailabilityRequest struct {
	RecipeID string `json:"recipe_id"`
	FridgeID string `json:"fridge_id"`
	NeededBy string `json:"needed_by"`
}

func (s *Server) CheckAvailability(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req checkAvailabilityRequest
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
	neededBy, err := parseDate(req.NeededBy)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if _, err := s.fridgeSvc.CheckAccess(c.Request.Context(), *fridgeID, userID); err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.availSvc.Check(c.Request.Context(), availabilitydomain.CheckRequest{
		RecipeID: *recipeID,
		FridgeID: *fridgeID,
		NeededBy: neededBy,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
