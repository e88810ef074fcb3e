package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	inventorydomain "github.com/homefridge/fridgely/internal/inventory/domain"
	"github.com/shopspring/decimal"
)

type addBatchRequest struct {
	IngredientID string          `json:"ingredient_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	ExpiryDate   string          `json:"expiry_date"`
}

func (s *Server) AddBatch(c *gin.Context) {
	fridgeID, _, ok := s.requireAccess(c)
	if !ok {
		return
	}

	var req addBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	ingredientID, err := parseOptionalID(req.IngredientID)
	if err != nil || ingredientID == nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	expiry, err := parseDate(req.ExpiryDate)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.inventorySvc.Add(c.Request.Context(), inventorydomain.AddBatchRequest{
		FridgeID:     fridgeID,
		IngredientID: *ingredientID,
		Quantity:     req.Quantity,
		ExpiryDate:   expiry,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type consumeRequest struct {
	IngredientID string          `json:"ingredient_id"`
	Quantity     decimal.Decimal `json:"quantity"`
}

func (s *Server) ConsumeIngredient(c *gin.Context) {
	fridgeID, _, ok := s.requireAccess(c)
	if !ok {
		return
	}

	var req consumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	ingredientID, err := parseOptionalID(req.IngredientID)
	if err != nil || ingredientID == nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.inventorySvc.Consume(c.Request.Context(), inventorydomain.ConsumeRequest{
		FridgeID:     fridgeID,
		IngredientID: *ingredientID,
		Quantity:     req.Quantity,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListFridgeItems(c *gin.Context) {
	fridgeID, _, ok := s.requireAccess(c)
	if !ok {
		return
	}

	resp, err := s.inventorySvc.List(c.Request.Context(), fridgeID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateBatchRequest struct {
	Quantity   *decimal.Decimal `json:"quantity"`
	ExpiryDate *string          `json:"expiry_date"`
}

func (s *Server) UpdateBatch(c *gin.Context) {
	_, _, ok := s.requireAccess(c)
	if !ok {
		return
	}
	batchID, err := parseIDParam(c, "batchId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req updateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	update := inventorydomain.UpdateBatchRequest{
		BatchID:  batchID,
		Quantity: req.Quantity,
	}
	if req.ExpiryDate != nil {
		expiry, err := parseDate(*req.ExpiryDate)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		update.ExpiryDate = &expiry
	}

	resp, err := s.inventorySvc.Update(c.Request.Context(), update)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RemoveBatch(c *gin.Context) {
	_, _, ok := s.requireAccess(c)
	if !ok {
		return
	}
	batchID, err := parseIDParam(c, "batchId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.inventorySvc.Remove(c.Request.Context(), batchID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) ListPendingSupply(c *gin.Context) {
	fridgeID, _, ok := s.requireAccess(c)
	if !ok {
		return
	}
	ingredientID, err := parseOptionalID(c.Query("ingredient_id"))
	if err != nil || ingredientID == nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	from, err := parseDate(c.Query("from"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	to, err := parseDate(c.Query("to"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.procurementSvc.PendingSupply(c.Request.Context(), fridgeID, *ingredientID, from, to)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
