package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	procurementdomain "github.com/homefridge/fridgely/internal/procurement/domain"
	"github.com/shopspring/decimal"
)

type createPartnerRequest struct {
	Name            string `json:"name"`
	ContractDate    string `json:"contract_date"`
	AvgShippingDays int    `json:"avg_shipping_days"`
	CreditScore     int    `json:"credit_score"`
}

func (s *Server) CreatePartner(c *gin.Context) {
	var req createPartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	contractDate, err := parseDate(req.ContractDate)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.procurementSvc.CreatePartner(c.Request.Context(), procurementdomain.CreatePartnerRequest{
		Name:            req.Name,
		ContractDate:    contractDate,
		AvgShippingDays: req.AvgShippingDays,
		CreditScore:     req.CreditScore,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListPartners(c *gin.Context) {
	resp, err := s.procurementSvc.ListPartners(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type createProductRequest struct {
	SKU          string          `json:"sku"`
	PartnerID    string          `json:"partner_id"`
	IngredientID string          `json:"ingredient_id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	SellingUnit  string          `json:"selling_unit"`
	UnitQuantity decimal.Decimal `json:"unit_quantity"`
}

func (s *Server) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	partnerID, err := parseOptionalID(req.PartnerID)
	if err != nil || partnerID == nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	ingredientID, err := parseOptionalID(req.IngredientID)
	if err != nil || ingredientID == nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.procurementSvc.CreateProduct(c.Request.Context(), procurementdomain.CreateProductRequest{
		SKU:          req.SKU,
		PartnerID:    *partnerID,
		IngredientID: *ingredientID,
		Name:         req.Name,
		Price:        req.Price,
		SellingUnit:  req.SellingUnit,
		UnitQuantity: req.UnitQuantity,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListProducts(c *gin.Context) {
	partnerID, err := parseOptionalID(c.Query("partner_id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	ingredientID, err := parseOptionalID(c.Query("ingredient_id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.procurementSvc.ListProducts(c.Request.Context(), procurementdomain.ListProductRequest{
		PartnerID:    partnerID,
		IngredientID: ingredientID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type addToListRequest struct {
	IngredientID string          `json:"ingredient_id"`
	Quantity     decimal.Decimal `json:"quantity"`
}

func (s *Server) AddToShoppingList(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req addToListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	ingredientID, err := parseOptionalID(req.IngredientID)
	if err != nil || ingredientID == nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.procurementSvc.AddToList(c.Request.Context(), procurementdomain.AddToListRequest{
		UserID:        userID,
		IngredientID:  *ingredientID,
		QuantityToBuy: req.Quantity,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListShoppingList(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.procurementSvc.ListItems(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RemoveFromShoppingList(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	ingredientID, err := parseIDParam(c, "ingredientId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.procurementSvc.RemoveFromList(c.Request.Context(), userID, ingredientID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type createOrdersRequest struct {
	FridgeID string `json:"fridge_id"`
}

func (s *Server) CreateOrders(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req createOrdersRequest
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

	resp, err := s.procurementSvc.CreateOrders(c.Request.Context(), procurementdomain.CreateOrdersRequest{
		UserID:   userID,
		FridgeID: *fridgeID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListOrders(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.procurementSvc.ListOrders(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateOrderStatusRequest struct {
	Status string `json:"status"`
	Role   string `json:"role"`
}

func (s *Server) UpdateOrderStatus(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req updateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	role := procurementdomain.ActorRole(req.Role)
	if role == "" {
		role = procurementdomain.RoleUser
	}

	resp, err := s.procurementSvc.UpdateStatus(c.Request.Context(), procurementdomain.UpdateStatusRequest{
		OrderID: orderID,
		UserID:  userID,
		Role:    role,
		To:      procurementdomain.OrderStatus(req.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
