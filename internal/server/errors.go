package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	availabilitydomain "github.com/homefridge/fridgely/internal/availability/domain"
	fridgedomain "github.com/homefridge/fridgely/internal/fridge/domain"
	ingredientdomain "github.com/homefridge/fridgely/internal/ingredient/domain"
	inventorydomain "github.com/homefridge/fridgely/internal/inventory/domain"
	procurementdomain "github.com/homefridge/fridgely/internal/procurement/domain"
	recipedomain "github.com/homefridge/fridgely/internal/recipe/domain"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Detail  any    `json:"detail,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidRequest = errors.New("invalid_request")
)

// ErrorHandlingMiddleware converts errors attached to the context into a
// JSON error body after the handler chain runs.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	// Typed errors first so their detail survives the mapping.
	var stockErr *inventorydomain.InsufficientStockError
	if errors.As(err, &stockErr) {
		return http.StatusConflict, errorPayload{
			Type:    "insufficient_stock",
			Message: stockErr.Error(),
			Detail: gin.H{
				"ingredient_name": stockErr.IngredientName,
				"standard_unit":   stockErr.StandardUnit,
				"requested":       stockErr.Requested,
				"available":       stockErr.Available,
			},
		}
	}
	var shortErr *recipedomain.ShortIngredientsError
	if errors.As(err, &shortErr) {
		return http.StatusConflict, errorPayload{
			Type:    "insufficient_ingredients",
			Message: shortErr.Error(),
			Detail:  gin.H{"shortages": shortErr.Shortages},
		}
	}
	var noProduct *procurementdomain.NoProductError
	if errors.As(err, &noProduct) {
		return http.StatusBadRequest, errorPayload{
			Type:    "no_product_available",
			Message: noProduct.Error(),
			Detail:  gin.H{"ingredient_name": noProduct.IngredientName},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, fridgedomain.ErrNoAccess),
		errors.Is(err, fridgedomain.ErrNotOwner),
		errors.Is(err, procurementdomain.ErrTransitionDenied):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: err.Error(),
		}
	case errors.Is(err, ingredientdomain.ErrNameTaken),
		errors.Is(err, fridgedomain.ErrAlreadyMember),
		errors.Is(err, procurementdomain.ErrSKUTaken),
		errors.Is(err, procurementdomain.ErrNameTaken),
		errors.Is(err, procurementdomain.ErrInvalidTransition),
		errors.Is(err, recipedomain.ErrPlanTerminal):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ingredientdomain.ErrNotFound),
		errors.Is(err, fridgedomain.ErrNotFound),
		errors.Is(err, inventorydomain.ErrBatchNotFound),
		errors.Is(err, inventorydomain.ErrIngredientNotFound),
		errors.Is(err, recipedomain.ErrNotFound),
		errors.Is(err, recipedomain.ErrPlanNotFound),
		errors.Is(err, availabilitydomain.ErrRecipeNotFound),
		errors.Is(err, procurementdomain.ErrPartnerNotFound),
		errors.Is(err, procurementdomain.ErrProductNotFound),
		errors.Is(err, procurementdomain.ErrOrderNotFound),
		errors.Is(err, procurementdomain.ErrItemNotFound):
		return true
	}
	return false
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ingredientdomain.ErrInvalidName),
		errors.Is(err, ingredientdomain.ErrInvalidUnit),
		errors.Is(err, ingredientdomain.ErrInvalidShelfLife),
		errors.Is(err, fridgedomain.ErrInvalidName),
		errors.Is(err, inventorydomain.ErrInvalidQuantity),
		errors.Is(err, inventorydomain.ErrInvalidExpiry),
		errors.Is(err, recipedomain.ErrInvalidName),
		errors.Is(err, recipedomain.ErrNoRequirements),
		errors.Is(err, recipedomain.ErrInvalidRequirement),
		errors.Is(err, recipedomain.ErrInvalidRating),
		errors.Is(err, procurementdomain.ErrInvalidName),
		errors.Is(err, procurementdomain.ErrInvalidPrice),
		errors.Is(err, procurementdomain.ErrInvalidQuantity),
		errors.Is(err, procurementdomain.ErrInvalidStatus),
		errors.Is(err, procurementdomain.ErrEmptyList):
		return true
	}
	return false
}
