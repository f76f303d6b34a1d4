package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/peertrade/escrowd/internal/domain/errors"
	"github.com/peertrade/escrowd/internal/server/http/dto"
)

// QueryHandler serves order reads, public listings and the health endpoint.
type QueryHandler struct {
	facade QueryFacade
}

// NewQueryHandler constructs QueryHandler.
func NewQueryHandler(facade QueryFacade) *QueryHandler {
	return &QueryHandler{facade: facade}
}

// Order handles GET /api/orders/:id.
func (h *QueryHandler) Order(c *gin.Context) {
	order, err := h.facade.Order(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		c.Status(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

// Listings handles GET /api/listings/:fiat.
func (h *QueryHandler) Listings(c *gin.Context) {
	fiat := strings.ToUpper(strings.TrimSpace(c.Param("fiat")))
	if fiat == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	orders, err := h.facade.OpenListings(c.Request.Context(), fiat)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	if len(orders) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	response := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		response = append(response, toOrderResponse(&orders[i]))
	}
	c.JSON(http.StatusOK, response)
}

// Health handles GET /api/health.
func (h *QueryHandler) Health(c *gin.Context) {
	if err := h.facade.HealthCheck(c.Request.Context()); err != nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	c.Status(http.StatusOK)
}
