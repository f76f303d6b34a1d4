package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/peertrade/escrowd/internal/domain/errors"
)

// AdminHandler manages administrative intervention endpoints.
type AdminHandler struct {
	facade AdminFacade
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(facade AdminFacade) *AdminHandler {
	return &AdminHandler{facade: facade}
}

// Freeze handles POST /api/admin/orders/:id/freeze.
func (h *AdminHandler) Freeze(c *gin.Context) {
	adminID := CurrentPartyID(c)
	orderID := c.Param("id")

	order, err := h.facade.Freeze(c.Request.Context(), orderID, adminID)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrNotFound):
			c.Status(http.StatusNotFound)
		case errors.Is(err, domainErrors.ErrOrderTerminal):
			c.Status(http.StatusConflict)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(order))
}
