package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/peertrade/escrowd/internal/domain/errors"
	"github.com/peertrade/escrowd/internal/server/http/dto"
)

// TradeHandler manages take and hold attachment endpoints.
type TradeHandler struct {
	facade MatchFacade
}

// NewTradeHandler constructs TradeHandler.
func NewTradeHandler(facade MatchFacade) *TradeHandler {
	return &TradeHandler{facade: facade}
}

// Take handles POST /api/orders/:id/take.
func (h *TradeHandler) Take(c *gin.Context) {
	takerID := CurrentPartyID(c)
	orderID := c.Param("id")

	var req dto.TakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	order, err := h.facade.Take(c.Request.Context(), orderID, takerID, req.Role)
	if err != nil {
		abortTakeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(order))
}

// AttachHold handles POST /api/orders/:id/hold.
func (h *TradeHandler) AttachHold(c *gin.Context) {
	orderID := c.Param("id")

	var req dto.HoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Hash) == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	order, err := h.facade.AttachHold(c.Request.Context(), orderID, req.Hash)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrNotFound):
			c.Status(http.StatusNotFound)
		case errors.Is(err, domainErrors.ErrHoldOutstanding):
			c.Status(http.StatusConflict)
		case errors.Is(err, domainErrors.ErrOrderTerminal):
			c.Status(http.StatusConflict)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(order))
}

func abortTakeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainErrors.ErrNotFound):
		c.Status(http.StatusNotFound)
	case errors.Is(err, domainErrors.ErrInvalidRole):
		c.Status(http.StatusUnprocessableEntity)
	case errors.Is(err, domainErrors.ErrSelfTrade),
		errors.Is(err, domainErrors.ErrTakerBlockedMaker),
		errors.Is(err, domainErrors.ErrMakerBlockedTaker),
		errors.Is(err, domainErrors.ErrBannedFromCommunity):
		c.Status(http.StatusForbidden)
	case errors.Is(err, domainErrors.ErrOrderTaken),
		errors.Is(err, domainErrors.ErrOrderNotTakeable),
		errors.Is(err, domainErrors.ErrOrderTerminal),
		errors.Is(err, domainErrors.ErrOrderFrozen):
		c.Status(http.StatusConflict)
	default:
		c.Status(http.StatusInternalServerError)
	}
}
