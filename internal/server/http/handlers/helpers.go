package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/peertrade/escrowd/internal/domain/model"
	"github.com/peertrade/escrowd/internal/server/http/dto"
	"github.com/peertrade/escrowd/internal/server/http/middleware"
)

// CurrentPartyID extracts the authenticated party identifier from context.
func CurrentPartyID(c *gin.Context) string {
	val, ok := c.Get(middleware.PartyIDContextKey)
	if !ok {
		return ""
	}
	id, _ := val.(string)
	return id
}

func toOrderResponse(order *model.Order) dto.OrderResponse {
	return dto.OrderResponse{
		ID:            order.ID,
		Kind:          string(order.Kind),
		Status:        string(order.Status),
		Reason:        string(order.Reason),
		FiatCode:      order.FiatCode,
		FiatAmount:    order.FiatAmount,
		MinAmount:     order.MinAmount,
		MaxAmount:     order.MaxAmount,
		PaymentMethod: order.PaymentMethod,
		PriceMargin:   order.PriceMargin,
		IsFrozen:      order.IsFrozen,
		TakenAt:       order.TakenAt,
		CreatedAt:     order.CreatedAt,
	}
}
