package usecase

import (
	"time"

	"github.com/peertrade/escrowd/internal/domain/model"
)

// ContinuationOrder derives the follow-on open order spawned when a range
// order settles for less than its upper bound. Returns nil when the settled
// amount covers the full bound or the order carries no range.
func ContinuationOrder(parent *model.Order, id string, now time.Time) *model.Order {
	bound, ok := parent.RangeBound()
	if !ok {
		return nil
	}
	remaining := bound - parent.FiatAmount
	if remaining <= 0 {
		return nil
	}

	child := &model.Order{
		ID:            id,
		Kind:          parent.Kind,
		FiatCode:      parent.FiatCode,
		PaymentMethod: parent.PaymentMethod,
		PriceMargin:   parent.PriceMargin,
		CreatorID:     parent.CreatorID,
		CommunityID:   parent.CommunityID,
		Status:        model.OrderStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// The maker keeps the role it had on the parent.
	if parent.Kind == model.OrderKindSell {
		child.SellerID = parent.CreatorID
	} else {
		child.BuyerID = parent.CreatorID
	}

	if parent.MinAmount != nil && remaining > *parent.MinAmount {
		minAmount := *parent.MinAmount
		maxAmount := remaining
		child.MinAmount = &minAmount
		child.MaxAmount = &maxAmount
	} else {
		child.FiatAmount = remaining
	}

	return child
}
