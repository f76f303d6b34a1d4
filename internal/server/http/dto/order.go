package dto

import "time"

// TakeRequest describes the take payload sent by the chat frontend.
type TakeRequest struct {
	Role string `json:"role"`
}

// HoldRequest attaches an escrow hold hash to an in-progress order.
type HoldRequest struct {
	Hash string `json:"hash"`
}

// OrderResponse describes an order returned by the API.
type OrderResponse struct {
	ID            string     `json:"id"`
	Kind          string     `json:"kind"`
	Status        string     `json:"status"`
	Reason        string     `json:"reason,omitempty"`
	FiatCode      string     `json:"fiat_code"`
	FiatAmount    int64      `json:"fiat_amount"`
	MinAmount     *int64     `json:"min_amount,omitempty"`
	MaxAmount     *int64     `json:"max_amount,omitempty"`
	PaymentMethod string     `json:"payment_method"`
	PriceMargin   float64    `json:"price_margin"`
	IsFrozen      bool       `json:"is_frozen,omitempty"`
	TakenAt       *time.Time `json:"taken_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
