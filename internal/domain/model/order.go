package model

import "time"

// OrderKind describes trade direction from the maker's point of view.
type OrderKind string

const (
	OrderKindBuy  OrderKind = "buy"
	OrderKindSell OrderKind = "sell"
)

// OrderStatus is the generic progression marker every component branches on.
type OrderStatus string

const (
	OrderStatusPending         OrderStatus = "PENDING"
	OrderStatusInProgress      OrderStatus = "IN_PROGRESS"
	OrderStatusActive          OrderStatus = "ACTIVE"
	OrderStatusFrozen          OrderStatus = "FROZEN"
	OrderStatusPaidHoldInvoice OrderStatus = "PAID_HOLD_INVOICE"
	OrderStatusCompleted       OrderStatus = "COMPLETED"
	OrderStatusCanceled        OrderStatus = "CANCELED"
	OrderStatusExpired         OrderStatus = "EXPIRED"
)

// Terminal reports whether no further transition may change the order.
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderStatusCompleted, OrderStatusCanceled, OrderStatusExpired:
		return true
	}
	return false
}

// ReasonStatus records why an in-progress order is waiting. It is written
// together with the generic marker in a single save so readers never observe
// one without the other.
type ReasonStatus string

const (
	ReasonNone                ReasonStatus = ""
	ReasonWaitingPayment      ReasonStatus = "WAITING_PAYMENT"
	ReasonWaitingBuyerInvoice ReasonStatus = "WAITING_BUYER_INVOICE"
)

// Order is the single source of truth for one peer-to-peer trade.
type Order struct {
	ID            string
	Kind          OrderKind
	FiatCode      string
	PaymentMethod string
	Amount        int64 // sats locked in escrow, fixed once taken
	FiatAmount    int64
	MinAmount     *int64 // fiat range lower bound, nil for fixed orders
	MaxAmount     *int64 // fiat range upper bound, nil for fixed orders
	PriceMargin   float64

	CreatorID    string
	BuyerID      string
	SellerID     string
	BuyerInvoice string // payout destination supplied by the buyer

	// Hash identifies the escrow hold; present only once an invoice was issued.
	Hash *string

	Status OrderStatus
	Reason ReasonStatus

	IsFrozen bool
	ActionBy string

	CommunityID *string

	TakenAt       *time.Time
	InvoiceHeldAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Version guards optimistic saves; bumped by the repository on each write.
	Version int64
}

// Maker returns the id of the party that created the order.
func (o *Order) Maker() string {
	return o.CreatorID
}

// Taken reports whether both roles are bound.
func (o *Order) Taken() bool {
	return o.BuyerID != "" && o.SellerID != ""
}

// TakerID returns the id of the party that took the order, empty until taken.
func (o *Order) TakerID() string {
	if !o.Taken() {
		return ""
	}
	if o.BuyerID == o.CreatorID {
		return o.SellerID
	}
	return o.BuyerID
}

// RangeBound returns the fiat upper bound for range orders and false for
// fixed-amount orders.
func (o *Order) RangeBound() (int64, bool) {
	if o.MaxAmount == nil {
		return 0, false
	}
	return *o.MaxAmount, true
}
