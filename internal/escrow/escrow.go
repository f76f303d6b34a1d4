package escrow

import (
	"context"
	"time"
)

// State is the hold state reported by the escrow network.
type State string

const (
	// StateHeld means funds are locked but not yet released.
	StateHeld State = "HELD"
	// StateConfirmed means funds were released to the payee.
	StateConfirmed State = "CONFIRMED"
)

// InvoiceUpdate is one asynchronous notification about an escrow hold.
// Delivery is at-least-once and may duplicate.
type InvoiceUpdate struct {
	Hash       string
	State      State
	OccurredAt time.Time
}

// Handler consumes one invoice update. A non-nil error keeps the
// notification uncommitted so the feed redelivers it.
type Handler func(ctx context.Context, update InvoiceUpdate) error

// Stream is a long-lived feed of invoice updates from the escrow network.
type Stream interface {
	Run(ctx context.Context, handler Handler) error
}
