package test

import (
	"context"
	"sync"

	"github.com/peertrade/escrowd/internal/domain/model"
)

// EscrowHeldCall records one escrow held notification.
type EscrowHeldCall struct {
	OrderID    string
	Reputation string
}

// RatePromptCall records one rating prompt.
type RatePromptCall struct {
	OrderID string
	RaterID string
	RatedID string
}

// ContinuationCall records one continuation notification.
type ContinuationCall struct {
	ParentID string
	ChildID  string
}

// NotifierRecorder captures every delivered notification intent.
type NotifierRecorder struct {
	mu sync.Mutex

	Started       []string
	Held          []EscrowHeldCall
	Released      []string
	RatePrompts   []RatePromptCall
	Continuations []ContinuationCall

	Err error
}

func (r *NotifierRecorder) TradeStarted(ctx context.Context, order *model.Order, buyer, seller *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Started = append(r.Started, order.ID)
	return r.Err
}

func (r *NotifierRecorder) EscrowHeld(ctx context.Context, order *model.Order, buyer, seller *model.User, makerReputation string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Held = append(r.Held, EscrowHeldCall{OrderID: order.ID, Reputation: makerReputation})
	return r.Err
}

func (r *NotifierRecorder) FundsReleased(ctx context.Context, order *model.Order, buyer, seller *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Released = append(r.Released, order.ID)
	return r.Err
}

func (r *NotifierRecorder) RatePrompt(ctx context.Context, order *model.Order, rater, rated *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	call := RatePromptCall{OrderID: order.ID}
	if rater != nil {
		call.RaterID = rater.ID
	}
	if rated != nil {
		call.RatedID = rated.ID
	}
	r.RatePrompts = append(r.RatePrompts, call)
	return r.Err
}

func (r *NotifierRecorder) ContinuationPublished(ctx context.Context, parent, child *model.Order, maker *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Continuations = append(r.Continuations, ContinuationCall{ParentID: parent.ID, ChildID: child.ID})
	return r.Err
}

// AnnouncerStub records announced order ids.
type AnnouncerStub struct {
	mu        sync.Mutex
	Published []string
	Err       error
}

func (s *AnnouncerStub) Publish(ctx context.Context, order *model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Published = append(s.Published, order.ID)
	return s.Err
}

// BoardStub records listing board operations.
type BoardStub struct {
	mu        sync.Mutex
	Published []string
	Removed   []string
	Listings  []model.Order

	PublishErr error
	RemoveErr  error
	OpenErr    error
}

func (s *BoardStub) Publish(ctx context.Context, order *model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Published = append(s.Published, order.ID)
	return s.PublishErr
}

func (s *BoardStub) Remove(ctx context.Context, order *model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Removed = append(s.Removed, order.ID)
	return s.RemoveErr
}

func (s *BoardStub) Open(ctx context.Context, fiatCode string) ([]model.Order, error) {
	if s.OpenErr != nil {
		return nil, s.OpenErr
	}
	return s.Listings, nil
}

// PayoutCall records one payout submission.
type PayoutCall struct {
	Destination string
	Amount      int64
}

// PayerRecorder captures payout submissions.
type PayerRecorder struct {
	mu      sync.Mutex
	Payouts []PayoutCall
	Err     error
}

func (p *PayerRecorder) Payout(ctx context.Context, destination string, amount int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Payouts = append(p.Payouts, PayoutCall{Destination: destination, Amount: amount})
	return p.Err
}

// Count returns the number of recorded payouts.
func (p *PayerRecorder) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Payouts)
}
