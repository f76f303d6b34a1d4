package handlers

import (
	"context"

	"github.com/peertrade/escrowd/internal/domain/model"
)

// MatchFacade exposes take and hold attachment operations.
type MatchFacade interface {
	Take(ctx context.Context, orderID, takerID, role string) (*model.Order, error)
	AttachHold(ctx context.Context, orderID, hash string) (*model.Order, error)
}

// AdminFacade exposes administrative interventions.
type AdminFacade interface {
	Freeze(ctx context.Context, orderID, adminID string) (*model.Order, error)
}

// QueryFacade provides read access to orders and listings.
type QueryFacade interface {
	Order(ctx context.Context, id string) (*model.Order, error)
	OpenListings(ctx context.Context, fiatCode string) ([]model.Order, error)
	HealthCheck(ctx context.Context) error
}

// TradeFacade aggregates the full set of operations used across handlers.
type TradeFacade interface {
	MatchFacade
	AdminFacade
	QueryFacade
}
