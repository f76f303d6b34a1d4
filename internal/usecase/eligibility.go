package usecase

import (
	"context"

	"github.com/peertrade/escrowd/internal/domain/model"
)

// TakerRole names the side the taking user binds.
type TakerRole string

const (
	RoleBuyer  TakerRole = "buyer"
	RoleSeller TakerRole = "seller"
)

// EligibilityFunc is the externally supplied role-specific validation run
// before any mutation at take-time. The default accepts every taker; the
// deployment wires the real predicate (e.g. rejecting sellers whose prior
// order still waits on a fiat-sent confirmation).
type EligibilityFunc func(ctx context.Context, taker *model.User, order *model.Order, role TakerRole) error

// AllowAllTakers is the default eligibility predicate.
func AllowAllTakers(context.Context, *model.User, *model.Order, TakerRole) error {
	return nil
}
