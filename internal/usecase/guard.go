package usecase

import (
	"context"

	domainErrors "github.com/peertrade/escrowd/internal/domain/errors"
	"github.com/peertrade/escrowd/internal/domain/repository"
)

// CounterpartyGuard decides whether two users may be matched. It is a pure
// predicate over stored relationships and safe for concurrent use.
type CounterpartyGuard struct {
	blocks      repository.BlockRepository
	communities repository.CommunityRepository
}

// NewCounterpartyGuard constructs CounterpartyGuard.
func NewCounterpartyGuard(blocks repository.BlockRepository, communities repository.CommunityRepository) *CounterpartyGuard {
	return &CounterpartyGuard{blocks: blocks, communities: communities}
}

// CheckPair vetoes a match when a block exists in either direction or the
// taker is banned from the order's community. The two block directions are
// distinct outcomes so the caller can notify the correct party.
func (g *CounterpartyGuard) CheckPair(ctx context.Context, takerID, makerID string, communityID *string) error {
	blocked, err := g.blocks.Exists(ctx, takerID, makerID)
	if err != nil {
		return err
	}
	if blocked {
		return domainErrors.ErrTakerBlockedMaker
	}

	blocked, err = g.blocks.Exists(ctx, makerID, takerID)
	if err != nil {
		return err
	}
	if blocked {
		return domainErrors.ErrMakerBlockedTaker
	}

	if communityID != nil {
		banned, err := g.communities.IsBanned(ctx, takerID, *communityID)
		if err != nil {
			return err
		}
		if banned {
			return domainErrors.ErrBannedFromCommunity
		}
	}

	return nil
}
