package repository

import "context"

// BlockRepository provides access to directed block relationships.
type BlockRepository interface {
	Exists(ctx context.Context, blockerID, blockedID string) (bool, error)
}
