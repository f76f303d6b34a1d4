package repository

import (
	"context"

	"github.com/peertrade/escrowd/internal/domain/model"
)

// CommunityRepository provides access to communities and ban membership.
type CommunityRepository interface {
	GetByID(ctx context.Context, id string) (*model.Community, error)
	IsBanned(ctx context.Context, userID, communityID string) (bool, error)
}
