package repository

import (
	"context"

	"github.com/peertrade/escrowd/internal/domain/model"
)

// UserRepository describes persistence operations for trading parties.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}
