package test

import (
	"context"
	"sync"

	domainErrors "github.com/peertrade/escrowd/internal/domain/errors"
	"github.com/peertrade/escrowd/internal/domain/model"
)

// OrderRepositoryStub stores orders in-memory with optimistic versioning
// matching the real repository contract.
type OrderRepositoryStub struct {
	CreateFn       func(context.Context, *model.Order) error
	GetByIDFn      func(context.Context, string) (*model.Order, error)
	GetByHashFn    func(context.Context, string) (*model.Order, error)
	SaveFn         func(context.Context, *model.Order) error
	ListAwaitingFn func(context.Context) ([]model.Order, error)

	mu      sync.Mutex
	byID    map[string]model.Order
	Created []model.Order
	Saves   []model.Order
}

// NewOrderRepositoryStub constructs stub repository with initialized storage.
func NewOrderRepositoryStub(orders ...*model.Order) *OrderRepositoryStub {
	s := &OrderRepositoryStub{byID: make(map[string]model.Order)}
	for _, o := range orders {
		s.Seed(o)
	}
	return s
}

// Seed stores an order without recording a create call.
func (s *OrderRepositoryStub) Seed(order *model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[order.ID] = *order
}

// Stored returns the current persisted state of an order.
func (s *OrderRepositoryStub) Stored(id string) *model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.byID[id]; ok {
		copied := o
		return &copied
	}
	return nil
}

// Create persists a new order.
func (s *OrderRepositoryStub) Create(ctx context.Context, order *model.Order) error {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, order)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[order.ID]; exists {
		return domainErrors.ErrVersionConflict
	}
	s.byID[order.ID] = *order
	s.Created = append(s.Created, *order)
	return nil
}

// GetByID fetches an order copy by identifier or returns not found.
func (s *OrderRepositoryStub) GetByID(ctx context.Context, id string) (*model.Order, error) {
	if s.GetByIDFn != nil {
		return s.GetByIDFn(ctx, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.byID[id]; ok {
		copied := o
		return &copied, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByHash fetches an order by its escrow hold hash.
func (s *OrderRepositoryStub) GetByHash(ctx context.Context, hash string) (*model.Order, error) {
	if s.GetByHashFn != nil {
		return s.GetByHashFn(ctx, hash)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.byID {
		if o.Hash != nil && *o.Hash == hash {
			copied := o
			return &copied, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// Save applies a versioned write, bumping the version on success.
func (s *OrderRepositoryStub) Save(ctx context.Context, order *model.Order) error {
	if s.SaveFn != nil {
		return s.SaveFn(ctx, order)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.byID[order.ID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	if stored.Version != order.Version {
		return domainErrors.ErrVersionConflict
	}
	order.Version++
	s.byID[order.ID] = *order
	s.Saves = append(s.Saves, *order)
	return nil
}

// ListAwaitingEscrow returns non-terminal orders carrying a hold hash.
func (s *OrderRepositoryStub) ListAwaitingEscrow(ctx context.Context) ([]model.Order, error) {
	if s.ListAwaitingFn != nil {
		return s.ListAwaitingFn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Order
	for _, o := range s.byID {
		if o.Hash != nil && !o.Status.Terminal() {
			out = append(out, o)
		}
	}
	return out, nil
}

// UserRepositoryStub stores users in-memory for tests.
type UserRepositoryStub struct {
	Users map[string]*model.User
	Err   error
}

// NewUserRepositoryStub constructs stub repository with initialized map.
func NewUserRepositoryStub(users ...*model.User) *UserRepositoryStub {
	s := &UserRepositoryStub{Users: make(map[string]*model.User)}
	for _, u := range users {
		s.Users[u.ID] = u
	}
	return s
}

// GetByID fetches a user by identifier or returns not found.
func (s *UserRepositoryStub) GetByID(ctx context.Context, id string) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.Users[id]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// BlockRepositoryStub answers block lookups from a configured pair set.
type BlockRepositoryStub struct {
	Pairs map[[2]string]bool
	Err   error
}

// Block registers a directed block from blocker to blocked.
func (s *BlockRepositoryStub) Block(blockerID, blockedID string) {
	if s.Pairs == nil {
		s.Pairs = make(map[[2]string]bool)
	}
	s.Pairs[[2]string{blockerID, blockedID}] = true
}

// Exists reports whether blocker has blocked the other party.
func (s *BlockRepositoryStub) Exists(ctx context.Context, blockerID, blockedID string) (bool, error) {
	if s.Err != nil {
		return false, s.Err
	}
	return s.Pairs[[2]string{blockerID, blockedID}], nil
}

// CommunityRepositoryStub answers community lookups for tests.
type CommunityRepositoryStub struct {
	Communities map[string]*model.Community
	Banned      map[[2]string]bool
	Err         error
}

// GetByID fetches a community or returns not found.
func (s *CommunityRepositoryStub) GetByID(ctx context.Context, id string) (*model.Community, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if c, ok := s.Communities[id]; ok {
		return c, nil
	}
	return nil, domainErrors.ErrNotFound
}

// Ban registers a community ban for a user.
func (s *CommunityRepositoryStub) Ban(userID, communityID string) {
	if s.Banned == nil {
		s.Banned = make(map[[2]string]bool)
	}
	s.Banned[[2]string{userID, communityID}] = true
}

// IsBanned reports whether the user is banned from the community.
func (s *CommunityRepositoryStub) IsBanned(ctx context.Context, userID, communityID string) (bool, error) {
	if s.Err != nil {
		return false, s.Err
	}
	return s.Banned[[2]string{userID, communityID}], nil
}
