package errors

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrOrderNotTakeable = errors.New("order is not takeable")
	ErrSelfTrade        = errors.New("maker cannot take own order")

	// The two block directions are distinct outcomes so the caller can
	// notify the correct party.
	ErrTakerBlockedMaker = errors.New("taker has blocked the maker")
	ErrMakerBlockedTaker = errors.New("maker has blocked the taker")

	ErrBannedFromCommunity = errors.New("user is banned from community")
	ErrOrderTaken          = errors.New("order already taken by another user")
	ErrOrderTerminal       = errors.New("order is in a terminal state")
	ErrOrderFrozen         = errors.New("order is frozen by admin")
	ErrVersionConflict     = errors.New("order was modified concurrently")
	ErrInvalidRole         = errors.New("invalid taker role for order")
	ErrHoldOutstanding     = errors.New("order already has an outstanding hold")
)
