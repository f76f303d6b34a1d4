package model

import "time"

// Block is a directed blocking relationship between two users. A block in
// either direction between two candidate counterparties vetoes a match.
type Block struct {
	BlockerID string
	BlockedID string
	CreatedAt time.Time
}
