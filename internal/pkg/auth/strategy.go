package auth

import "time"

// Options tunes token strategy behaviour.
type Options struct {
	TTL time.Duration
}

// TokenStrategy issues and verifies signed request tokens. Tokens are minted
// by the trusted chat frontend sharing the secret; the engine only verifies.
type TokenStrategy interface {
	IssueToken(subject string) (string, error)
	ParseToken(token string) (string, error)
	Name() string
}
