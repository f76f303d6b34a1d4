package auth

import (
	"go.uber.org/fx"

	"github.com/peertrade/escrowd/internal/config"
)

// Strategies bundles the two token scopes the HTTP surface verifies.
type Strategies struct {
	Party TokenStrategy
	Admin TokenStrategy
}

// Module provides authentication primitives via fx.
var Module = fx.Provide(newStrategies)

func newStrategies(cfg *config.Config) *Strategies {
	adminSecret := cfg.AdminSecret
	if adminSecret == "" {
		adminSecret = cfg.AuthSecret
	}
	return &Strategies{
		Party: NewHMACStrategy(cfg.AuthSecret, Options{}),
		Admin: NewHMACStrategy(adminSecret, Options{}),
	}
}
