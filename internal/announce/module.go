package announce

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/peertrade/escrowd/internal/config"
	"github.com/peertrade/escrowd/internal/domain/repository"
	"github.com/peertrade/escrowd/internal/usecase"
)

// Module wires the nostr announcer as the engine's announcement publisher.
var Module = fx.Options(
	fx.Provide(newAnnouncer),
	fx.Provide(func(a *NostrAnnouncer) usecase.Announcer { return a }),
)

func newAnnouncer(cfg *config.Config, communities repository.CommunityRepository, logger *slog.Logger) (*NostrAnnouncer, error) {
	return NewNostrAnnouncer(
		cfg.AnnouncePrivateKey,
		cfg.AnnounceRelays,
		cfg.AnnounceExpirationWindow,
		communities,
		logger,
	)
}
