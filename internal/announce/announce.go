package announce

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/nbd-wtf/go-nostr"

	"github.com/peertrade/escrowd/internal/domain/model"
	"github.com/peertrade/escrowd/internal/domain/repository"
)

// EventKind is the parameterized replaceable kind used for order
// announcements; the latest publication under the same d-tag supersedes all
// earlier ones.
const EventKind = 38383

const applicationTag = "escrowd"

// NostrAnnouncer maps order snapshots to signed replaceable events and
// publishes them to the configured relays.
type NostrAnnouncer struct {
	secretKey   string
	relays      []string
	window      time.Duration
	communities repository.CommunityRepository
	logger      *slog.Logger
	now         func() time.Time
}

// NewNostrAnnouncer constructs NostrAnnouncer, validating the signing key.
func NewNostrAnnouncer(
	secretKey string,
	relays []string,
	window time.Duration,
	communities repository.CommunityRepository,
	logger *slog.Logger,
) (*NostrAnnouncer, error) {
	if _, err := nostr.GetPublicKey(secretKey); err != nil {
		return nil, fmt.Errorf("invalid announcement key: %w", err)
	}
	return &NostrAnnouncer{
		secretKey:   secretKey,
		relays:      relays,
		window:      window,
		communities: communities,
		logger:      logger,
		now:         time.Now,
	}, nil
}

// Publish builds, signs and publishes the announcement for the order's
// current state. Publication succeeds when any relay accepts the event.
func (a *NostrAnnouncer) Publish(ctx context.Context, order *model.Order) error {
	event, err := a.BuildEvent(ctx, order)
	if err != nil {
		return err
	}

	if len(a.relays) == 0 {
		a.logger.Warn("no announcement relays configured", slog.String("order", order.ID))
		return nil
	}

	published := false
	for _, url := range a.relays {
		relay, err := nostr.RelayConnect(ctx, url)
		if err != nil {
			a.logger.Warn("relay connect failed",
				slog.String("relay", url), slog.String("error", err.Error()))
			continue
		}
		if err := relay.Publish(ctx, *event); err != nil {
			a.logger.Warn("relay publish failed",
				slog.String("relay", url), slog.String("error", err.Error()))
		} else {
			published = true
		}
		relay.Close()
	}

	if !published {
		return fmt.Errorf("announcement for order %s not accepted by any relay", order.ID)
	}
	return nil
}

// BuildEvent constructs and signs the replaceable event, verifying its own
// signature before handing it back. An unverifiable event is reported as an
// error, never returned.
func (a *NostrAnnouncer) BuildEvent(ctx context.Context, order *model.Order) (*nostr.Event, error) {
	now := a.now()
	tags := orderTags(order, now.Add(a.window))

	if order.CommunityID != nil {
		community, err := a.communities.GetByID(ctx, *order.CommunityID)
		if err != nil {
			return nil, fmt.Errorf("resolve community %s: %w", *order.CommunityID, err)
		}
		// Private communities stay undisclosed.
		if community.Public {
			tags = append(tags, nostr.Tag{"community_id", community.ID})
		}
	}

	event := nostr.Event{
		Kind:      EventKind,
		CreatedAt: nostr.Timestamp(now.Unix()),
		Tags:      tags,
		Content:   "",
	}
	if err := event.Sign(a.secretKey); err != nil {
		return nil, fmt.Errorf("sign announcement: %w", err)
	}

	ok, err := event.CheckSignature()
	if err != nil {
		return nil, fmt.Errorf("verify announcement: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("announcement for order %s failed self-verification", order.ID)
	}

	return &event, nil
}

func orderTags(order *model.Order, expiresAt time.Time) nostr.Tags {
	return nostr.Tags{
		{"d", order.ID},
		{"k", string(order.Kind)},
		{"f", order.FiatCode},
		{"s", kebabCase(string(order.Status))},
		{"amt", strconv.FormatInt(order.Amount, 10)},
		{"fa", fiatAmountTag(order)},
		{"pm", order.PaymentMethod},
		{"premium", strconv.FormatFloat(order.PriceMargin, 'f', -1, 64)},
		{"y", applicationTag},
		{"z", "order"},
		{"expiration", strconv.FormatInt(expiresAt.Unix(), 10)},
	}
}

// fiatAmountTag advertises the range for still-open range orders and the
// concrete amount once one is fixed.
func fiatAmountTag(order *model.Order) string {
	if order.FiatAmount == 0 && order.MinAmount != nil && order.MaxAmount != nil {
		return fmt.Sprintf("%d-%d", *order.MinAmount, *order.MaxAmount)
	}
	return strconv.FormatInt(order.FiatAmount, 10)
}

func kebabCase(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), "_", "-")
}
