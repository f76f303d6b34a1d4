package escrownode

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/peertrade/escrowd/internal/escrow"
)

// messageReader is the subset of kafka.Reader the feed uses.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// invoiceEnvelope mirrors JSON notifications emitted by the escrow node.
type invoiceEnvelope struct {
	EventID    string    `json:"event_id"`
	Hash       string    `json:"hash"`
	State      string    `json:"state"`
	OccurredAt time.Time `json:"occurred_at"`
}

// KafkaFeed consumes hold state notifications from the escrow node topic.
// Offsets are committed only after the handler accepts an update, so a
// failed update is redelivered.
type KafkaFeed struct {
	reader messageReader
	logger *slog.Logger
}

// NewKafkaFeed constructs a consumer group member on the hold topic.
func NewKafkaFeed(brokers []string, topic, group string, logger *slog.Logger) *KafkaFeed {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit
	})
	return &KafkaFeed{reader: r, logger: logger}
}

// Run fetches updates until ctx is canceled. Malformed messages are
// logged and committed; they can never become valid on redelivery.
func (f *KafkaFeed) Run(ctx context.Context, handler escrow.Handler) error {
	for {
		msg, err := f.reader.FetchMessage(ctx)
		if err != nil {
			return err
		}

		var env invoiceEnvelope
		if err := json.Unmarshal(msg.Value, &env); err != nil {
			f.logger.Error("malformed escrow notification",
				slog.String("topic", msg.Topic),
				slog.Int64("offset", msg.Offset),
				slog.String("error", err.Error()))
			if err := f.reader.CommitMessages(ctx, msg); err != nil {
				return err
			}
			continue
		}

		update := escrow.InvoiceUpdate{
			Hash:       env.Hash,
			State:      escrow.State(env.State),
			OccurredAt: env.OccurredAt,
		}
		if err := handler(ctx, update); err != nil {
			// Commits are cumulative; advancing past this offset would
			// drop the update. Bail out so the subscription manager
			// reconnects and resumes from the last committed offset.
			f.logger.Warn("escrow update left uncommitted",
				slog.String("hash", env.Hash),
				slog.String("state", env.State),
				slog.String("error", err.Error()))
			return fmt.Errorf("handle invoice update %s: %w", env.Hash, err)
		}
		if err := f.reader.CommitMessages(ctx, msg); err != nil {
			return err
		}
	}
}

// Close releases the underlying reader.
func (f *KafkaFeed) Close() error {
	return f.reader.Close()
}
