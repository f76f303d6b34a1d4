package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/peertrade/escrowd/internal/domain/model"
)

// messageWriter is the subset of kafka.Writer used by the notifier.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier publishes semantic notifications to a kafka topic. Messages
// are keyed by order id so each order's notifications stay ordered.
type KafkaNotifier struct {
	writer messageWriter
	logger *slog.Logger
}

// NewKafkaNotifier constructs KafkaNotifier for the given brokers and topic.
func NewKafkaNotifier(brokers []string, topic string, logger *slog.Logger) *KafkaNotifier {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}
	return &KafkaNotifier{writer: writer, logger: logger}
}

// Close flushes and closes the underlying writer.
func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}

func (n *KafkaNotifier) TradeStarted(ctx context.Context, order *model.Order, buyer, seller *model.User) error {
	return n.publish(ctx, Envelope{
		Intent:     IntentTradeStarted,
		OrderID:    order.ID,
		Recipients: recipients(buyer, seller),
		Payload: map[string]string{
			"kind":   string(order.Kind),
			"reason": string(order.Reason),
		},
	})
}

func (n *KafkaNotifier) EscrowHeld(ctx context.Context, order *model.Order, buyer, seller *model.User, makerReputation string) error {
	payload := map[string]string{
		"kind": string(order.Kind),
	}
	if makerReputation != "" {
		payload["maker_reputation"] = makerReputation
	}
	if order.Reason != model.ReasonNone {
		payload["reason"] = string(order.Reason)
	}
	return n.publish(ctx, Envelope{
		Intent:     IntentEscrowHeld,
		OrderID:    order.ID,
		Recipients: recipients(buyer, seller),
		Payload:    payload,
	})
}

func (n *KafkaNotifier) FundsReleased(ctx context.Context, order *model.Order, buyer, seller *model.User) error {
	return n.publish(ctx, Envelope{
		Intent:     IntentFundsReleased,
		OrderID:    order.ID,
		Recipients: recipients(buyer, seller),
	})
}

func (n *KafkaNotifier) RatePrompt(ctx context.Context, order *model.Order, rater, rated *model.User) error {
	payload := map[string]string{}
	if rated != nil {
		payload["rated"] = rated.ID
	}
	return n.publish(ctx, Envelope{
		Intent:     IntentRatePrompt,
		OrderID:    order.ID,
		Recipients: recipients(rater),
		Payload:    payload,
	})
}

func (n *KafkaNotifier) ContinuationPublished(ctx context.Context, parent, child *model.Order, maker *model.User) error {
	return n.publish(ctx, Envelope{
		Intent:     IntentContinuationPublished,
		OrderID:    child.ID,
		Recipients: recipients(maker),
		Payload: map[string]string{
			"parent_order": parent.ID,
			"fiat_amount":  strconv.FormatInt(child.FiatAmount, 10),
		},
	})
}

func (n *KafkaNotifier) publish(ctx context.Context, env Envelope) error {
	env.EventID = uuid.NewString()
	env.OccurredAt = time.Now()

	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	err = n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(env.OrderID),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("publish %s notification: %w", env.Intent, err)
	}
	return nil
}

func recipients(users ...*model.User) []string {
	var ids []string
	for _, u := range users {
		if u != nil {
			ids = append(ids, u.ID)
		}
	}
	return ids
}
