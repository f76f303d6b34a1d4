package notify

import (
	"time"
)

// Semantic intents the engine emits. Rendering and localization live with
// the chat service consuming the topic.
const (
	IntentTradeStarted          = "trade_started"
	IntentEscrowHeld            = "escrow_held"
	IntentFundsReleased         = "funds_released"
	IntentRatePrompt            = "rate_counterparty"
	IntentContinuationPublished = "continuation_published"
)

// Envelope is the wire format of one semantic notification.
type Envelope struct {
	EventID    string            `json:"event_id"`
	Intent     string            `json:"intent"`
	OrderID    string            `json:"order_id"`
	Recipients []string          `json:"recipients"`
	OccurredAt time.Time         `json:"occurred_at"`
	Payload    map[string]string `json:"payload,omitempty"`
}
