package escrownode

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/peertrade/escrowd/internal/escrow"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type readerStub struct {
	messages  []kafka.Message
	next      int
	committed []kafka.Message
	closed    bool
}

func (r *readerStub) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if r.next >= len(r.messages) {
		return kafka.Message{}, context.Canceled
	}
	msg := r.messages[r.next]
	r.next++
	return msg, nil
}

func (r *readerStub) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *readerStub) Close() error {
	r.closed = true
	return nil
}

func envelopeMessage(t *testing.T, hash, state string) kafka.Message {
	t.Helper()
	value, err := json.Marshal(invoiceEnvelope{
		EventID:    "evt-1",
		Hash:       hash,
		State:      state,
		OccurredAt: time.Unix(1700000000, 0).UTC(),
	})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return kafka.Message{Value: value}
}

func TestRunDeliversUpdatesAndCommits(t *testing.T) {
	reader := &readerStub{messages: []kafka.Message{
		envelopeMessage(t, "hash-1", "HELD"),
		envelopeMessage(t, "hash-1", "CONFIRMED"),
	}}
	feed := &KafkaFeed{reader: reader, logger: discardLogger()}

	var updates []escrow.InvoiceUpdate
	err := feed.Run(context.Background(), func(ctx context.Context, u escrow.InvoiceUpdate) error {
		updates = append(updates, u)
		return nil
	})
	if !errors.Is(err, context.Canceled) && err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(updates) != 2 {
		t.Fatalf("expected two updates, got %d", len(updates))
	}
	if updates[0].Hash != "hash-1" || updates[0].State != escrow.StateHeld {
		t.Fatalf("unexpected first update %+v", updates[0])
	}
	if updates[1].State != escrow.StateConfirmed {
		t.Fatalf("unexpected second update %+v", updates[1])
	}
	if len(reader.committed) != 2 {
		t.Fatalf("expected both offsets committed, got %d", len(reader.committed))
	}
}

func TestRunStopsOnHandlerFailure(t *testing.T) {
	reader := &readerStub{messages: []kafka.Message{
		envelopeMessage(t, "hash-1", "CONFIRMED"),
		envelopeMessage(t, "hash-2", "HELD"),
	}}
	feed := &KafkaFeed{reader: reader, logger: discardLogger()}

	handlerErr := errors.New("storage down")
	var handled int
	err := feed.Run(context.Background(), func(ctx context.Context, u escrow.InvoiceUpdate) error {
		handled++
		return handlerErr
	})

	if !errors.Is(err, handlerErr) {
		t.Fatalf("expected handler error returned, got %v", err)
	}
	if handled != 1 {
		t.Fatalf("feed must stop after the failed update, handled %d", handled)
	}
	if len(reader.committed) != 0 {
		t.Fatal("failed update must stay uncommitted for redelivery")
	}
	if reader.next != 1 {
		t.Fatalf("feed must not advance past the failed update, fetched %d", reader.next)
	}
}

func TestRunCommitsMalformedMessages(t *testing.T) {
	reader := &readerStub{messages: []kafka.Message{
		{Value: []byte("not json")},
		envelopeMessage(t, "hash-1", "HELD"),
	}}
	feed := &KafkaFeed{reader: reader, logger: discardLogger()}

	var handled int
	_ = feed.Run(context.Background(), func(ctx context.Context, u escrow.InvoiceUpdate) error {
		handled++
		return nil
	})

	if handled != 1 {
		t.Fatalf("malformed message must be skipped, handled %d", handled)
	}
	if len(reader.committed) != 2 {
		t.Fatalf("malformed message must still be committed, got %d commits", len(reader.committed))
	}
}

func TestCloseClosesReader(t *testing.T) {
	reader := &readerStub{}
	feed := &KafkaFeed{reader: reader, logger: discardLogger()}
	if err := feed.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reader.closed {
		t.Fatal("expected underlying reader closed")
	}
}
