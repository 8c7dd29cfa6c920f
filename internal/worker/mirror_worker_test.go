package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"budgettracker/internal/amqp"
	"budgettracker/internal/core"
	"budgettracker/internal/sheets/memory"
)

type failingMirror struct{ err error }

func (f failingMirror) Append(context.Context, core.Transaction) (string, error) { return "", f.err }
func (f failingMirror) Remove(context.Context, core.Transaction) error { return f.err }

type fakeSource struct{ events []*amqp.TransactionEvent }

func (s fakeSource) ConsumeTransactionEvents(ctx context.Context, handler func(context.Context, *amqp.TransactionEvent) error) error {
	for _, ev := range s.events {
		if err := handler(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}

func sampleTx(id int64) core.Transaction {
	return core.Transaction{
		ID:       id,
		Kind:     core.Expense,
		Amount:   decimal.RequireFromString("12.30"),
		Category: "Transport",
		Date:     core.NewDate(2025, 6, 3),
	}
}

func TestMirrorWorker_HandleEvent(t *testing.T) {
	mirror := memory.New()
	w := NewMirrorWorker(mirror)
	ctx := context.Background()

	if err := w.HandleEvent(ctx, amqp.NewTransactionEvent(amqp.TransactionCreated, sampleTx(1))); err != nil {
		t.Fatalf("create event failed: %v", err)
	}
	if err := w.HandleEvent(ctx, amqp.NewTransactionEvent(amqp.TransactionCreated, sampleTx(2))); err != nil {
		t.Fatalf("create event failed: %v", err)
	}
	if err := w.HandleEvent(ctx, amqp.NewTransactionEvent(amqp.TransactionDeleted, sampleTx(1))); err != nil {
		t.Fatalf("delete event failed: %v", err)
	}

	got := mirror.List()
	if len(got) != 1 || got[0].ID != 2 || !got[0].Amount.Equal(decimal.RequireFromString("12.3")) {
		t.Fatalf("unexpected mirror contents: %+v", got)
	}
}

func TestMirrorWorker_HandleEventErrors(t *testing.T) {
	boom := errors.New("sheets unavailable")
	w := NewMirrorWorker(failingMirror{err: boom})
	ctx := context.Background()

	if err := w.HandleEvent(ctx, amqp.NewTransactionEvent(amqp.TransactionCreated, sampleTx(1))); !errors.Is(err, boom) {
		t.Fatalf("expected mirror error, got %v", err)
	}

	bad := amqp.NewTransactionEvent(amqp.TransactionCreated, sampleTx(1))
	bad.Date = "not-a-date"
	if err := w.HandleEvent(ctx, bad); !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("expected invalid date error, got %v", err)
	}
}

func TestMirrorWorker_Run(t *testing.T) {
	mirror := memory.New()
	w := NewMirrorWorker(mirror)
	src := fakeSource{events: []*amqp.TransactionEvent{
		amqp.NewTransactionEvent(amqp.TransactionCreated, sampleTx(5)),
		amqp.NewTransactionEvent(amqp.TransactionCreated, sampleTx(6)),
	}}
	if err := w.Run(context.Background(), src); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(mirror.List()) != 2 {
		t.Fatalf("expected 2 mirrored rows, got %d", len(mirror.List()))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	failing := NewMirrorWorker(failingMirror{err: errors.New("x")})
	if err := failing.Run(ctx, src); err != nil {
		t.Fatalf("cancelled run should return nil, got %v", err)
	}
}
