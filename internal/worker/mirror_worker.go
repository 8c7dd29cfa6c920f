package worker

import (
	"context"
	"fmt"
	"log/slog"

	"budgettracker/internal/amqp"
	"budgettracker/internal/sheets"
)

// EventSource delivers ledger events to a handler until ctx ends.
type EventSource interface {
	ConsumeTransactionEvents(ctx context.Context, handler func(context.Context, *amqp.TransactionEvent) error) error
}

// MirrorWorker replays ledger events onto an external mirror.
type MirrorWorker struct {
	mirror sheets.TransactionMirror
}

func NewMirrorWorker(mirror sheets.TransactionMirror) *MirrorWorker {
	return &MirrorWorker{mirror: mirror}
}

// HandleEvent applies one event. A returned error makes the broker redeliver.
func (w *MirrorWorker) HandleEvent(ctx context.Context, ev *amqp.TransactionEvent) error {
	tx, err := ev.Transaction()
	if err != nil {
		return fmt.Errorf("decode transaction %d: %w", ev.ID, err)
	}

	switch ev.Type {
	case amqp.TransactionCreated:
		ref, err := w.mirror.Append(ctx, tx)
		if err != nil {
			return fmt.Errorf("mirror transaction %d: %w", tx.ID, err)
		}
		slog.InfoContext(ctx, "Transaction mirrored", "id", tx.ID, "ref", ref)
	case amqp.TransactionDeleted:
		if err := w.mirror.Remove(ctx, tx); err != nil {
			return fmt.Errorf("remove mirrored transaction %d: %w", tx.ID, err)
		}
		slog.InfoContext(ctx, "Mirrored transaction removed", "id", tx.ID)
	default:
		slog.WarnContext(ctx, "Ignoring unknown ledger event", "type", ev.Type, "id", ev.ID)
	}
	return nil
}

// Run consumes src until ctx is cancelled.
func (w *MirrorWorker) Run(ctx context.Context, src EventSource) error {
	slog.InfoContext(ctx, "Mirror worker started")
	err := src.ConsumeTransactionEvents(ctx, w.HandleEvent)
	if ctx.Err() != nil {
		slog.InfoContext(ctx, "Mirror worker stopped")
		return nil
	}
	return err
}
