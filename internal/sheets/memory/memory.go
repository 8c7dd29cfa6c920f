package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"budgettracker/internal/core"
	ports "budgettracker/internal/sheets"
)

// Mirror keeps mirrored transactions in process memory. It stands in for
// the spreadsheet when none is configured.
type Mirror struct {
	mu    sync.Mutex
	rows  int
	items map[int64]core.Transaction
}

var _ ports.TransactionMirror = (*Mirror)(nil)

func New() *Mirror {
	return &Mirror{items: make(map[int64]core.Transaction)}
}

// Append stores tx and returns a synthetic row reference. Appending an id
// twice overwrites the earlier copy.
func (m *Mirror) Append(ctx context.Context, tx core.Transaction) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows++
	m.items[tx.ID] = tx
	slog.DebugContext(ctx, "Mirrored transaction in memory", "id", tx.ID, "row", m.rows)
	return fmt.Sprintf("mem:%d", m.rows), nil
}

func (m *Mirror) Remove(_ context.Context, tx core.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, tx.ID)
	return nil
}

// List returns the mirrored transactions ordered by id.
func (m *Mirror) List() []core.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]core.Transaction, 0, len(m.items))
	for _, tx := range m.items {
		out = append(out, tx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
