package memory

import (
	"context"
	"testing"

	"budgettracker/internal/core"
)

func TestMirrorAppendAndRemove(t *testing.T) {
	m := New()
	ctx := context.Background()

	ref, err := m.Append(ctx, core.Transaction{ID: 2, Kind: core.Expense, Category: "Groceries"})
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}
	ref, _ = m.Append(ctx, core.Transaction{ID: 1, Kind: core.Income, Category: "Salary"})
	if ref != "mem:2" {
		t.Fatalf("unexpected second ref %q", ref)
	}

	got := m.List()
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 2 {
		t.Fatalf("unexpected list: %+v", got)
	}

	if err := m.Remove(ctx, core.Transaction{ID: 2}); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if err := m.Remove(ctx, core.Transaction{ID: 99}); err != nil {
		t.Fatalf("removing an unknown id should not fail: %v", err)
	}
	if got := m.List(); len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("unexpected list after remove: %+v", got)
	}
}
