package sheets

import (
	"context"

	"budgettracker/internal/core"
)

// Ports for outbound adapters.
type (
	// TransactionWriter appends a ledger record to an external mirror.
	TransactionWriter interface {
		Append(ctx context.Context, tx core.Transaction) (rowRef string, err error)
	}

	// TransactionRemover drops a mirrored record. Removing a record the
	// mirror never saw is not an error.
	TransactionRemover interface {
		Remove(ctx context.Context, tx core.Transaction) error
	}

	TransactionMirror interface {
		TransactionWriter
		TransactionRemover
	}
)
