package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"budgettracker/internal/core"
	applog "budgettracker/internal/log"
	"budgettracker/internal/storage"
)

// writeLedgerError maps a ledger failure onto a response: validation
// rejections become 422, unknown ids 404, everything else 500.
func writeLedgerError(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()
	logger := applog.FromContext(ctx)

	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		logger.InfoContext(ctx, "Rejected ledger input",
			applog.FieldOperation, op,
			applog.FieldError, err,
			applog.FieldReason, string(ve.Reason))
		ValidationErrorResponse(ve).Write(w)
	case errors.Is(err, storage.ErrNotFound):
		NotFoundError("Transazione non trovata").Write(w)
	default:
		logger.LogFields(ctx, slog.LevelError, "Ledger operation failed",
			applog.NewFields().
				WithOperation(op).
				WithMonth(r.URL.Query().Get("month")).
				WithError(err))
		InternalServerError().Write(w)
	}
}

// handleCreateTransaction validates and stores a posted transaction.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		applog.FromContext(ctx).WarnContext(ctx, "Unreadable request body", applog.FieldError, err)
		BadRequestError("Formato richiesta non valido").Write(w)
		return
	}

	tx, err := s.ledger.AddTransaction(ctx, p.rawTransaction())
	if err != nil {
		writeLedgerError(w, r, applog.OpCreate, err)
		return
	}

	applog.FromContext(ctx).LogFields(ctx, slog.LevelInfo, "Transaction created",
		applog.NewFields().
			WithOperation(applog.OpCreate).
			WithTransaction(tx.ID, tx.Kind.String(), amountString(tx.Amount), tx.Category, tx.Date.String()))

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/transactions/"+strconv.FormatInt(tx.ID, 10)).
		JSON(presentTransaction(tx)).
		Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		BadRequestError("ID transazione non valido").Write(w)
		return
	}
	if err := s.ledger.DeleteTransaction(r.Context(), id); err != nil {
		writeLedgerError(w, r, applog.OpDelete, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

// handleListTransactions lists transactions filtered by month and category.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	month, err := parseMonthQuery(query)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	filter := storage.TransactionFilter{
		Month:    month,
		Category: sanitizeInput(query.Get("category")),
	}

	txs, err := s.ledger.Transactions(r.Context(), filter)
	if err != nil {
		writeLedgerError(w, r, applog.OpList, err)
		return
	}

	items := make([]transactionDTO, 0, len(txs))
	for _, tx := range txs {
		items = append(items, presentTransaction(tx))
	}
	NewJSONResponse().JSON(map[string]any{
		"transactions": items,
		"count":        len(items),
	}).Write(w)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	kind, err := parseKindQuery(r.URL.Query())
	if err != nil {
		var ve *core.ValidationError
		if errors.As(err, &ve) {
			ValidationErrorResponse(ve).Write(w)
			return
		}
		BadRequestError(err.Error()).Write(w)
		return
	}

	names, err := s.ledger.Categories(r.Context(), kind)
	if err != nil {
		writeLedgerError(w, r, applog.OpList, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	NewJSONResponse().JSON(map[string]any{
		"kind":       string(kind),
		"categories": names,
	}).Write(w)
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	month, err := parseMonthQuery(r.URL.Query())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	bal, err := s.ledger.Balance(r.Context(), month)
	if err != nil {
		writeLedgerError(w, r, applog.OpSummary, err)
		return
	}
	NewJSONResponse().JSON(presentBalance(month, bal)).Write(w)
}

func (s *Server) handleSpending(w http.ResponseWriter, r *http.Request) {
	month, err := parseMonthQuery(r.URL.Query())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	spend, err := s.ledger.SpendByCategory(r.Context(), month)
	if err != nil {
		writeLedgerError(w, r, applog.OpSummary, err)
		return
	}
	NewJSONResponse().JSON(map[string]any{
		"month":    month,
		"spending": presentSpending(spend),
	}).Write(w)
}

// handleSummary serves the period summary behind the dashboard panel.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	month, err := parseMonthQuery(r.URL.Query())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	sum, err := s.ledger.Summary(r.Context(), month)
	if err != nil {
		writeLedgerError(w, r, applog.OpSummary, err)
		return
	}
	NewJSONResponse().JSON(presentSummary(sum)).Write(w)
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	n, err := parseMonthsParam(r.URL.Query())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	series, err := s.ledger.Trend(r.Context(), n)
	if err != nil {
		writeLedgerError(w, r, applog.OpSummary, err)
		return
	}
	NewJSONResponse().JSON(map[string]any{
		"months": presentTrend(series),
	}).Write(w)
}

func (s *Server) handleMonths(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().JSON(map[string]any{
		"months": presentMonths(s.ledger.RecentMonths(defaultTrendMonths)),
	}).Write(w)
}

func (s *Server) handleBackup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	path, err := s.ledger.Backup(ctx)
	if err != nil {
		writeLedgerError(w, r, applog.OpBackup, err)
		return
	}
	applog.FromContext(ctx).InfoContext(ctx, "Ledger backup written",
		applog.FieldOperation, applog.OpBackup, "path", path)
	NewJSONResponse().Status(http.StatusCreated).JSON(map[string]string{"path": path}).Write(w)
}
