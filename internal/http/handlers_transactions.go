package http

import (
	"net/http"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/services"
)

type transactionRequest struct {
	Type       string `json:"type"`
	AccountID  string `json:"account_id"`
	CategoryID string `json:"category_id,omitempty"`
	GoalID     string `json:"goal_id,omitempty"`
	Amount     string `json:"amount"`
	Date       string `json:"date"`
	Notes      string `json:"notes,omitempty"`
}

func (req transactionRequest) toInput() (services.TransactionInput, error) {
	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		return services.TransactionInput{}, err
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return services.TransactionInput{}, core.ErrMissingDate
	}
	return services.TransactionInput{
		Type:        core.TransactionType(req.Type),
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
		GoalID:      req.GoalID,
		AmountCents: cents,
		Date:        date,
		Notes:       sanitizeInput(req.Notes),
	}, nil
}

type transactionResponse struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	AccountID  string `json:"account_id"`
	CategoryID string `json:"category_id,omitempty"`
	GoalID     string `json:"goal_id,omitempty"`
	Amount     string `json:"amount"`
	Date       string `json:"date"`
	Notes      string `json:"notes,omitempty"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:         t.ID,
		Type:       string(t.Type),
		AccountID:  t.AccountID,
		CategoryID: core.MergeCategory(t.Type, t.Category),
		GoalID:     t.GoalID,
		Amount:     t.Amount.String(),
		Date:       t.Date.Format("2006-01-02"),
		Notes:      t.Notes,
		CreatedAt:  t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  t.UpdatedAt.Format(time.RFC3339),
	}
}

// handleTransactions serves POST (create) and GET (filtered list) on
// /api/transactions.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createTransaction(w, r)
	case http.MethodGet:
		s.listTransactions(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	tx, err := s.transactions.Create(r.Context(), currentUser(r).ID, in)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionResponse(tx))
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r, currentUser(r).ID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	txs, err := s.transactions.List(r.Context(), f)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]transactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, toTransactionResponse(t))
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": out})
}

// handleTransactionByID serves GET, PUT and DELETE on
// /api/transactions/{id}.
func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "/api/transactions")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction id")
		return
	}
	userID := currentUser(r).ID

	switch r.Method {
	case http.MethodGet:
		tx, err := s.transactions.Get(r.Context(), userID, id)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toTransactionResponse(tx))

	case http.MethodPut:
		var req transactionRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		in, err := req.toInput()
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		tx, err := s.transactions.Update(r.Context(), userID, id, in)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toTransactionResponse(tx))

	case http.MethodDelete:
		if err := s.transactions.Delete(r.Context(), userID, id); err != nil {
			writeDomainError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

// handleSummary serves GET /api/transactions/summary with the same
// filter parameters as the list endpoint.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	f, err := parseFilter(r, currentUser(r).ID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sum, err := s.transactions.Summarize(r.Context(), f)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total_income":        core.FormatCents(sum.IncomeCents),
		"total_expenses":      core.FormatCents(sum.ExpenseCents),
		"total_contributions": core.FormatCents(sum.ContributionCents),
		"net":                 core.FormatCents(sum.NetCents()),
		"average":             core.FormatCents(sum.AverageCents()),
		"count":               sum.Count(),
	})
}
