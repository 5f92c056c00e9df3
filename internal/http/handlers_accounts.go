package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"bilancio/internal/core"
)

type accountRequest struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Balance   string `json:"balance,omitempty"`
	Currency  string `json:"currency,omitempty"`
	IsDefault bool   `json:"is_default,omitempty"`
}

type accountResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Balance   string `json:"balance"`
	Currency  string `json:"currency"`
	IsDefault bool   `json:"is_default"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

func toAccountResponse(a core.Account) accountResponse {
	return accountResponse{
		ID:        a.ID,
		Name:      a.Name,
		Type:      string(a.Type),
		Balance:   core.FormatCents(a.Balance.Cents),
		Currency:  a.Currency,
		IsDefault: a.IsDefault,
		Status:    string(a.Status),
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
	}
}

// handleAccounts serves POST (create) and GET (list) on /api/accounts.
func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createAccount(w, r)
	case http.MethodGet:
		s.listAccounts(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) createAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var balanceCents int64
	if req.Balance != "" {
		var err error
		balanceCents, err = core.ParseDecimalToCents(req.Balance)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
	}
	currency := req.Currency
	if currency == "" {
		currency = "EUR"
	}

	now := time.Now().UTC()
	a := core.Account{
		ID:        uuid.NewString(),
		UserID:    currentUser(r).ID,
		Name:      sanitizeInput(req.Name),
		Type:      core.AccountType(req.Type),
		Balance:   core.Money{Cents: balanceCents},
		Currency:  currency,
		IsDefault: req.IsDefault,
		Status:    core.AccountActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.storage.CreateAccount(r.Context(), a); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccountResponse(a))
}

func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.storage.ListAccounts(r.Context(), currentUser(r).ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	writeJSON(w, http.StatusOK, map[string]any{"accounts": out})
}

// handleAccountByID serves GET /api/accounts/{id}.
func (s *Server) handleAccountByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	id := pathID(r, "/api/accounts")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account id")
		return
	}

	a, err := s.storage.GetAccount(r.Context(), currentUser(r).ID, id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(a))
}
