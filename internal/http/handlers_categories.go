package http

import (
	"net/http"

	"bilancio/internal/core"
)

type categoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func toCategoryResponses(cats []core.Category) []categoryResponse {
	out := make([]categoryResponse, 0, len(cats))
	for _, c := range cats {
		out = append(out, categoryResponse{ID: c.ID, Name: c.Name})
	}
	return out
}

// handleCategories serves GET /api/categories: both taxonomies in one
// payload.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	income, err := s.storage.ListIncomeCategories(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	expense, err := s.storage.ListExpenseCategories(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"income_categories":  toCategoryResponses(income),
		"expense_categories": toCategoryResponses(expense),
	})
}
