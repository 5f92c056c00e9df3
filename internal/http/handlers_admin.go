package http

import (
	"net/http"

	"bilancio/internal/core"
	"bilancio/internal/storage"
)

type userActivityResponse struct {
	UserID           string `json:"user_id"`
	Email            string `json:"email"`
	TransactionCount int64  `json:"transaction_count"`
	Volume           string `json:"volume"`
}

// handleAdminOverview serves GET /api/admin/overview with system-wide
// aggregates. Gated by requireAdmin.
func (s *Server) handleAdminOverview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	ov, err := s.storage.AdminOverview(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user_count":        ov.UserCount,
		"account_count":     ov.AccountCount,
		"goal_count":        ov.GoalCount,
		"transaction_count": ov.TransactionCount,
		"total_income":      core.FormatCents(ov.TotalIncomeCents),
		"total_expenses":    core.FormatCents(ov.TotalExpenseCents),
		"per_user":          toUserActivityResponses(ov.PerUser),
	})
}

func toUserActivityResponses(activity []storage.UserActivity) []userActivityResponse {
	out := make([]userActivityResponse, 0, len(activity))
	for _, a := range activity {
		out = append(out, userActivityResponse{
			UserID:           a.UserID,
			Email:            a.Email,
			TransactionCount: a.TransactionCount,
			Volume:           core.FormatCents(a.VolumeCents),
		})
	}
	return out
}
