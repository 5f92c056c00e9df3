package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"bilancio/internal/core"
)

type goalRequest struct {
	Name         string `json:"name"`
	TargetAmount string `json:"target_amount"`
	TargetDate   string `json:"target_date,omitempty"`
	Priority     string `json:"priority,omitempty"`
	IsFamilyGoal bool   `json:"is_family_goal,omitempty"`
}

type goalResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	TargetAmount  string `json:"target_amount"`
	CurrentAmount string `json:"current_amount"`
	TargetDate    string `json:"target_date,omitempty"`
	Priority      string `json:"priority"`
	Status        string `json:"status"`
	IsFamilyGoal  bool   `json:"is_family_goal"`
	CreatedAt     string `json:"created_at"`
}

func toGoalResponse(g core.Goal) goalResponse {
	resp := goalResponse{
		ID:            g.ID,
		Name:          g.Name,
		TargetAmount:  core.FormatCents(g.TargetAmount.Cents),
		CurrentAmount: core.FormatCents(g.CurrentAmount.Cents),
		Priority:      g.Priority,
		Status:        string(g.Status),
		IsFamilyGoal:  g.IsFamilyGoal,
		CreatedAt:     g.CreatedAt.Format(time.RFC3339),
	}
	if !g.TargetDate.IsZero() {
		resp.TargetDate = g.TargetDate.Format("2006-01-02")
	}
	return resp
}

// handleGoals serves POST (create) and GET (list) on /api/goals.
func (s *Server) handleGoals(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createGoal(w, r)
	case http.MethodGet:
		s.listGoals(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) createGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	targetCents, err := core.ParseDecimalToCents(req.TargetAmount)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	var targetDate time.Time
	if req.TargetDate != "" {
		targetDate, err = time.Parse("2006-01-02", req.TargetDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid target_date, expected YYYY-MM-DD")
			return
		}
	}
	priority := req.Priority
	if priority == "" {
		priority = "medium"
	}

	now := time.Now().UTC()
	g := core.Goal{
		ID:           uuid.NewString(),
		UserID:       currentUser(r).ID,
		Name:         sanitizeInput(req.Name),
		TargetAmount: core.Money{Cents: targetCents},
		TargetDate:   targetDate,
		Priority:     priority,
		Status:       core.GoalInProgress,
		IsFamilyGoal: req.IsFamilyGoal,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := g.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.storage.CreateGoal(r.Context(), g); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGoalResponse(g))
}

func (s *Server) listGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.storage.ListGoals(r.Context(), currentUser(r).ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]goalResponse, 0, len(goals))
	for _, g := range goals {
		out = append(out, toGoalResponse(g))
	}
	writeJSON(w, http.StatusOK, map[string]any{"goals": out})
}

// handleGoalByID serves GET /api/goals/{id}.
func (s *Server) handleGoalByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	id := pathID(r, "/api/goals")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing goal id")
		return
	}

	g, err := s.storage.GetGoal(r.Context(), currentUser(r).ID, id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalResponse(g))
}
