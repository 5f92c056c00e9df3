package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/services"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps service errors to status codes; anything
// unrecognized becomes a 500 without leaking internals.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound), errors.Is(err, core.ErrNotOwner):
		// Not-owner is reported as not-found so ids cannot be probed.
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrMissingDate),
		errors.Is(err, core.ErrMissingAccount),
		errors.Is(err, core.ErrMissingCategory),
		errors.Is(err, core.ErrMissingGoal),
		errors.Is(err, core.ErrCategoryOnGoal),
		errors.Is(err, core.ErrNotesTooLong),
		errors.Is(err, core.ErrEmptyName):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, services.ErrInvalidEmail), errors.Is(err, services.ErrWeakPassword):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, services.ErrEmailTaken):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			"method", r.Method, "url", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	return nil
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// pathID extracts the trailing id from paths like /api/transactions/{id}.
func pathID(r *http.Request, prefix string) string {
	return strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
}

// parseFilter builds a transaction filter from query parameters. The same
// parameters drive both the list and summary endpoints.
func parseFilter(r *http.Request, userID string) (core.Filter, error) {
	q := r.URL.Query()
	f := core.Filter{
		UserID:     userID,
		Type:       core.TransactionType(strings.TrimSpace(q.Get("type"))),
		AccountID:  strings.TrimSpace(q.Get("account_id")),
		CategoryID: strings.TrimSpace(q.Get("category_id")),
		GoalID:     strings.TrimSpace(q.Get("goal_id")),
		Search:     strings.TrimSpace(q.Get("search")),
		SortBy:     strings.TrimSpace(q.Get("sort_by")),
		SortAsc:    q.Get("sort_order") == "asc",
	}

	var err error
	if f.From, err = parseDateParam(q.Get("from")); err != nil {
		return core.Filter{}, errors.New("invalid from date, expected YYYY-MM-DD")
	}
	if f.To, err = parseDateParam(q.Get("to")); err != nil {
		return core.Filter{}, errors.New("invalid to date, expected YYYY-MM-DD")
	}
	if f.MinCents, err = parseAmountParam(q.Get("min_amount")); err != nil {
		return core.Filter{}, errors.New("invalid min_amount")
	}
	if f.MaxCents, err = parseAmountParam(q.Get("max_amount")); err != nil {
		return core.Filter{}, errors.New("invalid max_amount")
	}
	if f.Limit, err = parseIntParam(q.Get("limit")); err != nil {
		return core.Filter{}, errors.New("invalid limit")
	}
	if f.Offset, err = parseIntParam(q.Get("offset")); err != nil {
		return core.Filter{}, errors.New("invalid offset")
	}

	if err := f.Validate(); err != nil {
		return core.Filter{}, err
	}
	return f, nil
}

// sanitizeInput trims whitespace and strips control characters except
// tab, newline and carriage return.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func parseDateParam(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", v)
}

func parseAmountParam(v string) (int64, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, nil
	}
	return core.ParseDecimalToCents(v)
}

func parseIntParam(v string) (int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.New("invalid integer")
	}
	return n, nil
}
