package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/bdsumon4u/KroyJogot24/internal/services"
)

// Dashboard returns the aggregate overview for a date range. Both bounds
// default to today.
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	today := time.Now()
	start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	end := endOfDay(start)

	if raw := query.Get("start_d"); raw != "" {
		parsed, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			h.writeError(w, r, fmt.Errorf("%w: invalid start_d %q", services.ErrValidation, raw))
			return
		}
		start = parsed
	}
	if raw := query.Get("end_d"); raw != "" {
		parsed, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			h.writeError(w, r, fmt.Errorf("%w: invalid end_d %q", services.ErrValidation, raw))
			return
		}
		end = endOfDay(parsed)
	}
	if end.Before(start) {
		h.writeError(w, r, fmt.Errorf("%w: end_d is before start_d", services.ErrValidation))
		return
	}

	overview, err := h.dashboardService.Overview(ctx, start, end)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, map[string]any{
		"success":  true,
		"overview": overview,
	})
}

// endOfDay returns the last representable instant of the day containing d,
// matching the inclusive day ranges the report queries use.
func endOfDay(d time.Time) time.Time {
	return d.AddDate(0, 0, 1).Add(-time.Nanosecond)
}
