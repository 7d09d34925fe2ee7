package handler

import (
	"net/http"
	"time"

	"github.com/mbracken/njord/internal/domain"
	"github.com/mbracken/njord/internal/service"
)

// AnalyticsHandler serves the admin dashboard and sales reports.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler instance.
func NewAnalyticsHandler(analytics *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Dashboard handles GET /admin/dashboard.
func (h *AnalyticsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.analytics.Dashboard(r.Context())
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, dashboard)
}

// SalesReport handles GET /admin/reports/sales?from=...&to=... Dates are
// RFC 3339 or plain YYYY-MM-DD; the default window is the last 30 days.
func (h *AnalyticsHandler) SalesReport(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	from := now.AddDate(0, 0, -30)
	to := now

	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			ErrorResponse(w, r, err)
			return
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			ErrorResponse(w, r, err)
			return
		}
		to = parsed
		// A date-only upper bound means "through that day".
		if len(raw) == len("2006-01-02") {
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
	}

	report, err := h.analytics.SalesReport(r.Context(), from, to)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, report)
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Time{}, domain.Errorf(domain.EINVALID, "analytics.report", "Invalid date %q: use RFC 3339 or YYYY-MM-DD", raw)
}
