package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"liquor-analytics/pkg/logging"
)

// ReportRequest is the body for POST /api/reports/flavor
type ReportRequest struct {
	LotNumber      string `json:"lot_number"`
	UsePredictions bool   `json:"use_predictions"`
}

// ComparisonRequest is the body for POST /api/reports/comparison
type ComparisonRequest struct {
	FocusLot   string   `json:"focus_lot"`
	LotNumbers []string `json:"lot_numbers"`
}

// Correlations handles GET /api/analytics/correlations
func (h *APIHandler) Correlations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	var raw []string
	if q := r.URL.Query().Get("analysis_types"); q != "" {
		raw = strings.Split(q, ",")
	}
	filter, err := parseFilter(raw)
	if err != nil {
		h.sendError(w, r, err.Error(), http.StatusBadRequest)
		return
	}

	matrix, err := h.analytics.Correlations(ctx, filter)
	if err != nil {
		h.sendPipelineError(w, r, err)
		return
	}

	h.metrics.RecordAPIRequest("/api/analytics/correlations", "GET", "200")
	h.metrics.APIRequestDuration.WithLabelValues("/api/analytics/correlations").Observe(time.Since(start).Seconds())
	h.sendJSON(w, matrix, http.StatusOK)
}

// FlavorReport handles POST /api/reports/flavor
func (h *APIHandler) FlavorReport(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	if h.reports == nil {
		h.sendError(w, r, "Report generation is not configured", http.StatusServiceUnavailable)
		return
	}

	var req ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, r, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.LotNumber == "" {
		h.sendError(w, r, "lot_number is required", http.StatusBadRequest)
		return
	}

	report, err := h.reports.FlavorReport(ctx, req.LotNumber, req.UsePredictions)
	if err != nil {
		h.logger.Error(ctx, "[FLAVOR_REPORT] Report generation failed", logging.Fields{
			"lot_number": req.LotNumber,
		}, err)
		h.sendPipelineError(w, r, err)
		return
	}

	h.metrics.APIRequestDuration.WithLabelValues("/api/reports/flavor").Observe(time.Since(start).Seconds())
	h.sendJSON(w, report, http.StatusOK)
}

// ComparisonReport handles POST /api/reports/comparison
func (h *APIHandler) ComparisonReport(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	if h.reports == nil {
		h.sendError(w, r, "Report generation is not configured", http.StatusServiceUnavailable)
		return
	}

	var req ComparisonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, r, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.FocusLot == "" {
		h.sendError(w, r, "focus_lot is required", http.StatusBadRequest)
		return
	}

	report, err := h.reports.ComparisonReport(ctx, req.FocusLot, req.LotNumbers)
	if err != nil {
		h.logger.Error(ctx, "[COMPARISON_REPORT] Report generation failed", logging.Fields{
			"focus_lot": req.FocusLot,
		}, err)
		h.sendPipelineError(w, r, err)
		return
	}

	h.metrics.APIRequestDuration.WithLabelValues("/api/reports/comparison").Observe(time.Since(start).Seconds())
	h.sendJSON(w, report, http.StatusOK)
}
