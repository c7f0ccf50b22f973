package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"liquor-analytics/internal/models"
	"liquor-analytics/internal/prediction"
	"liquor-analytics/pkg/logging"
)

// TrainRequest is the body for POST /api/models/train
type TrainRequest struct {
	Target        string   `json:"target"`
	Algorithm     string   `json:"algorithm"`
	AnalysisTypes []string `json:"analysis_types,omitempty"`
}

// PredictRequest is the body for POST /api/predictions. Either a lot
// number or an explicit feature map must be supplied, not both.
type PredictRequest struct {
	Target    string             `json:"target"`
	Model     string             `json:"model"`
	LotNumber string             `json:"lot_number,omitempty"`
	Features  map[string]float64 `json:"features,omitempty"`
}

func parseFilter(raw []string) (prediction.RecordFilter, error) {
	if len(raw) == 0 {
		return prediction.DefaultRecordFilter(), nil
	}

	filter := prediction.RecordFilter{}
	for _, s := range raw {
		at, err := models.ParseAnalysisType(s)
		if err != nil {
			return prediction.RecordFilter{}, err
		}
		filter.AnalysisTypes = append(filter.AnalysisTypes, at)
	}
	return filter, nil
}

// Train handles POST /api/models/train
func (h *APIHandler) Train(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	var req TrainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, r, "Invalid request body", http.StatusBadRequest)
		return
	}

	algorithm, err := models.ParseAlgorithm(req.Algorithm)
	if err != nil {
		h.sendError(w, r, err.Error(), http.StatusBadRequest)
		return
	}

	filter, err := parseFilter(req.AnalysisTypes)
	if err != nil {
		h.sendError(w, r, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Target == "" || req.Target == "all" {
		result, err := h.training.TrainAll(ctx, algorithm, filter)
		if err != nil {
			h.logger.Error(ctx, "[TRAIN_ALL] Training run failed", logging.Fields{
				"algorithm": algorithm,
			}, err)
			h.sendError(w, r, "Training run failed", http.StatusInternalServerError)
			return
		}

		status := http.StatusOK
		if len(result.Models) == 0 {
			status = http.StatusUnprocessableEntity
		}
		h.metrics.APIRequestDuration.WithLabelValues("/api/models/train").Observe(time.Since(start).Seconds())
		h.sendJSON(w, result, status)
		return
	}

	if !models.IsTarget(req.Target) {
		h.sendError(w, r, "Unknown target: "+req.Target, http.StatusBadRequest)
		return
	}

	model, err := h.training.Train(ctx, req.Target, algorithm, filter)
	if err != nil {
		h.logger.Warn(ctx, "[TRAIN] Training failed", logging.Fields{
			"target":    req.Target,
			"algorithm": algorithm,
			"error":     err.Error(),
		})
		h.sendPipelineError(w, r, err)
		return
	}

	h.metrics.APIRequestDuration.WithLabelValues("/api/models/train").Observe(time.Since(start).Seconds())
	h.sendJSON(w, model, http.StatusCreated)
}

// TrainingStatus handles GET /api/models/status
func (h *APIHandler) TrainingStatus(w http.ResponseWriter, r *http.Request) {
	h.metrics.RecordAPIRequest("/api/models/status", "GET", "200")
	h.sendJSON(w, map[string]interface{}{"runs": h.training.Status()}, http.StatusOK)
}

// ListModels handles GET /api/models
func (h *APIHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	artifacts, err := h.artifacts.List()
	if err != nil {
		h.logger.Error(ctx, "[LIST_MODELS] Failed to list models", logging.Fields{}, err)
		h.sendError(w, r, "Failed to list models", http.StatusInternalServerError)
		return
	}

	h.metrics.RecordAPIRequest("/api/models", "GET", "200")
	h.sendJSON(w, map[string]interface{}{"models": artifacts}, http.StatusOK)
}

// GetModel handles GET /api/models/{target}/{algorithm}
func (h *APIHandler) GetModel(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	algorithm, err := models.ParseAlgorithm(vars["algorithm"])
	if err != nil {
		h.sendError(w, r, err.Error(), http.StatusBadRequest)
		return
	}

	model, err := h.artifacts.Load(vars["target"], algorithm)
	if err != nil {
		h.sendPipelineError(w, r, err)
		return
	}

	h.metrics.RecordAPIRequest("/api/models/{target}/{algorithm}", "GET", "200")
	h.sendJSON(w, model, http.StatusOK)
}

// Predict handles POST /api/predictions
func (h *APIHandler) Predict(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	var req PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, r, "Invalid request body", http.StatusBadRequest)
		return
	}

	if !models.IsTarget(req.Target) {
		h.sendError(w, r, "Unknown target: "+req.Target, http.StatusBadRequest)
		return
	}

	sel, err := prediction.ParseSelector(req.Model)
	if err != nil {
		h.sendError(w, r, err.Error(), http.StatusBadRequest)
		return
	}

	var result *models.PredictionResult
	switch {
	case req.LotNumber != "" && req.Features != nil:
		h.sendError(w, r, "Provide either lot_number or features, not both", http.StatusBadRequest)
		return
	case req.LotNumber != "":
		result, err = h.predictions.PredictLot(ctx, req.Target, req.LotNumber, sel)
	case req.Features != nil:
		result, err = h.predictions.Predict(ctx, req.Target, req.Features, sel)
	default:
		h.sendError(w, r, "Either lot_number or features is required", http.StatusBadRequest)
		return
	}

	if err != nil {
		h.sendPipelineError(w, r, err)
		return
	}

	h.metrics.APIRequestDuration.WithLabelValues("/api/predictions").Observe(time.Since(start).Seconds())
	h.sendJSON(w, result, http.StatusOK)
}
