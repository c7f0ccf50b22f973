package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"liquor-analytics/internal/models"
	"liquor-analytics/internal/prediction"
	"liquor-analytics/internal/registry"
	"liquor-analytics/internal/repository"
	"liquor-analytics/internal/services"
	"liquor-analytics/internal/storage"
	"liquor-analytics/pkg/logging"
	"liquor-analytics/pkg/metrics"
)

// APIHandler handles the analytics API endpoints
type APIHandler struct {
	lots        *services.LotService
	training    *services.TrainingService
	predictions *services.PredictionService
	analytics   *services.AnalyticsService
	reports     *services.ReportService // nil when report generation is not configured
	exports     *storage.ExportStore    // nil when object storage is not configured
	artifacts   *registry.FileRegistry
	logger      *logging.StructuredLogger
	metrics     *metrics.Collector
}

// NewAPIHandler creates a new API handler
func NewAPIHandler(
	lots *services.LotService,
	training *services.TrainingService,
	predictions *services.PredictionService,
	analytics *services.AnalyticsService,
	reports *services.ReportService,
	exports *storage.ExportStore,
	artifacts *registry.FileRegistry,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *APIHandler {
	return &APIHandler{
		lots:        lots,
		training:    training,
		predictions: predictions,
		analytics:   analytics,
		reports:     reports,
		exports:     exports,
		artifacts:   artifacts,
		logger:      logger,
		metrics:     metricsCollector,
	}
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// PaginatedResponse represents a paginated API response
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"total_pages"`
}

// HealthCheck handles GET /health
func (h *APIHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	h.logger.Debug(ctx, "[HEALTH_CHECK] Health check requested", logging.Fields{})
	h.sendJSON(w, status, http.StatusOK)
}

// sendJSON sends a JSON response
func (h *APIHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// sendError sends an error response
func (h *APIHandler) sendError(w http.ResponseWriter, r *http.Request, message string, statusCode int) {
	h.metrics.RecordAPIRequest(r.URL.Path, r.Method, strconv.Itoa(statusCode))

	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	h.sendJSON(w, response, statusCode)
}

// sendPipelineError maps pipeline error kinds to user-facing responses.
// All of these are recoverable operator errors, not process faults.
func (h *APIHandler) sendPipelineError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError

	switch err.(type) {
	case *models.ValidationError:
		status = http.StatusBadRequest
	case *prediction.InsufficientDataError:
		status = http.StatusUnprocessableEntity
	case *prediction.SchemaMismatchError:
		status = http.StatusUnprocessableEntity
	case *prediction.TrainingError:
		status = http.StatusUnprocessableEntity
	case *registry.NotFoundError:
		status = http.StatusNotFound
	case *repository.NotFoundError:
		status = http.StatusNotFound
	}

	h.sendError(w, r, err.Error(), status)
}

// pagination parses page/limit query parameters with defaults
func pagination(r *http.Request) (page, limit, offset int) {
	page = 1
	limit = 100

	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 && l <= 1000 {
		limit = l
	}

	return page, limit, (page - 1) * limit
}

// RegisterRoutes registers all API routes
func (h *APIHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/lots", h.ListRecords).Methods("GET")
	router.HandleFunc("/api/lots", h.CreateRecord).Methods("POST")
	router.HandleFunc("/api/lots/numbers", h.ListLotNumbers).Methods("GET")
	router.HandleFunc("/api/lots/{id:[0-9]+}", h.UpdateRecord).Methods("PUT")
	router.HandleFunc("/api/lots/{lot}/exports", h.UploadExport).Methods("POST")

	router.HandleFunc("/api/models/train", h.Train).Methods("POST")
	router.HandleFunc("/api/models/status", h.TrainingStatus).Methods("GET")
	router.HandleFunc("/api/models", h.ListModels).Methods("GET")
	router.HandleFunc("/api/models/{target}/{algorithm}", h.GetModel).Methods("GET")

	router.HandleFunc("/api/predictions", h.Predict).Methods("POST")
	router.HandleFunc("/api/analytics/correlations", h.Correlations).Methods("GET")
	router.HandleFunc("/api/reports/flavor", h.FlavorReport).Methods("POST")
	router.HandleFunc("/api/reports/comparison", h.ComparisonReport).Methods("POST")

	router.HandleFunc("/api/docs", OpenAPISpec).Methods("GET")
	router.HandleFunc("/docs", SwaggerUI).Methods("GET")
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
}
