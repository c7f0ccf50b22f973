package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"liquor-analytics/internal/models"
	"liquor-analytics/internal/repository"
	"liquor-analytics/pkg/logging"
)

// ListRecords handles GET /api/lots
func (h *APIHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	page, limit, offset := pagination(r)

	filter := repository.RecordFilter{
		Limit:  limit,
		Offset: offset,
	}

	if lot := r.URL.Query().Get("lot_number"); lot != "" {
		filter.LotNumber = &lot
	}
	if raw := r.URL.Query().Get("analysis_type"); raw != "" {
		at, err := models.ParseAnalysisType(raw)
		if err != nil {
			h.sendError(w, r, err.Error(), http.StatusBadRequest)
			return
		}
		filter.AnalysisType = &at
	}

	records, total, err := h.lots.ListRecords(ctx, filter)
	if err != nil {
		h.logger.Error(ctx, "[LIST_RECORDS] Failed to list records", logging.Fields{}, err)
		h.sendError(w, r, "Failed to retrieve records", http.StatusInternalServerError)
		return
	}

	totalPages := (total + limit - 1) / limit
	response := PaginatedResponse{
		Data:       records,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}

	h.metrics.RecordAPIRequest("/api/lots", "GET", "200")
	h.metrics.APIRequestDuration.WithLabelValues("/api/lots").Observe(time.Since(start).Seconds())
	h.sendJSON(w, response, http.StatusOK)
}

// CreateRecord handles POST /api/lots
func (h *APIHandler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	var record models.BatchRecord
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		h.sendError(w, r, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := record.Validate(); err != nil {
		h.sendPipelineError(w, r, err)
		return
	}

	if err := h.lots.CreateRecord(ctx, &record); err != nil {
		h.logger.Error(ctx, "[CREATE_RECORD] Failed to create record", logging.Fields{
			"lot_number": record.LotNumber,
		}, err)
		h.sendError(w, r, "Failed to create record", http.StatusInternalServerError)
		return
	}

	h.metrics.RecordAPIRequest("/api/lots", "POST", "201")
	h.metrics.APIRequestDuration.WithLabelValues("/api/lots").Observe(time.Since(start).Seconds())
	h.sendJSON(w, record, http.StatusCreated)
}

// UpdateRecord handles PUT /api/lots/{id}
func (h *APIHandler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.sendError(w, r, "Invalid record ID", http.StatusBadRequest)
		return
	}

	var record models.BatchRecord
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		h.sendError(w, r, "Invalid request body", http.StatusBadRequest)
		return
	}
	record.ID = id

	if err := record.Validate(); err != nil {
		h.sendPipelineError(w, r, err)
		return
	}

	if err := h.lots.UpdateRecord(ctx, &record); err != nil {
		if _, ok := err.(*repository.NotFoundError); ok {
			h.sendPipelineError(w, r, err)
			return
		}
		h.logger.Error(ctx, "[UPDATE_RECORD] Failed to update record", logging.Fields{
			"record_id": id,
		}, err)
		h.sendError(w, r, "Failed to update record", http.StatusInternalServerError)
		return
	}

	h.metrics.RecordAPIRequest("/api/lots/{id}", "PUT", "200")
	h.metrics.APIRequestDuration.WithLabelValues("/api/lots/{id}").Observe(time.Since(start).Seconds())
	h.sendJSON(w, record, http.StatusOK)
}

// ListLotNumbers handles GET /api/lots/numbers
func (h *APIHandler) ListLotNumbers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	numbers, err := h.lots.ListLotNumbers(ctx)
	if err != nil {
		h.logger.Error(ctx, "[LIST_LOT_NUMBERS] Failed to list lot numbers", logging.Fields{}, err)
		h.sendError(w, r, "Failed to retrieve lot numbers", http.StatusInternalServerError)
		return
	}

	h.metrics.RecordAPIRequest("/api/lots/numbers", "GET", "200")
	h.sendJSON(w, map[string]interface{}{"lot_numbers": numbers}, http.StatusOK)
}

// UploadExport handles POST /api/lots/{lot}/exports
func (h *APIHandler) UploadExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lotNumber := mux.Vars(r)["lot"]

	if h.exports == nil {
		h.sendError(w, r, "Export storage is not configured", http.StatusServiceUnavailable)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		h.sendError(w, r, "Invalid multipart request", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.sendError(w, r, "Missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	key, err := h.exports.Upload(ctx, lotNumber, header.Filename, file, header.Size)
	if err != nil {
		h.logger.Error(ctx, "[UPLOAD_EXPORT] Failed to upload export", logging.Fields{
			"lot_number": lotNumber,
			"filename":   header.Filename,
		}, err)
		h.sendError(w, r, "Failed to store export", http.StatusInternalServerError)
		return
	}

	h.metrics.RecordAPIRequest("/api/lots/{lot}/exports", "POST", "201")
	h.sendJSON(w, map[string]string{
		"lot_number": lotNumber,
		"key":        key,
	}, http.StatusCreated)
}
