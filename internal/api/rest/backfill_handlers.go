package rest

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/fortuna/augur/internal/backfill"
	"github.com/fortuna/augur/internal/store"
)

// BackfillHandler proxies admin API calls to the backfill service.
type BackfillHandler struct {
	service *backfill.Service
}

// NewBackfillHandler wires the REST layer to the backfill service.
func NewBackfillHandler(service *backfill.Service) *BackfillHandler {
	return &BackfillHandler{service: service}
}

type backfillRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// EnqueueBackfill handles POST /api/v1/admin/backfill
func (h *BackfillHandler) EnqueueBackfill(w http.ResponseWriter, r *http.Request) {
	var req backfillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid start_date format (YYYY-MM-DD)", err)
		return
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid end_date format (YYYY-MM-DD)", err)
		return
	}

	job, err := h.service.Enqueue(r.Context(), backfill.Request{StartDate: start, EndDate: end})
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to enqueue backfill job", err)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"success": true,
		"job":     jobPayload(job),
	})
}

// GetBackfillJob handles GET /api/v1/admin/backfill/{jobID}
func (h *BackfillHandler) GetBackfillJob(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	jobID := vars["jobID"]

	job, err := h.service.Get(r.Context(), jobID)
	if err != nil {
		respondError(w, http.StatusNotFound, "Backfill job not found", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"job":     jobPayload(job),
	})
}

// CancelBackfillJob handles DELETE /api/v1/admin/backfill/{jobID}
func (h *BackfillHandler) CancelBackfillJob(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	jobID := vars["jobID"]

	if err := h.service.Cancel(r.Context(), jobID); err != nil {
		respondError(w, http.StatusConflict, "Failed to cancel backfill job", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"job_id":  jobID,
		"status":  store.JobStatusCancelled,
	})
}

// GetBackfillStatus handles GET /api/v1/admin/backfill
func (h *BackfillHandler) GetBackfillStatus(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Status(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch status", err)
		return
	}

	response := map[string]interface{}{
		"success": true,
		"status":  "idle",
	}
	if summary.ActiveJob != nil {
		response["status"] = summary.ActiveJob.Status
		response["active_job"] = jobPayload(summary.ActiveJob)
	}

	history := make([]map[string]interface{}, 0, len(summary.History))
	for _, job := range summary.History {
		history = append(history, jobPayload(job))
	}
	response["history"] = history

	respondJSON(w, http.StatusOK, response)
}

func jobPayload(job *store.BackfillJob) map[string]interface{} {
	if job == nil {
		return nil
	}

	payload := map[string]interface{}{
		"id":              job.ID,
		"start_date":      job.StartDate.Format("2006-01-02"),
		"end_date":        job.EndDate.Format("2006-01-02"),
		"status":          job.Status,
		"games_processed": job.GamesProcessed,
		"stats_upserted":  job.StatsUpserted,
		"created_at":      job.CreatedAt,
	}

	if job.LastError.Valid {
		payload["last_error"] = job.LastError.String
	}
	if job.StartedAt.Valid {
		payload["started_at"] = job.StartedAt.Time
	}
	if job.CompletedAt.Valid {
		payload["completed_at"] = job.CompletedAt.Time
	}

	return payload
}
