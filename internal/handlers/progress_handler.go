package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"studytrack/internal/models"
	"studytrack/internal/service"
)

// ProgressHandler handles the progress tracking API
type ProgressHandler struct {
	syncManager    *service.SyncManager
	catalogService *service.CatalogService
	reportService  *service.ReportService
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(syncManager *service.SyncManager, catalogService *service.CatalogService, reportService *service.ReportService) *ProgressHandler {
	return &ProgressHandler{
		syncManager:    syncManager,
		catalogService: catalogService,
		reportService:  reportService,
	}
}

// GetProgress selects a date and returns its snapshot. Without a date
// parameter it selects today, so first load lands on the current day.
func (h *ProgressHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	controller := h.syncManager.ForUser(user.ID)

	date := r.URL.Query().Get("date")
	if date == "" {
		date = models.Today()
	}

	snapshot, err := controller.SelectDate(date)
	if err != nil {
		h.respondControllerError(w, err, "Failed to load progress")
		return
	}

	respondJSON(w, http.StatusOK, newSnapshotView(snapshot, controller.Syncing()))
}

type mutateRequest struct {
	Subject string `json:"subject"`
	Field   string `json:"field"`
	Delta   int    `json:"delta"`
}

// Mutate applies a single increment or decrement to one subject counter
func (h *ProgressHandler) Mutate(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	controller := h.syncManager.ForUser(user.ID)

	var req mutateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	snapshot, err := controller.Mutate(req.Subject, models.CountField(req.Field), req.Delta)
	if err != nil {
		h.respondControllerError(w, err, "Failed to apply mutation")
		return
	}

	respondJSON(w, http.StatusOK, newSnapshotView(snapshot, controller.Syncing()))
}

type targetRequest struct {
	Subject string `json:"subject"`
	Target  int    `json:"target"`
}

// UpdateTarget changes one subject's daily target and refreshes the
// live snapshot so its percentages follow the new target immediately
func (h *ProgressHandler) UpdateTarget(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	controller := h.syncManager.ForUser(user.ID)

	var req targetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	catalog, err := h.catalogService.UpdateTarget(user.ID, req.Subject, req.Target)
	if err != nil {
		if errors.Is(err, service.ErrSubjectNotFound) {
			respondWithError(w, http.StatusNotFound, "Subject not found", "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to update target", err)
		return
	}

	controller.RefreshCatalog(catalog)

	snapshot, _ := controller.Snapshot()
	if snapshot == nil {
		respondJSON(w, http.StatusOK, map[string]string{"status": "target updated"})
		return
	}
	respondJSON(w, http.StatusOK, newSnapshotView(snapshot, controller.Syncing()))
}

// GetRollup aggregates the live snapshot with stored history
func (h *ProgressHandler) GetRollup(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	controller := h.syncManager.ForUser(user.ID)

	window := service.Window(r.URL.Query().Get("window"))
	if window == "" {
		window = service.WindowAll
	}
	if !service.ValidWindow(window) {
		respondWithError(w, http.StatusBadRequest, "Unsupported rollup window", "", nil)
		return
	}

	rollup, err := controller.Rollup(window)
	if err != nil {
		h.respondControllerError(w, err, "Failed to compute rollup")
		return
	}

	respondJSON(w, http.StatusOK, rollup)
}

// GetHistory lists the user's recent daily records, newest first
func (h *ProgressHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	controller := h.syncManager.ForUser(user.ID)

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid limit", "", nil)
			return
		}
		limit = n
	}

	records, err := controller.History(limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to load history", err)
		return
	}

	respondJSON(w, http.StatusOK, newHistoryView(records))
}

// GetSyncStatus reports whether unconfirmed work is outstanding
func (h *ProgressHandler) GetSyncStatus(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	controller := h.syncManager.ForUser(user.ID)

	respondJSON(w, http.StatusOK, map[string]bool{"syncing": controller.Syncing()})
}

// SendReport emails the user their last-7-days rollup
func (h *ProgressHandler) SendReport(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	controller := h.syncManager.ForUser(user.ID)

	if !h.reportService.IsEnabled() {
		respondWithError(w, http.StatusServiceUnavailable, "Report email is not configured", "", nil)
		return
	}

	rollup, err := controller.Rollup(service.WindowLast7Days)
	if err != nil {
		h.respondControllerError(w, err, "Failed to compute report rollup")
		return
	}

	catalog, err := h.catalogService.GetOrInit(user.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to load catalog", err)
		return
	}
	subjectOrder := make([]string, 0, len(catalog.Subjects))
	for _, subject := range catalog.Subjects {
		subjectOrder = append(subjectOrder, subject.Name)
	}

	if err := h.reportService.SendWeeklyReport(r.Context(), user, rollup, subjectOrder); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to send report", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "report sent"})
}

// respondControllerError maps controller sentinel errors onto HTTP statuses
func (h *ProgressHandler) respondControllerError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, service.ErrInvalidDate):
		respondWithError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD", "", nil)
	case errors.Is(err, service.ErrInvalidField):
		respondWithError(w, http.StatusBadRequest, "Invalid counter field", "", nil)
	case errors.Is(err, service.ErrUnknownSubject):
		respondWithError(w, http.StatusNotFound, "Subject not found", "", nil)
	case errors.Is(err, service.ErrNoDateSelected):
		respondWithError(w, http.StatusConflict, "No date selected", "", nil)
	case errors.Is(err, service.ErrLoading):
		respondWithError(w, http.StatusConflict, "Progress is still loading", "", nil)
	default:
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, logMsg, err)
	}
}
