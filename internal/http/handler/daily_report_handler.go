package handler

import (
	"net/http"

	"github.com/agrocampo/campo-api/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type DailyReportHandler struct {
	reportService *service.DailyReportService
	logger        *zap.Logger
}

func NewDailyReportHandler(reportService *service.DailyReportService, logger *zap.Logger) *DailyReportHandler {
	return &DailyReportHandler{reportService: reportService, logger: logger}
}

// List godoc
// @Summary List daily reports
// @Tags DailyReports
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param invalid query bool false "Only documents flagged with a validation annotation"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.DailyReport}
// @Failure 503 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /daily-reports [get]
func (h *DailyReportHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize, onlyInvalid := listParams(r)

	result, err := h.reportService.List(r.Context(), page, pageSize, onlyInvalid)
	if err != nil {
		h.logger.Error("failed to list daily reports", zap.Error(err))
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Create godoc
// @Summary Create daily report
// @Description Validate and store a field report. The referenced service must exist, the date cannot be in the future, and one report per service per day is allowed.
// @Tags DailyReports
// @Accept json
// @Produce json
// @Param report body domain.DailyReport true "Daily report payload"
// @Success 201 {object} domain.DailyReport
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /daily-reports [post]
func (h *DailyReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	rep, err := h.reportService.Create(r.Context(), body)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, rep)
}

// GetByID godoc
// @Summary Get daily report by ID
// @Tags DailyReports
// @Produce json
// @Param id path string true "Daily report ID"
// @Success 200 {object} domain.DailyReport
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /daily-reports/{id} [get]
func (h *DailyReportHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	rep, err := h.reportService.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rep)
}

// Update godoc
// @Summary Update daily report
// @Tags DailyReports
// @Accept json
// @Produce json
// @Param id path string true "Daily report ID"
// @Param report body domain.DailyReport true "Daily report payload"
// @Success 200 {object} domain.DailyReport
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /daily-reports/{id} [put]
func (h *DailyReportHandler) Update(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	rep, err := h.reportService.Update(r.Context(), chi.URLParam(r, "id"), body)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rep)
}

// ListByService godoc
// @Summary List daily reports for a service
// @Tags DailyReports
// @Produce json
// @Param id path string true "Service request ID"
// @Success 200 {array} domain.DailyReport
// @Failure 503 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /service-requests/{id}/daily-reports [get]
func (h *DailyReportHandler) ListByService(w http.ResponseWriter, r *http.Request) {
	reps, err := h.reportService.ListByService(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.logger.Error("failed to list reports by service", zap.Error(err))
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, reps)
}
