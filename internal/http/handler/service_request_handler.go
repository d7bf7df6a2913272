package handler

import (
	"net/http"

	"github.com/agrocampo/campo-api/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ServiceRequestHandler struct {
	requestService *service.ServiceRequestService
	logger         *zap.Logger
}

func NewServiceRequestHandler(requestService *service.ServiceRequestService, logger *zap.Logger) *ServiceRequestHandler {
	return &ServiceRequestHandler{requestService: requestService, logger: logger}
}

// List godoc
// @Summary List service requests
// @Tags ServiceRequests
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param invalid query bool false "Only documents flagged with a validation annotation"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.ServiceRequest}
// @Failure 503 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /service-requests [get]
func (h *ServiceRequestHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize, onlyInvalid := listParams(r)

	result, err := h.requestService.List(r.Context(), page, pageSize, onlyInvalid)
	if err != nil {
		h.logger.Error("failed to list service requests", zap.Error(err))
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Create godoc
// @Summary Create service request
// @Description Validate and store a new service request. The client must exist and the estimated start date must be at least tomorrow.
// @Tags ServiceRequests
// @Accept json
// @Produce json
// @Param request body domain.ServiceRequest true "Service request payload"
// @Success 201 {object} domain.ServiceRequest
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /service-requests [post]
func (h *ServiceRequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	req, err := h.requestService.Create(r.Context(), body)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, req)
}

// GetByID godoc
// @Summary Get service request by ID
// @Tags ServiceRequests
// @Produce json
// @Param id path string true "Service request ID"
// @Success 200 {object} domain.ServiceRequest
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /service-requests/{id} [get]
func (h *ServiceRequestHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	req, err := h.requestService.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}

// Update godoc
// @Summary Update service request
// @Tags ServiceRequests
// @Accept json
// @Produce json
// @Param id path string true "Service request ID"
// @Param request body domain.ServiceRequest true "Service request payload"
// @Success 200 {object} domain.ServiceRequest
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /service-requests/{id} [put]
func (h *ServiceRequestHandler) Update(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	req, err := h.requestService.Update(r.Context(), chi.URLParam(r, "id"), body)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}
