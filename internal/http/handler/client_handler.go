package handler

import (
	"net/http"

	"github.com/agrocampo/campo-api/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ClientHandler struct {
	clientService *service.ClientService
	logger        *zap.Logger
}

func NewClientHandler(clientService *service.ClientService, logger *zap.Logger) *ClientHandler {
	return &ClientHandler{clientService: clientService, logger: logger}
}

// List godoc
// @Summary List clients
// @Description Get paginated list of clients
// @Tags Clients
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param invalid query bool false "Only documents flagged with a validation annotation"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.Client}
// @Failure 401 {object} domain.ErrorResponse
// @Failure 503 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /clients [get]
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize, onlyInvalid := listParams(r)

	result, err := h.clientService.List(r.Context(), page, pageSize, onlyInvalid)
	if err != nil {
		h.logger.Error("failed to list clients", zap.Error(err))
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Create godoc
// @Summary Create client
// @Description Validate and store a new client
// @Tags Clients
// @Accept json
// @Produce json
// @Param client body domain.Client true "Client payload"
// @Success 201 {object} domain.Client
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Failure 503 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /clients [post]
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	client, err := h.clientService.Create(r.Context(), body)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, client)
}

// GetByID godoc
// @Summary Get client by ID
// @Tags Clients
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {object} domain.Client
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /clients/{id} [get]
func (h *ClientHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	client, err := h.clientService.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, client)
}

// Update godoc
// @Summary Update client
// @Description Replace a client after revalidating the full document
// @Tags Clients
// @Accept json
// @Produce json
// @Param id path string true "Client ID"
// @Param client body domain.Client true "Client payload"
// @Success 200 {object} domain.Client
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /clients/{id} [put]
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	client, err := h.clientService.Update(r.Context(), chi.URLParam(r, "id"), body)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, client)
}
