package handler

import (
	"net/http"

	"github.com/agrocampo/campo-api/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ProposalHandler struct {
	proposalService *service.ProposalService
	logger          *zap.Logger
}

func NewProposalHandler(proposalService *service.ProposalService, logger *zap.Logger) *ProposalHandler {
	return &ProposalHandler{proposalService: proposalService, logger: logger}
}

// List godoc
// @Summary List service proposals
// @Tags Proposals
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param invalid query bool false "Only documents flagged with a validation annotation"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.ServiceProposal}
// @Failure 503 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /proposals [get]
func (h *ProposalHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize, onlyInvalid := listParams(r)

	result, err := h.proposalService.List(r.Context(), page, pageSize, onlyInvalid)
	if err != nil {
		h.logger.Error("failed to list proposals", zap.Error(err))
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Create godoc
// @Summary Create service proposal
// @Description Validate and store a proposal. The referenced service must exist, timeline dates must be ordered, and pricing arithmetic must add up.
// @Tags Proposals
// @Accept json
// @Produce json
// @Param proposal body domain.ServiceProposal true "Proposal payload"
// @Success 201 {object} domain.ServiceProposal
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /proposals [post]
func (h *ProposalHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	p, err := h.proposalService.Create(r.Context(), body)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

// GetByID godoc
// @Summary Get proposal by ID
// @Tags Proposals
// @Produce json
// @Param id path string true "Proposal ID"
// @Success 200 {object} domain.ServiceProposal
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /proposals/{id} [get]
func (h *ProposalHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	p, err := h.proposalService.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// Update godoc
// @Summary Update proposal
// @Tags Proposals
// @Accept json
// @Produce json
// @Param id path string true "Proposal ID"
// @Param proposal body domain.ServiceProposal true "Proposal payload"
// @Success 200 {object} domain.ServiceProposal
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /proposals/{id} [put]
func (h *ProposalHandler) Update(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	p, err := h.proposalService.Update(r.Context(), chi.URLParam(r, "id"), body)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}
