package handler

import (
	"errors"
	"net/http"

	"github.com/agrocampo/campo-api/internal/domain"
	"github.com/agrocampo/campo-api/internal/validation"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ValidateHandler exposes shape-only validation so forms can check a record
// on field change without touching the store.
type ValidateHandler struct {
	rules  *validation.Rules
	logger *zap.Logger
}

func NewValidateHandler(rules *validation.Rules, logger *zap.Logger) *ValidateHandler {
	return &ValidateHandler{rules: rules, logger: logger}
}

// kindForPath accepts both the kind name and the collection name, so callers
// can POST to /validate/invoice or /validate/invoices.
func kindForPath(segment string) (domain.Kind, bool) {
	if kind, ok := domain.KindForCollection(segment); ok {
		return kind, true
	}
	switch domain.Kind(segment) {
	case domain.KindClient, domain.KindServiceRequest, domain.KindDailyReport,
		domain.KindServiceProposal, domain.KindInvoice:
		return domain.Kind(segment), true
	}
	return "", false
}

// Validate godoc
// @Summary Validate a record without storing it
// @Description Run shape validation for the given record kind. Always returns 200; the body says whether the record is valid and which fields failed. Store-backed consistency rules are not applied here.
// @Tags Validation
// @Accept json
// @Produce json
// @Param kind path string true "Record kind" Enums(client, service_request, daily_report, service_proposal, invoice)
// @Param record body object true "Record payload"
// @Success 200 {object} domain.ValidateResponse
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /validate/{kind} [post]
func (h *ValidateHandler) Validate(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindForPath(chi.URLParam(r, "kind"))
	if !ok {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "tipo de registro desconocido",
		})
		return
	}

	body, ok := readBody(w, r)
	if !ok {
		return
	}

	_, err := h.rules.Parse(kind, body)
	if err == nil {
		respondJSON(w, http.StatusOK, domain.ValidateResponse{Valid: true})
		return
	}

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, domain.ValidateResponse{
		Valid:  false,
		Errors: verr.Fields,
	})
}
