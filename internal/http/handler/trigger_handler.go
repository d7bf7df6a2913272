package handler

import (
	"encoding/json"
	"net/http"

	"github.com/agrocampo/campo-api/internal/domain"
	"github.com/agrocampo/campo-api/internal/trigger"
	"go.uber.org/zap"
)

// TriggerHandler receives document-change webhooks from the store and feeds
// them to the revalidator.
type TriggerHandler struct {
	revalidator *trigger.Revalidator
	logger      *zap.Logger
}

func NewTriggerHandler(revalidator *trigger.Revalidator, logger *zap.Logger) *TriggerHandler {
	return &TriggerHandler{revalidator: revalidator, logger: logger}
}

// DocumentChange godoc
// @Summary Process a document change notification
// @Description Revalidate the written document and annotate it with rule violations if any. Always returns 202 for a well-formed event; annotation failures are logged, never surfaced.
// @Tags Triggers
// @Accept json
// @Produce json
// @Param event body trigger.ChangeEvent true "Change event"
// @Success 202 {string} string "Accepted"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Security ApiKeyAuth
// @Router /triggers/document-change [post]
func (h *TriggerHandler) DocumentChange(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	var ev trigger.ChangeEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "evento de cambio inválido",
		})
		return
	}
	if ev.Collection == "" {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "el evento no indica colección",
		})
		return
	}

	if err := h.revalidator.Handle(r.Context(), &ev); err != nil {
		h.logger.Error("failed to process change event",
			zap.String("collection", ev.Collection),
			zap.Error(err))
	}
	w.WriteHeader(http.StatusAccepted)
}
