package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/agrocampo/campo-api/internal/domain"
)

const maxBodySize = 1 << 20 // 1 MiB

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// respondError maps domain errors onto HTTP statuses. Shape failures carry the
// per-field map; everything else is a single detail message.
func respondError(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		respondJSON(w, http.StatusBadRequest, domain.APIError{
			Type:   domain.ErrorTypeValidation,
			Title:  "Error de validación",
			Status: http.StatusBadRequest,
			Detail: "Uno o más campos no pasaron la validación",
			Errors: ve.FieldMap(),
		})
		return
	}

	status := http.StatusInternalServerError
	errType := domain.ErrorTypeInternal
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
		errType = domain.ErrorTypeNotFound
	case errors.Is(err, domain.ErrAlreadyExists):
		status = http.StatusConflict
		errType = domain.ErrorTypeConflict
	case errors.Is(err, domain.ErrInvalidArgument):
		status = http.StatusUnprocessableEntity
		errType = domain.ErrorTypeBadRequest
	case errors.Is(err, domain.ErrUnauthenticated):
		status = http.StatusUnauthorized
		errType = domain.ErrorTypeUnauthorized
	case errors.Is(err, domain.ErrPermissionDenied):
		status = http.StatusForbidden
		errType = domain.ErrorTypeForbidden
	case errors.Is(err, domain.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
		errType = domain.ErrorTypeUnavailable
	}

	detail := err.Error()
	if status == http.StatusInternalServerError {
		detail = "Error interno del servidor"
	}

	respondJSON(w, status, domain.APIError{
		Type:   errType,
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	})
}

// readBody drains the request body with a size cap so a document payload can
// be handed to the shared rule module as raw JSON.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "no se pudo leer el cuerpo de la solicitud",
		})
		return nil, false
	}
	return body, true
}

// listParams parses the shared pagination and filter query parameters.
func listParams(r *http.Request) (page, pageSize int, onlyInvalid bool) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}
	onlyInvalid = r.URL.Query().Get("invalid") == "true"
	return page, pageSize, onlyInvalid
}
