package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error taxonomy for the validation subsystem. Shape failures carry field
// detail via ValidationError; the rest are sentinel-wrapped single messages.
var (
	// ErrValidationFailed marks one or more violated shape rules.
	ErrValidationFailed = errors.New("validación fallida")

	// ErrNotFound marks a missing referenced record (client, service).
	ErrNotFound = errors.New("recurso no encontrado")

	// ErrAlreadyExists marks a violated uniqueness constraint.
	ErrAlreadyExists = errors.New("el recurso ya existe")

	// ErrInvalidArgument marks a violated cross-field temporal or arithmetic
	// rule (date ordering, total mismatch).
	ErrInvalidArgument = errors.New("argumento inválido")

	// ErrUnauthenticated marks a request with no usable caller identity.
	ErrUnauthenticated = errors.New("no autenticado")

	// ErrPermissionDenied marks a caller without rights for the operation.
	ErrPermissionDenied = errors.New("permiso denegado")

	// ErrStoreUnavailable marks a document-store I/O failure. Callers must
	// not conflate "your data is invalid" with "we could not check it".
	ErrStoreUnavailable = errors.New("almacén de documentos no disponible")
)

// FieldError maps a dotted field path (e.g. "contacts.0.email") to a
// human-readable message so the form layer can attach it to the right input.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates every shape rule violated by a record.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidationFailed.Error()
	}
	parts := make([]string, len(e.Fields))
	for i, fe := range e.Fields {
		parts[i] = fmt.Sprintf("%s: %s", fe.Field, fe.Message)
	}
	return fmt.Sprintf("%s: %s", ErrValidationFailed.Error(), strings.Join(parts, "; "))
}

// Is lets errors.Is(err, ErrValidationFailed) match a ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// FieldMap returns the errors keyed by field path, one message per field
// (first violation wins, matching the order rules were evaluated in).
func (e *ValidationError) FieldMap() map[string]string {
	m := make(map[string]string, len(e.Fields))
	for _, fe := range e.Fields {
		if _, ok := m[fe.Field]; !ok {
			m[fe.Field] = fe.Message
		}
	}
	return m
}

// APIError is the RFC 7807 style error body returned by the HTTP layer.
type APIError struct {
	Type   string            `json:"type"`
	Title  string            `json:"title"`
	Status int               `json:"status"`
	Detail string            `json:"detail,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Title
}

// Error type identifiers used in APIError.Type.
const (
	ErrorTypeValidation   = "validation_error"
	ErrorTypeNotFound     = "not_found"
	ErrorTypeBadRequest   = "bad_request"
	ErrorTypeConflict     = "conflict"
	ErrorTypeUnauthorized = "unauthorized"
	ErrorTypeForbidden    = "forbidden"
	ErrorTypeUnavailable  = "store_unavailable"
	ErrorTypeInternal     = "internal_error"
)
