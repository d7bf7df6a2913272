package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/agrocampo/campo-api/internal/domain"
	"github.com/agrocampo/campo-api/internal/http/handler"
	"github.com/agrocampo/campo-api/internal/validation"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newValidateRouter() chi.Router {
	h := handler.NewValidateHandler(validation.NewRules(), zap.NewNop())
	r := chi.NewRouter()
	r.Post("/validate/{kind}", h.Validate)
	return r
}

func TestValidate_ValidRecord(t *testing.T) {
	router := newValidateRouter()

	rec := doRequest(router, http.MethodPost, "/validate/client", validClientBody())
	require.Equal(t, http.StatusOK, rec.Code)

	var resp domain.ValidateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Valid)
	assert.Empty(t, resp.Errors)
}

func TestValidate_InvalidRecordStillReturns200(t *testing.T) {
	router := newValidateRouter()

	rec := doRequest(router, http.MethodPost, "/validate/client", `{"name": ""}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp domain.ValidateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Valid)
	assert.NotEmpty(t, resp.Errors)

	fields := make([]string, 0, len(resp.Errors))
	for _, fe := range resp.Errors {
		fields = append(fields, fe.Field)
	}
	assert.Contains(t, fields, "name")
}

func TestValidate_AcceptsCollectionNames(t *testing.T) {
	router := newValidateRouter()

	for _, segment := range []string{"invoice", "invoices"} {
		rec := doRequest(router, http.MethodPost, "/validate/"+segment, `{}`)
		assert.Equal(t, http.StatusOK, rec.Code, "segment %q", segment)
	}
}

func TestValidate_UnknownKind(t *testing.T) {
	router := newValidateRouter()

	rec := doRequest(router, http.MethodPost, "/validate/factura", `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp domain.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "tipo de registro desconocido", resp.Message)
}
