package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/agrocampo/campo-api/internal/docstore"
	"github.com/agrocampo/campo-api/internal/domain"
	"github.com/agrocampo/campo-api/internal/http/handler"
	"github.com/agrocampo/campo-api/internal/repository"
	"github.com/agrocampo/campo-api/internal/service"
	"github.com/agrocampo/campo-api/internal/validation"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newClientRouter(store docstore.Store) chi.Router {
	logger := zap.NewNop()
	rules := validation.NewRules()
	checker := validation.NewChecker(store, logger)
	svc := service.NewClientService(rules, checker, repository.NewClientRepository(store), logger)
	h := handler.NewClientHandler(svc, logger)

	r := chi.NewRouter()
	r.Route("/clients", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.GetByID)
		r.Put("/{id}", h.Update)
	})
	return r
}

func validClientBody() string {
	return `{
		"name": "Rancho El Amanecer",
		"taxId": "AAA010101AAA",
		"address": {
			"street": "Carretera Culiacán-Navolato km 12",
			"city": "Culiacán",
			"state": "Sinaloa",
			"postalCode": "80140"
		},
		"contacts": [
			{"name": "María López", "email": "maria@elamanecer.mx"}
		]
	}`
}

func doRequest(router chi.Router, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateClient_Valid(t *testing.T) {
	router := newClientRouter(docstore.NewMemoryStore())

	rec := doRequest(router, http.MethodPost, "/clients", validClientBody())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created domain.Client
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "México", created.Address.Country)
	require.NotNil(t, created.IsActive)
	assert.True(t, *created.IsActive)
}

func TestCreateClient_ShapeErrorsReturn400WithFieldMap(t *testing.T) {
	router := newClientRouter(docstore.NewMemoryStore())

	body := `{
		"name": "",
		"address": {"street": "Calle 1", "city": "Culiacán", "state": "Sinaloa", "postalCode": "801"},
		"contacts": []
	}`
	rec := doRequest(router, http.MethodPost, "/clients", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var apiErr domain.APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
	assert.Equal(t, "Error de validación", apiErr.Title)
	assert.Contains(t, apiErr.Errors, "name")
	assert.Contains(t, apiErr.Errors, "address.postalCode")
	assert.Contains(t, apiErr.Errors, "contacts")
}

func TestCreateClient_DuplicateTaxIDReturns409(t *testing.T) {
	router := newClientRouter(docstore.NewMemoryStore())

	rec := doRequest(router, http.MethodPost, "/clients", validClientBody())
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(router, http.MethodPost, "/clients", validClientBody())
	require.Equal(t, http.StatusConflict, rec.Code)

	var apiErr domain.APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
	assert.Contains(t, apiErr.Detail, "RFC")
}

func TestGetClient(t *testing.T) {
	router := newClientRouter(docstore.NewMemoryStore())

	rec := doRequest(router, http.MethodPost, "/clients", validClientBody())
	require.Equal(t, http.StatusCreated, rec.Code)
	var created domain.Client
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doRequest(router, http.MethodGet, "/clients/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got domain.Client
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Rancho El Amanecer", got.Name)

	rec = doRequest(router, http.MethodGet, "/clients/no-existe", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateClient_PreservesIDAndCreatedAt(t *testing.T) {
	router := newClientRouter(docstore.NewMemoryStore())

	rec := doRequest(router, http.MethodPost, "/clients", validClientBody())
	require.Equal(t, http.StatusCreated, rec.Code)
	var created domain.Client
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	updatedBody := strings.Replace(validClientBody(), "Rancho El Amanecer", "Rancho Renombrado", 1)
	rec = doRequest(router, http.MethodPut, "/clients/"+created.ID, updatedBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated domain.Client
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Rancho Renombrado", updated.Name)
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))

	rec = doRequest(router, http.MethodPut, "/clients/no-existe", validClientBody())
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListClients_InvalidFilter(t *testing.T) {
	store := docstore.NewMemoryStore()
	router := newClientRouter(store)

	rec := doRequest(router, http.MethodPost, "/clients", validClientBody())
	require.Equal(t, http.StatusCreated, rec.Code)

	store.Seed(domain.CollectionClients, "flagged", map[string]any{
		"name": "Rancho Marcado",
		"_validationError": map[string]any{
			"at":     "2026-03-01T10:00:00Z",
			"errors": []any{map[string]any{"field": "taxId", "message": "debe tener al menos 12 caracteres"}},
		},
	})

	rec = doRequest(router, http.MethodGet, "/clients", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var page domain.PaginatedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, int64(2), page.Total)

	rec = doRequest(router, http.MethodGet, "/clients?invalid=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, int64(1), page.Total)
}

func TestCreateClient_StoreFailureReturns503(t *testing.T) {
	router := newClientRouter(unavailableStore{})

	rec := doRequest(router, http.MethodPost, "/clients", validClientBody())
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

// unavailableStore fails every call, like a store behind a dead network.
type unavailableStore struct{}

var errUnavailable = errors.New("dial tcp: connection refused")

func (unavailableStore) Get(ctx context.Context, collection, id string) (map[string]any, bool, error) {
	return nil, false, errUnavailable
}
func (unavailableStore) Query(ctx context.Context, collection, field string, value any) ([]docstore.Document, error) {
	return nil, errUnavailable
}
func (unavailableStore) List(ctx context.Context, collection string) ([]docstore.Document, error) {
	return nil, errUnavailable
}
func (unavailableStore) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	return "", errUnavailable
}
func (unavailableStore) Update(ctx context.Context, collection, id string, patch map[string]any) error {
	return errUnavailable
}
func (unavailableStore) Ping(ctx context.Context) error { return errUnavailable }
