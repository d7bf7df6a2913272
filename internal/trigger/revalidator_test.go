package trigger_test

import (
	"context"
	"testing"

	"github.com/agrocampo/campo-api/internal/docstore"
	"github.com/agrocampo/campo-api/internal/domain"
	"github.com/agrocampo/campo-api/internal/trigger"
	"github.com/agrocampo/campo-api/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRevalidator(store docstore.Store) *trigger.Revalidator {
	return trigger.NewRevalidator(store, validation.NewRules(), zap.NewNop())
}

func validClientDoc() map[string]any {
	return map[string]any{
		"name":  "Rancho El Amanecer",
		"taxId": "AAA010101AAA",
		"address": map[string]any{
			"street":     "Carretera Culiacán-Navolato km 12",
			"city":       "Culiacán",
			"state":      "Sinaloa",
			"postalCode": "80140",
		},
		"contacts": []any{
			map[string]any{"name": "María López", "email": "maria@elamanecer.mx"},
		},
	}
}

func invalidClientDoc() map[string]any {
	doc := validClientDoc()
	doc["name"] = ""
	return doc
}

// countingStore records how many patches were written.
type countingStore struct {
	*docstore.MemoryStore
	updates int
}

func (s *countingStore) Update(ctx context.Context, collection, id string, patch map[string]any) error {
	s.updates++
	return s.MemoryStore.Update(ctx, collection, id, patch)
}

func TestHandle_InvalidDocumentGetsAnnotated(t *testing.T) {
	store := docstore.NewMemoryStore()
	doc := invalidClientDoc()
	store.Seed(domain.CollectionClients, "c1", doc)
	r := newRevalidator(store)

	err := r.Handle(context.Background(), &trigger.ChangeEvent{
		Collection: domain.CollectionClients,
		Type:       trigger.ChangeCreated,
		DocumentID: "c1",
		After:      doc,
	})
	require.NoError(t, err)

	stored, found, err := store.Get(context.Background(), domain.CollectionClients, "c1")
	require.NoError(t, err)
	require.True(t, found)
	ann, ok := stored["_validationError"].(map[string]any)
	require.True(t, ok, "annotation should be written")
	errs, ok := ann["errors"].([]any)
	require.True(t, ok)
	assert.NotEmpty(t, errs)
}

func TestHandle_ValidDocumentClearsStaleAnnotation(t *testing.T) {
	store := docstore.NewMemoryStore()
	doc := validClientDoc()
	doc["_validationError"] = map[string]any{
		"at":     "2026-03-01T10:00:00Z",
		"errors": []any{map[string]any{"field": "name", "message": "este campo es obligatorio"}},
	}
	store.Seed(domain.CollectionClients, "c1", doc)
	r := newRevalidator(store)

	err := r.Handle(context.Background(), &trigger.ChangeEvent{
		Collection: domain.CollectionClients,
		Type:       trigger.ChangeUpdated,
		DocumentID: "c1",
		After:      doc,
	})
	require.NoError(t, err)

	stored, _, err := store.Get(context.Background(), domain.CollectionClients, "c1")
	require.NoError(t, err)
	assert.Nil(t, stored["_validationError"])
}

func TestHandle_ValidDocumentWithoutAnnotationWritesNothing(t *testing.T) {
	store := &countingStore{MemoryStore: docstore.NewMemoryStore()}
	doc := validClientDoc()
	store.Seed(domain.CollectionClients, "c1", doc)
	r := newRevalidator(store)

	err := r.Handle(context.Background(), &trigger.ChangeEvent{
		Collection: domain.CollectionClients,
		Type:       trigger.ChangeUpdated,
		DocumentID: "c1",
		After:      doc,
	})
	require.NoError(t, err)
	assert.Zero(t, store.updates)
}

func TestHandle_SkipsDeletesAndUnwatchedCollections(t *testing.T) {
	store := &countingStore{MemoryStore: docstore.NewMemoryStore()}
	r := newRevalidator(store)

	err := r.Handle(context.Background(), &trigger.ChangeEvent{
		Collection: domain.CollectionClients,
		Type:       trigger.ChangeDeleted,
		DocumentID: "c1",
	})
	require.NoError(t, err)

	err = r.Handle(context.Background(), &trigger.ChangeEvent{
		Collection: "users",
		Type:       trigger.ChangeCreated,
		DocumentID: "u1",
		After:      map[string]any{"name": ""},
	})
	require.NoError(t, err)

	assert.Zero(t, store.updates)
}

func TestHandle_DocumentIDFallsBackToAfterID(t *testing.T) {
	store := docstore.NewMemoryStore()
	doc := invalidClientDoc()
	store.Seed(domain.CollectionClients, "c1", doc)
	doc["id"] = "c1"
	r := newRevalidator(store)

	err := r.Handle(context.Background(), &trigger.ChangeEvent{
		Collection: domain.CollectionClients,
		Type:       trigger.ChangeUpdated,
		After:      doc,
	})
	require.NoError(t, err)

	stored, _, err := store.Get(context.Background(), domain.CollectionClients, "c1")
	require.NoError(t, err)
	assert.NotNil(t, stored["_validationError"])
}

func TestHandle_LegacyServiceRequestNestsPayload(t *testing.T) {
	store := docstore.NewMemoryStore()
	doc := map[string]any{
		"request": map[string]any{
			"clientId":      "c1",
			"serviceType":   "fumigacion",
			"termsAccepted": false,
		},
	}
	store.Seed(domain.CollectionServiceRequests, "s1", doc)
	r := newRevalidator(store)

	err := r.Handle(context.Background(), &trigger.ChangeEvent{
		Collection: domain.CollectionServiceRequests,
		Type:       trigger.ChangeCreated,
		DocumentID: "s1",
		After:      doc,
	})
	require.NoError(t, err)

	stored, _, err := store.Get(context.Background(), domain.CollectionServiceRequests, "s1")
	require.NoError(t, err)
	assert.NotNil(t, stored["_validationError"], "nested payload should be validated")
}

func TestSweep_AnnotatesInvalidDocumentsAcrossCollections(t *testing.T) {
	store := docstore.NewMemoryStore()
	store.Seed(domain.CollectionClients, "ok", validClientDoc())
	store.Seed(domain.CollectionClients, "bad", invalidClientDoc())
	r := newRevalidator(store)

	require.NoError(t, r.Sweep(context.Background()))

	good, _, err := store.Get(context.Background(), domain.CollectionClients, "ok")
	require.NoError(t, err)
	_, annotated := good["_validationError"]
	assert.False(t, annotated)

	bad, _, err := store.Get(context.Background(), domain.CollectionClients, "bad")
	require.NoError(t, err)
	assert.NotNil(t, bad["_validationError"])
}

func TestSweep_StopsOnCanceledContext(t *testing.T) {
	store := docstore.NewMemoryStore()
	store.Seed(domain.CollectionClients, "c1", invalidClientDoc())
	r := newRevalidator(store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := r.Sweep(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
