// Package docstore provides the document-store client the validation
// subsystem reads from and the write trigger annotates through. Collections
// are flat namespaces of JSON-like documents with opaque string ids; the only
// query shape is single-field equality.
package docstore

import (
	"context"
	"encoding/json"
	"fmt"
)

// Document is a stored record with its assigned id.
type Document struct {
	ID   string
	Data map[string]any
}

// Store is the read/write surface consumed by the rule engine, repositories
// and the write-trigger revalidator.
type Store interface {
	// Get fetches a document by id. The second return is false when the
	// document does not exist.
	Get(ctx context.Context, collection, id string) (map[string]any, bool, error)

	// Query returns every document whose top-level field equals value.
	// Equality only; no range or sort semantics.
	Query(ctx context.Context, collection, field string, value any) ([]Document, error)

	// List returns every document in the collection.
	List(ctx context.Context, collection string) ([]Document, error)

	// Add stores a new document and returns its assigned id.
	Add(ctx context.Context, collection string, data map[string]any) (string, error)

	// Update merges patch into an existing document. A nil value in patch
	// sets the field to null (used to clear trigger annotations).
	Update(ctx context.Context, collection, id string, patch map[string]any) error

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error
}

// ToMap converts a typed record into the store's document shape via its JSON
// representation, so struct tags decide field names.
func ToMap(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("failed to decode record into document: %w", err)
	}
	return m, nil
}

// FromMap decodes a stored document into a typed record.
func FromMap(m map[string]any, target any) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}
	return nil
}
