// Package trigger hosts the write-trigger revalidator: it re-runs shape
// validation after a document has already been written and annotates the
// document with its rule violations instead of rejecting the write.
package trigger

import (
	"context"
	"errors"
	"time"

	"github.com/agrocampo/campo-api/internal/docstore"
	"github.com/agrocampo/campo-api/internal/domain"
	"github.com/agrocampo/campo-api/internal/validation"
	"go.uber.org/zap"
)

// ChangeType classifies a store change notification.
type ChangeType string

const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
	ChangeDeleted ChangeType = "deleted"
)

// ChangeEvent is the store's change notification: collection name plus the
// document snapshots around the write.
type ChangeEvent struct {
	Collection string         `json:"collection"`
	Type       ChangeType     `json:"type"`
	DocumentID string         `json:"documentId"`
	Before     map[string]any `json:"before,omitempty"`
	After      map[string]any `json:"after,omitempty"`
}

// annotationField is written onto documents that fail revalidation.
const annotationField = "_validationError"

// Revalidator applies the shared shape rules to post-write snapshots.
// Annotation writes are best effort: a failure is logged and not retried.
type Revalidator struct {
	store  docstore.Store
	rules  *validation.Rules
	logger *zap.Logger
	now    func() time.Time
}

// NewRevalidator creates a revalidator over the given store and rule engine.
func NewRevalidator(store docstore.Store, rules *validation.Rules, logger *zap.Logger) *Revalidator {
	return &Revalidator{store: store, rules: rules, logger: logger, now: time.Now}
}

// Handle processes one change event. It never propagates shape-validation
// failures; the only error path is an unusable event. Unwatched collections
// and delete events are skipped silently.
func (r *Revalidator) Handle(ctx context.Context, ev *ChangeEvent) error {
	if ev.Type == ChangeDeleted {
		return nil
	}
	kind, watched := domain.KindForCollection(ev.Collection)
	if !watched {
		r.logger.Debug("ignoring change in unwatched collection",
			zap.String("collection", ev.Collection))
		return nil
	}
	if ev.After == nil {
		return nil
	}

	docID := ev.DocumentID
	if docID == "" {
		docID, _ = ev.After["id"].(string)
	}
	if docID == "" {
		r.logger.Warn("change event without document id",
			zap.String("collection", ev.Collection))
		return nil
	}

	payload := ev.After
	if ev.Collection == domain.CollectionServiceRequests {
		// Legacy service-request documents nest the validated payload under
		// "request"; canonical documents are flat. Validate whichever shape
		// the document carries.
		if sub, ok := ev.After["request"].(map[string]any); ok {
			payload = sub
		}
	}

	_, err := r.rules.ParseDocument(kind, payload)
	if err == nil {
		r.clearAnnotation(ctx, ev.Collection, docID, ev.After)
		return nil
	}

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		r.logger.Warn("revalidation failed without field detail",
			zap.String("collection", ev.Collection),
			zap.String("document_id", docID),
			zap.Error(err))
		return nil
	}

	annotation := domain.ValidationAnnotation{At: r.now(), Errors: verr.Fields}
	data, mapErr := docstore.ToMap(annotation)
	if mapErr != nil {
		r.logger.Error("failed to encode validation annotation", zap.Error(mapErr))
		return nil
	}
	patch := map[string]any{annotationField: data}
	if err := r.store.Update(ctx, ev.Collection, docID, patch); err != nil {
		r.logger.Warn("failed to annotate document with validation errors",
			zap.String("collection", ev.Collection),
			zap.String("document_id", docID),
			zap.Error(err))
		return nil
	}

	r.logger.Info("annotated document with validation errors",
		zap.String("collection", ev.Collection),
		zap.String("document_id", docID),
		zap.Int("error_count", len(verr.Fields)))
	return nil
}

// clearAnnotation nulls out a stale annotation once the document validates.
func (r *Revalidator) clearAnnotation(ctx context.Context, collection, docID string, after map[string]any) {
	if existing, ok := after[annotationField]; !ok || existing == nil {
		return
	}
	patch := map[string]any{annotationField: nil}
	if err := r.store.Update(ctx, collection, docID, patch); err != nil {
		r.logger.Warn("failed to clear validation annotation",
			zap.String("collection", collection),
			zap.String("document_id", docID),
			zap.Error(err))
	}
}

// Sweep revalidates every document in the watched collections. It backs the
// scheduled job that catches change events the webhook never delivered.
func (r *Revalidator) Sweep(ctx context.Context) error {
	for _, collection := range domain.WatchedCollections() {
		docs, err := r.store.List(ctx, collection)
		if err != nil {
			return err
		}
		for _, doc := range docs {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			ev := &ChangeEvent{
				Collection: collection,
				Type:       ChangeUpdated,
				DocumentID: doc.ID,
				After:      doc.Data,
			}
			if err := r.Handle(ctx, ev); err != nil {
				r.logger.Warn("sweep revalidation failed for document",
					zap.String("collection", collection),
					zap.String("document_id", doc.ID),
					zap.Error(err))
			}
		}
		r.logger.Info("sweep revalidated collection",
			zap.String("collection", collection),
			zap.Int("documents", len(docs)))
	}
	return nil
}
