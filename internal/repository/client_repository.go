package repository

import (
	"context"
	"time"

	"github.com/agrocampo/campo-api/internal/docstore"
	"github.com/agrocampo/campo-api/internal/domain"
)

type ClientRepository struct {
	store docstore.Store
}

func NewClientRepository(store docstore.Store) *ClientRepository {
	return &ClientRepository{store: store}
}

func (r *ClientRepository) Create(ctx context.Context, client *domain.Client) error {
	now := time.Now().UTC()
	client.CreatedAt = now
	client.UpdatedAt = now

	data, err := docstore.ToMap(client)
	if err != nil {
		return err
	}
	delete(data, "id")

	id, err := r.store.Add(ctx, domain.CollectionClients, data)
	if err != nil {
		return storeErr(err)
	}
	client.ID = id
	return nil
}

func (r *ClientRepository) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	data, exists, err := r.store.Get(ctx, domain.CollectionClients, id)
	if err != nil {
		return nil, storeErr(err)
	}
	if !exists {
		return nil, notFoundErr("el cliente", id)
	}

	var client domain.Client
	if err := docstore.FromMap(data, &client); err != nil {
		return nil, err
	}
	client.ID = id
	return &client, nil
}

func (r *ClientRepository) Update(ctx context.Context, client *domain.Client) error {
	client.UpdatedAt = time.Now().UTC()

	data, err := docstore.ToMap(client)
	if err != nil {
		return err
	}
	delete(data, "id")

	if err := r.store.Update(ctx, domain.CollectionClients, client.ID, data); err != nil {
		return storeErr(err)
	}
	return nil
}

// List returns clients newest first. With onlyInvalid set, only documents
// carrying a trigger annotation are returned.
func (r *ClientRepository) List(ctx context.Context, page, pageSize int, onlyInvalid bool) ([]domain.Client, int64, error) {
	page, pageSize = clampPaging(page, pageSize)

	docs, err := r.store.List(ctx, domain.CollectionClients)
	if err != nil {
		return nil, 0, storeErr(err)
	}

	clients := make([]domain.Client, 0, len(docs))
	for _, doc := range docs {
		var client domain.Client
		if err := docstore.FromMap(doc.Data, &client); err != nil {
			continue
		}
		client.ID = doc.ID
		if onlyInvalid && client.Validation == nil {
			continue
		}
		clients = append(clients, client)
	}
	sortByCreatedDesc(clients, func(c domain.Client) time.Time { return c.CreatedAt })

	total := int64(len(clients))
	return pageSlice(clients, page, pageSize), total, nil
}
