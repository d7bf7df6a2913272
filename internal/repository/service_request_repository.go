package repository

import (
	"context"
	"time"

	"github.com/agrocampo/campo-api/internal/docstore"
	"github.com/agrocampo/campo-api/internal/domain"
)

type ServiceRequestRepository struct {
	store docstore.Store
}

func NewServiceRequestRepository(store docstore.Store) *ServiceRequestRepository {
	return &ServiceRequestRepository{store: store}
}

func (r *ServiceRequestRepository) Create(ctx context.Context, req *domain.ServiceRequest) error {
	now := time.Now().UTC()
	req.CreatedAt = now
	req.UpdatedAt = now

	data, err := docstore.ToMap(req)
	if err != nil {
		return err
	}
	delete(data, "id")

	id, err := r.store.Add(ctx, domain.CollectionServiceRequests, data)
	if err != nil {
		return storeErr(err)
	}
	req.ID = id
	return nil
}

func (r *ServiceRequestRepository) GetByID(ctx context.Context, id string) (*domain.ServiceRequest, error) {
	data, exists, err := r.store.Get(ctx, domain.CollectionServiceRequests, id)
	if err != nil {
		return nil, storeErr(err)
	}
	if !exists {
		return nil, notFoundErr("la solicitud de servicio", id)
	}

	// Legacy documents nest the request payload under "request".
	if sub, ok := data["request"].(map[string]any); ok {
		data = sub
	}

	var req domain.ServiceRequest
	if err := docstore.FromMap(data, &req); err != nil {
		return nil, err
	}
	req.ID = id
	return &req, nil
}

func (r *ServiceRequestRepository) Update(ctx context.Context, req *domain.ServiceRequest) error {
	req.UpdatedAt = time.Now().UTC()

	data, err := docstore.ToMap(req)
	if err != nil {
		return err
	}
	delete(data, "id")

	if err := r.store.Update(ctx, domain.CollectionServiceRequests, req.ID, data); err != nil {
		return storeErr(err)
	}
	return nil
}

func (r *ServiceRequestRepository) List(ctx context.Context, page, pageSize int, onlyInvalid bool) ([]domain.ServiceRequest, int64, error) {
	page, pageSize = clampPaging(page, pageSize)

	docs, err := r.store.List(ctx, domain.CollectionServiceRequests)
	if err != nil {
		return nil, 0, storeErr(err)
	}

	reqs := make([]domain.ServiceRequest, 0, len(docs))
	for _, doc := range docs {
		data := doc.Data
		if sub, ok := data["request"].(map[string]any); ok {
			data = sub
		}
		var req domain.ServiceRequest
		if err := docstore.FromMap(data, &req); err != nil {
			continue
		}
		req.ID = doc.ID
		if onlyInvalid && req.Validation == nil {
			continue
		}
		reqs = append(reqs, req)
	}
	sortByCreatedDesc(reqs, func(s domain.ServiceRequest) time.Time { return s.CreatedAt })

	total := int64(len(reqs))
	return pageSlice(reqs, page, pageSize), total, nil
}
