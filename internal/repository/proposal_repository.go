package repository

import (
	"context"
	"time"

	"github.com/agrocampo/campo-api/internal/docstore"
	"github.com/agrocampo/campo-api/internal/domain"
)

type ProposalRepository struct {
	store docstore.Store
}

func NewProposalRepository(store docstore.Store) *ProposalRepository {
	return &ProposalRepository{store: store}
}

func (r *ProposalRepository) Create(ctx context.Context, p *domain.ServiceProposal) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	data, err := docstore.ToMap(p)
	if err != nil {
		return err
	}
	delete(data, "id")

	id, err := r.store.Add(ctx, domain.CollectionServiceProposals, data)
	if err != nil {
		return storeErr(err)
	}
	p.ID = id
	return nil
}

func (r *ProposalRepository) GetByID(ctx context.Context, id string) (*domain.ServiceProposal, error) {
	data, exists, err := r.store.Get(ctx, domain.CollectionServiceProposals, id)
	if err != nil {
		return nil, storeErr(err)
	}
	if !exists {
		return nil, notFoundErr("la propuesta", id)
	}

	var p domain.ServiceProposal
	if err := docstore.FromMap(data, &p); err != nil {
		return nil, err
	}
	p.ID = id
	return &p, nil
}

func (r *ProposalRepository) Update(ctx context.Context, p *domain.ServiceProposal) error {
	p.UpdatedAt = time.Now().UTC()

	data, err := docstore.ToMap(p)
	if err != nil {
		return err
	}
	delete(data, "id")

	if err := r.store.Update(ctx, domain.CollectionServiceProposals, p.ID, data); err != nil {
		return storeErr(err)
	}
	return nil
}

func (r *ProposalRepository) List(ctx context.Context, page, pageSize int, onlyInvalid bool) ([]domain.ServiceProposal, int64, error) {
	page, pageSize = clampPaging(page, pageSize)

	docs, err := r.store.List(ctx, domain.CollectionServiceProposals)
	if err != nil {
		return nil, 0, storeErr(err)
	}

	proposals := make([]domain.ServiceProposal, 0, len(docs))
	for _, doc := range docs {
		var p domain.ServiceProposal
		if err := docstore.FromMap(doc.Data, &p); err != nil {
			continue
		}
		p.ID = doc.ID
		if onlyInvalid && p.Validation == nil {
			continue
		}
		proposals = append(proposals, p)
	}
	sortByCreatedDesc(proposals, func(p domain.ServiceProposal) time.Time { return p.CreatedAt })

	total := int64(len(proposals))
	return pageSlice(proposals, page, pageSize), total, nil
}
