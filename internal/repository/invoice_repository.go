package repository

import (
	"context"
	"time"

	"github.com/agrocampo/campo-api/internal/docstore"
	"github.com/agrocampo/campo-api/internal/domain"
)

type InvoiceRepository struct {
	store docstore.Store
}

func NewInvoiceRepository(store docstore.Store) *InvoiceRepository {
	return &InvoiceRepository{store: store}
}

func (r *InvoiceRepository) Create(ctx context.Context, inv *domain.Invoice) error {
	now := time.Now().UTC()
	inv.CreatedAt = now
	inv.UpdatedAt = now

	data, err := docstore.ToMap(inv)
	if err != nil {
		return err
	}
	delete(data, "id")

	id, err := r.store.Add(ctx, domain.CollectionInvoices, data)
	if err != nil {
		return storeErr(err)
	}
	inv.ID = id
	return nil
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	data, exists, err := r.store.Get(ctx, domain.CollectionInvoices, id)
	if err != nil {
		return nil, storeErr(err)
	}
	if !exists {
		return nil, notFoundErr("la factura", id)
	}

	var inv domain.Invoice
	if err := docstore.FromMap(data, &inv); err != nil {
		return nil, err
	}
	inv.ID = id
	return &inv, nil
}

func (r *InvoiceRepository) Update(ctx context.Context, inv *domain.Invoice) error {
	inv.UpdatedAt = time.Now().UTC()

	data, err := docstore.ToMap(inv)
	if err != nil {
		return err
	}
	delete(data, "id")

	if err := r.store.Update(ctx, domain.CollectionInvoices, inv.ID, data); err != nil {
		return storeErr(err)
	}
	return nil
}

func (r *InvoiceRepository) List(ctx context.Context, page, pageSize int, onlyInvalid bool) ([]domain.Invoice, int64, error) {
	page, pageSize = clampPaging(page, pageSize)

	docs, err := r.store.List(ctx, domain.CollectionInvoices)
	if err != nil {
		return nil, 0, storeErr(err)
	}

	invoices := make([]domain.Invoice, 0, len(docs))
	for _, doc := range docs {
		var inv domain.Invoice
		if err := docstore.FromMap(doc.Data, &inv); err != nil {
			continue
		}
		inv.ID = doc.ID
		if onlyInvalid && inv.Validation == nil {
			continue
		}
		invoices = append(invoices, inv)
	}
	sortByCreatedDesc(invoices, func(i domain.Invoice) time.Time { return i.CreatedAt })

	total := int64(len(invoices))
	return pageSlice(invoices, page, pageSize), total, nil
}
