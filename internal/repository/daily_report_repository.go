package repository

import (
	"context"
	"time"

	"github.com/agrocampo/campo-api/internal/docstore"
	"github.com/agrocampo/campo-api/internal/domain"
)

type DailyReportRepository struct {
	store docstore.Store
}

func NewDailyReportRepository(store docstore.Store) *DailyReportRepository {
	return &DailyReportRepository{store: store}
}

func (r *DailyReportRepository) Create(ctx context.Context, rep *domain.DailyReport) error {
	now := time.Now().UTC()
	rep.CreatedAt = now
	rep.UpdatedAt = now

	data, err := docstore.ToMap(rep)
	if err != nil {
		return err
	}
	delete(data, "id")

	id, err := r.store.Add(ctx, domain.CollectionDailyReports, data)
	if err != nil {
		return storeErr(err)
	}
	rep.ID = id
	return nil
}

func (r *DailyReportRepository) GetByID(ctx context.Context, id string) (*domain.DailyReport, error) {
	data, exists, err := r.store.Get(ctx, domain.CollectionDailyReports, id)
	if err != nil {
		return nil, storeErr(err)
	}
	if !exists {
		return nil, notFoundErr("el reporte diario", id)
	}

	var rep domain.DailyReport
	if err := docstore.FromMap(data, &rep); err != nil {
		return nil, err
	}
	rep.ID = id
	return &rep, nil
}

func (r *DailyReportRepository) Update(ctx context.Context, rep *domain.DailyReport) error {
	rep.UpdatedAt = time.Now().UTC()

	data, err := docstore.ToMap(rep)
	if err != nil {
		return err
	}
	delete(data, "id")

	if err := r.store.Update(ctx, domain.CollectionDailyReports, rep.ID, data); err != nil {
		return storeErr(err)
	}
	return nil
}

// ListByService returns every report for a service, newest first.
func (r *DailyReportRepository) ListByService(ctx context.Context, serviceID string) ([]domain.DailyReport, error) {
	docs, err := r.store.Query(ctx, domain.CollectionDailyReports, "serviceId", serviceID)
	if err != nil {
		return nil, storeErr(err)
	}

	reps := make([]domain.DailyReport, 0, len(docs))
	for _, doc := range docs {
		var rep domain.DailyReport
		if err := docstore.FromMap(doc.Data, &rep); err != nil {
			continue
		}
		rep.ID = doc.ID
		reps = append(reps, rep)
	}
	sortByCreatedDesc(reps, func(d domain.DailyReport) time.Time { return d.Date.Time() })
	return reps, nil
}

func (r *DailyReportRepository) List(ctx context.Context, page, pageSize int, onlyInvalid bool) ([]domain.DailyReport, int64, error) {
	page, pageSize = clampPaging(page, pageSize)

	docs, err := r.store.List(ctx, domain.CollectionDailyReports)
	if err != nil {
		return nil, 0, storeErr(err)
	}

	reps := make([]domain.DailyReport, 0, len(docs))
	for _, doc := range docs {
		var rep domain.DailyReport
		if err := docstore.FromMap(doc.Data, &rep); err != nil {
			continue
		}
		rep.ID = doc.ID
		if onlyInvalid && rep.Validation == nil {
			continue
		}
		reps = append(reps, rep)
	}
	sortByCreatedDesc(reps, func(d domain.DailyReport) time.Time { return d.CreatedAt })

	total := int64(len(reps))
	return pageSlice(reps, page, pageSize), total, nil
}
