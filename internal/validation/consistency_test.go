package validation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agrocampo/campo-api/internal/docstore"
	"github.com/agrocampo/campo-api/internal/domain"
	"github.com/agrocampo/campo-api/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var checkerNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newChecker(store docstore.Store) *validation.Checker {
	return validation.NewChecker(store, zap.NewNop()).
		WithClock(func() time.Time { return checkerNow })
}

func seedClient(store *docstore.MemoryStore, id, taxID string) {
	store.Seed(domain.CollectionClients, id, map[string]any{
		"name":  "Rancho El Amanecer",
		"taxId": taxID,
	})
}

func seedService(store *docstore.MemoryStore, id string) {
	store.Seed(domain.CollectionServiceRequests, id, map[string]any{
		"clientId":    "c1",
		"serviceType": "fumigacion",
	})
}

func TestCheckClient_TaxIDMustBeUnique(t *testing.T) {
	store := docstore.NewMemoryStore()
	seedClient(store, "c1", "AAA010101AAA")
	checker := newChecker(store)

	err := checker.CheckClient(context.Background(), &domain.Client{
		Name:  "Otro Rancho",
		TaxID: "AAA010101AAA",
	})
	assert.True(t, errors.Is(err, domain.ErrAlreadyExists))

	// Updating the same record keeps its own taxId.
	err = checker.CheckClient(context.Background(), &domain.Client{
		ID:    "c1",
		Name:  "Rancho El Amanecer",
		TaxID: "AAA010101AAA",
	})
	assert.NoError(t, err)

	// Absent taxId is not checked.
	err = checker.CheckClient(context.Background(), &domain.Client{Name: "Sin RFC"})
	assert.NoError(t, err)
}

func TestCheckServiceRequest_ClientMustExist(t *testing.T) {
	store := docstore.NewMemoryStore()
	checker := newChecker(store)

	req := &domain.ServiceRequest{
		ClientID:           "desconocido",
		EstimatedStartDate: domain.NewFlexDate(checkerNow.AddDate(0, 0, 5)),
	}
	err := checker.CheckServiceRequest(context.Background(), req)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestCheckServiceRequest_StartDateAtLeastTomorrow(t *testing.T) {
	store := docstore.NewMemoryStore()
	seedClient(store, "c1", "AAA010101AAA")
	checker := newChecker(store)

	// Later today is rejected.
	req := &domain.ServiceRequest{
		ClientID:           "c1",
		EstimatedStartDate: domain.NewFlexDate(checkerNow.Add(2 * time.Hour)),
	}
	err := checker.CheckServiceRequest(context.Background(), req)
	require.True(t, errors.Is(err, domain.ErrInvalidArgument))
	assert.Contains(t, err.Error(), "al menos mañana")

	// Tomorrow at midnight is the boundary.
	req.EstimatedStartDate = domain.NewFlexDate(time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC))
	assert.NoError(t, checker.CheckServiceRequest(context.Background(), req))
}

func TestCheckDailyReport_DateNotInFuture(t *testing.T) {
	store := docstore.NewMemoryStore()
	seedService(store, "s1")
	checker := newChecker(store)

	rep := &domain.DailyReport{
		ServiceID: "s1",
		Date:      domain.NewFlexDate(checkerNow.AddDate(0, 0, 1)),
	}
	err := checker.CheckDailyReport(context.Background(), rep)
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))

	// Any moment today is fine.
	rep.Date = domain.NewFlexDate(time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC))
	assert.NoError(t, checker.CheckDailyReport(context.Background(), rep))
}

func TestCheckDailyReport_OneReportPerServicePerDay(t *testing.T) {
	store := docstore.NewMemoryStore()
	seedService(store, "s1")
	store.Seed(domain.CollectionDailyReports, "r1", map[string]any{
		"serviceId": "s1",
		"date":      "2026-03-09T08:00:00Z",
	})
	checker := newChecker(store)

	rep := &domain.DailyReport{
		ServiceID: "s1",
		Date:      domain.NewFlexDate(time.Date(2026, 3, 9, 17, 0, 0, 0, time.UTC)),
	}
	err := checker.CheckDailyReport(context.Background(), rep)
	assert.True(t, errors.Is(err, domain.ErrAlreadyExists))

	// The existing report may be edited in place.
	rep.ID = "r1"
	assert.NoError(t, checker.CheckDailyReport(context.Background(), rep))

	// A different day for the same service is fine.
	rep.ID = ""
	rep.Date = domain.NewFlexDate(time.Date(2026, 3, 8, 9, 0, 0, 0, time.UTC))
	assert.NoError(t, checker.CheckDailyReport(context.Background(), rep))
}

func TestCheckServiceProposal_Rules(t *testing.T) {
	store := docstore.NewMemoryStore()
	seedService(store, "s1")
	checker := newChecker(store)

	valid := func() *domain.ServiceProposal {
		return &domain.ServiceProposal{
			ServiceID: "s1",
			Timeline: domain.Timeline{
				StartDate: domain.NewFlexDate(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)),
				EndDate:   domain.NewFlexDate(time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)),
			},
			Pricing:    domain.Pricing{Subtotal: 10000, Tax: 1600, Total: 11600},
			ValidUntil: domain.NewFlexDate(checkerNow.AddDate(0, 0, 30)),
		}
	}

	assert.NoError(t, checker.CheckServiceProposal(context.Background(), valid()))

	p := valid()
	p.ServiceID = "desconocido"
	assert.True(t, errors.Is(checker.CheckServiceProposal(context.Background(), p), domain.ErrNotFound))

	p = valid()
	p.Timeline.EndDate = p.Timeline.StartDate
	assert.True(t, errors.Is(checker.CheckServiceProposal(context.Background(), p), domain.ErrInvalidArgument))

	p = valid()
	p.ValidUntil = domain.NewFlexDate(checkerNow.AddDate(0, 0, -1))
	assert.True(t, errors.Is(checker.CheckServiceProposal(context.Background(), p), domain.ErrInvalidArgument))

	p = valid()
	p.Pricing.Total = 11700
	assert.True(t, errors.Is(checker.CheckServiceProposal(context.Background(), p), domain.ErrInvalidArgument))

	// A drift within a centavo is tolerated.
	p = valid()
	p.Pricing.Total = 11600.005
	assert.NoError(t, checker.CheckServiceProposal(context.Background(), p))
}

func TestCheckInvoice_Rules(t *testing.T) {
	store := docstore.NewMemoryStore()
	seedService(store, "s1")
	seedClient(store, "c1", "AAA010101AAA")
	store.Seed(domain.CollectionInvoices, "i1", map[string]any{
		"invoiceNumber": "F-2026-0001",
	})
	checker := newChecker(store)

	valid := func() *domain.Invoice {
		return &domain.Invoice{
			ServiceID:     "s1",
			ClientID:      "c1",
			InvoiceNumber: "F-2026-0042",
			IssueDate:     domain.NewFlexDate(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)),
			DueDate:       domain.NewFlexDate(time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)),
			Items: []domain.InvoiceItem{
				{Description: "Fumigación", Quantity: 1, UnitPrice: 10000, Total: 10000},
				{Description: "Traslado", Quantity: 2, UnitPrice: 500, Total: 1000},
			},
			Subtotal: 11000,
			Tax:      1760,
			Total:    12760,
		}
	}

	assert.NoError(t, checker.CheckInvoice(context.Background(), valid()))

	inv := valid()
	inv.ServiceID = "desconocido"
	err := checker.CheckInvoice(context.Background(), inv)
	require.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Contains(t, err.Error(), "el servicio")

	inv = valid()
	inv.ClientID = "desconocido"
	err = checker.CheckInvoice(context.Background(), inv)
	require.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Contains(t, err.Error(), "el cliente")

	inv = valid()
	inv.DueDate = inv.IssueDate
	assert.True(t, errors.Is(checker.CheckInvoice(context.Background(), inv), domain.ErrInvalidArgument))

	inv = valid()
	inv.InvoiceNumber = "F-2026-0001"
	assert.True(t, errors.Is(checker.CheckInvoice(context.Background(), inv), domain.ErrAlreadyExists))

	inv = valid()
	inv.Subtotal = 10500
	inv.Total = 12260
	err = checker.CheckInvoice(context.Background(), inv)
	require.True(t, errors.Is(err, domain.ErrInvalidArgument))
	assert.Contains(t, err.Error(), "suma de los conceptos")

	inv = valid()
	inv.Total = 12800
	err = checker.CheckInvoice(context.Background(), inv)
	require.True(t, errors.Is(err, domain.ErrInvalidArgument))
	assert.Contains(t, err.Error(), "subtotal más el impuesto")
}

// failingStore simulates an unreachable document store.
type failingStore struct{}

var errStoreDown = errors.New("connection refused")

func (failingStore) Get(ctx context.Context, collection, id string) (map[string]any, bool, error) {
	return nil, false, errStoreDown
}
func (failingStore) Query(ctx context.Context, collection, field string, value any) ([]docstore.Document, error) {
	return nil, errStoreDown
}
func (failingStore) List(ctx context.Context, collection string) ([]docstore.Document, error) {
	return nil, errStoreDown
}
func (failingStore) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	return "", errStoreDown
}
func (failingStore) Update(ctx context.Context, collection, id string, patch map[string]any) error {
	return errStoreDown
}
func (failingStore) Ping(ctx context.Context) error { return errStoreDown }

func TestChecker_StoreFailureIsNotValidationFailure(t *testing.T) {
	checker := newChecker(failingStore{})

	err := checker.CheckClient(context.Background(), &domain.Client{TaxID: "AAA010101AAA"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStoreUnavailable))
	assert.False(t, errors.Is(err, domain.ErrValidationFailed))
	assert.False(t, errors.Is(err, domain.ErrInvalidArgument))
}
