package validation

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/agrocampo/campo-api/internal/docstore"
	"github.com/agrocampo/campo-api/internal/domain"
	"go.uber.org/zap"
)

// MoneyTolerance is the accepted absolute drift for money arithmetic checks.
const MoneyTolerance = 0.01

// Checker runs the cross-record consistency rules that need the document
// store: referenced-record existence, uniqueness constraints and the
// time-relative date rules. It runs after shape validation succeeded.
//
// Uniqueness checks are read-then-decide with no transactional guard: two
// concurrent submissions can both pass and both write. Preventing that needs
// a conditional write at the store layer, which is outside this contract.
type Checker struct {
	store  docstore.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewChecker creates a consistency checker over the given store.
func NewChecker(store docstore.Store, logger *zap.Logger) *Checker {
	return &Checker{store: store, logger: logger, now: time.Now}
}

// WithClock overrides the checker's clock, for tests.
func (c *Checker) WithClock(now func() time.Time) *Checker {
	c.now = now
	return c
}

// Check dispatches to the kind-specific consistency rules.
func (c *Checker) Check(ctx context.Context, kind domain.Kind, record any) error {
	switch kind {
	case domain.KindClient:
		return c.CheckClient(ctx, record.(*domain.Client))
	case domain.KindServiceRequest:
		return c.CheckServiceRequest(ctx, record.(*domain.ServiceRequest))
	case domain.KindDailyReport:
		return c.CheckDailyReport(ctx, record.(*domain.DailyReport))
	case domain.KindServiceProposal:
		return c.CheckServiceProposal(ctx, record.(*domain.ServiceProposal))
	case domain.KindInvoice:
		return c.CheckInvoice(ctx, record.(*domain.Invoice))
	default:
		return fmt.Errorf("%w: tipo de registro desconocido: %s", domain.ErrInvalidArgument, kind)
	}
}

// CheckClient enforces taxId uniqueness across all clients, excluding the
// record's own id on update.
func (c *Checker) CheckClient(ctx context.Context, client *domain.Client) error {
	if client.TaxID == "" {
		return nil
	}
	docs, err := c.store.Query(ctx, domain.CollectionClients, "taxId", client.TaxID)
	if err != nil {
		return storeErr(err)
	}
	for _, doc := range docs {
		if doc.ID != client.ID {
			return fmt.Errorf("%w: ya existe un cliente con el RFC %s", domain.ErrAlreadyExists, client.TaxID)
		}
	}
	return nil
}

// CheckServiceRequest verifies the referenced client exists and that the
// estimated start date is no earlier than tomorrow at local midnight,
// recomputed at validation time.
func (c *Checker) CheckServiceRequest(ctx context.Context, req *domain.ServiceRequest) error {
	_, exists, err := c.store.Get(ctx, domain.CollectionClients, req.ClientID)
	if err != nil {
		return storeErr(err)
	}
	if !exists {
		return fmt.Errorf("%w: el cliente %s no existe", domain.ErrNotFound, req.ClientID)
	}

	if req.EstimatedStartDate.Time().Before(c.tomorrow()) {
		return fmt.Errorf("%w: la fecha de inicio debe ser al menos mañana", domain.ErrInvalidArgument)
	}
	return nil
}

// CheckDailyReport verifies the referenced service exists, the report date is
// not in the future (relative to end of today) and no other report exists for
// the same service and calendar date.
func (c *Checker) CheckDailyReport(ctx context.Context, rep *domain.DailyReport) error {
	_, exists, err := c.store.Get(ctx, domain.CollectionServiceRequests, rep.ServiceID)
	if err != nil {
		return storeErr(err)
	}
	if !exists {
		return fmt.Errorf("%w: el servicio %s no existe", domain.ErrNotFound, rep.ServiceID)
	}

	if rep.Date.Time().After(c.endOfToday()) {
		return fmt.Errorf("%w: la fecha del reporte no puede ser futura", domain.ErrInvalidArgument)
	}

	docs, err := c.store.Query(ctx, domain.CollectionDailyReports, "serviceId", rep.ServiceID)
	if err != nil {
		return storeErr(err)
	}
	for _, doc := range docs {
		if doc.ID == rep.ID {
			continue
		}
		var other domain.DailyReport
		if err := docstore.FromMap(doc.Data, &other); err != nil {
			c.logger.Warn("skipping unreadable daily report during uniqueness check",
				zap.String("id", doc.ID), zap.Error(err))
			continue
		}
		if sameDay(other.Date.Time(), rep.Date.Time()) {
			return fmt.Errorf("%w: ya existe un reporte para este servicio en esa fecha", domain.ErrAlreadyExists)
		}
	}
	return nil
}

// CheckServiceProposal verifies the referenced service exists, the timeline
// is ordered, the proposal is still valid and the pricing arithmetic holds.
func (c *Checker) CheckServiceProposal(ctx context.Context, p *domain.ServiceProposal) error {
	_, exists, err := c.store.Get(ctx, domain.CollectionServiceRequests, p.ServiceID)
	if err != nil {
		return storeErr(err)
	}
	if !exists {
		return fmt.Errorf("%w: el servicio %s no existe", domain.ErrNotFound, p.ServiceID)
	}

	if !p.Timeline.EndDate.Time().After(p.Timeline.StartDate.Time()) {
		return fmt.Errorf("%w: la fecha de fin debe ser posterior a la fecha de inicio", domain.ErrInvalidArgument)
	}
	if !p.ValidUntil.Time().After(c.now()) {
		return fmt.Errorf("%w: la fecha de vigencia debe ser futura", domain.ErrInvalidArgument)
	}
	if math.Abs(p.Pricing.Subtotal+p.Pricing.Tax-p.Pricing.Total) > MoneyTolerance {
		return fmt.Errorf("%w: el total no coincide con el subtotal más el impuesto", domain.ErrInvalidArgument)
	}
	return nil
}

// CheckInvoice verifies both referenced records exist, the dates are ordered,
// the invoice number is unique and the money arithmetic is consistent.
func (c *Checker) CheckInvoice(ctx context.Context, inv *domain.Invoice) error {
	_, exists, err := c.store.Get(ctx, domain.CollectionServiceRequests, inv.ServiceID)
	if err != nil {
		return storeErr(err)
	}
	if !exists {
		return fmt.Errorf("%w: el servicio %s no existe", domain.ErrNotFound, inv.ServiceID)
	}
	_, exists, err = c.store.Get(ctx, domain.CollectionClients, inv.ClientID)
	if err != nil {
		return storeErr(err)
	}
	if !exists {
		return fmt.Errorf("%w: el cliente %s no existe", domain.ErrNotFound, inv.ClientID)
	}

	if !inv.DueDate.Time().After(inv.IssueDate.Time()) {
		return fmt.Errorf("%w: la fecha de vencimiento debe ser posterior a la fecha de emisión", domain.ErrInvalidArgument)
	}

	docs, err := c.store.Query(ctx, domain.CollectionInvoices, "invoiceNumber", inv.InvoiceNumber)
	if err != nil {
		return storeErr(err)
	}
	for _, doc := range docs {
		if doc.ID != inv.ID {
			return fmt.Errorf("%w: ya existe una factura con el folio %s", domain.ErrAlreadyExists, inv.InvoiceNumber)
		}
	}

	var itemsTotal float64
	for _, item := range inv.Items {
		itemsTotal += item.Total
	}
	if math.Abs(itemsTotal-inv.Subtotal) > MoneyTolerance {
		return fmt.Errorf("%w: el subtotal no coincide con la suma de los conceptos", domain.ErrInvalidArgument)
	}
	if math.Abs(inv.Subtotal+inv.Tax-inv.Total) > MoneyTolerance {
		return fmt.Errorf("%w: el total no coincide con el subtotal más el impuesto", domain.ErrInvalidArgument)
	}
	return nil
}

// tomorrow is tomorrow at local midnight.
func (c *Checker) tomorrow() time.Time {
	now := c.now()
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
}

// endOfToday is today at 23:59:59.999 local time.
func (c *Checker) endOfToday() time.Time {
	now := c.now()
	y, m, d := now.Date()
	return time.Date(y, m, d, 23, 59, 59, 999_000_000, now.Location())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// storeErr keeps "we could not check your data" distinct from "your data is
// invalid".
func storeErr(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
}
