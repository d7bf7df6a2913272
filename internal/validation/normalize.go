package validation

import (
	"github.com/agrocampo/campo-api/internal/domain"
)

// Normalization is deterministic adjustment of an already-valid record:
// defaults and the primary-contact rule. It runs inside the shape validator
// (not only on the write path) so the form layer, the submit path and the
// trigger all observe identical output, and re-validating a normalized
// record is a no-op.

func (r *Rules) normalizeClient(c *domain.Client) {
	if c.Address.Country == "" {
		c.Address.Country = domain.DefaultCountry
	}
	if c.IsActive == nil {
		active := true
		c.IsActive = &active
	}

	// Exactly one primary contact: if none is flagged, promote the first;
	// if several are, the first flagged one wins and the rest are cleared.
	primary := -1
	for i := range c.Contacts {
		if c.Contacts[i].IsPrimary {
			if primary == -1 {
				primary = i
			} else {
				c.Contacts[i].IsPrimary = false
			}
		}
	}
	if primary == -1 && len(c.Contacts) > 0 {
		c.Contacts[0].IsPrimary = true
	}
}

func (r *Rules) normalizeProposal(p *domain.ServiceProposal) {
	if p.Pricing.Currency == "" {
		p.Pricing.Currency = domain.DefaultCurrency
	}
	if !p.ValidUntil.IsSet() {
		p.ValidUntil = domain.NewFlexDate(
			r.now().AddDate(0, 0, domain.DefaultProposalValidityDays))
	}
}

func (r *Rules) normalizeInvoice(inv *domain.Invoice) {
	if inv.Currency == "" {
		inv.Currency = domain.DefaultCurrency
	}
	if inv.Status == "" {
		inv.Status = domain.InvoiceStatusDraft
	}
	for i := range inv.Items {
		if inv.Items[i].TaxRate == nil {
			rate := domain.DefaultItemTaxRate
			inv.Items[i].TaxRate = &rate
		}
	}
}
