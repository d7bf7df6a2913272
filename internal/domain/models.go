package domain

import (
	"encoding/json"
	"time"
)

// Document store collections watched by the validation subsystem.
const (
	CollectionClients          = "clients"
	CollectionServiceRequests  = "service_requests"
	CollectionDailyReports     = "daily_reports"
	CollectionServiceProposals = "service_proposals"
	CollectionInvoices         = "invoices"
)

// Kind selects which rule set applies to a record.
type Kind string

const (
	KindClient          Kind = "client"
	KindServiceRequest  Kind = "service_request"
	KindDailyReport     Kind = "daily_report"
	KindServiceProposal Kind = "service_proposal"
	KindInvoice         Kind = "invoice"
)

// KindForCollection maps a collection name to its record kind.
func KindForCollection(collection string) (Kind, bool) {
	switch collection {
	case CollectionClients:
		return KindClient, true
	case CollectionServiceRequests:
		return KindServiceRequest, true
	case CollectionDailyReports:
		return KindDailyReport, true
	case CollectionServiceProposals:
		return KindServiceProposal, true
	case CollectionInvoices:
		return KindInvoice, true
	default:
		return "", false
	}
}

// WatchedCollections lists every collection the revalidator observes.
func WatchedCollections() []string {
	return []string{
		CollectionClients,
		CollectionServiceRequests,
		CollectionDailyReports,
		CollectionServiceProposals,
		CollectionInvoices,
	}
}

// FlexDate is a date field that accepts either a date value or a parseable
// date string on input. Malformed input never aborts decoding; it is recorded
// and reported later as a field-level validation error.
type FlexDate struct {
	t       time.Time
	set     bool
	invalid bool
}

var flexDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02/01/2006",
}

// NewFlexDate wraps a concrete time value.
func NewFlexDate(t time.Time) FlexDate {
	return FlexDate{t: t, set: true}
}

// Time returns the underlying time value (zero if unset or invalid).
func (d FlexDate) Time() time.Time { return d.t }

// IsSet reports whether the field was present in the input.
func (d FlexDate) IsSet() bool { return d.set }

// IsInvalid reports whether the field was present but unparseable.
func (d FlexDate) IsInvalid() bool { return d.invalid }

// UnmarshalJSON accepts RFC 3339 timestamps, bare dates, dd/mm/yyyy strings
// and epoch numbers. It never returns an error: a value of the wrong type or
// format marks the date invalid so the shape validator can report it on the
// right field instead of failing the whole decode.
func (d *FlexDate) UnmarshalJSON(b []byte) error {
	*d = FlexDate{}
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		d.set = true
		d.invalid = true
		return nil
	}
	switch v := raw.(type) {
	case nil:
		return nil
	case string:
		if v == "" {
			return nil
		}
		d.set = true
		for _, layout := range flexDateLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				d.t = t
				return nil
			}
		}
		d.invalid = true
	case float64:
		d.set = true
		// Epoch seconds below ~5138 AD, epoch milliseconds above.
		if v > 1e11 {
			d.t = time.UnixMilli(int64(v)).UTC()
		} else {
			d.t = time.Unix(int64(v), 0).UTC()
		}
	default:
		d.set = true
		d.invalid = true
	}
	return nil
}

// MarshalJSON renders the date as RFC 3339, or null when unset.
func (d FlexDate) MarshalJSON() ([]byte, error) {
	if !d.set || d.invalid {
		return []byte("null"), nil
	}
	return json.Marshal(d.t.Format(time.RFC3339))
}

// Address is a Mexican postal address. Postal codes are exactly five digits.
type Address struct {
	Street     string `json:"street" validate:"required,max=200"`
	City       string `json:"city" validate:"required,max=100"`
	State      string `json:"state" validate:"required,max=100"`
	PostalCode string `json:"postalCode" validate:"required,codigo_postal"`
	Country    string `json:"country,omitempty" validate:"omitempty,max=100"`
}

// Contact is an individual person attached to a client. After normalization
// exactly one contact per client carries IsPrimary.
type Contact struct {
	Name      string `json:"name" validate:"required,nombre_persona,max=150"`
	Role      string `json:"role,omitempty" validate:"omitempty,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone,omitempty" validate:"omitempty,telefono"`
	IsPrimary bool   `json:"isPrimary"`
}

// Client is a customer of the agricultural-services company.
type Client struct {
	ID           string                `json:"id,omitempty"`
	Name         string                `json:"name" validate:"required,min=2,max=200"`
	BusinessName string                `json:"businessName,omitempty" validate:"omitempty,max=200"`
	TaxID        string                `json:"taxId,omitempty" validate:"omitempty,min=12,max=13"`
	Address      Address               `json:"address"`
	Contacts     []Contact             `json:"contacts" validate:"required,min=1,dive"`
	IsActive     *bool                 `json:"isActive,omitempty"`
	Notes        string                `json:"notes,omitempty" validate:"omitempty,max=2000"`
	CreatedAt    time.Time             `json:"createdAt,omitempty"`
	UpdatedAt    time.Time             `json:"updatedAt,omitempty"`
	Validation   *ValidationAnnotation `json:"_validationError,omitempty"`
}

// ServiceType classifies the field work a client requests.
type ServiceType string

const (
	ServiceTypeFumigation      ServiceType = "fumigacion"
	ServiceTypeFertilization   ServiceType = "fertilizacion"
	ServiceTypeSowing          ServiceType = "siembra"
	ServiceTypeHarvest         ServiceType = "cosecha"
	ServiceTypeSoilPreparation ServiceType = "preparacion_suelo"
	ServiceTypeIrrigation      ServiceType = "riego"
	ServiceTypeOther           ServiceType = "otro"
)

// Priority of a service request.
type Priority string

const (
	PriorityLow    Priority = "baja"
	PriorityMedium Priority = "media"
	PriorityHigh   Priority = "alta"
	PriorityUrgent Priority = "urgente"
)

// ServiceRequest is a client's request for field work. EstimatedStartDate
// must be at least tomorrow, checked at validation time.
type ServiceRequest struct {
	ID                 string                `json:"id,omitempty"`
	ClientID           string                `json:"clientId" validate:"required"`
	ServiceType        ServiceType           `json:"serviceType" validate:"required,oneof=fumigacion fertilizacion siembra cosecha preparacion_suelo riego otro"`
	Description        string                `json:"description" validate:"required,min=10,max=2000"`
	Priority           Priority              `json:"priority" validate:"required,oneof=baja media alta urgente"`
	EstimatedDuration  float64               `json:"estimatedDuration" validate:"required,gt=0"`
	EstimatedStartDate FlexDate              `json:"estimatedStartDate" validate:"fecha_req"`
	Location           string                `json:"location" validate:"required,max=300"`
	ContactName        string                `json:"contactName" validate:"required,nombre_persona,max=150"`
	ContactPhone       string                `json:"contactPhone" validate:"required,telefono"`
	Notes              string                `json:"notes,omitempty" validate:"omitempty,max=2000"`
	TermsAccepted      bool                  `json:"termsAccepted" validate:"eq=true"`
	CreatedAt          time.Time             `json:"createdAt,omitempty"`
	UpdatedAt          time.Time             `json:"updatedAt,omitempty"`
	Validation         *ValidationAnnotation `json:"_validationError,omitempty"`
}

// ReportProgress captures how much work a crew completed in a day.
type ReportProgress struct {
	Hectares   float64 `json:"hectares" validate:"gte=0"`
	Hours      float64 `json:"hours" validate:"gte=0"`
	Percentage float64 `json:"percentage" validate:"gte=0,lte=100"`
}

// ReportConsumables captures materials used during a day of field work.
type ReportConsumables struct {
	FuelLiters      float64 `json:"fuel" validate:"gte=0"`
	FertilizerKilos float64 `json:"fertilizer" validate:"gte=0"`
	SeedKilos       float64 `json:"seeds" validate:"gte=0"`
	PesticideLiters float64 `json:"pesticides" validate:"gte=0"`
}

// WeatherInfo is an optional weather snapshot attached to a daily report.
type WeatherInfo struct {
	Condition    string  `json:"condition,omitempty" validate:"omitempty,max=100"`
	TemperatureC float64 `json:"temperatureC,omitempty"`
	HumidityPct  float64 `json:"humidityPct,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// DailyReport is a field crew's end-of-day report for a service. At most one
// report may exist per (serviceId, date) pair.
type DailyReport struct {
	ID           string                `json:"id,omitempty"`
	ServiceID    string                `json:"serviceId" validate:"required"`
	Date         FlexDate              `json:"date" validate:"fecha_req"`
	Progress     ReportProgress        `json:"progress"`
	Consumables  ReportConsumables     `json:"consumables"`
	Incidents    string                `json:"incidents,omitempty" validate:"omitempty,max=2000"`
	EvidenceURLs []string              `json:"evidenceUrls,omitempty" validate:"omitempty,dive,url"`
	Weather      *WeatherInfo          `json:"weather,omitempty"`
	CreatedAt    time.Time             `json:"createdAt,omitempty"`
	UpdatedAt    time.Time             `json:"updatedAt,omitempty"`
	Validation   *ValidationAnnotation `json:"_validationError,omitempty"`
}

// Milestone is an optional intermediate delivery inside a proposal timeline.
type Milestone struct {
	Title string   `json:"title" validate:"required,max=200"`
	Date  FlexDate `json:"date" validate:"fecha"`
}

// Timeline bounds a proposal's execution window. EndDate must be after
// StartDate.
type Timeline struct {
	StartDate  FlexDate    `json:"startDate" validate:"fecha_req"`
	EndDate    FlexDate    `json:"endDate" validate:"fecha_req"`
	Milestones []Milestone `json:"milestones,omitempty" validate:"omitempty,dive"`
}

// Pricing holds proposal money fields. Total must equal Subtotal + Tax
// within a 0.01 tolerance.
type Pricing struct {
	Subtotal float64 `json:"subtotal" validate:"gte=0"`
	Tax      float64 `json:"tax" validate:"gte=0"`
	Total    float64 `json:"total" validate:"gte=0"`
	Currency string  `json:"currency,omitempty" validate:"omitempty,oneof=MXN USD"`
}

// DefaultProposalValidityDays is applied when validUntil is absent.
const DefaultProposalValidityDays = 30

// ServiceProposal is a formal offer for a requested service.
type ServiceProposal struct {
	ID          string                `json:"id,omitempty"`
	ServiceID   string                `json:"serviceId" validate:"required"`
	Title       string                `json:"title" validate:"required,min=3,max=200"`
	Description string                `json:"description" validate:"required,min=10,max=5000"`
	Scope       string                `json:"scope" validate:"required,min=10,max=5000"`
	Timeline    Timeline              `json:"timeline"`
	Pricing     Pricing               `json:"pricing"`
	Terms       string                `json:"terms" validate:"required,min=10,max=5000"`
	ValidUntil  FlexDate              `json:"validUntil" validate:"fecha"`
	CreatedAt   time.Time             `json:"createdAt,omitempty"`
	UpdatedAt   time.Time             `json:"updatedAt,omitempty"`
	Validation  *ValidationAnnotation `json:"_validationError,omitempty"`
}

// InvoiceStatus tracks an invoice through its collection lifecycle.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// DefaultItemTaxRate is the IVA rate applied to invoice line items when none
// is given.
const DefaultItemTaxRate = 0.16

// InvoiceItem is a single invoice line.
type InvoiceItem struct {
	Description string   `json:"description" validate:"required,max=500"`
	Quantity    float64  `json:"quantity" validate:"required,gt=0"`
	UnitPrice   float64  `json:"unitPrice" validate:"required,gt=0"`
	TaxRate     *float64 `json:"taxRate,omitempty" validate:"omitempty,gte=0,lte=1"`
	Total       float64  `json:"total" validate:"required,gt=0"`
}

// Invoice bills a client for a completed service. InvoiceNumber is unique
// across all invoices; money fields must be internally consistent within a
// 0.01 tolerance.
type Invoice struct {
	ID            string                `json:"id,omitempty"`
	ServiceID     string                `json:"serviceId" validate:"required"`
	ClientID      string                `json:"clientId" validate:"required"`
	InvoiceNumber string                `json:"invoiceNumber" validate:"required,max=50"`
	IssueDate     FlexDate              `json:"issueDate" validate:"fecha_req"`
	DueDate       FlexDate              `json:"dueDate" validate:"fecha_req"`
	Items         []InvoiceItem         `json:"items" validate:"required,min=1,dive"`
	Subtotal      float64               `json:"subtotal" validate:"gte=0"`
	Tax           float64               `json:"tax" validate:"gte=0"`
	Total         float64               `json:"total" validate:"gte=0"`
	Currency      string                `json:"currency,omitempty" validate:"omitempty,oneof=MXN USD"`
	Status        InvoiceStatus         `json:"status,omitempty" validate:"omitempty,oneof=draft sent paid overdue cancelled"`
	PaymentTerms  string                `json:"paymentTerms,omitempty" validate:"omitempty,max=1000"`
	Notes         string                `json:"notes,omitempty" validate:"omitempty,max=2000"`
	CreatedAt     time.Time             `json:"createdAt,omitempty"`
	UpdatedAt     time.Time             `json:"updatedAt,omitempty"`
	Validation    *ValidationAnnotation `json:"_validationError,omitempty"`
}

// ValidationAnnotation is written onto a document by the write-trigger
// revalidator instead of rejecting the (already landed) write.
type ValidationAnnotation struct {
	At     time.Time    `json:"at"`
	Errors []FieldError `json:"errors"`
}

// Defaults applied during normalization.
const (
	DefaultCountry  = "México"
	DefaultCurrency = "MXN"
)
