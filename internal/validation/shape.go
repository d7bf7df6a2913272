// Package validation implements the shared rule engine for client records,
// service requests, daily field reports, proposals and invoices. The same
// rule set backs the form submit path and the post-write trigger, so the two
// tiers can never drift apart.
package validation

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/agrocampo/campo-api/internal/domain"
	"github.com/go-playground/validator/v10"
)

var (
	postalCodeRe = regexp.MustCompile(`^\d{5}$`)
	personNameRe = regexp.MustCompile(`^[A-Za-zÁÉÍÓÚÜÑáéíóúüñ]+(?: [A-Za-zÁÉÍÓÚÜÑáéíóúüñ.]+)*$`)
	phoneRe      = regexp.MustCompile(`^\+?[0-9][0-9 ().-]{6,19}$`)
)

// Rules is the shape validator: it decodes an untyped record, applies the
// declarative rule set for its kind and returns either a normalized record or
// a ValidationError with one message per violated rule. It performs no I/O;
// store-backed checks live in Checker.
type Rules struct {
	v   *validator.Validate
	now func() time.Time
}

// NewRules builds the rule engine with its custom tag handlers registered.
func NewRules() *Rules {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON field names instead of Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	mustRegister(v, "codigo_postal", func(fl validator.FieldLevel) bool {
		return postalCodeRe.MatchString(fl.Field().String())
	})
	mustRegister(v, "nombre_persona", func(fl validator.FieldLevel) bool {
		return personNameRe.MatchString(fl.Field().String())
	})
	mustRegister(v, "telefono", func(fl validator.FieldLevel) bool {
		return phoneRe.MatchString(fl.Field().String())
	})
	// fecha: optional date field, must parse when present.
	mustRegister(v, "fecha", func(fl validator.FieldLevel) bool {
		fd, ok := fl.Field().Interface().(domain.FlexDate)
		return ok && !fd.IsInvalid()
	})
	// fecha_req: date field that must be present and parseable.
	mustRegister(v, "fecha_req", func(fl validator.FieldLevel) bool {
		fd, ok := fl.Field().Interface().(domain.FlexDate)
		return ok && fd.IsSet() && !fd.IsInvalid()
	})

	return &Rules{v: v, now: time.Now}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: registering tag %s: %v", tag, err))
	}
}

// WithClock overrides the engine's clock, for tests.
func (r *Rules) WithClock(now func() time.Time) *Rules {
	r.now = now
	return r
}

// Parse runs shape validation for the given kind over raw JSON input and
// returns the normalized record on success.
func (r *Rules) Parse(kind domain.Kind, raw []byte) (any, error) {
	switch kind {
	case domain.KindClient:
		return r.ParseClient(raw)
	case domain.KindServiceRequest:
		return r.ParseServiceRequest(raw)
	case domain.KindDailyReport:
		return r.ParseDailyReport(raw)
	case domain.KindServiceProposal:
		return r.ParseServiceProposal(raw)
	case domain.KindInvoice:
		return r.ParseInvoice(raw)
	default:
		return nil, fmt.Errorf("%w: tipo de registro desconocido: %s", domain.ErrInvalidArgument, kind)
	}
}

// ParseDocument validates an already-decoded document, as delivered by the
// store's change notifications.
func (r *Rules) ParseDocument(kind domain.Kind, data map[string]any) (any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, &domain.ValidationError{Fields: []domain.FieldError{
			{Field: "", Message: "el documento no se puede interpretar"},
		}}
	}
	return r.Parse(kind, raw)
}

// ParseClient validates and normalizes a client record.
func (r *Rules) ParseClient(raw []byte) (*domain.Client, error) {
	var c domain.Client
	if err := r.decode(raw, &c); err != nil {
		return nil, err
	}
	if err := r.check(&c); err != nil {
		return nil, err
	}
	r.normalizeClient(&c)
	return &c, nil
}

// ParseServiceRequest validates a service request record.
func (r *Rules) ParseServiceRequest(raw []byte) (*domain.ServiceRequest, error) {
	var req domain.ServiceRequest
	if err := r.decode(raw, &req); err != nil {
		return nil, err
	}
	if err := r.check(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// ParseDailyReport validates a daily report record.
func (r *Rules) ParseDailyReport(raw []byte) (*domain.DailyReport, error) {
	var rep domain.DailyReport
	if err := r.decode(raw, &rep); err != nil {
		return nil, err
	}
	if err := r.check(&rep); err != nil {
		return nil, err
	}
	return &rep, nil
}

// ParseServiceProposal validates and normalizes a proposal record.
func (r *Rules) ParseServiceProposal(raw []byte) (*domain.ServiceProposal, error) {
	var p domain.ServiceProposal
	if err := r.decode(raw, &p); err != nil {
		return nil, err
	}
	if err := r.check(&p); err != nil {
		return nil, err
	}
	r.normalizeProposal(&p)
	return &p, nil
}

// ParseInvoice validates and normalizes an invoice record.
func (r *Rules) ParseInvoice(raw []byte) (*domain.Invoice, error) {
	var inv domain.Invoice
	if err := r.decode(raw, &inv); err != nil {
		return nil, err
	}
	if err := r.check(&inv); err != nil {
		return nil, err
	}
	r.normalizeInvoice(&inv)
	return &inv, nil
}

// decode unmarshals arbitrary input without ever panicking: a wrong-typed
// field becomes a validation failure on that field, malformed JSON a single
// top-level failure.
func (r *Rules) decode(raw []byte, target any) error {
	err := json.Unmarshal(raw, target)
	if err == nil {
		return nil
	}
	if te, ok := err.(*json.UnmarshalTypeError); ok {
		return &domain.ValidationError{Fields: []domain.FieldError{
			{Field: te.Field, Message: "tipo de dato inválido"},
		}}
	}
	return &domain.ValidationError{Fields: []domain.FieldError{
		{Field: "", Message: "el documento no es JSON válido"},
	}}
}

// check runs the tag rules and shapes violations into field-path errors.
func (r *Rules) check(record any) error {
	err := r.v.Struct(record)
	if err == nil {
		return nil
	}
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		// InvalidValidationError only occurs for non-struct input, which the
		// typed Parse methods rule out.
		return &domain.ValidationError{Fields: []domain.FieldError{
			{Field: "", Message: "el registro no se puede validar"},
		}}
	}
	fields := make([]domain.FieldError, 0, len(ve))
	for _, fe := range ve {
		fields = append(fields, domain.FieldError{
			Field:   fieldPath(fe.Namespace()),
			Message: formatFieldError(fe),
		})
	}
	return &domain.ValidationError{Fields: fields}
}

// fieldPath converts a validator namespace ("Client.contacts[0].email") into
// the dotted form the form layer binds to inputs ("contacts.0.email").
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	ns = strings.ReplaceAll(ns, "[", ".")
	ns = strings.ReplaceAll(ns, "]", "")
	return ns
}
