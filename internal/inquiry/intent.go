package inquiry

import (
	"fmt"
	"strings"
)

// Intent is the purpose of a submission; it selects which fields are shown and required.
type Intent string

const (
	IntentQuote    Intent = "quote"
	IntentContact  Intent = "contact"
	IntentCallback Intent = "callback"
)

// Intents lists every supported intent.
var Intents = []Intent{IntentQuote, IntentContact, IntentCallback}

// ParseIntent accepts the wire value of an intent.
func ParseIntent(raw string) (Intent, error) {
	switch Intent(strings.TrimSpace(raw)) {
	case IntentQuote:
		return IntentQuote, nil
	case IntentContact:
		return IntentContact, nil
	case IntentCallback:
		return IntentCallback, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidIntent, raw)
}

// Valid reports whether i is one of the known intents.
func (i Intent) Valid() bool {
	_, ok := rules[i]
	return ok
}

// Field names a submission field. Values match the JSON keys and table columns.
type Field string

const (
	FieldFullName    Field = "full_name"
	FieldEmail       Field = "email"
	FieldPhone       Field = "phone"
	FieldCompany     Field = "company"
	FieldLocation    Field = "location"
	FieldService     Field = "service"
	FieldTimeline    Field = "timeline"
	FieldBudgetRange Field = "budget_range"
	FieldDetails     Field = "details"
)

// FormFields is the render order of the modal's editable fields.
var FormFields = []Field{
	FieldFullName,
	FieldEmail,
	FieldPhone,
	FieldCompany,
	FieldLocation,
	FieldService,
	FieldTimeline,
	FieldBudgetRange,
	FieldDetails,
}

type fieldRule struct {
	visible  []Field
	required []Field
}

// rules is the single table read by both the modal and the server validator.
var rules = map[Intent]fieldRule{
	IntentCallback: {
		visible:  []Field{FieldFullName, FieldPhone, FieldDetails},
		required: []Field{FieldFullName, FieldPhone},
	},
	IntentQuote: {
		visible:  FormFields,
		required: []Field{FieldFullName, FieldEmail, FieldLocation, FieldTimeline, FieldBudgetRange},
	},
	IntentContact: {
		visible:  []Field{FieldFullName, FieldEmail, FieldPhone, FieldCompany, FieldService, FieldDetails},
		required: []Field{FieldFullName, FieldEmail},
	},
}

// VisibleFields returns the fields shown for intent, in render order.
func VisibleFields(intent Intent) []Field {
	return append([]Field(nil), rules[intent].visible...)
}

// RequiredFields returns the fields that must be non-blank for intent.
func RequiredFields(intent Intent) []Field {
	return append([]Field(nil), rules[intent].required...)
}

// IsVisible reports whether field is rendered for intent.
func IsVisible(intent Intent, field Field) bool {
	return contains(rules[intent].visible, field)
}

// IsRequired reports whether field is required for intent.
func IsRequired(intent Intent, field Field) bool {
	return contains(rules[intent].required, field)
}

func contains(fields []Field, f Field) bool {
	for _, candidate := range fields {
		if candidate == f {
			return true
		}
	}
	return false
}
