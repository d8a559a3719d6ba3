package inquiry

import "strings"

// Endpoint names one of the intake functions.
type Endpoint string

const (
	EndpointInquiry  Endpoint = "inquiry"
	EndpointLead     Endpoint = "lead"
	EndpointQuote    Endpoint = "quote"
	EndpointCallback Endpoint = "callback"
)

// Tables written by the intake endpoints.
const (
	TableInquiries = "inquiries"
	TableLeads     = "leads"
)

// Profile captures what differs between the four intake endpoints.
type Profile struct {
	Endpoint Endpoint
	// Table receives the accepted row.
	Table string
	// FixedIntent is set for single-purpose endpoints; empty means the body decides.
	FixedIntent Intent
	// DefaultSource fills source when a single-purpose form omits it.
	DefaultSource string
	// EmitEvent records a form_submitted analytics event after the insert.
	EmitEvent bool

	RateLimitedMessage string
	SaveFailedMessage  string

	check func(s *Submission) error
}

const (
	tooManyRequests   = "Too many requests. Please try again in a few seconds."
	rateLimitExceeded = "Rate limit exceeded. Please try again in 10 seconds."
)

// Profiles lists the intake endpoints in route order.
var Profiles = []Profile{
	{
		Endpoint:           EndpointInquiry,
		Table:              TableInquiries,
		RateLimitedMessage: tooManyRequests,
		SaveFailedMessage:  "Failed to save inquiry",
		check:              checkInquiry,
	},
	{
		Endpoint:           EndpointLead,
		Table:              TableLeads,
		FixedIntent:        IntentContact,
		DefaultSource:      "contact_modal",
		EmitEvent:          true,
		RateLimitedMessage: rateLimitExceeded,
		SaveFailedMessage:  "Failed to submit lead",
		check:              checkLead,
	},
	{
		Endpoint:           EndpointQuote,
		Table:              TableInquiries,
		FixedIntent:        IntentQuote,
		DefaultSource:      "quote_modal",
		RateLimitedMessage: tooManyRequests,
		SaveFailedMessage:  "Failed to submit quote request",
		check:              func(s *Submission) error { return ValidateIntent(IntentQuote, s) },
	},
	{
		Endpoint:           EndpointCallback,
		Table:              TableInquiries,
		FixedIntent:        IntentCallback,
		DefaultSource:      "callback_modal",
		RateLimitedMessage: tooManyRequests,
		SaveFailedMessage:  "Failed to submit callback request",
		check:              func(s *Submission) error { return ValidateIntent(IntentCallback, s) },
	},
}

// ProfileFor looks up the profile of an endpoint.
func ProfileFor(e Endpoint) (Profile, bool) {
	for _, p := range Profiles {
		if p.Endpoint == e {
			return p, true
		}
	}
	return Profile{}, false
}

// Prepare normalizes s for this endpoint and validates it.
// On success s.Intent and s.Source are populated.
func (p Profile) Prepare(s *Submission) error {
	s.Normalize()
	if p.FixedIntent != "" {
		s.Intent = string(p.FixedIntent)
		if blank(s.Source) {
			s.Source = p.DefaultSource
		}
	}
	s.Source = strings.TrimSpace(s.Source)
	return p.check(s)
}

func checkInquiry(s *Submission) error {
	intent, err := ParseIntent(s.Intent)
	if err != nil {
		return invalid("Invalid intent type")
	}
	s.Intent = string(intent)
	if blank(s.Source) {
		return invalid("Source is required")
	}
	return ValidateIntent(intent, s)
}

// The lead endpoint only needs a name and an email to reach someone.
func checkLead(s *Submission) error {
	if blank(s.FullName) || blank(s.Email) {
		return invalid("Full name and email are required")
	}
	return nil
}
