package cta

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrMalformedAction is returned by Validate for entries missing required data.
var ErrMalformedAction = errors.New("cta: malformed action")

// Registry maps a button id to its action.
type Registry map[string]Action

const (
	salesPhone = "+19143472700"
	salesEmail = "info@corstar.com"
)

// DefaultRegistry returns the site's buttons. calendlyURL backs the scheduling link.
func DefaultRegistry(calendlyURL string) Registry {
	if strings.TrimSpace(calendlyURL) == "" {
		calendlyURL = "https://calendly.com"
	}
	return Registry{
		"cta-hero-primary": InquiryAction{
			Intent: "quote", Source: "hero_cta",
			Title: "Request a Quote", ButtonText: "Request Quote",
		},
		"cta-hero-secondary": ScrollAction{TargetID: "services"},
		"cta-services-cabling": InquiryAction{
			Intent: "contact", Source: "services_cabling",
			PrefilledService: "Structured Cabling",
		},
		"cta-services-it": InquiryAction{
			Intent: "contact", Source: "services_it",
			PrefilledService: "Managed IT Services",
		},
		"cta-pricing-quote": InquiryAction{
			Intent: "quote", Source: "pricing_quote",
			Title: "Request a Quote", ButtonText: "Request Quote",
		},
		"cta-compliance-assessment": InquiryAction{
			Intent: "quote", Source: "compliance_assessment",
			Title: "Schedule a Compliance Assessment", ButtonText: "Request Assessment",
		},
		"cta-about-contact": InquiryAction{Intent: "contact", Source: "about_contact"},
		"cta-services-consultation": InquiryAction{
			Intent: "quote", Source: "services_consultation",
			Title: "Schedule a Consultation", ButtonText: "Request Consultation",
		},
		"cta-schedule":       LinkAction{URL: calendlyURL, NewTab: true},
		"cta-call":           TelAction{Phone: salesPhone},
		"cta-email":          MailtoAction{Email: salesEmail},
		"cta-footer-contact": InquiryAction{Intent: "contact", Source: "footer_cta"},
	}
}

// Lookup returns the action for id.
func (r Registry) Lookup(id string) (Action, bool) {
	a, ok := r[id]
	return a, ok && a != nil
}

// IDs returns the registered ids in sorted order.
func (r Registry) IDs() []string {
	ids := make([]string, 0, len(r))
	for id := range r {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Validate reports every entry that could not perform its action.
func (r Registry) Validate() error {
	var errs []error
	for _, id := range r.IDs() {
		if err := validateAction(r[id]); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

func validateAction(a Action) error {
	missing := func(what string) error {
		return fmt.Errorf("%w: %s is required", ErrMalformedAction, what)
	}
	switch v := a.(type) {
	case InquiryAction:
		if !v.Intent.Valid() {
			return fmt.Errorf("%w: unknown intent %q", ErrMalformedAction, v.Intent)
		}
		if strings.TrimSpace(v.Source) == "" {
			return missing("source")
		}
	case ScrollAction:
		if strings.TrimSpace(v.TargetID) == "" {
			return missing("target id")
		}
	case LinkAction:
		if strings.TrimSpace(v.URL) == "" {
			return missing("url")
		}
	case TelAction:
		if strings.TrimSpace(v.Phone) == "" {
			return missing("phone")
		}
	case MailtoAction:
		if strings.TrimSpace(v.Email) == "" {
			return missing("email")
		}
	case nil:
		return missing("action")
	}
	return nil
}
