package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/corstar/site-intake/internal/inquiry"
	"github.com/corstar/site-intake/internal/leads"
)

// Alerter tells the sales inbox about an accepted submission.
type Alerter struct {
	sender EmailSender
	to     string
}

// NewAlerter returns nil when there is no sender or recipient, which disables alerts.
func NewAlerter(sender EmailSender, to string) *Alerter {
	if sender == nil || strings.TrimSpace(to) == "" {
		return nil
	}
	return &Alerter{sender: sender, to: to}
}

// Alert sends one message describing rec. A nil Alerter does nothing.
func (a *Alerter) Alert(ctx context.Context, endpoint inquiry.Endpoint, rec *leads.Record) error {
	if a == nil || rec == nil {
		return nil
	}
	return a.sender.Send(ctx, EmailMessage{
		To:      a.to,
		Subject: alertSubject(rec),
		Body:    alertBody(endpoint, rec),
	})
}

func alertSubject(rec *leads.Record) string {
	return fmt.Sprintf("New %s inquiry from %s", rec.Intent, rec.FullName)
}

func alertBody(endpoint inquiry.Endpoint, rec *leads.Record) string {
	var b strings.Builder
	line := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%s: %s\n", label, value)
		}
	}
	line("Name", rec.FullName)
	line("Email", rec.Email)
	line("Phone", rec.Phone)
	line("Company", rec.Company)
	line("Location", rec.Location)
	line("Service", rec.Service)
	line("Timeline", rec.Timeline)
	line("Budget", rec.BudgetRange)
	line("Source", rec.Source)
	line("Endpoint", string(endpoint))
	line("Received", rec.CreatedAt.UTC().Format("2006-01-02 15:04 MST"))
	if rec.Details != "" {
		b.WriteString("\n")
		b.WriteString(rec.Details)
		b.WriteString("\n")
	}
	return b.String()
}
