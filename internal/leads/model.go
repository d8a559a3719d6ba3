package leads

import (
	"time"

	"github.com/corstar/site-intake/internal/inquiry"
)

// Record is a persisted submission. Rows are append-only: the intake never
// updates or deletes them, and identical submissions produce separate rows.
type Record struct {
	ID          string    `json:"id"`
	FullName    string    `json:"full_name"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Company     string    `json:"company,omitempty"`
	Location    string    `json:"location,omitempty"`
	Service     string    `json:"service,omitempty"`
	Timeline    string    `json:"timeline,omitempty"`
	BudgetRange string    `json:"budget_range,omitempty"`
	Details     string    `json:"details,omitempty"`
	Source      string    `json:"source"`
	Intent      string    `json:"intent"`
	CreatedAt   time.Time `json:"created_at"`
}

func recordFrom(id string, sub *inquiry.Submission, createdAt time.Time) *Record {
	return &Record{
		ID:          id,
		FullName:    sub.FullName,
		Email:       sub.Email,
		Phone:       sub.Phone,
		Company:     sub.Company,
		Location:    sub.Location,
		Service:     sub.Service,
		Timeline:    sub.Timeline,
		BudgetRange: sub.BudgetRange,
		Details:     sub.Details,
		Source:      sub.Source,
		Intent:      sub.Intent,
		CreatedAt:   createdAt,
	}
}

// ListFilter selects a page of records.
type ListFilter struct {
	Table  string
	Intent inquiry.Intent
	Limit  int
	Offset int
}

func (f ListFilter) table() string {
	if f.Table == "" {
		return inquiry.TableInquiries
	}
	return f.Table
}

func knownTable(table string) bool {
	return table == inquiry.TableInquiries || table == inquiry.TableLeads
}
