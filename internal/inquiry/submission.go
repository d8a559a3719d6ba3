package inquiry

import "strings"

// Submission is the flat JSON body posted by the inquiry forms.
// Empty strings and absent keys are treated the same.
type Submission struct {
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Service     string `json:"service"`
	Timeline    string `json:"timeline"`
	BudgetRange string `json:"budget_range"`
	Details     string `json:"details"`
	Source      string `json:"source"`
	Intent      string `json:"intent"`

	// Legacy form keys: the contact forms post message, the callback form posts best_time and notes.
	Message  string `json:"message,omitempty"`
	BestTime string `json:"best_time,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// Get returns the value of a form field.
func (s *Submission) Get(f Field) string {
	switch f {
	case FieldFullName:
		return s.FullName
	case FieldEmail:
		return s.Email
	case FieldPhone:
		return s.Phone
	case FieldCompany:
		return s.Company
	case FieldLocation:
		return s.Location
	case FieldService:
		return s.Service
	case FieldTimeline:
		return s.Timeline
	case FieldBudgetRange:
		return s.BudgetRange
	case FieldDetails:
		return s.Details
	}
	return ""
}

// Set assigns a form field. Unknown fields are ignored.
func (s *Submission) Set(f Field, value string) {
	switch f {
	case FieldFullName:
		s.FullName = value
	case FieldEmail:
		s.Email = value
	case FieldPhone:
		s.Phone = value
	case FieldCompany:
		s.Company = value
	case FieldLocation:
		s.Location = value
	case FieldService:
		s.Service = value
	case FieldTimeline:
		s.Timeline = value
	case FieldBudgetRange:
		s.BudgetRange = value
	case FieldDetails:
		s.Details = value
	}
}

// Normalize folds the legacy keys into details.
func (s *Submission) Normalize() {
	var parts []string
	if d := strings.TrimSpace(s.Details); d != "" {
		parts = append(parts, d)
	}
	for _, extra := range []string{s.Message, s.Notes} {
		if e := strings.TrimSpace(extra); e != "" {
			parts = append(parts, e)
		}
	}
	if bt := strings.TrimSpace(s.BestTime); bt != "" {
		parts = append(parts, "Best time to call: "+bt)
	}
	s.Details = strings.Join(parts, "\n\n")
	s.Message, s.Notes, s.BestTime = "", "", ""
}

func blank(v string) bool {
	return strings.TrimSpace(v) == ""
}
