package inquiry

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("inquiry_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// ValidEmail reports whether email has the local@domain.tld shape.
func ValidEmail(email string) bool {
	return validate.Var(email, "inquiry_email") == nil
}

// FieldErrors maps a field to the message displayed under it.
type FieldErrors map[Field]string

var requiredMessages = map[Field]string{
	FieldFullName:    "Full name is required",
	FieldEmail:       "Email is required",
	FieldPhone:       "Phone number is required",
	FieldLocation:    "Location is required",
	FieldTimeline:    "Timeline is required",
	FieldBudgetRange: "Budget range is required",
}

const invalidEmailMessage = "Invalid email address"

// ValidateForm runs the modal's checks before any network call.
// The email shape is checked whenever a value is present, required or not.
func ValidateForm(intent Intent, s *Submission) FieldErrors {
	errs := FieldErrors{}
	for _, f := range RequiredFields(intent) {
		if blank(s.Get(f)) {
			msg, ok := requiredMessages[f]
			if !ok {
				msg = string(f) + " is required"
			}
			errs[f] = msg
		}
	}
	if _, missing := errs[FieldEmail]; !missing && s.Email != "" && !ValidEmail(s.Email) {
		errs[FieldEmail] = invalidEmailMessage
	}
	return errs
}

var missingMessages = map[Intent]string{
	IntentContact:  "Full name and email are required",
	IntentQuote:    "Full name, email, location, timeline, and budget range are required for quotes",
	IntentCallback: "Full name and phone number are required for callbacks",
}

// ValidateIntent checks s against the required set for intent, the same table the modal uses.
// Email shape is enforced when email is part of the intent's form.
func ValidateIntent(intent Intent, s *Submission) error {
	if !intent.Valid() {
		return invalid("Invalid intent type")
	}
	for _, f := range RequiredFields(intent) {
		if blank(s.Get(f)) {
			return invalid(missingMessages[intent])
		}
	}
	if IsVisible(intent, FieldEmail) && s.Email != "" && !ValidEmail(s.Email) {
		return invalid(invalidEmailMessage)
	}
	return nil
}
