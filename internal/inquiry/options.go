package inquiry

// Services offered in the service dropdown.
var Services = []string{
	"Managed IT Services",
	"Network Security",
	"Cloud Solutions",
	"Structured Cabling",
	"VoIP Phone Systems",
	"Virtualization",
	"Video Conferencing",
	"Hosted Email",
	"IT Consulting",
	"Staff Augmentation",
	"Other",
}

// Timelines offered for quote requests.
var Timelines = []string{"ASAP", "2-4 weeks", "1-3 months", "Planning"}

// BudgetRanges offered for quote requests.
var BudgetRanges = []string{
	"Under $5,000",
	"$5,000 - $15,000",
	"$15,000 - $50,000",
	"$50,000 - $100,000",
	"Over $100,000",
	"Not sure yet",
}

// DefaultTitle is the modal heading when the CTA does not supply one.
func DefaultTitle(intent Intent) string {
	switch intent {
	case IntentQuote:
		return "Request a Quote"
	case IntentCallback:
		return "Request a Callback"
	default:
		return "Share Your Project — We'll Be in Touch"
	}
}

// DefaultButtonText is the submit label when the CTA does not supply one.
func DefaultButtonText(intent Intent) string {
	switch intent {
	case IntentQuote:
		return "Request Quote"
	case IntentCallback:
		return "Request Callback"
	default:
		return "Send"
	}
}
