package cta

import "github.com/corstar/site-intake/internal/inquiry"

// Action is what a call-to-action button does. The set of variants is closed:
// InquiryAction, ScrollAction, LinkAction, TelAction and MailtoAction.
type Action interface {
	kind() Kind
}

// Kind tags an Action variant.
type Kind string

const (
	KindInquiry Kind = "inquiry"
	KindScroll  Kind = "scroll"
	KindLink    Kind = "link"
	KindTel     Kind = "tel"
	KindMailto  Kind = "mailto"
)

// InquiryAction opens the shared inquiry modal.
type InquiryAction struct {
	Intent           inquiry.Intent
	Source           string
	Title            string
	ButtonText       string
	PrefilledService string
}

// ScrollAction smooth-scrolls to an on-page anchor.
type ScrollAction struct {
	TargetID string
}

// LinkAction navigates to a URL, optionally in a new tab.
type LinkAction struct {
	URL    string
	NewTab bool
}

// TelAction starts a phone call.
type TelAction struct {
	Phone string
}

// MailtoAction opens the mail client.
type MailtoAction struct {
	Email string
}

func (InquiryAction) kind() Kind { return KindInquiry }
func (ScrollAction) kind() Kind  { return KindScroll }
func (LinkAction) kind() Kind    { return KindLink }
func (TelAction) kind() Kind     { return KindTel }
func (MailtoAction) kind() Kind  { return KindMailto }

var (
	_ Action = InquiryAction{}
	_ Action = ScrollAction{}
	_ Action = LinkAction{}
	_ Action = TelAction{}
	_ Action = MailtoAction{}
)

// KindOf returns the variant tag of a.
func KindOf(a Action) Kind {
	return a.kind()
}

// ModalConfig parameterizes the inquiry modal when a CTA opens it.
type ModalConfig struct {
	Intent           inquiry.Intent `json:"intent"`
	Source           string         `json:"source"`
	Title            string         `json:"title,omitempty"`
	ButtonText       string         `json:"buttonText,omitempty"`
	PrefilledService string         `json:"prefilledService,omitempty"`
}

// Config returns the modal configuration carried by the action.
func (a InquiryAction) Config() ModalConfig {
	return ModalConfig{
		Intent:           a.Intent,
		Source:           a.Source,
		Title:            a.Title,
		ButtonText:       a.ButtonText,
		PrefilledService: a.PrefilledService,
	}
}
