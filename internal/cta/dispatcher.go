package cta

// Page performs the browser side effects of a CTA.
type Page interface {
	HasAnchor(id string) bool
	ScrollIntoView(id string)
	// Navigate replaces the current location; it also handles tel: and mailto: URLs.
	Navigate(url string)
	// OpenTab opens url in a new tab without an opener reference.
	OpenTab(url string)
}

// OpenInquiryModal receives the modal configuration of an inquiry CTA.
type OpenInquiryModal func(ModalConfig)

// Dispatcher resolves button ids against a Registry.
type Dispatcher struct {
	registry Registry
	page     Page
}

// NewDispatcher creates a dispatcher. A nil page turns every non-inquiry action into a no-op.
func NewDispatcher(registry Registry, page Page) *Dispatcher {
	return &Dispatcher{registry: registry, page: page}
}

// Dispatch performs the action registered under ctaID.
// Unknown ids do nothing. Inquiry actions do nothing when openModal is nil,
// so buttons keep working before the modal is mounted.
func (d *Dispatcher) Dispatch(ctaID string, openModal OpenInquiryModal) {
	action, ok := d.registry.Lookup(ctaID)
	if !ok {
		return
	}

	switch a := action.(type) {
	case InquiryAction:
		if openModal != nil {
			openModal(a.Config())
		}
	case ScrollAction:
		if d.page != nil && d.page.HasAnchor(a.TargetID) {
			d.page.ScrollIntoView(a.TargetID)
		}
	case LinkAction:
		if d.page == nil {
			return
		}
		if a.NewTab {
			d.page.OpenTab(a.URL)
		} else {
			d.page.Navigate(a.URL)
		}
	case TelAction:
		if d.page != nil {
			d.page.Navigate("tel:" + a.Phone)
		}
	case MailtoAction:
		if d.page != nil {
			d.page.Navigate("mailto:" + a.Email)
		}
	}
}
