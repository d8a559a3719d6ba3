// Package modal drives the inquiry form dialog: open, edit, submit, close.
package modal

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/corstar/site-intake/internal/cta"
	"github.com/corstar/site-intake/internal/inquiry"
	"github.com/corstar/site-intake/internal/intakeclient"
)

// State of the dialog.
type State int

const (
	Closed State = iota
	Editing
	Submitting
)

func (s State) String() string {
	switch s {
	case Editing:
		return "editing"
	case Submitting:
		return "submitting"
	default:
		return "closed"
	}
}

const (
	// ClearDelay is how long the config outlives a close, so the closing animation keeps its text.
	ClearDelay = 300 * time.Millisecond

	SuccessMessage = "Thanks! We'll be in touch shortly."
	GenericError   = "An error occurred. Please try again."
	SubmittingText = "Submitting..."
)

var (
	ErrNotEditing  = errors.New("modal: not accepting edits")
	ErrInvalidForm = errors.New("modal: form has errors")
	ErrHiddenField = errors.New("modal: field not shown for this intent")
	// ErrStale means the dialog was closed or reopened while the request was in flight.
	ErrStale = errors.New("modal: response discarded")
)

// Submitter sends a prepared payload to an intake endpoint.
type Submitter interface {
	Submit(ctx context.Context, endpoint inquiry.Endpoint, payload any) (*intakeclient.Result, error)
}

// Notifier shows transient toasts.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Scheduler runs fn after d.
type Scheduler func(d time.Duration, fn func())

func afterFunc(d time.Duration, fn func()) { time.AfterFunc(d, fn) }

// Modal is safe for concurrent use; Submit blocks on the network call without holding the lock.
type Modal struct {
	mu        sync.Mutex
	state     State
	cfg       *cta.ModalConfig
	form      inquiry.Submission
	errs      inquiry.FieldErrors
	gen       uint64
	submitter Submitter
	notifier  Notifier
	schedule  Scheduler
}

// Option configures a Modal.
type Option func(*Modal)

// WithScheduler replaces time.AfterFunc for the delayed config clear.
func WithScheduler(s Scheduler) Option {
	return func(m *Modal) { m.schedule = s }
}

func New(submitter Submitter, notifier Notifier, opts ...Option) *Modal {
	m := &Modal{
		submitter: submitter,
		notifier:  notifier,
		schedule:  afterFunc,
		errs:      inquiry.FieldErrors{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Open shows the dialog for cfg with a fresh form. Any in-flight response is discarded.
func (m *Modal) Open(cfg cta.ModalConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gen++
	m.state = Editing
	m.cfg = &cfg
	m.form = inquiry.Submission{Service: cfg.PrefilledService}
	m.errs = inquiry.FieldErrors{}
}

// Close hides the dialog, drops the form and its errors, and clears the config after ClearDelay.
func (m *Modal) Close() {
	m.mu.Lock()
	gen := m.closeLocked()
	m.mu.Unlock()
	m.scheduleClear(gen)
}

func (m *Modal) closeLocked() uint64 {
	m.gen++
	m.state = Closed
	m.form = inquiry.Submission{}
	m.errs = inquiry.FieldErrors{}
	return m.gen
}

// scheduleClear drops the config unless the dialog was reopened in the meantime.
func (m *Modal) scheduleClear(gen uint64) {
	m.schedule(ClearDelay, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.gen == gen && m.state == Closed {
			m.cfg = nil
		}
	})
}

// SetField updates a value and clears that field's error.
// Fields the intent does not render are rejected.
func (m *Modal) SetField(f inquiry.Field, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Editing || m.cfg == nil {
		return ErrNotEditing
	}
	if !inquiry.IsVisible(m.cfg.Intent, f) {
		return ErrHiddenField
	}
	m.form.Set(f, value)
	delete(m.errs, f)
	return nil
}

// Submit validates, then posts the form to the inquiry endpoint.
// Validation failures make no network call.
func (m *Modal) Submit(ctx context.Context) error {
	m.mu.Lock()
	if m.state != Editing || m.cfg == nil {
		m.mu.Unlock()
		return ErrNotEditing
	}
	intent := m.cfg.Intent
	if errs := inquiry.ValidateForm(intent, &m.form); len(errs) > 0 {
		m.errs = errs
		m.mu.Unlock()
		return ErrInvalidForm
	}
	m.state = Submitting
	gen := m.gen
	payload := m.payloadLocked()
	m.mu.Unlock()

	_, err := m.submitter.Submit(ctx, inquiry.EndpointInquiry, payload)

	m.mu.Lock()
	if m.gen != gen || m.state != Submitting {
		m.mu.Unlock()
		return ErrStale
	}
	if err != nil {
		m.state = Editing
		m.mu.Unlock()
		m.notifyError(intakeclient.ErrorMessage(err, GenericError))
		return err
	}
	closedGen := m.closeLocked()
	m.mu.Unlock()
	m.scheduleClear(closedGen)

	if m.notifier != nil {
		m.notifier.Success(SuccessMessage)
	}
	return nil
}

func (m *Modal) notifyError(msg string) {
	if m.notifier != nil {
		m.notifier.Error(msg)
	}
}

// payloadLocked keeps only the fields the intent shows.
func (m *Modal) payloadLocked() inquiry.Submission {
	var out inquiry.Submission
	for _, f := range inquiry.VisibleFields(m.cfg.Intent) {
		out.Set(f, m.form.Get(f))
	}
	out.Intent = string(m.cfg.Intent)
	out.Source = m.cfg.Source
	return out
}

func (m *Modal) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Config returns the active config; it survives a close until the clear fires.
func (m *Modal) Config() (cta.ModalConfig, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cfg == nil {
		return cta.ModalConfig{}, false
	}
	return *m.cfg, true
}

// Form returns a copy of the current values.
func (m *Modal) Form() inquiry.Submission {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.form
}

// Errors returns a copy of the field errors.
func (m *Modal) Errors() inquiry.FieldErrors {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(inquiry.FieldErrors, len(m.errs))
	for k, v := range m.errs {
		out[k] = v
	}
	return out
}

// VisibleFields lists the inputs to render, in order.
func (m *Modal) VisibleFields() []inquiry.Field {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cfg == nil {
		return nil
	}
	return inquiry.VisibleFields(m.cfg.Intent)
}

// Required reports whether f must be filled for the open intent, for marking inputs.
func (m *Modal) Required(f inquiry.Field) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cfg == nil {
		return false
	}
	return inquiry.IsRequired(m.cfg.Intent, f)
}

func (m *Modal) Title() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cfg == nil {
		return ""
	}
	if m.cfg.Title != "" {
		return m.cfg.Title
	}
	return inquiry.DefaultTitle(m.cfg.Intent)
}

func (m *Modal) ButtonText() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Submitting {
		return SubmittingText
	}
	if m.cfg == nil {
		return ""
	}
	if m.cfg.ButtonText != "" {
		return m.cfg.ButtonText
	}
	return inquiry.DefaultButtonText(m.cfg.Intent)
}
