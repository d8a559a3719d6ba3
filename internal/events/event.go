package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NameFormSubmitted is recorded after a lead row is accepted.
const NameFormSubmitted = "form_submitted"

// Event is an analytics record. Payload is stored verbatim as JSON.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// FormSubmitted is the payload of a form_submitted event.
type FormSubmitted struct {
	Type   string `json:"type"`
	Source string `json:"source"`
	Email  string `json:"email"`
}

// New builds an event with a fresh id.
func New(name string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("events: marshal payload: %w", err)
	}
	return Event{
		ID:        uuid.New(),
		Name:      name,
		Payload:   data,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Sink records events somewhere durable.
type Sink interface {
	Record(ctx context.Context, evt Event) error
}

// Emitter fans an event out to every configured sink.
// A failing sink does not stop the others.
type Emitter struct {
	sinks []Sink
}

// NewEmitter drops nil sinks.
func NewEmitter(sinks ...Sink) *Emitter {
	e := &Emitter{}
	for _, s := range sinks {
		if s != nil {
			e.sinks = append(e.sinks, s)
		}
	}
	return e
}

// Enabled reports whether any sink is configured.
func (e *Emitter) Enabled() bool {
	return e != nil && len(e.sinks) > 0
}

// Emit records evt in every sink and returns the joined failures.
func (e *Emitter) Emit(ctx context.Context, evt Event) error {
	if e == nil {
		return nil
	}
	var errs []error
	for _, s := range e.sinks {
		if err := s.Record(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
