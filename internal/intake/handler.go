// Package intake serves the public form endpoints that accept inquiries and leads.
package intake

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/corstar/site-intake/internal/events"
	"github.com/corstar/site-intake/internal/http/middleware"
	"github.com/corstar/site-intake/internal/inquiry"
	"github.com/corstar/site-intake/internal/leads"
	"github.com/corstar/site-intake/internal/observability/metrics"
	"github.com/corstar/site-intake/internal/ratelimit"
	"github.com/corstar/site-intake/pkg/logging"
)

// DefaultPersistTimeout bounds the primary insert when none is configured.
const DefaultPersistTimeout = 5 * time.Second

const maxBodyBytes = 64 << 10

var tracer = otel.Tracer("corstar.internal.intake")

// Alerter is notified about every accepted submission.
type Alerter interface {
	Alert(ctx context.Context, endpoint inquiry.Endpoint, rec *leads.Record) error
}

// Deps are shared by all intake endpoints. Events, Alerter and Metrics are optional.
type Deps struct {
	Repo           leads.Repository
	Events         *events.Emitter
	Alerter        Alerter
	Metrics        *metrics.IntakeMetrics
	Logger         *logging.Logger
	PersistTimeout time.Duration
}

// Handler accepts POSTed submissions for one endpoint profile.
type Handler struct {
	profile inquiry.Profile
	deps    Deps
	logger  *logging.Logger
}

func NewHandler(profile inquiry.Profile, deps Deps) *Handler {
	if deps.Repo == nil {
		panic("intake: repository required")
	}
	if deps.Logger == nil {
		deps.Logger = logging.Default()
	}
	if deps.PersistTimeout <= 0 {
		deps.PersistTimeout = DefaultPersistTimeout
	}
	return &Handler{
		profile: profile,
		deps:    deps,
		logger:  deps.Logger.With("endpoint", string(profile.Endpoint)),
	}
}

func (h *Handler) endpoint() string { return string(h.profile.Endpoint) }

// ServeHTTP expects a POST that already passed the rate limit.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var sub inquiry.Submission
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&sub); err != nil {
		h.logger.Warn("intake: malformed body", "error", err)
		h.deps.Metrics.ObserveSubmission(h.endpoint(), metrics.OutcomeMalformed)
		middleware.WriteError(w, http.StatusInternalServerError, middleware.UnexpectedErrorMessage)
		return
	}

	if err := h.profile.Prepare(&sub); err != nil {
		var verr *inquiry.ValidationError
		if errors.As(err, &verr) {
			h.deps.Metrics.ObserveSubmission(h.endpoint(), metrics.OutcomeInvalid)
			middleware.WriteError(w, http.StatusBadRequest, verr.Message)
			return
		}
		h.logger.Error("intake: prepare failed", "error", err)
		middleware.WriteError(w, http.StatusInternalServerError, middleware.UnexpectedErrorMessage)
		return
	}

	rec, err := h.persist(r.Context(), &sub)
	if err != nil {
		h.logger.Error("intake: insert failed", "error", err, "table", h.profile.Table, "intent", sub.Intent)
		h.deps.Metrics.ObserveSubmission(h.endpoint(), metrics.OutcomePersistFailed)
		middleware.WriteError(w, http.StatusInternalServerError, h.profile.SaveFailedMessage)
		return
	}

	h.afterInsert(r.Context(), rec)

	h.logger.Info("intake: submission accepted", "id", rec.ID, "intent", rec.Intent, "source", rec.Source)
	h.deps.Metrics.ObserveSubmission(h.endpoint(), metrics.OutcomeAccepted)
	middleware.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) persist(ctx context.Context, sub *inquiry.Submission) (*leads.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, h.deps.PersistTimeout)
	defer cancel()
	ctx, span := tracer.Start(ctx, "intake.persist")
	defer span.End()
	span.SetAttributes(
		attribute.String("intake.endpoint", h.endpoint()),
		attribute.String("intake.table", h.profile.Table),
	)

	start := time.Now()
	rec, err := h.deps.Repo.Insert(ctx, h.profile.Table, sub)
	h.deps.Metrics.ObservePersistLatency(h.endpoint(), time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return nil, err
	}
	return rec, nil
}

// afterInsert runs the best-effort writes. Their failures never change the response.
func (h *Handler) afterInsert(ctx context.Context, rec *leads.Record) {
	if h.profile.EmitEvent && h.deps.Events.Enabled() {
		if err := h.emitFormSubmitted(ctx, rec); err != nil {
			h.logger.Warn("intake: event write failed", "error", err, "id", rec.ID)
			h.deps.Metrics.ObserveSideEffectFailure(h.endpoint(), "event")
		}
	}
	if h.deps.Alerter != nil {
		alertCtx, cancel := context.WithTimeout(ctx, h.deps.PersistTimeout)
		defer cancel()
		if err := h.deps.Alerter.Alert(alertCtx, h.profile.Endpoint, rec); err != nil {
			h.logger.Warn("intake: alert failed", "error", err, "id", rec.ID)
			h.deps.Metrics.ObserveSideEffectFailure(h.endpoint(), "alert")
		}
	}
}

func (h *Handler) emitFormSubmitted(ctx context.Context, rec *leads.Record) error {
	evt, err := events.New(events.NameFormSubmitted, events.FormSubmitted{
		Type:   h.endpoint(),
		Source: rec.Source,
		Email:  rec.Email,
	})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, h.deps.PersistTimeout)
	defer cancel()
	return h.deps.Events.Emit(ctx, evt)
}

// Endpoint wraps the handler with the full envelope: CORS and preflight,
// panic recovery, method guard, then the per-client rate limit.
func Endpoint(profile inquiry.Profile, limiter ratelimit.Limiter, deps Deps) http.Handler {
	h := NewHandler(profile, deps)
	var next http.Handler = h
	if limiter != nil {
		next = middleware.RateLimit(limiter, profile.RateLimitedMessage, h.logger)(next)
	}
	next = middleware.RequireMethod(http.MethodPost)(next)
	next = observeRejections(h.endpoint(), deps.Metrics)(next)
	next = middleware.Recover(h.logger)(next)
	return middleware.IntakeCORS(next)
}

type statusCapture struct {
	http.ResponseWriter
	status int
}

func (s *statusCapture) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// observeRejections counts requests turned away before reaching the handler.
func observeRejections(endpoint string, m *metrics.IntakeMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sc := &statusCapture{ResponseWriter: w}
			next.ServeHTTP(sc, r)
			switch sc.status {
			case http.StatusMethodNotAllowed:
				m.ObserveSubmission(endpoint, metrics.OutcomeMethodNotAllowed)
			case http.StatusTooManyRequests:
				m.ObserveSubmission(endpoint, metrics.OutcomeRateLimited)
			}
		})
	}
}
