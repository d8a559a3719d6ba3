package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corstar/site-intake/pkg/logging"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestRequireMethod(t *testing.T) {
	h := RequireMethod(http.MethodPost)(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/functions/v1/inquiry", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, MethodNotAllowedMessage, decodeError(t, rec))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/functions/v1/inquiry", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

type stubLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (s *stubLimiter) Allow(_ context.Context, key string) (bool, error) {
	s.keys = append(s.keys, key)
	return s.allowed, s.err
}

func TestRateLimitRejectsWithMessage(t *testing.T) {
	limiter := &stubLimiter{allowed: false}
	h := RateLimit(limiter, "Too many requests. Please try again in a few seconds.", logging.New("error"))(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/functions/v1/quote", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Too many requests. Please try again in a few seconds.", decodeError(t, rec))
	assert.Equal(t, []string{"203.0.113.7"}, limiter.keys)
}

func TestRateLimitFailsOpenOnLimiterError(t *testing.T) {
	var buf bytes.Buffer
	limiter := &stubLimiter{allowed: true, err: errors.New("redis down")}
	h := RateLimit(limiter, "limited", logging.NewWithWriter("warn", &buf))(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/functions/v1/quote", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"unknown"}, limiter.keys)
	assert.Contains(t, buf.String(), "rate limiter unavailable")
}

func TestRecoverWritesEnvelope(t *testing.T) {
	var buf bytes.Buffer
	h := Recover(logging.NewWithWriter("error", &buf))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/functions/v1/lead", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, UnexpectedErrorMessage, decodeError(t, rec))
	assert.Contains(t, buf.String(), "panic serving request")
}

func TestRequestLoggerRecordsStatusAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	h := RequestLogger(logging.NewWithWriter("info", &buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
	line := strings.TrimSpace(buf.String())
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "request completed", entry["msg"])
	assert.Equal(t, float64(http.StatusTeapot), entry["status"])
	assert.Equal(t, "req-123", entry["request_id"])
}
