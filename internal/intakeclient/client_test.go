package intakeclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corstar/site-intake/internal/inquiry"
)

func TestSubmit_Success(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/", "anon")
	res, err := c.Submit(context.Background(), inquiry.EndpointCallback, map[string]string{"full_name": "Ada", "phone": "5551234"})
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, "/functions/v1/callback", gotPath)
	assert.Equal(t, "Bearer anon", gotAuth)
	assert.Equal(t, "Ada", gotBody["full_name"])
}

func TestSubmit_ErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Full name and phone number are required for callbacks"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "").Submit(context.Background(), inquiry.EndpointInquiry, map[string]string{})
	var respErr *ResponseError
	require.True(t, errors.As(err, &respErr))
	assert.Equal(t, http.StatusBadRequest, respErr.Status)
	assert.Equal(t, "Full name and phone number are required for callbacks", respErr.Message)
	assert.Equal(t, respErr.Message, ErrorMessage(err, "fallback"))
}

func TestSubmit_UnreadableErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "").Submit(context.Background(), inquiry.EndpointInquiry, map[string]string{})
	var respErr *ResponseError
	require.True(t, errors.As(err, &respErr))
	assert.Equal(t, DefaultFailureMessage, respErr.Message)
}

func TestSubmit_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url, "").Submit(context.Background(), inquiry.EndpointInquiry, map[string]string{})
	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, "generic", ErrorMessage(err, "generic"))
}

func TestSubmit_DoesNotRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to save inquiry"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "").Submit(context.Background(), inquiry.EndpointInquiry, map[string]string{})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
