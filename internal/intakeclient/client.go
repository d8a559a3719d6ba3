// Package intakeclient posts inquiry form payloads to the intake endpoints.
package intakeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/corstar/site-intake/internal/inquiry"
)

// DefaultFailureMessage is reported when a failed response carries no readable error.
const DefaultFailureMessage = "Failed to submit inquiry"

// Result is the success envelope returned by the intake.
type Result struct {
	OK bool `json:"ok"`
}

// ResponseError is a non-2xx response from the intake.
type ResponseError struct {
	Status  int
	Message string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("intake returned %d: %s", e.Status, e.Message)
}

// TransportError wraps a failure to reach the intake at all.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "intake unreachable: " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// Client submits payloads. It never retries.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// New builds a client with a bounded HTTP timeout.
func New(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// URL returns the address of an intake endpoint.
func (c *Client) URL(endpoint inquiry.Endpoint) string {
	return strings.TrimRight(c.BaseURL, "/") + "/functions/v1/" + string(endpoint)
}

// Submit posts payload as JSON to endpoint.
func (c *Client) Submit(ctx context.Context, endpoint inquiry.Endpoint, payload any) (*Result, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("intakeclient: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL(endpoint), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("intakeclient: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
		req.Header.Set("Apikey", c.APIKey)
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope struct {
			Error string `json:"error"`
		}
		msg := DefaultFailureMessage
		if json.Unmarshal(raw, &envelope) == nil && envelope.Error != "" {
			msg = envelope.Error
		}
		return nil, &ResponseError{Status: resp.StatusCode, Message: msg}
	}

	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("intakeclient: decode response: %w", err)
	}
	return &result, nil
}

// ErrorMessage returns the text a form shows for err.
func ErrorMessage(err error, fallback string) string {
	var respErr *ResponseError
	if errors.As(err, &respErr) {
		return respErr.Message
	}
	return fallback
}
