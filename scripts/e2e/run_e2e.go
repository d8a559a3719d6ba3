// Package main runs end-to-end checks against a deployed intake API.
//
// Scenarios cover:
//   - Each intake endpoint accepting a valid submission
//   - Field validation messages surfaced to the caller
//   - CORS preflight and method rejection
//   - Admin listing of stored submissions
//
// Usage:
//
//	API_BASE_URL=... ADMIN_JWT_SECRET=... go run scripts/e2e/run_e2e.go [scenario-name]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/corstar/site-intake/internal/inquiry"
	"github.com/corstar/site-intake/internal/intakeclient"
)

var (
	apiBase string
	token   string
	client  *intakeclient.Client
	runID   = uuid.NewString()[:8]
)

type scenario struct {
	Name string
	Fn   func(t *T)
}

// T is a lightweight test context for a single scenario.
type T struct {
	passed int
	failed int
	name   string
}

func (t *T) check(name string, ok bool) {
	if ok {
		fmt.Printf("    PASS: %s\n", name)
		t.passed++
	} else {
		fmt.Printf("    FAIL: %s\n", name)
		t.failed++
	}
}

func (t *T) fatalf(format string, args ...interface{}) {
	fmt.Printf("    FATAL: "+format+"\n", args...)
	t.failed++
}

func generateJWT(secret string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   "e2e-runner",
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(10 * time.Minute)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func submit(endpoint inquiry.Endpoint, payload map[string]any) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := client.Submit(ctx, endpoint, payload)
	return err
}

func rawRequest(method, path string) (*http.Response, error) {
	req, err := http.NewRequest(method, apiBase+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Origin", "https://example.com")
	return http.DefaultClient.Do(req)
}

func listAdmin(intent string) ([]map[string]any, error) {
	req, err := http.NewRequest(http.MethodGet, apiBase+"/functions/v1/admin-data?limit=100&intent="+intent, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("admin-data returned %d", resp.StatusCode)
	}
	var out struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func scenarioAccepts(t *T) {
	cases := []struct {
		endpoint inquiry.Endpoint
		payload  map[string]any
	}{
		{inquiry.EndpointInquiry, map[string]any{"full_name": "E2E Inquiry " + runID, "email": "e2e@example.com", "intent": "contact", "source": "e2e"}},
		{inquiry.EndpointLead, map[string]any{"full_name": "E2E Lead " + runID, "email": "e2e@example.com", "message": "hello"}},
		{inquiry.EndpointQuote, map[string]any{"full_name": "E2E Quote " + runID, "email": "e2e@example.com", "location": "Austin, TX", "timeline": "1-3 months", "budget_range": "$10k-$25k"}},
		{inquiry.EndpointCallback, map[string]any{"full_name": "E2E Callback " + runID, "phone": "555-0100", "best_time": "morning"}},
	}
	for _, c := range cases {
		err := submit(c.endpoint, c.payload)
		if err != nil {
			fmt.Printf("    %s: %v\n", c.endpoint, err)
		}
		t.check(fmt.Sprintf("%s accepted", c.endpoint), err == nil)
	}
}

func scenarioValidation(t *T) {
	err := submit(inquiry.EndpointCallback, map[string]any{"full_name": "No Phone"})
	var respErr *intakeclient.ResponseError
	if !errors.As(err, &respErr) {
		t.fatalf("expected response error, got %v", err)
		return
	}
	t.check("callback without phone is 400", respErr.Status == http.StatusBadRequest)
	t.check("callback message names the phone", strings.Contains(respErr.Message, "phone"))

	err = submit(inquiry.EndpointLead, map[string]any{"full_name": "  ", "email": "e2e@example.com"})
	t.check("blank lead name rejected", errors.As(err, &respErr) && respErr.Status == http.StatusBadRequest)
}

func scenarioEnvelope(t *T) {
	resp, err := rawRequest(http.MethodOptions, "/functions/v1/quote")
	if err != nil {
		t.fatalf("preflight: %v", err)
		return
	}
	resp.Body.Close()
	t.check("preflight is 200", resp.StatusCode == http.StatusOK)
	t.check("preflight allows any origin", resp.Header.Get("Access-Control-Allow-Origin") == "*")

	resp, err = rawRequest(http.MethodGet, "/functions/v1/quote")
	if err != nil {
		t.fatalf("get: %v", err)
		return
	}
	resp.Body.Close()
	t.check("GET is 405", resp.StatusCode == http.StatusMethodNotAllowed)
}

func scenarioAdminList(t *T) {
	rows, err := listAdmin("callback")
	if err != nil {
		t.fatalf("list: %v", err)
		return
	}
	found := false
	for _, row := range rows {
		if name, _ := row["full_name"].(string); name == "E2E Callback "+runID {
			found = true
		}
	}
	t.check("callback submission listed", found)
}

func main() {
	apiBase = strings.TrimRight(os.Getenv("API_BASE_URL"), "/")
	secret := os.Getenv("ADMIN_JWT_SECRET")
	if apiBase == "" || secret == "" {
		fmt.Fprintln(os.Stderr, "ERROR: API_BASE_URL and ADMIN_JWT_SECRET required")
		os.Exit(1)
	}
	var err error
	if token, err = generateJWT(secret); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: sign token: %v\n", err)
		os.Exit(1)
	}
	client = intakeclient.New(apiBase, os.Getenv("API_KEY"))

	scenarios := []scenario{
		{"accepts", scenarioAccepts},
		{"validation", scenarioValidation},
		{"envelope", scenarioEnvelope},
		{"admin-list", scenarioAdminList},
	}

	filter := ""
	if len(os.Args) > 1 {
		filter = os.Args[1]
	}

	totalPassed, totalFailed := 0, 0
	results := make([]string, 0, len(scenarios))
	for _, s := range scenarios {
		if filter != "" && s.Name != filter {
			continue
		}
		fmt.Printf("\n========================================\n")
		fmt.Printf("SCENARIO: %s\n", s.Name)
		fmt.Printf("========================================\n")

		t := &T{name: s.Name}
		s.Fn(t)

		totalPassed += t.passed
		totalFailed += t.failed
		status := "PASS"
		if t.failed > 0 {
			status = "FAIL"
		}
		results = append(results, fmt.Sprintf("  %s %s (%d passed, %d failed)", status, s.Name, t.passed, t.failed))
	}

	fmt.Printf("\n========================================\n")
	fmt.Println("SUMMARY")
	fmt.Printf("========================================\n")
	for _, r := range results {
		fmt.Println(r)
	}
	fmt.Printf("\nTotal: %d passed, %d failed\n", totalPassed, totalFailed)
	if totalFailed > 0 {
		os.Exit(1)
	}
}
