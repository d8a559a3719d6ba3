package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	appconfig "github.com/corstar/site-intake/internal/config"
	"github.com/corstar/site-intake/internal/inquiry"
	"github.com/corstar/site-intake/internal/ratelimit"
	"github.com/corstar/site-intake/pkg/logging"
)

func baseConfig() *appconfig.Config {
	return &appconfig.Config{
		RateLimitBackend:  "memory",
		RateLimitWindow:   10 * time.Second,
		RateLimitCapacity: 1000,
		PersistTimeout:    time.Second,
	}
}

func TestBuildRedisClientDisabledWithoutAddr(t *testing.T) {
	if client := BuildRedisClient(context.Background(), baseConfig(), logging.New("error"), true); client != nil {
		t.Fatalf("expected nil client without REDIS_ADDR")
	}
}

func TestBuildRedisClientVerifies(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := baseConfig()
	cfg.RedisAddr = mr.Addr()

	client := BuildRedisClient(context.Background(), cfg, logging.New("error"), true)
	if client == nil {
		t.Fatalf("expected client for reachable redis")
	}
	defer client.Close()

	mr.Close()
	if BuildRedisClient(context.Background(), cfg, logging.New("error"), true) != nil {
		t.Fatalf("expected nil client when ping fails")
	}
}

func TestBuildLimitersPerEndpoint(t *testing.T) {
	limiters := BuildLimiters(baseConfig(), nil, logging.New("error"))
	if len(limiters) != len(inquiry.Profiles) {
		t.Fatalf("expected %d limiters, got %d", len(inquiry.Profiles), len(limiters))
	}
	if _, ok := limiters[inquiry.EndpointLead].(*ratelimit.WindowLimiter); !ok {
		t.Fatalf("expected in-memory limiter, got %T", limiters[inquiry.EndpointLead])
	}
	if limiters[inquiry.EndpointLead] == limiters[inquiry.EndpointQuote] {
		t.Fatalf("endpoints must not share a limiter")
	}
}

func TestBuildLimitersRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := baseConfig()
	cfg.RedisAddr = mr.Addr()
	client := BuildRedisClient(context.Background(), cfg, logging.New("error"), false)
	defer client.Close()

	limiters := BuildLimiters(cfg, client, logging.New("error"))
	ok, err := limiters[inquiry.EndpointQuote].Allow(context.Background(), "203.0.113.7")
	if err != nil || !ok {
		t.Fatalf("expected first request allowed, got %v %v", ok, err)
	}
	if !mr.Exists("ratelimit:intake:quote:203.0.113.7") {
		t.Fatalf("expected namespaced redis key")
	}
}

func TestNeedsAWS(t *testing.T) {
	cfg := baseConfig()
	if needsAWS(cfg) {
		t.Fatalf("expected no AWS for bare config")
	}
	cfg.ExportBucket = "exports"
	if !needsAWS(cfg) {
		t.Fatalf("expected AWS when export bucket set")
	}
}

func TestLoadAWSConfigEndpointOverride(t *testing.T) {
	cfg := baseConfig()
	cfg.AWSRegion = "us-east-1"
	cfg.AWSAccessKeyID = "test"
	cfg.AWSSecretAccessKey = "test"
	cfg.AWSEndpointOverride = "http://localhost:4566"

	awsCfg, err := LoadAWSConfig(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	endpoint, err := awsCfg.EndpointResolverWithOptions.ResolveEndpoint("SQS", "us-east-1")
	if err != nil || endpoint.URL != "http://localhost:4566" {
		t.Fatalf("expected override endpoint, got %+v %v", endpoint, err)
	}
	if _, err := awsCfg.EndpointResolverWithOptions.ResolveEndpoint("DynamoDB", "us-east-1"); err == nil {
		t.Fatalf("expected unrelated services to use default resolution")
	}
	creds, err := awsCfg.Credentials.Retrieve(context.Background())
	if err != nil || creds.AccessKeyID != "test" {
		t.Fatalf("expected static credentials, got %+v %v", creds, err)
	}
}

func TestBuildInMemoryRuntime(t *testing.T) {
	cfg := baseConfig()
	cfg.AlertEmailTo = "sales@corstar.com"

	rt, err := Build(context.Background(), cfg, logging.New("error"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer rt.Close()

	req := httptest.NewRequest(http.MethodPost, "/functions/v1/callback", strings.NewReader(`{"full_name":"Ada","phone":"5551234"}`))
	rec := httptest.NewRecorder()
	rt.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	rt.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "corstar_intake_submissions_total") {
		t.Fatalf("expected intake metrics to be exported")
	}
}

func TestBuildServesCTAManifest(t *testing.T) {
	cfg := baseConfig()
	cfg.CalendlyURL = "https://calendly.com/corstar-sales"

	rt, err := Build(context.Background(), cfg, logging.New("error"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer rt.Close()

	rec := httptest.NewRecorder()
	rt.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/functions/v1/cta", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "https://calendly.com/corstar-sales") {
		t.Fatalf("expected configured scheduling link in manifest: %s", rec.Body.String())
	}
}

func TestBuildRequiresConfig(t *testing.T) {
	if _, err := Build(context.Background(), nil, nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
}
