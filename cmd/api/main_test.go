package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/corstar/site-intake/internal/app/bootstrap"
	appconfig "github.com/corstar/site-intake/internal/config"
	"github.com/corstar/site-intake/pkg/logging"
)

func TestNewServerDefaults(t *testing.T) {
	srv := newServer("", http.NotFoundHandler())
	if srv.Addr != ":8080" {
		t.Fatalf("expected default port, got %q", srv.Addr)
	}
	if srv.ReadTimeout != 15*time.Second || srv.WriteTimeout != 15*time.Second || srv.IdleTimeout != 60*time.Second {
		t.Fatalf("unexpected timeouts %v %v %v", srv.ReadTimeout, srv.WriteTimeout, srv.IdleTimeout)
	}
}

func TestServerServesRuntimeHandler(t *testing.T) {
	cfg := &appconfig.Config{
		Port:              "9090",
		RateLimitBackend:  "memory",
		RateLimitWindow:   10 * time.Second,
		RateLimitCapacity: 1000,
		PersistTimeout:    time.Second,
	}
	rt, err := bootstrap.Build(context.Background(), cfg, logging.New("error"))
	if err != nil {
		t.Fatalf("build runtime: %v", err)
	}
	defer rt.Close()

	srv := newServer(cfg.Port, rt.Handler)
	if srv.Addr != ":9090" {
		t.Fatalf("expected configured port, got %q", srv.Addr)
	}

	ts := httptest.NewServer(srv.Handler)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from /health, got %d", resp.StatusCode)
	}
}
