package application

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/packer/internal/config"
	"github.com/eugenenazirov/packer/internal/metrics"
	"github.com/eugenenazirov/packer/internal/parser"
)

func TestNewInitializesDependencies(t *testing.T) {
	cfg := baseTestConfig(":8085")
	cfg.Limits.MaxItems = 4
	logger := zaptest.NewLogger(t)

	app, err := New(cfg, logger)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	limits, err := app.storage.GetLimits()
	if err != nil {
		t.Fatalf("GetLimits returned error: %v", err)
	}
	if limits.MaxItems != 4 {
		t.Fatalf("expected max items 4, got %d", limits.MaxItems)
	}
	if app.server == nil || app.router == nil || app.handler == nil || app.packer == nil {
		t.Fatalf("expected server, router, handler, and packer to be initialized")
	}
	if app.registry == nil {
		t.Fatalf("expected metrics registry when metrics are enabled")
	}
	if app.Server() != app.server {
		t.Fatalf("Server accessor did not return underlying instance")
	}
}

func TestNewServesPackAndMetrics(t *testing.T) {
	app, err := New(baseTestConfig(":0"), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	handler := app.Server().Handler

	body := []byte(`{"input":"81 : (1,53.38,€45) (2,88.62,€98) (3,78.48,€3) (4,72.30,€76) (5,30.18,€9) (6,46.34,€48)"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/pack", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 from metrics, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "packer_optimizer_packages_total 1") {
		t.Fatalf("expected solved package to be counted, got:\n%s", rec.Body.String())
	}
}

func TestNewWithoutMetrics(t *testing.T) {
	cfg := baseTestConfig(":0")
	cfg.EnableMetrics = false

	app, err := New(cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if app.registry != nil {
		t.Fatalf("expected no registry when metrics are disabled")
	}

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	app.Server().Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for metrics, got %d", rec.Code)
	}
}

func TestNewServerAppliesConfig(t *testing.T) {
	cfg := baseTestConfig("9090")
	handler := http.NewServeMux()

	server := NewServer(cfg, handler)
	if server.Addr != ":9090" {
		t.Fatalf("expected address :9090, got %s", server.Addr)
	}
	if server.Handler != handler {
		t.Fatalf("expected handler to be applied")
	}
	if server.ReadHeaderTimeout != cfg.ReadHeaderTimeout ||
		server.WriteTimeout != cfg.WriteTimeout ||
		server.IdleTimeout != cfg.IdleTimeout {
		t.Fatalf("server timeouts do not match configuration")
	}
}

func TestNewReturnsErrorForInvalidLimits(t *testing.T) {
	cfg := baseTestConfig(":0")
	cfg.Limits = parser.Limits{}

	if _, err := New(cfg, zaptest.NewLogger(t)); err == nil {
		t.Fatalf("expected error for invalid limits")
	}
}

func TestNewPackerWithoutCache(t *testing.T) {
	cfg := baseTestConfig(":0")
	cfg.CacheSize = 0

	pk, err := NewPacker(cfg, zaptest.NewLogger(t), func() (parser.Limits, error) {
		return parser.DefaultLimits(), nil
	}, metrics.NewNop())
	if err != nil {
		t.Fatalf("NewPacker returned error: %v", err)
	}

	selections, err := pk.PackText("8 : (1,15.3,€34)")
	if err != nil {
		t.Fatalf("PackText returned error: %v", err)
	}
	if len(selections) != 1 || selections[0].String() != "-" {
		t.Fatalf("unexpected selections: %v", selections)
	}
}

func TestBuildRootHandler(t *testing.T) {
	apiInvoked := false
	apiHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			t.Fatalf("unexpected path passed to API handler: %s", r.URL.Path)
		}
		apiInvoked = true
		w.WriteHeader(http.StatusNoContent)
	})

	handler := BuildRootHandler(apiHandler, nil)

	t.Run("returns not found for unknown paths", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/unknown", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", rec.Code)
		}
	})

	t.Run("forwards api traffic", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected status 204, got %d", rec.Code)
		}
		if !apiInvoked {
			t.Fatalf("expected API handler to be invoked")
		}
	})
}

func baseTestConfig(port string) config.Config {
	return config.Config{
		Port:                 port,
		Limits:               parser.DefaultLimits(),
		CacheSize:            16,
		EnableMetrics:        true,
		ShutdownGracePeriod:  50 * time.Millisecond,
		ReadHeaderTimeout:    20 * time.Millisecond,
		WriteTimeout:         30 * time.Millisecond,
		IdleTimeout:          40 * time.Millisecond,
		EnableRequestLogging: false,
		RateLimitRPS:         0,
		RateLimitBurst:       0,
	}
}
