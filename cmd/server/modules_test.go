package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/wastewise/internal/infrastructure"
	"github.com/JaimeStill/wastewise/pkg/lifecycle"
)

func serve(t *testing.T, infra *infrastructure.Infrastructure, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	buildRouter(infra).Handler().ServeHTTP(rec, req)
	return rec
}

func readyCoordinator(t *testing.T) *lifecycle.Coordinator {
	t.Helper()
	lc := lifecycle.New()
	lc.OnStartup(func() {})
	lc.WaitForStartup()
	t.Cleanup(func() { lc.Shutdown(time.Second) })
	return lc
}

func TestHealthz(t *testing.T) {
	rec := serve(t, &infrastructure.Infrastructure{Lifecycle: lifecycle.New()}, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestReadyz(t *testing.T) {
	t.Run("not started", func(t *testing.T) {
		rec := serve(t, &infrastructure.Infrastructure{Lifecycle: lifecycle.New()}, "/readyz")
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("status: got %d, want %d", rec.Code, http.StatusServiceUnavailable)
		}
	})

	t.Run("ready", func(t *testing.T) {
		lc := readyCoordinator(t)
		lc.AddCheck("database", func(context.Context) error { return nil })

		rec := serve(t, &infrastructure.Infrastructure{Lifecycle: lc}, "/readyz")
		if rec.Code != http.StatusOK {
			t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
		}

		var body struct {
			Status string            `json:"status"`
			Checks map[string]string `json:"checks"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Checks["database"] != "ok" {
			t.Errorf("database check: got %q", body.Checks["database"])
		}
	})

	t.Run("failing check", func(t *testing.T) {
		lc := readyCoordinator(t)
		lc.AddCheck("cache", func(context.Context) error { return errors.New("connection refused") })

		rec := serve(t, &infrastructure.Infrastructure{Lifecycle: lc}, "/readyz")
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("status: got %d, want %d", rec.Code, http.StatusServiceUnavailable)
		}
		if !strings.Contains(rec.Body.String(), "connection refused") {
			t.Errorf("body missing check error: %s", rec.Body.String())
		}
	})
}

func TestMetrics(t *testing.T) {
	rec := serve(t, &infrastructure.Infrastructure{Lifecycle: lifecycle.New()}, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Error("metrics output missing runtime collectors")
	}
}
