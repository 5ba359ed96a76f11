package auth_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/JaimeStill/wastewise/pkg/auth"
)

type fakeVerifier struct {
	verify func(ctx context.Context, raw string) (*oidc.IDToken, error)
}

func (f *fakeVerifier) Verify(ctx context.Context, raw string) (*oidc.IDToken, error) {
	return f.verify(ctx, raw)
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMiddleware(t *testing.T) {
	verifier := &fakeVerifier{
		verify: func(_ context.Context, raw string) (*oidc.IDToken, error) {
			if raw != "good" {
				return nil, errors.New("signature mismatch")
			}
			return &oidc.IDToken{Subject: "user-1"}, nil
		},
	}

	var subject string
	handler := auth.Middleware(verifier, discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, _ = auth.Subject(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name      string
		header    string
		want      int
		wantError string
	}{
		{"missing header", "", http.StatusUnauthorized, "missing bearer token"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "missing bearer token"},
		{"empty token", "Bearer ", http.StatusUnauthorized, "missing bearer token"},
		{"invalid token", "Bearer bad", http.StatusUnauthorized, "invalid bearer token: signature mismatch"},
		{"valid token", "Bearer good", http.StatusOK, ""},
		{"case-insensitive scheme", "bearer good", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject = ""
			req := httptest.NewRequest("GET", "/history", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}

			if tt.wantError != "" {
				var body map[string]string
				json.NewDecoder(rec.Body).Decode(&body)
				if body["error"] != tt.wantError {
					t.Errorf("error = %q, want %q", body["error"], tt.wantError)
				}
				if rec.Header().Get("WWW-Authenticate") == "" {
					t.Error("WWW-Authenticate header missing")
				}
				return
			}

			if subject != "user-1" {
				t.Errorf("subject = %q, want user-1", subject)
			}
		})
	}
}

func TestMiddlewareWithStaticKeySet(t *testing.T) {
	verifier := oidc.NewVerifier("https://issuer.example", &oidc.StaticKeySet{}, &oidc.Config{ClientID: "wastewise"})

	handler := auth.Middleware(verifier, discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached with a malformed token")
	}))

	req := httptest.NewRequest("GET", "/history", nil)
	req.Header.Set("Authorization", "Bearer not.a.jwt")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestConfigFinalize(t *testing.T) {
	if err := (&auth.Config{}).Finalize(nil); err != nil {
		t.Errorf("disabled config should validate: %v", err)
	}
	if err := (&auth.Config{Enabled: true}).Finalize(nil); err == nil {
		t.Error("enabled config without issuer should fail")
	}

	t.Setenv("TEST_AUTH_ENABLED", "true")
	t.Setenv("TEST_AUTH_ISSUER", "https://issuer.example")
	t.Setenv("TEST_AUTH_CLIENT_ID", "wastewise")

	cfg := &auth.Config{}
	err := cfg.Finalize(&auth.Env{Enabled: "TEST_AUTH_ENABLED", Issuer: "TEST_AUTH_ISSUER", ClientID: "TEST_AUTH_CLIENT_ID"})
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if !cfg.Enabled || cfg.Issuer != "https://issuer.example" || cfg.ClientID != "wastewise" {
		t.Errorf("cfg = %+v", cfg)
	}
}
