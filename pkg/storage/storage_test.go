package storage_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/JaimeStill/wastewise/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewDisabled(t *testing.T) {
	sys, err := storage.New(context.Background(), &storage.Config{}, discard())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if sys != nil {
		t.Fatal("disabled storage should return a nil system")
	}
}

func TestNewAzure(t *testing.T) {
	cfg := &storage.Config{
		Provider:  storage.ProviderAzure,
		Container: "images",
		Azure:     storage.AzureConfig{ConnectionString: azuriteConnString},
	}

	sys, err := storage.New(context.Background(), cfg, discard())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := context.Background()
	if err := sys.Upload(ctx, "", strings.NewReader("x"), "image/png"); !errors.Is(err, storage.ErrEmptyKey) {
		t.Errorf("Upload empty key err = %v, want ErrEmptyKey", err)
	}
	if _, err := sys.Download(ctx, "../etc/passwd"); !errors.Is(err, storage.ErrInvalidKey) {
		t.Errorf("Download traversal err = %v, want ErrInvalidKey", err)
	}

	cfg.Azure.ConnectionString = "not-a-connection-string"
	if _, err := storage.New(context.Background(), cfg, discard()); err == nil {
		t.Error("expected error for invalid connection string")
	}
}

func TestNewUnknownProvider(t *testing.T) {
	if _, err := storage.New(context.Background(), &storage.Config{Provider: "ftp"}, discard()); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{storage.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("wrap: %w", storage.ErrNotFound), http.StatusNotFound},
		{storage.ErrEmptyKey, http.StatusBadRequest},
		{storage.ErrInvalidKey, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := storage.MapHTTPStatus(tt.err); got != tt.want {
			t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		key  string
		want error
	}{
		{"classifications/abc.jpg", nil},
		{"a..b/c.png", nil},
		{"", storage.ErrEmptyKey},
		{"/classifications/abc.jpg", storage.ErrInvalidKey},
		{"classifications/../secret", storage.ErrInvalidKey},
		{"..", storage.ErrInvalidKey},
	}

	for _, tt := range tests {
		if got := storage.ValidateKey(tt.key); !errors.Is(got, tt.want) {
			t.Errorf("ValidateKey(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[path] = body
		f.types[path] = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		body, ok := f.objects[path]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`)
			return
		}
		w.Header().Set("Content-Type", f.types[path])
		w.Write(body)
	case http.MethodHead:
		body, ok := f.objects[path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", f.types[path])
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		delete(f.objects, path)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestS3RoundTrip(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")
	t.Setenv("AWS_CONFIG_FILE", "/dev/null")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", "/dev/null")

	fake := &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	cfg := &storage.Config{
		Provider:  storage.ProviderS3,
		Container: "images",
		S3: storage.S3Config{
			Region:       "us-east-1",
			Endpoint:     srv.URL,
			UsePathStyle: true,
		},
	}

	ctx := context.Background()
	sys, err := storage.New(ctx, cfg, discard())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	key := "classifications/item.png"
	if err := sys.Upload(ctx, key, bytes.NewReader([]byte("png-bytes")), "image/png"); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	obj, err := sys.Download(ctx, key)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	defer obj.Body.Close()

	if obj.ContentType != "image/png" {
		t.Errorf("ContentType = %q, want image/png", obj.ContentType)
	}

	if _, err := sys.Download(ctx, "classifications/missing.png"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Download missing err = %v, want ErrNotFound", err)
	}

	if ok, err := sys.Exists(ctx, key); err != nil || !ok {
		t.Errorf("Exists = %v, %v, want true", ok, err)
	}
	if ok, err := sys.Exists(ctx, "classifications/missing.png"); err != nil || ok {
		t.Errorf("Exists missing = %v, %v, want false", ok, err)
	}

	if err := sys.Delete(ctx, key); err != nil {
		t.Errorf("Delete: %v", err)
	}
	if ok, _ := sys.Exists(ctx, key); ok {
		t.Error("Exists after Delete = true")
	}
}
