package vision_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/JaimeStill/wastewise/internal/vision"
)

const pngBase64 = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAA="

func contains(s, sub string) bool {
	return strings.Contains(s, sub)
}

func TestNewInput(t *testing.T) {
	tests := []struct {
		name       string
		base64     string
		url        string
		wantErr    bool
		wantInline bool
		wantSource string
	}{
		{name: "neither source", wantErr: true},
		{name: "whitespace only", base64: "  ", url: " ", wantErr: true},
		{name: "invalid base64", base64: "not base64!!", wantErr: true},
		{name: "text data uri", base64: "data:text/plain;base64,aGVsbG8=", wantErr: true},
		{name: "sniffed bmp", base64: "Qk0AAAAAAAAAADYA", wantErr: true},
		{name: "relative url", url: "/images/a.jpg", wantErr: true},
		{name: "unsupported scheme", url: "ftp://example.com/a.jpg", wantErr: true},
		{
			name:       "remote url",
			url:        "https://example.com/a.jpg",
			wantSource: "https://example.com/a.jpg",
		},
		{
			name:       "raw base64 sniffed as png",
			base64:     pngBase64,
			wantInline: true,
			wantSource: "data:image/png;base64,",
		},
		{
			name:       "data uri keeps declared type",
			base64:     "data:image/webp;base64," + pngBase64,
			wantInline: true,
			wantSource: "data:image/webp;base64,",
		},
		{
			name:       "inline wins over url",
			base64:     pngBase64,
			url:        "https://example.com/a.jpg",
			wantInline: true,
			wantSource: "data:image/png;base64,",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := vision.NewInput(tt.base64, tt.url)
			if tt.wantErr {
				if !errors.Is(err, vision.ErrInvalidInput) {
					t.Fatalf("error: got %v, want ErrInvalidInput", err)
				}
				if vision.MapHTTPStatus(err) != http.StatusBadRequest {
					t.Errorf("status: got %d, want 400", vision.MapHTTPStatus(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if in.Inline() != tt.wantInline {
				t.Errorf("inline: got %v, want %v", in.Inline(), tt.wantInline)
			}
			if !strings.HasPrefix(in.Source(), tt.wantSource) {
				t.Errorf("source: got %q, want prefix %q", in.Source(), tt.wantSource)
			}
		})
	}
}

func TestNewInputKeepsURLAlongsideInline(t *testing.T) {
	in, err := vision.NewInput(pngBase64, "https://example.com/a.jpg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.URL != "https://example.com/a.jpg" {
		t.Errorf("url: got %q", in.URL)
	}
}

func TestMapHTTPStatus(t *testing.T) {
	if got := vision.MapHTTPStatus(vision.ErrUpstreamUnavailable); got != http.StatusInternalServerError {
		t.Errorf("upstream: got %d, want 500", got)
	}
	if got := vision.MapHTTPStatus(errors.New("other")); got != http.StatusInternalServerError {
		t.Errorf("other: got %d, want 500", got)
	}
}
