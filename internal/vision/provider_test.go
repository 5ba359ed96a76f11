package vision_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/JaimeStill/wastewise/internal/config"
	"github.com/JaimeStill/wastewise/internal/vision"
)

const modelAnswer = `{"category":"Plastic","detected_items":["bottle"],"confidence":0.95,"reasoning":"PET"}`

func newProvider(t *testing.T, cfg *vision.Config) vision.Provider {
	t.Helper()
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	p, err := vision.NewProvider(cfg, nil, discardLogger())
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	return p
}

func TestAnthropicProvider(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/v1/messages") {
			t.Errorf("path: got %s", r.URL.Path)
		}
		if r.Header.Get("X-Api-Key") != "test-key" {
			t.Errorf("api key header: got %q", r.Header.Get("X-Api-Key"))
		}
		data, _ := io.ReadAll(r.Body)
		json.Unmarshal(data, &body)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":            "msg_01",
			"type":          "message",
			"role":          "assistant",
			"model":         "claude-sonnet-4-5",
			"content":       []map[string]any{{"type": "text", "text": modelAnswer}},
			"stop_reason":   "end_turn",
			"stop_sequence": nil,
			"usage":         map[string]any{"input_tokens": 10, "output_tokens": 20},
		})
	}))
	defer srv.Close()

	p := newProvider(t, &vision.Config{Provider: vision.ProviderAnthropic, BaseURL: srv.URL, APIKey: "test-key"})
	if p.Name() != vision.ProviderAnthropic || p.Model() != "claude-sonnet-4-5" {
		t.Errorf("provider: got %s/%s", p.Name(), p.Model())
	}

	in, _ := vision.NewInput(pngBase64, "")
	text, err := p.Complete(context.Background(), vision.Request{System: "sys", Prompt: "classify", Image: in})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if text != modelAnswer {
		t.Errorf("text: got %q", text)
	}

	raw, _ := json.Marshal(body)
	for _, want := range []string{`"base64"`, `"image/png"`, `"sys"`, `"classify"`} {
		if !strings.Contains(string(raw), want) {
			t.Errorf("request body missing %s: %s", want, raw)
		}
	}
}

func TestAnthropicProviderDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"type":"error","error":{"type":"overloaded_error","message":"overloaded"}}`))
	}))
	defer srv.Close()

	p := newProvider(t, &vision.Config{Provider: vision.ProviderAnthropic, BaseURL: srv.URL, APIKey: "k"})
	in, _ := vision.NewInput("", "https://example.com/a.jpg")

	if _, err := p.Complete(context.Background(), vision.Request{Image: in}); err == nil {
		t.Fatal("expected error")
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("calls: got %d, want 1", n)
	}
}

func TestAgentProvider(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"model":   "llava",
			"choices": []map[string]any{{"index": 0, "message": map[string]any{"role": "assistant", "content": modelAnswer}, "finish_reason": "stop"}},
		})
	}))
	defer srv.Close()

	cfg := &vision.Config{Provider: vision.ProviderOllama, BaseURL: srv.URL, Model: "llava"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	var agentCfg gaconfig.AgentConfig
	if err := config.FinalizeAgent(&agentCfg, cfg); err != nil {
		t.Fatalf("finalize agent: %v", err)
	}

	p, err := vision.NewProvider(cfg, &agentCfg, discardLogger())
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	if p.Name() != vision.ProviderOllama || p.Model() != "llava" {
		t.Errorf("provider: got %s/%s", p.Name(), p.Model())
	}

	in, _ := vision.NewInput(pngBase64, "")
	text, err := p.Complete(context.Background(), vision.Request{Prompt: "classify this", Image: in})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if text != modelAnswer {
		t.Errorf("text: got %q", text)
	}

	for _, want := range []string{"classify this", "data:image/png;base64,"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("request body missing %s: %s", want, body)
		}
	}
}

func TestAgentProviderRequiresAgentConfig(t *testing.T) {
	cfg := &vision.Config{Provider: vision.ProviderOllama}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if _, err := vision.NewProvider(cfg, nil, discardLogger()); err == nil {
		t.Fatal("expected error without agent config")
	}
}

func TestConfigFinalize(t *testing.T) {
	tests := []struct {
		name      string
		cfg       vision.Config
		env       map[string]string
		wantModel string
		wantErr   bool
	}{
		{name: "anthropic default", wantModel: "claude-sonnet-4-5"},
		{name: "ollama keeps agent default model", cfg: vision.Config{Provider: "ollama"}, wantModel: ""},
		{name: "explicit model", cfg: vision.Config{Model: "claude-haiku-4-5"}, wantModel: "claude-haiku-4-5"},
		{
			name:      "env provider applies before defaults",
			env:       map[string]string{"TEST_VISION_PROVIDER": "ollama"},
			wantModel: "",
		},
		{name: "azure without base url", cfg: vision.Config{Provider: "azure"}, wantErr: true},
		{name: "unknown provider", cfg: vision.Config{Provider: "bard"}, wantErr: true},
		{name: "negative max tokens", cfg: vision.Config{MaxTokens: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg := tt.cfg
			err := cfg.Finalize(&vision.Env{Provider: "TEST_VISION_PROVIDER"})
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("finalize: %v", err)
			}
			if cfg.Model != tt.wantModel {
				t.Errorf("model: got %s, want %s", cfg.Model, tt.wantModel)
			}
		})
	}
}
