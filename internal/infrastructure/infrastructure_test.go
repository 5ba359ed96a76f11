package infrastructure_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/JaimeStill/wastewise/internal/config"
	"github.com/JaimeStill/wastewise/internal/infrastructure"
	"github.com/JaimeStill/wastewise/internal/vision"
	"github.com/JaimeStill/wastewise/pkg/cache"
	"github.com/JaimeStill/wastewise/pkg/database"
	"github.com/JaimeStill/wastewise/pkg/storage"
)

func validConfig() *config.Config {
	return &config.Config{
		Database: database.Config{
			Host:            "localhost",
			Port:            5432,
			Name:            "wastewise",
			User:            "wastewise",
			Password:        "wastewise",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: "15m",
			ConnTimeout:     "5s",
		},
		Cache: cache.Config{TTL: "10m", Prefix: "wastewise"},
		Vision: vision.Config{
			Provider:  vision.ProviderAnthropic,
			Model:     "claude-sonnet-4-5",
			APIKey:    "test-key",
			MaxTokens: 1024,
		},
		Log:     config.LogConfig{Level: "info", Format: "text"},
		Version: "0.1.0",
	}
}

func TestNew(t *testing.T) {
	infra, err := infrastructure.New(validConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if infra.Lifecycle == nil {
		t.Error("Lifecycle is nil")
	}
	if infra.Logger == nil {
		t.Error("Logger is nil")
	}
	if infra.Database == nil {
		t.Error("Database is nil")
	}
	if infra.Storage != nil {
		t.Error("Storage should be nil when no provider is configured")
	}
	if infra.Cache == nil || infra.Cache.Enabled() {
		t.Error("Cache should be the disabled implementation")
	}
	if infra.Vision == nil {
		t.Error("Vision is nil")
	}
}

func TestNewDatabaseConnection(t *testing.T) {
	infra, err := infrastructure.New(validConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	conn := infra.Database.Connection()
	if conn == nil {
		t.Fatal("Database.Connection() returned nil")
	}
	conn.Close()
}

func TestNewStorageProvider(t *testing.T) {
	cfg := validConfig()
	cfg.Storage = storage.Config{
		Provider:  storage.ProviderS3,
		Container: "wastewise",
		S3:        storage.S3Config{Region: "us-east-1", Endpoint: "http://127.0.0.1:9000", UsePathStyle: true},
	}

	infra, err := infrastructure.New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if infra.Storage == nil {
		t.Error("Storage is nil with s3 configured")
	}
}

func TestNewInvalidVisionProvider(t *testing.T) {
	cfg := validConfig()
	cfg.Vision.Provider = "gemini"

	if _, err := infrastructure.New(cfg); err == nil {
		t.Fatal("expected error for unknown vision provider")
	}
}

func TestNewInvalidStorageProvider(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.Provider = "ftp"

	if _, err := infrastructure.New(cfg); err == nil {
		t.Fatal("expected error for unknown storage provider")
	}
}

func TestNewLogger(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		logger := infrastructure.NewLogger(&config.LogConfig{Level: "info", Format: "json"}, &buf)
		logger.Info("hello", "category", "Glass")

		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("expected json output, got %q", buf.String())
		}
		if entry["category"] != "Glass" {
			t.Errorf("category: got %v", entry["category"])
		}
	})

	t.Run("level filters", func(t *testing.T) {
		var buf bytes.Buffer
		logger := infrastructure.NewLogger(&config.LogConfig{Level: "warn", Format: "text"}, &buf)
		logger.Info("dropped")
		logger.Warn("kept")

		out := buf.String()
		if strings.Contains(out, "dropped") || !strings.Contains(out, "kept") {
			t.Errorf("unexpected output %q", out)
		}
	})
}
