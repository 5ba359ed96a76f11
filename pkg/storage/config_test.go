package storage_test

import (
	"strings"
	"testing"

	"github.com/JaimeStill/wastewise/pkg/storage"
)

func TestConfigFinalize(t *testing.T) {
	t.Run("disabled by default", func(t *testing.T) {
		cfg := &storage.Config{}
		if err := cfg.Finalize(nil); err != nil {
			t.Fatalf("finalize: %v", err)
		}
		if cfg.Enabled() {
			t.Error("storage should be disabled without a provider")
		}
		if cfg.Container != "wastewise-images" {
			t.Errorf("Container = %q", cfg.Container)
		}
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("TEST_STORAGE_PROVIDER", "s3")
		t.Setenv("TEST_STORAGE_CONTAINER", "bucket")
		t.Setenv("TEST_STORAGE_S3_ENDPOINT", "http://localhost:9000")
		t.Setenv("TEST_STORAGE_S3_PATH_STYLE", "true")

		cfg := &storage.Config{}
		env := &storage.Env{
			Provider:       "TEST_STORAGE_PROVIDER",
			Container:      "TEST_STORAGE_CONTAINER",
			S3Endpoint:     "TEST_STORAGE_S3_ENDPOINT",
			S3UsePathStyle: "TEST_STORAGE_S3_PATH_STYLE",
		}
		if err := cfg.Finalize(env); err != nil {
			t.Fatalf("finalize: %v", err)
		}

		if !cfg.Enabled() || cfg.Provider != "s3" || cfg.Container != "bucket" {
			t.Errorf("cfg = %+v", cfg)
		}
		if cfg.S3.Endpoint != "http://localhost:9000" || !cfg.S3.UsePathStyle {
			t.Errorf("s3 = %+v", cfg.S3)
		}
	})

	failures := []struct {
		name    string
		cfg     storage.Config
		wantErr string
	}{
		{"azure without credentials", storage.Config{Provider: "azure"}, "connection_string or account_url"},
		{"unknown provider", storage.Config{Provider: "gcs"}, "unknown storage provider"},
	}

	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Finalize(nil)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfigMerge(t *testing.T) {
	cfg := &storage.Config{Provider: "azure", Container: "base", Azure: storage.AzureConfig{AccountURL: "https://a"}}
	cfg.Merge(&storage.Config{Container: "overlay", S3: storage.S3Config{UsePathStyle: true}})

	if cfg.Provider != "azure" || cfg.Container != "overlay" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Azure.AccountURL != "https://a" || !cfg.S3.UsePathStyle {
		t.Errorf("nested merge failed: %+v", cfg)
	}
}
