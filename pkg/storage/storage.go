// Package storage provides blob storage operations backed by Azure Blob
// Storage or Amazon S3.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/JaimeStill/wastewise/pkg/lifecycle"
)

// Object is a downloaded blob. The caller must close Body.
type Object struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

// System manages blob storage operations and lifecycle coordination.
type System interface {
	// Start registers a startup hook that verifies or creates the container.
	Start(lc *lifecycle.Coordinator) error
	// Upload writes data to a blob at the given key with the specified content type.
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) error
	// Download returns the blob at the given key.
	// Returns ErrNotFound if the blob does not exist.
	Download(ctx context.Context, key string) (*Object, error)
	// Delete removes the blob at the given key. Deleting a missing blob is not an error.
	Delete(ctx context.Context, key string) error
	// Exists reports whether a blob exists at the given key.
	Exists(ctx context.Context, key string) (bool, error)
}

// New creates the storage system for the configured provider. It returns
// (nil, nil) when storage is disabled. Clients are created but no network
// calls are made until Start.
func New(ctx context.Context, cfg *Config, logger *slog.Logger) (System, error) {
	logger = logger.With("system", "storage", "provider", cfg.Provider)

	switch cfg.Provider {
	case ProviderNone:
		return nil, nil
	case ProviderAzure:
		return newAzure(cfg, logger)
	case ProviderS3:
		return newS3(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}
