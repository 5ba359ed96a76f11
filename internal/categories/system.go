package categories

import (
	"context"

	"github.com/google/uuid"
)

// System defines the public contract for category lookups.
type System interface {
	Handler() *Handler

	// List returns every category ordered by name.
	List(ctx context.Context) ([]Category, error)
	Find(ctx context.Context, id uuid.UUID) (*Category, error)
	// FindByName matches name case-insensitively and exactly after trimming
	// surrounding whitespace.
	FindByName(ctx context.Context, name string) (*Category, error)
}
