package history

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/wastewise/pkg/pagination"
	"github.com/JaimeStill/wastewise/pkg/storage"
)

// System defines the public contract for classification history operations.
type System interface {
	Handler() *Handler

	Create(ctx context.Context, cmd CreateCommand) (*Record, error)

	// List returns records newest first with the unpaginated total.
	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Record], error)

	Find(ctx context.Context, id uuid.UUID) (*Record, error)

	// Feedback applies a partial update and always touches updated_at.
	Feedback(ctx context.Context, id uuid.UUID, cmd FeedbackCommand) (*Record, error)

	Stats(ctx context.Context) (*Stats, error)

	// Image returns the archived image for a record. The caller must close
	// the object body.
	Image(ctx context.Context, id uuid.UUID) (*storage.Object, error)
}
