package classify

import "context"

// System defines the public contract for the classification pipeline.
type System interface {
	Handler() *Handler

	// Classify stores exactly one history record on success and none on failure.
	Classify(ctx context.Context, cmd Command) (*Response, error)
}
