// Package categories implements the read-only waste category catalog.
// Categories are seeded by migration and looked up by the classification
// pipeline using a case-insensitive exact name match.
package categories

import (
	"time"

	"github.com/google/uuid"
)

// Category is a waste category with its disposal guidance.
type Category struct {
	ID                   uuid.UUID `json:"id"`
	Name                 string    `json:"name"`
	ColorCode            string    `json:"color_code"`
	Description          string    `json:"description"`
	DisposalInstructions string    `json:"disposal_instructions"`
	EnvironmentalImpact  string    `json:"environmental_impact"`
	CreatedAt            time.Time `json:"created_at"`
}
