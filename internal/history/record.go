// Package history stores classification records and the feedback users
// leave on them. Records are created once per successful classification,
// changed only by feedback, and never deleted.
package history

import (
	"time"

	"github.com/google/uuid"
)

// Record is a stored classification joined with its category's guidance.
type Record struct {
	ID              uuid.UUID `json:"id"`
	WasteCategoryID uuid.UUID `json:"waste_category_id"`
	ImageURL        string    `json:"image_url"`
	ImageKey        *string   `json:"image_key"`
	DetectedItems   []string  `json:"detected_items"`
	ConfidenceScore float64   `json:"confidence_score"`
	IsCorrect       *bool     `json:"is_correct"`
	UserFeedback    *string   `json:"user_feedback"`
	ModelName       string    `json:"model_name"`
	ProviderName    string    `json:"provider_name"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	CategoryName         string `json:"category_name"`
	ColorCode            string `json:"color_code"`
	Description          string `json:"description"`
	DisposalInstructions string `json:"disposal_instructions"`
	EnvironmentalImpact  string `json:"environmental_impact"`
}

// CreateCommand carries a new classification. Confidence is clamped to
// [0,1] before insert.
type CreateCommand struct {
	CategoryID    uuid.UUID
	ImageURL      string
	ImageKey      *string
	DetectedItems []string
	Confidence    float64
	ModelName     string
	ProviderName  string
}

// FeedbackCommand is a partial update. Nil fields are left unchanged.
type FeedbackCommand struct {
	IsCorrect    *bool   `json:"is_correct"`
	UserFeedback *string `json:"user_feedback"`
}

// Stats summarizes all records.
type Stats struct {
	ItemsClassified int             `json:"items_classified"`
	Correct         int             `json:"correct"`
	Incorrect       int             `json:"incorrect"`
	Unrated         int             `json:"unrated"`
	Accuracy        float64         `json:"accuracy"`
	ByCategory      []CategoryCount `json:"by_category"`
}

// CategoryCount is the number of records assigned to one category.
type CategoryCount struct {
	CategoryID uuid.UUID `json:"category_id"`
	Category   string    `json:"category"`
	ColorCode  string    `json:"color_code"`
	Count      int       `json:"count"`
}
