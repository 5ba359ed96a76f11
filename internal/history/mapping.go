package history

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/JaimeStill/wastewise/pkg/query"
	"github.com/JaimeStill/wastewise/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "classification_history", "h").
	Project("id", "id").
	Project("waste_category_id", "waste_category_id").
	Project("image_url", "image_url").
	Project("image_key", "image_key").
	Project("detected_items", "detected_items").
	Project("confidence_score", "confidence_score").
	Project("is_correct", "is_correct").
	Project("user_feedback", "user_feedback").
	Project("model_name", "model_name").
	Project("provider_name", "provider_name").
	Project("created_at", "created_at").
	Project("updated_at", "updated_at").
	Join("public", "waste_categories", "w", query.InnerJoin, "w.id = h.waste_category_id").
	Project("name", "category_name").
	Project("color_code", "color_code").
	Project("description", "description").
	Project("disposal_instructions", "disposal_instructions").
	Project("environmental_impact", "environmental_impact")

// Newest first; id breaks ties between records created in the same instant.
var defaultSort = []query.SortField{
	{Field: "created_at", Descending: true},
	{Field: "id", Descending: true},
}

var errs = repository.Errors{
	NotFound:   ErrNotFound,
	ForeignKey: ErrUnknownCategory,
}

// Filters contains optional filtering criteria for history queries.
// Nil fields are ignored.
type Filters struct {
	CategoryID *uuid.UUID `json:"category_id,omitempty"`
	IsCorrect  *bool      `json:"is_correct,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("waste_category_id", f.CategoryID).
		WhereEquals("is_correct", f.IsCorrect)
}

// FiltersFromQuery extracts filter values from URL query parameters.
// Unparseable values are ignored.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if v := values.Get("category_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			f.CategoryID = &id
		}
	}

	if v := values.Get("is_correct"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			f.IsCorrect = &b
		}
	}

	return f
}

func scanRecord(s repository.Scanner) (Record, error) {
	var r Record
	var itemsRaw []byte

	err := s.Scan(
		&r.ID,
		&r.WasteCategoryID,
		&r.ImageURL,
		&r.ImageKey,
		&itemsRaw,
		&r.ConfidenceScore,
		&r.IsCorrect,
		&r.UserFeedback,
		&r.ModelName,
		&r.ProviderName,
		&r.CreatedAt,
		&r.UpdatedAt,
		&r.CategoryName,
		&r.ColorCode,
		&r.Description,
		&r.DisposalInstructions,
		&r.EnvironmentalImpact,
	)
	if err != nil {
		return r, err
	}

	if len(itemsRaw) > 0 {
		if err := json.Unmarshal(itemsRaw, &r.DetectedItems); err != nil {
			return r, fmt.Errorf("unmarshal detected_items: %w", err)
		}
	}

	if r.DetectedItems == nil {
		r.DetectedItems = []string{}
	}

	return r, nil
}
