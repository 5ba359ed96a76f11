// Package classify runs the classification pipeline: vision model, category
// lookup, history write, and the response returned to the client.
package classify

import (
	"context"
	"math"

	"github.com/google/uuid"

	"github.com/JaimeStill/wastewise/internal/categories"
	"github.com/JaimeStill/wastewise/internal/history"
	"github.com/JaimeStill/wastewise/internal/vision"
)

// ImagePlaceholder is stored as image_url when the image arrived inline.
const ImagePlaceholder = "base64_image"

// Command is the POST /classify request body.
type Command struct {
	ImageBase64 string `json:"imageBase64"`
	ImageURL    string `json:"imageUrl"`
}

// Classification is the client-facing result with disposal guidance. ID is
// the history record id. Confidence is an integer percent.
type Classification struct {
	ID                   uuid.UUID `json:"id"`
	Category             string    `json:"category"`
	ColorCode            string    `json:"colorCode"`
	Description          string    `json:"description"`
	DisposalInstructions string    `json:"disposalInstructions"`
	EnvironmentalImpact  string    `json:"environmentalImpact"`
	DetectedItems        []string  `json:"detectedItems"`
	Confidence           int       `json:"confidence"`
	Reasoning            string    `json:"reasoning"`
}

// Response is the POST /classify response body.
type Response struct {
	Classification Classification `json:"classification"`
	HistoryID      uuid.UUID      `json:"historyId"`
}

// Event is published after each stored classification.
type Event struct {
	HistoryID  uuid.UUID `json:"history_id"`
	Category   string    `json:"category"`
	Confidence float64   `json:"confidence"`
	CreatedAt  string    `json:"created_at"`
}

// CategoryFinder resolves the model's category name.
type CategoryFinder interface {
	FindByName(ctx context.Context, name string) (*categories.Category, error)
}

// Recorder stores a classification.
type Recorder interface {
	Create(ctx context.Context, cmd history.CreateCommand) (*history.Record, error)
}

// Classifier asks the vision model about an image.
type Classifier interface {
	Classify(ctx context.Context, in vision.Input) (*vision.Result, error)
}

// Percent converts a [0,1] confidence to a rounded integer percent.
func Percent(confidence float64) int {
	return int(math.Round(confidence * 100))
}

func newResponse(rec *history.Record, cat *categories.Category, result *vision.Result) *Response {
	items := result.DetectedItems
	if items == nil {
		items = []string{}
	}

	return &Response{
		Classification: Classification{
			ID:                   rec.ID,
			Category:             cat.Name,
			ColorCode:            cat.ColorCode,
			Description:          cat.Description,
			DisposalInstructions: cat.DisposalInstructions,
			EnvironmentalImpact:  cat.EnvironmentalImpact,
			DetectedItems:        items,
			Confidence:           Percent(rec.ConfidenceScore),
			Reasoning:            result.Reasoning,
		},
		HistoryID: rec.ID,
	}
}
