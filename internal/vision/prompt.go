package vision

import "strings"

// FallbackCategory is assigned when the model response cannot be parsed.
const FallbackCategory = "General/Mixed Waste"

// Categories is the closed set of category names the model may answer with.
// It matches the seeded waste_categories rows.
var Categories = []string{
	"Plastic",
	"Paper & Cardboard",
	"Glass",
	"Organic/Food Waste",
	"Metal",
	"Electronics",
	"Hazardous Waste",
	FallbackCategory,
}

// UserPrompt accompanies the image in the user message.
const UserPrompt = "Classify this waste item and provide disposal recommendations."

// SystemPrompt instructs the model to answer with a single JSON object.
var SystemPrompt = "You are a waste classification expert. Analyze the image and classify " +
	"the waste item(s) into one of these categories: " + categoryList() + ". " +
	"Respond with a JSON object containing: { category: string, detected_items: string[], " +
	"confidence: number (0-1), reasoning: string }"

func categoryList() string {
	head := Categories[:len(Categories)-1]
	return strings.Join(head, ", ") + ", or " + Categories[len(Categories)-1]
}
