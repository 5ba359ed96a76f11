package categories

import (
	"github.com/JaimeStill/wastewise/pkg/query"
	"github.com/JaimeStill/wastewise/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "waste_categories", "w").
	Project("id", "id").
	Project("name", "name").
	Project("color_code", "color_code").
	Project("description", "description").
	Project("disposal_instructions", "disposal_instructions").
	Project("environmental_impact", "environmental_impact").
	Project("created_at", "created_at")

var defaultSort = query.SortField{Field: "name"}

var errs = repository.Errors{NotFound: ErrNotFound}

func scanCategory(s repository.Scanner) (Category, error) {
	var c Category
	err := s.Scan(
		&c.ID,
		&c.Name,
		&c.ColorCode,
		&c.Description,
		&c.DisposalInstructions,
		&c.EnvironmentalImpact,
		&c.CreatedAt,
	)
	return c, err
}
