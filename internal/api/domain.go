package api

import (
	"github.com/JaimeStill/wastewise/internal/categories"
	"github.com/JaimeStill/wastewise/internal/classify"
	"github.com/JaimeStill/wastewise/internal/history"
	"github.com/JaimeStill/wastewise/pkg/storage"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Categories categories.System
	History    history.System
	Classify   classify.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	categoriesSystem := categories.New(
		runtime.Database.Connection(),
		runtime.Cache,
		runtime.Logger,
	)

	historySystem := history.New(
		runtime.Database.Connection(),
		runtime.Storage,
		runtime.Logger,
		runtime.Pagination,
	)

	var archive storage.System
	if runtime.ArchiveImages {
		archive = runtime.Storage
	}

	classifySystem := classify.New(
		runtime.Vision,
		categoriesSystem,
		historySystem,
		archive,
		runtime.Cache,
		runtime.Logger,
		runtime.MaxRequestSize,
	)

	return &Domain{
		Categories: categoriesSystem,
		History:    historySystem,
		Classify:   classifySystem,
	}
}
