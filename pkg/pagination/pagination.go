package pagination

import (
	"net/url"
	"strconv"

	"github.com/JaimeStill/wastewise/pkg/query"
)

// PageRequest is a limit/offset window with optional sort fields.
type PageRequest struct {
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
	Sort   []query.SortField `json:"sort,omitempty"`
}

// Normalize clamps the request to the configured bounds. A non-positive
// limit selects the default; a negative offset becomes zero.
func (r *PageRequest) Normalize(cfg Config) {
	if r.Limit < 1 {
		r.Limit = cfg.DefaultLimit
	}
	if r.Limit > cfg.MaxLimit {
		r.Limit = cfg.MaxLimit
	}
	if r.Offset < 0 {
		r.Offset = 0
	}
}

// PageRequestFromQuery parses limit, offset and sort from URL query values.
// Unparseable numbers fall back to defaults.
func PageRequestFromQuery(values url.Values, cfg Config) PageRequest {
	limit, _ := strconv.Atoi(values.Get("limit"))
	offset, _ := strconv.Atoi(values.Get("offset"))

	req := PageRequest{
		Limit:  limit,
		Offset: offset,
		Sort:   query.ParseSortFields(values.Get("sort")),
	}

	req.Normalize(cfg)
	return req
}

// PageResult holds a window of data and the unpaginated total.
type PageResult[T any] struct {
	Data   []T `json:"data"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// NewPageResult creates a PageResult, substituting an empty slice for nil data.
func NewPageResult[T any](data []T, total int, req PageRequest) PageResult[T] {
	if data == nil {
		data = []T{}
	}

	return PageResult[T]{
		Data:   data,
		Total:  total,
		Limit:  req.Limit,
		Offset: req.Offset,
	}
}
