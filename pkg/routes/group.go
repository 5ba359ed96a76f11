// Package routes declares route groups for registration on an http.ServeMux
// and for description in an OpenAPI document.
package routes

import (
	"net/http"

	"github.com/JaimeStill/wastewise/pkg/openapi"
)

// Group organizes routes under a common prefix with shared tags.
type Group struct {
	Prefix   string
	Tags     []string
	Schemas  map[string]*openapi.Schema
	Routes   []Route
	Children []Group
}

// Register adds all routes from the given groups to the mux.
func Register(mux *http.ServeMux, groups ...Group) {
	walk("", groups, func(path string, _ []string, route Route) {
		mux.HandleFunc(route.Method+" "+path, route.Handler)
	})
}

// Describe adds every documented route and group schema to spec. Paths are
// rooted at the module mount point so they match the served URLs when the
// spec's server URL is the module prefix.
func Describe(spec *openapi.Spec, groups ...Group) {
	for _, g := range groups {
		describeSchemas(spec, g)
	}

	walk("", groups, func(path string, tags []string, route Route) {
		if route.OpenAPI == nil {
			return
		}
		op := *route.OpenAPI
		if len(op.Tags) == 0 {
			op.Tags = tags
		}
		spec.AddOperation(route.Method, path, &op)
	})
}

func describeSchemas(spec *openapi.Spec, g Group) {
	if len(g.Schemas) > 0 {
		spec.Components.AddSchemas(g.Schemas)
	}
	for _, child := range g.Children {
		describeSchemas(spec, child)
	}
}

func walk(parent string, groups []Group, fn func(path string, tags []string, route Route)) {
	for _, g := range groups {
		prefix := parent + g.Prefix
		for _, route := range g.Routes {
			fn(prefix+route.Pattern, g.Tags, route)
		}
		walk(prefix, g.Children, fn)
	}
}
