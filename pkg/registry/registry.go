// Package registry is the runtime side of generated route tables: it maps a
// key's dynamic type to the handler that renders it and how to present it.
//
// Tables are normally produced by navgen:
//
//	//go:generate navgen gen
//
//	reg := screens.Routes()
//	presentation, view, err := reg.Render(stack.Top(), holders)
package registry

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/vango-dev/navstack/pkg/nav"
)

// ErrNoRoute is returned by Render for keys without a route.
var ErrNoRoute = errors.New("registry: no route for key")

// ErrDuplicateRoute is returned by New when two routes share a key type.
var ErrDuplicateRoute = errors.New("registry: duplicate route")

// Void is the view type of tables whose handlers return nothing.
type Void = struct{}

// Registry is an immutable dispatch table from key type to Route.
type Registry[V any] struct {
	byType map[reflect.Type]Route[V]
	routes []Route[V]
}

// New builds a registry. Every key type may appear once.
func New[V any](routes ...Route[V]) (*Registry[V], error) {
	r := &Registry[V]{byType: make(map[reflect.Type]Route[V], len(routes))}

	var dups []string
	for _, route := range routes {
		if route.Type == nil || route.render == nil {
			return nil, fmt.Errorf("registry: route %q was not built with PassKey, PassHolder or PassNothing", route.Handler)
		}
		if existing, ok := r.byType[route.Type]; ok {
			dups = append(dups, fmt.Sprintf("%s (handlers %s and %s)", route.Name, existing.Handler, route.Handler))
			continue
		}
		r.byType[route.Type] = route
		r.routes = append(r.routes, route)
	}
	if len(dups) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateRoute, strings.Join(dups, ", "))
	}

	sort.Slice(r.routes, func(i, j int) bool { return r.routes[i].Name < r.routes[j].Name })
	return r, nil
}

// MustNew is New that panics, for generated code.
func MustNew[V any](routes ...Route[V]) *Registry[V] {
	r, err := New(routes...)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the route for key's dynamic type.
func (r *Registry[V]) Lookup(key nav.Key) (Route[V], bool) {
	if key == nil {
		return Route[V]{}, false
	}
	route, ok := r.byType[reflect.TypeOf(key)]
	return route, ok
}

// Routes returns every route sorted by key type name.
func (r *Registry[V]) Routes() []Route[V] {
	out := make([]Route[V], len(r.routes))
	copy(out, r.routes)
	return out
}

// Len returns the number of routes.
func (r *Registry[V]) Len() int {
	return len(r.routes)
}

// Render invokes the handler for key. holders may be nil, in which case
// holder routes get a fresh holder on every call.
func (r *Registry[V]) Render(key nav.Key, holders *HolderStore) (Presentation, V, error) {
	route, ok := r.Lookup(key)
	if !ok {
		var zero V
		return Plain, zero, fmt.Errorf("%w: %s", ErrNoRoute, nav.TypeName(key))
	}
	return route.Presentation, route.render(key, holders), nil
}
