package registry

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/vango-dev/navstack/pkg/nav"
)

// Presentation is how a host shows a destination.
type Presentation int

const (
	// Plain is a full screen destination.
	Plain Presentation = iota
	// Modal is shown as a dialog above the previous destination.
	Modal
	// BottomSheet is shown as a sheet anchored to the bottom edge.
	BottomSheet
)

func (p Presentation) String() string {
	switch p {
	case Plain:
		return "plain"
	case Modal:
		return "modal"
	case BottomSheet:
		return "bottom-sheet"
	default:
		return fmt.Sprintf("presentation(%d)", int(p))
	}
}

// GoName is the identifier generated code uses for p.
func (p Presentation) GoName() string {
	switch p {
	case Modal:
		return "Modal"
	case BottomSheet:
		return "BottomSheet"
	default:
		return "Plain"
	}
}

// ParsePresentation accepts plain, modal and bottom-sheet, plus the aliases
// screen, dialog and bottom-dialog. The empty string is Plain.
func ParsePresentation(s string) (Presentation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "plain", "screen":
		return Plain, nil
	case "modal", "dialog":
		return Modal, nil
	case "bottom-sheet", "bottomsheet", "bottom-dialog":
		return BottomSheet, nil
	}
	return Plain, fmt.Errorf("registry: unknown presentation %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (p Presentation) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Invocation is how a handler receives its destination.
type Invocation int

const (
	// InvokeWithKey passes the key itself.
	InvokeWithKey Invocation = iota
	// InvokeWithHolder passes the per-key state holder.
	InvokeWithHolder
	// InvokeWithNothing passes no argument.
	InvokeWithNothing
)

func (i Invocation) String() string {
	switch i {
	case InvokeWithKey:
		return "key"
	case InvokeWithHolder:
		return "holder"
	case InvokeWithNothing:
		return "nothing"
	default:
		return fmt.Sprintf("invocation(%d)", int(i))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (i Invocation) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// Route is one entry of the dispatch table. Routes are built by generated
// code through PassKey, PassHolder and PassNothing and never change.
type Route[V any] struct {
	// Type is the key's dynamic type.
	Type reflect.Type
	// Name is the qualified key type name.
	Name         string
	Presentation Presentation
	Invocation   Invocation
	// Handler names the handler function, for diagnostics.
	Handler string

	render func(key nav.Key, holders *HolderStore) V
}

// PassKey routes K to a handler taking the key.
func PassKey[K nav.Key, V any](handler string, p Presentation, fn func(K) V) Route[V] {
	return newRoute[K](handler, p, InvokeWithKey, func(key nav.Key, _ *HolderStore) V {
		return fn(key.(K))
	})
}

// PassNothing routes K to a handler taking no argument.
func PassNothing[K nav.Key, V any](handler string, p Presentation, fn func() V) Route[V] {
	return newRoute[K](handler, p, InvokeWithNothing, func(nav.Key, *HolderStore) V {
		return fn()
	})
}

// PassHolder routes K to a handler taking a holder built by construct and
// cached in the HolderStore for as long as the key stays on the stack.
func PassHolder[K nav.Key, H any, V any](handler string, p Presentation, construct func(K) H, fn func(H) V) Route[V] {
	return newRoute[K](handler, p, InvokeWithHolder, func(key nav.Key, holders *HolderStore) V {
		k := key.(K)
		if holders == nil {
			return fn(construct(k))
		}
		return fn(HolderFor(holders, k, construct))
	})
}

func newRoute[K nav.Key, V any](handler string, p Presentation, inv Invocation, render func(nav.Key, *HolderStore) V) Route[V] {
	t := reflect.TypeFor[K]()
	return Route[V]{
		Type:         t,
		Name:         nav.QualifiedName(t),
		Presentation: p,
		Invocation:   inv,
		Handler:      handler,
		render:       render,
	}
}
