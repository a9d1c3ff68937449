package nav

import (
	"bytes"
	"encoding/json"
	"reflect"
)

// Key identifies a destination and carries its parameters.
//
// Any type embedding Destination is a Key:
//
//	type Profile struct {
//	    nav.Destination
//	    UserID int `json:"userId"`
//	}
//
// Keys are values: construct them once and never mutate them afterwards.
// The only exception is the result slot of a Result key.
type Key interface {
	navKey()
}

// Destination is embedded in a struct to make it a Key.
type Destination struct{}

func (Destination) navKey() {}

// Equaler lets a key type define its own equality.
type Equaler interface {
	Equal(other Key) bool
}

// Equal reports whether a and b identify the same destination.
//
// Keys of different dynamic types are never equal. Comparable value types
// compare with ==, unless an interface field holds an uncomparable value
// such as a slice. Those keys and pointer keys, such as result keys, compare their JSON
// form so that two separately constructed keys with the same parameters are
// equal; the result slot is not part of that form.
func Equal(a, b Key) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if eq, ok := a.(Equaler); ok {
		return eq.Equal(b)
	}
	if ta.Kind() != reflect.Pointer && reflect.ValueOf(a).Comparable() && reflect.ValueOf(b).Comparable() {
		return a == b
	}
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	if errA == nil && errB == nil {
		return bytes.Equal(ja, jb)
	}
	return reflect.DeepEqual(a, b)
}

// TypeName returns the qualified identity of a key's dynamic type, for
// example "github.com/acme/app/screens.Profile" or "*github.com/acme/app/screens.AskName".
func TypeName(k Key) string {
	if k == nil {
		return ""
	}
	return QualifiedName(reflect.TypeOf(k))
}

// QualifiedName formats t as import path plus type name.
func QualifiedName(t reflect.Type) string {
	prefix := ""
	for t.Kind() == reflect.Pointer {
		prefix += "*"
		t = t.Elem()
	}
	if t.PkgPath() == "" {
		return prefix + t.String()
	}
	return prefix + t.PkgPath() + "." + t.Name()
}

// shortName is the unqualified type name used in log output.
func shortName(k Key) string {
	if k == nil {
		return "<nil>"
	}
	t := reflect.TypeOf(k)
	prefix := ""
	for t.Kind() == reflect.Pointer {
		prefix += "*"
		t = t.Elem()
	}
	if t.Name() == "" {
		return prefix + t.String()
	}
	return prefix + t.Name()
}

// JSONTransportable is the default transportability predicate: a key is
// transportable when it encodes to JSON.
func JSONTransportable(k Key) bool {
	if k == nil {
		return false
	}
	_, err := json.Marshal(k)
	return err == nil
}
