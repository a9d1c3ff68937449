package nav

import (
	"log/slog"
	"runtime"
	"sync"
	"testing"
)

type Home struct {
	Destination
}

type Profile struct {
	Destination
	UserID int `json:"userId"`
}

type Login struct {
	Destination
}

type Settings struct {
	Destination
}

// Broken cannot be encoded to JSON.
type Broken struct {
	Destination
	Ch chan int
}

// Search is comparable as a type, but == panics once Filter holds a slice.
type Search struct {
	Destination
	Filter any `json:"filter"`
}

type AskName struct {
	Result[string]
	Prompt string `json:"prompt"`
}

type PickColor struct {
	Result[int]
}

type window struct {
	title string
	buf   [64]byte
	next  *window
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Report(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) kinds() []EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventKind, len(r.events))
	for i, e := range r.events {
		out[i] = e.Kind
	}
	return out
}

func (r *recorder) action(kind EventKind) (Action, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.Kind == kind {
			return e.Action, true
		}
	}
	return 0, false
}

func (r *recorder) has(kind EventKind) bool {
	for _, k := range r.kinds() {
		if k == kind {
			return true
		}
	}
	return false
}

// newTestController returns a controller with one attached window whose
// stack starts at initial.
func newTestController(t *testing.T, initial ...Key) (*Controller, *Stack, *recorder, *window) {
	t.Helper()
	rec := &recorder{}
	c := New(WithLogger(slog.New(slog.DiscardHandler)), WithReporter(rec))
	w := &window{title: t.Name()}
	t.Cleanup(func() { runtime.KeepAlive(w) })
	s := NewStack(initial...)
	if id := c.Attach(OwnerOf(w), s); id == "" {
		t.Fatal("Attach returned an empty id")
	}
	return c, s, rec, w
}
