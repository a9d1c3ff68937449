package registry

import (
	"reflect"
	"sync"

	"github.com/vango-dev/navstack/pkg/nav"
)

// Holder is per-key state that lives exactly as long as its key stays on
// the stack. Embed it in a struct to give a handler state that survives
// re-rendering:
//
//	type ProfileModel struct {
//	    registry.Holder[Profile]
//	    Loaded bool
//	}
//
//	func NewProfileModel(k Profile) *ProfileModel {
//	    return &ProfileModel{Holder: registry.MakeHolder(k)}
//	}
type Holder[K nav.Key] struct {
	key K

	mu      sync.Mutex
	onClear []func()
	cleared bool
}

// NewHolder returns a bare holder for k.
func NewHolder[K nav.Key](k K) *Holder[K] {
	return &Holder[K]{key: k}
}

// MakeHolder returns a holder value for embedding.
func MakeHolder[K nav.Key](k K) Holder[K] {
	return Holder[K]{key: k}
}

// Key returns the key the holder belongs to.
func (h *Holder[K]) Key() K {
	return h.key
}

// OnClear registers fn to run when the key leaves the stack. On a holder
// that was already cleared, fn runs immediately.
func (h *Holder[K]) OnClear(fn func()) {
	h.mu.Lock()
	if h.cleared {
		h.mu.Unlock()
		fn()
		return
	}
	h.onClear = append(h.onClear, fn)
	h.mu.Unlock()
}

// Cleared reports whether Clear has run.
func (h *Holder[K]) Cleared() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cleared
}

// Clear runs the OnClear callbacks in reverse registration order. Only the
// first call has an effect.
func (h *Holder[K]) Clear() {
	h.mu.Lock()
	if h.cleared {
		h.mu.Unlock()
		return
	}
	h.cleared = true
	fns := h.onClear
	h.onClear = nil
	h.mu.Unlock()

	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}

// Clearer is implemented by holders that release resources.
type Clearer interface {
	Clear()
}

type holderEntry struct {
	key    nav.Key
	kind   reflect.Type
	holder any
}

// HolderStore caches holders by key. A host keeps one per stack and calls
// Sync whenever the stack changes.
type HolderStore struct {
	mu      sync.Mutex
	entries []holderEntry
}

// NewHolderStore creates an empty store.
func NewHolderStore() *HolderStore {
	return &HolderStore{}
}

// HolderFor returns the cached holder of type H for key, building one with
// construct on first use.
func HolderFor[K nav.Key, H any](s *HolderStore, key K, construct func(K) H) H {
	kind := reflect.TypeFor[H]()

	s.mu.Lock()
	for _, e := range s.entries {
		if e.kind == kind && sameKey(e.key, key) {
			s.mu.Unlock()
			return e.holder.(H)
		}
	}
	s.mu.Unlock()

	h := construct(key)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.kind == kind && sameKey(e.key, key) {
			return e.holder.(H)
		}
	}
	s.entries = append(s.entries, holderEntry{key: key, kind: kind, holder: h})
	return h
}

// Sync drops holders whose key is no longer in keys and clears them. It is
// shaped to be passed to nav.Stack.Observe.
func (s *HolderStore) Sync(keys []nav.Key) {
	s.mu.Lock()
	var dropped []any
	kept := s.entries[:0]
	for _, e := range s.entries {
		if containsKey(keys, e.key) {
			kept = append(kept, e)
		} else {
			dropped = append(dropped, e.holder)
		}
	}
	clear(s.entries[len(kept):])
	s.entries = kept
	s.mu.Unlock()

	for _, h := range dropped {
		if c, ok := h.(Clearer); ok {
			c.Clear()
		}
	}
}

// Len returns the number of cached holders.
func (s *HolderStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func containsKey(keys []nav.Key, k nav.Key) bool {
	for _, other := range keys {
		if sameKey(other, k) {
			return true
		}
	}
	return false
}

// sameKey matches pointer keys by identity and value keys by equality.
func sameKey(a, b nav.Key) bool {
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	if reflect.TypeOf(a).Kind() == reflect.Pointer {
		return a == b
	}
	return nav.Equal(a, b)
}
