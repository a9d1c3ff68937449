package nav

import "slices"

// Stack is the ordered list of destinations of one owner, bottom first.
//
// A Stack is owned by its UI host. Only the Controller mutates it, and only
// from the UI goroutine; observers registered with Observe run synchronously
// after every mutation on that same goroutine.
type Stack struct {
	keys      []Key
	observers []observer
	nextObs   int
}

type observer struct {
	id int
	fn func([]Key)
}

// NewStack returns a stack holding initial, bottom first. Restoring a
// persisted stack goes through here too.
func NewStack(initial ...Key) *Stack {
	keys := make([]Key, 0, len(initial))
	for _, k := range initial {
		if k != nil {
			keys = append(keys, k)
		}
	}
	return &Stack{keys: keys}
}

// Len returns the number of entries.
func (s *Stack) Len() int {
	return len(s.keys)
}

// Top returns the current destination, or nil when the stack is empty.
func (s *Stack) Top() Key {
	if len(s.keys) == 0 {
		return nil
	}
	return s.keys[len(s.keys)-1]
}

// Keys returns a copy of the entries, bottom first.
func (s *Stack) Keys() []Key {
	cpy := make([]Key, len(s.keys))
	copy(cpy, s.keys)
	return cpy
}

// IndexOf returns the position of the first entry equal to k, or -1.
func (s *Stack) IndexOf(k Key) int {
	for i, e := range s.keys {
		if Equal(e, k) {
			return i
		}
	}
	return -1
}

// Contains reports whether an entry equal to k is on the stack.
func (s *Stack) Contains(k Key) bool {
	return s.IndexOf(k) >= 0
}

// Observe registers fn to receive a copy of the entries after each change.
// The returned func removes the observer; fn may call it.
func (s *Stack) Observe(fn func(keys []Key)) (cancel func()) {
	id := s.nextObs
	s.nextObs++
	s.observers = append(s.observers, observer{id: id, fn: fn})
	return func() {
		for i, o := range s.observers {
			if o.id == id {
				s.observers = append(s.observers[:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

func (s *Stack) push(k Key) {
	s.keys = append(s.keys, k)
	s.notify()
}

func (s *Stack) pop() Key {
	if len(s.keys) == 0 {
		return nil
	}
	last := s.keys[len(s.keys)-1]
	s.keys[len(s.keys)-1] = nil
	s.keys = s.keys[:len(s.keys)-1]
	s.notify()
	return last
}

// remove drops the entry at i, and with through set every entry above it
// as well, in a single change. It returns the dropped entries.
func (s *Stack) remove(i int, through bool) []Key {
	end := i + 1
	if through {
		end = len(s.keys)
	}
	dropped := make([]Key, end-i)
	copy(dropped, s.keys[i:end])

	n := copy(s.keys[i:], s.keys[end:])
	clear(s.keys[i+n:])
	s.keys = s.keys[:i+n]
	s.notify()
	return dropped
}

// reset replaces every entry with only and returns the previous entries.
func (s *Stack) reset(only Key) []Key {
	prev := s.keys
	s.keys = []Key{only}
	s.notify()
	return prev
}

func (s *Stack) notify() {
	if len(s.observers) == 0 {
		return
	}
	for _, o := range slices.Clone(s.observers) {
		o.fn(s.Keys())
	}
}
