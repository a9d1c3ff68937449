package nav

import (
	"context"
	"sync"
)

// Result is embedded in a key type to make it a result key: a destination
// that can hand a typed value back to whoever navigated to it.
//
//	type AskName struct {
//	    nav.Result[string]
//	    Prompt string `json:"prompt"`
//	}
//
// Result keys are used by pointer (*AskName) because the result slot is
// attached to the instance that sits on the stack.
type Result[T any] struct {
	Destination

	mu        sync.Mutex
	gen       uint64
	onResult  func(T)
	onAbandon func()
}

// ResultKey is a Key that can deliver a T. Only types embedding Result[T]
// implement it.
type ResultKey[T any] interface {
	Key
	SendResult(value T) bool
	result() *Result[T]
}

// abandoner is implemented by every Result; the controller calls it when a
// result key leaves a stack without a result.
type abandoner interface {
	abandonResult()
}

func (r *Result[T]) result() *Result[T] { return r }

// SendResult invokes the registered callback with value and clears the slot.
// It reports whether a callback was registered. A second call is a no-op.
func (r *Result[T]) SendResult(value T) bool {
	r.mu.Lock()
	fn := r.onResult
	r.onResult = nil
	r.onAbandon = nil
	r.mu.Unlock()

	if fn == nil {
		return false
	}
	fn(value)
	return true
}

// Pending reports whether a callback is waiting for a result.
func (r *Result[T]) Pending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.onResult != nil
}

// register installs a callback and returns its generation plus a func that
// puts back whatever was registered before, as long as nothing replaced
// this registration in the meantime.
func (r *Result[T]) register(onResult func(T), onAbandon func()) (uint64, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prevResult, prevAbandon := r.onResult, r.onAbandon
	r.gen++
	gen := r.gen
	r.onResult = onResult
	r.onAbandon = onAbandon

	restore := func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.gen == gen {
			r.onResult, r.onAbandon = prevResult, prevAbandon
		}
	}
	return gen, restore
}

// release clears the slot if gen is still the current registration.
func (r *Result[T]) release(gen uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gen != gen || r.onResult == nil {
		return false
	}
	r.onResult = nil
	r.onAbandon = nil
	return true
}

func (r *Result[T]) abandonResult() {
	r.mu.Lock()
	fn := r.onAbandon
	r.onResult = nil
	r.onAbandon = nil
	r.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Waiter is a pending result wait created by GoResultWait.
type Waiter[T any] struct {
	outcome Outcome
	slot    *Result[T]
	gen     uint64
	values  chan T
	done    chan struct{}
	once    sync.Once
}

func newWaiter[T any]() *Waiter[T] {
	return &Waiter[T]{
		values: make(chan T, 1),
		done:   make(chan struct{}),
	}
}

// Outcome is the result of the navigation that started the wait.
func (w *Waiter[T]) Outcome() Outcome {
	return w.outcome
}

// Wait blocks until the destination delivers a result, leaves the stack
// without one, or ctx is done. ok is false in every case but the first.
// Cancelling ctx stops the wait only; the destination stays on the stack.
func (w *Waiter[T]) Wait(ctx context.Context) (value T, ok bool) {
	select {
	case v := <-w.values:
		return v, true
	case <-w.done:
		select {
		case v := <-w.values:
			return v, true
		default:
			return value, false
		}
	case <-ctx.Done():
		w.Cancel()
		select {
		case v := <-w.values:
			return v, true
		default:
			return value, false
		}
	}
}

// Cancel deregisters the continuation so a late SendResult finds no waiter.
// It never touches the stack.
func (w *Waiter[T]) Cancel() {
	if w.slot != nil {
		w.slot.release(w.gen)
	}
	w.close()
}

func (w *Waiter[T]) deliver(v T) {
	select {
	case w.values <- v:
	default:
	}
	w.close()
}

func (w *Waiter[T]) close() {
	w.once.Do(func() { close(w.done) })
}
