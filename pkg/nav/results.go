package nav

import "context"

// GoResult navigates to key and calls onResult with the value the
// destination sends back through FinishResult or SendResult.
//
// When an interceptor redirects to a key that cannot produce a T, the
// navigation still happens but onResult is dropped and the drop is
// reported. A rejected push leaves any earlier callback on key in place.
// onResult never fires if the destination leaves the stack without a result.
func GoResult[T any](c *Controller, key ResultKey[T], onResult func(T), opts ...CallOption) Outcome {
	if isNilKey(key) {
		return Outcome{Status: StatusInvalidKey}
	}
	entry := c.lookup(opts)
	resolved, out, ok := c.resolve(entry, key, ActionGoResult)
	if !ok {
		return out
	}

	rk, isResult := resolved.(ResultKey[T])
	if !isResult {
		c.emit(Event{Kind: EventResultDropped, Action: ActionGoResult, Owner: ownerID(entry), Key: resolved, From: key, Depth: -1})
		return c.push(entry, resolved, ActionGoResult)
	}

	_, restore := rk.result().register(onResult, nil)
	out = c.push(entry, resolved, ActionGoResult)
	if !out.OK() {
		restore()
	}
	return out
}

// GoResultWait navigates to key like GoResult and returns a Waiter the
// caller can block on from any goroutine. The push itself happens before
// GoResultWait returns, so call it from the UI goroutine.
//
// Unlike GoResult, a redirect to a key that cannot produce a T does not
// navigate: the waiter resolves with no value and the stack is untouched.
func GoResultWait[T any](c *Controller, key ResultKey[T], opts ...CallOption) *Waiter[T] {
	w := newWaiter[T]()
	if isNilKey(key) {
		w.outcome = Outcome{Status: StatusInvalidKey}
		w.close()
		return w
	}

	entry := c.lookup(opts)
	resolved, out, ok := c.resolve(entry, key, ActionGoResult)
	if !ok {
		w.outcome = out
		w.close()
		return w
	}

	rk, isResult := resolved.(ResultKey[T])
	if !isResult {
		c.emit(Event{Kind: EventResultDropped, Action: ActionGoResult, Owner: ownerID(entry), Key: resolved, From: key, Depth: -1})
		w.outcome = Outcome{Status: StatusCancelled, Key: resolved, Reason: "redirected away from a result key"}
		w.close()
		return w
	}

	slot := rk.result()
	gen, restore := slot.register(w.deliver, w.close)
	w.outcome = c.push(entry, resolved, ActionGoResult)
	if !w.outcome.OK() {
		restore()
		w.close()
		return w
	}
	w.slot, w.gen = slot, gen
	return w
}

// AwaitResult is GoResultWait followed by Wait.
func AwaitResult[T any](ctx context.Context, c *Controller, key ResultKey[T], opts ...CallOption) (T, Outcome, bool) {
	w := GoResultWait(c, key, opts...)
	v, ok := w.Wait(ctx)
	return v, w.Outcome(), ok
}

// FinishResult delivers value to whoever is waiting on key and then
// removes key from the stack. Delivery happens even when key was never
// pushed; the removal is then reported as StatusNotFound.
func FinishResult[T any](c *Controller, key ResultKey[T], value T, opts ...CallOption) Outcome {
	if isNilKey(key) {
		return Outcome{Status: StatusInvalidKey}
	}
	if key.SendResult(value) {
		entry := c.lookup(opts)
		c.emit(Event{Kind: EventResultDelivered, Action: ActionGoResult, Owner: ownerID(entry), Key: key, Depth: -1})
	}
	return c.Finish(key, false, opts...)
}

func ownerID(e *ownerEntry) string {
	if e == nil {
		return ""
	}
	return e.id
}
