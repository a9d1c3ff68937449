package nav

import "reflect"

// Action is the kind of navigation request an interceptor is evaluating.
type Action int

const (
	// ActionGo pushes a destination.
	ActionGo Action = iota
	// ActionGoReplaceAll pushes a destination and drops every other entry.
	ActionGoReplaceAll
	// ActionGoResult pushes a result key and waits for its value.
	ActionGoResult
	// ActionBack and ActionFinish label events from Back and Finish.
	// Interceptors never see them.
	ActionBack
	ActionFinish
)

func (a Action) String() string {
	switch a {
	case ActionGo:
		return "go"
	case ActionGoReplaceAll:
		return "go_replace_all"
	case ActionGoResult:
		return "go_result"
	case ActionBack:
		return "back"
	case ActionFinish:
		return "finish"
	default:
		return "unknown"
	}
}

// DecisionKind discriminates a Decision.
type DecisionKind int

const (
	DecisionContinue DecisionKind = iota
	DecisionCancel
	DecisionRedirect
)

// Decision is what an interceptor returns for one request.
type Decision struct {
	Kind   DecisionKind
	Reason string
	Target Key
}

// Continue lets the request through unchanged.
func Continue() Decision {
	return Decision{Kind: DecisionContinue}
}

// Cancel stops the request. The reason is reported, never returned as an error.
func Cancel(reason string) Decision {
	return Decision{Kind: DecisionCancel, Reason: reason}
}

// Redirect replaces the candidate destination with target.
func Redirect(target Key) Decision {
	return Decision{Kind: DecisionRedirect, Target: target}
}

// Interceptor is middleware evaluated on every navigation request.
// Implementations may keep private state between calls.
type Interceptor interface {
	Intercept(key Key, action Action) Decision
}

type funcInterceptor struct {
	fn func(Key, Action) Decision
}

func (f *funcInterceptor) Intercept(key Key, action Action) Decision {
	return f.fn(key, action)
}

// InterceptFunc adapts fn to an Interceptor. Each call returns a distinct
// interceptor, so keep the value around to Remove it later.
func InterceptFunc(fn func(key Key, action Action) Decision) Interceptor {
	return &funcInterceptor{fn: fn}
}

// RedirectPolicy decides where evaluation resumes after a redirect.
type RedirectPolicy int

const (
	// RedirectContinue hands the new key to the next interceptor in order.
	// Interceptors before the redirecting one never see the new key.
	RedirectContinue RedirectPolicy = iota

	// RedirectRestart evaluates the new key from the first interceptor again.
	RedirectRestart
)

// DefaultMaxRedirects bounds RedirectRestart evaluation.
const DefaultMaxRedirects = 8

// Chain is the ordered interceptor list. It is not safe for concurrent use;
// register and evaluate on the UI goroutine.
type Chain struct {
	interceptors []Interceptor
	policy       RedirectPolicy
	maxRedirects int
	// report receives events when Process is called directly.
	report func(Event)
}

// NewChain creates an empty chain using policy.
func NewChain(policy RedirectPolicy) *Chain {
	return &Chain{policy: policy, maxRedirects: DefaultMaxRedirects}
}

// Add appends i unless it is already registered. It reports whether i was added.
func (c *Chain) Add(i Interceptor) bool {
	if i == nil || c.indexOf(i) >= 0 {
		return false
	}
	c.interceptors = append(c.interceptors, i)
	return true
}

// Remove drops i. Removing an interceptor that is not registered is a no-op.
func (c *Chain) Remove(i Interceptor) bool {
	idx := c.indexOf(i)
	if idx < 0 {
		return false
	}
	c.interceptors = append(c.interceptors[:idx], c.interceptors[idx+1:]...)
	return true
}

// Clear drops every interceptor.
func (c *Chain) Clear() {
	c.interceptors = nil
}

// Len returns the number of registered interceptors.
func (c *Chain) Len() int {
	return len(c.interceptors)
}

// SetMaxRedirects bounds the number of redirects under RedirectRestart.
func (c *Chain) SetMaxRedirects(n int) {
	if n > 0 {
		c.maxRedirects = n
	}
}

// Process runs the chain for key and returns the destination to navigate
// to, or false when an interceptor cancelled the request.
func (c *Chain) Process(key Key, action Action) (Key, bool) {
	resolved, _, ok := c.evaluate(key, action, c.report)
	return resolved, ok
}

// evaluate is Process plus the cancel reason, reporting through emit.
func (c *Chain) evaluate(key Key, action Action, emit func(Event)) (Key, string, bool) {
	if emit == nil {
		emit = func(Event) {}
	}

	current := key
	redirects := 0

	for i := 0; i < len(c.interceptors); i++ {
		if isNilKey(current) {
			return cancelNil(action, emit)
		}

		d := c.interceptors[i].Intercept(current, action)
		switch d.Kind {
		case DecisionContinue:
		case DecisionCancel:
			emit(Event{Kind: EventCancelled, Action: action, Key: current, Reason: d.Reason})
			return nil, d.Reason, false
		case DecisionRedirect:
			emit(Event{Kind: EventRedirected, Action: action, From: current, Key: d.Target})
			current = d.Target
			if c.policy == RedirectRestart {
				redirects++
				if redirects > c.maxRedirects {
					reason := "redirect limit exceeded"
					emit(Event{Kind: EventCancelled, Action: action, Key: current, Reason: reason})
					return nil, reason, false
				}
				i = -1
			}
		}
	}

	if isNilKey(current) {
		return cancelNil(action, emit)
	}
	return current, "", true
}

func cancelNil(action Action, emit func(Event)) (Key, string, bool) {
	reason := "redirected to a nil key"
	emit(Event{Kind: EventCancelled, Action: action, Reason: reason})
	return nil, reason, false
}

func (c *Chain) indexOf(i Interceptor) int {
	if i == nil || !reflect.TypeOf(i).Comparable() {
		return -1
	}
	for idx, existing := range c.interceptors {
		if reflect.TypeOf(existing) == reflect.TypeOf(i) && existing == i {
			return idx
		}
	}
	return -1
}
