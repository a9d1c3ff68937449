package nav

import (
	"log/slog"
	"reflect"
	"runtime"
	"sync"
	"weak"

	"github.com/google/uuid"
)

// Status is the outcome of a controller operation.
type Status int

const (
	StatusPushed Status = iota
	StatusReplaced
	StatusPopped
	StatusFinished
	StatusCancelled
	StatusDuplicateTop
	StatusNotTransportable
	StatusLastEntry
	StatusNotFound
	StatusNoStack
	StatusInvalidKey
)

var statusNames = map[Status]string{
	StatusPushed:           "pushed",
	StatusReplaced:         "replaced",
	StatusPopped:           "popped",
	StatusFinished:         "finished",
	StatusCancelled:        "cancelled",
	StatusDuplicateTop:     "duplicate_top",
	StatusNotTransportable: "not_transportable",
	StatusLastEntry:        "last_entry",
	StatusNotFound:         "not_found",
	StatusNoStack:          "no_stack",
	StatusInvalidKey:       "invalid_key",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// Outcome describes what an operation did. Rejections are outcomes, not
// errors: callers branch on Status.
type Outcome struct {
	Status Status
	// Key is the destination after interceptor redirects.
	Key Key
	// Reason is the interceptor's reason when Status is StatusCancelled.
	Reason string
}

// OK reports whether the stack changed.
func (o Outcome) OK() bool {
	switch o.Status {
	case StatusPushed, StatusReplaced, StatusPopped, StatusFinished:
		return true
	}
	return false
}

// Owner identifies the UI host a stack belongs to. The controller only keeps
// a weak reference to it.
type Owner struct {
	ref     any
	cleanup func(fn func()) runtime.Cleanup
}

// OwnerOf returns the Owner for p. Calling it twice with the same pointer
// yields owners that address the same stack. An Owner never keeps p alive.
func OwnerOf[O any](p *O) Owner {
	if p == nil {
		return Owner{}
	}
	wp := weak.Make(p)
	return Owner{
		ref: wp,
		cleanup: func(fn func()) runtime.Cleanup {
			strong := wp.Value()
			if strong == nil {
				return runtime.Cleanup{}
			}
			return runtime.AddCleanup(strong, func(f func()) { f() }, fn)
		},
	}
}

// OwnerObserver is told when owners come and go. OwnerDetached also fires
// when a collected owner is dropped, from a runtime goroutine, so
// implementations must be safe for concurrent use.
type OwnerObserver interface {
	OwnerAttached(id string, stack *Stack)
	OwnerDetached(id string)
}

type ownerEntry struct {
	id      string
	ref     any
	stack   *Stack
	cleanup runtime.Cleanup
}

// Controller manages one stack per owner and the interceptor chain that
// every navigation request goes through.
//
// Build one with New at application start and pass it to every call site.
// Stack operations and chain evaluation are meant for the UI goroutine and
// take no locks; the owner table is locked because collected owners are
// dropped from a runtime goroutine.
type Controller struct {
	mu     sync.Mutex
	owners []*ownerEntry

	chain         *Chain
	logger        *slog.Logger
	reporter      Reporter
	transportable func(Key) bool
	observers     []OwnerObserver
	newID         func() string
}

// Option configures a Controller.
type Option func(*controllerConfig)

type controllerConfig struct {
	logger        *slog.Logger
	reporters     []Reporter
	transportable func(Key) bool
	policy        RedirectPolicy
	maxRedirects  int
	observers     []OwnerObserver
	newID         func() string
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *controllerConfig) {
		c.logger = logger
	}
}

// WithReporter adds observability sinks next to the built-in log reporter.
func WithReporter(reporters ...Reporter) Option {
	return func(c *controllerConfig) {
		c.reporters = append(c.reporters, reporters...)
	}
}

// WithTransportable sets the predicate deciding whether a key may be
// pushed. Default: JSONTransportable.
func WithTransportable(fn func(Key) bool) Option {
	return func(c *controllerConfig) {
		c.transportable = fn
	}
}

// WithRedirectPolicy chooses how the chain resumes after a redirect.
// Default: RedirectContinue.
func WithRedirectPolicy(p RedirectPolicy) Option {
	return func(c *controllerConfig) {
		c.policy = p
	}
}

// WithMaxRedirects bounds redirects under RedirectRestart.
func WithMaxRedirects(n int) Option {
	return func(c *controllerConfig) {
		c.maxRedirects = n
	}
}

// WithOwnerObserver registers an observer for attach and detach.
func WithOwnerObserver(o OwnerObserver) Option {
	return func(c *controllerConfig) {
		c.observers = append(c.observers, o)
	}
}

// WithIDGenerator overrides how owner ids are minted. Default: uuid.NewString.
func WithIDGenerator(fn func() string) Option {
	return func(c *controllerConfig) {
		c.newID = fn
	}
}

// New creates a Controller.
func New(opts ...Option) *Controller {
	cfg := controllerConfig{
		transportable: JSONTransportable,
		maxRedirects:  DefaultMaxRedirects,
		newID:         uuid.NewString,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	reporters := append(multiReporter{LogReporter{Logger: cfg.logger}}, cfg.reporters...)
	c := &Controller{
		chain:         NewChain(cfg.policy),
		logger:        cfg.logger,
		reporter:      reporters,
		transportable: cfg.transportable,
		observers:     cfg.observers,
		newID:         cfg.newID,
	}
	c.chain.SetMaxRedirects(cfg.maxRedirects)
	c.chain.report = c.reporter.Report
	return c
}

// Chain returns the interceptor chain.
func (c *Controller) Chain() *Chain {
	return c.chain
}

// AddInterceptor registers i at the end of the chain unless already present.
func (c *Controller) AddInterceptor(i Interceptor) bool {
	return c.chain.Add(i)
}

// RemoveInterceptor drops i from the chain.
func (c *Controller) RemoveInterceptor(i Interceptor) bool {
	return c.chain.Remove(i)
}

// ClearInterceptors drops every interceptor.
func (c *Controller) ClearInterceptors() {
	c.chain.Clear()
}

// =============================================================================
// Owners
// =============================================================================

// Attach associates stack with owner and makes owner the most recent one.
// Attaching the same stack again is a no-op. It returns the owner id.
func (c *Controller) Attach(owner Owner, stack *Stack) string {
	if owner.ref == nil || stack == nil {
		c.logger.Error("attach needs an owner and a stack")
		return ""
	}

	c.mu.Lock()
	for i, e := range c.owners {
		if e.ref != owner.ref {
			continue
		}
		if e.stack == stack {
			c.mu.Unlock()
			return e.id
		}
		e.stack = stack
		c.owners = append(append(c.owners[:i:i], c.owners[i+1:]...), e)
		c.mu.Unlock()
		c.notifyAttached(e.id, stack)
		return e.id
	}

	e := &ownerEntry{id: c.newID(), ref: owner.ref, stack: stack}
	c.owners = append(c.owners, e)
	id := e.id
	e.cleanup = owner.cleanup(func() { c.forget(id) })
	c.mu.Unlock()

	c.logger.Debug("owner attached", "owner", id, "depth", stack.Len())
	c.notifyAttached(id, stack)
	return id
}

// Detach removes owner's association. Detaching an unknown owner is a no-op.
func (c *Controller) Detach(owner Owner) {
	if owner.ref == nil {
		return
	}
	c.mu.Lock()
	var found *ownerEntry
	for i, e := range c.owners {
		if e.ref == owner.ref {
			found = e
			c.owners = append(c.owners[:i], c.owners[i+1:]...)
			break
		}
	}
	c.mu.Unlock()

	if found == nil {
		return
	}
	found.cleanup.Stop()
	c.logger.Debug("owner detached", "owner", found.id)
	c.notifyDetached(found.id)
}

// Owners returns the attached owner ids, oldest first.
func (c *Controller) Owners() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, len(c.owners))
	for i, e := range c.owners {
		ids[i] = e.id
	}
	return ids
}

// forget drops an owner that was collected without Detach.
func (c *Controller) forget(id string) {
	c.mu.Lock()
	removed := false
	for i, e := range c.owners {
		if e.id == id {
			c.owners = append(c.owners[:i], c.owners[i+1:]...)
			removed = true
			break
		}
	}
	c.mu.Unlock()

	if removed {
		c.logger.Debug("owner collected without detach", "owner", id)
		c.notifyDetached(id)
	}
}

func (c *Controller) notifyAttached(id string, stack *Stack) {
	for _, o := range c.observers {
		o.OwnerAttached(id, stack)
	}
}

func (c *Controller) notifyDetached(id string) {
	for _, o := range c.observers {
		o.OwnerDetached(id)
	}
}

// CallOption addresses an operation to an owner.
type CallOption func(*call)

type call struct {
	owner Owner
	id    string
}

// On addresses the stack of owner.
func On(owner Owner) CallOption {
	return func(c *call) {
		c.owner = owner
	}
}

// OnID addresses the stack of the owner with the given id.
func OnID(id string) CallOption {
	return func(c *call) {
		c.id = id
	}
}

// lookup finds the addressed owner. Without an owner it picks the most
// recently attached one, which is only well defined for single-window hosts.
func (c *Controller) lookup(opts []CallOption) *ownerEntry {
	var target call
	for _, opt := range opts {
		opt(&target)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case target.id != "":
		for _, e := range c.owners {
			if e.id == target.id {
				return e
			}
		}
		return nil
	case target.owner.ref != nil:
		for _, e := range c.owners {
			if e.ref == target.owner.ref {
				return e
			}
		}
		return nil
	default:
		if len(c.owners) == 0 {
			return nil
		}
		return c.owners[len(c.owners)-1]
	}
}

// =============================================================================
// Navigation
// =============================================================================

// Go runs the chain with ActionGo and pushes the resolved key.
//
// The push is rejected when the key equals the current top or is not
// transportable; both are reported and leave the stack unchanged.
func (c *Controller) Go(key Key, opts ...CallOption) Outcome {
	entry := c.lookup(opts)
	resolved, out, ok := c.resolve(entry, key, ActionGo)
	if !ok {
		return out
	}
	return c.push(entry, resolved, ActionGo)
}

// GoReplaceAll runs the chain with ActionGoReplaceAll, pushes the resolved
// key and drops every other entry, leaving exactly [resolved].
func (c *Controller) GoReplaceAll(key Key, opts ...CallOption) Outcome {
	entry := c.lookup(opts)
	resolved, out, ok := c.resolve(entry, key, ActionGoReplaceAll)
	if !ok {
		return out
	}
	if entry == nil {
		return c.noStack(resolved, ActionGoReplaceAll)
	}

	st := entry.stack
	keep := resolved
	if top := st.Top(); top != nil && Equal(top, resolved) {
		keep = top
	} else if !c.transportable(resolved) {
		return c.notTransportable(entry, resolved, ActionGoReplaceAll)
	}

	prev := st.reset(keep)
	abandon(prev, st.keys)
	c.emit(Event{Kind: EventReplacedAll, Action: ActionGoReplaceAll, Owner: entry.id, Key: keep, Depth: st.Len()})
	return Outcome{Status: StatusReplaced, Key: keep}
}

// Back pops the top entry unless it is the only one left.
func (c *Controller) Back(opts ...CallOption) Outcome {
	entry := c.lookup(opts)
	if entry == nil {
		return c.noStack(nil, ActionBack)
	}

	st := entry.stack
	if st.Len() <= 1 {
		c.emit(Event{Kind: EventLastEntry, Action: ActionBack, Owner: entry.id, Key: st.Top(), Depth: st.Len()})
		return Outcome{Status: StatusLastEntry, Key: st.Top()}
	}

	popped := st.pop()
	abandon([]Key{popped}, st.keys)
	c.emit(Event{Kind: EventPopped, Action: ActionBack, Owner: entry.id, Key: popped, Depth: st.Len()})
	return Outcome{Status: StatusPopped, Key: popped}
}

// Finish removes key wherever it sits. With removeTrailing, every entry
// above it is dropped as well. Unlike Back, Finish may empty the stack.
// A key that is not on the stack is a silent no-op.
func (c *Controller) Finish(key Key, removeTrailing bool, opts ...CallOption) Outcome {
	if isNilKey(key) {
		return Outcome{Status: StatusInvalidKey}
	}
	entry := c.lookup(opts)
	if entry == nil {
		return Outcome{Status: StatusNoStack, Key: key}
	}

	st := entry.stack
	idx := -1
	for i, k := range st.keys {
		if sameInstance(k, key) {
			idx = i
			break
		}
	}
	if idx < 0 {
		idx = st.IndexOf(key)
	}
	if idx < 0 {
		return Outcome{Status: StatusNotFound, Key: key}
	}

	dropped := st.remove(idx, removeTrailing)
	abandon(dropped, st.keys)
	c.emit(Event{Kind: EventFinished, Action: ActionFinish, Owner: entry.id, Key: dropped[0], Depth: st.Len()})
	return Outcome{Status: StatusFinished, Key: dropped[0]}
}

// Top returns the addressed stack's current destination, or nil.
func (c *Controller) Top(opts ...CallOption) Key {
	if entry := c.lookup(opts); entry != nil {
		return entry.stack.Top()
	}
	return nil
}

// Stack returns the addressed stack, or nil when no owner matches.
func (c *Controller) Stack(opts ...CallOption) *Stack {
	if entry := c.lookup(opts); entry != nil {
		return entry.stack
	}
	return nil
}

// Keys returns a copy of the addressed stack's entries.
func (c *Controller) Keys(opts ...CallOption) []Key {
	if entry := c.lookup(opts); entry != nil {
		return entry.stack.Keys()
	}
	return nil
}

func (c *Controller) resolve(entry *ownerEntry, key Key, action Action) (Key, Outcome, bool) {
	if isNilKey(key) {
		return nil, Outcome{Status: StatusInvalidKey}, false
	}

	owner := ""
	if entry != nil {
		owner = entry.id
	}
	emit := func(e Event) {
		e.Owner = owner
		e.Depth = -1
		c.emit(e)
	}

	resolved, reason, ok := c.chain.evaluate(key, action, emit)
	if !ok {
		return nil, Outcome{Status: StatusCancelled, Reason: reason}, false
	}
	if isNilKey(resolved) {
		reason := "redirected to a nil key"
		emit(Event{Kind: EventCancelled, Action: action, Reason: reason})
		return nil, Outcome{Status: StatusCancelled, Reason: reason}, false
	}
	return resolved, Outcome{}, true
}

func (c *Controller) push(entry *ownerEntry, key Key, action Action) Outcome {
	if entry == nil {
		return c.noStack(key, action)
	}

	st := entry.stack
	if top := st.Top(); top != nil && Equal(top, key) {
		c.emit(Event{Kind: EventDuplicateTop, Action: action, Owner: entry.id, Key: key, Depth: st.Len()})
		return Outcome{Status: StatusDuplicateTop, Key: key}
	}
	if !c.transportable(key) {
		return c.notTransportable(entry, key, action)
	}

	st.push(key)
	c.emit(Event{Kind: EventPushed, Action: action, Owner: entry.id, Key: key, Depth: st.Len()})
	return Outcome{Status: StatusPushed, Key: key}
}

func (c *Controller) noStack(key Key, action Action) Outcome {
	c.emit(Event{Kind: EventNoStack, Action: action, Key: key, Depth: -1})
	return Outcome{Status: StatusNoStack, Key: key}
}

func (c *Controller) notTransportable(entry *ownerEntry, key Key, action Action) Outcome {
	c.emit(Event{Kind: EventNotTransportable, Action: action, Owner: entry.id, Key: key, Depth: entry.stack.Len()})
	return Outcome{Status: StatusNotTransportable, Key: key}
}

func (c *Controller) emit(e Event) {
	c.reporter.Report(e)
}

// abandon resolves result keys that left the stack without a result.
// Instances still present in kept are left alone.
func abandon(removed []Key, kept []Key) {
	for _, k := range removed {
		a, ok := k.(abandoner)
		if !ok {
			continue
		}
		still := false
		for _, other := range kept {
			if sameInstance(k, other) {
				still = true
				break
			}
		}
		if !still {
			a.abandonResult()
		}
	}
}

func sameInstance(a, b Key) bool {
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || ta.Kind() != reflect.Pointer {
		return false
	}
	return a == b
}

func isNilKey(k Key) bool {
	if k == nil {
		return true
	}
	v := reflect.ValueOf(k)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
