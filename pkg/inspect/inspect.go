// Package inspect serves the live state of a navigation controller over
// HTTP for debugging tools.
//
// A Server is a nav.OwnerObserver. Register it with the controller and
// mount its handler:
//
//	insp := inspect.New(inspect.WithCodec(codec))
//	ctrl := nav.New(nav.WithOwnerObserver(insp))
//	go http.ListenAndServe("localhost:7070", insp.Handler())
//
// Routes:
//
//	GET /owners             attached owners, oldest first
//	GET /owners/{id}/stack  one owner's stack, bottom first
//	GET /ws                 websocket stream of stack changes
//	GET /metrics            Prometheus metrics
package inspect

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/navstack/pkg/keycodec"
	"github.com/vango-dev/navstack/pkg/nav"
)

// Entry is one key as shown to clients.
type Entry struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// OwnerInfo summarises one attached owner.
type OwnerInfo struct {
	ID        string    `json:"id"`
	Depth     int       `json:"depth"`
	Top       string    `json:"top,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MessageType discriminates websocket messages.
type MessageType string

const (
	MessageStack    MessageType = "stack"
	MessageDetached MessageType = "detached"
)

// Message is pushed to websocket clients on every change.
type Message struct {
	Type  MessageType `json:"type"`
	Owner string      `json:"owner"`
	Keys  []Entry     `json:"keys,omitempty"`
	At    time.Time   `json:"at"`
}

type watched struct {
	id      string
	seq     uint64
	cancel  func()
	keys    []Entry
	updated time.Time
}

// Server records stack snapshots pushed by the UI goroutine and serves them
// to any goroutine. It never reads a nav.Stack outside its observer
// callback.
type Server struct {
	codec    *keycodec.Codec
	logger   *slog.Logger
	gatherer prometheus.Gatherer
	now      func() time.Time

	mu     sync.RWMutex
	owners map[string]*watched
	seq    uint64

	hub *hub
}

// Option configures a Server.
type Option func(*Server)

// WithCodec names keys by their registered codec name instead of their Go
// type.
func WithCodec(c *keycodec.Codec) Option {
	return func(s *Server) {
		s.codec = c
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithGatherer serves g on /metrics. Default: prometheus.DefaultGatherer.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// New creates a Server.
func New(opts ...Option) *Server {
	s := &Server{
		logger:   slog.Default(),
		gatherer: prometheus.DefaultGatherer,
		now:      time.Now,
		owners:   make(map[string]*watched),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.hub = newHub(s.logger)
	return s
}

// OwnerAttached implements nav.OwnerObserver. It is called on the UI
// goroutine and subscribes to the stack, dropping the subscription of a
// stack previously attached under id.
func (s *Server) OwnerAttached(id string, stack *nav.Stack) {
	s.mu.Lock()
	s.seq++
	w := &watched{id: id, seq: s.seq}
	old, replaced := s.owners[id]
	if replaced {
		w.seq = old.seq
	}
	s.owners[id] = w
	s.mu.Unlock()

	if replaced && old.cancel != nil {
		old.cancel()
	}

	s.update(w, stack.Keys())
	var cancel func()
	cancel = stack.Observe(func(keys []nav.Key) {
		if !s.update(w, keys) {
			cancel()
		}
	})
	s.mu.Lock()
	w.cancel = cancel
	s.mu.Unlock()
}

// OwnerDetached implements nav.OwnerObserver. It may run off the UI
// goroutine, so the stack subscription is removed by the next change of
// that stack.
func (s *Server) OwnerDetached(id string) {
	s.mu.Lock()
	_, ok := s.owners[id]
	delete(s.owners, id)
	s.mu.Unlock()
	if !ok {
		return
	}
	s.hub.broadcast(Message{Type: MessageDetached, Owner: id, At: s.now()})
}

// update stores keys for w and reports false once w has been detached or
// replaced.
func (s *Server) update(w *watched, keys []nav.Key) bool {
	entries := s.encode(keys)
	at := s.now()

	s.mu.Lock()
	if s.owners[w.id] != w {
		s.mu.Unlock()
		return false
	}
	w.keys = entries
	w.updated = at
	s.mu.Unlock()

	s.hub.broadcast(Message{Type: MessageStack, Owner: w.id, Keys: entries, At: at})
	return true
}

func (s *Server) encode(keys []nav.Key) []Entry {
	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, s.entry(k))
	}
	return entries
}

func (s *Server) entry(k nav.Key) Entry {
	if s.codec != nil {
		if env, err := s.codec.Encode(k); err == nil {
			return Entry{Type: env.Type, Data: env.Data}
		}
	}
	e := Entry{Type: nav.TypeName(k)}
	if data, err := json.Marshal(k); err == nil {
		e.Data = data
	}
	return e
}

// Owners returns a summary of every attached owner, oldest first.
func (s *Server) Owners() []OwnerInfo {
	s.mu.RLock()
	list := make([]*watched, 0, len(s.owners))
	for _, w := range s.owners {
		list = append(list, w)
	}
	s.mu.RUnlock()

	sortWatched(list)
	out := make([]OwnerInfo, len(list))
	for i, w := range list {
		out[i] = s.info(w)
	}
	return out
}

// Snapshot returns the last known keys of owner id.
func (s *Server) Snapshot(id string) ([]Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.owners[id]
	if !ok {
		return nil, false
	}
	return append([]Entry(nil), w.keys...), true
}

func (s *Server) info(w *watched) OwnerInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info := OwnerInfo{ID: w.id, Depth: len(w.keys), UpdatedAt: w.updated}
	if n := len(w.keys); n > 0 {
		info.Top = w.keys[n-1].Type
	}
	return info
}

// messages returns the current state as stack messages, oldest owner first.
func (s *Server) messages() []Message {
	s.mu.RLock()
	list := make([]*watched, 0, len(s.owners))
	for _, w := range s.owners {
		list = append(list, w)
	}
	s.mu.RUnlock()
	sortWatched(list)

	out := make([]Message, 0, len(list))
	s.mu.RLock()
	for _, w := range list {
		out = append(out, Message{Type: MessageStack, Owner: w.id, Keys: w.keys, At: w.updated})
	}
	s.mu.RUnlock()
	return out
}

// ClientCount returns the number of connected websocket clients.
func (s *Server) ClientCount() int {
	return s.hub.count()
}

// Close disconnects every websocket client.
func (s *Server) Close() {
	s.hub.close()
}
