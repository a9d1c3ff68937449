// Package keycodec encodes destination keys and whole stacks so they can
// outlive the process that created them.
//
// Keys are written as an envelope naming their registered type:
//
//	{"type":"profile","data":{"userId":7}}
//
// Only registered types decode. Result slots are never encoded: a restored
// result key has nobody waiting on it.
package keycodec

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/vango-dev/navstack/pkg/nav"
)

// ErrUnknownType is returned for keys whose type was never registered.
var ErrUnknownType = errors.New("keycodec: unknown key type")

// ErrDuplicateName is returned when a name or type is registered twice.
var ErrDuplicateName = errors.New("keycodec: duplicate registration")

// SnapshotVersion is written into every encoded stack.
const SnapshotVersion = 1

// Envelope is the wire form of one key.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Snapshot is the wire form of a stack, bottom first.
type Snapshot struct {
	Version int        `json:"version"`
	Keys    []Envelope `json:"keys"`
}

// Codec maps key types to stable names. It is safe for concurrent use.
type Codec struct {
	mu     sync.RWMutex
	byName map[string]reflect.Type
	byType map[reflect.Type]string
}

// New returns an empty codec.
func New() *Codec {
	return &Codec{
		byName: make(map[string]reflect.Type),
		byType: make(map[reflect.Type]string),
	}
}

// Register adds K under name. An empty name uses the qualified type name.
// Result keys register as their pointer type:
//
//	keycodec.Register[*screens.AskName](codec, "ask-name")
func Register[K nav.Key](c *Codec, name string) error {
	t := reflect.TypeFor[K]()
	if t.Kind() == reflect.Interface {
		return fmt.Errorf("keycodec: %s is not a concrete key type", t)
	}
	if t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Pointer {
		return fmt.Errorf("keycodec: %s: pointer to pointer is not supported", t)
	}
	if name == "" {
		name = nav.QualifiedName(t)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.byName[name]; ok {
		return fmt.Errorf("%w: name %q already used by %s", ErrDuplicateName, name, existing)
	}
	if existing, ok := c.byType[t]; ok {
		return fmt.Errorf("%w: %s already registered as %q", ErrDuplicateName, t, existing)
	}
	c.byName[name] = t
	c.byType[t] = name
	return nil
}

// MustRegister is Register that panics on error, for package init.
func MustRegister[K nav.Key](c *Codec, name string) {
	if err := Register[K](c, name); err != nil {
		panic(err)
	}
}

// Name returns the registered name of k's type.
func (c *Codec) Name(k nav.Key) (string, bool) {
	if k == nil {
		return "", false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	name, ok := c.byType[reflect.TypeOf(k)]
	return name, ok
}

// Names returns every registered name.
func (c *Codec) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.byName))
	for n := range c.byName {
		names = append(names, n)
	}
	return names
}

// Transportable reports whether k is registered and encodes cleanly. It
// plugs into nav.WithTransportable.
func (c *Codec) Transportable(k nav.Key) bool {
	_, err := c.Marshal(k)
	return err == nil
}

// Encode returns the envelope of k without serialising it.
func (c *Codec) Encode(k nav.Key) (Envelope, error) {
	return c.envelope(k)
}

// Marshal encodes one key into its envelope.
func (c *Codec) Marshal(k nav.Key) ([]byte, error) {
	env, err := c.envelope(k)
	if err != nil {
		return nil, err
	}
	return json.Marshal(env)
}

// Unmarshal decodes an envelope produced by Marshal.
func (c *Codec) Unmarshal(data []byte) (nav.Key, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("keycodec: decode envelope: %w", err)
	}
	return c.decode(env)
}

// MarshalStack encodes keys, bottom first, as a Snapshot.
func (c *Codec) MarshalStack(keys []nav.Key) ([]byte, error) {
	snap := Snapshot{Version: SnapshotVersion, Keys: make([]Envelope, 0, len(keys))}
	for i, k := range keys {
		env, err := c.envelope(k)
		if err != nil {
			return nil, fmt.Errorf("keycodec: entry %d: %w", i, err)
		}
		snap.Keys = append(snap.Keys, env)
	}
	return json.Marshal(snap)
}

// UnmarshalStack decodes a Snapshot. A single undecodable entry fails the
// whole stack.
func (c *Codec) UnmarshalStack(data []byte) ([]nav.Key, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("keycodec: decode snapshot: %w", err)
	}
	if snap.Version != SnapshotVersion {
		return nil, fmt.Errorf("keycodec: unsupported snapshot version %d", snap.Version)
	}

	keys := make([]nav.Key, 0, len(snap.Keys))
	for i, env := range snap.Keys {
		k, err := c.decode(env)
		if err != nil {
			return nil, fmt.Errorf("keycodec: entry %d: %w", i, err)
		}
		keys = append(keys, k)
	}
	return keys, nil
}

func (c *Codec) envelope(k nav.Key) (Envelope, error) {
	if k == nil {
		return Envelope{}, fmt.Errorf("keycodec: nil key")
	}
	name, ok := c.Name(k)
	if !ok {
		return Envelope{}, fmt.Errorf("%w: %s", ErrUnknownType, nav.TypeName(k))
	}
	data, err := json.Marshal(k)
	if err != nil {
		return Envelope{}, fmt.Errorf("keycodec: encode %s: %w", name, err)
	}
	return Envelope{Type: name, Data: data}, nil
}

func (c *Codec) decode(env Envelope) (nav.Key, error) {
	c.mu.RLock()
	t, ok := c.byName[env.Type]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}

	base := t
	if t.Kind() == reflect.Pointer {
		base = t.Elem()
	}
	ptr := reflect.New(base)
	if len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, ptr.Interface()); err != nil {
			return nil, fmt.Errorf("keycodec: decode %s: %w", env.Type, err)
		}
	}

	if t.Kind() == reflect.Pointer {
		return ptr.Interface().(nav.Key), nil
	}
	return ptr.Elem().Interface().(nav.Key), nil
}
