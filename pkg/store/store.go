// Package store persists stack snapshots so a host can restore its
// navigation after a restart.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vango-dev/navstack/pkg/keycodec"
	"github.com/vango-dev/navstack/pkg/nav"
)

// ErrNotFound is returned when no snapshot exists for an id.
var ErrNotFound = errors.New("store: snapshot not found")

// ErrInvalidID is returned for ids that cannot name a snapshot.
var ErrInvalidID = errors.New("store: invalid snapshot id")

// Store saves and loads encoded snapshots by id.
type Store interface {
	Save(ctx context.Context, id string, data []byte) error
	Load(ctx context.Context, id string) ([]byte, error)
	Delete(ctx context.Context, id string) error
}

// SaveStack encodes keys with codec and saves them under id.
func SaveStack(ctx context.Context, s Store, codec *keycodec.Codec, id string, keys []nav.Key) error {
	data, err := codec.MarshalStack(keys)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", id, err)
	}
	return s.Save(ctx, id, data)
}

// LoadStack loads the snapshot saved under id and decodes it with codec.
func LoadStack(ctx context.Context, s Store, codec *keycodec.Codec, id string) ([]nav.Key, error) {
	data, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	keys, err := codec.UnmarshalStack(data)
	if err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", id, err)
	}
	return keys, nil
}

// RestoreStack is LoadStack returning a ready-to-attach stack. A missing
// snapshot yields a stack holding fallback.
func RestoreStack(ctx context.Context, s Store, codec *keycodec.Codec, id string, fallback ...nav.Key) (*nav.Stack, error) {
	keys, err := LoadStack(ctx, s, codec, id)
	if errors.Is(err, ErrNotFound) {
		return nav.NewStack(fallback...), nil
	}
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nav.NewStack(fallback...), nil
	}
	return nav.NewStack(keys...), nil
}

func validateID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}
