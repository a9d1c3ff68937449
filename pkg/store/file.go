package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// File stores one JSON file per snapshot in a directory.
type File struct {
	dir string
}

// NewFile creates a File store rooted at dir, creating it if needed.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("store: create %s: %w", dir, err)
	}
	return &File{dir: dir}, nil
}

// Dir returns the directory snapshots are written to.
func (f *File) Dir() string {
	return f.dir
}

// Save implements Store. The snapshot is written to a temp file and renamed
// into place so readers never see a partial write.
func (f *File) Save(ctx context.Context, id string, data []byte) error {
	if err := validateID(id); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.dir, id+".*.tmp")
	if err != nil {
		return fmt.Errorf("store: save %s: %w", id, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("store: save %s: %w", id, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store: save %s: %w", id, err)
	}
	if err := os.Rename(tmp.Name(), f.path(id)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store: save %s: %w", id, err)
	}
	return nil
}

// Load implements Store.
func (f *File) Load(ctx context.Context, id string) ([]byte, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: load %s: %w", id, err)
	}
	return data, nil
}

// Delete implements Store. Deleting a missing snapshot is not an error.
func (f *File) Delete(_ context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	err := os.Remove(f.path(id))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("store: delete %s: %w", id, err)
	}
	return nil
}

func (f *File) path(id string) string {
	return filepath.Join(f.dir, id+".json")
}
