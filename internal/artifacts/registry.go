package artifacts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Registry remembers the key each stage was last built with.
type Registry interface {
	Lookup(ctx context.Context, stage string) (string, bool, error)
	Record(ctx context.Context, stage, key string) error
}

// FileRegistry keeps one sidecar file per stage in the work directory.
type FileRegistry struct {
	dir string
}

func NewFileRegistry(dir string) *FileRegistry {
	return &FileRegistry{dir: dir}
}

func (r *FileRegistry) path(stage string) string {
	return filepath.Join(r.dir, "."+stage+".key")
}

func (r *FileRegistry) Lookup(_ context.Context, stage string) (string, bool, error) {
	raw, err := os.ReadFile(r.path(stage))
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s key: %w", stage, err)
	}
	return strings.TrimSpace(string(raw)), true, nil
}

func (r *FileRegistry) Record(_ context.Context, stage, key string) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create work dir: %w", err)
	}
	if err := os.WriteFile(r.path(stage), []byte(key+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write %s key: %w", stage, err)
	}
	return nil
}

// KeyStore is the slice of a key/value client the shared registry needs.
type KeyStore interface {
	GetString(ctx context.Context, key string) (string, bool, error)
	SetString(ctx context.Context, key, value string) error
}

// SharedRegistry stores stage keys in a key/value store so several machines
// working on the same directory agree on what is fresh.
type SharedRegistry struct {
	store     KeyStore
	namespace string
}

func NewSharedRegistry(store KeyStore, workDir string) *SharedRegistry {
	abs, err := filepath.Abs(workDir)
	if err != nil {
		abs = workDir
	}
	return &SharedRegistry{store: store, namespace: "sstflow:artifacts:" + abs}
}

func (r *SharedRegistry) Lookup(ctx context.Context, stage string) (string, bool, error) {
	return r.store.GetString(ctx, r.namespace+":"+stage)
}

func (r *SharedRegistry) Record(ctx context.Context, stage, key string) error {
	return r.store.SetString(ctx, r.namespace+":"+stage, key)
}
