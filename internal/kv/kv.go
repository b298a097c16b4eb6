// Package kv is the persistence adapter: a small key-value blob store with
// interchangeable backends (SQLite, plain files, memory).
package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned by Get when the key has never been written.
	ErrNotFound = errors.New("kv: key not found")

	// ErrQuotaExceeded is returned by Set when a value is larger than the
	// configured per-value quota. Callers treat it like any other write failure.
	ErrQuotaExceeded = errors.New("kv: quota exceeded")
)

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	Backend() Backend
	Close() error
}

type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendFile   Backend = "file"
	BackendMemory Backend = "memory"
)

func ParseBackend(s string) (Backend, error) {
	switch Backend(strings.ToLower(strings.TrimSpace(s))) {
	case "", BackendSQLite:
		return BackendSQLite, nil
	case BackendFile:
		return BackendFile, nil
	case BackendMemory:
		return BackendMemory, nil
	default:
		return "", fmt.Errorf("unknown storage backend: %q (want sqlite|file|memory)", s)
	}
}

type Options struct {
	Backend Backend
	// Dir is the data directory for on-disk backends.
	Dir string
	// QuotaBytes caps the size of a single value. Zero means unlimited.
	QuotaBytes int64
}

// Open returns a ready-to-use store for opts.Backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendSQLite:
		return OpenSQLite(ctx, opts.Dir, opts.QuotaBytes)
	case BackendFile:
		return OpenFile(opts.Dir, opts.QuotaBytes)
	case BackendMemory:
		return NewMemory(opts.QuotaBytes), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %q", opts.Backend)
	}
}

func normalizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("kv: empty key")
	}
	return key, nil
}

func checkQuota(quota int64, value []byte) error {
	if quota > 0 && int64(len(value)) > quota {
		return fmt.Errorf("%w: %d bytes > %d", ErrQuotaExceeded, len(value), quota)
	}
	return nil
}
