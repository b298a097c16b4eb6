package kv

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const fileExt = ".blob"

// File stores each key as one file under <dir>/kv. Writes go through a temp
// file + rename so a crash never leaves a half-written value behind.
type File struct {
	dir   string
	quota int64
}

func OpenFile(dir string, quota int64) (*File, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("kv: file backend needs a data dir")
	}
	root := filepath.Join(dir, "kv")
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &File{dir: root, quota: quota}, nil
}

func (f *File) Backend() Backend { return BackendFile }

func (f *File) pathFor(key string) string {
	// Keys like "todo.tasks.v1" are already safe; escape anything else.
	return filepath.Join(f.dir, url.PathEscape(key)+fileExt)
}

func (f *File) Get(ctx context.Context, key string) ([]byte, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(f.pathFor(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return b, err
}

func (f *File) Set(ctx context.Context, key string, value []byte) error {
	key, err := normalizeKey(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkQuota(f.quota, value); err != nil {
		return err
	}
	return atomicWriteFile(f.dir, "*.tmp", f.pathFor(key), value, 0o644)
}

func (f *File) Delete(ctx context.Context, key string) error {
	key, err := normalizeKey(key)
	if err != nil {
		return err
	}
	err = os.Remove(f.pathFor(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (f *File) Keys(ctx context.Context) ([]string, error) {
	ents, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, err
	}
	out := []string{}
	for _, e := range ents {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}
		k, err := url.PathUnescape(strings.TrimSuffix(name, fileExt))
		if err != nil {
			continue
		}
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}

func (f *File) Close() error { return nil }

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	tf, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := tf.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := tf.Write(b); err != nil {
		_ = tf.Close()
		return err
	}
	if err := tf.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}
