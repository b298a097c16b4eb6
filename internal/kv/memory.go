package kv

import (
	"context"
	"sort"
	"sync"
)

// Memory keeps values in process memory. It backs `--storage memory` and tests.
type Memory struct {
	mu    sync.Mutex
	quota int64
	m     map[string][]byte

	// FailWrites, when set, is returned from every Set call.
	FailWrites error
}

func NewMemory(quota int64) *Memory {
	return &Memory{quota: quota, m: map[string][]byte{}}
}

func (s *Memory) Backend() Backend { return BackendMemory }

func (s *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *Memory) Set(ctx context.Context, key string, value []byte) error {
	key, err := normalizeKey(key)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return s.FailWrites
	}
	if err := checkQuota(s.quota, value); err != nil {
		return err
	}
	s.m[key] = append([]byte(nil), value...)
	return nil
}

func (s *Memory) Delete(ctx context.Context, key string) error {
	key, err := normalizeKey(key)
	if err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.m, key)
	s.mu.Unlock()
	return nil
}

func (s *Memory) Keys(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	out := make([]string, 0, len(s.m))
	for k := range s.m {
		out = append(out, k)
	}
	s.mu.Unlock()
	sort.Strings(out)
	return out, nil
}

func (s *Memory) Close() error { return nil }
