package kv

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrUnavailable is what the memory client reports when forced down.
var ErrUnavailable = errors.New("kv store unavailable")

// Memory is an in-process Client used by tests and small tooling. It mirrors
// the semantics of the pebble client, including fixed (non-sliding) scalar
// expiry. FailOps forces every operation to error, which lets tests exercise
// degraded-store paths.
type Memory struct {
	mu      sync.Mutex
	scalars map[string]string
	expiry  map[string]time.Time
	hashes  map[string]map[string]string
	sets    map[string]map[string]struct{}
	zsets   map[string]map[string]int64

	failing bool
}

// NewMemory returns an empty memory client.
func NewMemory() *Memory {
	return &Memory{
		scalars: make(map[string]string),
		expiry:  make(map[string]time.Time),
		hashes:  make(map[string]map[string]string),
		sets:    make(map[string]map[string]struct{}),
		zsets:   make(map[string]map[string]int64),
	}
}

// SetFailing toggles forced failure of all operations.
func (m *Memory) SetFailing(v bool) {
	m.mu.Lock()
	m.failing = v
	m.mu.Unlock()
}

func (m *Memory) check() error {
	if m.failing {
		return ErrUnavailable
	}
	return nil
}

func (m *Memory) HGet(key, field string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return "", false, err
	}
	h, ok := m.hashes[key]
	if !ok {
		return "", false, nil
	}
	v, ok := h[field]
	return v, ok, nil
}

func (m *Memory) HGetAll(key string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(m.hashes[key]))
	for f, v := range m.hashes[key] {
		out[f] = v
	}
	return out, nil
}

func (m *Memory) HSet(key, field, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return err
	}
	if m.hashes[key] == nil {
		m.hashes[key] = make(map[string]string)
	}
	m.hashes[key][field] = value
	return nil
}

func (m *Memory) HDel(key string, fields ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return err
	}
	for _, f := range fields {
		delete(m.hashes[key], f)
	}
	return nil
}

func (m *Memory) SAdd(key string, members ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return err
	}
	if m.sets[key] == nil {
		m.sets[key] = make(map[string]struct{})
	}
	for _, mem := range members {
		m.sets[key][mem] = struct{}{}
	}
	return nil
}

func (m *Memory) SRem(key string, members ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return err
	}
	for _, mem := range members {
		delete(m.sets[key], mem)
	}
	return nil
}

func (m *Memory) SMembers(key string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return nil, err
	}
	var out []string
	for mem := range m.sets[key] {
		out = append(out, mem)
	}
	sort.Strings(out)
	return out, nil
}

func (m *Memory) SIsMember(key, member string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return false, err
	}
	_, ok := m.sets[key][member]
	return ok, nil
}

func (m *Memory) ZAdd(key string, score int64, member string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return err
	}
	if m.zsets[key] == nil {
		m.zsets[key] = make(map[string]int64)
	}
	m.zsets[key][member] = score
	return nil
}

func (m *Memory) ZRem(key string, members ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return err
	}
	for _, mem := range members {
		delete(m.zsets[key], mem)
	}
	return nil
}

func (m *Memory) ZRevRange(key string, start, stop int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return nil, err
	}
	type entry struct {
		member string
		score  int64
	}
	all := make([]entry, 0, len(m.zsets[key]))
	for mem, sc := range m.zsets[key] {
		all = append(all, entry{mem, sc})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].score != all[j].score {
			return all[i].score > all[j].score
		}
		return all[i].member > all[j].member
	})
	var out []string
	for i, e := range all {
		if i < start {
			continue
		}
		if stop >= 0 && i > stop {
			break
		}
		out = append(out, e.member)
	}
	return out, nil
}

func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return "", false, err
	}
	if dl, ok := m.expiry[key]; ok && !time.Now().Before(dl) {
		delete(m.scalars, key)
		delete(m.expiry, key)
		return "", false, nil
	}
	v, ok := m.scalars[key]
	return v, ok, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return err
	}
	m.scalars[key] = value
	delete(m.expiry, key)
	return nil
}

func (m *Memory) Del(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return err
	}
	for _, k := range keys {
		delete(m.scalars, k)
		delete(m.expiry, k)
	}
	return nil
}

func (m *Memory) Expire(key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return err
	}
	m.expiry[key] = time.Now().Add(ttl)
	return nil
}

func (m *Memory) Keys(prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return nil, err
	}
	var out []string
	for k := range m.scalars {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *Memory) SetKeys(prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return nil, err
	}
	var out []string
	for k, members := range m.sets {
		if len(members) == 0 {
			continue
		}
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *Memory) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.check()
}

func (m *Memory) Close() error { return nil }
