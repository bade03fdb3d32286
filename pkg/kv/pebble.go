package kv

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/pebble"

	"foliodb/pkg/logger"
)

// Key namespaces inside pebble. A 0x00 separator keeps logical names (which
// freely contain ':') from colliding across namespaces.
const (
	nsScalar = "k"
	nsExpiry = "x"
	nsHash   = "h"
	nsSet    = "s"
	nsZSet   = "z"
	nsZScore = "m"
	sep      = "\x00"
)

// Pebble is the durable Client implementation. All logical structures are
// encoded as flat pebble keys; ordering of sorted sets comes from a
// zero-padded score segment so lexicographic order matches numeric order.
type Pebble struct {
	db   *pebble.DB
	path string
}

// OpenPebble opens (or creates) the store at path.
func OpenPebble(path string) (*Pebble, error) {
	logger.Info("opening_kv_store", "path", path)
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		logger.Error("kv_store_open_failed", "path", path, "error", err)
		return nil, err
	}
	logger.Info("kv_store_opened", "path", path)
	return &Pebble{db: db, path: path}, nil
}

// Close closes the underlying pebble handle.
func (p *Pebble) Close() error {
	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	logger.Info("kv_store_closed", "path", p.path)
	return err
}

func padScore(score int64) string {
	if score < 0 {
		score = 0
	}
	return fmt.Sprintf("%020d", score)
}

func prefixUpperBound(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil // whole keyspace
}

func (p *Pebble) iter(prefix []byte) (*pebble.Iterator, error) {
	return p.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixUpperBound(prefix),
	})
}

func (p *Pebble) get(raw []byte) (string, bool, error) {
	v, closer, err := p.db.Get(raw)
	if err == pebble.ErrNotFound {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	out := string(v)
	if closer != nil {
		_ = closer.Close()
	}
	return out, true, nil
}

// HGet returns a single hash field.
func (p *Pebble) HGet(key, field string) (string, bool, error) {
	start := time.Now()
	v, ok, err := p.get([]byte(nsHash + sep + key + sep + field))
	observe("hget", start, err)
	return v, ok, err
}

// HGetAll returns every field of a hash. A missing hash yields an empty map.
func (p *Pebble) HGetAll(key string) (map[string]string, error) {
	start := time.Now()
	prefix := []byte(nsHash + sep + key + sep)
	it, err := p.iter(prefix)
	if err != nil {
		observe("hgetall", start, err)
		return nil, err
	}
	defer it.Close()
	out := make(map[string]string)
	for it.First(); it.Valid(); it.Next() {
		field := string(it.Key()[len(prefix):])
		out[field] = string(append([]byte(nil), it.Value()...))
	}
	err = it.Error()
	observe("hgetall", start, err)
	return out, err
}

// HSet writes one hash field.
func (p *Pebble) HSet(key, field, value string) error {
	start := time.Now()
	err := p.db.Set([]byte(nsHash+sep+key+sep+field), []byte(value), pebble.Sync)
	observe("hset", start, err)
	return err
}

// HDel removes the given fields from a hash.
func (p *Pebble) HDel(key string, fields ...string) error {
	start := time.Now()
	var err error
	for _, f := range fields {
		if e := p.db.Delete([]byte(nsHash+sep+key+sep+f), pebble.Sync); e != nil && err == nil {
			err = e
		}
	}
	observe("hdel", start, err)
	return err
}

// SAdd adds members to a set.
func (p *Pebble) SAdd(key string, members ...string) error {
	start := time.Now()
	var err error
	for _, m := range members {
		if e := p.db.Set([]byte(nsSet+sep+key+sep+m), nil, pebble.Sync); e != nil && err == nil {
			err = e
		}
	}
	observe("sadd", start, err)
	return err
}

// SRem removes members from a set.
func (p *Pebble) SRem(key string, members ...string) error {
	start := time.Now()
	var err error
	for _, m := range members {
		if e := p.db.Delete([]byte(nsSet+sep+key+sep+m), pebble.Sync); e != nil && err == nil {
			err = e
		}
	}
	observe("srem", start, err)
	return err
}

// SMembers returns all members of a set. A missing set yields nil.
func (p *Pebble) SMembers(key string) ([]string, error) {
	start := time.Now()
	prefix := []byte(nsSet + sep + key + sep)
	it, err := p.iter(prefix)
	if err != nil {
		observe("smembers", start, err)
		return nil, err
	}
	defer it.Close()
	var out []string
	for it.First(); it.Valid(); it.Next() {
		out = append(out, string(it.Key()[len(prefix):]))
	}
	err = it.Error()
	observe("smembers", start, err)
	return out, err
}

// SIsMember reports set membership.
func (p *Pebble) SIsMember(key, member string) (bool, error) {
	start := time.Now()
	_, ok, err := p.get([]byte(nsSet + sep + key + sep + member))
	observe("sismember", start, err)
	return ok, err
}

// ZAdd inserts or rescores a member. An existing entry under a different
// score is removed first so a member appears at most once.
func (p *Pebble) ZAdd(key string, score int64, member string) error {
	start := time.Now()
	scoreKey := []byte(nsZScore + sep + key + sep + member)
	if old, ok, err := p.get(scoreKey); err != nil {
		observe("zadd", start, err)
		return err
	} else if ok && old != padScore(score) {
		if err := p.db.Delete([]byte(nsZSet+sep+key+sep+old+sep+member), pebble.Sync); err != nil {
			observe("zadd", start, err)
			return err
		}
	}
	entry := []byte(nsZSet + sep + key + sep + padScore(score) + sep + member)
	if err := p.db.Set(entry, []byte(member), pebble.Sync); err != nil {
		observe("zadd", start, err)
		return err
	}
	err := p.db.Set(scoreKey, []byte(padScore(score)), pebble.Sync)
	observe("zadd", start, err)
	return err
}

// ZRem removes members from a sorted set.
func (p *Pebble) ZRem(key string, members ...string) error {
	start := time.Now()
	var err error
	for _, m := range members {
		scoreKey := []byte(nsZScore + sep + key + sep + m)
		old, ok, e := p.get(scoreKey)
		if e != nil {
			if err == nil {
				err = e
			}
			continue
		}
		if !ok {
			continue
		}
		if e := p.db.Delete([]byte(nsZSet+sep+key+sep+old+sep+m), pebble.Sync); e != nil && err == nil {
			err = e
		}
		if e := p.db.Delete(scoreKey, pebble.Sync); e != nil && err == nil {
			err = e
		}
	}
	observe("zrem", start, err)
	return err
}

// ZRevRange returns members in descending score order.
func (p *Pebble) ZRevRange(key string, startIdx, stop int) ([]string, error) {
	begin := time.Now()
	prefix := []byte(nsZSet + sep + key + sep)
	it, err := p.iter(prefix)
	if err != nil {
		observe("zrevrange", begin, err)
		return nil, err
	}
	defer it.Close()
	var out []string
	idx := 0
	for ok := it.Last(); ok; ok = it.Prev() {
		if idx >= startIdx && (stop < 0 || idx <= stop) {
			out = append(out, string(append([]byte(nil), it.Value()...)))
		}
		idx++
		if stop >= 0 && idx > stop {
			break
		}
	}
	err = it.Error()
	observe("zrevrange", begin, err)
	return out, err
}

// Get returns a scalar value, honoring any expiry set on the key. Expired
// keys are deleted lazily and reported as absent.
func (p *Pebble) Get(key string) (string, bool, error) {
	start := time.Now()
	if exp, ok, err := p.get([]byte(nsExpiry + sep + key)); err != nil {
		observe("get", start, err)
		return "", false, err
	} else if ok {
		if ms, perr := strconv.ParseInt(exp, 10, 64); perr == nil && time.Now().UnixMilli() >= ms {
			_ = p.Del(key)
			observe("get", start, nil)
			return "", false, nil
		}
	}
	v, ok, err := p.get([]byte(nsScalar + sep + key))
	observe("get", start, err)
	return v, ok, err
}

// Set writes a scalar value and clears any previous expiry.
func (p *Pebble) Set(key, value string) error {
	start := time.Now()
	if err := p.db.Set([]byte(nsScalar+sep+key), []byte(value), pebble.Sync); err != nil {
		observe("set", start, err)
		return err
	}
	err := p.db.Delete([]byte(nsExpiry+sep+key), pebble.Sync)
	observe("set", start, err)
	return err
}

// Del removes scalar keys and their expiry markers.
func (p *Pebble) Del(keys ...string) error {
	start := time.Now()
	var err error
	for _, k := range keys {
		if e := p.db.Delete([]byte(nsScalar+sep+k), pebble.Sync); e != nil && err == nil {
			err = e
		}
		if e := p.db.Delete([]byte(nsExpiry+sep+k), pebble.Sync); e != nil && err == nil {
			err = e
		}
	}
	observe("del", start, err)
	return err
}

// Expire sets an absolute deadline ttl from now on a scalar key. Expiry is
// fixed at set-time, not sliding.
func (p *Pebble) Expire(key string, ttl time.Duration) error {
	start := time.Now()
	deadline := time.Now().Add(ttl).UnixMilli()
	err := p.db.Set([]byte(nsExpiry+sep+key), []byte(strconv.FormatInt(deadline, 10)), pebble.Sync)
	observe("expire", start, err)
	return err
}

// Keys returns all scalar keys beginning with prefix.
func (p *Pebble) Keys(prefix string) ([]string, error) {
	start := time.Now()
	raw := []byte(nsScalar + sep + prefix)
	it, err := p.iter(raw)
	if err != nil {
		observe("keys", start, err)
		return nil, err
	}
	defer it.Close()
	var out []string
	skip := len(nsScalar + sep)
	for it.First(); it.Valid(); it.Next() {
		out = append(out, string(it.Key()[skip:]))
	}
	err = it.Error()
	observe("keys", start, err)
	return out, err
}

// SetKeys returns all set keys beginning with prefix.
func (p *Pebble) SetKeys(prefix string) ([]string, error) {
	start := time.Now()
	raw := []byte(nsSet + sep + prefix)
	it, err := p.iter(raw)
	if err != nil {
		observe("setkeys", start, err)
		return nil, err
	}
	defer it.Close()
	skip := len(nsSet + sep)
	seen := make(map[string]struct{})
	var out []string
	for it.First(); it.Valid(); it.Next() {
		rest := string(it.Key()[skip:])
		i := strings.Index(rest, sep)
		if i < 0 {
			continue
		}
		key := rest[:i]
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	err = it.Error()
	observe("setkeys", start, err)
	return out, err
}

// Ping probes the store within the context deadline.
func (p *Pebble) Ping(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		_, _, err := p.get([]byte(nsScalar + sep + "ping"))
		done <- err
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// DumpKeys returns every raw key in the store with the namespace byte
// rendered readable. Used by the offline inspect tool.
func (p *Pebble) DumpKeys(filter string) ([]string, error) {
	it, err := p.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer it.Close()
	var out []string
	for it.First(); it.Valid(); it.Next() {
		k := strings.ReplaceAll(string(it.Key()), sep, ":")
		if filter != "" && !bytes.Contains([]byte(k), []byte(filter)) {
			continue
		}
		out = append(out, k)
	}
	return out, it.Error()
}
