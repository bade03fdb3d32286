// Package logs implements the application log service: remote-first writes
// over the kv store with a transparent in-process fallback, so a log call
// never fails and the caller's local view stays consistent while the store
// is down.
package logs

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"foliodb/pkg/kv"
	"foliodb/pkg/logger"
	"foliodb/pkg/models"
	"foliodb/pkg/utils"
)

// DefaultCapacity bounds the in-memory fallback buffer.
const DefaultCapacity = 100

// Remote key layout.
const (
	keyLogs        = "logs"
	keyLogsAll     = "logs:all"
	prefixLogLevel = "logs:level:"
	prefixLogSrc   = "logs:source:"
	prefixLogTS    = "log:timestamp:"
)

// Filter narrows GetLogs. Window is one of "24h", "7d", "30d" or "" / "all".
type Filter struct {
	Level  string
	Source string
	Search string
	Window string
}

// Service is the logging facade. Each instance owns its own fallback
// buffer, so tests can run independent facades without shared state.
type Service struct {
	kv kv.Client

	mu  sync.Mutex
	buf *ring
}

// NewService returns a facade over the given client. c may be nil; the
// facade then runs purely on the memory buffer.
func NewService(c kv.Client) *Service {
	return &Service{kv: c, buf: newRing(DefaultCapacity)}
}

// Log records an entry. The entry always lands in the memory buffer first;
// the remote write (primary hash plus level/source/all sets and the
// timestamp pointer key) is best-effort. Log never returns an error.
func (s *Service) Log(level, message, source string) models.LogEntry {
	return s.LogDetailed(level, message, source, "", "")
}

// LogDetailed is Log with optional user attribution and a details payload.
func (s *Service) LogDetailed(level, message, source, userEmail, details string) models.LogEntry {
	now := time.Now().UTC()
	entry := models.LogEntry{
		ID:        utils.GenID("log"),
		Level:     level,
		Message:   message,
		Source:    source,
		UserEmail: userEmail,
		Details:   details,
		Timestamp: now.UnixMilli(),
		CreatedAt: now.Format(time.RFC3339),
	}

	s.mu.Lock()
	s.buf.append(entry)
	s.mu.Unlock()

	if s.kv == nil {
		return entry
	}
	doc, err := json.Marshal(entry)
	if err != nil {
		logger.Error("log_marshal_failed", "id", entry.ID, "error", err)
		return entry
	}
	if err := s.kv.HSet(keyLogs, entry.ID, string(doc)); err != nil {
		logger.Warn("log_remote_write_failed", "id", entry.ID, "error", err)
		return entry
	}
	// Index writes after the primary; a failure part-way leaves a partially
	// indexed entry, matching the rest of the storage layer.
	if err := s.kv.SAdd(keyLogsAll, entry.ID); err != nil {
		logger.Warn("log_index_write_failed", "id", entry.ID, "error", err)
		return entry
	}
	_ = s.kv.SAdd(prefixLogLevel+entry.Level, entry.ID)
	_ = s.kv.SAdd(prefixLogSrc+entry.Source, entry.ID)
	_ = s.kv.Set(prefixLogTS+strconv.FormatInt(entry.Timestamp, 10)+":"+entry.ID, entry.ID)
	return entry
}

// GetLogs prefers the remote store; when it is unreachable or holds zero
// entries the memory buffer answers instead, with identical filter
// semantics. Results are newest-first.
func (s *Service) GetLogs(f Filter) []models.LogEntry {
	if s.kv != nil {
		entries, err := s.remoteLogs(f)
		if err == nil && len(entries) > 0 {
			return entries
		}
		if err != nil {
			logger.Warn("log_remote_read_failed", "error", err)
		}
	}
	s.mu.Lock()
	entries := s.buf.snapshot()
	s.mu.Unlock()
	return filterEntries(entries, f)
}

func (s *Service) remoteLogs(f Filter) ([]models.LogEntry, error) {
	var ids []string
	var err error
	switch {
	case f.Level != "":
		ids, err = s.kv.SMembers(prefixLogLevel + f.Level)
	case f.Source != "":
		ids, err = s.kv.SMembers(prefixLogSrc + f.Source)
	default:
		ids, err = s.kv.SMembers(keyLogsAll)
	}
	if err != nil {
		return nil, err
	}
	out := make([]models.LogEntry, 0, len(ids))
	for _, id := range ids {
		doc, ok, err := s.kv.HGet(keyLogs, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		var e models.LogEntry
		if jerr := json.Unmarshal([]byte(doc), &e); jerr != nil {
			logger.Error("log_unmarshal_failed", "id", id, "error", jerr)
			continue
		}
		out = append(out, e)
	}
	out = filterEntries(out, f)
	return out, nil
}

// ClearLogs removes the remote records, every index set membership and the
// timestamp pointer keys, then empties the memory buffer. The memory clear
// always succeeds, so ClearLogs always reports success even when the remote
// store is down.
func (s *Service) ClearLogs() bool {
	if s.kv != nil {
		if err := s.clearRemote(); err != nil {
			logger.Warn("log_remote_clear_failed", "error", err)
		}
	}
	s.mu.Lock()
	s.buf.clear()
	s.mu.Unlock()
	return true
}

func (s *Service) clearRemote() error {
	ids, err := s.kv.SMembers(keyLogsAll)
	if err != nil {
		return err
	}
	for _, id := range ids {
		doc, ok, err := s.kv.HGet(keyLogs, id)
		if err != nil {
			return err
		}
		if ok {
			var e models.LogEntry
			if json.Unmarshal([]byte(doc), &e) == nil {
				_ = s.kv.SRem(prefixLogLevel+e.Level, id)
				_ = s.kv.SRem(prefixLogSrc+e.Source, id)
			}
		}
		if err := s.kv.HDel(keyLogs, id); err != nil {
			return err
		}
		if err := s.kv.SRem(keyLogsAll, id); err != nil {
			return err
		}
	}
	pointers, err := s.kv.Keys(prefixLogTS)
	if err != nil {
		return err
	}
	if len(pointers) > 0 {
		if err := s.kv.Del(pointers...); err != nil {
			return err
		}
	}
	return nil
}

// BufferLen reports the number of entries currently held in memory.
func (s *Service) BufferLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.len()
}

func filterEntries(entries []models.LogEntry, f Filter) []models.LogEntry {
	var cutoff int64
	switch f.Window {
	case "24h":
		cutoff = time.Now().UTC().Add(-24 * time.Hour).UnixMilli()
	case "7d":
		cutoff = time.Now().UTC().Add(-7 * 24 * time.Hour).UnixMilli()
	case "30d":
		cutoff = time.Now().UTC().Add(-30 * 24 * time.Hour).UnixMilli()
	}
	out := make([]models.LogEntry, 0, len(entries))
	for _, e := range entries {
		if f.Level != "" && e.Level != f.Level {
			continue
		}
		if f.Source != "" && e.Source != f.Source {
			continue
		}
		if f.Search != "" && !containsFold(e.Message, f.Search) {
			continue
		}
		if cutoff > 0 && e.Timestamp < cutoff {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	return out
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
