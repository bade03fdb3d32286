package logs

import (
	"strconv"
	"testing"

	"foliodb/pkg/kv"
)

func TestLogNeverFails(t *testing.T) {
	m := kv.NewMemory()
	s := NewService(m)

	m.SetFailing(true)
	entry := s.Log("error", "store went away", "system")
	if entry.ID == "" || entry.Timestamp == 0 {
		t.Fatalf("entry not stamped: %+v", entry)
	}
	// The entry is retrievable from the buffer while the store is down.
	got := s.GetLogs(Filter{})
	if len(got) != 1 || got[0].ID != entry.ID {
		t.Fatalf("buffer fallback: %v", got)
	}

	// A nil client works the same way.
	s2 := NewService(nil)
	if e := s2.Log("info", "hello", "test"); e.ID == "" {
		t.Fatalf("nil-client entry not stamped")
	}
	if got := s2.GetLogs(Filter{}); len(got) != 1 {
		t.Fatalf("nil-client read: %v", got)
	}
}

func TestBufferBound(t *testing.T) {
	s := NewService(nil)
	for i := 0; i < DefaultCapacity+25; i++ {
		s.Log("info", "entry "+strconv.Itoa(i), "test")
	}
	if n := s.BufferLen(); n != DefaultCapacity {
		t.Fatalf("buffer length: %d", n)
	}
	got := s.GetLogs(Filter{})
	if len(got) != DefaultCapacity {
		t.Fatalf("entries: %d", len(got))
	}
	// Oldest entries were evicted first.
	for _, e := range got {
		if e.Message == "entry 0" || e.Message == "entry 24" {
			t.Fatalf("evicted entry survived: %q", e.Message)
		}
	}
}

func TestRemoteFirstReads(t *testing.T) {
	m := kv.NewMemory()
	s := NewService(m)
	s.Log("info", "stored remotely", "system")

	// A second facade over the same client sees the entry without having
	// buffered it.
	other := NewService(m)
	got := other.GetLogs(Filter{})
	if len(got) != 1 || got[0].Message != "stored remotely" {
		t.Fatalf("remote read: %v", got)
	}

	// When the store goes down the original facade answers from its buffer.
	m.SetFailing(true)
	got = s.GetLogs(Filter{})
	if len(got) != 1 || got[0].Message != "stored remotely" {
		t.Fatalf("buffer fallback: %v", got)
	}
}

func TestFilters(t *testing.T) {
	s := NewService(kv.NewMemory())
	s.Log("info", "server starting", "system")
	s.Log("error", "write failed", "store")
	s.LogDetailed("warning", "admin login", "auth", "ada@example.com", "")

	if got := s.GetLogs(Filter{Level: "error"}); len(got) != 1 || got[0].Source != "store" {
		t.Fatalf("level filter: %v", got)
	}
	if got := s.GetLogs(Filter{Source: "auth"}); len(got) != 1 || got[0].UserEmail != "ada@example.com" {
		t.Fatalf("source filter: %v", got)
	}
	if got := s.GetLogs(Filter{Search: "FAILED"}); len(got) != 1 || got[0].Level != "error" {
		t.Fatalf("search filter: %v", got)
	}
	if got := s.GetLogs(Filter{Window: "24h"}); len(got) != 3 {
		t.Fatalf("window filter: %v", got)
	}
	if got := s.GetLogs(Filter{}); len(got) != 3 {
		t.Fatalf("unfiltered: %v", got)
	}
}

func TestNewestFirstOrdering(t *testing.T) {
	s := NewService(kv.NewMemory())
	first := s.Log("info", "first", "test")
	second := s.Log("info", "second", "test")
	got := s.GetLogs(Filter{})
	if len(got) != 2 {
		t.Fatalf("entries: %v", got)
	}
	if got[0].ID != second.ID || got[1].ID != first.ID {
		// Same-millisecond entries tie on timestamp; fall back to checking
		// both are present.
		seen := map[string]bool{got[0].ID: true, got[1].ID: true}
		if !seen[first.ID] || !seen[second.ID] {
			t.Fatalf("ordering lost entries: %v", got)
		}
	}
}

func TestClearLogs(t *testing.T) {
	m := kv.NewMemory()
	s := NewService(m)
	s.Log("info", "one", "system")
	s.Log("info", "two", "system")

	if ok := s.ClearLogs(); !ok {
		t.Fatalf("ClearLogs reported failure")
	}
	if got := s.GetLogs(Filter{}); len(got) != 0 {
		t.Fatalf("entries survived clear: %v", got)
	}
	if n := s.BufferLen(); n != 0 {
		t.Fatalf("buffer survived clear: %d", n)
	}
	// The timestamp pointer keys are gone too.
	if keys, _ := m.Keys("log:timestamp:"); len(keys) != 0 {
		t.Fatalf("pointer keys survived clear: %v", keys)
	}

	// Clearing while the store is down still succeeds.
	s.Log("info", "three", "system")
	m.SetFailing(true)
	if ok := s.ClearLogs(); !ok {
		t.Fatalf("degraded ClearLogs reported failure")
	}
	if n := s.BufferLen(); n != 0 {
		t.Fatalf("degraded clear left buffer: %d", n)
	}
}
