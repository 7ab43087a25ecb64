package campaigns

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestMemoryDedupRejectsInsideWindow(t *testing.T) {
	guard := NewMemoryDedup(5 * time.Second)
	now := time.Now()
	guard.now = func() time.Time { return now }

	key := DedupKey(uuid.New(), "announcement", "Title", "Body")
	if !guard.Acquire(key) {
		t.Fatalf("first acquire should succeed")
	}
	if guard.Acquire(key) {
		t.Fatalf("second acquire inside window should fail")
	}

	// A different payload is never blocked.
	other := DedupKey(uuid.New(), "announcement", "Title", "Body")
	if !guard.Acquire(other) {
		t.Fatalf("distinct key should succeed")
	}
}

func TestMemoryDedupAllowsAfterWindow(t *testing.T) {
	guard := NewMemoryDedup(5 * time.Second)
	now := time.Now()
	guard.now = func() time.Time { return now }

	key := DedupKey(uuid.New(), "promo", "Title", "Body")
	if !guard.Acquire(key) {
		t.Fatalf("first acquire should succeed")
	}

	guard.now = func() time.Time { return now.Add(5 * time.Second) }
	if !guard.Acquire(key) {
		t.Fatalf("acquire after window elapsed should succeed")
	}
}

func TestMemoryDedupRejectionKeepsOriginalTimestamp(t *testing.T) {
	guard := NewMemoryDedup(5 * time.Second)
	now := time.Now()
	guard.now = func() time.Time { return now }

	key := DedupKey(uuid.New(), "reminder", "Title", "Body")
	guard.Acquire(key)

	// Rejected attempts must not extend the window.
	guard.now = func() time.Time { return now.Add(3 * time.Second) }
	if guard.Acquire(key) {
		t.Fatalf("acquire at 3s should fail")
	}
	guard.now = func() time.Time { return now.Add(5 * time.Second) }
	if !guard.Acquire(key) {
		t.Fatalf("acquire at 5s from the original send should succeed")
	}
}

func TestDedupKeyIsPayloadSensitive(t *testing.T) {
	admin := uuid.New()
	base := DedupKey(admin, "announcement", "Title", "Body")

	if DedupKey(admin, "announcement", "Title", "Body") != base {
		t.Fatalf("identical payload should produce identical keys")
	}
	if DedupKey(admin, "announcement", "Title", "Other body") == base {
		t.Fatalf("different message should produce a different key")
	}
	if DedupKey(uuid.New(), "announcement", "Title", "Body") == base {
		t.Fatalf("different sender should produce a different key")
	}
}
