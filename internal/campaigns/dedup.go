package campaigns

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// DedupGuard rejects repeated sends of the same campaign payload inside a
// short window, before any storage or delivery work happens.
type DedupGuard interface {
	Acquire(key string) bool
	Window() time.Duration
}

// DedupKey derives the guard key from everything that identifies a send:
// the acting admin plus the full payload.
func DedupKey(sentBy fmt.Stringer, campaignType, title, message string) string {
	sum := sha256.Sum256([]byte(sentBy.String() + "\x00" + campaignType + "\x00" + title + "\x00" + message))
	return hex.EncodeToString(sum[:])
}

// MemoryDedup is an in-process TTL guard. Entries expire lazily on the
// next Acquire touching the key, with a periodic sweep to bound growth.
type MemoryDedup struct {
	mu      sync.Mutex
	window  time.Duration
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemoryDedup builds a guard with the given rejection window.
func NewMemoryDedup(window time.Duration) *MemoryDedup {
	if window <= 0 {
		window = 5 * time.Second
	}
	return &MemoryDedup{
		window:  window,
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Acquire records the key and returns true, unless the key was already
// recorded inside the window, in which case it returns false and leaves
// the original timestamp in place.
func (d *MemoryDedup) Acquire(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if at, ok := d.entries[key]; ok && now.Sub(at) < d.window {
		return false
	}

	d.entries[key] = now
	if len(d.entries) > 1024 {
		d.sweepLocked(now)
	}
	return true
}

// Window reports the configured rejection window.
func (d *MemoryDedup) Window() time.Duration {
	return d.window
}

func (d *MemoryDedup) sweepLocked(now time.Time) {
	for key, at := range d.entries {
		if now.Sub(at) >= d.window {
			delete(d.entries, key)
		}
	}
}
