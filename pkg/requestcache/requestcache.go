// Short-lived cache of materialized query results, keyed by request fingerprint
// (same entities + same field set = same key, chaining order irrelevant). Saves the
// web layer from re-issuing identical batches on every page load.
package requestcache

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/Arkiver2/pyroTorrent/pkg/rtquery"
	"github.com/function61/gokit/logex"
)

// matches the reference behavior's 10-second window
const DefaultTTL = 10 * time.Second

// re-issues the underlying batch on a miss
type Materializer func(ctx context.Context) (map[string]*rtquery.ResultRecord, error)

// Safe for concurrent use. Entries for the same fingerprint are mutually exclusive:
// a second caller for fingerprint F blocks until the first finishes and then gets the
// freshly cached result instead of issuing its own round trip (single-flight; this is
// added behavior on top of the plain TTL contract). Unrelated fingerprints never
// block each other.
type Cache struct {
	ttl   time.Duration
	now   func() time.Time // swapped out by tests
	locks *keyedMutex
	logl  *logex.Leveled

	mu      sync.Mutex // guards entries
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	records map[string]*rtquery.ResultRecord
	created time.Time
}

func New(ttl time.Duration, logger *log.Logger) *Cache {
	return &Cache{
		ttl:     ttl,
		now:     time.Now,
		locks:   newKeyedMutex(),
		logl:    logex.Levels(logger),
		entries: map[string]*cacheEntry{},
	}
}

func (c *Cache) GetOrMaterialize(
	ctx context.Context,
	fingerprint string,
	materialize Materializer,
) (map[string]*rtquery.ResultRecord, error) {
	unlock := c.locks.lock(fingerprint)
	defer unlock()

	if records, hit := c.lookup(fingerprint); hit {
		c.logl.Debug.Printf("hit %s", fingerprint)
		return records, nil
	}

	c.logl.Debug.Printf("miss %s", fingerprint)

	records, err := materialize(ctx)
	if err != nil {
		return nil, err // errors are not cached
	}

	c.mu.Lock()
	c.entries[fingerprint] = &cacheEntry{
		records: records,
		created: c.now(),
	}
	c.mu.Unlock()

	return records, nil
}

// a fingerprint hit past expiry is a miss; the stale entry is dropped on the spot
func (c *Cache) lookup(fingerprint string) (map[string]*rtquery.ResultRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, found := c.entries[fingerprint]
	if !found {
		return nil, false
	}

	if c.now().Sub(entry.created) >= c.ttl {
		delete(c.entries, fingerprint)
		return nil, false
	}

	return entry.records, true
}
