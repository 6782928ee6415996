package resultcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"encore.dev/rlog"

	"encore.app/analysis/model"
	"encore.app/analysis/store"
)

const keyPrefix = "analysis_result:"

const DefaultTTL = 24 * time.Hour

// Cache is the content-addressed result store. Entries are keyed by the
// input's content hash, so identical submissions resolve to the same entry.
type Cache struct {
	store store.Store
	ttl   time.Duration
}

func New(s store.Store, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		store: s,
		ttl:   ttl,
	}
}

// Lookup returns the cached result for hash, if any. A store failure or a
// corrupted entry is a miss, never an error: the system degrades to
// recomputing the analysis.
func (c *Cache) Lookup(ctx context.Context, hash string) (*model.AnalysisResult, bool) {
	raw, err := c.store.Get(ctx, keyPrefix+hash)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			rlog.Warn("result cache lookup failed, treating as miss", "hash", hash, "error", err)
		}
		return nil, false
	}

	var result model.AnalysisResult
	if err := json.Unmarshal(raw, &result); err != nil {
		rlog.Warn("corrupted result cache entry, treating as miss", "hash", hash, "error", err)
		return nil, false
	}
	return &result, true
}

// Store writes the result under hash with the configured TTL. Writes are
// last-writer-wins: concurrent completions for the same hash carry
// content-identical inputs, so either write is acceptable.
func (c *Cache) Store(ctx context.Context, hash string, result model.AnalysisResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result for %s: %w", hash, err)
	}
	return c.store.SetWithTTL(ctx, keyPrefix+hash, raw, c.ttl)
}
