package resultcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"encore.app/analysis/model"
	"encore.app/analysis/store"
)

func testCache(ttl time.Duration) (*Cache, *store.Memory, func(d time.Duration)) {
	now := time.Now()
	s := store.NewMemoryWithClock(func() time.Time { return now })
	return New(s, ttl), s, func(d time.Duration) { now = now.Add(d) }
}

func TestLookupAfterStore(t *testing.T) {
	ctx := context.Background()
	cache, _, _ := testCache(time.Hour)

	result := model.AnalysisResult{Label: "cat", Confidence: 0.98}
	require.NoError(t, cache.Store(ctx, "abc123", result))

	got, ok := cache.Lookup(ctx, "abc123")
	require.True(t, ok)
	assert.Equal(t, result, *got)
}

func TestLookupMissesUnknownHash(t *testing.T) {
	cache, _, _ := testCache(time.Hour)

	got, ok := cache.Lookup(context.Background(), "never-stored")
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestLookupMissesAfterTTL(t *testing.T) {
	ctx := context.Background()
	cache, _, advance := testCache(time.Hour)

	require.NoError(t, cache.Store(ctx, "abc123", model.AnalysisResult{Label: "cat", Confidence: 0.98}))

	advance(59 * time.Minute)
	_, ok := cache.Lookup(ctx, "abc123")
	assert.True(t, ok, "entry should survive until the TTL elapses")

	advance(2 * time.Minute)
	_, ok = cache.Lookup(ctx, "abc123")
	assert.False(t, ok, "entry should expire with the TTL")
}

func TestStoreIsLastWriterWins(t *testing.T) {
	ctx := context.Background()
	cache, _, _ := testCache(time.Hour)

	result := model.AnalysisResult{Label: "cat", Confidence: 0.98}
	require.NoError(t, cache.Store(ctx, "abc123", result))
	require.NoError(t, cache.Store(ctx, "abc123", result))

	got, ok := cache.Lookup(ctx, "abc123")
	require.True(t, ok)
	assert.Equal(t, result, *got)
}

func TestLookupTreatsCorruptedEntryAsMiss(t *testing.T) {
	ctx := context.Background()
	cache, backing, _ := testCache(time.Hour)

	require.NoError(t, backing.SetWithTTL(ctx, "analysis_result:abc123", []byte("not json"), time.Hour))

	_, ok := cache.Lookup(ctx, "abc123")
	assert.False(t, ok)
}

// failingStore simulates an unreachable shared store.
type failingStore struct {
	store.Store
}

func (failingStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection refused")
}

func (failingStore) SetWithTTL(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}

func TestLookupTreatsStoreErrorAsMiss(t *testing.T) {
	cache := New(failingStore{}, time.Hour)

	_, ok := cache.Lookup(context.Background(), "abc123")
	assert.False(t, ok, "a lookup failure is a miss, never an error")
}

func TestStoreSurfacesStoreError(t *testing.T) {
	cache := New(failingStore{}, time.Hour)

	err := cache.Store(context.Background(), "abc123", model.AnalysisResult{Label: "cat", Confidence: 0.98})
	assert.Error(t, err)
}
