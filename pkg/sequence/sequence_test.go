package sequence

import (
	"context"
	"sync"
	"testing"

	"github.com/angelmondragon/homeservices-backend/pkg/config"
	"github.com/angelmondragon/homeservices-backend/pkg/db/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCounters struct {
	mu     sync.Mutex
	values map[string]int64
}

func newFakeCounters() *fakeCounters {
	return &fakeCounters{values: map[string]int64{}}
}

func (f *fakeCounters) Incr(_ context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key]++
	return f.values[key], nil
}

func (f *fakeCounters) RaiseCounter(_ context.Context, key string, floor int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.values[key] < floor {
		f.values[key] = floor
	}
	return f.values[key], nil
}

func (f *fakeCounters) CounterKey(name string) string {
	return "test:" + name
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "PRD-001", FormatSKU(1))
	assert.Equal(t, "PRD-042", FormatSKU(42))
	assert.Equal(t, "PRD-1000", FormatSKU(1000))
	assert.Equal(t, "ORD-000007", FormatOrderID(7))

	n, ok := ParseSKU("PRD-017")
	assert.True(t, ok)
	assert.EqualValues(t, 17, n)

	_, ok = ParseSKU("SKU-017")
	assert.False(t, ok)
	_, ok = ParseSKU("PRD-abc")
	assert.False(t, ok)

	n, ok = ParseOrderID("ORD-000123")
	assert.True(t, ok)
	assert.EqualValues(t, 123, n)
}

func TestMaxSKUIgnoresForeignValues(t *testing.T) {
	got := MaxSKU([]string{"PRD-003", "custom", "PRD-011", "PRD-x", "PRD-002"})
	assert.EqualValues(t, 11, got)
	assert.EqualValues(t, 0, MaxSKU(nil))
}

func TestMaxOrderIDIgnoresForeignValues(t *testing.T) {
	got := MaxOrderID([]string{"ORD-000004", "ORD-CUSTOM-1", "PRD-900", "ORD-000019"})
	assert.EqualValues(t, 19, got)
}

func TestRedisAllocatorSeedThenNext(t *testing.T) {
	ctx := context.Background()
	alloc, err := NewRedisAllocator(newFakeCounters())
	require.NoError(t, err)

	require.NoError(t, alloc.Seed(ctx, ProductSKU, 5))
	n, err := alloc.Next(ctx, ProductSKU)
	require.NoError(t, err)
	assert.EqualValues(t, 6, n)

	require.NoError(t, alloc.Seed(ctx, ProductSKU, 2))
	n, err = alloc.Next(ctx, ProductSKU)
	require.NoError(t, err)
	assert.EqualValues(t, 7, n)
}

func TestDBAllocatorIsMonotonicPerName(t *testing.T) {
	ctx := context.Background()
	alloc, err := NewDBAllocator(dbtest.Open(t))
	require.NoError(t, err)

	for want := int64(1); want <= 3; want++ {
		n, err := alloc.Next(ctx, OrderID)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	n, err := alloc.Next(ctx, ProductSKU)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n, "names are independent")
}

func TestDBAllocatorSeedNeverLowers(t *testing.T) {
	ctx := context.Background()
	alloc, err := NewDBAllocator(dbtest.Open(t))
	require.NoError(t, err)

	require.NoError(t, alloc.Seed(ctx, ProductSKU, 10))
	require.NoError(t, alloc.Seed(ctx, ProductSKU, 4))

	n, err := alloc.Next(ctx, ProductSKU)
	require.NoError(t, err)
	assert.EqualValues(t, 11, n)
}

func TestDBAllocatorConcurrentNextIsUnique(t *testing.T) {
	ctx := context.Background()
	alloc, err := NewDBAllocator(dbtest.Open(t))
	require.NoError(t, err)

	const workers = 20
	results := make(chan int64, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := alloc.Next(ctx, OrderID)
			if err == nil {
				results <- n
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := map[int64]bool{}
	for n := range results {
		assert.False(t, seen[n], "duplicate value %d", n)
		seen[n] = true
	}
	assert.Len(t, seen, workers)
}

func TestNewAllocatorSelectsBackend(t *testing.T) {
	alloc, err := NewAllocator(config.SequenceConfig{Backend: config.SequenceBackendDB}, nil, dbtest.Open(t))
	require.NoError(t, err)
	assert.IsType(t, &DBAllocator{}, alloc)

	alloc, err = NewAllocator(config.SequenceConfig{Backend: config.SequenceBackendRedis}, newFakeCounters(), nil)
	require.NoError(t, err)
	assert.IsType(t, &RedisAllocator{}, alloc)

	_, err = NewAllocator(config.SequenceConfig{Backend: config.SequenceBackendRedis}, nil, nil)
	assert.Error(t, err)
}
