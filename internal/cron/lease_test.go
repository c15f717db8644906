package cron

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

type memoryLeaseStore struct {
	values map[string]string
}

func newMemoryLeaseStore() *memoryLeaseStore {
	return &memoryLeaseStore{values: map[string]string{}}
}

func (m *memoryLeaseStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = value.(string)
	return true, nil
}

func (m *memoryLeaseStore) Get(_ context.Context, key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (m *memoryLeaseStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

func TestRedisLeaseIsExclusive(t *testing.T) {
	ctx := context.Background()
	store := newMemoryLeaseStore()
	first, err := NewRedisLease(store, "hs:lock:maintenance", 0)
	if err != nil {
		t.Fatalf("NewRedisLease: %v", err)
	}
	second, _ := NewRedisLease(store, "hs:lock:maintenance", 0)

	if ok, err := first.Acquire(ctx); err != nil || !ok {
		t.Fatalf("first acquire: ok=%v err=%v", ok, err)
	}
	if ok, _ := second.Acquire(ctx); ok {
		t.Fatal("second worker must not acquire a held lease")
	}
	if err := first.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if ok, _ := second.Acquire(ctx); !ok {
		t.Fatal("expected lease to be free after release")
	}
}

func TestRedisLeaseLeavesForeignTokenAlone(t *testing.T) {
	ctx := context.Background()
	store := newMemoryLeaseStore()
	lease, _ := NewRedisLease(store, "k", time.Minute)

	if ok, _ := lease.Acquire(ctx); !ok {
		t.Fatal("expected acquire")
	}
	// Simulate expiry followed by another worker taking over.
	store.values["k"] = "someone-else"

	if err := lease.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if store.values["k"] != "someone-else" {
		t.Fatal("release removed a lease it no longer owned")
	}
}

func TestNewRedisLeaseValidates(t *testing.T) {
	if _, err := NewRedisLease(nil, "k", 0); err == nil {
		t.Fatal("expected error for nil store")
	}
	if _, err := NewRedisLease(newMemoryLeaseStore(), "", 0); err == nil {
		t.Fatal("expected error for empty key")
	}
}
