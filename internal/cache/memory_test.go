package cache

import (
	"context"
	"sync"
	"testing"
	"time"
)

// TestMemoryExpiry verifies entries honor their TTL and expire lazily.
func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	m := NewMemory()
	m.now = func() time.Time { return now }

	if err := m.SetEx(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("SetEx: %v", err)
	}
	if v, ok, _ := m.Get(ctx, "k"); !ok || v != "v" {
		t.Fatalf("Get before expiry = (%q, %v), want (v, true)", v, ok)
	}

	now = now.Add(time.Minute)
	if _, ok, _ := m.Get(ctx, "k"); ok {
		t.Fatal("entry still readable at expiry boundary")
	}
}

// TestMemoryNoExpiry verifies ttl <= 0 means the entry never ages out.
func TestMemoryNoExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	m := NewMemory()
	m.now = func() time.Time { return now }

	if err := m.SetEx(ctx, "k", "v", 0); err != nil {
		t.Fatalf("SetEx: %v", err)
	}
	now = now.Add(24 * time.Hour)
	if _, ok, _ := m.Get(ctx, "k"); !ok {
		t.Fatal("entry without TTL expired")
	}
}

// TestMemoryIncr verifies counters start at one and survive concurrent bumps.
func TestMemoryIncr(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if n, err := m.Incr(ctx, "c"); err != nil || n != 1 {
		t.Fatalf("first Incr = (%d, %v), want (1, nil)", n, err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.Incr(ctx, "c"); err != nil {
				t.Errorf("Incr: %v", err)
			}
		}()
	}
	wg.Wait()

	if v, ok, _ := m.Get(ctx, "c"); !ok || v != "51" {
		t.Fatalf("counter = (%q, %v), want (51, true)", v, ok)
	}
}
