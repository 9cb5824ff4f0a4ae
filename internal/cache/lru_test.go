package cache

import "testing"

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU[string, int](2)
	c.Set("a", 1)
	c.Set("b", 2)

	// Touch "a" so "b" becomes the eviction candidate.
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("expected a=1, got %d ok=%v", v, ok)
	}
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatalf("expected b to be evicted")
	}
	if c.Size() != 2 {
		t.Fatalf("expected size 2, got %d", c.Size())
	}
}

func TestLRUOverwrite(t *testing.T) {
	c := NewLRU[int, string](1)
	c.Set(1, "x")
	c.Set(1, "y")
	if v, _ := c.Get(1); v != "y" {
		t.Fatalf("expected overwrite, got %q", v)
	}
}

func TestGetOrComputeCallsOnce(t *testing.T) {
	c := NewLRU[string, string](4)
	calls := 0
	compute := func() string { calls++; return "v" }

	for i := 0; i < 3; i++ {
		if got := c.GetOrCompute("k", compute); got != "v" {
			t.Fatalf("unexpected value %q", got)
		}
	}
	if calls != 1 {
		t.Fatalf("expected one computation, got %d", calls)
	}
	hits, misses := c.Stats()
	if hits != 2 || misses != 1 {
		t.Fatalf("unexpected stats hits=%d misses=%d", hits, misses)
	}
}

func TestNewLRUMinimumSize(t *testing.T) {
	c := NewLRU[string, int](0)
	c.Set("a", 1)
	c.Set("b", 2)
	if c.Size() != 1 {
		t.Fatalf("expected size 1, got %d", c.Size())
	}
}
