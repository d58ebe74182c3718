package cache

import (
	"strconv"
	"testing"
)

func TestGetOrCreateCallsOnce(t *testing.T) {
	c := New[string, int]()
	calls := 0
	create := func() (int, bool) {
		calls++
		return 42, true
	}

	for i := 0; i < 3; i++ {
		if got := c.GetOrCreate("k", create); got != 42 {
			t.Errorf("GetOrCreate() = %d, want 42", got)
		}
	}
	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}
	s := c.Stats()
	if s.Hits != 2 || s.Misses != 1 {
		t.Errorf("Stats() = %+v, want 2 hits 1 miss", s)
	}
}

func TestGetOrCreateRejected(t *testing.T) {
	c := New[int, string]()
	calls := 0
	create := func() (string, bool) {
		calls++
		return "partial", false
	}
	if got := c.GetOrCreate(1, create); got != "partial" {
		t.Errorf("GetOrCreate() = %q, want %q", got, "partial")
	}
	c.GetOrCreate(1, create)
	if calls != 2 {
		t.Errorf("create called %d times, want 2", calls)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

func TestClear(t *testing.T) {
	c := New[string, int]()
	for i := 0; i < 10; i++ {
		c.GetOrCreate(strconv.Itoa(i), func() (int, bool) { return i, true })
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() = %d after Clear, want 0", c.Len())
	}
	if _, ok := c.Get("3"); ok {
		t.Error("Get() found entry after Clear")
	}
}

func BenchmarkCacheHit(b *testing.B) {
	c := New[string, int]()
	for i := 0; i < 100; i++ {
		c.GetOrCreate(strconv.Itoa(i), func() (int, bool) { return i, true })
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.GetOrCreate("50", func() (int, bool) { return 0, true })
	}
}
