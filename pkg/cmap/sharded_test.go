package cmap

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestNewWithShards(t *testing.T) {
	tests := []struct {
		input    int
		expected int
	}{
		{0, DefaultShardCount},
		{-1, DefaultShardCount},
		{3, DefaultShardCount},
		{1, 1},
		{4, 4},
		{32, 32},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("shards=%d", tt.input), func(t *testing.T) {
			m := NewWithShards[string, int](tt.input)
			if len(m.shards) != tt.expected {
				t.Errorf("shard count = %d, want %d", len(m.shards), tt.expected)
			}
		})
	}
}

func TestSetGetDelete(t *testing.T) {
	m := New[string, int]()

	m.Set("a", 1)
	m.Set("b", 2)

	if v, ok := m.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = (%d, %v), want (1, true)", v, ok)
	}
	if _, ok := m.Get("missing"); ok {
		t.Error("Get(missing) should report !ok")
	}

	m.Delete("a")
	if _, ok := m.Get("a"); ok {
		t.Error("a should be gone after Delete")
	}
	m.Delete("missing")

	if m.Count() != 1 {
		t.Errorf("Count() = %d, want 1", m.Count())
	}
}

func TestSetIfAbsent(t *testing.T) {
	m := New[string, int]()

	if !m.SetIfAbsent("k", 1) {
		t.Error("first SetIfAbsent should store")
	}
	if m.SetIfAbsent("k", 2) {
		t.Error("second SetIfAbsent should not store")
	}
	if v, _ := m.Get("k"); v != 1 {
		t.Errorf("value = %d, want 1", v)
	}
}

func TestPop(t *testing.T) {
	m := New[string, int]()
	m.Set("k", 7)

	v, ok := m.Pop("k")
	if !ok || v != 7 {
		t.Errorf("Pop() = (%d, %v), want (7, true)", v, ok)
	}
	if _, ok := m.Pop("k"); ok {
		t.Error("second Pop should report !ok")
	}
}

func TestModify(t *testing.T) {
	m := New[string, int]()
	m.Set("k", 1)

	t.Run("present", func(t *testing.T) {
		v, ok, err := m.Modify("k", func(n int) (int, error) { return n + 10, nil })
		if err != nil || !ok || v != 11 {
			t.Errorf("Modify() = (%d, %v, %v), want (11, true, nil)", v, ok, err)
		}
	})

	t.Run("absent", func(t *testing.T) {
		called := false
		_, ok, err := m.Modify("missing", func(n int) (int, error) {
			called = true
			return n, nil
		})
		if ok || err != nil || called {
			t.Errorf("Modify(missing) ok=%v err=%v called=%v", ok, err, called)
		}
		if _, exists := m.Get("missing"); exists {
			t.Error("Modify must not create absent keys")
		}
	})

	t.Run("error leaves value", func(t *testing.T) {
		boom := errors.New("boom")
		_, ok, err := m.Modify("k", func(int) (int, error) { return 0, boom })
		if !ok || !errors.Is(err, boom) {
			t.Errorf("Modify() ok=%v err=%v", ok, err)
		}
		if v, _ := m.Get("k"); v != 11 {
			t.Errorf("value = %d, want 11", v)
		}
	})
}

func TestModify_Concurrent(t *testing.T) {
	m := New[string, int]()
	m.Set("counter", 0)

	const workers, perWorker = 16, 500
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				m.Modify("counter", func(n int) (int, error) { return n + 1, nil })
			}
		}()
	}
	wg.Wait()

	if v, _ := m.Get("counter"); v != workers*perWorker {
		t.Errorf("counter = %d, want %d", v, workers*perWorker)
	}
}

func TestRange(t *testing.T) {
	m := New[int, int]()
	for i := 0; i < 100; i++ {
		m.Set(i, i*2)
	}

	sum := 0
	m.Range(func(k, v int) bool {
		if v != k*2 {
			t.Errorf("value for %d = %d", k, v)
		}
		sum += k
		return true
	})
	if sum != 4950 {
		t.Errorf("sum of keys = %d, want 4950", sum)
	}

	seen := 0
	m.Range(func(int, int) bool {
		seen++
		return seen < 5
	})
	if seen != 5 {
		t.Errorf("Range should stop early, visited %d", seen)
	}
}

func BenchmarkModify_Parallel(b *testing.B) {
	m := New[string, int]()
	keys := make([]string, 64)
	for i := range keys {
		keys[i] = fmt.Sprintf("job-%d", i)
		m.Set(keys[i], 0)
	}

	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			m.Modify(keys[i%len(keys)], func(n int) (int, error) { return n + 1, nil })
			i++
		}
	})
}
