package lock

import (
	"errors"
	"sync"
	"testing"

	"github.com/kolkov/poisoning/poison"
)

func TestRWMutex_WriteThenView(t *testing.T) {
	m := NewRWMutex(map[string]int{})

	err := m.With(func(data *map[string]int) error {
		(*data)["hits"] = 3
		return nil
	})
	if err != nil {
		t.Fatalf("With failed: %v", err)
	}

	err = m.View(func(data map[string]int) error {
		if data["hits"] != 3 {
			t.Errorf("hits = %d, want 3", data["hits"])
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
}

func TestRWMutex_WriterPanicPoisons(t *testing.T) {
	m := NewRWMutex(0)

	func() {
		defer func() {
			if recover() == nil {
				t.Error("panic should propagate out of With")
			}
		}()
		_ = m.With(func(v *int) error {
			*v = 1
			panic("writer failure")
		})
	}()

	if !m.Poisoned() {
		t.Fatal("writer panic should poison")
	}

	// Readers fail fast on a poisoned lock but still receive the guard.
	g, err := m.RLock()
	if !poison.IsPoisoned(err) {
		t.Errorf("RLock on poisoned lock should return PoisonError, got %v", err)
	}
	if g == nil {
		t.Fatal("RLock must return the guard alongside the poisoning error")
	}
	if *g.Get() != 1 {
		t.Errorf("poisoned value = %d, want the half-applied 1", *g.Get())
	}
	g.Unlock()
}

func TestRWMutex_ViewFailsFastWhenPoisoned(t *testing.T) {
	m := NewRWMutex(0)
	poisonRW(t, m)

	called := false
	err := m.View(func(int) error {
		called = true
		return nil
	})
	if !poison.IsPoisoned(err) {
		t.Errorf("View on poisoned lock should return PoisonError, got %v", err)
	}
	if called {
		t.Error("View must not run fn on a poisoned lock")
	}
}

func TestRWMutex_ReaderNeverPoisons(t *testing.T) {
	m := NewRWMutex(5)

	// A reader returning an error does not poison.
	boom := errors.New("read validation failed")
	if err := m.View(func(int) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("View should return fn's error, got %v", err)
	}
	if m.Poisoned() {
		t.Error("reader error must not poison")
	}

	// Neither does a reader panic.
	func() {
		defer func() { recover() }()
		_ = m.View(func(int) error { panic("reader failure") })
	}()
	if m.Poisoned() {
		t.Error("reader panic must not poison")
	}

	// The lock is still fully usable.
	if err := m.With(func(v *int) error { *v++; return nil }); err != nil {
		t.Errorf("With after reader failures: %v", err)
	}
}

func TestRWMutex_HealRestoresReaders(t *testing.T) {
	m := NewRWMutex(0)
	poisonRW(t, m)

	m.Heal()

	if err := m.View(func(int) error { return nil }); err != nil {
		t.Errorf("View after Heal failed: %v", err)
	}
	if err := m.With(func(v *int) error { *v = 9; return nil }); err != nil {
		t.Errorf("With after Heal failed: %v", err)
	}
}

func TestRWMutex_IntoInner(t *testing.T) {
	m := NewRWMutex("x")
	if v, err := m.IntoInner(); err != nil || v != "x" {
		t.Errorf("IntoInner = (%q, %v), want (\"x\", nil)", v, err)
	}

	m2 := NewRWMutex("y")
	poisonRW(t, m2)
	if v, err := m2.IntoInner(); !poison.IsPoisoned(err) || v != "y" {
		t.Errorf("IntoInner on poisoned = (%q, %v), want value plus PoisonError", v, err)
	}
}

// TestRWMutex_ConcurrentReadersAndWriter verifies readers observe a
// writer's poisoning on their next acquisition.
func TestRWMutex_ConcurrentReadersAndWriter(t *testing.T) {
	m := NewRWMutex(0)

	var wg sync.WaitGroup
	fail := make(chan struct{})

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-fail // wait until the writer has failed
			err := m.View(func(int) error { return nil })
			if !poison.IsPoisoned(err) {
				t.Errorf("reader after writer failure: got %v, want PoisonError", err)
			}
		}()
	}

	g, err := m.Lock()
	if err != nil {
		t.Fatalf("Lock failed: %v", err)
	}
	g.Unlock() // abnormal: no commit
	close(fail)

	wg.Wait()
}

// poisonRW drives m into the poisoned state through an uncommitted
// write section.
func poisonRW[T any](t *testing.T, m *RWMutex[T]) {
	t.Helper()
	g, err := m.Lock()
	if err != nil {
		t.Fatalf("poisonRW: Lock failed: %v", err)
	}
	g.Unlock()
	if !m.Poisoned() {
		t.Fatal("poisonRW: lock did not poison")
	}
}
