package lock

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/kolkov/poisoning/poison"
)

// An RWMutex is a reader/writer lock protecting a value of type T, with
// poisoning on the write side.
//
// Only writers can poison: a reader cannot have half-applied a
// mutation, so a failing read section releases cleanly. Readers do
// still observe poisoning and fail fast once a writer has poisoned the
// lock, since the data they would read is suspect.
//
// An RWMutex must be created with [NewRWMutex] and must not be copied
// after first use.
type RWMutex[T any] struct {
	mu     sync.RWMutex
	poison poison.Poison
	data   T
}

// NewRWMutex returns an RWMutex protecting data.
func NewRWMutex[T any](data T) *RWMutex[T] {
	return &RWMutex[T]{data: data}
}

// Lock acquires the write lock. The contract matches [Mutex.Lock]: the
// guard is returned even when the lock is poisoned, alongside an error
// wrapping *poison.PoisonError, and must be unlocked either way.
func (m *RWMutex[T]) Lock() (*WriteGuard[T], error) {
	m.mu.Lock()

	g, err := m.poison.Guard()
	if err != nil {
		return &WriteGuard[T]{m: m, g: m.poison.GuardUnchecked()}, fmt.Errorf("lock: %w", err)
	}
	return &WriteGuard[T]{m: m, g: g}, nil
}

// RLock acquires the read lock. As with Lock, a poisoned lock yields
// both the guard and an error; the guard holds the read lock and must
// be unlocked. Releasing a read guard never poisons.
func (m *RWMutex[T]) RLock() (*ReadGuard[T], error) {
	m.mu.RLock()

	if m.poison.Poisoned() {
		return &ReadGuard[T]{m: m}, fmt.Errorf("lock: %w", &poison.PoisonError{})
	}
	return &ReadGuard[T]{m: m}, nil
}

// With runs fn with the write lock held; semantics match [Mutex.With].
func (m *RWMutex[T]) With(fn func(*T) error) error {
	g, err := m.Lock()
	if err != nil {
		g.Unlock()
		return err
	}
	defer g.Unlock()

	if err := fn(g.Get()); err != nil {
		return err
	}
	g.Commit()
	return nil
}

// View runs fn with the read lock held. A poisoned lock fails fast
// without calling fn. An error return or panic from fn does not poison;
// readers cannot corrupt the protected value.
func (m *RWMutex[T]) View(fn func(T) error) error {
	g, err := m.RLock()
	if err != nil {
		g.Unlock()
		return err
	}
	defer g.Unlock()

	return fn(*g.Get())
}

// Poisoned reports whether the lock is poisoned, without locking.
func (m *RWMutex[T]) Poisoned() bool {
	return m.poison.Poisoned()
}

// Heal clears the poisoned state; see [Mutex.Heal] for the expected
// discipline.
func (m *RWMutex[T]) Heal() {
	m.poison.Heal()
}

// IntoInner returns the protected value, consuming the lock; semantics
// match [Mutex.IntoInner].
func (m *RWMutex[T]) IntoInner() (T, error) {
	if m.poison.Poisoned() {
		return m.data, fmt.Errorf("lock: %w", &poison.PoisonError{})
	}
	return m.data, nil
}

// A WriteGuard represents write-locked access to an [RWMutex].
type WriteGuard[T any] struct {
	m    *RWMutex[T]
	g    *poison.Guard
	done atomic.Bool
}

// Get returns the protected value. The pointer must not be retained
// beyond Unlock.
func (g *WriteGuard[T]) Get() *T {
	return &g.m.data
}

// Commit marks the write section's work as complete.
func (g *WriteGuard[T]) Commit() {
	g.g.Commit()
}

// Unlock ends the write section and releases the lock, poisoning if
// Commit was not called. Idempotent.
func (g *WriteGuard[T]) Unlock() {
	if !g.done.CompareAndSwap(false, true) {
		return
	}
	g.g.Release()
	g.m.mu.Unlock()
}

// A ReadGuard represents read-locked access to an [RWMutex]. It carries
// no poison guard; read sections never change the poisoning state.
type ReadGuard[T any] struct {
	m    *RWMutex[T]
	done atomic.Bool
}

// Get returns the protected value. The value must be treated as
// read-only and the pointer must not be retained beyond Unlock.
func (g *ReadGuard[T]) Get() *T {
	return &g.m.data
}

// Unlock releases the read lock. Idempotent.
func (g *ReadGuard[T]) Unlock() {
	if !g.done.CompareAndSwap(false, true) {
		return
	}
	g.m.mu.RUnlock()
}
