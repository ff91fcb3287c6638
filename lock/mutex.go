package lock

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/kolkov/poisoning/poison"
)

// A Mutex is a mutual exclusion lock protecting a value of type T, with
// poisoning. It embeds a sync.Mutex for the locking itself and a
// poison.Poison for failure tracking.
//
// A Mutex must be created with [NewMutex] and must not be copied after
// first use.
type Mutex[T any] struct {
	mu     sync.Mutex
	poison poison.Poison
	data   T
}

// NewMutex returns a Mutex protecting data.
func NewMutex[T any](data T) *Mutex[T] {
	return &Mutex[T]{data: data}
}

// Lock acquires the mutex and begins a tracked critical section.
//
// Lock always returns a non-nil guard once the mutex is acquired, even
// when it also returns an error: a non-nil error means the mutex is
// poisoned, and the guard is handed back anyway so the caller can
// inspect or repair the data under the lock. The caller must call
// [MutexGuard.Unlock] in every case, typically via defer.
//
// The error, when non-nil, wraps *poison.PoisonError; test for it with
// poison.IsPoisoned.
func (m *Mutex[T]) Lock() (*MutexGuard[T], error) {
	m.mu.Lock()

	g, err := m.poison.Guard()
	if err != nil {
		return &MutexGuard[T]{m: m, g: m.poison.GuardUnchecked()}, fmt.Errorf("lock: %w", err)
	}
	return &MutexGuard[T]{m: m, g: g}, nil
}

// TryLock attempts to acquire the mutex without blocking.
//
// The second return value reports whether the mutex was acquired. When
// it is false, the guard is nil and the error is nil regardless of
// poisoning state; when it is true, the returns follow the same
// contract as [Mutex.Lock].
func (m *Mutex[T]) TryLock() (*MutexGuard[T], bool, error) {
	if !m.mu.TryLock() {
		return nil, false, nil
	}

	g, err := m.poison.Guard()
	if err != nil {
		return &MutexGuard[T]{m: m, g: m.poison.GuardUnchecked()}, true, fmt.Errorf("lock: %w", err)
	}
	return &MutexGuard[T]{m: m, g: g}, true, nil
}

// With runs fn with exclusive access to the protected value.
//
// The critical section commits only when fn returns nil. An error
// return or a panic inside fn counts as abnormal termination and
// poisons the mutex; the panic is not recovered. If the mutex is
// already poisoned, With returns the poisoning error without calling
// fn.
//
// Callers for whom an error return from fn leaves the data intact
// should use the explicit [Mutex.Lock] form and choose their own commit
// point.
func (m *Mutex[T]) With(fn func(*T) error) error {
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

// Poisoned reports whether the mutex is poisoned. It does not acquire
// the lock.
func (m *Mutex[T]) Poisoned() bool {
	return m.poison.Poisoned()
}

// Heal clears the poisoned state. The caller is asserting that the
// protected value has been verified or repaired; see poison.RawPoison's
// healing discipline. Heal does not acquire the lock, so callers
// repairing the data should do so while holding a guard and heal before
// unlocking.
func (m *Mutex[T]) Heal() {
	m.poison.Heal()
}

// IntoInner returns the protected value, consuming the mutex: the Mutex
// must not be used afterwards. If the mutex is poisoned, the value is
// returned together with the poisoning error so the caller can decide
// whether to trust it.
func (m *Mutex[T]) IntoInner() (T, error) {
	if m.poison.Poisoned() {
		return m.data, fmt.Errorf("lock: %w", &poison.PoisonError{})
	}
	return m.data, nil
}

// A MutexGuard represents an acquired [Mutex]. It gives access to the
// protected value and records the critical section's outcome when
// unlocked.
type MutexGuard[T any] struct {
	m    *Mutex[T]
	g    *poison.Guard
	done atomic.Bool
}

// Get returns the protected value. The pointer must not be retained
// beyond Unlock.
func (g *MutexGuard[T]) Get() *T {
	return &g.m.data
}

// Commit marks the critical section's work as complete, so Unlock
// leaves the poisoning state untouched.
func (g *MutexGuard[T]) Commit() {
	g.g.Commit()
}

// Unlock ends the critical section and releases the mutex. If Commit
// was not called, the mutex is poisoned. Unlock is idempotent; calls
// after the first are no-ops.
func (g *MutexGuard[T]) Unlock() {
	if !g.done.CompareAndSwap(false, true) {
		return
	}
	g.g.Release()
	g.m.mu.Unlock()
}
