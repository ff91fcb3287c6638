// Package lock provides poisoning mutexes: thin wrappers around
// sync.Mutex and sync.RWMutex that protect a value and track, via the
// poison package, whether a previous holder failed before completing
// its critical section.
//
// The wrappers do not reimplement locking. Blocking, fairness and
// scheduling are exactly those of the embedded stdlib primitive; this
// package only layers failure tracking on top, so data that was
// half-mutated when its holder panicked is not silently handed to the
// next locker.
//
// # Usage
//
// The closure forms are the easiest to use correctly:
//
//	m := lock.NewMutex(map[string]int{})
//
//	err := m.With(func(data *map[string]int) error {
//		(*data)["hits"]++
//		return nil
//	})
//
// With commits only when fn returns nil; an error return or a panic
// leaves the mutex poisoned, and later With/Lock calls fail with a
// wrapped poison.PoisonError until [Mutex.Heal] is called.
//
// The explicit guard forms give callers control over the commit point:
//
//	g, err := m.Lock()
//	if err != nil {
//		// Poisoned. g is still valid and holds the lock, so the
//		// caller can inspect or repair before unlocking.
//	}
//	defer g.Unlock()
//	// ... work ...
//	g.Commit()
//
// Unlike most Go APIs, Lock returns a usable guard together with a
// non-nil error: the error reports poisoning, not acquisition failure.
// The caller owns the lock either way and must call Unlock. This is the
// poisoned-lock convention of handing back "the guard anyway" so the
// resource can be examined and healed under the lock.
package lock
