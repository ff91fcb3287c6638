// Package poison provides poisoning primitives for building poisonable
// synchronization structures.
//
// A poisonable structure records the fact that some holder of exclusive
// access failed before completing its critical section, and propagates
// that fact to subsequent accessors so they can decide whether to trust
// the protected data. This package implements only the failure-tracking
// layer; mutual exclusion itself is supplied by the embedding structure
// (see the lock package for ready-made poisoning wrappers around
// sync.Mutex and sync.RWMutex).
//
// # Two Tiers
//
// The package exposes two tiers, mirroring the split between a raw
// primitive and a safe wrapper:
//
//   - [RawPoison] is the bare flag: an atomically readable and writable
//     poisoned bit with no automatic behavior. Embedders that need full
//     control drive it manually via [RawPoison.Get] and [RawPoison.Set].
//
//   - [Poison] wraps a RawPoison and issues scope guards. A [Guard]
//     obtained from [Poison.Guard] must be released on every exit path;
//     if the region completed its work it calls [Guard.Commit] first,
//     and a release without a prior commit marks the flag poisoned.
//
// # Quick Start
//
//	var p poison.Poison
//
//	g, err := p.Guard()
//	if err != nil {
//		return err // resource poisoned by a previous failure
//	}
//	defer g.Release()
//
//	if err := mutate(data); err != nil {
//		return err // no commit: release will poison
//	}
//	g.Commit() // region completed, release leaves the flag clear
//	return nil
//
// Because Go has no mechanism for asking whether a panic is in flight,
// the guard uses this explicit two-phase protocol rather than unwind
// detection: any exit that skips Commit, including a panic unwinding
// through the deferred Release, counts as abnormal and poisons the
// flag. This treats early error returns the same way as panics; a
// caller for whom an error return leaves the data intact should commit
// before returning the error.
//
// # Poisoned Resources
//
// Once poisoned, every subsequent [Poison.Guard] call fails with a
// [PoisonError] until the flag is explicitly cleared with
// [Poison.Heal]. Poisoning is deliberately monotonic: nothing on the
// guard path ever clears the flag, so a corrupted region cannot
// silently appear trusted again. Healing is reserved for callers that
// have independently verified or repaired the protected data.
//
// Callers that want to enter a poisoned region anyway, for inspection
// or repair, use [Poison.GuardUnchecked], which skips the flag check
// but otherwise behaves like any other guard.
//
// # Concurrency
//
// RawPoison's flag is an atomic cell, so Get and Set are safe from any
// goroutine, including reads performed outside the embedding lock. The
// guard protocol itself assumes it runs inside an already-serialized
// critical section; the package never blocks out and never spawns
// goroutines.
package poison
