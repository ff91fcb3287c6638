package poison

import "sync/atomic"

// Guard states. A guard starts Active; Commit moves it to Committed;
// Release moves either state to Released, which is terminal.
const (
	guardActive uint32 = iota
	guardCommitted
	guardReleased
)

// A Guard is a scope-bound token representing active occupancy of a
// protected region, obtained from [Poison.Guard] or
// [Poison.GuardUnchecked].
//
// The intended usage is to defer Release immediately after acquiring
// the guard, so it runs on every exit path, and to call Commit as the
// last step of the protected work:
//
//	g, err := p.Guard()
//	if err != nil {
//		return err
//	}
//	defer g.Release()
//	// ... protected work ...
//	g.Commit()
//
// A Release that runs without a prior Commit treats the region as
// having terminated abnormally and poisons the associated flag. This is
// what makes `defer g.Release()` safe under panics: the panic unwinds
// through the defer before Commit was reached, and the flag records the
// failure.
//
// A Guard must not outlive the critical section it was created in, and
// it does not own the flag; it only holds a back-reference used to
// write it on release.
type Guard struct {
	raw   *RawPoison
	state atomic.Uint32
}

// Commit marks the protected region as successfully completed, so the
// subsequent Release leaves the flag untouched.
//
// Commit is a no-op on a guard that has already been committed or
// released. It never fails.
func (g *Guard) Commit() {
	g.state.CompareAndSwap(guardActive, guardCommitted)
}

// Release ends the protected region. It must be called exactly once on
// every exit path; deferring it at acquisition time guarantees that.
//
// If the guard is still active, meaning Commit was never reached, the
// region is treated as abnormally terminated and the flag is poisoned.
// If the guard was committed, the flag is left as it was. Poisoning an
// already-poisoned flag changes nothing.
//
// Release is idempotent: calls after the first are no-ops. It never
// fails and never panics; recording the outcome of a region must be
// possible on any teardown path.
func (g *Guard) Release() {
	if g.state.CompareAndSwap(guardActive, guardReleased) {
		// Reached the end of the region without a commit.
		g.raw.Set(true)
		return
	}
	g.state.CompareAndSwap(guardCommitted, guardReleased)
}

// Committed reports whether Commit has been called and the guard has
// not yet been released.
func (g *Guard) Committed() bool {
	return g.state.Load() == guardCommitted
}

// Released reports whether the guard has been released.
func (g *Guard) Released() bool {
	return g.state.Load() == guardReleased
}
