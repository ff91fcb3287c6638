package poison

import "sync/atomic"

// RawPoison is the minimal poisoning primitive: a poisoned bit shared
// across goroutines, with no automatic behavior attached.
//
// RawPoison is meant to be embedded inside an already-synchronized
// structure. The flag is stored in an atomic cell, so it may also be
// read outside the embedding lock (for example by a fast "is this
// poisoned" query) without further synchronization. An atomic store by
// the goroutine that held the lock during a failure is visible to any
// goroutine that subsequently loads the flag, which is at least as
// strong as the acquire/release ordering of the surrounding lock.
//
// The zero RawPoison is valid and unpoisoned.
//
// Callers are expected to only ever transition the flag from clear to
// poisoned; clearing it again is an explicit recovery action (see
// [RawPoison.Heal]), never something done on a failure path.
type RawPoison struct {
	flag atomic.Bool
}

// NewRawPoison returns a RawPoison in the unpoisoned state.
func NewRawPoison() *RawPoison {
	return new(RawPoison)
}

// NewPoisonedRaw returns a RawPoison that is already poisoned.
//
// Useful for constructing a poisonable structure that must start out
// untrusted, e.g. when recovering state of unknown integrity.
func NewPoisonedRaw() *RawPoison {
	p := new(RawPoison)
	p.flag.Store(true)
	return p
}

// Get reports whether the flag is poisoned.
//
// Get is a single atomic load: it never blocks, has no side effects,
// and is safe to call concurrently with [RawPoison.Set] from any
// goroutine.
func (p *RawPoison) Get() bool {
	return p.flag.Load()
}

// Set unconditionally writes the flag.
//
// Concurrent Set calls race with last-write-wins semantics, which is
// acceptable because well-behaved callers only ever write true: the
// flag is monotonic in practice, and storing true is idempotent, so no
// poisoning is lost under concurrent attempts.
//
// Set(false) un-poisons the flag. That is an override for trusted
// callers that have verified or repaired the protected data; the guard
// path never writes false. Prefer the separately named [RawPoison.Heal]
// for that, so recovery stands out at call sites.
func (p *RawPoison) Set(v bool) {
	p.flag.Store(v)
}

// Heal clears the flag, returning the RawPoison to the unpoisoned
// state.
//
// Heal is the deliberate escape hatch from the otherwise one-way
// clear-to-poisoned transition. It exists as its own method, distinct
// from the guard path, so ordinary code cannot un-poison a resource by
// accident.
func (p *RawPoison) Heal() {
	p.flag.Store(false)
}
