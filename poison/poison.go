package poison

// Poison is the guard-producing wrapper over [RawPoison]. It automates
// poisoning-on-abnormal-exit: embedders enter a tracked region through
// [Poison.Guard] and the returned [Guard] records the region's outcome
// on release.
//
// Poison adds no synchronization of its own. It is designed to be
// embedded by value inside a structure that already serializes entry to
// the protected region (a mutex, an rwlock, a single-owner resource);
// see the lock package for such embeddings.
//
// The zero Poison is valid and unpoisoned.
type Poison struct {
	raw RawPoison
}

// NewPoison returns a Poison in the unpoisoned state.
func NewPoison() *Poison {
	return new(Poison)
}

// NewPoisoned returns a Poison that is already poisoned. Guard calls on
// it fail until it is healed.
func NewPoisoned() *Poison {
	p := new(Poison)
	p.raw.Set(true)
	return p
}

// Guard begins a protected region.
//
// If the Poison is already poisoned, Guard fails fast with a
// *[PoisonError] and a nil guard: handing out a region on data that
// failed mid-mutation must be an explicit caller decision, made through
// [Poison.GuardUnchecked], not a silent default.
//
// Otherwise Guard returns an active [Guard]. The caller must release it
// on every exit path, normally via defer, and commit it once the
// protected work has completed.
func (p *Poison) Guard() (*Guard, error) {
	if p.raw.Get() {
		return nil, &PoisonError{}
	}
	return &Guard{raw: &p.raw}, nil
}

// GuardUnchecked begins a protected region regardless of the current
// flag state.
//
// This is the override entry point for callers that have seen the
// PoisonError from [Poison.Guard] and decided to proceed anyway, for
// example to inspect or repair the protected data. The returned guard
// behaves exactly like one from Guard: releasing it without a commit
// poisons the flag (a no-op if it is already poisoned), and committing
// does not clear an existing poisoned state. Only [Poison.Heal] clears
// it.
func (p *Poison) GuardUnchecked() *Guard {
	return &Guard{raw: &p.raw}
}

// Poisoned reports whether the flag is poisoned, without entering a
// region. Embedding locks use it to expose an inspection query to their
// own callers.
func (p *Poison) Poisoned() bool {
	return p.raw.Get()
}

// Heal clears the poisoned flag. See [RawPoison.Heal] for the intended
// discipline around healing.
func (p *Poison) Heal() {
	p.raw.Heal()
}

// Raw exposes the underlying RawPoison for advanced embedders that need
// to drive the flag manually, e.g. to poison a structure from outside
// the guard protocol. Most callers never need this.
func (p *Poison) Raw() *RawPoison {
	return &p.raw
}
