package poison

import "errors"

// PoisonError reports that a protected resource may be in an invalid
// state: a previous holder of exclusive access terminated abnormally
// before completing its critical section.
//
// PoisonError carries no payload of its own. Embedding structures that
// want to hand back their own guard alongside the error (the
// "poisoned, but here it is anyway" pattern) wrap it with fmt.Errorf
// and %w; [IsPoisoned] and errors.As see through such wrapping.
//
// The error deliberately does not distinguish how the previous holder
// failed. Panic, early error return and external Set(true) all collapse
// into the same signal, because this layer can only record that a
// region failed to complete, not why.
type PoisonError struct{}

// Error implements the error interface.
func (e *PoisonError) Error() string {
	return "poisoned: a previous holder failed before completing its critical section"
}

// IsPoisoned reports whether err is, or wraps, a *PoisonError.
//
// Embedding locks typically return PoisonError wrapped together with
// their own context; IsPoisoned lets their callers test for poisoning
// without knowing the wrapping shape:
//
//	g, err := m.Lock()
//	if poison.IsPoisoned(err) {
//		// inspect, repair, m.Heal(), ...
//	}
func IsPoisoned(err error) bool {
	var pe *PoisonError
	return errors.As(err, &pe)
}
