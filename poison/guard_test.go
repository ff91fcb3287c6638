package poison

import "testing"

func TestGuard_CommitThenRelease(t *testing.T) {
	p := NewPoison()

	g, err := p.Guard()
	if err != nil {
		t.Fatalf("Guard on fresh Poison failed: %v", err)
	}

	g.Commit()
	if !g.Committed() {
		t.Error("guard should report Committed after Commit")
	}

	g.Release()
	if !g.Released() {
		t.Error("guard should report Released after Release")
	}
	if p.Poisoned() {
		t.Error("committed release should not poison")
	}
}

func TestGuard_ReleaseWithoutCommit(t *testing.T) {
	p := NewPoison()

	g, err := p.Guard()
	if err != nil {
		t.Fatalf("Guard failed: %v", err)
	}

	g.Release()
	if !p.Poisoned() {
		t.Error("release of an active guard should poison")
	}
}

func TestGuard_ReleaseIdempotent(t *testing.T) {
	p := NewPoison()

	g, _ := p.Guard()
	g.Commit()
	g.Release()
	if p.Poisoned() {
		t.Fatal("committed release should not poison")
	}

	// A second Release must not re-evaluate the outcome.
	g.Release()
	if p.Poisoned() {
		t.Error("repeated Release must not poison a committed guard")
	}
	if !g.Released() {
		t.Error("guard should remain Released")
	}
}

func TestGuard_CommitAfterReleaseIsNoop(t *testing.T) {
	p := NewPoison()

	g, _ := p.Guard()
	g.Release()
	if !p.Poisoned() {
		t.Fatal("uncommitted release should poison")
	}

	// Too late: the region already terminated abnormally.
	g.Commit()
	if g.Committed() {
		t.Error("Commit after Release should not change state")
	}
	if !p.Poisoned() {
		t.Error("late Commit must not unpoison")
	}
}

// TestGuard_IndependentGuards verifies that nested or sequential guards
// each contribute independently: one abnormal region poisons, and a
// later committed region on an unchecked guard does not clear it.
func TestGuard_IndependentGuards(t *testing.T) {
	p := NewPoison()

	g1, _ := p.Guard()
	g1.Release() // abnormal

	g2 := p.GuardUnchecked()
	g2.Commit()
	g2.Release()

	if !p.Poisoned() {
		t.Error("a committed region must not clear poisoning from an earlier abnormal one")
	}
}
