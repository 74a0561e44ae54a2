package qfp

import (
	"fmt"
	"strings"
)

// checkInvariants re-derives the filter's bookkeeping from the raw slot
// metadata and panics on any mismatch. It is a no-op unless built with
// the qfp_invariants tag, mirroring the teacher's debug-only
// checkInvariants/debugString pair.
func (f *Filter) checkInvariants() {
	if !invariants {
		return
	}
	if f.numSlots == 0 {
		return
	}

	var counted int
	for q := 0; q < f.numSlots; q++ {
		if !f.occupied.get(q) {
			continue
		}
		pos := f.findRunOf(q)
		if f.continuation.get(pos) {
			panic(fmt.Sprintf("invariant failed: run of quotient %d starts on a continuation slot %d\n%s", q, pos, f.debugString()))
		}
		prev := uint64(0)
		first := true
		for {
			rem := f.rem.get(pos)
			if !first && rem < prev {
				panic(fmt.Sprintf("invariant failed: run of quotient %d is not sorted at slot %d\n%s", q, pos, f.debugString()))
			}
			prev, first = rem, false
			counted++
			pos = f.incr(pos)
			if !f.continuation.get(pos) {
				break
			}
		}
	}

	if counted != f.numElements {
		panic(fmt.Sprintf("invariant failed: counted %d stored fingerprints, want %d\n%s", counted, f.numElements, f.debugString()))
	}

	for pos := 0; pos < f.numSlots; pos++ {
		if f.continuation.get(pos) && !f.shifted.get(pos) {
			panic(fmt.Sprintf("invariant failed: slot %d is a continuation but not shifted\n%s", pos, f.debugString()))
		}
	}
}

func (f *Filter) debugString() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "q=%d r=%d numSlots=%d numElements=%d\n", f.qBits, f.rBits, f.numSlots, f.numElements)
	for pos := 0; pos < f.numSlots; pos++ {
		fmt.Fprintf(&buf, "%6d: occ=%-5v cont=%-5v shift=%-5v rem=%x\n",
			pos, f.occupied.get(pos), f.continuation.get(pos), f.shifted.get(pos), f.rem.get(pos))
	}
	return buf.String()
}
