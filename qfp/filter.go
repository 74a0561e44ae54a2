// Package qfp implements the fingerprint engine of a quotient filter: a
// linear-probing table of fingerprints whose slots carry three metadata
// bits (occupied, continuation, shifted) that preserve the canonical
// ordering of colliding fingerprints. The engine stores already-hashed
// integers — it knows nothing about keys or hash functions, see package
// qfset for that layer.
package qfp

// Filter is the fingerprint engine. A zero Filter is a valid, degenerate
// engine with zero slots: it reports Full and Empty, and every Insert
// fails with ErrFilterFull. Use New to build a useful engine.
//
// A Filter is not safe for concurrent use; see spec.md §5.
type Filter struct {
	qBits, rBits uint
	numSlots     int
	slotMask     uint64
	remMask      uint64
	numElements  int

	occupied     flagVec
	continuation flagVec
	shifted      flagVec
	rem          remset

	generation uint64
}

// New constructs an empty filter with 2^q slots, each holding an r-bit
// remainder. It returns ErrInvalidGeometry if r is zero.
func New(q, r uint) (*Filter, error) {
	if r == 0 {
		return nil, ErrInvalidGeometry
	}
	numSlots := 1 << q
	return &Filter{
		qBits:        q,
		rBits:        r,
		numSlots:     numSlots,
		slotMask:     uint64(numSlots - 1),
		remMask:      lowMask64(r),
		occupied:     newFlagVec(numSlots),
		continuation: newFlagVec(numSlots),
		shifted:      newFlagVec(numSlots),
		rem:          newRemset(r, numSlots),
	}, nil
}

// Len returns the number of fingerprints stored in the filter.
func (f *Filter) Len() int { return f.numElements }

// Cap returns the total number of slots, 2^q.
func (f *Filter) Cap() int { return f.numSlots }

// Empty reports whether the filter holds no fingerprints.
func (f *Filter) Empty() bool { return f.numElements == 0 }

// Full reports whether the filter holds as many fingerprints as it has
// slots. A zero Filter is always Full (it has zero slots).
func (f *Filter) Full() bool { return f.numElements >= f.numSlots }

// QuotientBits returns q, the number of bits used to select a slot.
func (f *Filter) QuotientBits() uint { return f.qBits }

// RemainderBits returns r, the width of the value physically stored in a
// slot.
func (f *Filter) RemainderBits() uint { return f.rBits }

func (f *Filter) quotientOf(fp uint64) int {
	return int((fp >> f.rBits) & f.slotMask)
}

func (f *Filter) remainderOf(fp uint64) uint64 {
	return fp & f.remMask
}

func (f *Filter) incr(pos int) int {
	return int((uint64(pos) + 1) & f.slotMask)
}

func (f *Filter) decr(pos int) int {
	return int((uint64(pos) - 1) & f.slotMask)
}

func (f *Filter) isEmptySlot(pos int) bool {
	return !f.occupied.get(pos) && !f.continuation.get(pos) && !f.shifted.get(pos)
}

func (f *Filter) isRunStart(pos int) bool {
	return !f.continuation.get(pos) && (f.shifted.get(pos) || f.occupied.get(pos))
}

// findNextOccupied walks forward (wrapping) from pos, which must itself
// be occupied, to the next occupied slot.
func (f *Filter) findNextOccupied(pos int) int {
	for {
		pos = f.incr(pos)
		if f.occupied.get(pos) {
			return pos
		}
	}
}

// findNextRun walks forward from the start of a run to the start of the
// next run (or the first empty slot past the cluster).
func (f *Filter) findNextRun(runPos int) int {
	for {
		runPos = f.incr(runPos)
		if !f.continuation.get(runPos) {
			return runPos
		}
	}
}

// findRunOf locates the first slot of the run canonically belonging to
// quotient. quotient must be occupied.
func (f *Filter) findRunOf(quotient int) int {
	pos := quotient
	if !f.shifted.get(pos) {
		return pos
	}

	runningCount := 0
	for {
		pos = f.decr(pos)
		if f.occupied.get(pos) {
			runningCount++
		}
		if !f.shifted.get(pos) {
			break
		}
	}

	for ; runningCount > 0; runningCount-- {
		pos = f.findNextRun(pos)
	}
	return pos
}

// Find searches for fp, returning an iterator to its slot or End if fp is
// absent.
func (f *Filter) Find(fp uint64) Iterator {
	if f.numSlots == 0 {
		return f.End()
	}
	q := f.quotientOf(fp)
	r := f.remainderOf(fp)

	if !f.occupied.get(q) {
		return f.End()
	}

	pos := f.findRunOf(q)
	for {
		rem := f.rem.get(pos)
		if rem == r {
			return Iterator{filter: f, pos: pos, canonicalPos: q, generation: f.generation}
		}
		if rem > r {
			return f.End()
		}
		pos = f.incr(pos)
		if !f.continuation.get(pos) {
			break
		}
	}
	return f.End()
}

// Contains reports whether fp is stored in the filter.
func (f *Filter) Contains(fp uint64) bool {
	return !f.Find(fp).IsEnd()
}

// Count returns 0 or 1, the number of times fp is stored.
func (f *Filter) Count(fp uint64) int {
	if f.Contains(fp) {
		return 1
	}
	return 0
}

// insertInto performs the shift-insert described in spec.md §4.1.3 step 6:
// starting at pos, it threads (continuation, remainder) through the
// occupied slots, shifting each one right, until it overwrites an empty
// slot.
func (f *Filter) insertInto(pos int, remainder uint64, continuation bool) {
	for {
		emptySlot := f.isEmptySlot(pos)

		prevContinuation := f.continuation.get(pos)
		f.continuation.set(pos, continuation)
		continuation = prevContinuation

		prevRemainder := f.rem.get(pos)
		f.rem.set(pos, remainder)
		remainder = prevRemainder

		f.shifted.set(pos, true)
		pos = f.incr(pos)

		if emptySlot {
			return
		}
	}
}

// Insert adds fp to the filter. If fp is already present it returns an
// iterator to its slot and inserted=false, even if the filter is full. If
// fp is absent and the filter is full, it returns ErrFilterFull without
// mutating the filter.
func (f *Filter) Insert(fp uint64) (it Iterator, inserted bool, err error) {
	if f.numSlots == 0 {
		return f.End(), false, ErrFilterFull
	}

	q := f.quotientOf(fp)
	r := f.remainderOf(fp)

	if f.isEmptySlot(q) {
		if f.Full() {
			return f.End(), false, ErrFilterFull
		}
		f.occupied.set(q, true)
		f.rem.set(q, r)
		f.numElements++
		f.generation++
		f.checkInvariants()
		return Iterator{filter: f, pos: q, canonicalPos: q, generation: f.generation}, true, nil
	}

	runIsEmpty := !f.occupied.get(q)
	runStart := f.findRunOf(q)
	pos := runStart

	if !runIsEmpty {
		for {
			rem := f.rem.get(pos)
			if rem == r {
				return Iterator{filter: f, pos: pos, canonicalPos: q, generation: f.generation}, false, nil
			}
			if rem > r {
				break
			}
			pos = f.incr(pos)
			if !f.continuation.get(pos) {
				break
			}
		}
	}

	if f.Full() {
		return f.End(), false, ErrFilterFull
	}

	if runIsEmpty {
		f.occupied.set(q, true)
	} else if pos == runStart {
		f.continuation.set(pos, true)
	}

	f.insertInto(pos, r, pos != runStart)
	if pos == q {
		f.shifted.set(pos, false)
	}

	f.numElements++
	f.generation++
	f.checkInvariants()
	return Iterator{filter: f, pos: pos, canonicalPos: q, generation: f.generation}, true, nil
}

// removeEntry implements spec.md §4.1.3's erase algorithm: compact the
// cluster leftward over the gap left by removePos, whose canonical slot is
// canonicalPos.
func (f *Filter) removeEntry(removePos, canonicalPos int) {
	wasHead := !f.continuation.get(removePos)

	currentPos := removePos
	quotientPos := canonicalPos

	for {
		nextPos := f.incr(currentPos)
		if !f.shifted.get(nextPos) {
			break
		}

		f.rem.set(currentPos, f.rem.get(nextPos))
		f.continuation.set(currentPos, f.continuation.get(nextPos))

		if !f.continuation.get(currentPos) {
			quotientPos = f.findNextOccupied(quotientPos)
			if quotientPos == currentPos {
				f.shifted.set(currentPos, false)
			}
		}

		currentPos = nextPos
	}

	f.shifted.set(currentPos, false)
	f.continuation.set(currentPos, false)

	if wasHead {
		if f.continuation.get(removePos) {
			f.continuation.set(removePos, false)
		} else {
			f.occupied.set(canonicalPos, false)
		}
	}
}

// Erase removes fp if present, returning the number of fingerprints
// removed (0 or 1).
func (f *Filter) Erase(fp uint64) int {
	it := f.Find(fp)
	if it.IsEnd() {
		return 0
	}
	f.removeEntry(it.pos, it.canonicalPos)
	f.numElements--
	f.generation++
	f.checkInvariants()
	return 1
}

// EraseAt removes the fingerprint at it, which must be a non-end iterator
// produced by f and not yet invalidated by a later mutation.
func (f *Filter) EraseAt(it Iterator) error {
	// Every end iterator is filter-less and compares equal to every other
	// end iterator (see Iterator.Equal), so end-ness must be checked
	// before filter identity: there is no such thing as "the wrong
	// filter's end".
	if it.IsEnd() {
		return ErrIteratorEnd
	}
	if it.filter != f {
		return ErrIteratorMismatch
	}
	if it.generation != f.generation {
		return ErrIteratorStale
	}
	f.removeEntry(it.pos, it.canonicalPos)
	f.numElements--
	f.generation++
	f.checkInvariants()
	return nil
}

// Clear removes every fingerprint. Slot storage is retained.
func (f *Filter) Clear() {
	f.occupied.clearAll()
	f.continuation.clearAll()
	f.shifted.clearAll()
	f.numElements = 0
	f.generation++
}

// Begin returns an iterator to the smallest stored fingerprint, or End if
// the filter is empty.
func (f *Filter) Begin() Iterator {
	if f.Empty() {
		return f.End()
	}
	q := 0
	for !f.occupied.get(q) {
		q++
	}
	pos := f.findRunOf(q)
	return Iterator{filter: f, pos: pos, canonicalPos: q, generation: f.generation}
}

// End returns the end iterator. It is stable across non-mutating calls.
func (f *Filter) End() Iterator {
	return Iterator{}
}
