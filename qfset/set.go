// Package qfset is the keyed wrapper around qfp's fingerprint engine: it
// hashes arbitrary comparable keys down to fingerprints, tracks load
// factor, and grows the underlying engine transparently as keys are
// inserted.
package qfset

import (
	"math"
	"math/bits"

	"github.com/sirupsen/logrus"

	"github.com/quofil-go/quofil/qfp"
)

const defaultMaxLoadFactor = 0.75

// Set is a generic set of comparable keys backed by a quotient filter.
// Keys are never stored; only their hash-derived fingerprints are. This
// means Delete, Contains, and iteration can only ever be as precise as
// the configured fingerprint width allows — see WithFingerprintBits.
//
// A Set is not safe for concurrent use.
type Set[K comparable] struct {
	engine *qfp.Filter
	hash   Hash[K]

	fMax          uint
	maxLoadFactor float64
	slotHint      int

	logger *logrus.Logger
}

// New constructs an empty Set.
func New[K comparable](opts ...Option[K]) *Set[K] {
	s := &Set[K]{
		hash:          defaultHash[K](),
		fMax:          64,
		maxLoadFactor: defaultMaxLoadFactor,
	}
	for _, opt := range opts {
		opt.apply(s)
	}
	q, r := s.geometryFor(s.slotHint)
	engine, err := qfp.New(q, r)
	if err != nil {
		// A misconfigured FMax (e.g. WithFingerprintBits(0)) can make even
		// the minimum geometry invalid; fall back to the zero engine so the
		// set stays usable (Insert will report ErrCapacityExceeded) rather
		// than carrying a nil *qfp.Filter.
		engine = new(qfp.Filter)
	}
	s.engine = engine
	return s
}

// NewWithHint constructs an empty Set sized to hold sizeHint elements at
// the configured max load factor without an immediate resize.
func NewWithHint[K comparable](sizeHint int, opts ...Option[K]) *Set[K] {
	opts = append([]Option[K]{slotHintOpt[K](sizeHint)}, opts...)
	return New(opts...)
}

// NewFromSlice constructs a Set containing every distinct key in keys.
func NewFromSlice[K comparable](keys []K, opts ...Option[K]) *Set[K] {
	s := NewWithHint(len(keys), opts...)
	for _, k := range keys {
		_, _ = s.Insert(k)
	}
	return s
}

func slotHintOpt[K comparable](hint int) Option[K] {
	return slotHintOption[K]{hint}
}

// setMaxLoadFactor clamps ml into [0.01, 1.0] per spec.md §4.2.2.
func (s *Set[K]) setMaxLoadFactor(ml float64) {
	switch {
	case ml < 0.01:
		ml = 0.01
	case ml > 1.0:
		ml = 1.0
	}
	s.maxLoadFactor = ml
}

// geometryFor picks the smallest (q, r) pair, under the set's current
// fMax, whose capacity(2^q, maxLoadFactor) is at least sizeHint.
func (s *Set[K]) geometryFor(sizeHint int) (q, r uint) {
	if sizeHint < 0 {
		sizeHint = 0
	}
	n := minSlotsFor(sizeHint, s.maxLoadFactor)
	qq := bits.Len(uint(n - 1))
	if n <= 1 {
		qq = 0
	}
	// rr can go negative when sizeHint demands more slots than FMax can
	// address; clamp to 0 so callers see the same exceeded-capacity
	// sentinel as the exact-fit case instead of an underflowed r.
	rr := int(s.fMax) - qq
	if rr < 0 {
		rr = 0
	}
	return uint(qq), uint(rr)
}

// minSlotsFor returns the smallest power of two N such that
// floor(ml*N) >= size.
func minSlotsFor(size int, ml float64) int {
	if size <= 0 {
		return 1
	}
	n := 1
	for capacityOf(n, ml) < size {
		n <<= 1
	}
	return n
}

func capacityOf(slotCount int, ml float64) int {
	c := int(math.Floor(ml * float64(slotCount)))
	if c > slotCount {
		c = slotCount
	}
	return c
}

// Empty reports whether the set has no elements.
func (s *Set[K]) Empty() bool { return s.engine.Empty() }

// Len returns the number of elements in the set.
func (s *Set[K]) Len() int { return s.engine.Len() }

// SlotCount returns the number of physical slots in the underlying
// engine, always a power of two.
func (s *Set[K]) SlotCount() int { return s.engine.Cap() }

// Cap returns floor(MaxLoadFactor * SlotCount), the largest size the set
// will accept before it must grow the engine.
func (s *Set[K]) Cap() int {
	return capacityOf(s.SlotCount(), s.maxLoadFactor)
}

// MaxSize returns 2^(FMax-1), the largest number of distinct fingerprints
// representable at the set's configured fingerprint width. When FMax is 0
// or above 63 it returns math.MaxInt instead.
func (s *Set[K]) MaxSize() int {
	if s.fMax == 0 || s.fMax > 63 {
		return math.MaxInt
	}
	return 1 << (s.fMax - 1)
}

// LoadFactor returns Len()/SlotCount(), or 0 for a Set with no slots.
func (s *Set[K]) LoadFactor() float64 {
	if s.SlotCount() == 0 {
		return 0
	}
	return float64(s.Len()) / float64(s.SlotCount())
}

// MaxLoadFactor returns the set's current max load factor.
func (s *Set[K]) MaxLoadFactor() float64 { return s.maxLoadFactor }

// SetMaxLoadFactor changes the set's max load factor, clamped to
// [0.01, 1.0]. A lower factor can shrink Cap() below the current size; when
// that happens SetMaxLoadFactor immediately grows the engine to the
// smallest geometry that again satisfies size <= capacity, returning
// ErrCapacityExceeded if the configured FMax cannot support it.
func (s *Set[K]) SetMaxLoadFactor(ml float64) error {
	s.setMaxLoadFactor(ml)
	if s.Len() > s.Cap() {
		return s.grow(s.Len())
	}
	return nil
}

func (s *Set[K]) fingerprint(k K) uint64 {
	h := s.hash(k)
	if s.fMax < 64 {
		h &= (uint64(1) << s.fMax) - 1
	}
	return h
}

// Contains reports whether k's fingerprint is stored in the set.
func (s *Set[K]) Contains(k K) bool {
	return s.engine.Contains(s.fingerprint(k))
}

// Count returns 0 or 1, the number of times k's fingerprint is stored.
func (s *Set[K]) Count(k K) int {
	return s.engine.Count(s.fingerprint(k))
}

// All iterates the set's fingerprints in ascending order, decoded back
// into their high/low bit representation. Because keys are never stored,
// All yields each member's fingerprint reinterpreted as K's hash domain
// is not reversible in general — callers that need the original key back
// out should maintain their own key list alongside the Set, or prefer
// Contains/Count for membership queries. All exists chiefly to support
// Equal and tests built against a reference set of fingerprints.
func (s *Set[K]) All(yield func(fp uint64) bool) {
	for it := s.engine.Begin(); !it.IsEnd(); it.Next() {
		if !yield(it.Value()) {
			return
		}
	}
}

// Insert adds k to the set. It reports whether a new element was added.
// If the engine is at capacity and k is not already a member, Insert
// grows the engine (see Reserve) and retries; ErrCapacityExceeded is
// returned if no geometry under the configured FMax can hold the grown
// size.
func (s *Set[K]) Insert(k K) (bool, error) {
	fp := s.fingerprint(k)

	if s.Len() >= s.Cap() {
		if s.engine.Contains(fp) {
			return false, nil
		}
		if err := s.grow(s.Len() + 1); err != nil {
			return false, err
		}
	}

	_, inserted, err := s.engine.Insert(fp)
	return inserted, err
}

// InsertAll inserts every key in ks, stopping at the first error.
func (s *Set[K]) InsertAll(ks []K) error {
	for _, k := range ks {
		if _, err := s.Insert(k); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes k from the set, reporting whether it was present.
func (s *Set[K]) Delete(k K) bool {
	return s.engine.Erase(s.fingerprint(k)) > 0
}

// Clear removes every element. Engine geometry is unchanged.
func (s *Set[K]) Clear() {
	s.engine.Clear()
}

// Reserve ensures the set can hold at least n elements without a further
// resize, growing the engine immediately if needed. It never shrinks.
func (s *Set[K]) Reserve(n int) error {
	if n <= s.Cap() {
		return nil
	}
	return s.grow(n)
}

// Regenerate rebuilds the engine at the smallest geometry that can hold
// max(Len(), slotHint) elements, re-inserting every current fingerprint.
// Passing 0 re-tiles to the minimum geometry for the set's current size.
func (s *Set[K]) Regenerate(slotHint int) error {
	target := s.Len()
	if slotHint > target {
		target = slotHint
	}
	return s.rebuildFor(target)
}

// grow implements spec.md §4.2.2's insert-driven resize: compute the
// smallest power-of-two slot count that gives capacity for size, check
// that FMax can still support it, then rebuild.
func (s *Set[K]) grow(size int) error {
	if err := s.rebuildFor(size); err != nil {
		s.logf(logrus.Fields{"size": size, "fMax": s.fMax}, "qfset: capacity exceeded")
		return err
	}
	return nil
}

func (s *Set[K]) rebuildFor(size int) error {
	q, r := s.geometryFor(size)
	if r == 0 {
		return ErrCapacityExceeded
	}
	return s.rebuildWithGeometry(q, r)
}

func (s *Set[K]) rebuildWithGeometry(q, r uint) error {
	next, err := qfp.New(q, r)
	if err != nil {
		return err
	}
	for it := s.engine.Begin(); !it.IsEnd(); it.Next() {
		if _, _, err := next.Insert(it.Value()); err != nil {
			// Cannot happen: next was sized for at least s.Len() elements
			// and every fingerprint is distinct in the source engine.
			return err
		}
	}
	s.logf(logrus.Fields{
		"oldSlots": s.engine.Cap(),
		"newSlots": next.Cap(),
		"size":     s.engine.Len(),
	}, "qfset: resized engine")
	s.engine = next
	return nil
}

func (s *Set[K]) logf(fields logrus.Fields, msg string) {
	if s.logger == nil {
		return
	}
	s.logger.WithFields(fields).Debug(msg)
}

// Equal reports whether s and other contain the same fingerprints, per
// spec.md §4.2.4: sizes must match and iteration sequences must match
// element-wise. Hash function, max load factor, and slot count do not
// participate.
func (s *Set[K]) Equal(other *Set[K]) bool {
	if s.Len() != other.Len() {
		return false
	}
	a, b := s.engine.Begin(), other.engine.Begin()
	for !a.IsEnd() {
		if b.IsEnd() || a.Value() != b.Value() {
			return false
		}
		a.Next()
		b.Next()
	}
	return b.IsEnd()
}
