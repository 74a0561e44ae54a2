package qfset

import "github.com/sirupsen/logrus"

// Option configures a Set at construction time, mirroring the
// functional-options shape of qfp's underlying engine's teacher package.
type Option[K comparable] interface {
	apply(s *Set[K])
}

type hashOption[K comparable] struct {
	hash Hash[K]
}

func (o hashOption[K]) apply(s *Set[K]) { s.hash = o.hash }

// WithHash overrides the hash function used to fingerprint keys. The
// default covers strings, byte slices, and fixed-width integers; any
// other key type should supply one explicitly.
func WithHash[K comparable](hash Hash[K]) Option[K] {
	return hashOption[K]{hash}
}

type maxLoadFactorOption[K comparable] struct {
	ml float64
}

func (o maxLoadFactorOption[K]) apply(s *Set[K]) { s.setMaxLoadFactor(o.ml) }

// WithMaxLoadFactor sets the set's initial max load factor, clamped to
// [0.01, 1.0]. The default is 0.75.
func WithMaxLoadFactor[K comparable](ml float64) Option[K] {
	return maxLoadFactorOption[K]{ml}
}

type slotHintOption[K comparable] struct {
	hint int
}

func (o slotHintOption[K]) apply(s *Set[K]) { s.slotHint = o.hint }

// WithSlotHint requests an initial slot count sized for hint elements at
// the set's max load factor, avoiding early resizes.
func WithSlotHint[K comparable](hint int) Option[K] {
	return slotHintOption[K]{hint}
}

type fingerprintBitsOption[K comparable] struct {
	bits uint
}

func (o fingerprintBitsOption[K]) apply(s *Set[K]) { s.fMax = o.bits }

// WithFingerprintBits overrides FMax, the number of low bits of a key's
// hash that are kept as its fingerprint. The default is 64 (the full
// width of Hash[K]'s return value). A narrower FMax bounds max_size at
// the cost of more truncation-driven false positives between distinct
// keys, and caps how far the set can grow before CapacityExceeded.
func WithFingerprintBits[K comparable](bits uint) Option[K] {
	return fingerprintBitsOption[K]{bits}
}

type loggerOption[K comparable] struct {
	logger *logrus.Logger
}

func (o loggerOption[K]) apply(s *Set[K]) { s.logger = o.logger }

// WithLogger attaches a logger that receives debug-level entries for
// resizes and capacity failures. Omitting this option leaves the set
// silent; logging is a pure observability hook and never affects
// behavior.
func WithLogger[K comparable](logger *logrus.Logger) Option[K] {
	return loggerOption[K]{logger}
}
