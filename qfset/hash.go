package qfset

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash"
)

// Hash computes a 64-bit digest of a key. The low FMax bits of the
// result are what the set actually stores as a fingerprint; see
// WithFingerprintBits. A Hash must be pure: equal keys must always
// produce equal digests for the lifetime of a Set.
type Hash[K comparable] func(K) uint64

// defaultHash returns a Hash usable for any comparable K without the
// caller supplying one explicitly. It special-cases the key shapes most
// sets are built over — strings, byte slices, and fixed-width integers —
// routing them through xxhash directly, the same hash Psiphon's
// consistent-hashing ring uses for its keys. Any other comparable type
// falls back to hashing its %#v representation, which stays pure because
// Go's fmt formatting of a comparable value depends only on that value.
func defaultHash[K comparable]() Hash[K] {
	return func(k K) uint64 {
		switch v := any(k).(type) {
		case string:
			return xxhash.Sum64String(v)
		case []byte:
			return xxhash.Sum64(v)
		case int:
			return hashUint64(uint64(v))
		case int8:
			return hashUint64(uint64(v))
		case int16:
			return hashUint64(uint64(v))
		case int32:
			return hashUint64(uint64(v))
		case int64:
			return hashUint64(uint64(v))
		case uint:
			return hashUint64(uint64(v))
		case uint8:
			return hashUint64(uint64(v))
		case uint16:
			return hashUint64(uint64(v))
		case uint32:
			return hashUint64(uint64(v))
		case uint64:
			return hashUint64(v)
		default:
			return xxhash.Sum64String(fmt.Sprintf("%#v", v))
		}
	}
}

func hashUint64(v uint64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return xxhash.Sum64(buf[:])
}
