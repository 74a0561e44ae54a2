package qfset

import "errors"

// ErrCapacityExceeded is returned when a resize would need a remainder
// width of zero to hold the requested slot count under the set's
// configured fingerprint width.
var ErrCapacityExceeded = errors.New("qfset: capacity exceeded for configured fingerprint width")
