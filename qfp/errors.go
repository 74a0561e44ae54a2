package qfp

import "errors"

// ErrInvalidGeometry is returned by New when the requested remainder width
// cannot hold any bits.
var ErrInvalidGeometry = errors.New("qfp: remainder width must be at least 1 bit")

// ErrFilterFull is returned by Insert when the filter has no empty slot
// left and the fingerprint being inserted is not already present.
var ErrFilterFull = errors.New("qfp: filter is full")

// ErrIteratorMismatch is returned by EraseAt when the iterator was not
// produced by the filter it is being applied to.
var ErrIteratorMismatch = errors.New("qfp: iterator does not belong to this filter")

// ErrIteratorEnd is returned by EraseAt when passed the end iterator.
var ErrIteratorEnd = errors.New("qfp: iterator is the end iterator")

// ErrIteratorStale is returned by EraseAt when the iterator was captured
// before a mutation that has since invalidated it.
var ErrIteratorStale = errors.New("qfp: iterator invalidated by a mutation")
