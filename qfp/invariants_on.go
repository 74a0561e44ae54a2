//go:build qfp_invariants

package qfp

const invariants = true
