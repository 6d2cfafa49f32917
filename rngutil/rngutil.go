// Package rngutil provides the per-worker PRNG the victim selector
// samples from. Each worker gets its own *rand.Rand seeded with
// ID+1000 so no two workers ever share generator state and no worker
// is ever seeded with zero.
//
// Standard-library math/rand is used deliberately: this is a
// non-cryptographic, deterministically-seeded, single-goroutine
// sequence, which is exactly what math/rand is for.
package rngutil

import "math/rand"

// New returns a PRNG seeded for worker id.
func New(id int32) *rand.Rand {
	seed := int64(id) + 1000
	return rand.New(rand.NewSource(seed))
}
