// Package victim implements steal-request victim selection:
// NextVictim, RandomVictim, the StealLastVictim / StealLastThief
// biased policies, LikelyHasTasks, and MarkAsIdle.
//
// It deliberately knows nothing about StealRequest or Worker: it
// operates on bitfields, plain IDs, and the worker tree, so the root
// scheduler package can depend on it without an import cycle.
package victim

import (
	"math/rand"

	"github.com/go-foundations/lace/bitfield"
	"github.com/go-foundations/lace/topology"
)

// NoWorker mirrors topology.NoWorker for callers that only import
// victim.
const NoWorker = topology.NoWorker

// NextVictim chooses the next worker a steal request should be
// forwarded to, or returns requesterID to bounce the request home.
//
// holderID is the worker currently deciding where to forward; victims
// is mutated in place (the holder's own bit is always cleared before
// forwarding).
func NextVictim(victims *bitfield.Field, holderID, requesterID int32, retry, maxStealAttempts uint8,
	numWorkersRT int, tree []topology.WorkerTree, rng *rand.Rand) int32 {

	victims.Clear(holderID)

	if numWorkersRT <= 1 {
		return requesterID
	}

	if requesterID == holderID {
		// First dispatch: uniformly random worker != self, ignoring
		// the victims bitfield (it has not been narrowed by any
		// forwarding yet).
		for {
			candidate := int32(rng.Intn(numWorkersRT))
			if candidate != holderID {
				return candidate
			}
		}
	}

	if retry == maxStealAttempts {
		return requesterID
	}

	maskIdleSubtrees(victims, holderID, tree)

	v := RandomVictim(*victims, holderID, numWorkersRT, rng)
	if v == NoWorker {
		return requesterID
	}
	return v
}

// maskIdleSubtrees clears each of the holder's child subtrees that is
// flagged idle (and, if both are, the holder itself) from victims.
func maskIdleSubtrees(victims *bitfield.Field, holderID int32, tree []topology.WorkerTree) {
	if int(holderID) >= len(tree) {
		return
	}
	node := tree[holderID]

	if node.LeftSubtreeIdle && node.RightSubtreeIdle {
		victims.Clear(holderID)
		MarkAsIdle(victims, node.LeftChild, tree)
		MarkAsIdle(victims, node.RightChild, tree)
		return
	}
	if node.LeftSubtreeIdle {
		MarkAsIdle(victims, node.LeftChild, tree)
	}
	if node.RightSubtreeIdle {
		MarkAsIdle(victims, node.RightChild, tree)
	}
}

// MarkAsIdle recursively clears bit n and all of n's descendants in
// victims. A no-op when n == NoWorker.
func MarkAsIdle(victims *bitfield.Field, n int32, tree []topology.WorkerTree) {
	if n == NoWorker || int(n) >= len(tree) {
		return
	}
	victims.Clear(n)
	node := tree[n]
	MarkAsIdle(victims, node.LeftChild, tree)
	MarkAsIdle(victims, node.RightChild, tree)
}

// RandomVictim picks a uniformly random set bit in victims, excluding
// excludeID. Fast path: up to 3 uniform draws in [0, numWorkersRT);
// slow path: materialize the popcount-sized set of candidates and
// pick uniformly. Returns NoWorker only when no candidate remains;
// never returns excludeID.
func RandomVictim(victims bitfield.Field, excludeID int32, numWorkersRT int, rng *rand.Rand) int32 {
	victims.Clear(excludeID)
	if victims.IsEmpty() || numWorkersRT <= 0 {
		return NoWorker
	}

	for attempt := 0; attempt < 3; attempt++ {
		candidate := int32(rng.Intn(numWorkersRT))
		if candidate != excludeID && victims.IsSet(candidate) {
			return candidate
		}
	}

	candidates := victims.Bits()
	if len(candidates) == 0 {
		return NoWorker
	}
	return candidates[rng.Intn(len(candidates))]
}

// StealFrom applies the "Last Victim" / "Last Thief" biased policies:
// reuse hint when it is a valid, non-self, non-requester worker that
// LikelyHasTasks reports as promising; otherwise fall back to
// NextVictim.
func StealFrom(victims *bitfield.Field, holderID, requesterID, hint int32, retry, maxStealAttempts uint8,
	numWorkersRT int, tree []topology.WorkerTree, rng *rand.Rand, likelyHasTasks func(int32) bool) int32 {

	victims.Clear(holderID)

	if hint != NoWorker && hint != holderID && hint != requesterID &&
		int(hint) < numWorkersRT && likelyHasTasks(hint) {
		return hint
	}

	return NextVictim(victims, holderID, requesterID, retry, maxStealAttempts, numWorkersRT, tree, rng)
}
