package lace

import "unsafe"

// State is the lifecycle stage of a StealRequest.
type State uint8

const (
	// Working: the request is in flight, looking for a victim.
	Working State = iota
	// Idle: the requester has gone idle. TrySendStealRequest builds
	// every request as Working and an exhausted request is promoted
	// straight to Failed, so no path in this package sets Idle.
	Idle
	// Failed: the request has exhausted every retry and now sits on
	// its origin's parent's lifeline queue, awaiting new work.
	Failed
)

func (s State) String() string {
	switch s {
	case Working:
		return "working"
	case Idle:
		return "idle"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// boolByte is a one-byte bool, so StealRequest's layout is exact and
// portable: Go's bool is legal-but-unspecified-size in memory, and this
// struct's size is asserted below.
type boolByte uint8

func (b boolByte) bool() bool { return b != 0 }

func boolToByte(v bool) boolByte {
	if v {
		return 1
	}
	return 0
}

// StealRequest is the fixed-size, POD message that circulates among
// workers while a worker looks for work. It is always copied by value
// through a channel, never shared by pointer across goroutines.
type StealRequest struct {
	Victims   uint32   // bitfield: bit i set => worker i still a candidate victim
	ID        int32    // requester's global worker ID
	PID       int32    // requester's intra-partition index
	Partition int32    // origin partition index
	Chan      int32    // index into the requester's task-inbox array
	Retry     uint8    // 0..MaxStealAttempts
	State     State    // Working | Idle | Failed
	StealHalf boolByte // adaptive mode only: steal half the victim's deque
	_         [9]byte  // pad to 32 bytes
}

// StealRequest must be exactly 32 bytes. Each array type below is only
// valid for one direction of inequality, so together they fail to
// compile unless the size is exactly 32: the classic
// negative-array-length size assertion.
var _ [32 - int(unsafe.Sizeof(StealRequest{}))]byte
var _ [int(unsafe.Sizeof(StealRequest{})) - 32]byte
