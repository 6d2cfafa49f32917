package lace

import (
	"testing"
	"unsafe"
)

func TestStealRequestSizeIs32Bytes(t *testing.T) {
	if got := unsafe.Sizeof(StealRequest{}); got != 32 {
		t.Fatalf("expected StealRequest to be 32 bytes, got %d", got)
	}
}

func TestStateString(t *testing.T) {
	cases := map[State]string{
		Working: "working",
		Idle:    "idle",
		Failed:  "failed",
		State(99): "unknown",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Fatalf("State(%d).String() = %q, want %q", state, got, want)
		}
	}
}

func TestBoolByteRoundTrip(t *testing.T) {
	if boolToByte(true).bool() != true {
		t.Fatalf("expected true to round-trip")
	}
	if boolToByte(false).bool() != false {
		t.Fatalf("expected false to round-trip")
	}
}
