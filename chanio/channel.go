// Package chanio implements the non-blocking channel contract that
// the scheduler core builds on: a fixed-capacity, bounded channel with
// non-blocking Send/Receive/Peek. MPSC and SPSC share one
// implementation: Go's built-in channels already tolerate arbitrary
// concurrent senders and a single receiver; the MPSC/SPSC distinction
// is a contract on which side of the scheduler is allowed to call
// Send versus Receive, not a difference in mechanism.
package chanio

// Channel is a bounded, non-blocking channel of fixed-size elements.
type Channel[T any] struct {
	ch chan T
}

// New creates a channel with the given capacity.
func New[T any](capacity int) *Channel[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Channel[T]{ch: make(chan T, capacity)}
}

// Send attempts a non-blocking send, reporting whether it succeeded.
func (c *Channel[T]) Send(v T) bool {
	select {
	case c.ch <- v:
		return true
	default:
		return false
	}
}

// Receive attempts a non-blocking receive, reporting whether a value
// was available.
func (c *Channel[T]) Receive() (T, bool) {
	select {
	case v := <-c.ch:
		return v, true
	default:
		var zero T
		return zero, false
	}
}

// Peek returns the number of values currently buffered.
func (c *Channel[T]) Peek() int {
	return len(c.ch)
}

// Cap returns the channel's fixed capacity.
func (c *Channel[T]) Cap() int {
	return cap(c.ch)
}

// SPSC is a single-producer single-consumer channel. It embeds
// Channel and adds no behaviour of its own: the scheduler enforces the
// single-writer / single-reader discipline by construction (one task
// inbox is ever attached to one (requester, victim) pair at a time),
// not by a different runtime mechanism.
type SPSC[T any] struct{ *Channel[T] }

// MPSC is a multi-producer single-consumer channel: the worker
// request inbox, written to by any worker that chooses this worker as
// a victim, read only by the owning worker. Like SPSC, it embeds
// Channel unchanged.
type MPSC[T any] struct{ *Channel[T] }

// NewSPSC creates a single-producer single-consumer channel.
func NewSPSC[T any](capacity int) *SPSC[T] {
	return &SPSC[T]{New[T](capacity)}
}

// NewMPSC creates a multi-producer single-consumer channel.
func NewMPSC[T any](capacity int) *MPSC[T] {
	return &MPSC[T]{New[T](capacity)}
}
