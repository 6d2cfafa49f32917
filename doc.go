// Package lace implements a distributed work-stealing / work-sharing
// scheduler core: a fixed partition of goroutine-backed workers
// arranged in a complete binary tree, each with a private task deque,
// trading steal requests and tasks over non-blocking channels, with a
// lifeline/work-sharing escalation path and cooperative termination
// detection.
//
// A Runtime owns one partition. Construct one with NewRuntime, seed it
// with work via Submit, and call Run to launch the worker goroutines
// and block until the partition observes global quiescence.
package lace
