package lace

import "github.com/pkg/errors"

// protocolViolation wraps a broken invariant with a stack trace. These
// are bugs, not expected runtime conditions: the caller is expected to
// panic with the result, caught at the worker-loop boundary.
func protocolViolation(format string, args ...interface{}) error {
	return errors.Errorf(format, args...)
}

// assertf panics with a stack-traced error if cond is false. Used at
// the handful of invariant checks (RecvReq's subtree-idle flags,
// RecvTask's channel-stack and Requested bookkeeping) where a
// violation means the scheduler itself is broken.
func assertf(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(protocolViolation(format, args...))
	}
}
