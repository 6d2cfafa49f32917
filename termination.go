package lace

import "github.com/go-foundations/lace/topology"

// subtreeIdle reports whether childPID's subtree is flagged idle, or
// true vacuously when childPID is absent (a leaf has no subtree to
// wait on).
func subtreeIdle(w *Worker, childPID int32) bool {
	if childPID == topology.NoWorker {
		return true
	}
	self := w.Tree[w.PID]
	if childPID == self.LeftChild {
		return self.LeftSubtreeIdle
	}
	if childPID == self.RightChild {
		return self.RightSubtreeIdle
	}
	return true
}

// IsLocallyQuiescent reports whether this worker can make no further
// local progress: both subtrees idle, its own deque empty, and it is
// waiting on a Failed request of its own.
func IsLocallyQuiescent(w *Worker) bool {
	self := w.Tree[w.PID]
	return subtreeIdle(w, self.LeftChild) && subtreeIdle(w, self.RightChild) &&
		w.Deque.IsEmpty() && w.waitingForTasks()
}

// CheckTermination declares global termination when called by the
// root while locally quiescent: it latches TaskingDone and notifies
// the partition manager exactly once. Returns whether termination was
// (or already had been) declared.
func CheckTermination(w *Worker, mgr topology.Manager) bool {
	if w.TaskingDone.Load() {
		return true
	}
	if !w.Tree[w.PID].IsRoot() || !IsLocallyQuiescent(w) {
		return false
	}

	if !w.TaskingDone.CompareAndSwap(false, true) {
		return true
	}
	debugTD(w.Logger, w.Cfg.DebugTD, "global termination declared", "worker", w.ID)
	if mgr != nil {
		mgr.NotifyTermination()
	}
	return true
}
