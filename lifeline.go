package lace

import (
	"github.com/go-foundations/lace/bitfield"
	"github.com/go-foundations/lace/victim"
)

// deliverTasks sends the whole batch a satisfied steal request earned
// to the requester's reply channel (AllTaskBoxes[pid][chanIdx]) in one
// message, retrying the non-blocking send the same way SendReq does
// for steal requests. Sending the batch in one shot, rather than one
// task per send, keeps the capacity-1 channel exclusive to the one
// (requester, victim) pair that negotiated it for the request's whole
// lifetime: the requester's RecvTask only ever recycles the slot after
// this entire batch has arrived.
func deliverTasks(w *Worker, pid, chanIdx int32, tasks TaskBatch) {
	outbox := w.AllTaskBoxes[pid][chanIdx]

	failures := 0
	for attempt := 0; attempt < maxSendRetries; attempt++ {
		if outbox.Send(tasks) {
			return
		}
		if w.TaskingDone.Load() {
			return
		}
		failures++
		if failures%3 == 0 {
			retryWarning(w.Logger, w.ID, failures)
		}
	}
	panic(protocolViolation("worker %d: task channel for (%d,%d) never drained", w.ID, pid, chanIdx))
}

// HandleIncomingRequest drains one request off this worker's inbox (if
// any) and either services it from the local deque, forwards it to
// another victim, or, if it is this worker's own request bouncing
// back exhausted, hands it to ascendExhaustedRequest to be dropped or
// promoted to Failed and ascended to the parent.
func HandleIncomingRequest(w *Worker) {
	req, ok := RecvReq(w)
	if !ok {
		return
	}

	if req.ID == w.ID {
		ascendExhaustedRequest(w, req)
		return
	}

	if req.StealHalf.bool() {
		if tasks, ok := w.Deque.StealHalf(); ok {
			deliverTasks(w, req.PID, req.Chan, tasks)
			w.Metrics.StealsSucceeded.WithLabelValues(itoa(w.ID)).Inc()
			w.LastThief = req.PID
			return
		}
	} else if t, ok := w.Deque.Steal(); ok {
		deliverTasks(w, req.PID, req.Chan, TaskBatch{t})
		w.Metrics.StealsSucceeded.WithLabelValues(itoa(w.ID)).Inc()
		w.LastThief = req.PID
		return
	}

	forwardRequest(w, req)
}

// ascendExhaustedRequest handles one of this worker's own requests
// bouncing back exhausted. The first MaxSteal-1 to arrive are dropped;
// the last one is promoted to Failed and ascended to the parent (or,
// at the root, simply latches WaitingForTasks), so at most one of a
// worker's requests is ever forwarded upward at a time.
//
// Requested is NOT decremented here: it stays pegged at MaxSteal for
// the whole quiescent period so TrySendStealRequest's budget check
// keeps refusing new sends. A dropped request's inbox is still returned
// to the stack (it is genuinely free to reuse), and RecvTask is where
// Requested, DroppedStealRequests, and WaitingForTasks all get
// reconciled back once a task actually arrives.
func ascendExhaustedRequest(w *Worker, req StealRequest) {
	if w.DroppedStealRequests < w.Cfg.MaxSteal-1 {
		w.DroppedStealRequests++
		w.ChannelStack.Push(req.Chan)
		w.Metrics.DroppedStealRequests.WithLabelValues(itoa(w.ID)).Inc()
		return
	}

	w.setWaitingForTasks(true)

	self := w.Tree[w.PID]
	if self.IsRoot() {
		return
	}

	req.State = Failed
	SendReq(w, req, self.Parent)
}

// forwardRequest advances a request that this worker could not
// satisfy locally: increments Retry and dispatches to the next victim
// chosen by the selector, using the biased policy when configured.
func forwardRequest(w *Worker, req StealRequest) {
	req.Retry++
	vf := bitfield.Field(req.Victims)

	likelyHasTasks := func(pid int32) bool {
		if int(pid) >= len(w.AllHasTasks) {
			return true
		}
		return victim.LikelyHasTasks(w.Cfg.VictimCheck, w.AllHasTasks[pid])
	}

	var target int32
	if w.Cfg.StealLastThief && w.LastThief != victim.NoWorker {
		target = victim.StealFrom(&vf, w.PID, req.ID, w.LastThief, req.Retry,
			w.Cfg.MaxStealAttempts, w.NumWorkersRT, w.Tree, w.RNG, likelyHasTasks)
	} else {
		target = victim.NextVictim(&vf, w.PID, req.ID, req.Retry,
			w.Cfg.MaxStealAttempts, w.NumWorkersRT, w.Tree, w.RNG)
	}
	req.Victims = uint32(vf)

	SendReq(w, req, target)
}

// ShareWork drains this worker's lifeline queue, handing freshly
// acquired tasks to each waiting child before the worker issues any
// new steal requests of its own.
func ShareWork(w *Worker) {
	for {
		req, ok := w.LifelineQueue.Dequeue()
		if !ok {
			return
		}

		if req.StealHalf.bool() {
			tasks, gotTasks := w.Deque.StealHalf()
			if !gotTasks {
				// Nothing to give yet: put it back and stop.
				w.LifelineQueue.Enqueue(req)
				return
			}
			deliverTasks(w, req.PID, req.Chan, tasks)
		} else {
			t, gotTask := w.Deque.Steal()
			if !gotTask {
				w.LifelineQueue.Enqueue(req)
				return
			}
			deliverTasks(w, req.PID, req.Chan, TaskBatch{t})
		}

		clearSubtreeIdleFor(w, req.PID)
		w.Metrics.StealsSucceeded.WithLabelValues(itoa(w.ID)).Inc()
		w.LastThief = req.PID
	}
}

// clearSubtreeIdleFor resets the subtree-idle flag for whichever child
// req.PID came from, now that it has been fed.
func clearSubtreeIdleFor(w *Worker, childPID int32) {
	self := w.Tree[w.PID]
	switch childPID {
	case self.LeftChild:
		w.Tree[w.PID].LeftSubtreeIdle = false
	case self.RightChild:
		w.Tree[w.PID].RightSubtreeIdle = false
	}
}
