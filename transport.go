package lace

import "github.com/go-foundations/lace/victim"

// maxSendRetries bounds SendReq's non-blocking retry loop. Persistent
// failure past this point means a channel was sized wrong at init,
// a programming error, not a runtime condition, so it is fatal.
const maxSendRetries = 300

// SendReq delivers req to the worker at victimPID's request inbox,
// retrying the non-blocking send until it succeeds, TaskingDone
// latches true, or the retry budget is exhausted.
func SendReq(w *Worker, req StealRequest, victimPID int32) {
	inbox := w.ReqInboxes[victimPID]

	failures := 0
	for attempt := 0; attempt < maxSendRetries; attempt++ {
		if inbox.Send(req) {
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
	panic(protocolViolation("worker %d: request inbox for %d never drained after %d attempts "+
		"(channel capacity likely mis-sized)", w.ID, victimPID, maxSendRetries))
}

// RecvReq drains Failed messages off this worker's own request inbox,
// folding each onto the lifeline queue and updating the matching
// subtree-idle flag, then returns the first non-Failed message it
// finds (or zero, false if the inbox is empty).
func RecvReq(w *Worker) (StealRequest, bool) {
	inbox := w.ReqInboxes[w.PID]
	self := w.Tree[w.PID]

	for {
		req, ok := inbox.Receive()
		if !ok {
			return StealRequest{}, false
		}
		if req.State != Failed {
			return req, true
		}

		switch req.PID {
		case self.LeftChild:
			assertf(!w.Tree[w.PID].LeftSubtreeIdle, "worker %d: left subtree already idle", w.ID)
			w.Tree[w.PID].LeftSubtreeIdle = true
		case self.RightChild:
			assertf(!w.Tree[w.PID].RightSubtreeIdle, "worker %d: right subtree already idle", w.ID)
			w.Tree[w.PID].RightSubtreeIdle = true
		default:
			panic(protocolViolation("worker %d: Failed request from non-child %d", w.ID, req.PID))
		}

		w.LifelineQueue.Enqueue(req)
		if head, ok := w.LifelineQueue.Head(); ok {
			debugTD(w.Logger, w.Cfg.DebugTD, "lifeline queue head",
				"worker", w.ID, "head_pid", head.PID, "queued", w.LifelineQueue.Len())
		}
	}
}

// RecvTask polls this worker's task inboxes in order. On a hit it
// recycles the inbox index and reconciles bookkeeping; on a miss it
// attempts to send a fresh steal request before reporting no task.
//
// A hit delivers the whole batch the victim promised in one message:
// the first task is returned to the caller now, and any remainder
// (from a StealHalf reply) is pushed onto this worker's own deque
// before the slot is recycled, so the single accepted request's
// channel is never reused until every task it promised has arrived.
func RecvTask(w *Worker) (Task, bool) {
	for idx, inbox := range w.TaskInboxes {
		batch, ok := inbox.Receive()
		if !ok || len(batch) == 0 {
			continue
		}

		w.ChannelStack.Push(int32(idx))

		switch {
		case w.waitingForTasks():
			// This worker had previously dropped all but one of its
			// MaxSteal requests and ascended the last as Failed; this
			// task is the parent resuming it. Every other request has
			// already bounced home and been dropped back onto the
			// stack, so the stack should be back to full.
			assertf(w.ChannelStack.Len() == w.Cfg.MaxSteal,
				"worker %d: channel stack at %d, want %d, resuming from quiescence",
				w.ID, w.ChannelStack.Len(), w.Cfg.MaxSteal)
			w.Requested = 1
			w.DroppedStealRequests = 0
			w.setWaitingForTasks(false)
			w.Requested--
		case w.DroppedStealRequests > 0:
			// Partial drops since the last reconciliation: fold them
			// back into Requested now so the budget check sees the
			// freed slots, and reset the tally so it never grows
			// across idle cycles.
			w.Requested -= w.DroppedStealRequests
			w.DroppedStealRequests = 0
			w.Requested--
		default:
			w.Requested--
		}

		if w.Cfg.StealLastVictim {
			w.LastVictim = w.PendingVictim[idx]
		}
		w.PendingVictim[idx] = victim.NoWorker

		assertf(w.Requested >= 0, "worker %d: Requested went negative", w.ID)
		w.StealCtl.RecordStealExecuted()

		for _, overflow := range batch[1:] {
			w.Deque.Push(overflow)
		}
		return batch[0], true
	}

	TrySendStealRequest(w)
	return Task{}, false
}
