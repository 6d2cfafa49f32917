package lace

import (
	"github.com/go-foundations/lace/bitfield"
	"github.com/go-foundations/lace/victim"
)

// TrySendStealRequest runs the steal-attempt pump: budget check,
// adaptive retune, request construction, victim dispatch, counter
// increments.
func TrySendStealRequest(w *Worker) {
	// 1. Budget check: a worker with all MaxSteal requests outstanding
	// (including ones dropped-but-not-yet-reconciled, since Requested
	// stays pegged at MaxSteal across quiescence) sends nothing more
	// until recv_task's reconciliation frees some back up.
	if w.Requested == w.Cfg.MaxSteal {
		return
	}
	idx, ok := w.ChannelStack.Pop()
	if !ok {
		return
	}

	// 2. Adaptive retune: the controller already decided its current
	// policy as steals/tasks were recorded; read it for this request.
	stealHalf := w.Cfg.StealStrategy == StealHalf ||
		(w.Cfg.StealStrategy == StealAdaptive && w.StealCtl.StealHalf())

	// 3. Request construction.
	var victims bitfield.Field
	victims.SetUpTo(int32(w.NumWorkersRT))
	req := StealRequest{
		Victims:   uint32(victims),
		ID:        w.ID,
		PID:       w.PID,
		Partition: w.Partition,
		Chan:      idx,
		Retry:     0,
		State:     Working,
		StealHalf: boolToByte(stealHalf),
	}

	// 4. Victim dispatch.
	likelyHasTasks := func(pid int32) bool {
		if int(pid) >= len(w.AllHasTasks) {
			return true
		}
		return victim.LikelyHasTasks(w.Cfg.VictimCheck, w.AllHasTasks[pid])
	}

	var target int32
	if w.Cfg.StealLastVictim && w.LastVictim != victim.NoWorker {
		vf := bitfield.Field(req.Victims)
		target = victim.StealFrom(&vf, w.PID, w.PID, w.LastVictim, req.Retry,
			w.Cfg.MaxStealAttempts, w.NumWorkersRT, w.Tree, w.RNG, likelyHasTasks)
		req.Victims = uint32(vf)
	} else {
		vf := bitfield.Field(req.Victims)
		target = victim.NextVictim(&vf, w.PID, w.PID, req.Retry,
			w.Cfg.MaxStealAttempts, w.NumWorkersRT, w.Tree, w.RNG)
		req.Victims = uint32(vf)
	}

	w.PendingVictim[idx] = target

	// 5. Counter increments.
	w.Requested++
	if stealHalf {
		w.Metrics.RequestsStealHalf.WithLabelValues(itoa(w.ID)).Inc()
	} else {
		w.Metrics.RequestsStealOne.WithLabelValues(itoa(w.ID)).Inc()
	}
	w.Metrics.RequestsSent.WithLabelValues(itoa(w.ID)).Inc()
	w.Metrics.Requested.WithLabelValues(itoa(w.ID)).Set(float64(w.Requested))
	if w.Cfg.StealStrategy == StealAdaptive {
		active := 0.0
		if stealHalf {
			active = 1.0
		}
		w.Metrics.StealHalfActive.WithLabelValues(itoa(w.ID)).Set(active)
	}

	SendReq(w, req, target)
}
