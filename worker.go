package lace

import (
	"context"
	"math/rand"

	"go.uber.org/zap"

	"go.uber.org/atomic"

	"github.com/go-foundations/lace/boundedqueue"
	"github.com/go-foundations/lace/chanio"
	"github.com/go-foundations/lace/deque"
	"github.com/go-foundations/lace/metrics"
	"github.com/go-foundations/lace/rngutil"
	"github.com/go-foundations/lace/strategy"
	"github.com/go-foundations/lace/topology"
	"github.com/go-foundations/lace/victim"
)

// Task is the scheduler's opaque unit of work. The scheduler never
// inspects Fn; it only moves Tasks between deques and task-inbox
// channels.
type Task struct {
	Fn func(ctx context.Context)
}

// TaskBatch is everything one satisfied steal request hands back over
// its single task-inbox slot in one send: exactly one Task for a
// StealOne reply, or however many a StealHalf deque split yielded.
// Sending the whole batch as one message keeps a capacity-1 SPSC
// channel genuinely single-use for the (requester, victim) pair that
// negotiated it, instead of dribbling it out task-by-task while the
// thief has already recycled the slot.
type TaskBatch []Task

// Worker is one goroutine's entire private state plus references to
// the shared, cross-worker channels it needs to send requests and
// tasks to its peers. The tree's subtree-idle flags are single-writer
// and never touched from any other worker's goroutine.
type Worker struct {
	ID        int32
	PID       int32
	Partition int32

	NumWorkersRT int
	Tree         []topology.WorkerTree

	Deque *deque.Deque[Task]

	// ChannelStack holds the indices, into this worker's own task
	// inboxes, not currently embedded in an outstanding StealRequest.
	// Popped when a request is sent, pushed back when the
	// corresponding task inbox is drained or the request is dropped.
	ChannelStack *boundedqueue.Stack[int32]

	// TaskInboxes is this worker's own array of MaxSteal task
	// channels, one per outstanding steal-request slot. Each receive
	// carries the whole batch a victim handed over (one task for a
	// StealOne reply, several for StealHalf) in a single send, so the
	// capacity-1 channel is never shared by more than the one
	// (requester, victim) pair the outstanding request promised.
	TaskInboxes []*chanio.SPSC[TaskBatch]

	// ReqInboxes is shared across the whole partition, indexed by PID:
	// any worker may send a StealRequest into ReqInboxes[victimPID].
	ReqInboxes []*chanio.MPSC[StealRequest]

	// AllTaskBoxes is shared across the whole partition:
	// AllTaskBoxes[requesterPID][chanIdx] is the task channel a victim
	// replies on for the request the requester sent through that slot.
	AllTaskBoxes [][]*chanio.SPSC[TaskBatch]

	// AllHasTasks is shared across the whole partition, indexed by
	// PID: AllHasTasks[pid] is that worker's own LikelyHasTasks flag,
	// read by other workers' victim selectors.
	AllHasTasks []*victim.HasTasksFlag

	// LifelineQueue holds this worker's children's Failed requests, at
	// most one per child, until ShareWork drains it.
	LifelineQueue *boundedqueue.Queue[StealRequest]

	Requested            int
	DroppedStealRequests int

	HasTasks   *victim.HasTasksFlag
	LastVictim int32
	LastThief  int32

	// PendingVictim[idx] records which PID a steal request sent
	// through channel-stack slot idx was dispatched to, so RecvTask
	// can update LastVictim when that slot's task arrives.
	PendingVictim []int32

	RNG *rand.Rand

	StealCtl *strategy.Controller

	Cfg     Config
	Logger  *zap.Logger
	Metrics *metrics.Collectors

	// TaskingDone is shared across the whole partition; it latches
	// true once when the root observes global quiescence, and every
	// worker's retry loops observe it to abandon in-flight work.
	TaskingDone *atomic.Bool
}

// newWorker builds one worker's private state. Shared slices
// (reqInboxes, allTaskBoxes, tree) belong to the Runtime that owns the
// whole partition and are handed in by reference.
func newWorker(id, pid, partition int32, numWorkersRT int, tree []topology.WorkerTree,
	reqInboxes []*chanio.MPSC[StealRequest], allTaskBoxes [][]*chanio.SPSC[TaskBatch],
	allHasTasks []*victim.HasTasksFlag, cfg Config,
	logger *zap.Logger, mcs *metrics.Collectors, taskingDone *atomic.Bool) *Worker {

	w := &Worker{
		ID:            id,
		PID:           pid,
		Partition:     partition,
		NumWorkersRT:  numWorkersRT,
		Tree:          tree,
		Deque:         deque.New[Task](32),
		ChannelStack:  boundedqueue.NewStack[int32](cfg.MaxSteal),
		TaskInboxes:   allTaskBoxes[pid],
		ReqInboxes:    reqInboxes,
		AllTaskBoxes:  allTaskBoxes,
		AllHasTasks:   allHasTasks,
		LifelineQueue: boundedqueue.NewQueue[StealRequest](2),
		HasTasks:      allHasTasks[pid],
		LastVictim:    victim.NoWorker,
		LastThief:     victim.NoWorker,
		RNG:           rngutil.New(id),
		StealCtl:      strategy.NewController(cfg.StealAdaptativeInterval),
		Cfg:           cfg,
		Logger:        logger,
		Metrics:       mcs,
		TaskingDone:   taskingDone,
	}
	for i := 0; i < cfg.MaxSteal; i++ {
		w.ChannelStack.Push(int32(i))
	}
	w.PendingVictim = make([]int32, cfg.MaxSteal)
	for i := range w.PendingVictim {
		w.PendingVictim[i] = victim.NoWorker
	}
	return w
}

// waitingForTasks reports whether this worker is latched waiting for
// its lifeline to be fed. Backed by the worker's own node in the
// shared tree, next to its subtree-idle flags, not a private field.
func (w *Worker) waitingForTasks() bool {
	return w.Tree[w.PID].WaitingForTasks
}

func (w *Worker) setWaitingForTasks(v bool) {
	w.Tree[w.PID].WaitingForTasks = v
}
