package lace

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/go-foundations/lace/chanio"
	"github.com/go-foundations/lace/metrics"
	"github.com/go-foundations/lace/topology"
	"github.com/go-foundations/lace/victim"
)

// Runtime owns one partition's workers and the shared channels that
// connect them. It is built once by NewRuntime and run once by Run.
type Runtime struct {
	cfg       Config
	logger    *zap.Logger
	metrics   *metrics.Collectors
	partition *topology.Partition
	tree      []topology.WorkerTree
	workers   []*Worker
	done      *atomic.Bool
}

// NewRuntime builds a Runtime over numWorkers goroutine-backed workers
// arranged as a complete binary tree, wired with the channels and
// collaborators it needs to run. mgr may be nil (defaults to a
// no-op termination manager). reg may be nil to skip metrics
// registration; logger may be nil to fall back to a production zap
// logger.
func NewRuntime(numWorkers int, mgr topology.Manager, reg prometheus.Registerer, logger *zap.Logger, opts ...Option) *Runtime {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if logger == nil {
		logger = newLogger()
	}
	if cfg.MaxStealAttempts == 0 {
		n := numWorkers - 1
		if n < 0 {
			n = 0
		}
		if n > 255 {
			n = 255
		}
		cfg.MaxStealAttempts = uint8(n)
	}

	partition := topology.NewPartition(numWorkers, mgr)
	tree := topology.Build(numWorkers)

	reqInboxes := make([]*chanio.MPSC[StealRequest], numWorkers)
	taskBoxes := make([][]*chanio.SPSC[TaskBatch], numWorkers)
	hasTasksFlags := make([]*victim.HasTasksFlag, numWorkers)

	reqCap := cfg.MaxSteal * numWorkers
	for i := 0; i < numWorkers; i++ {
		capacity := reqCap
		if i == 0 {
			capacity *= 2 // root fields requests from the whole tree
		}
		reqInboxes[i] = chanio.NewMPSC[StealRequest](capacity)

		boxes := make([]*chanio.SPSC[TaskBatch], cfg.MaxSteal)
		for j := range boxes {
			boxes[j] = chanio.NewSPSC[TaskBatch](1)
		}
		taskBoxes[i] = boxes

		hasTasksFlags[i] = &victim.HasTasksFlag{}
	}

	mcs := metrics.NewCollectors(reg, "lace")
	taskingDone := atomic.NewBool(false)

	workers := make([]*Worker, numWorkers)
	for i := 0; i < numWorkers; i++ {
		workers[i] = newWorker(int32(i), int32(i), 0, numWorkers, tree,
			reqInboxes, taskBoxes, hasTasksFlags, cfg, logger, mcs, taskingDone)
	}

	return &Runtime{
		cfg:       cfg,
		logger:    logger,
		metrics:   mcs,
		partition: partition,
		tree:      tree,
		workers:   workers,
		done:      taskingDone,
	}
}

// Submit pushes a task onto workerPID's deque. Safe to call from
// outside the worker goroutines (Deque's operations are all
// mutex-guarded), but intended for seeding the root before Run starts,
// not high-frequency injection.
func (rt *Runtime) Submit(workerPID int32, task Task) {
	rt.workers[workerPID].Deque.Push(task)
}

// NumWorkers reports the partition's worker count.
func (rt *Runtime) NumWorkers() int {
	return len(rt.workers)
}

// Run launches one goroutine per worker and blocks until every worker
// observes global termination, ctx is cancelled, or a worker hits a
// fatal protocol violation. The first such error is returned.
func (rt *Runtime) Run(ctx context.Context) error {
	group, gctx := errgroup.WithContext(ctx)
	for _, w := range rt.workers {
		w := w
		group.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					if e, ok := r.(error); ok {
						err = e
					} else {
						err = protocolViolation("worker %d: panic: %v", w.ID, r)
					}
				}
			}()
			return runWorkerLoop(gctx, w, rt.partition.Manager)
		})
	}
	return group.Wait()
}

// runWorkerLoop is one worker's entire scheduling cycle: service an
// incoming request, run a locally available task (sharing lifelined
// work first), or fall back to stealing, until global termination or
// context cancellation.
func runWorkerLoop(ctx context.Context, w *Worker, mgr topology.Manager) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		HandleIncomingRequest(w)

		if task, ok := w.Deque.Pop(); ok {
			w.HasTasks.Store(!w.Deque.IsEmpty())
			ShareWork(w)
			executeTask(w, ctx, task)
			continue
		}
		w.HasTasks.Store(false)

		if task, ok := RecvTask(w); ok {
			ShareWork(w)
			executeTask(w, ctx, task)
			continue
		}

		if CheckTermination(w, mgr) {
			return nil
		}
	}
}

// executeTask runs one task and records it against both the
// throughput metrics and the adaptive controller's window.
func executeTask(w *Worker, ctx context.Context, task Task) {
	if task.Fn != nil {
		task.Fn(ctx)
	}
	w.Metrics.TasksExecuted.WithLabelValues(itoa(w.ID)).Inc()
	w.StealCtl.RecordTaskExecuted()
}
