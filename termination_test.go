package lace

import (
	"testing"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/go-foundations/lace/chanio"
	"github.com/go-foundations/lace/metrics"
	"github.com/go-foundations/lace/topology"
	"github.com/go-foundations/lace/victim"
)

// buildTestWorkers wires numWorkers workers together the way
// NewRuntime does, without launching any goroutines, so termination
// and lifeline logic can be driven directly and deterministically.
// Unlike NewRuntime it uses cfg as given (MaxStealAttempts is not
// derived from the worker count) and does not double the root's
// request inbox.
func buildTestWorkers(numWorkers int, cfg Config) ([]*Worker, []topology.WorkerTree) {
	tree := topology.Build(numWorkers)
	logger := zap.NewNop()
	mcs := metrics.NewCollectors(nil, "lace_termination_test")
	taskingDone := atomic.NewBool(false)

	reqInboxes := make([]*chanio.MPSC[StealRequest], numWorkers)
	taskBoxes := make([][]*chanio.SPSC[TaskBatch], numWorkers)
	hasTasksFlags := make([]*victim.HasTasksFlag, numWorkers)
	for i := 0; i < numWorkers; i++ {
		reqInboxes[i] = chanio.NewMPSC[StealRequest](cfg.MaxSteal * numWorkers)
		boxes := make([]*chanio.SPSC[TaskBatch], cfg.MaxSteal)
		for j := range boxes {
			boxes[j] = chanio.NewSPSC[TaskBatch](1)
		}
		taskBoxes[i] = boxes
		hasTasksFlags[i] = &victim.HasTasksFlag{}
	}

	workers := make([]*Worker, numWorkers)
	for i := 0; i < numWorkers; i++ {
		workers[i] = newWorker(int32(i), int32(i), 0, numWorkers, tree,
			reqInboxes, taskBoxes, hasTasksFlags, cfg, logger, mcs, taskingDone)
	}
	return workers, tree
}

func TestIsLocallyQuiescentTrueForFreshLeaf(t *testing.T) {
	workers, _ := buildTestWorkers(4, DefaultConfig())
	leaf := workers[3]
	leaf.setWaitingForTasks(true)

	if !IsLocallyQuiescent(leaf) {
		t.Fatalf("expected a fresh, waiting leaf with an empty deque to be locally quiescent")
	}
}

func TestIsLocallyQuiescentFalseWithPendingDequeWork(t *testing.T) {
	workers, _ := buildTestWorkers(4, DefaultConfig())
	leaf := workers[3]
	leaf.setWaitingForTasks(true)
	leaf.Deque.Push(Task{})

	if IsLocallyQuiescent(leaf) {
		t.Fatalf("expected non-empty deque to block local quiescence")
	}
}

func TestIsLocallyQuiescentFalseUntilBothSubtreesIdle(t *testing.T) {
	workers, _ := buildTestWorkers(3, DefaultConfig())
	root := workers[0]
	root.setWaitingForTasks(true)

	if IsLocallyQuiescent(root) {
		t.Fatalf("expected root with no subtree-idle flags set to not be quiescent")
	}

	root.Tree[0].LeftSubtreeIdle = true
	if IsLocallyQuiescent(root) {
		t.Fatalf("expected root to still not be quiescent with only one subtree idle")
	}

	root.Tree[0].RightSubtreeIdle = true
	if !IsLocallyQuiescent(root) {
		t.Fatalf("expected root to be quiescent once both subtrees are idle, deque empty, and waiting")
	}
}

func TestCheckTerminationDeclaresOnceAndLatches(t *testing.T) {
	workers, _ := buildTestWorkers(1, DefaultConfig())
	root := workers[0]
	root.setWaitingForTasks(true)

	mgr := &recordingManager{}

	if !CheckTermination(root, mgr) {
		t.Fatalf("expected single-worker root to be declared terminated")
	}
	if !CheckTermination(root, mgr) {
		t.Fatalf("expected repeated calls to keep reporting terminated")
	}
	if mgr.notified != 1 {
		t.Fatalf("expected NotifyTermination exactly once, got %d", mgr.notified)
	}
}

func TestCheckTerminationFalseForNonRoot(t *testing.T) {
	workers, _ := buildTestWorkers(3, DefaultConfig())
	child := workers[1]
	child.setWaitingForTasks(true)
	child.Tree[1].LeftSubtreeIdle = true
	child.Tree[1].RightSubtreeIdle = true

	if CheckTermination(child, nil) {
		t.Fatalf("expected only the root to be able to declare termination")
	}
}
