// Package topology builds the complete binary worker tree and the
// partition record the scheduler core runs within. Both are plain,
// numerically-indexed structures: workers live in a flat array and
// refer to each other by index, never by pointer, so there are no
// pointer cycles to manage.
package topology

// WorkerTree is one node's view of the binary worker tree: its
// parent/children indices and the subtree-idle / waiting flags the
// termination protocol maintains.
//
// LeftSubtreeIdle and RightSubtreeIdle are single-writer: only this
// node, acting as the parent of LeftChild/RightChild, ever sets them
// true (on receiving a Failed request from that child) or false
// (on sharing work back down the lifeline). No lock is required.
type WorkerTree struct {
	ID              int32
	Parent          int32
	LeftChild       int32
	RightChild      int32
	LeftSubtreeIdle bool
	RightSubtreeIdle bool
	WaitingForTasks bool
}

// NoWorker marks an absent parent/child slot.
const NoWorker = -1

// Build constructs the complete binary tree over numWorkersRT workers:
// worker 0 is root; children of worker i are 2i+1 and 2i+2.
func Build(numWorkersRT int) []WorkerTree {
	tree := make([]WorkerTree, numWorkersRT)
	for i := 0; i < numWorkersRT; i++ {
		t := WorkerTree{ID: int32(i)}
		if i == 0 {
			t.Parent = NoWorker
		} else {
			t.Parent = int32((i - 1) / 2)
		}
		left := 2*i + 1
		right := 2*i + 2
		if left < numWorkersRT {
			t.LeftChild = int32(left)
		} else {
			t.LeftChild = NoWorker
		}
		if right < numWorkersRT {
			t.RightChild = int32(right)
		} else {
			t.RightChild = NoWorker
		}
		tree[i] = t
	}
	return tree
}

// IsLeaf reports whether the node has no children.
func (t WorkerTree) IsLeaf() bool {
	return t.LeftChild == NoWorker && t.RightChild == NoWorker
}

// IsRoot reports whether the node is the partition's root.
func (t WorkerTree) IsRoot() bool {
	return t.Parent == NoWorker
}

// Manager is the minimal surface a partition's manager must expose to
// the scheduler core (process-wide coordination is otherwise out of
// scope for this package).
type Manager interface {
	// NotifyTermination is invoked once, by the root, when the
	// partition observes global quiescence.
	NotifyTermination()
}

// Partition groups the workers that steal only from each other.
// Cross-partition stealing is not supported.
type Partition struct {
	NumWorkers   int
	NumWorkersRT int
	Manager      Manager
}

// noopManager satisfies Manager when the caller doesn't need
// termination notifications (tests, simple demos).
type noopManager struct{}

func (noopManager) NotifyTermination() {}

// NewPartition creates a partition, defaulting Manager to a no-op
// implementation when nil is passed.
func NewPartition(numWorkers int, mgr Manager) *Partition {
	if mgr == nil {
		mgr = noopManager{}
	}
	return &Partition{
		NumWorkers:   numWorkers,
		NumWorkersRT: numWorkers,
		Manager:      mgr,
	}
}
