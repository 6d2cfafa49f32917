package topology

import "testing"

func TestBuildFourWorkers(t *testing.T) {
	tree := Build(4)
	if len(tree) != 4 {
		t.Fatalf("expected 4 nodes, got %d", len(tree))
	}

	if !tree[0].IsRoot() {
		t.Fatalf("expected worker 0 to be root")
	}
	if tree[0].LeftChild != 1 || tree[0].RightChild != 2 {
		t.Fatalf("expected root's children to be 1 and 2, got %d %d", tree[0].LeftChild, tree[0].RightChild)
	}
	if tree[1].Parent != 0 {
		t.Fatalf("expected worker 1's parent to be 0, got %d", tree[1].Parent)
	}
	if tree[3].Parent != 1 {
		t.Fatalf("expected worker 3's parent to be 1, got %d", tree[3].Parent)
	}
	if !tree[2].IsLeaf() || !tree[3].IsLeaf() {
		t.Fatalf("expected workers 2 and 3 to be leaves")
	}
}

func TestBuildSingleWorker(t *testing.T) {
	tree := Build(1)
	if len(tree) != 1 {
		t.Fatalf("expected 1 node, got %d", len(tree))
	}
	if !tree[0].IsRoot() || !tree[0].IsLeaf() {
		t.Fatalf("expected the sole worker to be both root and leaf")
	}
}

func TestNewPartitionDefaultsManager(t *testing.T) {
	p := NewPartition(4, nil)
	if p.Manager == nil {
		t.Fatalf("expected a default no-op manager")
	}
	p.Manager.NotifyTermination() // must not panic
}
