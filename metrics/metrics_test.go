package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewCollectorsRegistersAndIncrements(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollectors(reg, "lace_test")

	c.RequestsSent.WithLabelValues("0").Inc()
	c.TasksExecuted.WithLabelValues("0").Add(3)
	c.StealHalfActive.WithLabelValues("0").Set(1)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	if len(mfs) == 0 {
		t.Fatalf("expected registered metric families, got none")
	}

	var found bool
	for _, mf := range mfs {
		if mf.GetName() == "lace_test_tasks_executed_total" {
			found = true
			for _, m := range mf.GetMetric() {
				if m.GetCounter().GetValue() != 3 {
					t.Fatalf("expected tasks_executed counter 3, got %v", m.GetCounter().GetValue())
				}
			}
		}
	}
	if !found {
		t.Fatalf("expected to find lace_test_tasks_executed_total in gathered families")
	}
}

func TestNewCollectorsNilRegistererIsSafe(t *testing.T) {
	c := NewCollectors(nil, "lace_test_nil")
	c.RequestsSent.WithLabelValues("1").Inc()
}
