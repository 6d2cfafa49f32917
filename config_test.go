package lace

import "testing"

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	if c.MaxSteal != 1 || c.MaxStealAttempts != 0 {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.StealStrategy != StealOne {
		t.Fatalf("expected default strategy StealOne, got %v", c.StealStrategy)
	}
	if c.StealAdaptativeInterval != 25 {
		t.Fatalf("expected default adaptive interval 25, got %d", c.StealAdaptativeInterval)
	}
}

func TestOptionsOverrideDefaults(t *testing.T) {
	c := DefaultConfig()
	opts := []Option{
		WithMaxSteal(16),
		WithMaxStealAttempts(3),
		WithStealStrategy(StealAdaptive),
		WithStealAdaptativeInterval(10),
		WithVictimCheck(true),
		WithStealLastVictim(true),
		WithStealLastThief(true),
		WithDebugTD(true),
	}
	for _, opt := range opts {
		opt(&c)
	}

	if c.MaxSteal != 16 || c.MaxStealAttempts != 3 || c.StealStrategy != StealAdaptive ||
		c.StealAdaptativeInterval != 10 || !c.VictimCheck || !c.StealLastVictim ||
		!c.StealLastThief || !c.DebugTD {
		t.Fatalf("expected all options applied, got %+v", c)
	}
}
