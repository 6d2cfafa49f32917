// Package strategy implements the adaptive steal-one/steal-half
// policy controller: a single binary knob driven by a
// tasks-per-steal ratio, rather than picking among several
// distribution algorithms.
package strategy

// DefaultWindow is StealAdaptativeInterval's default: the number of
// completed steals per retuning window.
const DefaultWindow = 25

// Controller tracks one worker's recent steal throughput and decides,
// once per window, whether to steal one task or half a deque.
//
// Policy transitions are one-way per window: from
// StealHalf to StealOne when the ratio is below 2 (halves aren't
// paying off); from StealOne to StealHalf only when the ratio is
// exactly 1 (degenerate: every steal yields exactly one task, so
// batching would help).
type Controller struct {
	window         int
	stealHalf      bool
	stealsInWindow int
	tasksInWindow  int
}

// NewController creates a controller with the given window size,
// starting in steal-one mode.
func NewController(window int) *Controller {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Controller{window: window}
}

// StealHalf reports the controller's current policy.
func (c *Controller) StealHalf() bool {
	return c.stealHalf
}

// RecordTaskExecuted must be called once per task execution (from the
// local deque or from a steal), to accumulate num_tasks_exec_recently.
func (c *Controller) RecordTaskExecuted() {
	c.tasksInWindow++
}

// RecordStealExecuted must be called once per completed steal
// (num_steals_exec_recently). When the window fills, it retunes the
// policy from the tasks-per-steal ratio and resets both counters.
func (c *Controller) RecordStealExecuted() {
	c.stealsInWindow++
	if c.stealsInWindow != c.window {
		return
	}

	ratio := float64(c.tasksInWindow) / float64(c.window)
	switch {
	case c.stealHalf && ratio < 2:
		c.stealHalf = false
	case !c.stealHalf && ratio == 1:
		c.stealHalf = true
	}

	c.stealsInWindow = 0
	c.tasksInWindow = 0
}
