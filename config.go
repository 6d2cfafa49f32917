package lace

// StealStrategy selects how many tasks a satisfied steal yields.
type StealStrategy int

const (
	// StealOne: every satisfied steal yields exactly one task.
	StealOne StealStrategy = iota
	// StealHalf: every satisfied steal yields half of the victim's deque.
	StealHalf
	// StealAdaptive: a per-worker strategy.Controller switches between
	// StealOne and StealHalf based on recent throughput.
	StealAdaptive
)

// Config holds the scheduler's tunables. DefaultConfig returns a plain
// struct literal rather than functional options for the base case,
// with Option functions layered on for callers who want to override a
// handful of fields.
type Config struct {
	// MaxSteal bounds the channel-stack capacity and the number of
	// task inboxes: the number of steal requests a worker may have
	// outstanding. The lifeline queue's capacity is fixed at 2.
	MaxSteal int
	// MaxStealAttempts is the retry budget for a single steal request
	// before it bounces home and is promoted to Failed. Zero means
	// unset: NewRuntime derives numWorkers-1 from the partition size
	// it is actually building for.
	MaxStealAttempts uint8
	// StealStrategy selects StealOne, StealHalf, or StealAdaptive.
	StealStrategy StealStrategy
	// StealAdaptativeInterval is the retuning window size (number of
	// completed steals) for StealAdaptive; default 25.
	StealAdaptativeInterval int
	// VictimCheck enables the LikelyHasTasks advisory flag check
	// before dispatching a steal request to a hinted victim.
	VictimCheck bool
	// StealLastVictim enables the "Last Victim" biased policy: prefer
	// the worker that this worker's most recently satisfied steal
	// request was first dispatched to. That worker is the donor only
	// when the request was served without being forwarded.
	StealLastVictim bool
	// StealLastThief enables the "Last Thief" biased policy: prefer
	// forwarding a request this worker cannot satisfy to the worker
	// that last stole from this one.
	StealLastThief bool
	// DebugTD enables verbose zap tracing of the termination protocol.
	DebugTD bool
}

// DefaultConfig returns the scheduler's baseline tuning: one
// outstanding steal request at a time, a retry budget derived from
// the partition size at NewRuntime time, no adaptive or biased
// policies, no tracing.
func DefaultConfig() Config {
	return Config{
		MaxSteal:                1,
		MaxStealAttempts:        0,
		StealStrategy:           StealOne,
		StealAdaptativeInterval: 25,
		VictimCheck:             false,
		StealLastVictim:         false,
		StealLastThief:          false,
		DebugTD:                 false,
	}
}

// Option mutates a Config in place. Passed to NewRuntime in a
// variadic slice, applied after DefaultConfig.
type Option func(*Config)

// WithMaxSteal overrides the outstanding-steal-request budget.
func WithMaxSteal(n int) Option {
	return func(c *Config) { c.MaxSteal = n }
}

// WithMaxStealAttempts overrides the per-request retry budget. A
// value of 0 leaves it unset, letting NewRuntime derive it from the
// partition size instead.
func WithMaxStealAttempts(n uint8) Option {
	return func(c *Config) { c.MaxStealAttempts = n }
}

// WithStealStrategy overrides the steal-amount policy.
func WithStealStrategy(s StealStrategy) Option {
	return func(c *Config) { c.StealStrategy = s }
}

// WithStealAdaptativeInterval overrides the adaptive retuning window.
func WithStealAdaptativeInterval(n int) Option {
	return func(c *Config) { c.StealAdaptativeInterval = n }
}

// WithVictimCheck toggles the LikelyHasTasks advisory check.
func WithVictimCheck(enabled bool) Option {
	return func(c *Config) { c.VictimCheck = enabled }
}

// WithStealLastVictim toggles the "Last Victim" biased policy.
func WithStealLastVictim(enabled bool) Option {
	return func(c *Config) { c.StealLastVictim = enabled }
}

// WithStealLastThief toggles the "Last Thief" biased policy.
func WithStealLastThief(enabled bool) Option {
	return func(c *Config) { c.StealLastThief = enabled }
}

// WithDebugTD toggles verbose termination-protocol tracing.
func WithDebugTD(enabled bool) Option {
	return func(c *Config) { c.DebugTD = enabled }
}
