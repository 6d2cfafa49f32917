package victim

import "go.uber.org/atomic"

// HasTasksFlag is the cache-line-padded "likely has tasks" advisory
// flag each worker maintains about itself. It is read with relaxed
// semantics by other workers' victim selectors and written by its
// owner as it acquires/exhausts its deque; false positives are
// tolerated.
type HasTasksFlag struct {
	v atomic.Bool
	// Padding to a 64-byte cache line so two workers' flags never
	// false-share a line under concurrent load/store.
	_ [60]byte
}

// Store records whether the owning worker likely has tasks available.
func (f *HasTasksFlag) Store(v bool) {
	f.v.Store(v)
}

// Load reads the flag. Ordering is relaxed: a stale read only causes
// an extra, harmless probe of a victim that turns out to be empty.
func (f *HasTasksFlag) Load() bool {
	return f.v.Load()
}

// LikelyHasTasks evaluates the VictimCheck contract: true
// unconditionally when the optimization is disabled, otherwise the
// flag's current value.
func LikelyHasTasks(enabled bool, flag *HasTasksFlag) bool {
	if !enabled {
		return true
	}
	return flag.Load()
}
