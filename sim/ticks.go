package sim

import "math"

// TicksPerSecond is the fixed conversion factor between virtual time in ticks
// and seconds. One tick is one microsecond of simulated time.
const TicksPerSecond int64 = 1_000_000

// SecondsToNearestTick converts a duration in seconds to the nearest tick.
// Negative durations clamp to zero; delays in the past are meaningless.
func SecondsToNearestTick(seconds float64) int64 {
	if seconds <= 0 {
		return 0
	}
	t := math.Round(seconds * float64(TicksPerSecond))
	if t > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(t)
}

// TicksToSeconds converts a tick count to seconds.
func TicksToSeconds(ticks int64) float64 {
	return float64(ticks) / float64(TicksPerSecond)
}
