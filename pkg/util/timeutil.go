package util

import "time"

// NowUTC exposes time.Now for deterministic testing.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// ElapsedMillis reports whole milliseconds since start.
func ElapsedMillis(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
