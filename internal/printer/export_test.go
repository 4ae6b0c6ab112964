package printer

import "time"

// SetNow fixes the clock used by relative times.
func SetNow(t time.Time) func() {
	prev := now
	now = func() time.Time { return t }
	return func() { now = prev }
}
