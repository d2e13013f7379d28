package clock

import "time"

// Clock provides time to the application. Trip, option, and item ids are
// timestamp-derived, so tests inject a controllable implementation.
type Clock interface {
	Now() time.Time
}
