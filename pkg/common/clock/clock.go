package clock

import "time"

// Clock is the timestamp source used to stamp profile updates and audit
// records. Implementations need only be monotonic enough for audit ordering.
type Clock interface {
	Now() time.Time
}
