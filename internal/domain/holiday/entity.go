package holiday

import "time"

// Holiday is a system-wide non-working calendar date.
type Holiday struct {
	ID        string
	Date      time.Time
	Name      string
	CreatedAt time.Time
}
