package holiday

import (
	"context"
	"time"
)

type HolidayRepository interface {
	// GetByDate returns nil when date is not a holiday.
	GetByDate(ctx context.Context, date time.Time) (*Holiday, error)

	// GetByMonth returns every holiday in the month starting at monthStart.
	GetByMonth(ctx context.Context, monthStart time.Time) ([]Holiday, error)
}
