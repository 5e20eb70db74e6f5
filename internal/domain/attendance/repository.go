package attendance

import (
	"context"
	"time"
)

// SessionLogRepository reads and backfills per-session attendance events.
type SessionLogRepository interface {
	// GetByEmployeeAndDate returns the day's logs ordered by session.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) ([]SessionLog, error)

	// Upsert creates or replaces the log keyed by (employee, date, session).
	Upsert(ctx context.Context, log SessionLog) (SessionLog, error)
}

// SummaryRepository persists resolver output.
type SummaryRepository interface {
	// Upsert creates or overwrites the summary keyed by (employee, date) and
	// resets its approval to pending.
	Upsert(ctx context.Context, summary Summary) (Summary, error)

	GetByID(ctx context.Context, id string) (Summary, error)

	List(ctx context.Context, filter SummaryFilter) ([]Summary, int64, error)

	// Approve marks one summary approved without touching its classification.
	Approve(ctx context.Context, id string, approvedBy *string, at time.Time) (Summary, error)

	// ApproveByDateAndDepartment approves every summary on date whose effective
	// or main department is departmentID and returns the affected count.
	ApproveByDateAndDepartment(ctx context.Context, date time.Time, departmentID string, approvedBy *string, at time.Time) (int64, error)

	// CountAbsentInMonth counts summaries with status absent in the month
	// starting at monthStart.
	CountAbsentInMonth(ctx context.Context, employeeID string, monthStart time.Time) (int, error)
}

// MonthClosureRepository tracks which months are finalized for payroll.
type MonthClosureRepository interface {
	// Get returns nil when the month is open.
	Get(ctx context.Context, month time.Time) (*MonthClosure, error)

	// Finalize is idempotent; finalizing a closed month returns the existing closure.
	Finalize(ctx context.Context, closure MonthClosure) (MonthClosure, error)

	// Reopen returns ErrMonthNotFinalized when the month is already open.
	Reopen(ctx context.Context, month time.Time) error
}
