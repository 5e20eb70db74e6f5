package attendance

import "errors"

// Attendance domain errors
var (
	ErrSummaryNotFound          = errors.New("attendance summary not found")
	ErrAttendanceMonthFinalized = errors.New("attendance for this month is finalized, reopen it before regenerating")
	ErrMonthNotFinalized        = errors.New("attendance for this month is not finalized")
)
