package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/period"
)

type AttendanceJobs struct {
	attendanceService attendance.AttendanceService
	now               func() time.Time
}

func NewAttendanceJobs(attendanceService attendance.AttendanceService) *AttendanceJobs {
	return &AttendanceJobs{
		attendanceService: attendanceService,
		now:               time.Now,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	// 00:00-00:59 UTC, once the previous day's session logs are complete.
	scheduler.AddDailyJob("resolve_previous_day_attendance", 0, j.ResolvePreviousDay)
}

// ResolvePreviousDay regenerates yesterday's summaries for every active employee.
func (j *AttendanceJobs) ResolvePreviousDay(ctx context.Context) error {
	yesterday := period.Day(j.now().UTC()).AddDate(0, 0, -1)

	slog.Info("Cron: Starting previous day attendance resolution", "date", period.FormatDate(yesterday))

	count, err := j.attendanceService.ResolveAllActive(ctx, yesterday)
	if err != nil {
		return fmt.Errorf("failed to resolve attendance for %s: %w", period.FormatDate(yesterday), err)
	}

	slog.Info("Cron: Resolved previous day attendance", "date", period.FormatDate(yesterday), "count", count)
	return nil
}
