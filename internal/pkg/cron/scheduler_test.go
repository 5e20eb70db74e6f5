package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour int) func() time.Time {
	return func() time.Time { return time.Date(2024, 6, 5, hour, 30, 0, 0, time.UTC) }
}

func TestScheduler_RunOnceHonorsHourGate(t *testing.T) {
	s := NewScheduler()
	var hourly, daily int
	s.AddJob("hourly", time.Hour, func(context.Context) error { hourly++; return nil })
	s.AddDailyJob("daily", 0, func(context.Context) error { daily++; return nil })

	s.now = at(13)
	require.NoError(t, s.RunOnce(context.Background()))
	assert.Equal(t, 1, hourly)
	assert.Equal(t, 0, daily)

	s.now = at(0)
	require.NoError(t, s.RunOnce(context.Background()))
	assert.Equal(t, 2, hourly)
	assert.Equal(t, 1, daily)
}

func TestScheduler_RunOnceJoinsErrors(t *testing.T) {
	s := NewScheduler()
	boom := errors.New("boom")
	ran := false
	s.AddJob("failing", time.Hour, func(context.Context) error { return boom })
	s.AddJob("after", time.Hour, func(context.Context) error { ran = true; return nil })

	err := s.RunOnce(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failing")
	assert.True(t, ran)
}

func TestScheduler_StartRunsImmediatelyAndStops(t *testing.T) {
	s := NewScheduler()
	var calls atomic.Int32
	started := make(chan struct{}, 1)
	s.AddJob("tick", time.Hour, func(ctx context.Context) error {
		calls.Add(1)
		started <- struct{}{}
		return nil
	})

	s.Start(context.Background())
	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("job did not run on start")
	}
	s.Stop()
	assert.Equal(t, int32(1), calls.Load())
}

type fakeAttendanceService struct {
	attendance.AttendanceService
	dates []time.Time
	err   error
}

func (f *fakeAttendanceService) ResolveAllActive(ctx context.Context, date time.Time) (int, error) {
	f.dates = append(f.dates, date)
	return 3, f.err
}

func TestAttendanceJobs_ResolvePreviousDay(t *testing.T) {
	svc := &fakeAttendanceService{}
	jobs := NewAttendanceJobs(svc)
	jobs.now = func() time.Time { return time.Date(2024, 7, 1, 0, 5, 0, 0, time.FixedZone("WIB", 7*3600)) }

	require.NoError(t, jobs.ResolvePreviousDay(context.Background()))
	require.Len(t, svc.dates, 1)
	assert.Equal(t, time.Date(2024, 6, 29, 0, 0, 0, 0, time.UTC), svc.dates[0], "yesterday in UTC")

	svc.err = errors.New("db down")
	assert.ErrorContains(t, jobs.ResolvePreviousDay(context.Background()), "2024-06-29")
}

func TestAttendanceJobs_RegisterJobs(t *testing.T) {
	s := NewScheduler()
	NewAttendanceJobs(&fakeAttendanceService{}).RegisterJobs(s)

	require.Len(t, s.jobs, 1)
	assert.Equal(t, "resolve_previous_day_attendance", s.jobs[0].Name)
	assert.Equal(t, 0, s.jobs[0].Hour)
	assert.Equal(t, time.Hour, s.jobs[0].Interval)
}
