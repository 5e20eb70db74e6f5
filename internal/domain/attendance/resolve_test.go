package attendance

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/leave"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	tuesday = time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC)
	sunday  = time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC)
)

func sessionLog(session Session, status SessionStatus) SessionLog {
	return SessionLog{EmployeeID: "emp-1", Date: tuesday, Session: session, Status: status}
}

func clocked(l SessionLog, in, out string) SessionLog {
	parse := func(s string) *time.Time {
		t, err := time.Parse(time.RFC3339, "2024-06-04T"+s+":00Z")
		if err != nil {
			panic(err)
		}
		return &t
	}
	l.ActualClockIn = parse(in)
	l.ActualClockOut = parse(out)
	return l
}

func approvedLeave(start, end time.Time) *leave.LeaveRequest {
	return &leave.LeaveRequest{
		EmployeeID: "emp-1",
		LeaveType:  "annual",
		StartDate:  start,
		EndDate:    end,
		Status:     leave.LeaveRequestStatusApproved,
	}
}

func TestResolveDay_Precedence(t *testing.T) {
	foundersDay := &holiday.Holiday{Date: sunday, Name: "Founders Day"}
	fullDay := []SessionLog{
		sessionLog(SessionMorning, SessionStatusPresent),
		sessionLog(SessionAfternoon, SessionStatusPresent),
	}

	tests := []struct {
		name string
		dc   DayContext
		want SummaryStatus
	}{
		{
			name: "leave beats holiday on a sunday with logs",
			dc:   DayContext{Date: sunday, Leave: approvedLeave(sunday, sunday), Holiday: foundersDay, Logs: fullDay},
			want: SummaryStatusOnLeave,
		},
		{
			name: "holiday beats weekend",
			dc:   DayContext{Date: sunday, Holiday: foundersDay},
			want: SummaryStatusHoliday,
		},
		{
			name: "holiday beats session logs",
			dc:   DayContext{Date: tuesday, Holiday: &holiday.Holiday{Date: tuesday, Name: "Founders Day"}, Logs: fullDay},
			want: SummaryStatusHoliday,
		},
		{
			name: "weekend beats session logs",
			dc:   DayContext{Date: sunday, Logs: fullDay},
			want: SummaryStatusWeekend,
		},
		{
			name: "working day uses sessions",
			dc:   DayContext{Date: tuesday, Logs: fullDay},
			want: SummaryStatusPresent,
		},
		{
			name: "unapproved leave is ignored",
			dc: DayContext{Date: tuesday, Logs: fullDay, Leave: &leave.LeaveRequest{
				StartDate: tuesday, EndDate: tuesday, Status: leave.LeaveRequestStatusWaitingApproval,
			}},
			want: SummaryStatusPresent,
		},
		{
			name: "leave not covering the date is ignored",
			dc:   DayContext{Date: tuesday, Logs: fullDay, Leave: approvedLeave(sunday, sunday)},
			want: SummaryStatusPresent,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveDay(tt.dc).Status)
		})
	}
}

func TestResolveDay_OnLeave(t *testing.T) {
	res := ResolveDay(DayContext{Date: tuesday, Leave: approvedLeave(tuesday.AddDate(0, 0, -1), tuesday.AddDate(0, 0, 2))})

	assert.Equal(t, SummaryStatusOnLeave, res.Status)
	assert.False(t, res.UnplannedAbsence)
	assert.Equal(t, "on approved annual leave (2024-06-03 to 2024-06-06)", res.Remarks)
	assert.Nil(t, res.TotalWorkHours)
}

func TestResolveDay_Holiday(t *testing.T) {
	res := ResolveDay(DayContext{Date: tuesday, Holiday: &holiday.Holiday{Date: tuesday, Name: "Independence Day"}})

	assert.Equal(t, SummaryStatusHoliday, res.Status)
	assert.Contains(t, res.Remarks, "Independence Day")
	assert.False(t, res.UnplannedAbsence)
}

func TestResolveDay_OnlySundayIsWeekend(t *testing.T) {
	monday := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		day := monday.AddDate(0, 0, i)
		res := ResolveDay(DayContext{Date: day})
		if day.Weekday() == time.Sunday {
			assert.Equal(t, SummaryStatusWeekend, res.Status, day.Weekday().String())
		} else {
			assert.Equal(t, SummaryStatusAbsent, res.Status, day.Weekday().String())
		}
	}
}

func TestResolveDay_NoLogsOnWorkingDay(t *testing.T) {
	res := ResolveDay(DayContext{Date: tuesday})

	assert.Equal(t, SummaryStatusAbsent, res.Status)
	assert.True(t, res.UnplannedAbsence)
	assert.Equal(t, "no logs for a working day", res.Remarks)
	assert.Nil(t, res.TotalWorkHours)
}

func TestResolveDay_SessionClassification(t *testing.T) {
	tests := []struct {
		name     string
		statuses []SessionStatus
		want     SummaryStatus
		late     bool
	}{
		{"three present", []SessionStatus{SessionStatusPresent, SessionStatusPresent, SessionStatusPresent}, SummaryStatusPresent, false},
		{"two present", []SessionStatus{SessionStatusPresent, SessionStatusPresent}, SummaryStatusPresent, false},
		{"late counts as present", []SessionStatus{SessionStatusLate, SessionStatusPresent, SessionStatusAbsent}, SummaryStatusPresent, true},
		{"two late", []SessionStatus{SessionStatusLate, SessionStatusLate}, SummaryStatusPresent, true},
		{"one present", []SessionStatus{SessionStatusPresent, SessionStatusAbsent, SessionStatusAbsent}, SummaryStatusHalfDay, false},
		{"one late with permission", []SessionStatus{SessionStatusLate, SessionStatusPermission}, SummaryStatusHalfDay, true},
		{"permission only", []SessionStatus{SessionStatusPermission}, SummaryStatusPermission, false},
		{"permission and absent", []SessionStatus{SessionStatusAbsent, SessionStatusPermission, SessionStatusAbsent}, SummaryStatusPermission, false},
		{"all absent", []SessionStatus{SessionStatusAbsent, SessionStatusAbsent, SessionStatusAbsent}, SummaryStatusAbsent, false},
	}
	sessions := []Session{SessionMorning, SessionAfternoon, SessionEvening}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs []SessionLog
			for i, status := range tt.statuses {
				logs = append(logs, sessionLog(sessions[i], status))
			}
			res := ResolveDay(DayContext{Date: tuesday, Logs: logs})

			assert.Equal(t, tt.want, res.Status)
			assert.Equal(t, tt.late, res.LateArrival)
			assert.Equal(t, tt.want == SummaryStatusAbsent, res.UnplannedAbsence)
		})
	}
}

func TestResolveDay_EarlyDeparture(t *testing.T) {
	tests := []struct {
		name string
		logs []SessionLog
		want bool
	}{
		{
			name: "attended then absent",
			logs: []SessionLog{
				sessionLog(SessionMorning, SessionStatusPresent),
				sessionLog(SessionAfternoon, SessionStatusPresent),
				sessionLog(SessionEvening, SessionStatusAbsent),
			},
			want: true,
		},
		{
			name: "absent then attended",
			logs: []SessionLog{
				sessionLog(SessionMorning, SessionStatusAbsent),
				sessionLog(SessionAfternoon, SessionStatusLate),
			},
			want: false,
		},
		{
			name: "input order does not matter",
			logs: []SessionLog{
				sessionLog(SessionEvening, SessionStatusAbsent),
				sessionLog(SessionMorning, SessionStatusPresent),
			},
			want: true,
		},
		{
			name: "permission after attendance is not early departure",
			logs: []SessionLog{
				sessionLog(SessionMorning, SessionStatusPresent),
				sessionLog(SessionAfternoon, SessionStatusPermission),
			},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveDay(DayContext{Date: tuesday, Logs: tt.logs}).EarlyDeparture)
		})
	}
}

func TestResolveDay_WorkHours(t *testing.T) {
	t.Run("morning and afternoon logged", func(t *testing.T) {
		res := ResolveDay(DayContext{Date: tuesday, Logs: []SessionLog{
			clocked(sessionLog(SessionMorning, SessionStatusPresent), "08:00", "12:00"),
			clocked(sessionLog(SessionAfternoon, SessionStatusPresent), "13:00", "16:30"),
		}})

		assert.Equal(t, SummaryStatusPresent, res.Status)
		require.NotNil(t, res.TotalWorkHours)
		assert.True(t, decimal.RequireFromString("7.5").Equal(*res.TotalWorkHours), res.TotalWorkHours.String())
	})

	t.Run("incomplete pair contributes nothing", func(t *testing.T) {
		morning := clocked(sessionLog(SessionMorning, SessionStatusPresent), "08:00", "12:00")
		afternoon := sessionLog(SessionAfternoon, SessionStatusPresent)
		in := time.Date(2024, 6, 4, 13, 0, 0, 0, time.UTC)
		afternoon.ActualClockIn = &in

		res := ResolveDay(DayContext{Date: tuesday, Logs: []SessionLog{morning, afternoon}})
		require.NotNil(t, res.TotalWorkHours)
		assert.Equal(t, "4", res.TotalWorkHours.String())
	})

	t.Run("rounded to two places", func(t *testing.T) {
		res := ResolveDay(DayContext{Date: tuesday, Logs: []SessionLog{
			clocked(sessionLog(SessionMorning, SessionStatusPresent), "08:00", "08:20"),
		}})
		require.NotNil(t, res.TotalWorkHours)
		assert.Equal(t, "0.33", res.TotalWorkHours.String())
	})

	t.Run("no clock times", func(t *testing.T) {
		res := ResolveDay(DayContext{Date: tuesday, Logs: []SessionLog{
			sessionLog(SessionMorning, SessionStatusPresent),
		}})
		assert.Nil(t, res.TotalWorkHours)
	})

	t.Run("reversed pair is ignored", func(t *testing.T) {
		res := ResolveDay(DayContext{Date: tuesday, Logs: []SessionLog{
			clocked(sessionLog(SessionMorning, SessionStatusPresent), "12:00", "08:00"),
		}})
		assert.Nil(t, res.TotalWorkHours)
	})
}

func TestResolveDay_Idempotent(t *testing.T) {
	dc := DayContext{Date: tuesday, Logs: []SessionLog{
		clocked(sessionLog(SessionMorning, SessionStatusLate), "08:10", "12:00"),
		sessionLog(SessionEvening, SessionStatusAbsent),
	}}
	assert.Equal(t, ResolveDay(dc), ResolveDay(dc))
}

func TestSession_Order(t *testing.T) {
	assert.Less(t, SessionMorning.Order(), SessionAfternoon.Order())
	assert.Less(t, SessionAfternoon.Order(), SessionEvening.Order())
	assert.True(t, SessionEvening.Valid())
	assert.False(t, Session("night").Valid())
}
