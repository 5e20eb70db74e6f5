package attendance

import (
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/period"
	"github.com/shopspring/decimal"
)

const sessionsPerDay = 3

// DayContext is everything needed to classify one employee's day.
type DayContext struct {
	Date    time.Time
	Leave   *leave.LeaveRequest
	Holiday *holiday.Holiday
	Logs    []SessionLog
}

// Resolution is the classification produced for one (employee, date).
type Resolution struct {
	Status           SummaryStatus
	LateArrival      bool
	EarlyDeparture   bool
	UnplannedAbsence bool
	TotalWorkHours   *decimal.Decimal
	Remarks          string
}

// ResolveDay applies the status decision list: approved leave, then holiday,
// then Sunday, then session evaluation. The first matching rule wins.
func ResolveDay(dc DayContext) Resolution {
	if dc.Leave != nil && dc.Leave.Covers(dc.Date) {
		return Resolution{
			Status:  SummaryStatusOnLeave,
			Remarks: leaveRemarks(dc.Leave),
		}
	}

	if dc.Holiday != nil {
		return Resolution{
			Status:  SummaryStatusHoliday,
			Remarks: "holiday: " + dc.Holiday.Name,
		}
	}

	if period.IsSunday(dc.Date) {
		return Resolution{
			Status:  SummaryStatusWeekend,
			Remarks: "sunday, non-working day",
		}
	}

	if len(dc.Logs) == 0 {
		return Resolution{
			Status:           SummaryStatusAbsent,
			UnplannedAbsence: true,
			Remarks:          "no logs for a working day",
		}
	}

	return evaluateSessions(dc.Logs)
}

func evaluateSessions(logs []SessionLog) Resolution {
	ordered := make([]SessionLog, len(logs))
	copy(ordered, logs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Session.Order() < ordered[j].Session.Order()
	})

	var (
		res             Resolution
		presentCount    int
		permissionCount int
		attendedEarlier bool
	)
	for _, log := range ordered {
		switch {
		case log.Status.Attended():
			presentCount++
			attendedEarlier = true
		case log.Status == SessionStatusPermission:
			permissionCount++
		case log.Status == SessionStatusAbsent && attendedEarlier:
			res.EarlyDeparture = true
		}
		if log.Status == SessionStatusLate {
			res.LateArrival = true
		}
	}
	res.TotalWorkHours = workHours(ordered)

	switch {
	case presentCount >= 2:
		res.Status = SummaryStatusPresent
		res.Remarks = fmt.Sprintf("full day, %d of %d sessions attended", presentCount, sessionsPerDay)
	case presentCount == 1:
		res.Status = SummaryStatusHalfDay
		res.Remarks = fmt.Sprintf("half day, 1 of %d sessions attended", sessionsPerDay)
	case permissionCount >= 1:
		res.Status = SummaryStatusPermission
		res.Remarks = fmt.Sprintf("permission for %d session(s)", permissionCount)
	default:
		res.Status = SummaryStatusAbsent
		res.UnplannedAbsence = true
		res.Remarks = "no session attended"
	}
	return res
}

// workHours sums clock-out minus clock-in over logs with a complete pair.
// It returns nil when no log has one.
func workHours(logs []SessionLog) *decimal.Decimal {
	var (
		total    time.Duration
		complete bool
	)
	for _, log := range logs {
		if log.ActualClockIn == nil || log.ActualClockOut == nil {
			continue
		}
		if log.ActualClockOut.Before(*log.ActualClockIn) {
			continue
		}
		total += log.ActualClockOut.Sub(*log.ActualClockIn)
		complete = true
	}
	if !complete {
		return nil
	}
	hours := decimal.NewFromInt(int64(total / time.Second)).Div(decimal.NewFromInt(3600)).Round(2)
	return &hours
}

func leaveRemarks(req *leave.LeaveRequest) string {
	kind := "leave"
	if req.LeaveType != "" {
		kind = req.LeaveType + " leave"
	}
	return fmt.Sprintf("on approved %s (%s to %s)", kind, period.FormatDate(req.StartDate), period.FormatDate(req.EndDate))
}
