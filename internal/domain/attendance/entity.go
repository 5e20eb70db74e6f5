package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

// Session is one of the three fixed daily attendance slots.
type Session string

const (
	SessionMorning   Session = "morning"
	SessionAfternoon Session = "afternoon"
	SessionEvening   Session = "evening"
)

// Order ranks sessions through the day; unknown sessions sort last.
func (s Session) Order() int {
	switch s {
	case SessionMorning:
		return 0
	case SessionAfternoon:
		return 1
	case SessionEvening:
		return 2
	default:
		return 3
	}
}

func (s Session) Valid() bool {
	return s.Order() < 3
}

type SessionStatus string

const (
	SessionStatusPresent    SessionStatus = "present"
	SessionStatusLate       SessionStatus = "late"
	SessionStatusAbsent     SessionStatus = "absent"
	SessionStatusPermission SessionStatus = "permission"
)

// Attended reports whether the session counts toward the present count.
func (s SessionStatus) Attended() bool {
	return s == SessionStatusPresent || s == SessionStatusLate
}

func (s SessionStatus) Valid() bool {
	switch s {
	case SessionStatusPresent, SessionStatusLate, SessionStatusAbsent, SessionStatusPermission:
		return true
	}
	return false
}

// SessionLog is one (employee, date, session) attendance event.
type SessionLog struct {
	ID             string
	EmployeeID     string
	Date           time.Time
	Session        Session
	Status         SessionStatus
	ActualClockIn  *time.Time
	ActualClockOut *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type SummaryStatus string

const (
	SummaryStatusPresent    SummaryStatus = "present"
	SummaryStatusHalfDay    SummaryStatus = "half_day"
	SummaryStatusAbsent     SummaryStatus = "absent"
	SummaryStatusPermission SummaryStatus = "permission"
	SummaryStatusOnLeave    SummaryStatus = "on_leave"
	SummaryStatusHoliday    SummaryStatus = "holiday"
	SummaryStatusWeekend    SummaryStatus = "weekend"
)

var summaryStatuses = []string{
	string(SummaryStatusPresent),
	string(SummaryStatusHalfDay),
	string(SummaryStatusAbsent),
	string(SummaryStatusPermission),
	string(SummaryStatusOnLeave),
	string(SummaryStatusHoliday),
	string(SummaryStatusWeekend),
}

type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "pending"
	ApprovalStatusApproved ApprovalStatus = "approved"
)

// Summary is the resolved daily status for one employee, unique on (EmployeeID, Date).
type Summary struct {
	ID               string
	EmployeeID       string
	Date             time.Time
	DepartmentID     string
	Status           SummaryStatus
	LateArrival      bool
	EarlyDeparture   bool
	UnplannedAbsence bool
	TotalWorkHours   *decimal.Decimal
	Remarks          string
	ApprovalStatus   ApprovalStatus
	ApprovedAt       *time.Time
	ApprovedBy       *string
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// Joined fields
	EmployeeName *string
	EmployeeCode *string
}

// MonthClosure marks a month's summaries as final input for payroll.
type MonthClosure struct {
	Month       time.Time
	FinalizedBy *string
	FinalizedAt time.Time
}
