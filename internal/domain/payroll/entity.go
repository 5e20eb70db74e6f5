package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// Policy is a named set of overtime multipliers. Exactly one policy is the default.
type Policy struct {
	ID        string
	Name      string
	Weekday1  decimal.Decimal
	Weekday2  decimal.Decimal
	Sleepover decimal.Decimal // reserved, no selection rule uses it yet
	Sunday    decimal.Decimal
	Holiday   decimal.Decimal // applied only when the holiday multiplier feature is on
	IsDefault bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OvertimeApprovalStatus enum
type OvertimeApprovalStatus string

const (
	OvertimeApprovalPending  OvertimeApprovalStatus = "pending"
	OvertimeApprovalApproved OvertimeApprovalStatus = "approved"
	OvertimeApprovalRejected OvertimeApprovalStatus = "rejected"
)

// OvertimeLog is one overtime event. StartTime carries only the wall-clock
// time of day as stored; its date part is zero.
type OvertimeLog struct {
	ID             string
	EmployeeID     string
	Date           time.Time
	StartTime      time.Time
	Hours          decimal.Decimal
	ApprovalStatus OvertimeApprovalStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SalaryStatus enum
type SalaryStatus string

const (
	SalaryStatusPending SalaryStatus = "pending"
	SalaryStatusPaid    SalaryStatus = "paid"
	SalaryStatusUnpaid  SalaryStatus = "unpaid"
)

func (s SalaryStatus) Valid() bool {
	switch s {
	case SalaryStatusPending, SalaryStatusPaid, SalaryStatusUnpaid:
		return true
	}
	return false
}

// SalaryRecord is the generated payroll line, unique on (EmployeeID, SalaryMonth).
type SalaryRecord struct {
	ID            string
	EmployeeID    string
	SalaryMonth   time.Time // first day of the month
	BaseSalary    decimal.Decimal
	AbsentDays    int
	Deductions    decimal.Decimal
	OvertimeHours decimal.Decimal
	OvertimePay   decimal.Decimal
	Amount        decimal.Decimal
	Status        SalaryStatus
	PaidAt        *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Joined fields
	EmployeeName *string
	EmployeeCode *string
}
