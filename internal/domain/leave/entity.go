package leave

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/period"
)

type LeaveRequestStatus string

const (
	LeaveRequestStatusWaitingApproval LeaveRequestStatus = "waiting_approval"
	LeaveRequestStatusApproved        LeaveRequestStatus = "approved"
	LeaveRequestStatusRejected        LeaveRequestStatus = "rejected"
	LeaveRequestStatusCancelled       LeaveRequestStatus = "cancelled"
)

// LeaveRequest entity
type LeaveRequest struct {
	ID         string
	EmployeeID string
	LeaveType  string

	StartDate time.Time
	EndDate   time.Time

	Reason string
	Status LeaveRequestStatus // 'waiting_approval', 'approved', 'rejected', 'cancelled'

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Covers reports whether the request is approved and date falls within
// [StartDate, EndDate] inclusive.
func (r LeaveRequest) Covers(date time.Time) bool {
	return r.Status == LeaveRequestStatusApproved && period.Within(date, r.StartDate, r.EndDate)
}
