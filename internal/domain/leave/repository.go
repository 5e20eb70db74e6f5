package leave

import (
	"context"
	"time"
)

type LeaveRequestRepository interface {
	// GetApprovedCovering returns the approved request covering date for the
	// employee, or nil when there is none.
	GetApprovedCovering(ctx context.Context, employeeID string, date time.Time) (*LeaveRequest, error)
}
