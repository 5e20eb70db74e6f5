package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

// GetApprovedCovering implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) GetApprovedCovering(ctx context.Context, employeeID string, date time.Time) (*leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, leave_type, start_date, end_date, reason, status, created_at, updated_at
		FROM leave_requests
		WHERE employee_id = $1 AND status = $2 AND start_date <= $3::date AND end_date >= $3::date
		ORDER BY start_date DESC
		LIMIT 1
	`

	var lr leave.LeaveRequest
	err := q.QueryRow(ctx, query, employeeID, leave.LeaveRequestStatusApproved, date).Scan(
		&lr.ID, &lr.EmployeeID, &lr.LeaveType, &lr.StartDate, &lr.EndDate,
		&lr.Reason, &lr.Status, &lr.CreatedAt, &lr.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get approved leave for employee %s: %w", employeeID, err)
	}

	return &lr, nil
}
