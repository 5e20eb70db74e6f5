package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/period"
	"github.com/jackc/pgx/v5"
)

// ========== SESSION LOGS ==========

type sessionLogRepositoryImpl struct {
	db *database.DB
}

func NewSessionLogRepository(db *database.DB) attendance.SessionLogRepository {
	return &sessionLogRepositoryImpl{db: db}
}

const sessionLogColumns = `id, employee_id, date, session, status, actual_clock_in, actual_clock_out, created_at, updated_at`

func scanSessionLog(row pgx.Row) (attendance.SessionLog, error) {
	var log attendance.SessionLog
	err := row.Scan(
		&log.ID, &log.EmployeeID, &log.Date, &log.Session, &log.Status,
		&log.ActualClockIn, &log.ActualClockOut, &log.CreatedAt, &log.UpdatedAt,
	)
	return log, err
}

// GetByEmployeeAndDate implements attendance.SessionLogRepository.
func (r *sessionLogRepositoryImpl) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) ([]attendance.SessionLog, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + sessionLogColumns + `
		FROM attendance_session_logs
		WHERE employee_id = $1 AND date = $2::date
		ORDER BY CASE session WHEN 'morning' THEN 0 WHEN 'afternoon' THEN 1 ELSE 2 END
	`

	rows, err := q.Query(ctx, query, employeeID, period.Day(date))
	if err != nil {
		return nil, fmt.Errorf("failed to query session logs: %w", err)
	}
	defer rows.Close()

	var logs []attendance.SessionLog
	for rows.Next() {
		log, err := scanSessionLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session log: %w", err)
		}
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate session logs: %w", err)
	}

	return logs, nil
}

// Upsert implements attendance.SessionLogRepository.
func (r *sessionLogRepositoryImpl) Upsert(ctx context.Context, log attendance.SessionLog) (attendance.SessionLog, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_session_logs (employee_id, date, session, status, actual_clock_in, actual_clock_out)
		VALUES ($1, $2::date, $3, $4, $5, $6)
		ON CONFLICT (employee_id, date, session) DO UPDATE SET
			status = EXCLUDED.status,
			actual_clock_in = EXCLUDED.actual_clock_in,
			actual_clock_out = EXCLUDED.actual_clock_out,
			updated_at = NOW()
		RETURNING ` + sessionLogColumns

	saved, err := scanSessionLog(q.QueryRow(ctx, query,
		log.EmployeeID, period.Day(log.Date), log.Session, log.Status, log.ActualClockIn, log.ActualClockOut,
	))
	if err != nil {
		return attendance.SessionLog{}, fmt.Errorf("failed to upsert session log: %w", err)
	}
	return saved, nil
}

// ========== SUMMARIES ==========

type summaryRepositoryImpl struct {
	db *database.DB
}

func NewSummaryRepository(db *database.DB) attendance.SummaryRepository {
	return &summaryRepositoryImpl{db: db}
}

const summaryColumns = `
	s.id, s.employee_id, s.date, s.department_id, s.status, s.late_arrival, s.early_departure,
	s.unplanned_absence, s.total_work_hours, s.remarks, s.approval_status, s.approved_at, s.approved_by,
	s.created_at, s.updated_at
`

func summaryScanTargets(s *attendance.Summary) []interface{} {
	return []interface{}{
		&s.ID, &s.EmployeeID, &s.Date, &s.DepartmentID, &s.Status, &s.LateArrival, &s.EarlyDeparture,
		&s.UnplannedAbsence, &s.TotalWorkHours, &s.Remarks, &s.ApprovalStatus, &s.ApprovedAt, &s.ApprovedBy,
		&s.CreatedAt, &s.UpdatedAt,
	}
}

// Upsert implements attendance.SummaryRepository.
func (r *summaryRepositoryImpl) Upsert(ctx context.Context, summary attendance.Summary) (attendance.Summary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_summaries AS s (
			employee_id, date, department_id, status, late_arrival, early_departure,
			unplanned_absence, total_work_hours, remarks, approval_status
		)
		VALUES ($1, $2::date, $3, $4, $5, $6, $7, $8, $9, 'pending')
		ON CONFLICT (employee_id, date) DO UPDATE SET
			department_id = EXCLUDED.department_id,
			status = EXCLUDED.status,
			late_arrival = EXCLUDED.late_arrival,
			early_departure = EXCLUDED.early_departure,
			unplanned_absence = EXCLUDED.unplanned_absence,
			total_work_hours = EXCLUDED.total_work_hours,
			remarks = EXCLUDED.remarks,
			approval_status = 'pending',
			approved_at = NULL,
			approved_by = NULL,
			updated_at = NOW()
		RETURNING ` + summaryColumns

	var saved attendance.Summary
	err := q.QueryRow(ctx, query,
		summary.EmployeeID, period.Day(summary.Date), summary.DepartmentID, summary.Status,
		summary.LateArrival, summary.EarlyDeparture, summary.UnplannedAbsence,
		summary.TotalWorkHours, summary.Remarks,
	).Scan(summaryScanTargets(&saved)...)
	if err != nil {
		return attendance.Summary{}, fmt.Errorf("failed to upsert attendance summary for employee %s: %w", summary.EmployeeID, err)
	}

	return saved, nil
}

// GetByID implements attendance.SummaryRepository.
func (r *summaryRepositoryImpl) GetByID(ctx context.Context, id string) (attendance.Summary, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + summaryColumns + `, e.full_name, e.employee_code
		FROM attendance_summaries s
		LEFT JOIN employees e ON e.id = s.employee_id
		WHERE s.id = $1
	`

	var s attendance.Summary
	err := q.QueryRow(ctx, query, id).Scan(append(summaryScanTargets(&s), &s.EmployeeName, &s.EmployeeCode)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Summary{}, attendance.ErrSummaryNotFound
		}
		return attendance.Summary{}, fmt.Errorf("failed to get attendance summary %s: %w", id, err)
	}

	return s, nil
}

// List implements attendance.SummaryRepository.
func (r *summaryRepositoryImpl) List(ctx context.Context, filter attendance.SummaryFilter) ([]attendance.Summary, int64, error) {
	q := GetQuerier(ctx, r.db)

	// Build WHERE clause
	baseWhere := "1 = 1"
	args := []interface{}{}
	argIdx := 1

	if filter.From != nil {
		baseWhere += fmt.Sprintf(" AND s.date >= $%d::date", argIdx)
		args = append(args, *filter.From)
		argIdx++
	}
	if filter.To != nil {
		baseWhere += fmt.Sprintf(" AND s.date <= $%d::date", argIdx)
		args = append(args, *filter.To)
		argIdx++
	}
	if filter.DepartmentID != nil && *filter.DepartmentID != "" {
		baseWhere += fmt.Sprintf(" AND (s.department_id = $%d OR e.department_id = $%d)", argIdx, argIdx)
		args = append(args, *filter.DepartmentID)
		argIdx++
	}
	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		baseWhere += fmt.Sprintf(" AND s.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND s.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.ApprovalStatus != nil && *filter.ApprovalStatus != "" {
		baseWhere += fmt.Sprintf(" AND s.approval_status = $%d", argIdx)
		args = append(args, *filter.ApprovalStatus)
		argIdx++
	}

	countQuery := `
		SELECT COUNT(*)
		FROM attendance_summaries s
		LEFT JOIN employees e ON e.id = s.employee_id
		WHERE ` + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance summaries: %w", err)
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s, e.full_name, e.employee_code
		FROM attendance_summaries s
		LEFT JOIN employees e ON e.id = s.employee_id
		WHERE %s
		ORDER BY s.date DESC, e.employee_code ASC
		LIMIT $%d OFFSET $%d
	`, summaryColumns, baseWhere, argIdx, argIdx+1)

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	page := filter.Page
	if page == 0 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query attendance summaries: %w", err)
	}
	defer rows.Close()

	var summaries []attendance.Summary
	for rows.Next() {
		var s attendance.Summary
		if err := rows.Scan(append(summaryScanTargets(&s), &s.EmployeeName, &s.EmployeeCode)...); err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate attendance summaries: %w", err)
	}

	return summaries, total, nil
}

// Approve implements attendance.SummaryRepository.
func (r *summaryRepositoryImpl) Approve(ctx context.Context, id string, approvedBy *string, at time.Time) (attendance.Summary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance_summaries AS s
		SET approval_status = 'approved', approved_at = $2, approved_by = $3, updated_at = NOW()
		WHERE s.id = $1
		RETURNING ` + summaryColumns

	var s attendance.Summary
	err := q.QueryRow(ctx, query, id, at, approvedBy).Scan(summaryScanTargets(&s)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Summary{}, attendance.ErrSummaryNotFound
		}
		return attendance.Summary{}, fmt.Errorf("failed to approve attendance summary %s: %w", id, err)
	}

	return s, nil
}

// ApproveByDateAndDepartment implements attendance.SummaryRepository.
func (r *summaryRepositoryImpl) ApproveByDateAndDepartment(ctx context.Context, date time.Time, departmentID string, approvedBy *string, at time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance_summaries AS s
		SET approval_status = 'approved', approved_at = $3, approved_by = $4, updated_at = NOW()
		FROM employees e
		WHERE e.id = s.employee_id
			AND s.date = $1::date
			AND (s.department_id = $2 OR e.department_id = $2)
	`

	tag, err := q.Exec(ctx, query, period.Day(date), departmentID, at, approvedBy)
	if err != nil {
		return 0, fmt.Errorf("failed to approve attendance summaries: %w", err)
	}

	return tag.RowsAffected(), nil
}

// CountAbsentInMonth implements attendance.SummaryRepository.
func (r *summaryRepositoryImpl) CountAbsentInMonth(ctx context.Context, employeeID string, monthStart time.Time) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COUNT(*)
		FROM attendance_summaries
		WHERE employee_id = $1 AND status = $2 AND date BETWEEN $3::date AND $4::date
	`

	var count int
	err := q.QueryRow(ctx, query,
		employeeID, attendance.SummaryStatusAbsent, period.MonthStart(monthStart), period.MonthEnd(monthStart),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count absent days for employee %s: %w", employeeID, err)
	}

	return count, nil
}

// ========== MONTH CLOSURES ==========

type monthClosureRepositoryImpl struct {
	db *database.DB
}

func NewMonthClosureRepository(db *database.DB) attendance.MonthClosureRepository {
	return &monthClosureRepositoryImpl{db: db}
}

// Get implements attendance.MonthClosureRepository.
func (r *monthClosureRepositoryImpl) Get(ctx context.Context, month time.Time) (*attendance.MonthClosure, error) {
	q := GetQuerier(ctx, r.db)

	var c attendance.MonthClosure
	err := q.QueryRow(ctx,
		`SELECT month, finalized_by, finalized_at FROM attendance_month_closures WHERE month = $1::date`,
		period.MonthStart(month),
	).Scan(&c.Month, &c.FinalizedBy, &c.FinalizedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get month closure for %s: %w", period.FormatMonth(month), err)
	}

	return &c, nil
}

// Finalize implements attendance.MonthClosureRepository.
func (r *monthClosureRepositoryImpl) Finalize(ctx context.Context, closure attendance.MonthClosure) (attendance.MonthClosure, error) {
	q := GetQuerier(ctx, r.db)

	// The no-op update lets RETURNING yield the existing row on conflict.
	query := `
		INSERT INTO attendance_month_closures (month, finalized_by, finalized_at)
		VALUES ($1::date, $2, $3)
		ON CONFLICT (month) DO UPDATE SET month = attendance_month_closures.month
		RETURNING month, finalized_by, finalized_at
	`

	var c attendance.MonthClosure
	err := q.QueryRow(ctx, query, period.MonthStart(closure.Month), closure.FinalizedBy, closure.FinalizedAt).
		Scan(&c.Month, &c.FinalizedBy, &c.FinalizedAt)
	if err != nil {
		return attendance.MonthClosure{}, fmt.Errorf("failed to finalize month %s: %w", period.FormatMonth(closure.Month), err)
	}

	return c, nil
}

// Reopen implements attendance.MonthClosureRepository.
func (r *monthClosureRepositoryImpl) Reopen(ctx context.Context, month time.Time) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM attendance_month_closures WHERE month = $1::date`, period.MonthStart(month))
	if err != nil {
		return fmt.Errorf("failed to reopen month %s: %w", period.FormatMonth(month), err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrMonthNotFinalized
	}

	return nil
}
