package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/period"
	"github.com/jackc/pgx/v5"
)

// ========== POLICIES ==========

type policyRepositoryImpl struct {
	db *database.DB
}

func NewPolicyRepository(db *database.DB) payroll.PolicyRepository {
	return &policyRepositoryImpl{db: db}
}

// List implements payroll.PolicyRepository.
func (r *policyRepositoryImpl) List(ctx context.Context) ([]payroll.Policy, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, name, weekday1, weekday2, sleepover, sunday, holiday, is_default, created_at, updated_at
		FROM payroll_policies
		ORDER BY is_default DESC, name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query payroll policies: %w", err)
	}
	defer rows.Close()

	var policies []payroll.Policy
	for rows.Next() {
		var p payroll.Policy
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Weekday1, &p.Weekday2, &p.Sleepover, &p.Sunday, &p.Holiday,
			&p.IsDefault, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payroll policy: %w", err)
		}
		policies = append(policies, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payroll policies: %w", err)
	}

	return policies, nil
}

// ========== OVERTIME ==========

type overtimeRepositoryImpl struct {
	db *database.DB
}

func NewOvertimeRepository(db *database.DB) payroll.OvertimeRepository {
	return &overtimeRepositoryImpl{db: db}
}

// GetApprovedByEmployeeAndMonth implements payroll.OvertimeRepository.
func (r *overtimeRepositoryImpl) GetApprovedByEmployeeAndMonth(ctx context.Context, employeeID string, monthStart time.Time) ([]payroll.OvertimeLog, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, date, to_char(start_time, 'HH24:MI:SS'), hours, approval_status, created_at, updated_at
		FROM overtime_logs
		WHERE employee_id = $1 AND approval_status = $2 AND date BETWEEN $3::date AND $4::date
		ORDER BY date, start_time
	`

	rows, err := q.Query(ctx, query,
		employeeID, payroll.OvertimeApprovalApproved, period.MonthStart(monthStart), period.MonthEnd(monthStart),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query overtime logs: %w", err)
	}
	defer rows.Close()

	var logs []payroll.OvertimeLog
	for rows.Next() {
		var ot payroll.OvertimeLog
		var startTime string
		if err := rows.Scan(
			&ot.ID, &ot.EmployeeID, &ot.Date, &startTime, &ot.Hours, &ot.ApprovalStatus, &ot.CreatedAt, &ot.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan overtime log: %w", err)
		}
		ot.StartTime, err = time.Parse("15:04:05", startTime)
		if err != nil {
			return nil, fmt.Errorf("failed to parse overtime start time %q: %w", startTime, err)
		}
		logs = append(logs, ot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate overtime logs: %w", err)
	}

	return logs, nil
}

// ========== SALARY RECORDS ==========

type salaryRepositoryImpl struct {
	db *database.DB
}

func NewSalaryRepository(db *database.DB) payroll.SalaryRepository {
	return &salaryRepositoryImpl{db: db}
}

const salaryColumns = `
	sr.id, sr.employee_id, sr.salary_month, sr.base_salary, sr.absent_days, sr.deductions,
	sr.overtime_hours, sr.overtime_pay, sr.amount, sr.status, sr.paid_at, sr.created_at, sr.updated_at
`

func salaryScanTargets(r *payroll.SalaryRecord) []interface{} {
	return []interface{}{
		&r.ID, &r.EmployeeID, &r.SalaryMonth, &r.BaseSalary, &r.AbsentDays, &r.Deductions,
		&r.OvertimeHours, &r.OvertimePay, &r.Amount, &r.Status, &r.PaidAt, &r.CreatedAt, &r.UpdatedAt,
	}
}

// Upsert implements payroll.SalaryRepository. A regenerated record goes back to pending.
func (r *salaryRepositoryImpl) Upsert(ctx context.Context, record payroll.SalaryRecord) (payroll.SalaryRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO salary_records AS sr (
			employee_id, salary_month, base_salary, absent_days, deductions,
			overtime_hours, overtime_pay, amount, status, paid_at
		)
		VALUES ($1, $2::date, $3, $4, $5, $6, $7, $8, 'pending', NULL)
		ON CONFLICT (employee_id, salary_month) DO UPDATE SET
			base_salary = EXCLUDED.base_salary,
			absent_days = EXCLUDED.absent_days,
			deductions = EXCLUDED.deductions,
			overtime_hours = EXCLUDED.overtime_hours,
			overtime_pay = EXCLUDED.overtime_pay,
			amount = EXCLUDED.amount,
			status = 'pending',
			paid_at = NULL,
			updated_at = NOW()
		RETURNING ` + salaryColumns

	var saved payroll.SalaryRecord
	err := q.QueryRow(ctx, query,
		record.EmployeeID, period.MonthStart(record.SalaryMonth), record.BaseSalary, record.AbsentDays,
		record.Deductions, record.OvertimeHours, record.OvertimePay, record.Amount,
	).Scan(salaryScanTargets(&saved)...)
	if err != nil {
		return payroll.SalaryRecord{}, fmt.Errorf("failed to upsert salary record for employee %s: %w", record.EmployeeID, err)
	}

	return saved, nil
}

// GetByID implements payroll.SalaryRepository.
func (r *salaryRepositoryImpl) GetByID(ctx context.Context, id string) (payroll.SalaryRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + salaryColumns + `, e.full_name, e.employee_code
		FROM salary_records sr
		LEFT JOIN employees e ON e.id = sr.employee_id
		WHERE sr.id = $1
	`

	var rec payroll.SalaryRecord
	err := q.QueryRow(ctx, query, id).Scan(append(salaryScanTargets(&rec), &rec.EmployeeName, &rec.EmployeeCode)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.SalaryRecord{}, payroll.ErrSalaryRecordNotFound
		}
		return payroll.SalaryRecord{}, fmt.Errorf("failed to get salary record %s: %w", id, err)
	}

	return rec, nil
}

// List implements payroll.SalaryRepository.
func (r *salaryRepositoryImpl) List(ctx context.Context, filter payroll.SalaryFilter) ([]payroll.SalaryRecord, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "1 = 1"
	args := []interface{}{}
	argIdx := 1

	if filter.MonthStart != nil {
		baseWhere += fmt.Sprintf(" AND sr.salary_month = $%d::date", argIdx)
		args = append(args, *filter.MonthStart)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND sr.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		baseWhere += fmt.Sprintf(" AND sr.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM salary_records sr WHERE `+baseWhere, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count salary records: %w", err)
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s, e.full_name, e.employee_code
		FROM salary_records sr
		LEFT JOIN employees e ON e.id = sr.employee_id
		WHERE %s
		ORDER BY sr.salary_month DESC, e.employee_code ASC
		LIMIT $%d OFFSET $%d
	`, salaryColumns, baseWhere, argIdx, argIdx+1)

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
		return nil, 0, fmt.Errorf("failed to query salary records: %w", err)
	}
	defer rows.Close()

	var records []payroll.SalaryRecord
	for rows.Next() {
		var rec payroll.SalaryRecord
		if err := rows.Scan(append(salaryScanTargets(&rec), &rec.EmployeeName, &rec.EmployeeCode)...); err != nil {
			return nil, 0, fmt.Errorf("failed to scan salary record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate salary records: %w", err)
	}

	return records, total, nil
}

// Update implements payroll.SalaryRepository.
func (r *salaryRepositoryImpl) Update(ctx context.Context, record payroll.SalaryRecord) (payroll.SalaryRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE salary_records AS sr
		SET absent_days = $2, deductions = $3, overtime_hours = $4, overtime_pay = $5,
			amount = $6, status = $7, paid_at = $8, updated_at = NOW()
		WHERE sr.id = $1
		RETURNING ` + salaryColumns

	var saved payroll.SalaryRecord
	err := q.QueryRow(ctx, query,
		record.ID, record.AbsentDays, record.Deductions, record.OvertimeHours, record.OvertimePay,
		record.Amount, record.Status, record.PaidAt,
	).Scan(salaryScanTargets(&saved)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.SalaryRecord{}, payroll.ErrSalaryRecordNotFound
		}
		return payroll.SalaryRecord{}, fmt.Errorf("failed to update salary record %s: %w", record.ID, err)
	}
	saved.EmployeeName, saved.EmployeeCode = record.EmployeeName, record.EmployeeCode

	return saved, nil
}
