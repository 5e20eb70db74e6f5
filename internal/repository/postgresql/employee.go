package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `
	id, employee_code, full_name, department_id, sub_department_id, base_salary,
	employment_type, employment_status, created_at, updated_at, deleted_at
`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var emp employee.Employee
	err := row.Scan(
		&emp.ID, &emp.EmployeeCode, &emp.FullName, &emp.DepartmentID, &emp.SubDepartmentID,
		&emp.BaseSalary, &emp.EmploymentType, &emp.EmploymentStatus,
		&emp.CreatedAt, &emp.UpdatedAt, &emp.DeletedAt,
	)
	return emp, err
}

func (e *employeeRepositoryImpl) queryEmployees(ctx context.Context, query string, args ...interface{}) ([]employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employees: %w", err)
	}

	return employees, nil
}

// GetByIDs implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByIDs(ctx context.Context, ids []string) ([]employee.Employee, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + employeeColumns + `
		FROM employees
		WHERE id = ANY($1::uuid[]) AND deleted_at IS NULL
		ORDER BY employee_code
	`
	return e.queryEmployees(ctx, query, ids)
}

// GetByID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1 AND deleted_at IS NULL`

	emp, err := scanEmployee(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee by id %s: %w", id, err)
	}
	return emp, nil
}

// GetActive implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetActive(ctx context.Context) ([]employee.Employee, error) {
	query := `SELECT ` + employeeColumns + `
		FROM employees
		WHERE employment_status = $1 AND deleted_at IS NULL
		ORDER BY employee_code
	`
	return e.queryEmployees(ctx, query, employee.EmploymentStatusActive)
}

// GetActiveByDepartment implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetActiveByDepartment(ctx context.Context, departmentID string) ([]employee.Employee, error) {
	query := `SELECT ` + employeeColumns + `
		FROM employees
		WHERE employment_status = $1 AND deleted_at IS NULL
			AND (department_id = $2 OR sub_department_id = $2)
		ORDER BY employee_code
	`
	return e.queryEmployees(ctx, query, employee.EmploymentStatusActive, departmentID)
}

// GetDepartmentPolicyIDs implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetDepartmentPolicyIDs(ctx context.Context) (map[string]string, error) {
	q := GetQuerier(ctx, e.db)

	rows, err := q.Query(ctx, `SELECT id, payroll_policy_id FROM departments WHERE payroll_policy_id IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("failed to query department policies: %w", err)
	}
	defer rows.Close()

	policies := make(map[string]string)
	for rows.Next() {
		var departmentID, policyID string
		if err := rows.Scan(&departmentID, &policyID); err != nil {
			return nil, fmt.Errorf("failed to scan department policy: %w", err)
		}
		policies[departmentID] = policyID
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate department policies: %w", err)
	}

	return policies, nil
}
