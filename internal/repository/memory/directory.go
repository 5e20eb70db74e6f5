package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/period"
)

type employeeRepository struct{ s *Store }

func sortByCode(employees []employee.Employee) []employee.Employee {
	sort.Slice(employees, func(i, j int) bool { return employees[i].EmployeeCode < employees[j].EmployeeCode })
	return employees
}

func (r employeeRepository) GetByIDs(ctx context.Context, ids []string) ([]employee.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure("employees.GetByIDs"); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(ids))
	var out []employee.Employee
	for _, id := range ids {
		e, ok := r.s.data.employees[id]
		if !ok || e.DeletedAt != nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, e)
	}
	return sortByCode(out), nil
}

func (r employeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.data.employees[id]
	if !ok || e.DeletedAt != nil {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (r employeeRepository) active(match func(employee.Employee) bool) []employee.Employee {
	var out []employee.Employee
	for _, e := range r.s.data.employees {
		if e.IsActive() && match(e) {
			out = append(out, e)
		}
	}
	return sortByCode(out)
}

func (r employeeRepository) GetActive(ctx context.Context) ([]employee.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure("employees.GetActive"); err != nil {
		return nil, err
	}
	return r.active(func(employee.Employee) bool { return true }), nil
}

func (r employeeRepository) GetActiveByDepartment(ctx context.Context, departmentID string) ([]employee.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure("employees.GetActiveByDepartment"); err != nil {
		return nil, err
	}
	return r.active(func(e employee.Employee) bool {
		return e.DepartmentID == departmentID || (e.SubDepartmentID != nil && *e.SubDepartmentID == departmentID)
	}), nil
}

func (r employeeRepository) GetDepartmentPolicyIDs(ctx context.Context) (map[string]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure("employees.GetDepartmentPolicyIDs"); err != nil {
		return nil, err
	}

	out := make(map[string]string)
	for id, d := range r.s.data.departments {
		if d.PayrollPolicyID != nil {
			out[id] = *d.PayrollPolicyID
		}
	}
	return out, nil
}

type leaveRepository struct{ s *Store }

func (r leaveRepository) GetApprovedCovering(ctx context.Context, employeeID string, date time.Time) (*leave.LeaveRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure("leaves.GetApprovedCovering"); err != nil {
		return nil, err
	}

	for _, lr := range r.s.data.leaves {
		if lr.EmployeeID == employeeID && lr.Covers(date) {
			found := lr
			return &found, nil
		}
	}
	return nil, nil
}

type holidayRepository struct{ s *Store }

func (r holidayRepository) GetByDate(ctx context.Context, date time.Time) (*holiday.Holiday, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure("holidays.GetByDate"); err != nil {
		return nil, err
	}

	h, ok := r.s.data.holidays[period.FormatDate(date)]
	if !ok {
		return nil, nil
	}
	return &h, nil
}

func (r holidayRepository) GetByMonth(ctx context.Context, monthStart time.Time) ([]holiday.Holiday, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure("holidays.GetByMonth"); err != nil {
		return nil, err
	}

	start, end := period.MonthStart(monthStart), period.MonthEnd(monthStart)
	var out []holiday.Holiday
	for _, h := range r.s.data.holidays {
		if period.Within(h.Date, start, end) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}
