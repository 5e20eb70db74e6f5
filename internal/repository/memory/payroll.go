package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/period"
)

type policyRepository struct{ s *Store }

func (r policyRepository) List(ctx context.Context) ([]payroll.Policy, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure("policies.List"); err != nil {
		return nil, err
	}
	return append([]payroll.Policy(nil), r.s.data.policies...), nil
}

type overtimeRepository struct{ s *Store }

func (r overtimeRepository) GetApprovedByEmployeeAndMonth(ctx context.Context, employeeID string, monthStart time.Time) ([]payroll.OvertimeLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure("overtime.GetApprovedByEmployeeAndMonth"); err != nil {
		return nil, err
	}

	start, end := period.MonthStart(monthStart), period.MonthEnd(monthStart)
	var out []payroll.OvertimeLog
	for _, ot := range r.s.data.overtime {
		if ot.EmployeeID == employeeID && ot.ApprovalStatus == payroll.OvertimeApprovalApproved && period.Within(ot.Date, start, end) {
			out = append(out, ot)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

type salaryRepository struct{ s *Store }

func salaryKey(employeeID string, month time.Time) string {
	return employeeID + "|" + period.FormatMonth(month)
}

// withEmployee must be called with mu held.
func (r salaryRepository) withEmployee(rec payroll.SalaryRecord) payroll.SalaryRecord {
	if e, ok := r.s.data.employees[rec.EmployeeID]; ok {
		name, code := e.FullName, e.EmployeeCode
		rec.EmployeeName, rec.EmployeeCode = &name, &code
	}
	return rec
}

func (r salaryRepository) Upsert(ctx context.Context, record payroll.SalaryRecord) (payroll.SalaryRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("salaries.Upsert"); err != nil {
		return payroll.SalaryRecord{}, err
	}

	record.SalaryMonth = period.MonthStart(record.SalaryMonth)
	key := salaryKey(record.EmployeeID, record.SalaryMonth)
	now := r.s.now()
	if existing, ok := r.s.data.salaries[key]; ok {
		record.ID, record.CreatedAt = existing.ID, existing.CreatedAt
	} else {
		record.ID, record.CreatedAt = newID(), now
	}
	record.Status, record.PaidAt = payroll.SalaryStatusPending, nil
	record.EmployeeName, record.EmployeeCode = nil, nil
	record.UpdatedAt = now
	r.s.data.salaries[key] = record
	return record, nil
}

// find must be called with mu held.
func (r salaryRepository) find(id string) (string, payroll.SalaryRecord, bool) {
	for key, rec := range r.s.data.salaries {
		if rec.ID == id {
			return key, rec, true
		}
	}
	return "", payroll.SalaryRecord{}, false
}

func (r salaryRepository) GetByID(ctx context.Context, id string) (payroll.SalaryRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure("salaries.GetByID"); err != nil {
		return payroll.SalaryRecord{}, err
	}

	_, rec, ok := r.find(id)
	if !ok {
		return payroll.SalaryRecord{}, payroll.ErrSalaryRecordNotFound
	}
	return r.withEmployee(rec), nil
}

func (r salaryRepository) List(ctx context.Context, filter payroll.SalaryFilter) ([]payroll.SalaryRecord, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure("salaries.List"); err != nil {
		return nil, 0, err
	}

	var matched []payroll.SalaryRecord
	for _, rec := range r.s.data.salaries {
		switch {
		case filter.MonthStart != nil && !rec.SalaryMonth.Equal(*filter.MonthStart),
			filter.Status != nil && string(rec.Status) != *filter.Status,
			filter.EmployeeID != nil && rec.EmployeeID != *filter.EmployeeID:
			continue
		}
		matched = append(matched, r.withEmployee(rec))
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].SalaryMonth.Equal(matched[j].SalaryMonth) {
			return matched[i].SalaryMonth.After(matched[j].SalaryMonth)
		}
		return deref(matched[i].EmployeeCode) < deref(matched[j].EmployeeCode)
	})

	return paginate(matched, filter.Page, filter.Limit), int64(len(matched)), nil
}

func (r salaryRepository) Update(ctx context.Context, record payroll.SalaryRecord) (payroll.SalaryRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("salaries.Update"); err != nil {
		return payroll.SalaryRecord{}, err
	}

	key, existing, ok := r.find(record.ID)
	if !ok {
		return payroll.SalaryRecord{}, payroll.ErrSalaryRecordNotFound
	}
	existing.AbsentDays = record.AbsentDays
	existing.Deductions = record.Deductions
	existing.OvertimeHours = record.OvertimeHours
	existing.OvertimePay = record.OvertimePay
	existing.Amount = record.Amount
	existing.Status = record.Status
	existing.PaidAt = record.PaidAt
	existing.UpdatedAt = r.s.now()
	r.s.data.salaries[key] = existing
	return r.withEmployee(existing), nil
}
