package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/period"
)

type sessionLogRepository struct{ s *Store }

func (r sessionLogRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) ([]attendance.SessionLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure("session_logs.GetByEmployeeAndDate"); err != nil {
		return nil, err
	}

	var logs []attendance.SessionLog
	for _, log := range r.s.data.sessionLogs {
		if log.EmployeeID == employeeID && log.Date.Equal(period.Day(date)) {
			logs = append(logs, log)
		}
	}
	sort.Slice(logs, func(i, j int) bool { return logs[i].Session.Order() < logs[j].Session.Order() })
	return logs, nil
}

func (r sessionLogRepository) Upsert(ctx context.Context, log attendance.SessionLog) (attendance.SessionLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("session_logs.Upsert"); err != nil {
		return attendance.SessionLog{}, err
	}

	log.Date = period.Day(log.Date)
	key := dayKey(log.EmployeeID, log.Date) + "|" + string(log.Session)
	now := r.s.now()
	if existing, ok := r.s.data.sessionLogs[key]; ok {
		log.ID, log.CreatedAt = existing.ID, existing.CreatedAt
	} else {
		log.ID, log.CreatedAt = newID(), now
	}
	log.UpdatedAt = now
	r.s.data.sessionLogs[key] = log
	return log, nil
}

type summaryRepository struct{ s *Store }

// withEmployee must be called with mu held.
func (r summaryRepository) withEmployee(s attendance.Summary) attendance.Summary {
	if e, ok := r.s.data.employees[s.EmployeeID]; ok {
		name, code := e.FullName, e.EmployeeCode
		s.EmployeeName, s.EmployeeCode = &name, &code
	}
	return s
}

func (r summaryRepository) Upsert(ctx context.Context, summary attendance.Summary) (attendance.Summary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("summaries.Upsert"); err != nil {
		return attendance.Summary{}, err
	}

	summary.Date = period.Day(summary.Date)
	key := dayKey(summary.EmployeeID, summary.Date)
	now := r.s.now()
	if existing, ok := r.s.data.summaries[key]; ok {
		summary.ID, summary.CreatedAt = existing.ID, existing.CreatedAt
	} else {
		summary.ID, summary.CreatedAt = newID(), now
	}
	summary.ApprovalStatus = attendance.ApprovalStatusPending
	summary.ApprovedAt, summary.ApprovedBy = nil, nil
	summary.EmployeeName, summary.EmployeeCode = nil, nil
	summary.UpdatedAt = now
	r.s.data.summaries[key] = summary
	return summary, nil
}

// find must be called with mu held.
func (r summaryRepository) find(id string) (string, attendance.Summary, bool) {
	for key, s := range r.s.data.summaries {
		if s.ID == id {
			return key, s, true
		}
	}
	return "", attendance.Summary{}, false
}

func (r summaryRepository) GetByID(ctx context.Context, id string) (attendance.Summary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, s, ok := r.find(id)
	if !ok {
		return attendance.Summary{}, attendance.ErrSummaryNotFound
	}
	return r.withEmployee(s), nil
}

// inDepartment must be called with mu held.
func (r summaryRepository) inDepartment(s attendance.Summary, departmentID string) bool {
	if s.DepartmentID == departmentID {
		return true
	}
	e, ok := r.s.data.employees[s.EmployeeID]
	return ok && e.DepartmentID == departmentID
}

func (r summaryRepository) List(ctx context.Context, filter attendance.SummaryFilter) ([]attendance.Summary, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure("summaries.List"); err != nil {
		return nil, 0, err
	}

	var matched []attendance.Summary
	for _, s := range r.s.data.summaries {
		switch {
		case filter.From != nil && s.Date.Before(*filter.From),
			filter.To != nil && s.Date.After(*filter.To),
			filter.DepartmentID != nil && !r.inDepartment(s, *filter.DepartmentID),
			filter.EmployeeID != nil && s.EmployeeID != *filter.EmployeeID,
			filter.Status != nil && string(s.Status) != *filter.Status,
			filter.ApprovalStatus != nil && string(s.ApprovalStatus) != *filter.ApprovalStatus:
			continue
		}
		matched = append(matched, r.withEmployee(s))
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].Date.Equal(matched[j].Date) {
			return matched[i].Date.After(matched[j].Date)
		}
		return deref(matched[i].EmployeeCode) < deref(matched[j].EmployeeCode)
	})

	return paginate(matched, filter.Page, filter.Limit), int64(len(matched)), nil
}

func (r summaryRepository) Approve(ctx context.Context, id string, approvedBy *string, at time.Time) (attendance.Summary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("summaries.Approve"); err != nil {
		return attendance.Summary{}, err
	}

	key, s, ok := r.find(id)
	if !ok {
		return attendance.Summary{}, attendance.ErrSummaryNotFound
	}
	s.ApprovalStatus, s.ApprovedAt, s.ApprovedBy, s.UpdatedAt = attendance.ApprovalStatusApproved, &at, approvedBy, r.s.now()
	r.s.data.summaries[key] = s
	return s, nil
}

func (r summaryRepository) ApproveByDateAndDepartment(ctx context.Context, date time.Time, departmentID string, approvedBy *string, at time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("summaries.ApproveByDateAndDepartment"); err != nil {
		return 0, err
	}

	var count int64
	for key, s := range r.s.data.summaries {
		if !s.Date.Equal(period.Day(date)) || !r.inDepartment(s, departmentID) {
			continue
		}
		s.ApprovalStatus, s.ApprovedAt, s.ApprovedBy, s.UpdatedAt = attendance.ApprovalStatusApproved, &at, approvedBy, r.s.now()
		r.s.data.summaries[key] = s
		count++
	}
	return count, nil
}

func (r summaryRepository) CountAbsentInMonth(ctx context.Context, employeeID string, monthStart time.Time) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure("summaries.CountAbsentInMonth"); err != nil {
		return 0, err
	}

	start, end := period.MonthStart(monthStart), period.MonthEnd(monthStart)
	count := 0
	for _, s := range r.s.data.summaries {
		if s.EmployeeID == employeeID && s.Status == attendance.SummaryStatusAbsent && period.Within(s.Date, start, end) {
			count++
		}
	}
	return count, nil
}

type closureRepository struct{ s *Store }

func (r closureRepository) Get(ctx context.Context, month time.Time) (*attendance.MonthClosure, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure("closures.Get"); err != nil {
		return nil, err
	}

	c, ok := r.s.data.closures[period.FormatMonth(month)]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r closureRepository) Finalize(ctx context.Context, closure attendance.MonthClosure) (attendance.MonthClosure, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("closures.Finalize"); err != nil {
		return attendance.MonthClosure{}, err
	}

	key := period.FormatMonth(closure.Month)
	if existing, ok := r.s.data.closures[key]; ok {
		return existing, nil
	}
	closure.Month = period.MonthStart(closure.Month)
	r.s.data.closures[key] = closure
	return closure, nil
}

func (r closureRepository) Reopen(ctx context.Context, month time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("closures.Reopen"); err != nil {
		return err
	}

	key := period.FormatMonth(month)
	if _, ok := r.s.data.closures[key]; !ok {
		return attendance.ErrMonthNotFinalized
	}
	delete(r.s.data.closures, key)
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func paginate[T any](items []T, page, limit int) []T {
	if limit <= 0 {
		limit = 20
	}
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return nil
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
