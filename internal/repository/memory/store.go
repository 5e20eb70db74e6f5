// Package memory is an in-process implementation of every repository and of
// database.Transactor. It backs the service and handler tests and local runs
// without PostgreSQL.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/period"
	"github.com/google/uuid"
)

type dataset struct {
	employees   map[string]employee.Employee
	departments map[string]employee.Department
	leaves      []leave.LeaveRequest
	holidays    map[string]holiday.Holiday // keyed by YYYY-MM-DD
	sessionLogs map[string]attendance.SessionLog
	summaries   map[string]attendance.Summary // keyed by employee|date
	closures    map[string]attendance.MonthClosure
	policies    []payroll.Policy
	overtime    []payroll.OvertimeLog
	salaries    map[string]payroll.SalaryRecord // keyed by employee|month
}

func newDataset() *dataset {
	return &dataset{
		employees:   make(map[string]employee.Employee),
		departments: make(map[string]employee.Department),
		holidays:    make(map[string]holiday.Holiday),
		sessionLogs: make(map[string]attendance.SessionLog),
		summaries:   make(map[string]attendance.Summary),
		closures:    make(map[string]attendance.MonthClosure),
		salaries:    make(map[string]payroll.SalaryRecord),
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (d *dataset) clone() *dataset {
	return &dataset{
		employees:   cloneMap(d.employees),
		departments: cloneMap(d.departments),
		leaves:      append([]leave.LeaveRequest(nil), d.leaves...),
		holidays:    cloneMap(d.holidays),
		sessionLogs: cloneMap(d.sessionLogs),
		summaries:   cloneMap(d.summaries),
		closures:    cloneMap(d.closures),
		policies:    append([]payroll.Policy(nil), d.policies...),
		overtime:    append([]payroll.OvertimeLog(nil), d.overtime...),
		salaries:    cloneMap(d.salaries),
	}
}

// Store holds all data behind one mutex. Transactions are serialized and
// restored from a snapshot when fn fails.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	data *dataset

	failMu   sync.Mutex
	failures map[string]*injectedFailure
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{
		data:     newDataset(),
		failures: make(map[string]*injectedFailure),
		now:      time.Now,
	}
}

type injectedFailure struct {
	err   error
	after int
}

// FailOn makes every later call of op return err. Ops are named
// "<repository>.<Method>", e.g. "summaries.Upsert". A nil err clears it.
func (s *Store) FailOn(op string, err error) {
	s.FailAfter(op, 0, err)
}

// FailAfter lets the next calls invocations of op succeed, then fails every one after.
func (s *Store) FailAfter(op string, calls int, err error) {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = &injectedFailure{err: err, after: calls}
}

func (s *Store) failure(op string) error {
	s.failMu.Lock()
	defer s.failMu.Unlock()

	f, ok := s.failures[op]
	if !ok {
		return nil
	}
	if f.after > 0 {
		f.after--
		return nil
	}
	return fmt.Errorf("memory %s: %w", op, f.err)
}

type txKey struct{}

// WithinTransaction implements database.Transactor.
func (s *Store) WithinTransaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

var _ database.Transactor = (*Store)(nil)

func newID() string {
	return uuid.NewString()
}

func dayKey(employeeID string, date time.Time) string {
	return employeeID + "|" + period.FormatDate(date)
}

// ========== SEEDING ==========

func (s *Store) AddDepartment(d employee.Department) employee.Department {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.ID == "" {
		d.ID = newID()
	}
	s.data.departments[d.ID] = d
	return d
}

func (s *Store) AddEmployee(e employee.Employee) employee.Employee {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == "" {
		e.ID = newID()
	}
	if e.EmploymentType == "" {
		e.EmploymentType = employee.EmploymentTypePermanent
	}
	if e.EmploymentStatus == "" {
		e.EmploymentStatus = employee.EmploymentStatusActive
	}
	e.CreatedAt, e.UpdatedAt = s.now(), s.now()
	s.data.employees[e.ID] = e
	return e
}

func (s *Store) AddLeave(lr leave.LeaveRequest) leave.LeaveRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lr.ID == "" {
		lr.ID = newID()
	}
	s.data.leaves = append(s.data.leaves, lr)
	return lr
}

func (s *Store) AddHoliday(h holiday.Holiday) holiday.Holiday {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h.ID == "" {
		h.ID = newID()
	}
	h.Date = period.Day(h.Date)
	s.data.holidays[period.FormatDate(h.Date)] = h
	return h
}

func (s *Store) AddPolicy(p payroll.Policy) payroll.Policy {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = newID()
	}
	s.data.policies = append(s.data.policies, p)
	return p
}

func (s *Store) AddOvertime(ot payroll.OvertimeLog) payroll.OvertimeLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ot.ID == "" {
		ot.ID = newID()
	}
	if ot.ApprovalStatus == "" {
		ot.ApprovalStatus = payroll.OvertimeApprovalApproved
	}
	s.data.overtime = append(s.data.overtime, ot)
	return ot
}

// ========== REPOSITORIES ==========

func (s *Store) Employees() employee.EmployeeRepository { return employeeRepository{s} }
func (s *Store) Leaves() leave.LeaveRequestRepository { return leaveRepository{s} }
func (s *Store) Holidays() holiday.HolidayRepository { return holidayRepository{s} }
func (s *Store) SessionLogs() attendance.SessionLogRepository { return sessionLogRepository{s} }
func (s *Store) Summaries() attendance.SummaryRepository { return summaryRepository{s} }
func (s *Store) Closures() attendance.MonthClosureRepository { return closureRepository{s} }
func (s *Store) Policies() payroll.PolicyRepository { return policyRepository{s} }
func (s *Store) Overtime() payroll.OvertimeRepository { return overtimeRepository{s} }
func (s *Store) Salaries() payroll.SalaryRepository { return salaryRepository{s} }
