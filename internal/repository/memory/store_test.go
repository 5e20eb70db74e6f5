package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var june4 = time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC)

func TestWithinTransaction_RestoresOnError(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	dept := s.AddDepartment(employee.Department{Name: "engineering"})
	emp := s.AddEmployee(employee.Employee{EmployeeCode: "E001", DepartmentID: dept.ID})
	failure := errors.New("boom")

	err := s.WithinTransaction(ctx, func(txCtx context.Context) error {
		_, err := s.Summaries().Upsert(txCtx, attendance.Summary{EmployeeID: emp.ID, Date: june4, Status: attendance.SummaryStatusPresent})
		require.NoError(t, err)
		return failure
	})
	assert.ErrorIs(t, err, failure)

	_, total, err := s.Summaries().List(ctx, attendance.SummaryFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)

	require.NoError(t, s.WithinTransaction(ctx, func(txCtx context.Context) error {
		return s.WithinTransaction(txCtx, func(inner context.Context) error {
			_, err := s.Summaries().Upsert(inner, attendance.Summary{EmployeeID: emp.ID, Date: june4, Status: attendance.SummaryStatusPresent})
			return err
		})
	}))
	_, total, err = s.Summaries().List(ctx, attendance.SummaryFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestFailOn(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	failure := errors.New("disk full")

	s.FailOn("summaries.Upsert", failure)
	_, err := s.Summaries().Upsert(ctx, attendance.Summary{EmployeeID: "e", Date: june4})
	assert.ErrorIs(t, err, failure)

	s.FailOn("summaries.Upsert", nil)
	_, err = s.Summaries().Upsert(ctx, attendance.Summary{EmployeeID: "e", Date: june4})
	assert.NoError(t, err)
}

func TestEmployeeRepository(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	eng := s.AddDepartment(employee.Department{Name: "engineering"})
	sub := s.AddDepartment(employee.Department{Name: "platform", PayrollPolicyID: strPtr("policy-1")})
	deleted := time.Now()

	a := s.AddEmployee(employee.Employee{EmployeeCode: "E002", DepartmentID: eng.ID})
	b := s.AddEmployee(employee.Employee{EmployeeCode: "E001", DepartmentID: eng.ID, SubDepartmentID: &sub.ID})
	s.AddEmployee(employee.Employee{EmployeeCode: "E003", DepartmentID: sub.ID, EmploymentStatus: employee.EmploymentStatusResigned})
	s.AddEmployee(employee.Employee{EmployeeCode: "E004", DepartmentID: sub.ID, DeletedAt: &deleted})

	active, err := s.Employees().GetActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "E001", active[0].EmployeeCode)

	bySub, err := s.Employees().GetActiveByDepartment(ctx, sub.ID)
	require.NoError(t, err)
	require.Len(t, bySub, 1)
	assert.Equal(t, b.ID, bySub[0].ID)

	byIDs, err := s.Employees().GetByIDs(ctx, []string{a.ID, "missing", a.ID})
	require.NoError(t, err)
	assert.Len(t, byIDs, 1)

	policies, err := s.Employees().GetDepartmentPolicyIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{sub.ID: "policy-1"}, policies)
}

func TestLeaveRepository_OnlyApprovedCovering(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	s.AddLeave(leave.LeaveRequest{EmployeeID: "e1", StartDate: june4, EndDate: june4.AddDate(0, 0, 2), Status: leave.LeaveRequestStatusWaitingApproval})

	lr, err := s.Leaves().GetApprovedCovering(ctx, "e1", june4)
	require.NoError(t, err)
	assert.Nil(t, lr)

	s.AddLeave(leave.LeaveRequest{EmployeeID: "e1", StartDate: june4, EndDate: june4.AddDate(0, 0, 2), Status: leave.LeaveRequestStatusApproved})
	lr, err = s.Leaves().GetApprovedCovering(ctx, "e1", june4.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.NotNil(t, lr)
}

func TestSalaryRepository_UpsertResetsStatus(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	june := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	rec, err := s.Salaries().Upsert(ctx, payroll.SalaryRecord{EmployeeID: "e1", SalaryMonth: june, Amount: decimal.NewFromInt(2900)})
	require.NoError(t, err)

	paidAt := time.Now()
	rec.Status, rec.PaidAt = payroll.SalaryStatusPaid, &paidAt
	_, err = s.Salaries().Update(ctx, rec)
	require.NoError(t, err)

	again, err := s.Salaries().Upsert(ctx, payroll.SalaryRecord{EmployeeID: "e1", SalaryMonth: june.AddDate(0, 0, 14), Amount: decimal.NewFromInt(3000)})
	require.NoError(t, err)
	assert.Equal(t, rec.ID, again.ID)
	assert.Equal(t, payroll.SalaryStatusPending, again.Status)
	assert.Nil(t, again.PaidAt)
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{1, 2}, paginate(items, 1, 2))
	assert.Equal(t, []int{5}, paginate(items, 3, 2))
	assert.Nil(t, paginate(items, 4, 2))
}

func strPtr(s string) *string { return &s }
