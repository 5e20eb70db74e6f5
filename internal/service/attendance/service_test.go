package attendance

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/runner"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/validator"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/repository/memory"
	"github.com/go-chi/jwtauth/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2024-06-04 is a Tuesday.
var tuesday = time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC)

type fixture struct {
	store   *memory.Store
	service attendance.AttendanceService
	dept    employee.Department
	sub     employee.Department
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	f := &fixture{
		store: store,
		service: NewAttendanceService(
			store,
			runner.New(4, time.Minute),
			store.Employees(),
			store.Leaves(),
			store.Holidays(),
			store.SessionLogs(),
			store.Summaries(),
			store.Closures(),
		),
		dept: store.AddDepartment(employee.Department{Name: "engineering"}),
	}
	f.sub = store.AddDepartment(employee.Department{Name: "platform", ParentID: &f.dept.ID})
	return f
}

func (f *fixture) addEmployee(code string) employee.Employee {
	return f.store.AddEmployee(employee.Employee{EmployeeCode: code, FullName: "Employee " + code, DepartmentID: f.dept.ID})
}

func (f *fixture) addLog(t *testing.T, emp employee.Employee, date time.Time, session attendance.Session, status attendance.SessionStatus, in, out string) {
	t.Helper()
	log := attendance.SessionLog{EmployeeID: emp.ID, Date: date, Session: session, Status: status}
	if in != "" {
		ts := clock(t, date, in)
		log.ActualClockIn = &ts
	}
	if out != "" {
		ts := clock(t, date, out)
		log.ActualClockOut = &ts
	}
	_, err := f.store.SessionLogs().Upsert(context.Background(), log)
	require.NoError(t, err)
}

func clock(t *testing.T, date time.Time, hm string) time.Time {
	t.Helper()
	parsed, err := time.Parse("15:04", hm)
	require.NoError(t, err)
	return date.Add(time.Duration(parsed.Hour())*time.Hour + time.Duration(parsed.Minute())*time.Minute)
}

func (f *fixture) generate(t *testing.T, date time.Time, emps ...employee.Employee) attendance.GenerateSummariesResponse {
	t.Helper()
	ids := make([]string, 0, len(emps))
	for _, e := range emps {
		ids = append(ids, e.ID)
	}
	resp, err := f.service.GenerateSummaries(context.Background(), attendance.GenerateSummariesRequest{
		Date:        date.Format("2006-01-02"),
		EmployeeIDs: ids,
	})
	require.NoError(t, err)
	return resp
}

func adminContext(t *testing.T, userID string) context.Context {
	t.Helper()
	ja := jwtauth.New("HS256", []byte("test-secret"), nil)
	token, _, err := ja.Encode(map[string]interface{}{"user_id": userID, "is_admin": true, "type": "access"})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

func TestGenerateSummaries_NoLogsOnWorkingDay(t *testing.T) {
	f := newFixture(t)
	emp := f.addEmployee("E001")

	resp := f.generate(t, tuesday, emp)

	require.Equal(t, 1, resp.Count)
	got := resp.Summaries[0]
	assert.Equal(t, "absent", got.Status)
	assert.True(t, got.UnplannedAbsence)
	assert.Equal(t, "no logs for a working day", got.Remarks)
	assert.Nil(t, got.TotalWorkHours)
	assert.Equal(t, f.dept.ID, got.DepartmentID)
	assert.Equal(t, "pending", got.ApprovalStatus)
}

func TestGenerateSummaries_TwoSessionsPresent(t *testing.T) {
	f := newFixture(t)
	emp := f.addEmployee("E001")
	f.addLog(t, emp, tuesday, attendance.SessionMorning, attendance.SessionStatusPresent, "08:00", "12:00")
	f.addLog(t, emp, tuesday, attendance.SessionAfternoon, attendance.SessionStatusPresent, "13:00", "16:30")

	resp := f.generate(t, tuesday, emp)

	got := resp.Summaries[0]
	assert.Equal(t, "present", got.Status)
	assert.False(t, got.UnplannedAbsence)
	require.NotNil(t, got.TotalWorkHours)
	assert.True(t, decimal.RequireFromString("7.5").Equal(*got.TotalWorkHours), got.TotalWorkHours.String())
}

func TestGenerateSummaries_Precedence(t *testing.T) {
	f := newFixture(t)
	onLeave := f.addEmployee("E001")
	regular := f.addEmployee("E002")
	f.store.AddLeave(leave.LeaveRequest{
		EmployeeID: onLeave.ID,
		LeaveType:  "annual",
		StartDate:  tuesday.AddDate(0, 0, -1),
		EndDate:    tuesday.AddDate(0, 0, 1),
		Status:     leave.LeaveRequestStatusApproved,
	})
	f.store.AddHoliday(holiday.Holiday{Date: tuesday, Name: "Founders Day"})
	f.addLog(t, onLeave, tuesday, attendance.SessionMorning, attendance.SessionStatusPresent, "", "")
	f.addLog(t, regular, tuesday, attendance.SessionMorning, attendance.SessionStatusPresent, "", "")

	resp := f.generate(t, tuesday, onLeave, regular)

	byEmployee := map[string]attendance.SummaryResponse{}
	for _, s := range resp.Summaries {
		byEmployee[s.EmployeeID] = s
	}
	assert.Equal(t, "on_leave", byEmployee[onLeave.ID].Status)
	assert.False(t, byEmployee[onLeave.ID].UnplannedAbsence)
	assert.Equal(t, "holiday", byEmployee[regular.ID].Status)
	assert.Contains(t, byEmployee[regular.ID].Remarks, "Founders Day")
}

func TestGenerateSummaries_Sunday(t *testing.T) {
	f := newFixture(t)
	emp := f.addEmployee("E001")
	sunday := time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC)

	resp := f.generate(t, sunday, emp)
	assert.Equal(t, "weekend", resp.Summaries[0].Status)
}

func TestGenerateSummaries_DepartmentScopeUsesEffectiveDepartment(t *testing.T) {
	f := newFixture(t)
	inMain := f.addEmployee("E001")
	inSub := f.store.AddEmployee(employee.Employee{EmployeeCode: "E002", DepartmentID: f.dept.ID, SubDepartmentID: &f.sub.ID})
	other := f.store.AddDepartment(employee.Department{Name: "finance"})
	f.store.AddEmployee(employee.Employee{EmployeeCode: "E003", DepartmentID: other.ID})

	resp, err := f.service.GenerateSummaries(context.Background(), attendance.GenerateSummariesRequest{
		Date:         "2024-06-04",
		DepartmentID: &f.dept.ID,
	})
	require.NoError(t, err)
	require.Equal(t, 2, resp.Count)

	departments := map[string]string{}
	for _, s := range resp.Summaries {
		departments[s.EmployeeID] = s.DepartmentID
	}
	assert.Equal(t, f.dept.ID, departments[inMain.ID])
	assert.Equal(t, f.sub.ID, departments[inSub.ID])
}

func TestGenerateSummaries_SkipsUnknownEmployees(t *testing.T) {
	f := newFixture(t)
	emp := f.addEmployee("E001")

	resp, err := f.service.GenerateSummaries(context.Background(), attendance.GenerateSummariesRequest{
		Date:        "2024-06-04",
		EmployeeIDs: []string{emp.ID, "9b2f0c6e-4c3d-4a1b-8e7f-6a5b4c3d2e1f"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Count)
}

func TestGenerateSummaries_InvalidDateTouchesNothing(t *testing.T) {
	f := newFixture(t)
	emp := f.addEmployee("E001")
	f.store.FailOn("employees.GetByIDs", errors.New("must not be called"))

	_, err := f.service.GenerateSummaries(context.Background(), attendance.GenerateSummariesRequest{
		Date:        "2024-13-40",
		EmployeeIDs: []string{emp.ID},
	})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "date")
}

func TestGenerateSummaries_IdempotentAndResetsApproval(t *testing.T) {
	f := newFixture(t)
	emp := f.addEmployee("E001")
	f.addLog(t, emp, tuesday, attendance.SessionMorning, attendance.SessionStatusLate, "08:20", "12:00")

	first := f.generate(t, tuesday, emp).Summaries[0]
	_, err := f.service.ApproveSummary(adminContext(t, "admin-1"), first.ID)
	require.NoError(t, err)

	second := f.generate(t, tuesday, emp).Summaries[0]
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.LateArrival, second.LateArrival)
	assert.Equal(t, first.Remarks, second.Remarks)
	assert.True(t, first.TotalWorkHours.Equal(*second.TotalWorkHours))
	assert.Equal(t, "pending", second.ApprovalStatus)
	assert.Nil(t, second.ApprovedBy)
}

func TestGenerateSummaries_FailedWriteRollsBack(t *testing.T) {
	f := newFixture(t)
	a := f.addEmployee("E001")
	b := f.addEmployee("E002")
	f.generate(t, tuesday, a)

	f.addLog(t, a, tuesday, attendance.SessionMorning, attendance.SessionStatusPresent, "", "")
	f.addLog(t, a, tuesday, attendance.SessionAfternoon, attendance.SessionStatusPresent, "", "")
	// E001 is written first and succeeds; E002 fails.
	f.store.FailAfter("summaries.Upsert", 1, errors.New("connection reset"))
	_, err := f.service.GenerateSummaries(context.Background(), attendance.GenerateSummariesRequest{
		Date:        "2024-06-04",
		EmployeeIDs: []string{a.ID, b.ID},
	})
	require.Error(t, err)
	f.store.FailOn("summaries.Upsert", nil)

	list, err := f.service.ListSummaries(context.Background(), attendance.SummaryFilter{})
	require.NoError(t, err)
	require.EqualValues(t, 1, list.TotalCount)
	assert.Equal(t, "absent", list.Summaries[0].Status)
}

func TestGenerateSummaries_ConcurrentCallsShareRun(t *testing.T) {
	f := newFixture(t)
	emp := f.addEmployee("E001")

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.service.GenerateSummaries(context.Background(), attendance.GenerateSummariesRequest{
				Date:        "2024-06-04",
				EmployeeIDs: []string{emp.ID},
			})
		}()
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	list, err := f.service.ListSummaries(context.Background(), attendance.SummaryFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, list.TotalCount)
}

func TestMonthClosure_BlocksRegeneration(t *testing.T) {
	f := newFixture(t)
	emp := f.addEmployee("E001")
	ctx := adminContext(t, "admin-1")

	closed, err := f.service.FinalizeMonth(ctx, "2024-06")
	require.NoError(t, err)
	assert.True(t, closed.Finalized)
	require.NotNil(t, closed.FinalizedBy)
	assert.Equal(t, "admin-1", *closed.FinalizedBy)

	finalized, err := f.service.IsMonthFinalized(ctx, tuesday)
	require.NoError(t, err)
	assert.True(t, finalized)

	_, err = f.service.GenerateSummaries(ctx, attendance.GenerateSummariesRequest{Date: "2024-06-04", EmployeeIDs: []string{emp.ID}})
	assert.ErrorIs(t, err, attendance.ErrAttendanceMonthFinalized)

	_, err = f.service.ResolveAllActive(ctx, tuesday)
	assert.ErrorIs(t, err, attendance.ErrAttendanceMonthFinalized)

	_, err = f.service.ReopenMonth(ctx, "2024-06")
	require.NoError(t, err)
	_, err = f.service.ReopenMonth(ctx, "2024-06")
	assert.ErrorIs(t, err, attendance.ErrMonthNotFinalized)

	n, err := f.service.ResolveAllActive(ctx, tuesday)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = f.service.FinalizeMonth(ctx, "June")
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestApproveSummaries_ByDepartment(t *testing.T) {
	f := newFixture(t)
	a := f.addEmployee("E001")
	b := f.store.AddEmployee(employee.Employee{EmployeeCode: "E002", DepartmentID: f.dept.ID, SubDepartmentID: &f.sub.ID})
	other := f.store.AddDepartment(employee.Department{Name: "finance"})
	c := f.store.AddEmployee(employee.Employee{EmployeeCode: "E003", DepartmentID: other.ID})
	f.generate(t, tuesday, a, b, c)

	resp, err := f.service.ApproveSummaries(adminContext(t, "admin-7"), attendance.ApproveSummariesRequest{
		Date:         "2024-06-04",
		DepartmentID: f.dept.ID,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, resp.Count)

	approved := "approved"
	list, err := f.service.ListSummaries(context.Background(), attendance.SummaryFilter{ApprovalStatus: &approved})
	require.NoError(t, err)
	require.Len(t, list.Summaries, 2)
	for _, s := range list.Summaries {
		assert.Equal(t, "absent", s.Status, "approval keeps the classification")
		require.NotNil(t, s.ApprovedBy)
		assert.Equal(t, "admin-7", *s.ApprovedBy)
	}
}

func TestApproveSummary_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.ApproveSummary(context.Background(), "9b2f0c6e-4c3d-4a1b-8e7f-6a5b4c3d2e1f")
	assert.ErrorIs(t, err, attendance.ErrSummaryNotFound)

	_, err = f.service.ApproveSummary(context.Background(), "not-a-uuid")
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestListSummaries_Pagination(t *testing.T) {
	f := newFixture(t)
	var emps []employee.Employee
	for _, code := range []string{"E001", "E002", "E003"} {
		emps = append(emps, f.addEmployee(code))
	}
	f.generate(t, tuesday, emps...)

	list, err := f.service.ListSummaries(context.Background(), attendance.SummaryFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, list.TotalCount)
	assert.Equal(t, 2, list.TotalPages)
	assert.Equal(t, "3-3 of 3", list.Showing)
	require.Len(t, list.Summaries, 1)
	assert.Equal(t, "E003", *list.Summaries[0].EmployeeCode)

	month := "2024-07"
	empty, err := f.service.ListSummaries(context.Background(), attendance.SummaryFilter{Month: &month})
	require.NoError(t, err)
	assert.Equal(t, "0 of 0", empty.Showing)
}

func TestImportSessionLogs_CollectsFailures(t *testing.T) {
	f := newFixture(t)
	emp := f.addEmployee("E001")
	in := "2024-06-04T08:00:00Z"
	out := "2024-06-04T12:00:00Z"

	result, err := f.service.ImportSessionLogs(context.Background(), attendance.ImportSessionLogsRequest{
		Logs: []attendance.SessionLogInput{
			{EmployeeID: emp.ID, Date: "2024-06-04", Session: "morning", Status: "present", ActualClockIn: &in, ActualClockOut: &out},
			{EmployeeID: emp.ID, Date: "2024-06-04", Session: "night", Status: "present"},
			{EmployeeID: "9b2f0c6e-4c3d-4a1b-8e7f-6a5b4c3d2e1f", Date: "2024-06-04", Session: "morning", Status: "present"},
			{EmployeeID: emp.ID, Date: "2024-06-04", Session: "afternoon", Status: "absent"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	require.Len(t, result.Failed, 2)
	assert.Equal(t, 1, result.Failed[0].Index)
	assert.Contains(t, result.Failed[0].Details, "session")
	assert.Equal(t, 2, result.Failed[1].Index)
	assert.Equal(t, employee.ErrEmployeeNotFound.Error(), result.Failed[1].Error)

	summary := f.generate(t, tuesday, emp).Summaries[0]
	assert.Equal(t, "half_day", summary.Status)
	assert.True(t, summary.EarlyDeparture)
}
