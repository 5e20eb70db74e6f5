package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/period"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/runner"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/validator"
)

type AttendanceServiceImpl struct {
	tx     database.Transactor
	runner *runner.Runner

	employeeRepo   employee.EmployeeRepository
	leaveRepo      leave.LeaveRequestRepository
	holidayRepo    holiday.HolidayRepository
	sessionLogRepo attendance.SessionLogRepository
	summaryRepo    attendance.SummaryRepository
	closureRepo    attendance.MonthClosureRepository

	now func() time.Time
}

func NewAttendanceService(
	tx database.Transactor,
	batchRunner *runner.Runner,
	employeeRepo employee.EmployeeRepository,
	leaveRepo leave.LeaveRequestRepository,
	holidayRepo holiday.HolidayRepository,
	sessionLogRepo attendance.SessionLogRepository,
	summaryRepo attendance.SummaryRepository,
	closureRepo attendance.MonthClosureRepository,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		tx:             tx,
		runner:         batchRunner,
		employeeRepo:   employeeRepo,
		leaveRepo:      leaveRepo,
		holidayRepo:    holidayRepo,
		sessionLogRepo: sessionLogRepo,
		summaryRepo:    summaryRepo,
		closureRepo:    closureRepo,
		now:            time.Now,
	}
}

// timePtrToString safely converts a *time.Time to an RFC3339 string.
func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.UTC().Format(time.RFC3339)
	return &format
}

func mapSummaryToResponse(s attendance.Summary) attendance.SummaryResponse {
	return attendance.SummaryResponse{
		ID:               s.ID,
		EmployeeID:       s.EmployeeID,
		EmployeeName:     s.EmployeeName,
		EmployeeCode:     s.EmployeeCode,
		Date:             period.FormatDate(s.Date),
		DepartmentID:     s.DepartmentID,
		Status:           string(s.Status),
		LateArrival:      s.LateArrival,
		EarlyDeparture:   s.EarlyDeparture,
		UnplannedAbsence: s.UnplannedAbsence,
		TotalWorkHours:   s.TotalWorkHours,
		Remarks:          s.Remarks,
		ApprovalStatus:   string(s.ApprovalStatus),
		ApprovedAt:       timePtrToString(s.ApprovedAt),
		ApprovedBy:       s.ApprovedBy,
		UpdatedAt:        s.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// GenerateSummaries implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GenerateSummaries(ctx context.Context, req attendance.GenerateSummariesRequest) (attendance.GenerateSummariesResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.GenerateSummariesResponse{}, err
	}

	date, err := period.ParseDate(req.Date)
	if err != nil {
		return attendance.GenerateSummariesResponse{}, err
	}
	if err := s.ensureMonthOpen(ctx, date); err != nil {
		return attendance.GenerateSummariesResponse{}, err
	}

	var (
		employees []employee.Employee
		scope     string
	)
	if req.DepartmentID != nil && *req.DepartmentID != "" {
		scope = "department:" + *req.DepartmentID
		employees, err = s.employeeRepo.GetActiveByDepartment(ctx, *req.DepartmentID)
	} else {
		ids := append([]string(nil), req.EmployeeIDs...)
		sort.Strings(ids)
		scope = "employees:" + strings.Join(ids, ",")
		employees, err = s.employeeRepo.GetByIDs(ctx, ids)
	}
	if err != nil {
		return attendance.GenerateSummariesResponse{}, fmt.Errorf("failed to load employees: %w", err)
	}

	summaries, err := s.resolve(ctx, date, scope, employees)
	if err != nil {
		return attendance.GenerateSummariesResponse{}, err
	}

	responses := make([]attendance.SummaryResponse, 0, len(summaries))
	for _, summary := range summaries {
		responses = append(responses, mapSummaryToResponse(summary))
	}

	return attendance.GenerateSummariesResponse{
		Date:      period.FormatDate(date),
		Count:     len(responses),
		Summaries: responses,
	}, nil
}

// ResolveAllActive implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ResolveAllActive(ctx context.Context, date time.Time) (int, error) {
	date = period.Day(date)
	if err := s.ensureMonthOpen(ctx, date); err != nil {
		return 0, err
	}

	employees, err := s.employeeRepo.GetActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load active employees: %w", err)
	}

	summaries, err := s.resolve(ctx, date, "all", employees)
	if err != nil {
		return 0, err
	}
	return len(summaries), nil
}

func (s *AttendanceServiceImpl) ensureMonthOpen(ctx context.Context, date time.Time) error {
	closure, err := s.closureRepo.Get(ctx, period.MonthStart(date))
	if err != nil {
		return fmt.Errorf("failed to check month closure: %w", err)
	}
	if closure != nil {
		return attendance.ErrAttendanceMonthFinalized
	}
	return nil
}

// resolve classifies every employee for date and upserts all summaries in one
// transaction. Concurrent calls for the same date and scope share one run.
func (s *AttendanceServiceImpl) resolve(ctx context.Context, date time.Time, scope string, employees []employee.Employee) ([]attendance.Summary, error) {
	key := runner.AttendanceKey(date) + "/" + scope

	return runner.Run(ctx, s.runner, key, func(ctx context.Context) ([]attendance.Summary, error) {
		start := s.now()
		slog.Info("Resolving attendance summaries", "date", period.FormatDate(date), "scope", scope, "employees", len(employees))

		hol, err := s.holidayRepo.GetByDate(ctx, date)
		if err != nil {
			return nil, fmt.Errorf("failed to load holiday: %w", err)
		}

		resolutions := make([]attendance.Resolution, len(employees))
		err = s.runner.ForEach(ctx, len(employees), func(ctx context.Context, i int) error {
			emp := employees[i]

			approvedLeave, err := s.leaveRepo.GetApprovedCovering(ctx, emp.ID, date)
			if err != nil {
				return fmt.Errorf("failed to load leave for employee %s: %w", emp.ID, err)
			}
			logs, err := s.sessionLogRepo.GetByEmployeeAndDate(ctx, emp.ID, date)
			if err != nil {
				return fmt.Errorf("failed to load session logs for employee %s: %w", emp.ID, err)
			}

			resolutions[i] = attendance.ResolveDay(attendance.DayContext{
				Date:    date,
				Leave:   approvedLeave,
				Holiday: hol,
				Logs:    logs,
			})
			return nil
		})
		if err != nil {
			return nil, err
		}

		summaries := make([]attendance.Summary, len(employees))
		err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
			for i, emp := range employees {
				res := resolutions[i]
				saved, err := s.summaryRepo.Upsert(txCtx, attendance.Summary{
					EmployeeID:       emp.ID,
					Date:             date,
					DepartmentID:     emp.EffectiveDepartmentID(),
					Status:           res.Status,
					LateArrival:      res.LateArrival,
					EarlyDeparture:   res.EarlyDeparture,
					UnplannedAbsence: res.UnplannedAbsence,
					TotalWorkHours:   res.TotalWorkHours,
					Remarks:          res.Remarks,
				})
				if err != nil {
					return err
				}
				name, code := emp.FullName, emp.EmployeeCode
				saved.EmployeeName, saved.EmployeeCode = &name, &code
				summaries[i] = saved
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to save attendance summaries: %w", err)
		}

		slog.Info("Resolved attendance summaries",
			"date", period.FormatDate(date),
			"scope", scope,
			"employees", len(employees),
			"duration", time.Since(start),
		)
		return summaries, nil
	})
}

// ApproveSummaries implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ApproveSummaries(ctx context.Context, req attendance.ApproveSummariesRequest) (attendance.ApproveSummariesResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.ApproveSummariesResponse{}, err
	}

	date, err := period.ParseDate(req.Date)
	if err != nil {
		return attendance.ApproveSummariesResponse{}, err
	}

	count, err := s.summaryRepo.ApproveByDateAndDepartment(ctx, date, req.DepartmentID, jwt.ActorFromContext(ctx), s.now().UTC())
	if err != nil {
		return attendance.ApproveSummariesResponse{}, fmt.Errorf("failed to approve summaries: %w", err)
	}

	slog.Info("Approved attendance summaries", "date", req.Date, "department_id", req.DepartmentID, "count", count)

	return attendance.ApproveSummariesResponse{
		Date:         period.FormatDate(date),
		DepartmentID: req.DepartmentID,
		Count:        count,
	}, nil
}

// ApproveSummary implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ApproveSummary(ctx context.Context, id string) (attendance.SummaryResponse, error) {
	if !validator.IsValidUUID(id) {
		return attendance.SummaryResponse{}, validator.ValidationErrors{
			{Field: "id", Message: "id must be a valid UUID"},
		}
	}

	if _, err := s.summaryRepo.Approve(ctx, id, jwt.ActorFromContext(ctx), s.now().UTC()); err != nil {
		if errors.Is(err, attendance.ErrSummaryNotFound) {
			return attendance.SummaryResponse{}, err
		}
		return attendance.SummaryResponse{}, fmt.Errorf("failed to approve summary: %w", err)
	}

	approved, err := s.summaryRepo.GetByID(ctx, id)
	if err != nil {
		return attendance.SummaryResponse{}, fmt.Errorf("failed to reload summary: %w", err)
	}
	return mapSummaryToResponse(approved), nil
}

// ListSummaries implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListSummaries(ctx context.Context, filter attendance.SummaryFilter) (attendance.ListSummaryResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListSummaryResponse{}, err
	}

	summaries, total, err := s.summaryRepo.List(ctx, filter)
	if err != nil {
		return attendance.ListSummaryResponse{}, fmt.Errorf("failed to list summaries: %w", err)
	}

	responses := make([]attendance.SummaryResponse, 0, len(summaries))
	for _, summary := range summaries {
		responses = append(responses, mapSummaryToResponse(summary))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min(filter.Page*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return attendance.ListSummaryResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Showing:    showing,
		Summaries:  responses,
	}, nil
}

func parseMonth(month string) (time.Time, error) {
	m, valid := validator.IsValidMonth(month)
	if !valid {
		return time.Time{}, validator.ValidationErrors{
			{Field: "month", Message: "month must be in YYYY-MM format"},
		}
	}
	return m, nil
}

// FinalizeMonth implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) FinalizeMonth(ctx context.Context, month string) (attendance.MonthClosureResponse, error) {
	m, err := parseMonth(month)
	if err != nil {
		return attendance.MonthClosureResponse{}, err
	}

	closure, err := s.closureRepo.Finalize(ctx, attendance.MonthClosure{
		Month:       m,
		FinalizedBy: jwt.ActorFromContext(ctx),
		FinalizedAt: s.now().UTC(),
	})
	if err != nil {
		return attendance.MonthClosureResponse{}, fmt.Errorf("failed to finalize month: %w", err)
	}

	slog.Info("Finalized attendance month", "month", period.FormatMonth(m))

	return attendance.MonthClosureResponse{
		Month:       period.FormatMonth(closure.Month),
		Finalized:   true,
		FinalizedAt: timePtrToString(&closure.FinalizedAt),
		FinalizedBy: closure.FinalizedBy,
	}, nil
}

// ReopenMonth implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ReopenMonth(ctx context.Context, month string) (attendance.MonthClosureResponse, error) {
	m, err := parseMonth(month)
	if err != nil {
		return attendance.MonthClosureResponse{}, err
	}

	if err := s.closureRepo.Reopen(ctx, m); err != nil {
		if errors.Is(err, attendance.ErrMonthNotFinalized) {
			return attendance.MonthClosureResponse{}, err
		}
		return attendance.MonthClosureResponse{}, fmt.Errorf("failed to reopen month: %w", err)
	}

	slog.Info("Reopened attendance month", "month", period.FormatMonth(m))

	return attendance.MonthClosureResponse{
		Month:     period.FormatMonth(m),
		Finalized: false,
	}, nil
}

// IsMonthFinalized implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) IsMonthFinalized(ctx context.Context, monthStart time.Time) (bool, error) {
	closure, err := s.closureRepo.Get(ctx, period.MonthStart(monthStart))
	if err != nil {
		return false, fmt.Errorf("failed to check month closure: %w", err)
	}
	return closure != nil, nil
}

// ImportSessionLogs implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ImportSessionLogs(ctx context.Context, req attendance.ImportSessionLogsRequest) (attendance.BulkImportResult, error) {
	if err := req.Validate(); err != nil {
		return attendance.BulkImportResult{}, err
	}

	result := attendance.BulkImportResult{Failed: []attendance.ImportFailure{}}

	entities := make([]*attendance.SessionLog, len(req.Logs))
	var ids []string
	for i, in := range req.Logs {
		log, err := in.ToEntity()
		if err != nil {
			result.Failed = append(result.Failed, importFailure(i, in.EmployeeID, err))
			continue
		}
		entities[i] = &log
		ids = append(ids, log.EmployeeID)
	}

	known := make(map[string]bool)
	if len(ids) > 0 {
		employees, err := s.employeeRepo.GetByIDs(ctx, ids)
		if err != nil {
			return attendance.BulkImportResult{}, fmt.Errorf("failed to load employees: %w", err)
		}
		for _, emp := range employees {
			known[emp.ID] = true
		}
	}

	for i, log := range entities {
		if log == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return attendance.BulkImportResult{}, err
		}
		if !known[log.EmployeeID] {
			result.Failed = append(result.Failed, importFailure(i, log.EmployeeID, employee.ErrEmployeeNotFound))
			continue
		}
		if _, err := s.sessionLogRepo.Upsert(ctx, *log); err != nil {
			slog.Warn("Failed to import session log", "index", i, "employee_id", log.EmployeeID, "error", err)
			result.Failed = append(result.Failed, importFailure(i, log.EmployeeID, err))
			continue
		}
		result.Created++
	}

	sort.Slice(result.Failed, func(a, b int) bool { return result.Failed[a].Index < result.Failed[b].Index })

	slog.Info("Imported session logs", "created", result.Created, "failed", len(result.Failed))
	return result, nil
}

func importFailure(index int, employeeID string, err error) attendance.ImportFailure {
	failure := attendance.ImportFailure{
		Index:      index,
		EmployeeID: employeeID,
		Error:      err.Error(),
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		failure.Error = "validation failed"
		failure.Details = verrs.ToMap()
	}
	return failure
}
