package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/config"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/payslip"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/period"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/runner"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/validator"
)

type PayrollServiceImpl struct {
	tx     database.Transactor
	runner *runner.Runner
	cfg    config.PayrollConfig

	attendanceService attendance.AttendanceService

	employeeRepo employee.EmployeeRepository
	summaryRepo  attendance.SummaryRepository
	holidayRepo  holiday.HolidayRepository
	policyRepo   payroll.PolicyRepository
	overtimeRepo payroll.OvertimeRepository
	salaryRepo   payroll.SalaryRepository

	now func() time.Time
}

func NewPayrollService(
	tx database.Transactor,
	batchRunner *runner.Runner,
	cfg config.PayrollConfig,
	attendanceService attendance.AttendanceService,
	employeeRepo employee.EmployeeRepository,
	summaryRepo attendance.SummaryRepository,
	holidayRepo holiday.HolidayRepository,
	policyRepo payroll.PolicyRepository,
	overtimeRepo payroll.OvertimeRepository,
	salaryRepo payroll.SalaryRepository,
) payroll.PayrollService {
	return &PayrollServiceImpl{
		tx:                tx,
		runner:            batchRunner,
		cfg:               cfg,
		attendanceService: attendanceService,
		employeeRepo:      employeeRepo,
		summaryRepo:       summaryRepo,
		holidayRepo:       holidayRepo,
		policyRepo:        policyRepo,
		overtimeRepo:      overtimeRepo,
		salaryRepo:        salaryRepo,
		now:               time.Now,
	}
}

func (s *PayrollServiceImpl) features() payroll.MultiplierFeatures {
	return payroll.MultiplierFeatures{HolidayMultiplier: s.cfg.HolidayMultiplierEnabled}
}

// policySet is the policy table loaded once per run.
type policySet struct {
	defaultPolicy payroll.Policy
	byID          map[string]payroll.Policy
	byDepartment  map[string]string
}

func (s *PayrollServiceImpl) loadPolicies(ctx context.Context) (policySet, error) {
	policies, err := s.policyRepo.List(ctx)
	if err != nil {
		return policySet{}, fmt.Errorf("failed to load payroll policies: %w", err)
	}

	set := policySet{byID: make(map[string]payroll.Policy, len(policies))}
	defaults := 0
	for _, p := range policies {
		set.byID[p.ID] = p
		if p.IsDefault {
			set.defaultPolicy = p
			defaults++
		}
	}
	switch {
	case defaults == 0:
		return policySet{}, payroll.ErrDefaultPolicyMissing
	case defaults > 1:
		return policySet{}, payroll.ErrDefaultPolicyAmbiguous
	}

	set.byDepartment, err = s.employeeRepo.GetDepartmentPolicyIDs(ctx)
	if err != nil {
		return policySet{}, fmt.Errorf("failed to load department policies: %w", err)
	}
	return set, nil
}

// forEmployee walks effective department, then main department, then the default.
func (ps policySet) forEmployee(emp employee.Employee) payroll.Policy {
	for _, departmentID := range []string{emp.EffectiveDepartmentID(), emp.DepartmentID} {
		if policyID, ok := ps.byDepartment[departmentID]; ok {
			if p, ok := ps.byID[policyID]; ok {
				return p
			}
		}
	}
	return ps.defaultPolicy
}

func (s *PayrollServiceImpl) loadHolidays(ctx context.Context, month time.Time) (map[string]bool, error) {
	if !s.cfg.HolidayMultiplierEnabled {
		return nil, nil
	}
	holidays, err := s.holidayRepo.GetByMonth(ctx, month)
	if err != nil {
		return nil, fmt.Errorf("failed to load holidays: %w", err)
	}
	dates := make(map[string]bool, len(holidays))
	for _, h := range holidays {
		dates[period.FormatDate(h.Date)] = true
	}
	return dates, nil
}

// GenerateSalaries implements payroll.PayrollService.
func (s *PayrollServiceImpl) GenerateSalaries(ctx context.Context, req payroll.GenerateSalariesRequest) (payroll.GenerateSalariesResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.GenerateSalariesResponse{}, err
	}

	month := period.MonthStart(s.now().UTC())
	if req.Month != nil && !validator.IsEmpty(*req.Month) {
		m, err := period.ParseMonth(*req.Month)
		if err != nil {
			return payroll.GenerateSalariesResponse{}, err
		}
		month = m
	}

	if s.cfg.RequireFinalizedAttendance {
		finalized, err := s.attendanceService.IsMonthFinalized(ctx, month)
		if err != nil {
			return payroll.GenerateSalariesResponse{}, err
		}
		if !finalized {
			return payroll.GenerateSalariesResponse{}, payroll.ErrAttendanceNotFinalized
		}
	}

	count, err := runner.Run(ctx, s.runner, runner.PayrollKey(month), func(ctx context.Context) (int, error) {
		return s.generate(ctx, month)
	})
	if err != nil {
		return payroll.GenerateSalariesResponse{}, err
	}

	return payroll.GenerateSalariesResponse{
		Month:   period.FormatMonth(month),
		Count:   count,
		Message: fmt.Sprintf("generated %d salary records for %s", count, period.FormatMonth(month)),
	}, nil
}

func (s *PayrollServiceImpl) generate(ctx context.Context, month time.Time) (int, error) {
	start := s.now()

	policies, err := s.loadPolicies(ctx)
	if err != nil {
		return 0, err
	}
	holidays, err := s.loadHolidays(ctx, month)
	if err != nil {
		return 0, err
	}

	active, err := s.employeeRepo.GetActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load active employees: %w", err)
	}
	var employees []employee.Employee
	for _, emp := range active {
		if emp.IsPayrollEligible() {
			employees = append(employees, emp)
		}
	}

	slog.Info("Generating salaries", "month", period.FormatMonth(month), "employees", len(employees))

	records := make([]payroll.SalaryRecord, len(employees))
	err = s.runner.ForEach(ctx, len(employees), func(ctx context.Context, i int) error {
		emp := employees[i]

		absentDays, err := s.summaryRepo.CountAbsentInMonth(ctx, emp.ID, month)
		if err != nil {
			return fmt.Errorf("failed to count absent days for employee %s: %w", emp.ID, err)
		}
		overtime, err := s.overtimeRepo.GetApprovedByEmployeeAndMonth(ctx, emp.ID, month)
		if err != nil {
			return fmt.Errorf("failed to load overtime for employee %s: %w", emp.ID, err)
		}

		c := payroll.ComputeSalary(payroll.SalaryInput{
			BaseSalary: *emp.BaseSalary,
			AbsentDays: absentDays,
			Overtime:   overtime,
			Policy:     policies.forEmployee(emp),
			Features:   s.features(),
			Holidays:   holidays,
		})
		records[i] = payroll.SalaryRecord{
			EmployeeID:    emp.ID,
			SalaryMonth:   month,
			BaseSalary:    c.BaseSalary,
			AbsentDays:    c.AbsentDays,
			Deductions:    c.Deductions,
			OvertimeHours: c.OvertimeHours,
			OvertimePay:   c.OvertimePay,
			Amount:        c.Amount,
			Status:        payroll.SalaryStatusPending,
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		for _, record := range records {
			if _, err := s.salaryRepo.Upsert(txCtx, record); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to save salary records: %w", err)
	}

	slog.Info("Generated salaries",
		"month", period.FormatMonth(month),
		"employees", len(records),
		"duration", time.Since(start),
	)
	return len(records), nil
}

func validateID(id string) error {
	if !validator.IsValidUUID(id) {
		return validator.ValidationErrors{{Field: "id", Message: "id must be a valid UUID"}}
	}
	return nil
}

// EditSalary implements payroll.PayrollService.
func (s *PayrollServiceImpl) EditSalary(ctx context.Context, req payroll.EditSalaryRequest) (payroll.SalaryResponse, error) {
	if err := validateID(req.ID); err != nil {
		return payroll.SalaryResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return payroll.SalaryResponse{}, err
	}

	prev, err := s.salaryRepo.GetByID(ctx, req.ID)
	if err != nil {
		return payroll.SalaryResponse{}, err
	}

	updated, err := s.salaryRepo.Update(ctx, payroll.Recalculate(prev, req, s.now().UTC()))
	if err != nil {
		return payroll.SalaryResponse{}, fmt.Errorf("failed to update salary record: %w", err)
	}

	slog.Info("Edited salary record", "id", updated.ID, "status", updated.Status, "amount", updated.Amount.String())
	return mapSalaryToResponse(updated), nil
}

// MarkPaid implements payroll.PayrollService.
func (s *PayrollServiceImpl) MarkPaid(ctx context.Context, id string) (payroll.SalaryResponse, error) {
	if err := validateID(id); err != nil {
		return payroll.SalaryResponse{}, err
	}

	prev, err := s.salaryRepo.GetByID(ctx, id)
	if err != nil {
		return payroll.SalaryResponse{}, err
	}
	if prev.Status == payroll.SalaryStatusPaid {
		return payroll.SalaryResponse{}, payroll.ErrSalaryAlreadyPaid
	}

	paid := string(payroll.SalaryStatusPaid)
	updated, err := s.salaryRepo.Update(ctx, payroll.Recalculate(prev, payroll.EditSalaryRequest{Status: &paid}, s.now().UTC()))
	if err != nil {
		return payroll.SalaryResponse{}, fmt.Errorf("failed to mark salary record paid: %w", err)
	}
	return mapSalaryToResponse(updated), nil
}

// GetSalary implements payroll.PayrollService.
func (s *PayrollServiceImpl) GetSalary(ctx context.Context, id string) (payroll.SalaryResponse, error) {
	if err := validateID(id); err != nil {
		return payroll.SalaryResponse{}, err
	}

	record, err := s.salaryRepo.GetByID(ctx, id)
	if err != nil {
		return payroll.SalaryResponse{}, err
	}
	return mapSalaryToResponse(record), nil
}

// ListSalaries implements payroll.PayrollService.
func (s *PayrollServiceImpl) ListSalaries(ctx context.Context, filter payroll.SalaryFilter) (payroll.ListSalaryResponse, error) {
	if err := filter.Validate(); err != nil {
		return payroll.ListSalaryResponse{}, err
	}

	records, total, err := s.salaryRepo.List(ctx, filter)
	if err != nil {
		return payroll.ListSalaryResponse{}, fmt.Errorf("failed to list salary records: %w", err)
	}

	responses := make([]payroll.SalaryResponse, 0, len(records))
	for _, r := range records {
		responses = append(responses, mapSalaryToResponse(r))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min(filter.Page*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return payroll.ListSalaryResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Showing:    showing,
		Salaries:   responses,
	}, nil
}

// ListPolicies implements payroll.PayrollService.
func (s *PayrollServiceImpl) ListPolicies(ctx context.Context) ([]payroll.PolicyResponse, error) {
	policies, err := s.policyRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll policies: %w", err)
	}

	responses := make([]payroll.PolicyResponse, 0, len(policies))
	for _, p := range policies {
		responses = append(responses, payroll.PolicyResponse{
			ID:        p.ID,
			Name:      p.Name,
			Weekday1:  p.Weekday1,
			Weekday2:  p.Weekday2,
			Sleepover: p.Sleepover,
			Sunday:    p.Sunday,
			Holiday:   p.Holiday,
			IsDefault: p.IsDefault,
		})
	}
	return responses, nil
}

// RenderSalarySlip implements payroll.PayrollService. Totals come from the
// stored record; the overtime breakdown is re-scored against the current policy.
func (s *PayrollServiceImpl) RenderSalarySlip(ctx context.Context, id string) ([]byte, string, error) {
	if err := validateID(id); err != nil {
		return nil, "", err
	}

	record, err := s.salaryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	emp, err := s.employeeRepo.GetByID(ctx, record.EmployeeID)
	if err != nil && !errors.Is(err, employee.ErrEmployeeNotFound) {
		return nil, "", fmt.Errorf("failed to load employee: %w", err)
	}

	policies, err := s.loadPolicies(ctx)
	if err != nil {
		return nil, "", err
	}
	holidays, err := s.loadHolidays(ctx, record.SalaryMonth)
	if err != nil {
		return nil, "", err
	}
	overtime, err := s.overtimeRepo.GetApprovedByEmployeeAndMonth(ctx, record.EmployeeID, record.SalaryMonth)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load overtime: %w", err)
	}

	policy := policies.forEmployee(emp)
	c := payroll.ComputeSalary(payroll.SalaryInput{
		BaseSalary: record.BaseSalary,
		Overtime:   overtime,
		Policy:     policy,
		Features:   s.features(),
		Holidays:   holidays,
	})

	slip := payslip.Slip{
		EmployeeName:  emp.FullName,
		EmployeeCode:  emp.EmployeeCode,
		SalaryMonth:   record.SalaryMonth,
		BaseSalary:    record.BaseSalary,
		AbsentDays:    record.AbsentDays,
		Deductions:    record.Deductions,
		OvertimeHours: record.OvertimeHours,
		OvertimePay:   record.OvertimePay,
		Amount:        record.Amount,
		Status:        string(record.Status),
		PaidAt:        record.PaidAt,
		PolicyName:    policy.Name,
		GeneratedAt:   s.now().UTC(),
	}
	if record.EmployeeName != nil {
		slip.EmployeeName = *record.EmployeeName
	}
	if record.EmployeeCode != nil {
		slip.EmployeeCode = *record.EmployeeCode
	}
	for _, line := range c.Lines {
		slip.Overtime = append(slip.Overtime, payslip.OvertimeLine{
			Date:       line.Date,
			StartTime:  line.StartTime.Format("15:04"),
			Hours:      line.Hours,
			Rate:       string(line.Rate),
			Multiplier: line.Multiplier,
			Pay:        line.Pay,
		})
	}

	pdf, err := payslip.Render(slip)
	if err != nil {
		return nil, "", fmt.Errorf("failed to render salary slip: %w", err)
	}
	return pdf, payslip.FileName(slip.EmployeeCode, record.SalaryMonth), nil
}

func mapSalaryToResponse(r payroll.SalaryRecord) payroll.SalaryResponse {
	var paidAt *string
	if r.PaidAt != nil {
		formatted := r.PaidAt.UTC().Format(time.RFC3339)
		paidAt = &formatted
	}
	return payroll.SalaryResponse{
		ID:            r.ID,
		EmployeeID:    r.EmployeeID,
		EmployeeName:  r.EmployeeName,
		EmployeeCode:  r.EmployeeCode,
		SalaryMonth:   period.FormatMonth(r.SalaryMonth),
		BaseSalary:    r.BaseSalary,
		AbsentDays:    r.AbsentDays,
		Deductions:    r.Deductions,
		OvertimeHours: r.OvertimeHours,
		OvertimePay:   r.OvertimePay,
		Amount:        r.Amount,
		Status:        string(r.Status),
		PaidAt:        paidAt,
		UpdatedAt:     r.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
