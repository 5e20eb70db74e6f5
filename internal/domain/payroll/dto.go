package payroll

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== POLICY DTOs ==========

type PolicyResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Weekday1  decimal.Decimal `json:"weekday1"`
	Weekday2  decimal.Decimal `json:"weekday2"`
	Sleepover decimal.Decimal `json:"sleepover"`
	Sunday    decimal.Decimal `json:"sunday"`
	Holiday   decimal.Decimal `json:"holiday"`
	IsDefault bool            `json:"is_default"`
}

// ========== SALARY DTOs ==========

type GenerateSalariesRequest struct {
	Month *string `json:"month,omitempty"` // YYYY-MM, empty = current month
}

func (r *GenerateSalariesRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Month != nil && !validator.IsEmpty(*r.Month) {
		if _, valid := validator.IsValidMonth(*r.Month); !valid {
			errs = append(errs, validator.ValidationError{Field: "month", Message: "month must be in YYYY-MM format"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type GenerateSalariesResponse struct {
	Month   string `json:"month"`
	Count   int    `json:"count"`
	Message string `json:"message"`
}

type EditSalaryRequest struct {
	ID            string           `json:"-"`
	Status        *string          `json:"status,omitempty"`
	OvertimeHours *decimal.Decimal `json:"overtime_hours,omitempty"`
	AbsentDays    *int             `json:"absent_days,omitempty"`
}

func (r *EditSalaryRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Status == nil && r.OvertimeHours == nil && r.AbsentDays == nil {
		errs = append(errs, validator.ValidationError{Field: "body", Message: "at least one of status, overtime_hours, absent_days is required"})
	}
	if r.Status != nil && !SalaryStatus(*r.Status).Valid() {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "status must be one of: pending, paid, unpaid"})
	}
	if r.OvertimeHours != nil && r.OvertimeHours.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "overtime_hours", Message: "must be non-negative"})
	}
	if r.AbsentDays != nil && (*r.AbsentDays < 0 || *r.AbsentDays > 31) {
		errs = append(errs, validator.ValidationError{Field: "absent_days", Message: "must be between 0 and 31"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SalaryResponse struct {
	ID            string          `json:"id"`
	EmployeeID    string          `json:"employee_id"`
	EmployeeName  *string         `json:"employee_name,omitempty"`
	EmployeeCode  *string         `json:"employee_code,omitempty"`
	SalaryMonth   string          `json:"salary_month"`
	BaseSalary    decimal.Decimal `json:"base_salary"`
	AbsentDays    int             `json:"absent_days"`
	Deductions    decimal.Decimal `json:"deductions"`
	OvertimeHours decimal.Decimal `json:"overtime_hours"`
	OvertimePay   decimal.Decimal `json:"overtime_pay"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	PaidAt        *string         `json:"paid_at,omitempty"`
	UpdatedAt     string          `json:"updated_at"`
}

type SalaryFilter struct {
	Month      *string `json:"month,omitempty"` // YYYY-MM
	Status     *string `json:"status,omitempty"`
	EmployeeID *string `json:"employee_id,omitempty"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`

	// Resolved by Validate from Month.
	MonthStart *time.Time `json:"-"`
}

func (f *SalaryFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{Field: "page", Message: "page must be a positive number"})
	}
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{Field: "limit", Message: "limit must be a positive number"})
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{Field: "limit", Message: "limit must not exceed 100"})
	}

	if f.Status != nil && !SalaryStatus(*f.Status).Valid() {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "status must be one of: pending, paid, unpaid"})
	}
	if f.Month != nil {
		if m, valid := validator.IsValidMonth(*f.Month); !valid {
			errs = append(errs, validator.ValidationError{Field: "month", Message: "month must be in YYYY-MM format"})
		} else {
			f.MonthStart = &m
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ListSalaryResponse struct {
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
	Showing    string           `json:"showing"`
	Salaries   []SalaryResponse `json:"salaries"`
}
