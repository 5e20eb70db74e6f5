package attendance

import (
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/period"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

const maxImportBatch = 1000

// ========================================
// SUMMARY GENERATION DTOs
// ========================================

// GenerateSummariesRequest scopes a resolver run to one department or an
// explicit employee list, never both.
type GenerateSummariesRequest struct {
	Date         string   `json:"date"` // YYYY-MM-DD
	DepartmentID *string  `json:"department_id,omitempty"`
	EmployeeIDs  []string `json:"employee_ids,omitempty"`
}

func (r *GenerateSummariesRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Date) {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date is required",
		})
	} else if _, valid := validator.IsValidDate(r.Date); !valid {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	hasDepartment := r.DepartmentID != nil && !validator.IsEmpty(*r.DepartmentID)
	switch {
	case hasDepartment && len(r.EmployeeIDs) > 0:
		errs = append(errs, validator.ValidationError{
			Field:   "department_id",
			Message: "provide either department_id or employee_ids, not both",
		})
	case !hasDepartment && len(r.EmployeeIDs) == 0:
		errs = append(errs, validator.ValidationError{
			Field:   "employee_ids",
			Message: "department_id or employee_ids is required",
		})
	case hasDepartment && !validator.IsValidUUID(*r.DepartmentID):
		errs = append(errs, validator.ValidationError{
			Field:   "department_id",
			Message: "department_id must be a valid UUID",
		})
	}

	for i, id := range r.EmployeeIDs {
		if !validator.IsValidUUID(id) {
			errs = append(errs, validator.ValidationError{
				Field:   fmt.Sprintf("employee_ids[%d]", i),
				Message: "employee id must be a valid UUID",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type GenerateSummariesResponse struct {
	Date      string            `json:"date"`
	Count     int               `json:"count"`
	Summaries []SummaryResponse `json:"summaries"`
}

// ========================================
// APPROVAL DTOs
// ========================================

type ApproveSummariesRequest struct {
	Date         string `json:"date"`
	DepartmentID string `json:"department_id"`
}

func (r *ApproveSummariesRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, valid := validator.IsValidDate(r.Date); !valid {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}
	if !validator.IsValidUUID(r.DepartmentID) {
		errs = append(errs, validator.ValidationError{
			Field:   "department_id",
			Message: "department_id must be a valid UUID",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ApproveSummariesResponse struct {
	Date         string `json:"date"`
	DepartmentID string `json:"department_id"`
	Count        int64  `json:"count"`
}

// ========================================
// SUMMARY QUERY DTOs
// ========================================

type SummaryResponse struct {
	ID               string           `json:"id"`
	EmployeeID       string           `json:"employee_id"`
	EmployeeName     *string          `json:"employee_name,omitempty"`
	EmployeeCode     *string          `json:"employee_code,omitempty"`
	Date             string           `json:"date"`
	DepartmentID     string           `json:"department_id"`
	Status           string           `json:"status"`
	LateArrival      bool             `json:"late_arrival"`
	EarlyDeparture   bool             `json:"early_departure"`
	UnplannedAbsence bool             `json:"unplanned_absence"`
	TotalWorkHours   *decimal.Decimal `json:"total_work_hours"`
	Remarks          string           `json:"remarks"`
	ApprovalStatus   string           `json:"approval_status"`
	ApprovedAt       *string          `json:"approved_at,omitempty"`
	ApprovedBy       *string          `json:"approved_by,omitempty"`
	UpdatedAt        string           `json:"updated_at"`
}

type SummaryFilter struct {
	Date           *string `json:"date,omitempty"`  // YYYY-MM-DD
	Month          *string `json:"month,omitempty"` // YYYY-MM
	DepartmentID   *string `json:"department_id,omitempty"`
	EmployeeID     *string `json:"employee_id,omitempty"`
	Status         *string `json:"status,omitempty"`
	ApprovalStatus *string `json:"approval_status,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Resolved by Validate from Date or Month; inclusive.
	From *time.Time `json:"-"`
	To   *time.Time `json:"-"`
}

func (f *SummaryFilter) Validate() error {
	var errs validator.ValidationErrors

	// Page validation
	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1 // Default page
	}

	// Limit validation
	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20 // Default limit
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if f.Status != nil && !validator.IsInSlice(*f.Status, summaryStatuses) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: " + strings.Join(summaryStatuses, ", "),
		})
	}

	if f.ApprovalStatus != nil && *f.ApprovalStatus != string(ApprovalStatusPending) && *f.ApprovalStatus != string(ApprovalStatusApproved) {
		errs = append(errs, validator.ValidationError{
			Field:   "approval_status",
			Message: "approval_status must be one of: pending, approved",
		})
	}

	if f.Date != nil && f.Month != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "provide either date or month, not both",
		})
	} else if f.Date != nil {
		if d, err := period.ParseDate(*f.Date); err != nil {
			errs = append(errs, validator.ValidationError{
				Field:   "date",
				Message: "date must be in YYYY-MM-DD format",
			})
		} else {
			f.From, f.To = &d, &d
		}
	} else if f.Month != nil {
		if m, valid := validator.IsValidMonth(*f.Month); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "month",
				Message: "month must be in YYYY-MM format",
			})
		} else {
			end := period.MonthEnd(m)
			f.From, f.To = &m, &end
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ListSummaryResponse struct {
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
	Showing    string            `json:"showing"`
	Summaries  []SummaryResponse `json:"summaries"`
}

// ========================================
// MONTH CLOSURE DTOs
// ========================================

type MonthClosureResponse struct {
	Month       string  `json:"month"`
	Finalized   bool    `json:"finalized"`
	FinalizedAt *string `json:"finalized_at,omitempty"`
	FinalizedBy *string `json:"finalized_by,omitempty"`
}

// ========================================
// SESSION LOG IMPORT DTOs
// ========================================

type SessionLogInput struct {
	EmployeeID     string  `json:"employee_id"`
	Date           string  `json:"date"`    // YYYY-MM-DD
	Session        string  `json:"session"` // morning, afternoon, evening
	Status         string  `json:"status"`  // present, late, absent, permission
	ActualClockIn  *string `json:"actual_clock_in,omitempty"`
	ActualClockOut *string `json:"actual_clock_out,omitempty"`
}

// ToEntity validates the input and converts it into a SessionLog.
func (in SessionLogInput) ToEntity() (SessionLog, error) {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(in.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id must be a valid UUID"})
	}
	date, err := period.ParseDate(in.Date)
	if err != nil {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "date must be in YYYY-MM-DD format"})
	}
	if !Session(in.Session).Valid() {
		errs = append(errs, validator.ValidationError{Field: "session", Message: "session must be one of: morning, afternoon, evening"})
	}
	if !SessionStatus(in.Status).Valid() {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "status must be one of: present, late, absent, permission"})
	}

	clockIn := parseClock(in.ActualClockIn, "actual_clock_in", &errs)
	clockOut := parseClock(in.ActualClockOut, "actual_clock_out", &errs)
	if clockIn != nil && clockOut != nil && clockOut.Before(*clockIn) {
		errs = append(errs, validator.ValidationError{Field: "actual_clock_out", Message: "actual_clock_out must not be before actual_clock_in"})
	}

	if len(errs) > 0 {
		return SessionLog{}, errs
	}

	return SessionLog{
		EmployeeID:     in.EmployeeID,
		Date:           date,
		Session:        Session(in.Session),
		Status:         SessionStatus(in.Status),
		ActualClockIn:  clockIn,
		ActualClockOut: clockOut,
	}, nil
}

func parseClock(value *string, field string, errs *validator.ValidationErrors) *time.Time {
	if value == nil || validator.IsEmpty(*value) {
		return nil
	}
	t, valid := validator.IsValidDateTime(*value)
	if !valid {
		*errs = append(*errs, validator.ValidationError{Field: field, Message: field + " must be an ISO8601 timestamp"})
		return nil
	}
	t = t.UTC()
	return &t
}

type ImportSessionLogsRequest struct {
	Logs []SessionLogInput `json:"logs"`
}

func (r *ImportSessionLogsRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.Logs) == 0 {
		errs = append(errs, validator.ValidationError{Field: "logs", Message: "at least one log is required"})
	}
	if len(r.Logs) > maxImportBatch {
		errs = append(errs, validator.ValidationError{Field: "logs", Message: fmt.Sprintf("at most %d logs per request", maxImportBatch)})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ImportFailure struct {
	Index      int               `json:"index"`
	EmployeeID string            `json:"employee_id"`
	Error      string            `json:"error"`
	Details    map[string]string `json:"details,omitempty"`
}

type BulkImportResult struct {
	Created int             `json:"created"`
	Failed  []ImportFailure `json:"failed"`
}
