package response

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/auth"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/period"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth errors
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin privilege required")

	// Malformed path or query values
	case errors.Is(err, period.ErrInvalidDate):
		BadRequest(w, "Invalid date, expected YYYY-MM-DD", nil)
	case errors.Is(err, period.ErrInvalidMonth):
		BadRequest(w, "Invalid month, expected YYYY-MM", nil)

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrDepartmentNotFound):
		NotFound(w, "Department not found")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrSummaryNotFound):
		NotFound(w, "Attendance summary not found")
	case errors.Is(err, attendance.ErrAttendanceMonthFinalized):
		Conflict(w, "Attendance for this month is finalized")
	case errors.Is(err, attendance.ErrMonthNotFinalized):
		Conflict(w, "Attendance for this month is not finalized")

	// Payroll domain errors
	case errors.Is(err, payroll.ErrSalaryRecordNotFound):
		NotFound(w, "Salary record not found")
	case errors.Is(err, payroll.ErrSalaryAlreadyPaid):
		Conflict(w, "Salary record already paid")
	case errors.Is(err, payroll.ErrAttendanceNotFinalized):
		Conflict(w, "Attendance for this month must be finalized before generating payroll")
	case errors.Is(err, payroll.ErrDefaultPolicyMissing):
		Conflict(w, "No default payroll policy configured")
	case errors.Is(err, payroll.ErrDefaultPolicyAmbiguous):
		slog.Error("Payroll policy misconfiguration", "error", err)
		InternalServerError(w, "More than one default payroll policy configured")
	case errors.Is(err, payroll.ErrInvalidSalaryStatus):
		BadRequest(w, "Invalid salary status", nil)

	// Batch runs
	case errors.Is(err, context.DeadlineExceeded):
		GatewayTimeout(w, "Batch run timed out")

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
