package payroll

import "errors"

var (
	ErrDefaultPolicyMissing   = errors.New("no default payroll policy configured")
	ErrDefaultPolicyAmbiguous = errors.New("more than one default payroll policy configured")
	ErrAttendanceNotFinalized = errors.New("attendance for this month must be finalized before generating payroll")
	ErrSalaryRecordNotFound   = errors.New("salary record not found")
	ErrSalaryAlreadyPaid      = errors.New("salary record already paid")
	ErrInvalidSalaryStatus    = errors.New("invalid salary status")
)
