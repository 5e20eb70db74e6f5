package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID               string
	EmployeeCode     string
	FullName         string
	DepartmentID     string
	SubDepartmentID  *string
	BaseSalary       *decimal.Decimal
	EmploymentType   EmploymentType
	EmploymentStatus EmploymentStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        *time.Time
}

type EmploymentType string

const (
	EmploymentTypePermanent  EmploymentType = "permanent"
	EmploymentTypeProbation  EmploymentType = "probation"
	EmploymentTypeContract   EmploymentType = "contract"
	EmploymentTypeInternship EmploymentType = "internship"
	EmploymentTypeFreelance  EmploymentType = "freelance"
)

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "active"
	EmploymentStatusResigned   EmploymentStatus = "resigned"
	EmploymentStatusTerminated EmploymentStatus = "terminated"
)

// EffectiveDepartmentID is the sub-department when assigned, else the main department.
func (e Employee) EffectiveDepartmentID() string {
	if e.SubDepartmentID != nil && *e.SubDepartmentID != "" {
		return *e.SubDepartmentID
	}
	return e.DepartmentID
}

func (e Employee) IsActive() bool {
	return e.DeletedAt == nil && e.EmploymentStatus == EmploymentStatusActive
}

// IsPayrollEligible reports whether a salary record is generated for the employee.
// Interns and employees without a configured base salary are excluded.
func (e Employee) IsPayrollEligible() bool {
	return e.IsActive() &&
		e.EmploymentType != EmploymentTypeInternship &&
		e.BaseSalary != nil
}

// Department is read for its payroll policy assignment only.
type Department struct {
	ID              string
	Name            string
	ParentID        *string
	PayrollPolicyID *string
}
