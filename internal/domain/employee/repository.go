package employee

import "context"

// EmployeeRepository is the read-only employee directory used by the batches.
// Employee and department CRUD live in the administrative service.
type EmployeeRepository interface {
	// GetByIDs returns the employees that exist among ids. Unknown ids are
	// omitted rather than reported.
	GetByIDs(ctx context.Context, ids []string) ([]Employee, error)

	GetByID(ctx context.Context, id string) (Employee, error)

	// GetActive returns every active, non-deleted employee.
	GetActive(ctx context.Context) ([]Employee, error)

	// GetActiveByDepartment matches on the main or the sub-department.
	GetActiveByDepartment(ctx context.Context, departmentID string) ([]Employee, error)

	// GetDepartmentPolicyIDs maps department id to its assigned payroll policy id.
	// Departments without an assignment are absent from the map.
	GetDepartmentPolicyIDs(ctx context.Context) (map[string]string, error)
}
