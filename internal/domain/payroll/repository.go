package payroll

import (
	"context"
	"time"
)

type PolicyRepository interface {
	// List returns every policy, default included.
	List(ctx context.Context) ([]Policy, error)
}

type OvertimeRepository interface {
	// GetApprovedByEmployeeAndMonth returns approved overtime dated inside the
	// month starting at monthStart.
	GetApprovedByEmployeeAndMonth(ctx context.Context, employeeID string, monthStart time.Time) ([]OvertimeLog, error)
}

type SalaryRepository interface {
	// Upsert creates or overwrites the record keyed by (employee, salary month).
	Upsert(ctx context.Context, record SalaryRecord) (SalaryRecord, error)

	GetByID(ctx context.Context, id string) (SalaryRecord, error)

	List(ctx context.Context, filter SalaryFilter) ([]SalaryRecord, int64, error)

	// Update writes the computed fields and status of an existing record.
	Update(ctx context.Context, record SalaryRecord) (SalaryRecord, error)
}
