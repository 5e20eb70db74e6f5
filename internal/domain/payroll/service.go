package payroll

import "context"

// PayrollService generates and maintains monthly salary records.
type PayrollService interface {
	GenerateSalaries(ctx context.Context, req GenerateSalariesRequest) (GenerateSalariesResponse, error)

	// EditSalary adjusts a record using its previous average overtime rate
	// instead of re-scoring overtime against the policy.
	EditSalary(ctx context.Context, req EditSalaryRequest) (SalaryResponse, error)

	MarkPaid(ctx context.Context, id string) (SalaryResponse, error)
	GetSalary(ctx context.Context, id string) (SalaryResponse, error)
	ListSalaries(ctx context.Context, filter SalaryFilter) (ListSalaryResponse, error)
	ListPolicies(ctx context.Context) ([]PolicyResponse, error)

	// RenderSalarySlip returns a PDF slip and its suggested file name.
	RenderSalarySlip(ctx context.Context, id string) ([]byte, string, error)
}
