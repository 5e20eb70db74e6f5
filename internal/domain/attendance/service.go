package attendance

import (
	"context"
	"time"
)

// AttendanceService resolves and manages daily attendance summaries.
type AttendanceService interface {
	// GenerateSummaries runs the resolver for one date over a department or an
	// explicit employee list and upserts one summary per employee found.
	GenerateSummaries(ctx context.Context, req GenerateSummariesRequest) (GenerateSummariesResponse, error)

	// ResolveAllActive runs the resolver for every active employee on date.
	ResolveAllActive(ctx context.Context, date time.Time) (int, error)

	ApproveSummaries(ctx context.Context, req ApproveSummariesRequest) (ApproveSummariesResponse, error)
	ApproveSummary(ctx context.Context, id string) (SummaryResponse, error)
	ListSummaries(ctx context.Context, filter SummaryFilter) (ListSummaryResponse, error)

	FinalizeMonth(ctx context.Context, month string) (MonthClosureResponse, error)
	ReopenMonth(ctx context.Context, month string) (MonthClosureResponse, error)
	IsMonthFinalized(ctx context.Context, monthStart time.Time) (bool, error)

	// ImportSessionLogs upserts each log independently and reports per-item failures.
	ImportSessionLogs(ctx context.Context, req ImportSessionLogsRequest) (BulkImportResult, error)
}
