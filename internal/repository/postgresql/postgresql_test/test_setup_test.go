package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/database"
	"github.com/stretchr/testify/require"
)

var truncateTables = []string{
	"salary_records",
	"overtime_logs",
	"attendance_month_closures",
	"attendance_summaries",
	"attendance_session_logs",
	"holidays",
	"leave_requests",
	"employees",
	"departments",
	"payroll_policies",
}

// newTestDatabase connects to TEST_DATABASE_URL, migrates and truncates it.
// The test is skipped when the variable is unset.
func newTestDatabase(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolOptions{})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, database.Migrate(ctx, db))
	require.NoError(t, truncateAllTables(ctx, db))

	return db
}

func truncateAllTables(ctx context.Context, db *database.DB) error {
	tx, err := db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, table := range truncateTables {
		if _, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

func insertReturningID(t *testing.T, db *database.DB, query string, args ...interface{}) string {
	t.Helper()
	var id string
	require.NoError(t, db.Pool.QueryRow(context.Background(), query+" RETURNING id", args...).Scan(&id))
	return id
}

func seedDepartment(t *testing.T, db *database.DB, name string, policyID *string) string {
	return insertReturningID(t, db, `INSERT INTO departments (name, payroll_policy_id) VALUES ($1, $2)`, name, policyID)
}

func seedEmployee(t *testing.T, db *database.DB, code, departmentID string, subDepartmentID *string, baseSalary *string) string {
	return insertReturningID(t, db,
		`INSERT INTO employees (employee_code, full_name, department_id, sub_department_id, base_salary) VALUES ($1, $2, $3, $4, $5::numeric)`,
		code, "Employee "+code, departmentID, subDepartmentID, baseSalary,
	)
}
