package payroll

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSalariesRequest_Validate(t *testing.T) {
	month := "2024-06"
	empty := ""
	bad := "06-2024"

	assert.NoError(t, (&GenerateSalariesRequest{}).Validate())
	assert.NoError(t, (&GenerateSalariesRequest{Month: &empty}).Validate())
	assert.NoError(t, (&GenerateSalariesRequest{Month: &month}).Validate())
	assert.Error(t, (&GenerateSalariesRequest{Month: &bad}).Validate())
}

func TestEditSalaryRequest_Validate(t *testing.T) {
	status := "paid"
	badStatus := "void"
	negative := decimal.NewFromInt(-1)
	tooMany := 40

	assert.NoError(t, (&EditSalaryRequest{Status: &status}).Validate())

	var verrs validator.ValidationErrors
	require.ErrorAs(t, (&EditSalaryRequest{}).Validate(), &verrs)
	assert.Contains(t, verrs.ToMap(), "body")

	err := (&EditSalaryRequest{Status: &badStatus, OvertimeHours: &negative, AbsentDays: &tooMany}).Validate()
	require.ErrorAs(t, err, &verrs)
	fields := verrs.ToMap()
	assert.Contains(t, fields, "status")
	assert.Contains(t, fields, "overtime_hours")
	assert.Contains(t, fields, "absent_days")
}

func TestSalaryFilter_Validate(t *testing.T) {
	month := "2024-06"
	f := SalaryFilter{Month: &month}
	require.NoError(t, f.Validate())
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 20, f.Limit)
	require.NotNil(t, f.MonthStart)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), *f.MonthStart)

	status := "cancelled"
	bad := SalaryFilter{Status: &status, Limit: 101}
	assert.Error(t, bad.Validate())
}
