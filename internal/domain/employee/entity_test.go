package employee

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestEffectiveDepartmentID(t *testing.T) {
	sub := "dept-sub"
	empty := ""

	assert.Equal(t, "dept-main", Employee{DepartmentID: "dept-main"}.EffectiveDepartmentID())
	assert.Equal(t, "dept-sub", Employee{DepartmentID: "dept-main", SubDepartmentID: &sub}.EffectiveDepartmentID())
	assert.Equal(t, "dept-main", Employee{DepartmentID: "dept-main", SubDepartmentID: &empty}.EffectiveDepartmentID())
}

func TestIsPayrollEligible(t *testing.T) {
	salary := decimal.NewFromInt(3000)
	deleted := time.Now()

	base := Employee{
		EmploymentType:   EmploymentTypePermanent,
		EmploymentStatus: EmploymentStatusActive,
		BaseSalary:       &salary,
	}

	tests := []struct {
		name   string
		mutate func(e *Employee)
		want   bool
	}{
		{"active permanent", func(e *Employee) {}, true},
		{"contract", func(e *Employee) { e.EmploymentType = EmploymentTypeContract }, true},
		{"intern", func(e *Employee) { e.EmploymentType = EmploymentTypeInternship }, false},
		{"resigned", func(e *Employee) { e.EmploymentStatus = EmploymentStatusResigned }, false},
		{"soft deleted", func(e *Employee) { e.DeletedAt = &deleted }, false},
		{"no base salary", func(e *Employee) { e.BaseSalary = nil }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := base
			tt.mutate(&e)
			assert.Equal(t, tt.want, e.IsPayrollEligible())
		})
	}
}
