// Package payslip renders salary slips as PDF documents.
package payslip

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

type OvertimeLine struct {
	Date       time.Time
	StartTime  string
	Hours      decimal.Decimal
	Rate       string
	Multiplier decimal.Decimal
	Pay        decimal.Decimal
}

// Slip is the rendered view of one salary record.
type Slip struct {
	EmployeeName  string
	EmployeeCode  string
	SalaryMonth   time.Time
	BaseSalary    decimal.Decimal
	AbsentDays    int
	Deductions    decimal.Decimal
	OvertimeHours decimal.Decimal
	OvertimePay   decimal.Decimal
	Amount        decimal.Decimal
	Status        string
	PaidAt        *time.Time
	PolicyName    string
	Overtime      []OvertimeLine
	GeneratedAt   time.Time
}

func FileName(employeeCode string, month time.Time) string {
	return fmt.Sprintf("salary-slip-%s-%s.pdf", employeeCode, month.Format("2006-01"))
}

// Render writes the slip to an in-memory PDF.
func Render(s Slip) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Salary Slip "+s.SalaryMonth.Format("January 2006"), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Salary Slip")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Employee: %s (%s)", s.EmployeeName, s.EmployeeCode))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Period: %s", s.SalaryMonth.Format("January 2006")))
	pdf.Ln(6)
	status := s.Status
	if s.PaidAt != nil {
		status = fmt.Sprintf("%s on %s", s.Status, s.PaidAt.UTC().Format("2006-01-02"))
	}
	pdf.Cell(0, 7, fmt.Sprintf("Status: %s", status))
	pdf.Ln(10)

	row := func(label, value string) {
		pdf.CellFormat(70, 7, label, "B", 0, "L", false, 0, "")
		pdf.CellFormat(50, 7, value, "B", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 11)
	row("Component", "Amount")
	pdf.SetFont("Helvetica", "", 11)
	row("Base salary", s.BaseSalary.StringFixed(2))
	row(fmt.Sprintf("Absence deduction (%d days)", s.AbsentDays), "-"+s.Deductions.StringFixed(2))
	row(fmt.Sprintf("Overtime (%s h)", s.OvertimeHours.String()), s.OvertimePay.StringFixed(2))
	pdf.SetFont("Helvetica", "B", 11)
	row("Net amount", s.Amount.StringFixed(2))

	if len(s.Overtime) > 0 {
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "B", 11)
		title := "Overtime detail"
		if s.PolicyName != "" {
			title += " (policy: " + s.PolicyName + ")"
		}
		pdf.Cell(0, 7, title)
		pdf.Ln(8)

		widths := []float64{28, 20, 18, 26, 24, 28}
		pdf.SetFont("Helvetica", "B", 9)
		for i, h := range []string{"Date", "Start", "Hours", "Rate", "Multiplier", "Pay"} {
			pdf.CellFormat(widths[i], 6, h, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Helvetica", "", 9)
		for _, line := range s.Overtime {
			cells := []string{
				line.Date.Format("2006-01-02"),
				line.StartTime,
				line.Hours.String(),
				line.Rate,
				line.Multiplier.String(),
				line.Pay.StringFixed(2),
			}
			for i, c := range cells {
				pdf.CellFormat(widths[i], 6, c, "1", 0, "C", false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.Cell(0, 5, "Generated "+s.GeneratedAt.UTC().Format(time.RFC3339))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render salary slip: %w", err)
	}
	return buf.Bytes(), nil
}
