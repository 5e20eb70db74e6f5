package payroll

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/period"
	"github.com/shopspring/decimal"
)

var (
	daysPerMonth = decimal.NewFromInt(30)
	hoursPerDay  = decimal.NewFromInt(8)
)

// Rate names the multiplier an overtime event was scored with.
type Rate string

const (
	RateHoliday  Rate = "holiday"
	RateSunday   Rate = "sunday"
	RateWeekday1 Rate = "weekday1"
	RateWeekday2 Rate = "weekday2"
	RateBase     Rate = "base"
)

// MultiplierFeatures gates the reserved policy multipliers.
type MultiplierFeatures struct {
	HolidayMultiplier bool
}

// Multiplier returns the policy value for rate. RateBase is always 1.
func (p Policy) Multiplier(rate Rate) decimal.Decimal {
	switch rate {
	case RateHoliday:
		return p.Holiday
	case RateSunday:
		return p.Sunday
	case RateWeekday1:
		return p.Weekday1
	case RateWeekday2:
		return p.Weekday2
	default:
		return decimal.NewFromInt(1)
	}
}

// DailyValue uses a fixed 30-day month regardless of the calendar.
func DailyValue(baseSalary decimal.Decimal) decimal.Decimal {
	return baseSalary.Div(daysPerMonth)
}

// SelectRate picks the rate for an overtime event: day of week first, then
// the start hour. [11,16) is weekday1 and [16,24) plus [0,2) is weekday2;
// other hours are unmultiplied.
func SelectRate(ot OvertimeLog, features MultiplierFeatures, isHoliday bool) Rate {
	if features.HolidayMultiplier && isHoliday {
		return RateHoliday
	}
	if period.IsSunday(ot.Date) {
		return RateSunday
	}

	hour := ot.StartTime.Hour()
	switch {
	case hour >= 11 && hour < 16:
		return RateWeekday1
	case hour >= 16 || hour < 2:
		return RateWeekday2
	default:
		return RateBase
	}
}

func SelectMultiplier(policy Policy, ot OvertimeLog, features MultiplierFeatures, isHoliday bool) decimal.Decimal {
	return policy.Multiplier(SelectRate(ot, features, isHoliday))
}

// SalaryInput is everything needed to price one employee's month.
type SalaryInput struct {
	BaseSalary decimal.Decimal
	AbsentDays int
	Overtime   []OvertimeLog
	Policy     Policy
	Features   MultiplierFeatures

	// Holidays holds the month's holiday dates formatted YYYY-MM-DD.
	Holidays map[string]bool
}

type OvertimeLine struct {
	Date       time.Time
	StartTime  time.Time
	Hours      decimal.Decimal
	Rate       Rate
	Multiplier decimal.Decimal
	Pay        decimal.Decimal
}

// Computation is the priced month. Amount always equals
// BaseSalary - Deductions + OvertimePay.
type Computation struct {
	BaseSalary    decimal.Decimal
	DailyValue    decimal.Decimal
	AbsentDays    int
	Deductions    decimal.Decimal
	OvertimeHours decimal.Decimal
	OvertimePay   decimal.Decimal
	Amount        decimal.Decimal
	Lines         []OvertimeLine
}

// ComputeSalary prices a month. Deductions and each overtime line are rounded
// to cents before summing so the parts add up to Amount exactly.
func ComputeSalary(in SalaryInput) Computation {
	daily := DailyValue(in.BaseSalary)

	c := Computation{
		BaseSalary:    in.BaseSalary,
		DailyValue:    daily,
		AbsentDays:    in.AbsentDays,
		Deductions:    daily.Mul(decimal.NewFromInt(int64(in.AbsentDays))).Round(2),
		OvertimeHours: decimal.Zero,
		OvertimePay:   decimal.Zero,
	}

	for _, ot := range in.Overtime {
		rate := SelectRate(ot, in.Features, in.Holidays[period.FormatDate(ot.Date)])
		multiplier := in.Policy.Multiplier(rate)
		pay := ot.Hours.Div(hoursPerDay).Mul(daily).Mul(multiplier).Round(2)

		c.OvertimeHours = c.OvertimeHours.Add(ot.Hours)
		c.OvertimePay = c.OvertimePay.Add(pay)
		c.Lines = append(c.Lines, OvertimeLine{
			Date:       ot.Date,
			StartTime:  ot.StartTime,
			Hours:      ot.Hours,
			Rate:       rate,
			Multiplier: multiplier,
			Pay:        pay,
		})
	}

	c.Amount = in.BaseSalary.Sub(c.Deductions).Add(c.OvertimePay)
	return c
}

// Recalculate applies an edit to prev. Overtime pay is rescaled by the
// previous average rate per hour (zero when prev had no hours); deductions
// are recomputed from the daily value when AbsentDays changes.
func Recalculate(prev SalaryRecord, req EditSalaryRequest, now time.Time) SalaryRecord {
	next := prev

	if req.OvertimeHours != nil {
		rate := decimal.Zero
		if !prev.OvertimeHours.IsZero() {
			rate = prev.OvertimePay.Div(prev.OvertimeHours)
		}
		next.OvertimeHours = *req.OvertimeHours
		next.OvertimePay = req.OvertimeHours.Mul(rate).Round(2)
	}

	if req.AbsentDays != nil {
		next.AbsentDays = *req.AbsentDays
		next.Deductions = DailyValue(prev.BaseSalary).Mul(decimal.NewFromInt(int64(*req.AbsentDays))).Round(2)
	}

	if req.Status != nil {
		status := SalaryStatus(*req.Status)
		next.Status = status
		switch {
		case status != SalaryStatusPaid:
			next.PaidAt = nil
		case prev.Status != SalaryStatusPaid || prev.PaidAt == nil:
			paidAt := now
			next.PaidAt = &paidAt
		}
	}

	next.Amount = next.BaseSalary.Sub(next.Deductions).Add(next.OvertimePay)
	return next
}
