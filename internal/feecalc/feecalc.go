// Package feecalc holds the pure fee and grade arithmetic shared by the
// ledger, invoicing and exam packages. All functions are total: zero and
// missing values are treated as zero and nothing here touches the database.
package feecalc

import "github.com/shopspring/decimal"

// PaymentStatus classifies a ledger row by how much of it has been paid.
type PaymentStatus string

const (
	StatusPaid    PaymentStatus = "Paid"
	StatusPartial PaymentStatus = "Partial"
	StatusPending PaymentStatus = "Pending"
)

// Breakdown carries the primitive fee components of one ledger row.
type Breakdown struct {
	TotalCourseFees           decimal.Decimal
	EnrollmentFee             decimal.Decimal
	EligibilityCertificateFee decimal.Decimal
	UniversityAffiliationFee  decimal.Decimal
	UniversitySportsFee       decimal.Decimal
	UniversityDevelopmentFee  decimal.Decimal
	TCCCFee                   decimal.Decimal
	MiscellaneousFee1         decimal.Decimal
	MiscellaneousFee2         decimal.Decimal
	MiscellaneousFee3         decimal.Decimal

	Installments [6]decimal.Decimal

	MeeraRebateGranted bool
	MeeraRebateAmount  decimal.Decimal
}

// TotalFee sums the ten fee components.
func (b Breakdown) TotalFee() decimal.Decimal {
	return b.TotalCourseFees.
		Add(b.EnrollmentFee).
		Add(b.EligibilityCertificateFee).
		Add(b.UniversityAffiliationFee).
		Add(b.UniversitySportsFee).
		Add(b.UniversityDevelopmentFee).
		Add(b.TCCCFee).
		Add(b.MiscellaneousFee1).
		Add(b.MiscellaneousFee2).
		Add(b.MiscellaneousFee3)
}

// TotalPaid sums the six installment slots.
func (b Breakdown) TotalPaid() decimal.Decimal {
	total := decimal.Zero
	for _, inst := range b.Installments {
		total = total.Add(inst)
	}
	return total
}

// AfterRebate is the total fee minus the Meera rebate, which only counts
// once granted.
func (b Breakdown) AfterRebate() decimal.Decimal {
	if b.MeeraRebateGranted {
		return b.TotalFee().Sub(b.MeeraRebateAmount)
	}
	return b.TotalFee()
}

// AmountDue may go negative on overpayment; that is observable as StatusPaid.
func (b Breakdown) AmountDue() decimal.Decimal {
	return b.AfterRebate().Sub(b.TotalPaid())
}

// Status classifies the row: Paid when nothing is due on a non-zero fee,
// Partial when something has been paid, Pending otherwise.
func (b Breakdown) Status() PaymentStatus {
	if b.AmountDue().Sign() <= 0 && b.TotalFee().Sign() > 0 {
		return StatusPaid
	}
	if b.TotalPaid().Sign() > 0 {
		return StatusPartial
	}
	return StatusPending
}

// Percentage returns 100*obtained/max rounded to two decimal places,
// or zero when max is zero.
func Percentage(obtained, max int) decimal.Decimal {
	if max <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(obtained)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(max))).
		Round(2)
}

// Grade maps a percentage onto the college grade table. Thresholds are
// inclusive lower bounds.
func Grade(percentage decimal.Decimal) string {
	switch {
	case percentage.GreaterThanOrEqual(decimal.NewFromInt(90)):
		return "A+"
	case percentage.GreaterThanOrEqual(decimal.NewFromInt(80)):
		return "A"
	case percentage.GreaterThanOrEqual(decimal.NewFromInt(70)):
		return "B+"
	case percentage.GreaterThanOrEqual(decimal.NewFromInt(60)):
		return "B"
	case percentage.GreaterThanOrEqual(decimal.NewFromInt(50)):
		return "C+"
	case percentage.GreaterThanOrEqual(decimal.NewFromInt(40)):
		return "C"
	default:
		return "F"
	}
}

// Pass reports whether a percentage is a passing result.
func Pass(percentage decimal.Decimal) bool {
	return percentage.GreaterThanOrEqual(decimal.NewFromInt(40))
}
