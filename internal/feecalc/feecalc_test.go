package feecalc_test

import (
	"testing"

	"college-erp/internal/feecalc"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestBreakdownTotals(t *testing.T) {
	b := feecalc.Breakdown{
		TotalCourseFees:           d("16500"),
		EnrollmentFee:             d("500"),
		EligibilityCertificateFee: d("200"),
		UniversityAffiliationFee:  d("300"),
		UniversitySportsFee:       d("100"),
		UniversityDevelopmentFee:  d("400"),
		TCCCFee:                   d("50"),
		MiscellaneousFee1:         d("200"),
		MiscellaneousFee2:         d("150"),
		MiscellaneousFee3:         d("100"),
	}

	assert.True(t, b.TotalFee().Equal(d("18500")))
	assert.True(t, b.TotalPaid().IsZero())
	assert.True(t, b.AfterRebate().Equal(d("18500")))
	assert.True(t, b.AmountDue().Equal(d("18500")))
	assert.Equal(t, feecalc.StatusPending, b.Status())

	b.Installments[0] = d("5000")
	b.Installments[1] = d("2500.50")
	assert.True(t, b.TotalPaid().Equal(d("7500.50")))
	assert.True(t, b.AmountDue().Equal(d("10999.50")))
	assert.Equal(t, feecalc.StatusPartial, b.Status())
}

func TestRebateOnlyCountsOnceGranted(t *testing.T) {
	b := feecalc.Breakdown{
		TotalCourseFees:   d("16500"),
		MeeraRebateAmount: d("2000"),
	}
	b.Installments[0] = d("5000")

	assert.True(t, b.AfterRebate().Equal(d("16500")), "rebate not granted yet")
	assert.True(t, b.AmountDue().Equal(d("11500")))

	b.MeeraRebateGranted = true
	assert.True(t, b.AfterRebate().Equal(d("14500")))
	assert.True(t, b.AmountDue().Equal(d("9500")))
}

func TestOverpaymentReadsAsPaid(t *testing.T) {
	b := feecalc.Breakdown{TotalCourseFees: d("1000")}
	b.Installments[0] = d("1500")

	assert.True(t, b.AmountDue().IsNegative())
	assert.Equal(t, feecalc.StatusPaid, b.Status())
}

func TestZeroFeeRowIsPending(t *testing.T) {
	var b feecalc.Breakdown
	assert.Equal(t, feecalc.StatusPending, b.Status())
}

func TestPercentage(t *testing.T) {
	assert.True(t, feecalc.Percentage(197, 300).Equal(d("65.67")))
	assert.True(t, feecalc.Percentage(50, 200).Equal(d("25")))
	assert.True(t, feecalc.Percentage(10, 0).IsZero())
	assert.True(t, feecalc.Percentage(0, 100).IsZero())
}

func TestGradeBoundaries(t *testing.T) {
	cases := []struct {
		percentage string
		grade      string
		pass       bool
	}{
		{"100", "A+", true},
		{"90", "A+", true},
		{"89.99", "A", true},
		{"80", "A", true},
		{"79.99", "B+", true},
		{"70", "B+", true},
		{"69.99", "B", true},
		{"65.67", "B", true},
		{"60", "B", true},
		{"59.99", "C+", true},
		{"50", "C+", true},
		{"49.99", "C", true},
		{"40", "C", true},
		{"39.99", "F", false},
		{"25", "F", false},
		{"0", "F", false},
	}

	for _, tc := range cases {
		p := d(tc.percentage)
		assert.Equal(t, tc.grade, feecalc.Grade(p), "grade at %s", tc.percentage)
		assert.Equal(t, tc.pass, feecalc.Pass(p), "pass at %s", tc.percentage)
	}
}

func TestGradeMonotone(t *testing.T) {
	order := map[string]int{"A+": 6, "A": 5, "B+": 4, "B": 3, "C+": 2, "C": 1, "F": 0}

	prev := 7
	for p := 100; p >= 0; p-- {
		g := order[feecalc.Grade(decimal.NewFromInt(int64(p)))]
		assert.LessOrEqual(t, g, prev, "grade must not improve as percentage drops (at %d)", p)
		prev = g
	}
}
