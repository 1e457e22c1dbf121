package fees

import (
	"testing"

	"college-erp/internal/feecalc"
	"college-erp/internal/student"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestRecomputeFreshAdmission(t *testing.T) {
	row := &CollegeFees{TotalCourseFees: dec("16500")}
	row.Recompute()

	assert.True(t, row.TotalFee.Equal(dec("16500")))
	assert.True(t, row.TotalFeesPaid.IsZero())
	assert.True(t, row.TotalAmountAfterRebate.Equal(dec("16500")))
	assert.True(t, row.TotalAmountDue.Equal(dec("16500")))
	assert.Equal(t, feecalc.StatusPending, row.PaymentStatus())
}

func TestRecomputeAfterFirstInstallment(t *testing.T) {
	row := &CollegeFees{TotalCourseFees: dec("16500")}
	require.NoError(t, row.SetInstallment(1, dec("5000"), "INV202508290001"))
	row.Recompute()

	assert.True(t, row.TotalFeesPaid.Equal(dec("5000")))
	assert.True(t, row.TotalAmountDue.Equal(dec("11500")))
	assert.Equal(t, feecalc.StatusPartial, row.PaymentStatus())
}

func TestRecomputeWithMeeraRebate(t *testing.T) {
	row := &CollegeFees{
		TotalCourseFees:    dec("16500"),
		MeeraRebateApplied: true, MeeraRebateApproved: true, MeeraRebateGranted: true,
		MeeraRebateAmount: dec("2000"),
	}
	require.NoError(t, row.SetInstallment(1, dec("5000"), "INV202508290001"))
	row.Recompute()

	assert.True(t, row.TotalAmountAfterRebate.Equal(dec("14500")))
	assert.True(t, row.TotalAmountDue.Equal(dec("9500")))
}

func TestRecomputeSumsAllComponents(t *testing.T) {
	row := &CollegeFees{
		TotalCourseFees:           dec("10000"),
		EnrollmentFee:             dec("100"),
		EligibilityCertificateFee: dec("200"),
		UniversityAffiliationFee:  dec("300"),
		UniversitySportsFee:       dec("400"),
		UniversityDevelopmentFee:  dec("500"),
		TCCCFee:                   dec("600"),
		MiscellaneousFee1:         dec("700"),
		MiscellaneousFee2:         dec("800"),
		MiscellaneousFee3:         dec("900"),
	}
	row.Recompute()

	assert.True(t, row.TotalFee.Equal(dec("14500")))
}

func TestNextEmptySlot(t *testing.T) {
	row := &CollegeFees{}
	assert.Equal(t, 1, row.NextEmptySlot())

	require.NoError(t, row.SetInstallment(1, dec("100"), "INV1"))
	assert.Equal(t, 2, row.NextEmptySlot())

	// Slots are allocated in ascending order, so a gap never occurs in
	// practice; the scan still reports the smallest empty one.
	require.NoError(t, row.SetInstallment(3, dec("300"), "INV3"))
	assert.Equal(t, 2, row.NextEmptySlot())

	for i := 1; i <= Slots; i++ {
		_ = row.SetInstallment(i, dec("100"), "INV")
	}
	assert.Equal(t, 0, row.NextEmptySlot())
}

func TestSetInstallmentOutOfRange(t *testing.T) {
	row := &CollegeFees{}
	assert.Error(t, row.SetInstallment(0, dec("100"), "INV"))
	assert.Error(t, row.SetInstallment(7, dec("100"), "INV"))
}

func TestScholarshipOrderValid(t *testing.T) {
	tests := []struct {
		name                       string
		applied, approved, granted bool
		want                       bool
	}{
		{"none", false, false, false, true},
		{"applied only", true, false, false, true},
		{"applied and approved", true, true, false, true},
		{"full chain", true, true, true, true},
		{"granted without approved", true, false, true, false},
		{"approved without applied", false, true, false, false},
		{"granted alone", false, false, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := &CollegeFees{
				ScholarshipApplied:  tt.applied,
				ScholarshipApproved: tt.approved,
				ScholarshipGranted:  tt.granted,
			}
			assert.Equal(t, tt.want, row.ScholarshipOrderValid())

			row = &CollegeFees{
				MeeraRebateApplied:  tt.applied,
				MeeraRebateApproved: tt.approved,
				MeeraRebateGranted:  tt.granted,
			}
			assert.Equal(t, tt.want, row.ScholarshipOrderValid())
		})
	}
}

func TestScholarshipMirror(t *testing.T) {
	tests := []struct {
		status                     string
		applied, approved, granted bool
	}{
		{student.ScholarshipNotApplied, false, false, false},
		{student.ScholarshipApplied, true, false, false},
		{student.ScholarshipApproved, true, true, false},
		{student.ScholarshipGranted, true, true, true},
		{student.ScholarshipRejected, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			row := &CollegeFees{GovernmentScholarshipAmount: dec("3000"), MeeraRebateAmount: dec("1500")}
			stu := &student.Student{
				ScholarshipStatus:      tt.status,
				RebateMeeraScholarship: tt.status,
			}
			applyScholarshipMirror(row, stu)

			assert.Equal(t, tt.applied, row.ScholarshipApplied)
			assert.Equal(t, tt.approved, row.ScholarshipApproved)
			assert.Equal(t, tt.granted, row.ScholarshipGranted)
			assert.True(t, row.ScholarshipOrderValid())

			if tt.status == student.ScholarshipRejected {
				assert.True(t, row.GovernmentScholarshipAmount.IsZero())
				assert.True(t, row.MeeraRebateAmount.IsZero())
			}
		})
	}
}

func TestOverpaymentReadsPaid(t *testing.T) {
	row := &CollegeFees{TotalCourseFees: dec("1000")}
	require.NoError(t, row.SetInstallment(1, dec("1500"), "INV1"))
	row.Recompute()

	assert.True(t, row.TotalAmountDue.IsNegative())
	assert.Equal(t, feecalc.StatusPaid, row.PaymentStatus())
}

func TestBreakdownRoundTrip(t *testing.T) {
	row := &CollegeFees{
		TotalCourseFees:    dec("16500"),
		EnrollmentFee:      dec("250"),
		MeeraRebateGranted: true,
		MeeraRebateAmount:  dec("2000"),
	}
	require.NoError(t, row.SetInstallment(2, dec("4000"), "INV2"))

	b := row.Breakdown()
	assert.True(t, b.TotalFee().Equal(dec("16750")))
	assert.True(t, b.TotalPaid().Equal(dec("4000")))
	assert.True(t, b.AfterRebate().Equal(dec("14750")))
	assert.True(t, b.AmountDue().Equal(dec("10750")))
}
