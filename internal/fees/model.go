package fees

import (
	"fmt"
	"time"

	"college-erp/internal/feecalc"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Slots is the number of installment slots on a ledger row.
const Slots = 6

// CollegeFees is one ledger row: the fee plan and payment history of a
// student for one course offering. Course name and fees are snapshotted
// at creation; derived totals are stored and recomputed on every write.
type CollegeFees struct {
	bun.BaseModel `bun:"table:college_fees,alias:cf"`

	ID             int    `bun:"id,pk,autoincrement" json:"id"`
	StudentID      int    `bun:"student_id,notnull" json:"studentId"`
	CourseID       int    `bun:"course_id,nullzero" json:"courseId"`
	CourseDetailID int    `bun:"coursedetail_id,nullzero" json:"courseDetailId"`
	CourseFullName string `bun:"course_full_name" json:"courseFullName"`

	TotalCourseFees           decimal.Decimal `bun:"total_course_fees,notnull,type:numeric(10,2)" json:"totalCourseFees"`
	EnrollmentFee             decimal.Decimal `bun:"enrollment_fee,notnull,type:numeric(10,2)" json:"enrollmentFee"`
	EligibilityCertificateFee decimal.Decimal `bun:"eligibility_certificate_fee,notnull,type:numeric(10,2)" json:"eligibilityCertificateFee"`
	UniversityAffiliationFee  decimal.Decimal `bun:"university_affiliation_fee,notnull,type:numeric(10,2)" json:"universityAffiliationFee"`
	UniversitySportsFee       decimal.Decimal `bun:"university_sports_fee,notnull,type:numeric(10,2)" json:"universitySportsFee"`
	UniversityDevelopmentFee  decimal.Decimal `bun:"university_development_fee,notnull,type:numeric(10,2)" json:"universityDevelopmentFee"`
	TCCCFee                   decimal.Decimal `bun:"tc_cc_fee,notnull,type:numeric(10,2)" json:"tcCcFee"`
	MiscellaneousFee1         decimal.Decimal `bun:"miscellaneous_fee_1,notnull,type:numeric(10,2)" json:"miscellaneousFee1"`
	MiscellaneousFee2         decimal.Decimal `bun:"miscellaneous_fee_2,notnull,type:numeric(10,2)" json:"miscellaneousFee2"`
	MiscellaneousFee3         decimal.Decimal `bun:"miscellaneous_fee_3,notnull,type:numeric(10,2)" json:"miscellaneousFee3"`

	TotalFee    decimal.Decimal `bun:"total_fee,notnull,type:numeric(10,2)" json:"totalFee"`
	PaymentMode string          `bun:"payment_mode" json:"paymentMode"`

	Installment1   decimal.Decimal `bun:"installment_1,notnull,type:numeric(10,2)" json:"installment1"`
	Invoice1Number string          `bun:"invoice1_number" json:"invoice1Number"`
	Installment2   decimal.Decimal `bun:"installment_2,notnull,type:numeric(10,2)" json:"installment2"`
	Invoice2Number string          `bun:"invoice2_number" json:"invoice2Number"`
	Installment3   decimal.Decimal `bun:"installment_3,notnull,type:numeric(10,2)" json:"installment3"`
	Invoice3Number string          `bun:"invoice3_number" json:"invoice3Number"`
	Installment4   decimal.Decimal `bun:"installment_4,notnull,type:numeric(10,2)" json:"installment4"`
	Invoice4Number string          `bun:"invoice4_number" json:"invoice4Number"`
	Installment5   decimal.Decimal `bun:"installment_5,notnull,type:numeric(10,2)" json:"installment5"`
	Invoice5Number string          `bun:"invoice5_number" json:"invoice5Number"`
	Installment6   decimal.Decimal `bun:"installment_6,notnull,type:numeric(10,2)" json:"installment6"`
	Invoice6Number string          `bun:"invoice6_number" json:"invoice6Number"`

	TotalFeesPaid decimal.Decimal `bun:"total_fees_paid,notnull,type:numeric(10,2)" json:"totalFeesPaid"`

	MeeraRebateApplied  bool            `bun:"meera_rebate_applied,notnull,default:false" json:"meeraRebateApplied"`
	MeeraRebateApproved bool            `bun:"meera_rebate_approved,notnull,default:false" json:"meeraRebateApproved"`
	MeeraRebateGranted  bool            `bun:"meera_rebate_granted,notnull,default:false" json:"meeraRebateGranted"`
	MeeraRebateAmount   decimal.Decimal `bun:"meera_rebate_amount,notnull,type:numeric(10,2)" json:"meeraRebateAmount"`

	ScholarshipApplied          bool            `bun:"scholarship_applied,notnull,default:false" json:"scholarshipApplied"`
	ScholarshipApproved         bool            `bun:"scholarship_approved,notnull,default:false" json:"scholarshipApproved"`
	ScholarshipGranted          bool            `bun:"scholarship_granted,notnull,default:false" json:"scholarshipGranted"`
	GovernmentScholarshipAmount decimal.Decimal `bun:"government_scholarship_amount,notnull,type:numeric(10,2)" json:"governmentScholarshipAmount"`

	TotalAmountAfterRebate decimal.Decimal `bun:"total_amount_after_rebate,notnull,type:numeric(10,2)" json:"totalAmountAfterRebate"`
	TotalAmountDue         decimal.Decimal `bun:"total_amount_due,notnull,type:numeric(10,2)" json:"totalAmountDue"`

	PendingDuesForLibraries bool `bun:"pending_dues_for_libraries,notnull,default:false" json:"pendingDuesForLibraries"`
	PendingDuesForHostel    bool `bun:"pending_dues_for_hostel,notnull,default:false" json:"pendingDuesForHostel"`
	ExamAdmitCardIssued     bool `bun:"exam_admit_card_issued,notnull,default:false" json:"examAdmitCardIssued"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}

// Installment returns the amount in slot i (1-based). Out-of-range slots
// read as zero.
func (f *CollegeFees) Installment(i int) decimal.Decimal {
	switch i {
	case 1:
		return f.Installment1
	case 2:
		return f.Installment2
	case 3:
		return f.Installment3
	case 4:
		return f.Installment4
	case 5:
		return f.Installment5
	case 6:
		return f.Installment6
	}
	return decimal.Zero
}

// InvoiceNumber returns the invoice number recorded for slot i.
func (f *CollegeFees) InvoiceNumber(i int) string {
	switch i {
	case 1:
		return f.Invoice1Number
	case 2:
		return f.Invoice2Number
	case 3:
		return f.Invoice3Number
	case 4:
		return f.Invoice4Number
	case 5:
		return f.Invoice5Number
	case 6:
		return f.Invoice6Number
	}
	return ""
}

// SetInstallment writes amount and invoice number into slot i.
func (f *CollegeFees) SetInstallment(i int, amount decimal.Decimal, invoiceNumber string) error {
	switch i {
	case 1:
		f.Installment1, f.Invoice1Number = amount, invoiceNumber
	case 2:
		f.Installment2, f.Invoice2Number = amount, invoiceNumber
	case 3:
		f.Installment3, f.Invoice3Number = amount, invoiceNumber
	case 4:
		f.Installment4, f.Invoice4Number = amount, invoiceNumber
	case 5:
		f.Installment5, f.Invoice5Number = amount, invoiceNumber
	case 6:
		f.Installment6, f.Invoice6Number = amount, invoiceNumber
	default:
		return fmt.Errorf("installment slot %d out of range", i)
	}
	return nil
}

// NextEmptySlot returns the smallest slot with a zero installment, or 0
// when all six are filled.
func (f *CollegeFees) NextEmptySlot() int {
	for i := 1; i <= Slots; i++ {
		if f.Installment(i).Sign() == 0 {
			return i
		}
	}
	return 0
}

// Breakdown extracts the pure-arithmetic view of the row.
func (f *CollegeFees) Breakdown() feecalc.Breakdown {
	return feecalc.Breakdown{
		TotalCourseFees:           f.TotalCourseFees,
		EnrollmentFee:             f.EnrollmentFee,
		EligibilityCertificateFee: f.EligibilityCertificateFee,
		UniversityAffiliationFee:  f.UniversityAffiliationFee,
		UniversitySportsFee:       f.UniversitySportsFee,
		UniversityDevelopmentFee:  f.UniversityDevelopmentFee,
		TCCCFee:                   f.TCCCFee,
		MiscellaneousFee1:         f.MiscellaneousFee1,
		MiscellaneousFee2:         f.MiscellaneousFee2,
		MiscellaneousFee3:         f.MiscellaneousFee3,
		Installments: [Slots]decimal.Decimal{
			f.Installment1, f.Installment2, f.Installment3,
			f.Installment4, f.Installment5, f.Installment6,
		},
		MeeraRebateGranted: f.MeeraRebateGranted,
		MeeraRebateAmount:  f.MeeraRebateAmount,
	}
}

// Recompute refreshes the stored derived totals from the components.
// Must be called before persisting any mutation of fee or installment
// fields.
func (f *CollegeFees) Recompute() {
	b := f.Breakdown()
	f.TotalFee = b.TotalFee()
	f.TotalFeesPaid = b.TotalPaid()
	f.TotalAmountAfterRebate = b.AfterRebate()
	f.TotalAmountDue = b.AmountDue()
}

// PaymentStatus classifies the row from its stored components.
func (f *CollegeFees) PaymentStatus() feecalc.PaymentStatus {
	return f.Breakdown().Status()
}

// ScholarshipOrderValid checks that the granted/approved/applied booleans
// are monotone for both the government scholarship and the Meera rebate.
func (f *CollegeFees) ScholarshipOrderValid() bool {
	scholarship := monotone(f.ScholarshipApplied, f.ScholarshipApproved, f.ScholarshipGranted)
	rebate := monotone(f.MeeraRebateApplied, f.MeeraRebateApproved, f.MeeraRebateGranted)
	return scholarship && rebate
}

func monotone(applied, approved, granted bool) bool {
	if granted && !approved {
		return false
	}
	if approved && !applied {
		return false
	}
	return true
}
