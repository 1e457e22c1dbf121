package student

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Reservation categories.
const (
	CategoryGeneral = "General"
	CategorySC      = "SC"
	CategoryST      = "ST"
	CategoryOBC     = "OBC"
)

// Scholarship statuses; also used for the Meera rebate.
const (
	ScholarshipNotApplied = "Not Applied"
	ScholarshipApplied    = "Applied"
	ScholarshipApproved   = "Approved"
	ScholarshipRejected   = "Rejected"
	ScholarshipGranted    = "Granted"
)

// Student statuses.
const (
	StatusActive    = "Active"
	StatusDropout   = "Dropout"
	StatusGraduated = "Graduated"
)

type Student struct {
	bun.BaseModel `bun:"table:students,alias:s"`

	ID         int    `bun:"id,pk,autoincrement" json:"id"`
	UniqueID   string `bun:"student_unique_id,unique,notnull" json:"uniqueId"`
	ExternalID string `bun:"external_id" json:"externalId"`

	FirstName  string `bun:"first_name,notnull" json:"firstName" validate:"required,max=100"`
	LastName   string `bun:"last_name,notnull" json:"lastName" validate:"required,max=100"`
	FatherName string `bun:"father_name" json:"fatherName"`
	MotherName string `bun:"mother_name" json:"motherName"`
	Gender     string `bun:"gender,notnull" json:"gender" validate:"required"`
	Category   string `bun:"category" json:"category" validate:"omitempty,oneof=General SC ST OBC"`
	Email      string `bun:"email" json:"email" validate:"omitempty,email"`

	CurrentCourse string `bun:"current_course" json:"currentCourse"`
	Subject1Name  string `bun:"subject_1_name" json:"subject1Name"`
	Subject2Name  string `bun:"subject_2_name" json:"subject2Name"`
	Subject3Name  string `bun:"subject_3_name" json:"subject3Name"`

	// Qualifying-exam percentage from the admission form.
	Percentage decimal.Decimal `bun:"percentage,type:numeric(5,2)" json:"percentage"`

	Street      string `bun:"street" json:"street"`
	AreaVillage string `bun:"area_village" json:"areaVillage"`
	CityTehsil  string `bun:"city_tehsil" json:"cityTehsil"`
	State       string `bun:"state" json:"state"`
	// Derived from the four address parts; kept in sync on every write.
	ConcatenatedAddress string `bun:"concatenated_address" json:"concatenatedAddress"`

	Phone             string `bun:"phone" json:"phone"`
	AadhaarCardNumber string `bun:"aadhaar_card_number" json:"aadhaarCardNumber"`
	ApaarID           string `bun:"apaar_id" json:"apaarId"`
	SchoolName        string `bun:"school_name" json:"schoolName"`

	ScholarshipStatus      string `bun:"scholarship_status,notnull,default:'Not Applied'" json:"scholarshipStatus" validate:"omitempty,oneof='Not Applied' Applied Approved Rejected Granted"`
	RebateMeeraScholarship string `bun:"rebate_meera_scholarship_status,notnull,default:'Not Applied'" json:"rebateMeeraScholarshipStatus" validate:"omitempty,oneof='Not Applied' Applied Approved Rejected Granted"`
	Status                 string `bun:"student_status,notnull,default:'Active'" json:"status" validate:"omitempty,oneof=Active Dropout Graduated"`

	AdmissionDate time.Time `bun:"admission_date,notnull,default:current_date" json:"admissionDate"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}

// UpdateConcatenatedAddress rebuilds the derived address field from the
// non-empty parts, comma-joined in fixed order.
func (s *Student) UpdateConcatenatedAddress() {
	parts := make([]string, 0, 4)
	for _, p := range []string{s.Street, s.AreaVillage, s.CityTehsil, s.State} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, strings.TrimSpace(p))
		}
	}
	s.ConcatenatedAddress = strings.Join(parts, ", ")
}
