package course

import (
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Course is the degree programme itself (Bachelor of Arts).
type Course struct {
	bun.BaseModel `bun:"table:courses,alias:c"`

	ID            int    `bun:"course_id,pk,autoincrement" json:"id"`
	ShortName     string `bun:"course_short_name,unique,notnull" json:"shortName" validate:"required,max=10"`
	FullName      string `bun:"course_full_name,notnull" json:"fullName" validate:"required,max=200"`
	Category      string `bun:"course_category" json:"category"`
	DurationYears int    `bun:"duration" json:"durationYears" validate:"min=0,max=10"`
}

// CourseDetail is one offering: a course at a specific year/semester with its
// fee plan. Fee records snapshot these values at admission time.
type CourseDetail struct {
	bun.BaseModel `bun:"table:course_details,alias:cd"`

	ID           int    `bun:"id,pk,autoincrement" json:"id"`
	FullName     string `bun:"course_full_name,notnull" json:"fullName" validate:"required,max=200"`
	ShortName    string `bun:"course_short_name,notnull" json:"shortName" validate:"required,max=10"`
	YearSemester string `bun:"year_semester,notnull" json:"yearSemester" validate:"required,max=20"`
	CourseType   string `bun:"course_type" json:"courseType"`

	TuitionFee decimal.Decimal `bun:"course_tuition_fee,notnull,type:numeric(10,2)" json:"tuitionFee"`
	MiscFee1   decimal.Decimal `bun:"misc_course_fees_1,notnull,type:numeric(10,2)" json:"miscFee1"`
	MiscFee2   decimal.Decimal `bun:"misc_course_fees_2,notnull,type:numeric(10,2)" json:"miscFee2"`
	MiscFee3   decimal.Decimal `bun:"misc_course_fees_3,notnull,type:numeric(10,2)" json:"miscFee3"`
	MiscFee4   decimal.Decimal `bun:"misc_course_fees_4,notnull,type:numeric(10,2)" json:"miscFee4"`
	MiscFee5   decimal.Decimal `bun:"misc_course_fees_5,notnull,type:numeric(10,2)" json:"miscFee5"`
	MiscFee6   decimal.Decimal `bun:"misc_course_fees_6,notnull,type:numeric(10,2)" json:"miscFee6"`

	// Kept in sync with the components on every write: tuition + misc 1..6.
	TotalCourseFees decimal.Decimal `bun:"total_course_fees,notnull,type:numeric(10,2)" json:"totalCourseFees"`
}

// RecomputeTotal restores the offering fee invariant.
func (d *CourseDetail) RecomputeTotal() {
	d.TotalCourseFees = d.TuitionFee.
		Add(d.MiscFee1).
		Add(d.MiscFee2).
		Add(d.MiscFee3).
		Add(d.MiscFee4).
		Add(d.MiscFee5).
		Add(d.MiscFee6)
}

// Subject types.
const (
	SubjectCompulsory = "Compulsory"
	SubjectElective   = "Elective"
)

type Subject struct {
	bun.BaseModel `bun:"table:subjects,alias:sub"`

	ID          int    `bun:"id,pk,autoincrement" json:"id"`
	ShortName   string `bun:"course_short_name,notnull" json:"courseShortName" validate:"required,max=10"`
	SubjectName string `bun:"subject_name,notnull" json:"subjectName" validate:"required,max=200"`
	SubjectType string `bun:"subject_type,notnull" json:"subjectType" validate:"required,oneof=Compulsory Elective"`
}
