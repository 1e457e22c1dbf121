package exam

import (
	"strings"
	"time"

	"college-erp/internal/feecalc"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Overall statuses.
const (
	StatusPass = "Pass"
	StatusFail = "Fail"
)

// MaxSubjects is the number of subject slots on an exam record.
const MaxSubjects = 6

// SubjectMark is one subject's score on an exam. Empty names mark unused
// slots and are excluded from the totals.
type SubjectMark struct {
	Name     string `json:"name"`
	MaxMarks int    `json:"maxMarks"`
	Obtained int    `json:"obtainedMarks"`
}

func (m SubjectMark) present() bool {
	return strings.TrimSpace(m.Name) != ""
}

// Exam is one graded examination of a student. Course name is a snapshot
// at exam time. Records stay mutable until promotion is processed.
type Exam struct {
	bun.BaseModel `bun:"table:exams,alias:e"`

	ID             int    `bun:"id,pk,autoincrement" json:"id"`
	StudentID      int    `bun:"student_id,notnull" json:"studentId"`
	CourseID       int    `bun:"course_id,nullzero" json:"courseId"`
	CourseDetailID int    `bun:"coursedetail_id,nullzero" json:"courseDetailId"`
	CourseFullName string `bun:"course_full_name" json:"courseFullName"`

	Semester string `bun:"semester" json:"semester"`
	ExamName string `bun:"exam_name,notnull" json:"examName" validate:"required,max=100"`

	Subject1Name     string `bun:"subject1_name" json:"subject1Name"`
	Subject1Max      int    `bun:"subject1_max_marks,notnull,default:100" json:"subject1MaxMarks"`
	Subject1Obtained int    `bun:"subject1_obtained_marks,notnull,default:0" json:"subject1ObtainedMarks"`
	Subject2Name     string `bun:"subject2_name" json:"subject2Name"`
	Subject2Max      int    `bun:"subject2_max_marks,notnull,default:100" json:"subject2MaxMarks"`
	Subject2Obtained int    `bun:"subject2_obtained_marks,notnull,default:0" json:"subject2ObtainedMarks"`
	Subject3Name     string `bun:"subject3_name" json:"subject3Name"`
	Subject3Max      int    `bun:"subject3_max_marks,notnull,default:100" json:"subject3MaxMarks"`
	Subject3Obtained int    `bun:"subject3_obtained_marks,notnull,default:0" json:"subject3ObtainedMarks"`
	Subject4Name     string `bun:"subject4_name" json:"subject4Name"`
	Subject4Max      int    `bun:"subject4_max_marks,notnull,default:100" json:"subject4MaxMarks"`
	Subject4Obtained int    `bun:"subject4_obtained_marks,notnull,default:0" json:"subject4ObtainedMarks"`
	Subject5Name     string `bun:"subject5_name" json:"subject5Name"`
	Subject5Max      int    `bun:"subject5_max_marks,notnull,default:100" json:"subject5MaxMarks"`
	Subject5Obtained int    `bun:"subject5_obtained_marks,notnull,default:0" json:"subject5ObtainedMarks"`
	Subject6Name     string `bun:"subject6_name" json:"subject6Name"`
	Subject6Max      int    `bun:"subject6_max_marks,notnull,default:100" json:"subject6MaxMarks"`
	Subject6Obtained int    `bun:"subject6_obtained_marks,notnull,default:0" json:"subject6ObtainedMarks"`

	TotalMaxMarks      int             `bun:"total_max_marks,notnull,default:0" json:"totalMaxMarks"`
	TotalObtainedMarks int             `bun:"total_obtained_marks,notnull,default:0" json:"totalObtainedMarks"`
	Percentage         decimal.Decimal `bun:"percentage,notnull,type:numeric(5,2)" json:"percentage"`
	Grade              string          `bun:"grade" json:"grade"`
	OverallStatus      string          `bun:"overall_status" json:"overallStatus"`

	ExamDate           time.Time `bun:"exam_date,notnull,default:current_date" json:"examDate"`
	PromotionProcessed bool      `bun:"promotion_processed,notnull,default:false" json:"promotionProcessed"`
	CreatedAt          time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}

// Subjects returns the six subject slots as a slice.
func (e *Exam) Subjects() [MaxSubjects]SubjectMark {
	return [MaxSubjects]SubjectMark{
		{e.Subject1Name, e.Subject1Max, e.Subject1Obtained},
		{e.Subject2Name, e.Subject2Max, e.Subject2Obtained},
		{e.Subject3Name, e.Subject3Max, e.Subject3Obtained},
		{e.Subject4Name, e.Subject4Max, e.Subject4Obtained},
		{e.Subject5Name, e.Subject5Max, e.Subject5Obtained},
		{e.Subject6Name, e.Subject6Max, e.Subject6Obtained},
	}
}

// Score recomputes totals, percentage, grade and overall status from the
// present subjects. Slots with an empty subject name are ignored.
func (e *Exam) Score() {
	totalMax, totalObtained := 0, 0
	for _, subject := range e.Subjects() {
		if !subject.present() {
			continue
		}
		totalMax += subject.MaxMarks
		totalObtained += subject.Obtained
	}

	e.TotalMaxMarks = totalMax
	e.TotalObtainedMarks = totalObtained
	e.Percentage = feecalc.Percentage(totalObtained, totalMax)
	e.Grade = feecalc.Grade(e.Percentage)
	if feecalc.Pass(e.Percentage) {
		e.OverallStatus = StatusPass
	} else {
		e.OverallStatus = StatusFail
	}
}
