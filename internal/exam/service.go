package exam

import (
	"context"
	"errors"
	"log/slog"

	"college-erp/internal/course"
	"college-erp/internal/fees"
	"college-erp/internal/metrics"
	"college-erp/internal/notify"
	"college-erp/internal/student"

	"github.com/uptrace/bun"
)

var (
	ErrExamLocked      = errors.New("exam already processed for promotion")
	ErrNotEligible     = errors.New("student has no passed exam awaiting promotion")
	ErrStudentInactive = errors.New("student is not active")
	ErrInvalidInput    = errors.New("invalid input")
)

// PromotionResult reports what a promotion did.
type PromotionResult struct {
	ExamID       int    `json:"examId"`
	NextOffering string `json:"nextOffering,omitempty"`
	Graduated    bool   `json:"graduated"`
}

type Service interface {
	// Save scores and persists an exam. Existing records stay mutable
	// until their promotion is processed.
	Save(ctx context.Context, e *Exam) (*Exam, error)
	Get(ctx context.Context, id int) (*Exam, error)
	GetByStudent(ctx context.Context, studentID int) ([]Exam, error)
	Delete(ctx context.Context, id int) error

	// Promote advances a student to the next offering of their course,
	// or graduates them from the final one.
	Promote(ctx context.Context, studentID int) (*PromotionResult, error)
	ResetPromotion(ctx context.Context, studentID int) (int64, error)
	ResetAllPromotions(ctx context.Context) (int64, error)
}

type service struct {
	db       *bun.DB
	repo     Repository
	students student.Repository
	courses  course.Service
	ledger   fees.Service
	producer notify.Producer
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewService(bdb *bun.DB, repo Repository, students student.Repository, courses course.Service, ledger fees.Service, producer notify.Producer, logger *slog.Logger, m *metrics.Metrics) Service {
	return &service{
		db:       bdb,
		repo:     repo,
		students: students,
		courses:  courses,
		ledger:   ledger,
		producer: producer,
		logger:   logger,
		metrics:  m,
	}
}

func (s *service) Save(ctx context.Context, e *Exam) (*Exam, error) {
	if e.StudentID <= 0 || e.ExamName == "" {
		return nil, ErrInvalidInput
	}

	stu, err := s.students.GetByID(ctx, e.StudentID)
	if err != nil {
		return nil, err
	}

	// Snapshot the course at exam time.
	e.CourseFullName = stu.CurrentCourse
	if offering, oerr := s.courses.ResolveOffering(ctx, stu.CurrentCourse); oerr == nil {
		e.CourseDetailID = offering.ID
		e.CourseFullName = offering.FullName
		if c, cerr := s.courses.GetCourseByShortName(ctx, offering.ShortName); cerr == nil {
			e.CourseID = c.ID
		}
	}

	e.Score()

	if e.ID == 0 {
		created, err := s.repo.Create(ctx, e)
		if err != nil {
			return nil, err
		}
		s.metrics.RecordExamRecorded(ctx)
		s.logger.InfoContext(ctx, "exam recorded",
			"student_id", stu.UniqueID, "exam", e.ExamName,
			"percentage", e.Percentage.String(), "grade", e.Grade)
		return created, nil
	}

	existing, err := s.repo.GetByID(ctx, e.ID)
	if err != nil {
		return nil, err
	}
	if existing.PromotionProcessed {
		return nil, ErrExamLocked
	}
	e.PromotionProcessed = false
	e.CreatedAt = existing.CreatedAt

	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *service) Get(ctx context.Context, id int) (*Exam, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetByStudent(ctx context.Context, studentID int) ([]Exam, error) {
	return s.repo.GetByStudent(ctx, studentID)
}

func (s *service) Delete(ctx context.Context, id int) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.PromotionProcessed {
		return ErrExamLocked
	}
	return s.repo.Delete(ctx, id)
}

// Promote flips promotion_processed on the qualifying exam, moves the
// student to the next offering and opens its ledger row, all in one
// transaction. A student on the final offering graduates instead.
func (s *service) Promote(ctx context.Context, studentID int) (*PromotionResult, error) {
	stu, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if stu.Status != student.StatusActive {
		return nil, ErrStudentInactive
	}

	qualifying, err := s.repo.LatestPassedUnprocessed(ctx, studentID)
	if err != nil {
		if errors.Is(err, ErrExamNotFound) {
			return nil, ErrNotEligible
		}
		return nil, err
	}

	progression, err := s.courses.Progression(ctx, stu.CurrentCourse)
	if err != nil {
		return nil, err
	}

	next := nextOffering(progression, stu.CurrentCourse)

	result := &PromotionResult{ExamID: qualifying.ID}
	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		qualifying.PromotionProcessed = true
		if err := s.repo.UpdateTx(ctx, tx, qualifying); err != nil {
			return err
		}

		if next == "" {
			// Final offering: the student graduates.
			stu.Status = student.StatusGraduated
			result.Graduated = true
			return s.students.UpdateTx(ctx, tx, stu)
		}

		stu.CurrentCourse = next
		result.NextOffering = next
		if err := s.students.UpdateTx(ctx, tx, stu); err != nil {
			return err
		}
		return s.ledger.OpenNextTx(ctx, tx, stu, next)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordStudentPromoted(ctx)
	s.logger.InfoContext(ctx, "student promoted",
		"student_id", stu.UniqueID, "next_offering", next, "graduated", result.Graduated)

	event := notify.StudentPromoted(stu.ID, stu.UniqueID, next)
	if err := s.producer.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish promotion event", "error", err)
	}

	return result, nil
}

// nextOffering returns the offering after current in the ordered
// progression, or "" when current is last or absent.
func nextOffering(progression []string, current string) string {
	for i, name := range progression {
		if name == current && i+1 < len(progression) {
			return progression[i+1]
		}
	}
	return ""
}

func (s *service) ResetPromotion(ctx context.Context, studentID int) (int64, error) {
	if studentID <= 0 {
		return 0, ErrInvalidInput
	}
	return s.repo.ResetPromotion(ctx, studentID)
}

func (s *service) ResetAllPromotions(ctx context.Context) (int64, error) {
	return s.repo.ResetAllPromotions(ctx)
}
