package student

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"college-erp/internal/course"
	"college-erp/internal/db"
	"college-erp/internal/identity"
	"college-erp/internal/metrics"
	"college-erp/internal/notify"

	"github.com/uptrace/bun"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrCourseUnresolved = errors.New("course offering not found for student")
)

// Ledger is the fee-side surface the registry needs. Implemented by the
// fees service; injected to keep the dependency one-way.
type Ledger interface {
	OpenTx(ctx context.Context, idb bun.IDB, s *Student) error
	SyncCourseLinkageTx(ctx context.Context, idb bun.IDB, s *Student) error
}

type Service interface {
	Create(ctx context.Context, student *Student) (*Student, error)
	GetAll(ctx context.Context, filter Filter) ([]Student, int, error)
	GetByID(ctx context.Context, id int) (*Student, error)
	GetByUniqueID(ctx context.Context, uniqueID string) (*Student, error)
	Update(ctx context.Context, student *Student) error
	Delete(ctx context.Context, id int) error
	Summary(ctx context.Context) (*Summary, error)
}

// Summary aggregates the registry for the admissions overview.
type Summary struct {
	Total      int             `json:"total"`
	ByStatus   []StatusCount   `json:"byStatus"`
	ByCourse   []CourseCount   `json:"byCourse"`
	ByGender   []GenderCount   `json:"byGender"`
	ByCategory []CategoryCount `json:"byCategory"`
}

type service struct {
	db       *bun.DB
	repo     Repository
	courses  course.Service
	ledger   Ledger
	producer notify.Producer
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewService(bdb *bun.DB, repo Repository, courses course.Service, ledger Ledger, producer notify.Producer, logger *slog.Logger, m *metrics.Metrics) Service {
	return &service{
		db:       bdb,
		repo:     repo,
		courses:  courses,
		ledger:   ledger,
		producer: producer,
		logger:   logger,
		metrics:  m,
	}
}

// Create mints a unique student ID, inserts the student and opens the fee
// ledger row, all in one transaction. A unique-constraint race on the ID
// retries with the next suffix.
func (s *service) Create(ctx context.Context, student *Student) (*Student, error) {
	if student.CurrentCourse == "" {
		return nil, ErrInvalidInput
	}

	offering, err := s.courses.ResolveOffering(ctx, student.CurrentCourse)
	if err != nil {
		if errors.Is(err, course.ErrDetailNotFound) {
			return nil, ErrCourseUnresolved
		}
		return nil, err
	}

	student.UpdateConcatenatedAddress()
	if student.Status == "" {
		student.Status = StatusActive
	}
	if student.ScholarshipStatus == "" {
		student.ScholarshipStatus = ScholarshipNotApplied
	}
	if student.RebateMeeraScholarship == "" {
		student.RebateMeeraScholarship = ScholarshipNotApplied
	}
	if student.AdmissionDate.IsZero() {
		student.AdmissionDate = time.Now()
	}

	year := student.AdmissionDate.Year()

	for attempt := 0; attempt < identity.MaxMintRetries; attempt++ {
		err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			uniqueID, err := identity.NextStudentID(ctx, tx, offering.ShortName, year, attempt)
			if err != nil {
				return err
			}
			student.UniqueID = uniqueID

			if err := s.repo.CreateTx(ctx, tx, student); err != nil {
				return err
			}
			return s.ledger.OpenTx(ctx, tx, student)
		})
		if err == nil {
			s.metrics.RecordStudentAdmitted(ctx)
			s.logger.InfoContext(ctx, "student admitted",
				"student_id", student.UniqueID, "course", student.CurrentCourse)

			event := notify.StudentAdmitted(student.ID, student.UniqueID, student.CurrentCourse)
			if perr := s.producer.Publish(ctx, event); perr != nil {
				s.logger.WarnContext(ctx, "failed to publish admission event", "error", perr)
			}
			return student, nil
		}
		if !db.IsIntegrityViolation(err) {
			return nil, err
		}
		// Another admission took the same suffix; reset the PK so the
		// retry inserts a fresh row.
		student.ID = 0
		s.logger.WarnContext(ctx, "student id collision, retrying",
			"attempted_id", student.UniqueID, "attempt", attempt+1)
	}

	return nil, identity.ErrIDCollision
}

func (s *service) GetAll(ctx context.Context, filter Filter) ([]Student, int, error) {
	return s.repo.GetAll(ctx, filter)
}

func (s *service) GetByID(ctx context.Context, id int) (*Student, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetByUniqueID(ctx context.Context, uniqueID string) (*Student, error) {
	if uniqueID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.GetByUniqueID(ctx, uniqueID)
}

// Update persists a modified student. The derived address is always
// rebuilt; a course change re-links the student's ledger rows.
func (s *service) Update(ctx context.Context, student *Student) error {
	if student.ID <= 0 {
		return ErrInvalidInput
	}

	existing, err := s.repo.GetByID(ctx, student.ID)
	if err != nil {
		return err
	}

	student.UniqueID = existing.UniqueID
	student.UpdateConcatenatedAddress()

	courseChanged := existing.CurrentCourse != student.CurrentCourse

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := s.repo.UpdateTx(ctx, tx, student); err != nil {
			return err
		}
		if courseChanged {
			return s.ledger.SyncCourseLinkageTx(ctx, tx, student)
		}
		return nil
	})
}

func (s *service) Delete(ctx context.Context, id int) error {
	if id <= 0 {
		return ErrInvalidInput
	}
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return s.repo.DeleteCascadeTx(ctx, tx, id)
	})
}

func (s *service) Summary(ctx context.Context) (*Summary, error) {
	byStatus, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	byCourse, err := s.repo.CountByCourse(ctx)
	if err != nil {
		return nil, err
	}
	byGender, err := s.repo.CountByGender(ctx)
	if err != nil {
		return nil, err
	}
	byCategory, err := s.repo.CountByCategory(ctx)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, c := range byStatus {
		total += c.Count
	}
	return &Summary{
		Total:      total,
		ByStatus:   byStatus,
		ByCourse:   byCourse,
		ByGender:   byGender,
		ByCategory: byCategory,
	}, nil
}
