package course

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/uptrace/bun"
)

var ErrInvalidInput = errors.New("invalid input")

type Service interface {
	CreateCourse(ctx context.Context, c *Course) (*Course, error)
	GetCourse(ctx context.Context, id int) (*Course, error)
	GetCourseByShortName(ctx context.Context, shortName string) (*Course, error)
	GetAllCourses(ctx context.Context) ([]Course, error)
	UpdateCourse(ctx context.Context, c *Course) error
	DeleteCourse(ctx context.Context, id int) error

	CreateOffering(ctx context.Context, d *CourseDetail) (*CourseDetail, error)
	GetOffering(ctx context.Context, id int) (*CourseDetail, error)
	GetAllOfferings(ctx context.Context) ([]CourseDetail, error)
	UpdateOffering(ctx context.Context, d *CourseDetail) error
	DeleteOffering(ctx context.Context, id int) error

	// ResolveOffering finds the offering for a free-text course name:
	// exact match first, then prefix match on the first token.
	ResolveOffering(ctx context.Context, fullName string) (*CourseDetail, error)
	// Progression returns the offering names of a course ordered by
	// year/semester, for promotion decisions.
	Progression(ctx context.Context, fullName string) ([]string, error)

	CreateSubject(ctx context.Context, s *Subject) (*Subject, error)
	GetSubjectsByCourse(ctx context.Context, shortName string) ([]Subject, error)
	GetAllSubjects(ctx context.Context) ([]Subject, error)
	RenameSubject(ctx context.Context, subjectID int, newName string) error
	DeleteSubject(ctx context.Context, id int) error
}

type service struct {
	db     *bun.DB
	repo   Repository
	logger *slog.Logger
}

func NewService(db *bun.DB, repo Repository, logger *slog.Logger) Service {
	return &service{db: db, repo: repo, logger: logger}
}

func (s *service) CreateCourse(ctx context.Context, c *Course) (*Course, error) {
	c.ShortName = strings.ToUpper(strings.TrimSpace(c.ShortName))
	return s.repo.CreateCourse(ctx, c)
}

func (s *service) GetCourse(ctx context.Context, id int) (*Course, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.GetCourseByID(ctx, id)
}

func (s *service) GetCourseByShortName(ctx context.Context, shortName string) (*Course, error) {
	shortName = strings.ToUpper(strings.TrimSpace(shortName))
	if shortName == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.GetCourseByShortName(ctx, shortName)
}

func (s *service) GetAllCourses(ctx context.Context) ([]Course, error) {
	return s.repo.GetAllCourses(ctx)
}

func (s *service) UpdateCourse(ctx context.Context, c *Course) error {
	if c.ID <= 0 {
		return ErrInvalidInput
	}
	c.ShortName = strings.ToUpper(strings.TrimSpace(c.ShortName))
	return s.repo.UpdateCourse(ctx, c)
}

func (s *service) DeleteCourse(ctx context.Context, id int) error {
	if id <= 0 {
		return ErrInvalidInput
	}
	return s.repo.DeleteCourse(ctx, id)
}

func (s *service) CreateOffering(ctx context.Context, d *CourseDetail) (*CourseDetail, error) {
	d.ShortName = strings.ToUpper(strings.TrimSpace(d.ShortName))
	d.RecomputeTotal()
	return s.repo.CreateDetail(ctx, d)
}

func (s *service) GetOffering(ctx context.Context, id int) (*CourseDetail, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.GetDetailByID(ctx, id)
}

func (s *service) GetAllOfferings(ctx context.Context) ([]CourseDetail, error) {
	return s.repo.GetAllDetails(ctx)
}

func (s *service) UpdateOffering(ctx context.Context, d *CourseDetail) error {
	if d.ID <= 0 {
		return ErrInvalidInput
	}
	d.RecomputeTotal()
	return s.repo.UpdateDetail(ctx, d)
}

func (s *service) DeleteOffering(ctx context.Context, id int) error {
	if id <= 0 {
		return ErrInvalidInput
	}
	return s.repo.DeleteDetail(ctx, id)
}

func (s *service) ResolveOffering(ctx context.Context, fullName string) (*CourseDetail, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, ErrDetailNotFound
	}

	detail, err := s.repo.GetDetailByFullName(ctx, fullName)
	if err == nil {
		return detail, nil
	}
	if !errors.Is(err, ErrDetailNotFound) {
		return nil, err
	}

	token := strings.Fields(fullName)[0]
	s.logger.DebugContext(ctx, "no exact offering match, falling back to prefix", "course", fullName, "prefix", token)
	return s.repo.FindDetailByPrefix(ctx, token)
}

func (s *service) Progression(ctx context.Context, fullName string) ([]string, error) {
	details, err := s.repo.ListDetailsByBaseName(ctx, BaseName(fullName))
	if err != nil {
		return nil, err
	}
	return OrderProgression(details), nil
}

func (s *service) CreateSubject(ctx context.Context, sub *Subject) (*Subject, error) {
	sub.ShortName = strings.ToUpper(strings.TrimSpace(sub.ShortName))
	return s.repo.CreateSubject(ctx, sub)
}

func (s *service) GetSubjectsByCourse(ctx context.Context, shortName string) ([]Subject, error) {
	return s.repo.GetSubjectsByCourse(ctx, shortName)
}

func (s *service) GetAllSubjects(ctx context.Context) ([]Subject, error) {
	return s.repo.GetAllSubjects(ctx)
}

// RenameSubject renames the subject and cascades the change into every
// student row that references the old name, atomically.
func (s *service) RenameSubject(ctx context.Context, subjectID int, newName string) error {
	if subjectID <= 0 || strings.TrimSpace(newName) == "" {
		return ErrInvalidInput
	}

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		oldName, students, err := s.repo.RenameSubjectTx(ctx, tx, subjectID, newName)
		if err != nil {
			return err
		}
		s.logger.InfoContext(ctx, "subject renamed",
			"subject_id", subjectID, "old", oldName, "new", newName, "students_updated", students)
		return nil
	})
}

func (s *service) DeleteSubject(ctx context.Context, id int) error {
	if id <= 0 {
		return ErrInvalidInput
	}
	return s.repo.DeleteSubject(ctx, id)
}
