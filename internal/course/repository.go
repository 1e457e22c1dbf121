package course

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"college-erp/internal/metrics"

	"github.com/uptrace/bun"
)

var (
	ErrCourseNotFound  = errors.New("course not found")
	ErrDetailNotFound  = errors.New("course offering not found")
	ErrSubjectNotFound = errors.New("subject not found")
)

type Repository interface {
	CreateCourse(ctx context.Context, c *Course) (*Course, error)
	GetCourseByID(ctx context.Context, id int) (*Course, error)
	GetCourseByShortName(ctx context.Context, shortName string) (*Course, error)
	GetAllCourses(ctx context.Context) ([]Course, error)
	UpdateCourse(ctx context.Context, c *Course) error
	DeleteCourse(ctx context.Context, id int) error

	CreateDetail(ctx context.Context, d *CourseDetail) (*CourseDetail, error)
	GetDetailByID(ctx context.Context, id int) (*CourseDetail, error)
	GetDetailByFullName(ctx context.Context, fullName string) (*CourseDetail, error)
	FindDetailByPrefix(ctx context.Context, prefix string) (*CourseDetail, error)
	ListDetailsByBaseName(ctx context.Context, baseName string) ([]CourseDetail, error)
	GetAllDetails(ctx context.Context) ([]CourseDetail, error)
	UpdateDetail(ctx context.Context, d *CourseDetail) error
	DeleteDetail(ctx context.Context, id int) error

	CreateSubject(ctx context.Context, s *Subject) (*Subject, error)
	GetSubjectByID(ctx context.Context, id int) (*Subject, error)
	GetSubjectsByCourse(ctx context.Context, shortName string) ([]Subject, error)
	GetAllSubjects(ctx context.Context) ([]Subject, error)
	RenameSubjectTx(ctx context.Context, idb bun.IDB, subjectID int, newName string) (oldName string, students int64, err error)
	DeleteSubject(ctx context.Context, id int) error
}

type repository struct {
	db      *bun.DB
	metrics *metrics.Metrics
}

func NewRepository(db *bun.DB, m *metrics.Metrics) Repository {
	return &repository{db: db, metrics: m}
}

func (r *repository) CreateCourse(ctx context.Context, c *Course) (*Course, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(c).Returning("*").Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "insert", "courses", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *repository) GetCourseByID(ctx context.Context, id int) (*Course, error) {
	start := time.Now()
	c := new(Course)
	err := r.db.NewSelect().Model(c).Where("course_id = ?", id).Scan(ctx)
	r.metrics.Database.RecordQuery(ctx, "select", "courses", time.Since(start), err)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *repository) GetCourseByShortName(ctx context.Context, shortName string) (*Course, error) {
	start := time.Now()
	c := new(Course)
	err := r.db.NewSelect().Model(c).Where("course_short_name = ?", shortName).Scan(ctx)
	r.metrics.Database.RecordQuery(ctx, "select", "courses", time.Since(start), err)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *repository) GetAllCourses(ctx context.Context) ([]Course, error) {
	start := time.Now()
	var courses []Course
	err := r.db.NewSelect().Model(&courses).Order("course_short_name ASC").Scan(ctx)
	r.metrics.Database.RecordQuery(ctx, "select", "courses", time.Since(start), err)
	return courses, err
}

func (r *repository) UpdateCourse(ctx context.Context, c *Course) error {
	start := time.Now()
	result, err := r.db.NewUpdate().Model(c).WherePK().Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "update", "courses", time.Since(start), err)
	if err != nil {
		return err
	}
	return requireAffected(result, ErrCourseNotFound)
}

func (r *repository) DeleteCourse(ctx context.Context, id int) error {
	start := time.Now()
	result, err := r.db.NewDelete().Model(&Course{ID: id}).WherePK().Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "delete", "courses", time.Since(start), err)
	if err != nil {
		return err
	}
	return requireAffected(result, ErrCourseNotFound)
}

func (r *repository) CreateDetail(ctx context.Context, d *CourseDetail) (*CourseDetail, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(d).Returning("*").Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "insert", "course_details", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *repository) GetDetailByID(ctx context.Context, id int) (*CourseDetail, error) {
	start := time.Now()
	d := new(CourseDetail)
	err := r.db.NewSelect().Model(d).Where("cd.id = ?", id).Scan(ctx)
	r.metrics.Database.RecordQuery(ctx, "select", "course_details", time.Since(start), err)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDetailNotFound
		}
		return nil, err
	}
	return d, nil
}

func (r *repository) GetDetailByFullName(ctx context.Context, fullName string) (*CourseDetail, error) {
	start := time.Now()
	d := new(CourseDetail)
	err := r.db.NewSelect().Model(d).Where("course_full_name = ?", fullName).Limit(1).Scan(ctx)
	r.metrics.Database.RecordQuery(ctx, "select", "course_details", time.Since(start), err)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDetailNotFound
		}
		return nil, err
	}
	return d, nil
}

// FindDetailByPrefix is the fallback linkage: match on the first
// whitespace-delimited token of the course name.
func (r *repository) FindDetailByPrefix(ctx context.Context, prefix string) (*CourseDetail, error) {
	start := time.Now()
	d := new(CourseDetail)
	err := r.db.NewSelect().Model(d).
		Where("course_full_name LIKE ?", prefix+"%").
		Order("id ASC").
		Limit(1).
		Scan(ctx)
	r.metrics.Database.RecordQuery(ctx, "select", "course_details", time.Since(start), err)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDetailNotFound
		}
		return nil, err
	}
	return d, nil
}

func (r *repository) ListDetailsByBaseName(ctx context.Context, baseName string) ([]CourseDetail, error) {
	start := time.Now()
	var details []CourseDetail
	err := r.db.NewSelect().Model(&details).
		Where("course_full_name LIKE ?", baseName+"%").
		Scan(ctx)
	r.metrics.Database.RecordQuery(ctx, "select", "course_details", time.Since(start), err)
	return details, err
}

func (r *repository) GetAllDetails(ctx context.Context) ([]CourseDetail, error) {
	start := time.Now()
	var details []CourseDetail
	err := r.db.NewSelect().Model(&details).Order("course_full_name ASC").Scan(ctx)
	r.metrics.Database.RecordQuery(ctx, "select", "course_details", time.Since(start), err)
	return details, err
}

func (r *repository) UpdateDetail(ctx context.Context, d *CourseDetail) error {
	start := time.Now()
	result, err := r.db.NewUpdate().Model(d).WherePK().Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "update", "course_details", time.Since(start), err)
	if err != nil {
		return err
	}
	return requireAffected(result, ErrDetailNotFound)
}

func (r *repository) DeleteDetail(ctx context.Context, id int) error {
	start := time.Now()
	result, err := r.db.NewDelete().Model(&CourseDetail{ID: id}).WherePK().Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "delete", "course_details", time.Since(start), err)
	if err != nil {
		return err
	}
	return requireAffected(result, ErrDetailNotFound)
}

func (r *repository) CreateSubject(ctx context.Context, s *Subject) (*Subject, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(s).Returning("*").Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "insert", "subjects", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *repository) GetSubjectByID(ctx context.Context, id int) (*Subject, error) {
	start := time.Now()
	s := new(Subject)
	err := r.db.NewSelect().Model(s).Where("sub.id = ?", id).Scan(ctx)
	r.metrics.Database.RecordQuery(ctx, "select", "subjects", time.Since(start), err)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubjectNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *repository) GetSubjectsByCourse(ctx context.Context, shortName string) ([]Subject, error) {
	start := time.Now()
	var subjects []Subject
	err := r.db.NewSelect().Model(&subjects).
		Where("course_short_name = ?", shortName).
		Order("subject_name ASC").
		Scan(ctx)
	r.metrics.Database.RecordQuery(ctx, "select", "subjects", time.Since(start), err)
	return subjects, err
}

func (r *repository) GetAllSubjects(ctx context.Context) ([]Subject, error) {
	start := time.Now()
	var subjects []Subject
	err := r.db.NewSelect().Model(&subjects).Order("subject_name ASC").Scan(ctx)
	r.metrics.Database.RecordQuery(ctx, "select", "subjects", time.Since(start), err)
	return subjects, err
}

// RenameSubjectTx renames a subject and cascades the new name into the
// student subject_1..3 references, all on the caller's transaction.
func (r *repository) RenameSubjectTx(ctx context.Context, idb bun.IDB, subjectID int, newName string) (string, int64, error) {
	s := new(Subject)
	if err := idb.NewSelect().Model(s).Where("sub.id = ?", subjectID).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", 0, ErrSubjectNotFound
		}
		return "", 0, err
	}

	oldName := s.SubjectName
	s.SubjectName = newName
	if _, err := idb.NewUpdate().Model(s).WherePK().Exec(ctx); err != nil {
		return "", 0, err
	}

	var cascaded int64
	for _, col := range []string{"subject_1_name", "subject_2_name", "subject_3_name"} {
		result, err := idb.NewUpdate().
			Table("students").
			Set(col+" = ?", newName).
			Where(col+" = ?", oldName).
			Exec(ctx)
		if err != nil {
			return "", 0, err
		}
		if n, err := result.RowsAffected(); err == nil {
			cascaded += n
		}
	}
	return oldName, cascaded, nil
}

func (r *repository) DeleteSubject(ctx context.Context, id int) error {
	start := time.Now()
	result, err := r.db.NewDelete().Model(&Subject{ID: id}).WherePK().Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "delete", "subjects", time.Since(start), err)
	if err != nil {
		return err
	}
	return requireAffected(result, ErrSubjectNotFound)
}

// BaseName strips the year/semester portion of an offering name:
// "Bachelor of Arts - 1st Year" -> "Bachelor of Arts".
func BaseName(fullName string) string {
	if i := strings.Index(fullName, " - "); i >= 0 {
		return fullName[:i]
	}
	return fullName
}

func requireAffected(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}
