package student

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"college-erp/internal/metrics"

	"github.com/uptrace/bun"
)

var ErrStudentNotFound = errors.New("student not found")

// Filter narrows student listings. Zero values mean "any".
type Filter struct {
	Course   string
	Gender   string
	Category string
	Status   string
	Search   string
	Limit    int
	Offset   int
}

// StatusCount is one row of the status summary.
type StatusCount struct {
	Status string `bun:"student_status" json:"status"`
	Count  int    `bun:"count" json:"count"`
}

// CourseCount is one row of the per-course summary.
type CourseCount struct {
	Course string `bun:"current_course" json:"course"`
	Count  int    `bun:"count" json:"count"`
}

// GenderCount is one row of the per-gender summary.
type GenderCount struct {
	Gender string `bun:"gender" json:"gender"`
	Count  int    `bun:"count" json:"count"`
}

// CategoryCount is one row of the per-category summary.
type CategoryCount struct {
	Category string `bun:"category" json:"category"`
	Count    int    `bun:"count" json:"count"`
}

type Repository interface {
	CreateTx(ctx context.Context, idb bun.IDB, student *Student) error
	GetAll(ctx context.Context, filter Filter) ([]Student, int, error)
	GetByID(ctx context.Context, id int) (*Student, error)
	GetByUniqueID(ctx context.Context, uniqueID string) (*Student, error)
	Update(ctx context.Context, student *Student) error
	UpdateTx(ctx context.Context, idb bun.IDB, student *Student) error
	DeleteCascadeTx(ctx context.Context, idb bun.IDB, id int) error
	CountByStatus(ctx context.Context) ([]StatusCount, error)
	CountByCourse(ctx context.Context) ([]CourseCount, error)
	CountByGender(ctx context.Context) ([]GenderCount, error)
	CountByCategory(ctx context.Context) ([]CategoryCount, error)
	IDsWithoutLedgerRow(ctx context.Context) ([]int, error)
}

type repository struct {
	db      *bun.DB
	metrics *metrics.Metrics
}

func NewRepository(db *bun.DB, m *metrics.Metrics) Repository {
	return &repository{
		db:      db,
		metrics: m,
	}
}

func (r *repository) CreateTx(ctx context.Context, idb bun.IDB, student *Student) error {
	start := time.Now()
	_, err := idb.NewInsert().Model(student).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "students", time.Since(start), err)

	return err
}

func (r *repository) GetAll(ctx context.Context, filter Filter) ([]Student, int, error) {
	start := time.Now()
	var students []Student

	q := r.db.NewSelect().Model(&students)
	if filter.Course != "" {
		q = q.Where("current_course = ?", filter.Course)
	}
	if filter.Gender != "" {
		q = q.Where("gender = ?", filter.Gender)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Status != "" {
		q = q.Where("student_status = ?", filter.Status)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("first_name ILIKE ?", pattern).
				WhereOr("last_name ILIKE ?", pattern).
				WhereOr("student_unique_id ILIKE ?", pattern)
		})
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}

	total, err := q.Order("id ASC").ScanAndCount(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "students", time.Since(start), err)

	return students, total, err
}

func (r *repository) GetByID(ctx context.Context, id int) (*Student, error) {
	start := time.Now()
	student := new(Student)
	err := r.db.NewSelect().Model(student).Where("id = ?", id).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "students", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return student, nil
}

func (r *repository) GetByUniqueID(ctx context.Context, uniqueID string) (*Student, error) {
	start := time.Now()
	student := new(Student)
	err := r.db.NewSelect().Model(student).Where("student_unique_id = ?", uniqueID).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "students", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return student, nil
}

func (r *repository) Update(ctx context.Context, student *Student) error {
	return r.UpdateTx(ctx, r.db, student)
}

func (r *repository) UpdateTx(ctx context.Context, idb bun.IDB, student *Student) error {
	start := time.Now()
	result, err := idb.NewUpdate().Model(student).WherePK().Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "students", time.Since(start), err)

	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrStudentNotFound
	}
	return nil
}

// DeleteCascadeTx removes a student and all dependent rows. Dependents are
// addressed by table name so the package does not import the fee, invoice
// and exam models.
func (r *repository) DeleteCascadeTx(ctx context.Context, idb bun.IDB, id int) error {
	for _, table := range []string{"invoices", "exams", "college_fees"} {
		start := time.Now()
		_, err := idb.NewDelete().
			Table(table).
			Where("student_id = ?", id).
			Exec(ctx)
		r.metrics.Database.RecordQuery(ctx, "delete", table, time.Since(start), err)
		if err != nil {
			return err
		}
	}

	start := time.Now()
	result, err := idb.NewDelete().Model((*Student)(nil)).Where("id = ?", id).Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "delete", "students", time.Since(start), err)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrStudentNotFound
	}
	return nil
}

func (r *repository) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	start := time.Now()
	var counts []StatusCount
	err := r.db.NewSelect().
		Model((*Student)(nil)).
		Column("student_status").
		ColumnExpr("count(*) AS count").
		Group("student_status").
		Scan(ctx, &counts)

	r.metrics.Database.RecordQuery(ctx, "select", "students", time.Since(start), err)

	return counts, err
}

func (r *repository) CountByCourse(ctx context.Context) ([]CourseCount, error) {
	start := time.Now()
	var counts []CourseCount
	err := r.db.NewSelect().
		Model((*Student)(nil)).
		Column("current_course").
		ColumnExpr("count(*) AS count").
		Group("current_course").
		Order("count DESC").
		Scan(ctx, &counts)

	r.metrics.Database.RecordQuery(ctx, "select", "students", time.Since(start), err)

	return counts, err
}

func (r *repository) CountByGender(ctx context.Context) ([]GenderCount, error) {
	start := time.Now()
	var counts []GenderCount
	err := r.db.NewSelect().
		Model((*Student)(nil)).
		Column("gender").
		ColumnExpr("count(*) AS count").
		Group("gender").
		Scan(ctx, &counts)

	r.metrics.Database.RecordQuery(ctx, "select", "students", time.Since(start), err)

	return counts, err
}

func (r *repository) CountByCategory(ctx context.Context) ([]CategoryCount, error) {
	start := time.Now()
	var counts []CategoryCount
	err := r.db.NewSelect().
		Model((*Student)(nil)).
		Column("category").
		ColumnExpr("count(*) AS count").
		Group("category").
		Scan(ctx, &counts)

	r.metrics.Database.RecordQuery(ctx, "select", "students", time.Since(start), err)

	return counts, err
}

// IDsWithoutLedgerRow returns students that have no fee record yet.
func (r *repository) IDsWithoutLedgerRow(ctx context.Context) ([]int, error) {
	start := time.Now()
	var ids []int
	err := r.db.NewSelect().
		Model((*Student)(nil)).
		Column("id").
		Where("id NOT IN (SELECT student_id FROM college_fees)").
		Order("id ASC").
		Scan(ctx, &ids)

	r.metrics.Database.RecordQuery(ctx, "select", "students", time.Since(start), err)

	return ids, err
}
