package exam

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"college-erp/internal/metrics"

	"github.com/uptrace/bun"
)

var ErrExamNotFound = errors.New("exam not found")

type Repository interface {
	Create(ctx context.Context, e *Exam) (*Exam, error)
	GetByID(ctx context.Context, id int) (*Exam, error)
	GetByStudent(ctx context.Context, studentID int) ([]Exam, error)
	// LatestPassedUnprocessed finds the exam a promotion acts on.
	LatestPassedUnprocessed(ctx context.Context, studentID int) (*Exam, error)
	Update(ctx context.Context, e *Exam) error
	UpdateTx(ctx context.Context, idb bun.IDB, e *Exam) error
	Delete(ctx context.Context, id int) error
	ResetPromotion(ctx context.Context, studentID int) (int64, error)
	ResetAllPromotions(ctx context.Context) (int64, error)
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

func (r *repository) Create(ctx context.Context, e *Exam) (*Exam, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(e).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "exams", time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Exam, error) {
	start := time.Now()
	e := new(Exam)
	err := r.db.NewSelect().Model(e).Where("id = ?", id).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "exams", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *repository) GetByStudent(ctx context.Context, studentID int) ([]Exam, error) {
	start := time.Now()
	var exams []Exam
	err := r.db.NewSelect().
		Model(&exams).
		Where("student_id = ?", studentID).
		Order("exam_date DESC", "id DESC").
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "exams", time.Since(start), err)

	return exams, err
}

func (r *repository) LatestPassedUnprocessed(ctx context.Context, studentID int) (*Exam, error) {
	start := time.Now()
	e := new(Exam)
	err := r.db.NewSelect().
		Model(e).
		Where("student_id = ?", studentID).
		Where("overall_status = ?", StatusPass).
		Where("promotion_processed = false").
		Order("exam_date DESC", "id DESC").
		Limit(1).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "exams", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *repository) Update(ctx context.Context, e *Exam) error {
	return r.UpdateTx(ctx, r.db, e)
}

func (r *repository) UpdateTx(ctx context.Context, idb bun.IDB, e *Exam) error {
	start := time.Now()
	result, err := idb.NewUpdate().Model(e).WherePK().Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "exams", time.Since(start), err)

	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrExamNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int) error {
	start := time.Now()
	result, err := r.db.NewDelete().Model((*Exam)(nil)).Where("id = ?", id).Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", "exams", time.Since(start), err)

	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrExamNotFound
	}
	return nil
}

func (r *repository) ResetPromotion(ctx context.Context, studentID int) (int64, error) {
	start := time.Now()
	result, err := r.db.NewUpdate().
		Model((*Exam)(nil)).
		Set("promotion_processed = false").
		Where("student_id = ?", studentID).
		Where("promotion_processed = true").
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "exams", time.Since(start), err)

	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *repository) ResetAllPromotions(ctx context.Context) (int64, error) {
	start := time.Now()
	result, err := r.db.NewUpdate().
		Model((*Exam)(nil)).
		Set("promotion_processed = false").
		Where("promotion_processed = true").
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "exams", time.Since(start), err)

	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
