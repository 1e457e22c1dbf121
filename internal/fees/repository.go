package fees

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"college-erp/internal/metrics"

	"github.com/uptrace/bun"
)

var ErrNoLedger = errors.New("no ledger row for student")

type Repository interface {
	CreateTx(ctx context.Context, idb bun.IDB, row *CollegeFees) error
	GetByID(ctx context.Context, id int) (*CollegeFees, error)
	GetByStudent(ctx context.Context, studentID int) ([]CollegeFees, error)
	GetLatestByStudent(ctx context.Context, studentID int) (*CollegeFees, error)
	// GetLatestByStudentForUpdate row-locks the latest ledger row so the
	// slot-allocation protocol is race-free. Must run inside idb's
	// transaction.
	GetLatestByStudentForUpdate(ctx context.Context, idb bun.IDB, studentID int) (*CollegeFees, error)
	GetAll(ctx context.Context) ([]CollegeFees, error)
	GetByStudentTx(ctx context.Context, idb bun.IDB, studentID int) ([]CollegeFees, error)
	Update(ctx context.Context, row *CollegeFees) error
	UpdateTx(ctx context.Context, idb bun.IDB, row *CollegeFees) error
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

func (r *repository) CreateTx(ctx context.Context, idb bun.IDB, row *CollegeFees) error {
	start := time.Now()
	_, err := idb.NewInsert().Model(row).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "college_fees", time.Since(start), err)

	return err
}

func (r *repository) GetByID(ctx context.Context, id int) (*CollegeFees, error) {
	start := time.Now()
	row := new(CollegeFees)
	err := r.db.NewSelect().Model(row).Where("id = ?", id).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "college_fees", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoLedger
		}
		return nil, err
	}
	return row, nil
}

func (r *repository) GetByStudent(ctx context.Context, studentID int) ([]CollegeFees, error) {
	return r.GetByStudentTx(ctx, r.db, studentID)
}

func (r *repository) GetByStudentTx(ctx context.Context, idb bun.IDB, studentID int) ([]CollegeFees, error) {
	start := time.Now()
	var rows []CollegeFees
	err := idb.NewSelect().
		Model(&rows).
		Where("student_id = ?", studentID).
		Order("id ASC").
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "college_fees", time.Since(start), err)

	return rows, err
}

func (r *repository) GetLatestByStudent(ctx context.Context, studentID int) (*CollegeFees, error) {
	start := time.Now()
	row := new(CollegeFees)
	err := r.db.NewSelect().
		Model(row).
		Where("student_id = ?", studentID).
		Order("id DESC").
		Limit(1).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "college_fees", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoLedger
		}
		return nil, err
	}
	return row, nil
}

func (r *repository) GetLatestByStudentForUpdate(ctx context.Context, idb bun.IDB, studentID int) (*CollegeFees, error) {
	start := time.Now()
	row := new(CollegeFees)
	err := idb.NewSelect().
		Model(row).
		Where("student_id = ?", studentID).
		Order("id DESC").
		Limit(1).
		For("UPDATE").
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "college_fees", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoLedger
		}
		return nil, err
	}
	return row, nil
}

func (r *repository) GetAll(ctx context.Context) ([]CollegeFees, error) {
	start := time.Now()
	var rows []CollegeFees
	err := r.db.NewSelect().Model(&rows).Order("id ASC").Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "college_fees", time.Since(start), err)

	return rows, err
}

func (r *repository) Update(ctx context.Context, row *CollegeFees) error {
	return r.UpdateTx(ctx, r.db, row)
}

func (r *repository) UpdateTx(ctx context.Context, idb bun.IDB, row *CollegeFees) error {
	start := time.Now()
	result, err := idb.NewUpdate().Model(row).WherePK().Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "college_fees", time.Since(start), err)

	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNoLedger
	}
	return nil
}
