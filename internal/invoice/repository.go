package invoice

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"college-erp/internal/metrics"

	"github.com/uptrace/bun"
)

var ErrInvoiceNotFound = errors.New("invoice not found")

// Filter narrows invoice listings. Zero values mean "any".
type Filter struct {
	StudentID int
	From      time.Time
	To        time.Time
	Search    string
	Limit     int
	Offset    int
}

type Repository interface {
	CreateTx(ctx context.Context, idb bun.IDB, inv *Invoice) error
	GetByID(ctx context.Context, id int) (*Invoice, error)
	GetByNumber(ctx context.Context, number string) (*Invoice, error)
	List(ctx context.Context, filter Filter) ([]Invoice, int, error)
	MarkPrinted(ctx context.Context, id int) error
	Recent(ctx context.Context, limit int) ([]Invoice, error)
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

func (r *repository) CreateTx(ctx context.Context, idb bun.IDB, inv *Invoice) error {
	start := time.Now()
	_, err := idb.NewInsert().Model(inv).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "invoices", time.Since(start), err)

	return err
}

func (r *repository) GetByID(ctx context.Context, id int) (*Invoice, error) {
	start := time.Now()
	inv := new(Invoice)
	err := r.db.NewSelect().Model(inv).Where("id = ?", id).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "invoices", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}
	return inv, nil
}

func (r *repository) GetByNumber(ctx context.Context, number string) (*Invoice, error) {
	start := time.Now()
	inv := new(Invoice)
	err := r.db.NewSelect().Model(inv).Where("invoice_number = ?", number).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "invoices", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}
	return inv, nil
}

func (r *repository) List(ctx context.Context, filter Filter) ([]Invoice, int, error) {
	start := time.Now()
	var invoices []Invoice

	q := r.db.NewSelect().Model(&invoices)
	if filter.StudentID > 0 {
		q = q.Where("student_id = ?", filter.StudentID)
	}
	if !filter.From.IsZero() {
		q = q.Where("date_time >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		q = q.Where("date_time < ?", filter.To)
	}
	if filter.Search != "" {
		q = q.Where("invoice_number ILIKE ?", "%"+filter.Search+"%")
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}

	total, err := q.Order("date_time DESC").ScanAndCount(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "invoices", time.Since(start), err)

	return invoices, total, err
}

func (r *repository) MarkPrinted(ctx context.Context, id int) error {
	start := time.Now()
	result, err := r.db.NewUpdate().
		Model((*Invoice)(nil)).
		Set("original_invoice_printed = true").
		Where("id = ?", id).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "invoices", time.Since(start), err)

	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrInvoiceNotFound
	}
	return nil
}

func (r *repository) Recent(ctx context.Context, limit int) ([]Invoice, error) {
	start := time.Now()
	var invoices []Invoice
	err := r.db.NewSelect().
		Model(&invoices).
		Order("date_time DESC").
		Limit(limit).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "invoices", time.Since(start), err)

	return invoices, err
}
