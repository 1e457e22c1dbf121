package dashboard

import (
	"context"
	"time"

	"college-erp/internal/feecalc"
	"college-erp/internal/fees"
	"college-erp/internal/invoice"
	"college-erp/internal/metrics"
	"college-erp/internal/student"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Totals are the headline numbers of the back-office landing page.
type Totals struct {
	TotalStudents  int             `json:"totalStudents"`
	ActiveStudents int             `json:"activeStudents"`
	TotalCollected decimal.Decimal `json:"totalCollected"`
	PendingDues    decimal.Decimal `json:"pendingDues"`
}

// FeeStatusCounts buckets ledger rows by payment status.
type FeeStatusCounts struct {
	Paid    int `json:"paid"`
	Partial int `json:"partial"`
	Pending int `json:"pending"`
}

type Repository interface {
	Totals(ctx context.Context) (*Totals, error)
	FeeStatusCounts(ctx context.Context) (*FeeStatusCounts, error)
	RecentAdmissions(ctx context.Context, limit int) ([]student.Student, error)
	RecentPayments(ctx context.Context, limit int) ([]invoice.Invoice, error)
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

func (r *repository) Totals(ctx context.Context) (*Totals, error) {
	totals := &Totals{
		TotalCollected: decimal.Zero,
		PendingDues:    decimal.Zero,
	}

	start := time.Now()
	total, err := r.db.NewSelect().Model((*student.Student)(nil)).Count(ctx)
	r.metrics.Database.RecordQuery(ctx, "select", "students", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	totals.TotalStudents = total

	start = time.Now()
	active, err := r.db.NewSelect().
		Model((*student.Student)(nil)).
		Where("student_status = ?", student.StatusActive).
		Count(ctx)
	r.metrics.Database.RecordQuery(ctx, "select", "students", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	totals.ActiveStudents = active

	var sums struct {
		Collected decimal.Decimal `bun:"collected"`
		Pending   decimal.Decimal `bun:"pending"`
	}
	start = time.Now()
	err = r.db.NewSelect().
		Model((*fees.CollegeFees)(nil)).
		ColumnExpr("COALESCE(SUM(installment_1 + installment_2 + installment_3 + installment_4 + installment_5 + installment_6), 0) AS collected").
		ColumnExpr("COALESCE(SUM(GREATEST(total_fee - total_fees_paid, 0)), 0) AS pending").
		Scan(ctx, &sums)
	r.metrics.Database.RecordQuery(ctx, "select", "college_fees", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	totals.TotalCollected = sums.Collected
	totals.PendingDues = sums.Pending

	return totals, nil
}

func (r *repository) FeeStatusCounts(ctx context.Context) (*FeeStatusCounts, error) {
	start := time.Now()
	var rows []fees.CollegeFees
	err := r.db.NewSelect().Model(&rows).Scan(ctx)
	r.metrics.Database.RecordQuery(ctx, "select", "college_fees", time.Since(start), err)
	if err != nil {
		return nil, err
	}

	counts := &FeeStatusCounts{}
	for i := range rows {
		switch rows[i].PaymentStatus() {
		case feecalc.StatusPaid:
			counts.Paid++
		case feecalc.StatusPartial:
			counts.Partial++
		default:
			counts.Pending++
		}
	}
	return counts, nil
}

func (r *repository) RecentAdmissions(ctx context.Context, limit int) ([]student.Student, error) {
	start := time.Now()
	var students []student.Student
	err := r.db.NewSelect().
		Model(&students).
		Order("created_at DESC", "id DESC").
		Limit(limit).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "students", time.Since(start), err)

	return students, err
}

func (r *repository) RecentPayments(ctx context.Context, limit int) ([]invoice.Invoice, error) {
	start := time.Now()
	var invoices []invoice.Invoice
	err := r.db.NewSelect().
		Model(&invoices).
		Order("date_time DESC").
		Limit(limit).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "invoices", time.Since(start), err)

	return invoices, err
}
