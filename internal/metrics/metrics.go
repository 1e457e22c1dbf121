package metrics

import (
	"context"

	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	Database *DatabaseMetrics

	studentsAdmitted       metric.Int64Counter
	invoicesIssued         metric.Int64Counter
	feesCollected          metric.Float64Counter
	examsRecorded          metric.Int64Counter
	studentsPromoted       metric.Int64Counter
	notificationsPublished metric.Int64Counter
}

func New(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.Database, err = NewDatabaseMetrics(meter)
	if err != nil {
		return nil, err
	}

	m.studentsAdmitted, err = meter.Int64Counter(
		"college_erp.students.admitted",
		metric.WithDescription("Total number of students admitted"),
		metric.WithUnit("{student}"),
	)
	if err != nil {
		return nil, err
	}

	m.invoicesIssued, err = meter.Int64Counter(
		"college_erp.invoices.issued",
		metric.WithDescription("Total number of fee invoices issued"),
		metric.WithUnit("{invoice}"),
	)
	if err != nil {
		return nil, err
	}

	m.feesCollected, err = meter.Float64Counter(
		"college_erp.fees.collected",
		metric.WithDescription("Total fee amount collected across all installments"),
		metric.WithUnit("{rupee}"),
	)
	if err != nil {
		return nil, err
	}

	m.examsRecorded, err = meter.Int64Counter(
		"college_erp.exams.recorded",
		metric.WithDescription("Total number of exam results recorded"),
		metric.WithUnit("{exam}"),
	)
	if err != nil {
		return nil, err
	}

	m.studentsPromoted, err = meter.Int64Counter(
		"college_erp.students.promoted",
		metric.WithDescription("Total number of student promotions processed"),
		metric.WithUnit("{promotion}"),
	)
	if err != nil {
		return nil, err
	}

	m.notificationsPublished, err = meter.Int64Counter(
		"college_erp.notifications.published",
		metric.WithDescription("Total number of notification events published"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Metrics) RecordStudentAdmitted(ctx context.Context) {
	if m != nil && m.studentsAdmitted != nil {
		m.studentsAdmitted.Add(ctx, 1)
	}
}

func (m *Metrics) RecordInvoiceIssued(ctx context.Context, amount float64) {
	if m == nil {
		return
	}
	if m.invoicesIssued != nil {
		m.invoicesIssued.Add(ctx, 1)
	}
	if m.feesCollected != nil {
		m.feesCollected.Add(ctx, amount)
	}
}

func (m *Metrics) RecordExamRecorded(ctx context.Context) {
	if m != nil && m.examsRecorded != nil {
		m.examsRecorded.Add(ctx, 1)
	}
}

func (m *Metrics) RecordStudentPromoted(ctx context.Context) {
	if m != nil && m.studentsPromoted != nil {
		m.studentsPromoted.Add(ctx, 1)
	}
}

func (m *Metrics) RecordNotificationPublished(ctx context.Context) {
	if m != nil && m.notificationsPublished != nil {
		m.notificationsPublished.Add(ctx, 1)
	}
}

// NewMock creates a no-op Metrics instance for testing.
// The returned Metrics will safely ignore all Record* calls.
func NewMock() *Metrics {
	return &Metrics{Database: &DatabaseMetrics{}}
}
