package invoice_test

import (
	"context"
	"testing"

	"college-erp/internal/course"
	"college-erp/internal/fees"
	"college-erp/internal/invoice"
	"college-erp/internal/logger"
	"college-erp/internal/metrics"
	"college-erp/internal/notify"
	"college-erp/internal/student"
	"college-erp/internal/testdb"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type invoiceEnv struct {
	db       *bun.DB
	students student.Service
	invoices invoice.Service
	ledger   fees.Service
}

func setupInvoiceEnv(t *testing.T) *invoiceEnv {
	pg := testdb.SetupSharedPostgres(t)
	pg.CreateTables(t,
		(*course.Course)(nil),
		(*course.CourseDetail)(nil),
		(*student.Student)(nil),
		(*fees.CollegeFees)(nil),
		(*invoice.Invoice)(nil),
	)
	testdb.CleanupTables(t, pg.DB,
		"courses", "course_details", "students", "college_fees", "invoices")

	log := logger.New()
	m := metrics.NewMock()

	courseRepo := course.NewRepository(pg.DB, m)
	courseService := course.NewService(pg.DB, courseRepo, log)
	studentRepo := student.NewRepository(pg.DB, m)
	feesRepo := fees.NewRepository(pg.DB, m)
	feesService := fees.NewService(pg.DB, feesRepo, studentRepo, courseService, log, m)
	studentService := student.NewService(pg.DB, studentRepo, courseService, feesService, notify.Noop(), log, m)
	invoiceRepo := invoice.NewRepository(pg.DB, m)
	invoiceService := invoice.NewService(pg.DB, invoiceRepo, feesService, studentRepo, notify.Noop(), log, m)

	ctx := context.Background()
	_, err := courseService.CreateCourse(ctx, &course.Course{
		ShortName:     "BA",
		FullName:      "Bachelor of Arts",
		DurationYears: 3,
	})
	require.NoError(t, err)

	offering := &course.CourseDetail{
		FullName:     "Bachelor of Arts 1st Year",
		ShortName:    "BA",
		YearSemester: "1st Year",
		TuitionFee:   decimal.NewFromInt(15000),
		MiscFee1:     decimal.NewFromInt(1500),
	}
	offering.RecomputeTotal()
	_, err = courseService.CreateOffering(ctx, offering)
	require.NoError(t, err)

	return &invoiceEnv{
		db:       pg.DB,
		students: studentService,
		invoices: invoiceService,
		ledger:   feesService,
	}
}

func (env *invoiceEnv) admit(t *testing.T, firstName string) *student.Student {
	t.Helper()
	stu, err := env.students.Create(context.Background(), &student.Student{
		FirstName:     firstName,
		LastName:      "Sharma",
		Gender:        "Female",
		CurrentCourse: "Bachelor of Arts 1st Year",
	})
	require.NoError(t, err)
	require.NotEmpty(t, stu.UniqueID)
	return stu
}

func TestIssueInvoiceFillsLedgerSlots(t *testing.T) {
	env := setupInvoiceEnv(t)
	ctx := context.Background()

	stu := env.admit(t, "Priya")

	// Admission opened the ledger row with the offering snapshot.
	row, err := env.ledger.GetLatestByStudent(ctx, stu.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(16500).Equal(row.TotalCourseFees))
	assert.True(t, decimal.NewFromInt(16500).Equal(row.TotalAmountDue))

	inv, err := env.invoices.Issue(ctx, stu.ID, decimal.NewFromInt(5000))
	require.NoError(t, err)
	assert.NotZero(t, inv.ID)
	assert.NotEmpty(t, inv.Number)
	assert.Equal(t, 1, inv.InstallmentNumber)

	row, err = env.ledger.GetLatestByStudent(ctx, stu.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(5000).Equal(row.Installment1))
	assert.Equal(t, inv.Number, row.Invoice1Number)
	assert.True(t, decimal.NewFromInt(11500).Equal(row.TotalAmountDue))

	// A second payment lands in the next slot with a fresh number.
	inv2, err := env.invoices.Issue(ctx, stu.ID, decimal.NewFromInt(6500))
	require.NoError(t, err)
	assert.Equal(t, 2, inv2.InstallmentNumber)
	assert.NotEqual(t, inv.Number, inv2.Number)

	row, err = env.ledger.GetLatestByStudent(ctx, stu.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(11500).Equal(row.TotalFeesPaid))
	assert.True(t, decimal.NewFromInt(5000).Equal(row.TotalAmountDue))
}

func TestIssueInvoiceRejectsWhenAllSlotsFilled(t *testing.T) {
	env := setupInvoiceEnv(t)
	ctx := context.Background()

	stu := env.admit(t, "Anil")

	for i := 0; i < fees.Slots; i++ {
		_, err := env.invoices.Issue(ctx, stu.ID, decimal.NewFromInt(1000))
		require.NoError(t, err)
	}

	_, err := env.invoices.Issue(ctx, stu.ID, decimal.NewFromInt(1000))
	assert.ErrorIs(t, err, fees.ErrAllSlotsFilled)
}

func TestIssueInvoiceRejectsNonPositiveAmount(t *testing.T) {
	env := setupInvoiceEnv(t)

	stu := env.admit(t, "Kiran")

	_, err := env.invoices.Issue(context.Background(), stu.ID, decimal.Zero)
	assert.ErrorIs(t, err, invoice.ErrInvalidAmount)
}

func TestMarkPrintedIsMonotone(t *testing.T) {
	env := setupInvoiceEnv(t)
	ctx := context.Background()

	stu := env.admit(t, "Rekha")

	inv, err := env.invoices.Issue(ctx, stu.ID, decimal.NewFromInt(2000))
	require.NoError(t, err)
	assert.False(t, inv.OriginalPrinted)

	printed, err := env.invoices.MarkPrinted(ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, printed.OriginalPrinted)

	// Re-printing never flips the flag back.
	printed, err = env.invoices.MarkPrinted(ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, printed.OriginalPrinted)
}
