package fees_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"college-erp/internal/course"
	"college-erp/internal/fees"
	"college-erp/internal/logger"
	"college-erp/internal/metrics"
	"college-erp/internal/notify"
	"college-erp/internal/student"
	"college-erp/internal/testdb"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type feesEnv struct {
	db       *bun.DB
	students student.Service
	ledger   fees.Service
	handler  *fees.Handler
}

func setupFeesEnv(t *testing.T) *feesEnv {
	pg := testdb.SetupSharedPostgres(t)
	pg.CreateTables(t,
		(*course.Course)(nil),
		(*course.CourseDetail)(nil),
		(*student.Student)(nil),
		(*fees.CollegeFees)(nil),
	)
	testdb.CleanupTables(t, pg.DB,
		"courses", "course_details", "students", "college_fees")

	log := logger.New()
	m := metrics.NewMock()

	courseRepo := course.NewRepository(pg.DB, m)
	courseService := course.NewService(pg.DB, courseRepo, log)
	studentRepo := student.NewRepository(pg.DB, m)
	feesRepo := fees.NewRepository(pg.DB, m)
	feesService := fees.NewService(pg.DB, feesRepo, studentRepo, courseService, log, m)
	studentService := student.NewService(pg.DB, studentRepo, courseService, feesService, notify.Noop(), log, m)

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

	return &feesEnv{
		db:       pg.DB,
		students: studentService,
		ledger:   feesService,
		handler:  fees.NewHandler(feesService, log),
	}
}

func (env *feesEnv) admit(t *testing.T, firstName string) *student.Student {
	t.Helper()
	stu, err := env.students.Create(context.Background(), &student.Student{
		FirstName:     firstName,
		LastName:      "Sharma",
		Gender:        "Female",
		CurrentCourse: "Bachelor of Arts 1st Year",
	})
	require.NoError(t, err)
	return stu
}

func TestUpdateFeesPreservesCourseLinkage(t *testing.T) {
	env := setupFeesEnv(t)
	ctx := context.Background()

	stu := env.admit(t, "Kavita")
	row, err := env.ledger.GetLatestByStudent(ctx, stu.ID)
	require.NoError(t, err)
	require.NotZero(t, row.CourseDetailID)
	require.True(t, row.TotalCourseFees.Equal(decimal.NewFromInt(16500)))

	// A sparse update row, as decoded from a body carrying only one
	// fee component. Linkage and snapshot fields are all zero.
	update := &fees.CollegeFees{
		ID:            row.ID,
		StudentID:     row.StudentID,
		EnrollmentFee: decimal.NewFromInt(100),
	}
	require.NoError(t, env.ledger.UpdateFees(ctx, update))

	stored, err := env.ledger.Get(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, row.CourseID, stored.CourseID)
	assert.Equal(t, row.CourseDetailID, stored.CourseDetailID)
	assert.Equal(t, "Bachelor of Arts 1st Year", stored.CourseFullName)
	assert.True(t, stored.TotalCourseFees.Equal(decimal.NewFromInt(16500)))
	assert.True(t, stored.EnrollmentFee.Equal(decimal.NewFromInt(100)))
	assert.True(t, stored.TotalFee.Equal(decimal.NewFromInt(16600)))
}

func TestUpdateFeesHandlerPatchesOmittedFields(t *testing.T) {
	env := setupFeesEnv(t)
	ctx := context.Background()

	stu := env.admit(t, "Meena")
	row, err := env.ledger.GetLatestByStudent(ctx, stu.ID)
	require.NoError(t, err)

	row.EnrollmentFee = decimal.NewFromInt(250)
	row.ScholarshipApplied = true
	require.NoError(t, env.ledger.UpdateFees(ctx, row))

	// The body flips one flag; every omitted field keeps its stored
	// value.
	req := httptest.NewRequest(http.MethodPut,
		"/fees/"+strconv.Itoa(row.ID),
		strings.NewReader(`{"meeraRebateApplied": true}`))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", strconv.Itoa(row.ID))
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()

	env.handler.UpdateFees(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	stored, err := env.ledger.Get(ctx, row.ID)
	require.NoError(t, err)
	assert.True(t, stored.MeeraRebateApplied)
	assert.True(t, stored.ScholarshipApplied)
	assert.True(t, stored.EnrollmentFee.Equal(decimal.NewFromInt(250)))
	assert.Equal(t, "Bachelor of Arts 1st Year", stored.CourseFullName)
}
