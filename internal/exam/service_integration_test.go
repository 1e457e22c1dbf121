package exam_test

import (
	"context"
	"testing"

	"college-erp/internal/course"
	"college-erp/internal/exam"
	"college-erp/internal/fees"
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

type examEnv struct {
	db       *bun.DB
	students student.Service
	studRepo student.Repository
	exams    exam.Service
	ledger   fees.Service
}

func setupExamEnv(t *testing.T) *examEnv {
	pg := testdb.SetupSharedPostgres(t)
	pg.CreateTables(t,
		(*course.Course)(nil),
		(*course.CourseDetail)(nil),
		(*student.Student)(nil),
		(*fees.CollegeFees)(nil),
		(*exam.Exam)(nil),
	)
	testdb.CleanupTables(t, pg.DB,
		"courses", "course_details", "students", "college_fees", "exams")

	log := logger.New()
	m := metrics.NewMock()

	courseRepo := course.NewRepository(pg.DB, m)
	courseService := course.NewService(pg.DB, courseRepo, log)
	studentRepo := student.NewRepository(pg.DB, m)
	feesRepo := fees.NewRepository(pg.DB, m)
	feesService := fees.NewService(pg.DB, feesRepo, studentRepo, courseService, log, m)
	studentService := student.NewService(pg.DB, studentRepo, courseService, feesService, notify.Noop(), log, m)
	examRepo := exam.NewRepository(pg.DB, m)
	examService := exam.NewService(pg.DB, examRepo, studentRepo, courseService, feesService, notify.Noop(), log, m)

	ctx := context.Background()
	_, err := courseService.CreateCourse(ctx, &course.Course{
		ShortName:     "BSC",
		FullName:      "Bachelor of Science",
		DurationYears: 3,
	})
	require.NoError(t, err)

	for i, ys := range []string{"1st Year", "2nd Year", "3rd Year"} {
		offering := &course.CourseDetail{
			FullName:     "Bachelor of Science " + ys,
			ShortName:    "BSC",
			YearSemester: ys,
			TuitionFee:   decimal.NewFromInt(int64(12000 + 500*i)),
		}
		offering.RecomputeTotal()
		_, err = courseService.CreateOffering(ctx, offering)
		require.NoError(t, err)
	}

	return &examEnv{
		db:       pg.DB,
		students: studentService,
		studRepo: studentRepo,
		exams:    examService,
		ledger:   feesService,
	}
}

func (env *examEnv) admit(t *testing.T, firstName, offering string) *student.Student {
	t.Helper()
	stu, err := env.students.Create(context.Background(), &student.Student{
		FirstName:     firstName,
		LastName:      "Verma",
		Gender:        "Male",
		CurrentCourse: offering,
	})
	require.NoError(t, err)
	return stu
}

func (env *examEnv) recordPass(t *testing.T, studentID int) *exam.Exam {
	t.Helper()
	saved, err := env.exams.Save(context.Background(), &exam.Exam{
		StudentID:        studentID,
		ExamName:         "Annual Examination",
		Subject1Name:     "Physics",
		Subject1Max:      100,
		Subject1Obtained: 71,
		Subject2Name:     "Chemistry",
		Subject2Max:      100,
		Subject2Obtained: 64,
		Subject3Name:     "Mathematics",
		Subject3Max:      100,
		Subject3Obtained: 62,
	})
	require.NoError(t, err)
	return saved
}

func TestSaveExamScoresAndSnapshotsCourse(t *testing.T) {
	env := setupExamEnv(t)

	stu := env.admit(t, "Rahul", "Bachelor of Science 1st Year")
	saved := env.recordPass(t, stu.ID)

	assert.Equal(t, 300, saved.TotalMaxMarks)
	assert.Equal(t, 197, saved.TotalObtainedMarks)
	assert.True(t, decimal.NewFromFloat(65.67).Equal(saved.Percentage))
	assert.Equal(t, exam.StatusPass, saved.OverallStatus)
	assert.Equal(t, "Bachelor of Science 1st Year", saved.CourseFullName)
	assert.NotZero(t, saved.CourseDetailID)
	assert.NotZero(t, saved.CourseID)
	assert.False(t, saved.PromotionProcessed)
}

func TestPromoteAdvancesStudentAndOpensLedger(t *testing.T) {
	env := setupExamEnv(t)
	ctx := context.Background()

	stu := env.admit(t, "Suresh", "Bachelor of Science 1st Year")
	saved := env.recordPass(t, stu.ID)

	result, err := env.exams.Promote(ctx, stu.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, result.ExamID)
	assert.Equal(t, "Bachelor of Science 2nd Year", result.NextOffering)
	assert.False(t, result.Graduated)

	reloaded, err := env.studRepo.GetByID(ctx, stu.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bachelor of Science 2nd Year", reloaded.CurrentCourse)
	assert.Equal(t, student.StatusActive, reloaded.Status)

	// A second ledger row was opened for the new offering.
	rows, err := env.ledger.GetByStudent(ctx, stu.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	latest, err := env.ledger.GetLatestByStudent(ctx, stu.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bachelor of Science 2nd Year", latest.CourseFullName)

	// The qualifying exam is consumed and locked.
	locked, err := env.exams.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.True(t, locked.PromotionProcessed)

	_, err = env.exams.Save(ctx, locked)
	assert.ErrorIs(t, err, exam.ErrExamLocked)

	// No fresh passed exam, no second promotion.
	_, err = env.exams.Promote(ctx, stu.ID)
	assert.ErrorIs(t, err, exam.ErrNotEligible)
}

func TestPromoteFromFinalOfferingGraduates(t *testing.T) {
	env := setupExamEnv(t)
	ctx := context.Background()

	stu := env.admit(t, "Mahesh", "Bachelor of Science 3rd Year")
	env.recordPass(t, stu.ID)

	result, err := env.exams.Promote(ctx, stu.ID)
	require.NoError(t, err)
	assert.True(t, result.Graduated)
	assert.Empty(t, result.NextOffering)

	reloaded, err := env.studRepo.GetByID(ctx, stu.ID)
	require.NoError(t, err)
	assert.Equal(t, student.StatusGraduated, reloaded.Status)
	assert.Equal(t, "Bachelor of Science 3rd Year", reloaded.CurrentCourse)

	// Graduation opens no further ledger rows.
	rows, err := env.ledger.GetByStudent(ctx, stu.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestPromoteRequiresPassedExam(t *testing.T) {
	env := setupExamEnv(t)
	ctx := context.Background()

	stu := env.admit(t, "Dinesh", "Bachelor of Science 1st Year")

	_, err := env.exams.Promote(ctx, stu.ID)
	assert.ErrorIs(t, err, exam.ErrNotEligible)

	// A failed exam does not qualify either.
	_, err = env.exams.Save(ctx, &exam.Exam{
		StudentID:        stu.ID,
		ExamName:         "Annual Examination",
		Subject1Name:     "Physics",
		Subject1Max:      100,
		Subject1Obtained: 25,
	})
	require.NoError(t, err)

	_, err = env.exams.Promote(ctx, stu.ID)
	assert.ErrorIs(t, err, exam.ErrNotEligible)
}

func TestResetPromotionReopensExam(t *testing.T) {
	env := setupExamEnv(t)
	ctx := context.Background()

	stu := env.admit(t, "Naresh", "Bachelor of Science 1st Year")
	saved := env.recordPass(t, stu.ID)

	_, err := env.exams.Promote(ctx, stu.ID)
	require.NoError(t, err)

	n, err := env.exams.ResetPromotion(ctx, stu.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	reopened, err := env.exams.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.False(t, reopened.PromotionProcessed)
}

func TestPromoteRejectsInactiveStudent(t *testing.T) {
	env := setupExamEnv(t)
	ctx := context.Background()

	stu := env.admit(t, "Suresh", "Bachelor of Science 1st Year")
	env.recordPass(t, stu.ID)

	stu.Status = student.StatusDropout
	require.NoError(t, env.studRepo.Update(ctx, stu))

	// A passed, unprocessed exam does not qualify a dropout.
	_, err := env.exams.Promote(ctx, stu.ID)
	assert.ErrorIs(t, err, exam.ErrStudentInactive)

	stored, err := env.studRepo.GetByID(ctx, stu.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bachelor of Science 1st Year", stored.CurrentCourse)

	rows, err := env.ledger.GetByStudent(ctx, stu.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
