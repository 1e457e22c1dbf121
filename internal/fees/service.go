package fees

import (
	"context"
	"errors"
	"log/slog"

	"college-erp/internal/course"
	"college-erp/internal/metrics"
	"college-erp/internal/student"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

var (
	ErrSlotOccupied     = errors.New("installment slot already filled")
	ErrInvalidAmount    = errors.New("installment amount must be positive")
	ErrAllSlotsFilled   = errors.New("all installment slots are filled")
	ErrInvalidSlot      = errors.New("installment slot out of range")
	ErrScholarshipOrder = errors.New("scholarship flags must satisfy granted => approved => applied")
	ErrCourseUnresolved = errors.New("course offering could not be resolved")
)

// BatchResult reports the outcome of a batch ledger operation.
type BatchResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Errored int `json:"errored"`
}

type Service interface {
	// OpenTx creates the ledger row for a freshly admitted student inside
	// the caller's transaction.
	OpenTx(ctx context.Context, idb bun.IDB, s *student.Student) error
	// OpenNextTx opens a ledger row for a later offering, used on promotion.
	OpenNextTx(ctx context.Context, idb bun.IDB, s *student.Student, offeringName string) error

	Get(ctx context.Context, id int) (*CollegeFees, error)
	GetByStudent(ctx context.Context, studentID int) ([]CollegeFees, error)
	GetLatestByStudent(ctx context.Context, studentID int) (*CollegeFees, error)
	GetAll(ctx context.Context) ([]CollegeFees, error)

	// UpdateFees applies a caller-mutated row: recomputes the derived
	// totals and rejects scholarship flags out of monotone order.
	// Installment slots cannot be changed through this path.
	UpdateFees(ctx context.Context, row *CollegeFees) error

	// RecordInstallmentTx fills one installment slot. The row must have
	// been loaded with a row lock inside idb's transaction.
	RecordInstallmentTx(ctx context.Context, idb bun.IDB, row *CollegeFees, slot int, amount decimal.Decimal, invoiceNumber string) error

	SyncCourseLinkageTx(ctx context.Context, idb bun.IDB, s *student.Student) error
	SyncTotalCourseFees(ctx context.Context) (*BatchResult, error)
	EnsureAllStudentsHaveRows(ctx context.Context) (*BatchResult, error)

	Repository() Repository
}

type service struct {
	db       *bun.DB
	repo     Repository
	students student.Repository
	courses  course.Service
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewService(bdb *bun.DB, repo Repository, students student.Repository, courses course.Service, logger *slog.Logger, m *metrics.Metrics) Service {
	return &service{
		db:       bdb,
		repo:     repo,
		students: students,
		courses:  courses,
		logger:   logger,
		metrics:  m,
	}
}

// Repository exposes the row-level store for collaborators that manage
// their own transactions (the invoice issuer).
func (s *service) Repository() Repository {
	return s.repo
}

func (s *service) OpenTx(ctx context.Context, idb bun.IDB, stu *student.Student) error {
	return s.openForOffering(ctx, idb, stu, stu.CurrentCourse)
}

func (s *service) OpenNextTx(ctx context.Context, idb bun.IDB, stu *student.Student, offeringName string) error {
	return s.openForOffering(ctx, idb, stu, offeringName)
}

// openForOffering builds and inserts a ledger row. An unresolvable course
// still gets a row with zero course fees so payments can be recorded.
func (s *service) openForOffering(ctx context.Context, idb bun.IDB, stu *student.Student, offeringName string) error {
	row := &CollegeFees{
		StudentID:      stu.ID,
		CourseFullName: offeringName,
	}

	offering, err := s.courses.ResolveOffering(ctx, offeringName)
	switch {
	case err == nil:
		row.CourseDetailID = offering.ID
		row.CourseFullName = offering.FullName
		row.TotalCourseFees = offering.TotalCourseFees
		if c, cerr := s.courses.GetCourseByShortName(ctx, offering.ShortName); cerr == nil {
			row.CourseID = c.ID
		}
	case errors.Is(err, course.ErrDetailNotFound):
		s.logger.WarnContext(ctx, "opening unlinked ledger row",
			"student_id", stu.ID, "course", offeringName)
	default:
		return err
	}

	applyScholarshipMirror(row, stu)
	row.Recompute()

	return s.repo.CreateTx(ctx, idb, row)
}

// applyScholarshipMirror copies the student's scholarship enums onto the
// ledger booleans cumulatively, so granted implies approved implies
// applied. A rejected application leaves every flag false and the amount
// zero.
func applyScholarshipMirror(row *CollegeFees, stu *student.Student) {
	row.ScholarshipApplied, row.ScholarshipApproved, row.ScholarshipGranted = mirrorStatus(stu.ScholarshipStatus)
	if stu.ScholarshipStatus == student.ScholarshipRejected {
		row.GovernmentScholarshipAmount = decimal.Zero
	}

	row.MeeraRebateApplied, row.MeeraRebateApproved, row.MeeraRebateGranted = mirrorStatus(stu.RebateMeeraScholarship)
	if stu.RebateMeeraScholarship == student.ScholarshipRejected {
		row.MeeraRebateAmount = decimal.Zero
	}
}

func mirrorStatus(status string) (applied, approved, granted bool) {
	switch status {
	case student.ScholarshipApplied:
		return true, false, false
	case student.ScholarshipApproved:
		return true, true, false
	case student.ScholarshipGranted:
		return true, true, true
	}
	return false, false, false
}

func (s *service) Get(ctx context.Context, id int) (*CollegeFees, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetByStudent(ctx context.Context, studentID int) ([]CollegeFees, error) {
	return s.repo.GetByStudent(ctx, studentID)
}

func (s *service) GetLatestByStudent(ctx context.Context, studentID int) (*CollegeFees, error) {
	return s.repo.GetLatestByStudent(ctx, studentID)
}

func (s *service) GetAll(ctx context.Context) ([]CollegeFees, error) {
	return s.repo.GetAll(ctx)
}

func (s *service) UpdateFees(ctx context.Context, row *CollegeFees) error {
	if !row.ScholarshipOrderValid() {
		return ErrScholarshipOrder
	}

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		current, err := s.repo.GetLatestByStudentForUpdate(ctx, tx, row.StudentID)
		if err != nil {
			return err
		}
		if current.ID != row.ID {
			if current, err = lockByID(ctx, tx, s.repo, row.ID); err != nil {
				return err
			}
		}

		// Installment history is append-only; carry the stored slots over
		// whatever the caller sent.
		for i := 1; i <= Slots; i++ {
			if err := row.SetInstallment(i, current.Installment(i), current.InvoiceNumber(i)); err != nil {
				return err
			}
		}

		// Course linkage and the course fee snapshot are server owned;
		// only admission, promotion and the sync routines write them.
		row.CourseID = current.CourseID
		row.CourseDetailID = current.CourseDetailID
		row.CourseFullName = current.CourseFullName
		row.TotalCourseFees = current.TotalCourseFees
		row.CreatedAt = current.CreatedAt

		row.Recompute()
		if err := s.repo.UpdateTx(ctx, tx, row); err != nil {
			return err
		}

		// The booleans and the student's scholarship enums describe the
		// same state; flipping flags here writes the enums back.
		return s.mirrorFlagsToStudentTx(ctx, tx, row)
	})
}

func (s *service) mirrorFlagsToStudentTx(ctx context.Context, idb bun.IDB, row *CollegeFees) error {
	stu, err := s.students.GetByID(ctx, row.StudentID)
	if err != nil {
		return err
	}

	scholarship := enumFromFlags(row.ScholarshipApplied, row.ScholarshipApproved,
		row.ScholarshipGranted, stu.ScholarshipStatus)
	meera := enumFromFlags(row.MeeraRebateApplied, row.MeeraRebateApproved,
		row.MeeraRebateGranted, stu.RebateMeeraScholarship)

	if scholarship == stu.ScholarshipStatus && meera == stu.RebateMeeraScholarship {
		return nil
	}
	stu.ScholarshipStatus = scholarship
	stu.RebateMeeraScholarship = meera
	return s.students.UpdateTx(ctx, idb, stu)
}

// enumFromFlags is the inverse of mirrorStatus. All-false flags keep a
// stored Rejected, since rejection also clears every flag.
func enumFromFlags(applied, approved, granted bool, current string) string {
	switch {
	case granted:
		return student.ScholarshipGranted
	case approved:
		return student.ScholarshipApproved
	case applied:
		return student.ScholarshipApplied
	case current == student.ScholarshipRejected:
		return student.ScholarshipRejected
	}
	return student.ScholarshipNotApplied
}

func lockByID(ctx context.Context, idb bun.IDB, repo Repository, id int) (*CollegeFees, error) {
	row := new(CollegeFees)
	err := idb.NewSelect().Model(row).Where("id = ?", id).For("UPDATE").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (s *service) RecordInstallmentTx(ctx context.Context, idb bun.IDB, row *CollegeFees, slot int, amount decimal.Decimal, invoiceNumber string) error {
	if slot < 1 || slot > Slots {
		return ErrInvalidSlot
	}
	if amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if row.Installment(slot).Sign() != 0 {
		return ErrSlotOccupied
	}

	if err := row.SetInstallment(slot, amount, invoiceNumber); err != nil {
		return err
	}
	row.Recompute()

	return s.repo.UpdateTx(ctx, idb, row)
}

// SyncCourseLinkageTx re-links a student's ledger rows after a course
// change: the latest row follows the student's current course.
func (s *service) SyncCourseLinkageTx(ctx context.Context, idb bun.IDB, stu *student.Student) error {
	rows, err := s.repo.GetByStudentTx(ctx, idb, stu.ID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	latest := &rows[len(rows)-1]
	latest.CourseFullName = stu.CurrentCourse
	latest.CourseID = 0
	latest.CourseDetailID = 0

	offering, err := s.courses.ResolveOffering(ctx, stu.CurrentCourse)
	if err == nil {
		latest.CourseDetailID = offering.ID
		latest.CourseFullName = offering.FullName
		latest.TotalCourseFees = offering.TotalCourseFees
		if c, cerr := s.courses.GetCourseByShortName(ctx, offering.ShortName); cerr == nil {
			latest.CourseID = c.ID
		}
	} else if !errors.Is(err, course.ErrDetailNotFound) {
		return err
	}

	latest.Recompute()
	return s.repo.UpdateTx(ctx, idb, latest)
}

// SyncTotalCourseFees refreshes every linked row's course-fee snapshot
// from its offering and recomputes the totals. Idempotent.
func (s *service) SyncTotalCourseFees(ctx context.Context) (*BatchResult, error) {
	rows, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{}
	for i := range rows {
		row := &rows[i]
		if row.CourseDetailID == 0 {
			result.Skipped++
			continue
		}

		offering, err := s.courses.GetOffering(ctx, row.CourseDetailID)
		if err != nil {
			result.Errored++
			s.logger.WarnContext(ctx, "offering lookup failed during fee sync",
				"row_id", row.ID, "coursedetail_id", row.CourseDetailID, "error", err)
			continue
		}

		if row.TotalCourseFees.Equal(offering.TotalCourseFees) {
			result.Skipped++
			continue
		}

		row.TotalCourseFees = offering.TotalCourseFees
		row.Recompute()
		if err := s.repo.Update(ctx, row); err != nil {
			result.Errored++
			continue
		}
		result.Updated++
	}

	s.logger.InfoContext(ctx, "course fee sync finished",
		"updated", result.Updated, "skipped", result.Skipped, "errored", result.Errored)
	return result, nil
}

// EnsureAllStudentsHaveRows opens a ledger row for every student without
// one. Idempotent.
func (s *service) EnsureAllStudentsHaveRows(ctx context.Context) (*BatchResult, error) {
	ids, err := s.students.IDsWithoutLedgerRow(ctx)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{}
	for _, id := range ids {
		stu, err := s.students.GetByID(ctx, id)
		if err != nil {
			result.Errored++
			continue
		}
		if stu.CurrentCourse == "" {
			result.Skipped++
			continue
		}

		err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			return s.OpenTx(ctx, tx, stu)
		})
		if err != nil {
			result.Errored++
			s.logger.WarnContext(ctx, "failed to open ledger row",
				"student_id", stu.UniqueID, "error", err)
			continue
		}
		result.Created++
	}

	s.logger.InfoContext(ctx, "ledger backfill finished",
		"created", result.Created, "skipped", result.Skipped, "errored", result.Errored)
	return result, nil
}
