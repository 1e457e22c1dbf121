package invoice

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"college-erp/internal/db"
	"college-erp/internal/fees"
	"college-erp/internal/identity"
	"college-erp/internal/metrics"
	"college-erp/internal/notify"
	"college-erp/internal/student"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

var ErrInvalidAmount = errors.New("invoice amount must be positive")

type Service interface {
	// Issue records an installment payment: allocates the next empty
	// slot under a row lock, mints an invoice number and commits the
	// invoice and the ledger slot together.
	Issue(ctx context.Context, studentID int, amount decimal.Decimal) (*Invoice, error)
	Get(ctx context.Context, id int) (*Invoice, error)
	List(ctx context.Context, filter Filter) ([]Invoice, int, error)
	MarkPrinted(ctx context.Context, id int) (*Invoice, error)
}

type service struct {
	db       *bun.DB
	repo     Repository
	ledger   fees.Service
	students student.Repository
	producer notify.Producer
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewService(bdb *bun.DB, repo Repository, ledger fees.Service, students student.Repository, producer notify.Producer, logger *slog.Logger, m *metrics.Metrics) Service {
	return &service{
		db:       bdb,
		repo:     repo,
		ledger:   ledger,
		students: students,
		producer: producer,
		logger:   logger,
		metrics:  m,
	}
}

func (s *service) Issue(ctx context.Context, studentID int, amount decimal.Decimal) (*Invoice, error) {
	if amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}

	stu, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	ledgerRepo := s.ledger.Repository()

	var issued *Invoice
	for attempt := 0; attempt < identity.MaxMintRetries; attempt++ {
		err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			// Row lock serialises concurrent payments for one student;
			// next_empty_slot and the slot write see a stable row.
			row, err := ledgerRepo.GetLatestByStudentForUpdate(ctx, tx, studentID)
			if err != nil {
				return err
			}

			// Payments snapshot the student's current course; re-link a
			// row left behind by a course change before filling a slot.
			if row.CourseFullName != stu.CurrentCourse {
				if err := s.ledger.SyncCourseLinkageTx(ctx, tx, stu); err != nil {
					return err
				}
				row, err = ledgerRepo.GetLatestByStudentForUpdate(ctx, tx, studentID)
				if err != nil {
					return err
				}
			}

			slot := row.NextEmptySlot()
			if slot == 0 {
				return fees.ErrAllSlotsFilled
			}

			number, err := identity.NextInvoiceNumber(ctx, tx, time.Now(), attempt)
			if err != nil {
				return err
			}

			inv := &Invoice{
				StudentID:         studentID,
				CourseID:          row.CourseID,
				Number:            number,
				DateTime:          time.Now(),
				Amount:            amount,
				InstallmentNumber: slot,
			}
			if err := s.repo.CreateTx(ctx, tx, inv); err != nil {
				return err
			}
			if err := s.ledger.RecordInstallmentTx(ctx, tx, row, slot, amount, number); err != nil {
				return err
			}

			issued = inv
			return nil
		})
		if err == nil {
			break
		}
		if !db.IsIntegrityViolation(err) {
			return nil, err
		}
		s.logger.WarnContext(ctx, "invoice number collision, retrying", "attempt", attempt+1)
	}
	if err != nil {
		return nil, identity.ErrIDCollision
	}

	amountF, _ := amount.Float64()
	s.metrics.RecordInvoiceIssued(ctx, amountF)
	s.logger.InfoContext(ctx, "invoice issued",
		"invoice_number", issued.Number, "student_id", stu.UniqueID,
		"amount", amount.String(), "installment", issued.InstallmentNumber)

	// Publishing is best-effort; the payment is already committed.
	event := notify.InvoiceIssued(stu.ID, stu.UniqueID, issued.Number, amount.String(), issued.InstallmentNumber)
	if err := s.producer.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish invoice event", "error", err)
	}

	return issued, nil
}

func (s *service) Get(ctx context.Context, id int) (*Invoice, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]Invoice, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) MarkPrinted(ctx context.Context, id int) (*Invoice, error) {
	if err := s.repo.MarkPrinted(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}
