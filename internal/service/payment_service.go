package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/priorcoder/institute-manager/internal/idgen"
	"github.com/priorcoder/institute-manager/internal/models"
	"github.com/priorcoder/institute-manager/internal/repository"
	appErrors "github.com/priorcoder/institute-manager/pkg/errors"
	"github.com/priorcoder/institute-manager/pkg/export"
)

// Only 65536 receipt suffixes exist per day, so UNIQUE collisions are
// possible; regeneration is bounded to keep a stuck store from looping.
const receiptAttempts = 5

type paymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	TotalPaid(ctx context.Context, enrollmentID int64) (int64, error)
	History(ctx context.Context, studentKey, courseKey string) ([]models.PaymentRecord, error)
	FindByReceipt(ctx context.Context, receiptNo string) (*models.PaymentRecord, error)
}

type enrollmentReader interface {
	FindByID(ctx context.Context, id int64) (*models.Enrollment, error)
}

type receiptRenderer interface {
	Render(data export.ReceiptData) ([]byte, error)
}

type receiptWriter interface {
	Save(filename string, data []byte) (string, error)
}

// RecordPaymentRequest describes a fee payment against an enrollment.
type RecordPaymentRequest struct {
	EnrollmentID int64
	Amount       int64
	Date         time.Time
}

// PaymentService orchestrates fee payment workflows.
type PaymentService struct {
	payments    paymentRepository
	enrollments enrollmentReader
	renderer    receiptRenderer
	receipts    receiptWriter
	logger      *zap.Logger
	now         func() time.Time
}

// NewPaymentService constructs PaymentService.
func NewPaymentService(payments paymentRepository, enrollments enrollmentReader, renderer receiptRenderer, receipts receiptWriter, logger *zap.Logger) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		payments:    payments,
		enrollments: enrollments,
		renderer:    renderer,
		receipts:    receipts,
		logger:      logger,
		now:         time.Now,
	}
}

// Record validates and persists a payment, returning the allocated receipt
// number. The running total may never exceed the enrollment's snapshotted
// course fee. Receipt generation retries on a uniqueness collision.
func (s *PaymentService) Record(ctx context.Context, req RecordPaymentRequest) (string, error) {
	if req.Amount <= 0 {
		return "", appErrors.Clone(appErrors.ErrValidation, "amount must be greater than 0")
	}

	enrollment, err := s.enrollments.FindByID(ctx, req.EnrollmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to load enrollment")
	}

	total, err := s.payments.TotalPaid(ctx, req.EnrollmentID)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to compute amount paid")
	}
	if total+req.Amount > enrollment.CourseFee {
		return "", appErrors.Clone(appErrors.ErrOverpayment,
			fmt.Sprintf("cannot pay more than total fee: %d already paid of %d", total, enrollment.CourseFee))
	}

	date := req.Date
	if date.IsZero() {
		date = s.now()
	}

	var lastErr error
	for attempt := 0; attempt < receiptAttempts; attempt++ {
		payment := &models.Payment{
			EnrollmentID: req.EnrollmentID,
			Amount:       req.Amount,
			ReceiptNo:    idgen.ReceiptNumber(s.now()),
			Date:         date.Format("2006-01-02"),
		}
		if err := s.payments.Create(ctx, payment); err != nil {
			if repository.IsUniqueViolation(err) {
				lastErr = err
				continue
			}
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to record payment")
		}
		s.logger.Sugar().Infow("payment recorded",
			"enrollment_id", req.EnrollmentID, "amount", req.Amount, "receipt_no", payment.ReceiptNo)
		return payment.ReceiptNo, nil
	}
	return "", appErrors.Wrap(lastErr, appErrors.ErrInternal.Code, "could not allocate a unique receipt number")
}

// TotalPaid returns the sum of payments for an enrollment, zero if none.
func (s *PaymentService) TotalPaid(ctx context.Context, enrollmentID int64) (int64, error) {
	total, err := s.payments.TotalPaid(ctx, enrollmentID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to compute amount paid")
	}
	return total, nil
}

// History returns payment records for a student key and optional course key,
// most recent first.
func (s *PaymentService) History(ctx context.Context, studentKey, courseKey string) ([]models.PaymentRecord, error) {
	records, err := s.payments.History(ctx, studentKey, courseKey)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to load payment history")
	}
	return records, nil
}

// ExportReceipt renders the fee receipt PDF for a payment and writes it to
// the receipts directory as receipt_<receipt_no>.pdf.
func (s *PaymentService) ExportReceipt(ctx context.Context, receiptNo string) (string, error) {
	record, err := s.payments.FindByReceipt(ctx, receiptNo)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to load payment")
	}

	pdf, err := s.renderer.Render(export.ReceiptData{
		ReceiptNo:   record.ReceiptNo,
		Date:        record.Date,
		StudentName: record.StudentName,
		StudentID:   record.StudentID,
		CourseName:  record.CourseName,
		Amount:      record.Amount,
	})
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to render receipt")
	}

	path, err := s.receipts.Save(fmt.Sprintf("receipt_%s.pdf", record.ReceiptNo), pdf)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to save receipt")
	}
	s.logger.Sugar().Infow("receipt exported", "receipt_no", record.ReceiptNo, "path", path)
	return path, nil
}
