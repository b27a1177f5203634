package service

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/priorcoder/institute-manager/internal/models"
	appErrors "github.com/priorcoder/institute-manager/pkg/errors"
	"github.com/priorcoder/institute-manager/pkg/export"
)

type fakePaymentRepo struct {
	payments       []*models.Payment
	total          int64
	records        []models.PaymentRecord
	byReceipt      map[string]*models.PaymentRecord
	uniqueFailures int
}

func (f *fakePaymentRepo) Create(_ context.Context, payment *models.Payment) error {
	if f.uniqueFailures > 0 {
		f.uniqueFailures--
		return sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}
	}
	payment.ID = int64(len(f.payments) + 1)
	f.payments = append(f.payments, payment)
	f.total += payment.Amount
	return nil
}

func (f *fakePaymentRepo) TotalPaid(context.Context, int64) (int64, error) {
	return f.total, nil
}

func (f *fakePaymentRepo) History(_ context.Context, studentKey, courseKey string) ([]models.PaymentRecord, error) {
	return f.records, nil
}

func (f *fakePaymentRepo) FindByReceipt(_ context.Context, receiptNo string) (*models.PaymentRecord, error) {
	record, ok := f.byReceipt[receiptNo]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return record, nil
}

type fakeEnrollmentReader struct {
	enrollments map[int64]*models.Enrollment
}

func (f *fakeEnrollmentReader) FindByID(_ context.Context, id int64) (*models.Enrollment, error) {
	enrollment, ok := f.enrollments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return enrollment, nil
}

type fakeRenderer struct {
	rendered []export.ReceiptData
}

func (f *fakeRenderer) Render(data export.ReceiptData) ([]byte, error) {
	f.rendered = append(f.rendered, data)
	return []byte("%PDF fake"), nil
}

type fakeReceiptWriter struct {
	saved map[string][]byte
}

func (f *fakeReceiptWriter) Save(filename string, data []byte) (string, error) {
	if f.saved == nil {
		f.saved = map[string][]byte{}
	}
	f.saved[filename] = data
	return "/receipts/" + filename, nil
}

func newPaymentFixture(fee int64) (*PaymentService, *fakePaymentRepo, *fakeRenderer, *fakeReceiptWriter) {
	repo := &fakePaymentRepo{byReceipt: map[string]*models.PaymentRecord{}}
	enrollments := &fakeEnrollmentReader{enrollments: map[int64]*models.Enrollment{
		1: {ID: 1, StudentID: 1, StudentName: "Asha Verma", CourseName: "Python Basics", CourseFee: fee},
	}}
	renderer := &fakeRenderer{}
	writer := &fakeReceiptWriter{}
	svc := NewPaymentService(repo, enrollments, renderer, writer, nil)
	svc.now = func() time.Time { return time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC) }
	return svc, repo, renderer, writer
}

var receiptPattern = regexp.MustCompile(`^RCP-20240615-[0-9A-F]{4}$`)

func TestRecordPayment(t *testing.T) {
	svc, repo, _, _ := newPaymentFixture(15000)

	receiptNo, err := svc.Record(context.Background(), RecordPaymentRequest{EnrollmentID: 1, Amount: 5000})
	require.NoError(t, err)

	assert.Regexp(t, receiptPattern, receiptNo)
	require.Len(t, repo.payments, 1)
	assert.Equal(t, "2024-06-15", repo.payments[0].Date)
	assert.EqualValues(t, 5000, repo.payments[0].Amount)
}

func TestRecordPaymentRejectsNonPositiveAmount(t *testing.T) {
	svc, repo, _, _ := newPaymentFixture(15000)

	for _, amount := range []int64{0, -100} {
		_, err := svc.Record(context.Background(), RecordPaymentRequest{EnrollmentID: 1, Amount: amount})
		require.Error(t, err)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
		assert.Contains(t, err.Error(), "amount must be greater than 0")
	}
	assert.Empty(t, repo.payments)
}

func TestRecordPaymentUnknownEnrollment(t *testing.T) {
	svc, _, _, _ := newPaymentFixture(15000)

	_, err := svc.Record(context.Background(), RecordPaymentRequest{EnrollmentID: 99, Amount: 100})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestRecordPaymentRejectsOverpayment(t *testing.T) {
	svc, repo, _, _ := newPaymentFixture(15000)

	_, err := svc.Record(context.Background(), RecordPaymentRequest{EnrollmentID: 1, Amount: 10000})
	require.NoError(t, err)

	_, err = svc.Record(context.Background(), RecordPaymentRequest{EnrollmentID: 1, Amount: 6000})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrOverpayment))
	assert.Contains(t, err.Error(), "cannot pay more than total fee: 10000 already paid of 15000")
	assert.Len(t, repo.payments, 1, "rejected payments must not be written")
}

func TestRecordPaymentExactBalanceAllowed(t *testing.T) {
	svc, repo, _, _ := newPaymentFixture(15000)

	_, err := svc.Record(context.Background(), RecordPaymentRequest{EnrollmentID: 1, Amount: 15000})
	require.NoError(t, err)
	assert.Len(t, repo.payments, 1)
}

func TestRecordPaymentRetriesOnReceiptCollision(t *testing.T) {
	svc, repo, _, _ := newPaymentFixture(15000)
	repo.uniqueFailures = 2

	receiptNo, err := svc.Record(context.Background(), RecordPaymentRequest{EnrollmentID: 1, Amount: 5000})
	require.NoError(t, err)
	assert.Regexp(t, receiptPattern, receiptNo)
	assert.Len(t, repo.payments, 1)
}

func TestRecordPaymentGivesUpAfterRepeatedCollisions(t *testing.T) {
	svc, repo, _, _ := newPaymentFixture(15000)
	repo.uniqueFailures = receiptAttempts

	_, err := svc.Record(context.Background(), RecordPaymentRequest{EnrollmentID: 1, Amount: 5000})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not allocate a unique receipt number")
	assert.Empty(t, repo.payments)
}

func TestRecordPaymentUsesProvidedDate(t *testing.T) {
	svc, repo, _, _ := newPaymentFixture(15000)

	_, err := svc.Record(context.Background(), RecordPaymentRequest{
		EnrollmentID: 1,
		Amount:       5000,
		Date:         time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02", repo.payments[0].Date)
}

func TestExportReceipt(t *testing.T) {
	svc, repo, renderer, writer := newPaymentFixture(15000)
	repo.byReceipt["RCP-20240615-00AB"] = &models.PaymentRecord{
		ReceiptNo:   "RCP-20240615-00AB",
		StudentID:   "STU2024-0001",
		StudentName: "Asha Verma",
		CourseName:  "Python Basics",
		Amount:      5000,
		Date:        "2024-06-15",
	}

	path, err := svc.ExportReceipt(context.Background(), "RCP-20240615-00AB")
	require.NoError(t, err)

	assert.Equal(t, "/receipts/receipt_RCP-20240615-00AB.pdf", path)
	require.Len(t, renderer.rendered, 1)
	assert.Equal(t, "Asha Verma", renderer.rendered[0].StudentName)
	assert.Contains(t, writer.saved, "receipt_RCP-20240615-00AB.pdf")
}

func TestExportReceiptUnknownPayment(t *testing.T) {
	svc, _, _, _ := newPaymentFixture(15000)

	_, err := svc.ExportReceipt(context.Background(), "RCP-20240615-FFFF")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}
