package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/priorcoder/institute-manager/internal/models"
)

// PaymentRepository handles persistence of payments.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository constructs the repository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create inserts a payment row. The UNIQUE constraint on receipt_no is the
// collision guard for generated receipt numbers; callers should check
// IsUniqueViolation and regenerate.
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	const query = `INSERT INTO payments (enrollment_id, amount, receipt_no, date) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, payment.EnrollmentID, payment.Amount, payment.ReceiptNo, payment.Date)
	if err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("payment id: %w", err)
	}
	payment.ID = id
	return nil
}

// TotalPaid sums the payments recorded against an enrollment, zero if none.
func (r *PaymentRepository) TotalPaid(ctx context.Context, enrollmentID int64) (int64, error) {
	const query = `SELECT IFNULL(SUM(amount), 0) FROM payments WHERE enrollment_id = ?`
	var total int64
	if err := r.db.GetContext(ctx, &total, query, enrollmentID); err != nil {
		return 0, fmt.Errorf("total paid: %w", err)
	}
	return total, nil
}

// CountForEnrollment returns the number of payments against an enrollment.
func (r *PaymentRepository) CountForEnrollment(ctx context.Context, enrollmentID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM payments WHERE enrollment_id = ?`
	var count int
	if err := r.db.GetContext(ctx, &count, query, enrollmentID); err != nil {
		return 0, fmt.Errorf("count payments: %w", err)
	}
	return count, nil
}

// History returns payments joined with student and course context, filtered
// by a student name/id substring and an optional course name substring,
// most recent first.
func (r *PaymentRepository) History(ctx context.Context, studentKey, courseKey string) ([]models.PaymentRecord, error) {
	base := `SELECT p.id, p.receipt_no, s.student_id, s.name AS student_name, e.course_name, p.amount, p.date
        FROM payments p
        JOIN enrollments e ON p.enrollment_id = e.id
        JOIN students s ON e.student_id = s.id
        WHERE (s.name LIKE ? OR s.student_id LIKE ?)`
	like := "%" + studentKey + "%"
	args := []interface{}{like, like}

	if courseKey != "" {
		base += ` AND e.course_name LIKE ?`
		args = append(args, "%"+courseKey+"%")
	}
	base += ` ORDER BY p.date DESC`

	var records []models.PaymentRecord
	if err := r.db.SelectContext(ctx, &records, base, args...); err != nil {
		return nil, fmt.Errorf("payment history: %w", err)
	}
	return records, nil
}

// FindByReceipt returns the full payment record for a receipt number.
func (r *PaymentRepository) FindByReceipt(ctx context.Context, receiptNo string) (*models.PaymentRecord, error) {
	const query = `SELECT p.id, p.receipt_no, s.student_id, s.name AS student_name, e.course_name, p.amount, p.date
        FROM payments p
        JOIN enrollments e ON p.enrollment_id = e.id
        JOIN students s ON e.student_id = s.id
        WHERE p.receipt_no = ?`
	var record models.PaymentRecord
	if err := r.db.GetContext(ctx, &record, query, receiptNo); err != nil {
		return nil, err
	}
	return &record, nil
}

// IsUniqueViolation reports whether err is a SQLite UNIQUE constraint failure.
func IsUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
