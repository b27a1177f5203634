package models

// Payment records money received against an enrollment. Payments are
// immutable once created; there is no edit or delete operation.
type Payment struct {
	ID           int64  `db:"id" json:"id"`
	EnrollmentID int64  `db:"enrollment_id" json:"enrollment_id"`
	Amount       int64  `db:"amount" json:"amount"`
	ReceiptNo    string `db:"receipt_no" json:"receipt_no"`
	Date         string `db:"date" json:"date"`
}

// PaymentRecord is a payment joined with its student and course context,
// as shown in the payment history view and on printed receipts.
type PaymentRecord struct {
	ID          int64  `db:"id" json:"id"`
	ReceiptNo   string `db:"receipt_no" json:"receipt_no"`
	StudentID   string `db:"student_id" json:"student_id"`
	StudentName string `db:"student_name" json:"student_name"`
	CourseName  string `db:"course_name" json:"course_name"`
	Amount      int64  `db:"amount" json:"amount"`
	Date        string `db:"date" json:"date"`
}
