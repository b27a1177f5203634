package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/priorcoder/institute-manager/internal/models"
)

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Create persists a new enrollment row with its snapshotted course data.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	const query = `INSERT INTO enrollments (student_id, student_name, course_name, course_fee, course_duration, enrollment_date)
        VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		enrollment.StudentID, enrollment.StudentName, enrollment.CourseName,
		enrollment.CourseFee, enrollment.CourseDuration, enrollment.EnrollmentDate)
	if err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("enrollment id: %w", err)
	}
	enrollment.ID = id
	return nil
}

// FindByID returns an enrollment by its id.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id int64) (*models.Enrollment, error) {
	const query = `SELECT id, student_id, student_name, course_name, course_fee, course_duration, enrollment_date
        FROM enrollments WHERE id = ?`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// FindByStudentAndCourse returns the enrollment for a (student, course) pair.
func (r *EnrollmentRepository) FindByStudentAndCourse(ctx context.Context, studentID int64, courseName string) (*models.Enrollment, error) {
	const query = `SELECT id, student_id, student_name, course_name, course_fee, course_duration, enrollment_date
        FROM enrollments WHERE student_id = ? AND course_name = ?`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, studentID, courseName); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// CourseNamesForStudent returns the course names a student is enrolled in.
func (r *EnrollmentRepository) CourseNamesForStudent(ctx context.Context, studentID int64) ([]string, error) {
	const query = `SELECT course_name FROM enrollments WHERE student_id = ?`
	var names []string
	if err := r.db.SelectContext(ctx, &names, query, studentID); err != nil {
		return nil, fmt.Errorf("student enrollments: %w", err)
	}
	return names, nil
}

// DeleteByStudentAndCourse removes the enrollment row for the pair.
func (r *EnrollmentRepository) DeleteByStudentAndCourse(ctx context.Context, studentID int64, courseName string) error {
	const query = `DELETE FROM enrollments WHERE student_id = ? AND course_name = ?`
	if _, err := r.db.ExecContext(ctx, query, studentID, courseName); err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	return nil
}

// SearchBalancesByIdentifier matches enrollments by exact external student id
// or a substring of the snapshotted student name, aggregating payments per
// enrollment. Enrollments with no payments report a zero total.
func (r *EnrollmentRepository) SearchBalancesByIdentifier(ctx context.Context, identifier string) ([]models.EnrollmentBalance, error) {
	const query = `SELECT e.id, e.course_name, e.course_fee,
            IFNULL(SUM(p.amount), 0) AS total_paid
        FROM enrollments e
        LEFT JOIN students s ON s.id = e.student_id
        LEFT JOIN payments p ON p.enrollment_id = e.id
        WHERE s.student_id = ? OR e.student_name LIKE ?
        GROUP BY e.id`
	var balances []models.EnrollmentBalance
	if err := r.db.SelectContext(ctx, &balances, query, identifier, "%"+identifier+"%"); err != nil {
		return nil, fmt.Errorf("search enrollments: %w", err)
	}
	return balances, nil
}
