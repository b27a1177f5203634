package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/priorcoder/institute-manager/internal/models"
)

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns all students.
func (r *StudentRepository) List(ctx context.Context) ([]models.Student, error) {
	const query = `SELECT id, student_id, name, phone, email, address FROM students`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// Search returns students whose name or external id contains the key.
func (r *StudentRepository) Search(ctx context.Context, key string) ([]models.Student, error) {
	const query = `SELECT id, student_id, name, phone, email, address FROM students
        WHERE name LIKE ? OR student_id LIKE ?`
	like := "%" + key + "%"
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, like, like); err != nil {
		return nil, fmt.Errorf("search students: %w", err)
	}
	return students, nil
}

// FindByID fetches a student by internal id.
func (r *StudentRepository) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	const query = `SELECT id, student_id, name, phone, email, address FROM students WHERE id = ?`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// LastExternalIDForYear returns the highest assigned external id matching the
// year prefix, or empty when none exist. The zero-padded suffix makes the
// lexicographic maximum the numeric maximum.
func (r *StudentRepository) LastExternalIDForYear(ctx context.Context, prefix string) (string, error) {
	const query = `SELECT student_id FROM students WHERE student_id LIKE ? ORDER BY student_id DESC LIMIT 1`
	var last string
	if err := r.db.GetContext(ctx, &last, query, prefix+"%"); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("last student id: %w", err)
	}
	return last, nil
}

// Create inserts a new student and fills in the allocated internal id.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	const query = `INSERT INTO students (student_id, name, phone, email, address) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, student.StudentID, student.Name, student.Phone, student.Email, student.Address)
	if err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("student id: %w", err)
	}
	student.ID = id
	return nil
}

// Delete removes a student by internal id. Enrollments are not cascaded;
// their snapshotted rows stay valid on their own.
func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM students WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return nil
}
