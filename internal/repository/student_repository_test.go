package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/priorcoder/institute-manager/internal/models"
)

func TestStudentRepositoryLastExternalIDForYear(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT student_id FROM students WHERE student_id LIKE ? ORDER BY student_id DESC LIMIT 1")).
		WithArgs("STU2024-%").
		WillReturnRows(sqlmock.NewRows([]string{"student_id"}).AddRow("STU2024-0042"))

	last, err := repo.LastExternalIDForYear(context.Background(), "STU2024-")
	require.NoError(t, err)
	require.Equal(t, "STU2024-0042", last)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryLastExternalIDForYearEmptyWhenNone(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT student_id FROM students WHERE student_id LIKE ? ORDER BY student_id DESC LIMIT 1")).
		WithArgs("STU2025-%").
		WillReturnRows(sqlmock.NewRows([]string{"student_id"}))

	last, err := repo.LastExternalIDForYear(context.Background(), "STU2025-")
	require.NoError(t, err)
	require.Empty(t, last)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreateAssignsInternalID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO students (student_id, name, phone, email, address) VALUES (?, ?, ?, ?, ?)")).
		WithArgs("STU2024-0001", "Asha", "9999999999", "", "").
		WillReturnResult(sqlmock.NewResult(11, 1))

	student := &models.Student{StudentID: "STU2024-0001", Name: "Asha", Phone: "9999999999"}
	require.NoError(t, repo.Create(context.Background(), student))
	require.Equal(t, int64(11), student.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositorySearchMatchesNameOrExternalID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_id", "name", "phone", "email", "address"}).
		AddRow(1, "STU2024-0001", "Asha", "9999999999", "", "")
	mock.ExpectQuery("SELECT id, student_id, name, phone, email, address FROM students\\s+WHERE name LIKE \\? OR student_id LIKE \\?").
		WithArgs("%Ash%", "%Ash%").
		WillReturnRows(rows)

	students, err := repo.Search(context.Background(), "Ash")
	require.NoError(t, err)
	require.Len(t, students, 1)
	require.Equal(t, "STU2024-0001", students[0].StudentID)
	require.NoError(t, mock.ExpectationsWereMet())
}
