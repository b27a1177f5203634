package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/priorcoder/institute-manager/internal/models"
)

func TestEnrollmentRepositoryCreateSnapshotsCourseData(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO enrollments (student_id, student_name, course_name, course_fee, course_duration, enrollment_date)")).
		WithArgs(int64(1), "Asha", "Python Basics", int64(5000), 3, "2024-06-15").
		WillReturnResult(sqlmock.NewResult(21, 1))

	enrollment := &models.Enrollment{
		StudentID:      1,
		StudentName:    "Asha",
		CourseName:     "Python Basics",
		CourseFee:      5000,
		CourseDuration: 3,
		EnrollmentDate: "2024-06-15",
	}
	require.NoError(t, repo.Create(context.Background(), enrollment))
	require.Equal(t, int64(21), enrollment.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCourseNamesForStudent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{"course_name"}).AddRow("Python Basics").AddRow("Data Science")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT course_name FROM enrollments WHERE student_id = ?")).
		WithArgs(int64(1)).
		WillReturnRows(rows)

	names, err := repo.CourseNamesForStudent(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, []string{"Python Basics", "Data Science"}, names)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositorySearchBalancesReportsZeroForUnpaid(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "course_name", "course_fee", "total_paid"}).
		AddRow(1, "Python Basics", 5000, 2000).
		AddRow(2, "Data Science", 8000, 0)
	mock.ExpectQuery("SELECT e.id, e.course_name, e.course_fee").
		WithArgs("STU2024-0001", "%STU2024-0001%").
		WillReturnRows(rows)

	balances, err := repo.SearchBalancesByIdentifier(context.Background(), "STU2024-0001")
	require.NoError(t, err)
	require.Len(t, balances, 2)
	require.Equal(t, int64(0), balances[1].TotalPaid)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryDeleteByStudentAndCourse(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM enrollments WHERE student_id = ? AND course_name = ?")).
		WithArgs(int64(1), "Python Basics").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.DeleteByStudentAndCourse(context.Background(), 1, "Python Basics"))
	require.NoError(t, mock.ExpectationsWereMet())
}
