package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/priorcoder/institute-manager/internal/models"
	appErrors "github.com/priorcoder/institute-manager/pkg/errors"
)

type fakeStudentRepo struct {
	students []models.Student
	lastID   string
	created  []*models.Student
	deleted  []int64
}

func (f *fakeStudentRepo) List(context.Context) ([]models.Student, error) {
	return f.students, nil
}

func (f *fakeStudentRepo) Search(_ context.Context, key string) ([]models.Student, error) {
	return f.students, nil
}

func (f *fakeStudentRepo) FindByID(_ context.Context, id int64) (*models.Student, error) {
	for i := range f.students {
		if f.students[i].ID == id {
			return &f.students[i], nil
		}
	}
	return nil, nil
}

func (f *fakeStudentRepo) LastExternalIDForYear(context.Context, string) (string, error) {
	return f.lastID, nil
}

func (f *fakeStudentRepo) Create(_ context.Context, student *models.Student) error {
	student.ID = int64(len(f.created) + 1)
	f.created = append(f.created, student)
	f.lastID = student.StudentID
	return nil
}

func (f *fakeStudentRepo) Delete(_ context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func newStudentServiceAt(repo *fakeStudentRepo, year int) *StudentService {
	svc := NewStudentService(repo, nil, nil)
	svc.now = func() time.Time { return time.Date(year, 6, 15, 10, 0, 0, 0, time.UTC) }
	return svc
}

func TestStudentAddFirstOfYear(t *testing.T) {
	repo := &fakeStudentRepo{}
	svc := newStudentServiceAt(repo, 2024)

	student, err := svc.Add(context.Background(), AddStudentRequest{Name: "Asha Verma", Phone: "9876543210"})
	require.NoError(t, err)

	assert.Equal(t, "STU2024-0001", student.StudentID)
	assert.EqualValues(t, 1, student.ID)
}

func TestStudentAddSequentialIDs(t *testing.T) {
	repo := &fakeStudentRepo{}
	svc := newStudentServiceAt(repo, 2024)

	for i := 1; i <= 3; i++ {
		_, err := svc.Add(context.Background(), AddStudentRequest{Name: "Student", Phone: "123"})
		require.NoError(t, err)
	}

	assert.Equal(t, "STU2024-0001", repo.created[0].StudentID)
	assert.Equal(t, "STU2024-0002", repo.created[1].StudentID)
	assert.Equal(t, "STU2024-0003", repo.created[2].StudentID)
}

func TestStudentAddContinuesAfterRestart(t *testing.T) {
	// The sequence is derived from the store, not from process memory.
	repo := &fakeStudentRepo{lastID: "STU2024-0147"}
	svc := newStudentServiceAt(repo, 2024)

	student, err := svc.Add(context.Background(), AddStudentRequest{Name: "Asha Verma", Phone: "123"})
	require.NoError(t, err)
	assert.Equal(t, "STU2024-0148", student.StudentID)
}

func TestStudentAddNewYearRestartsSequence(t *testing.T) {
	repo := &fakeStudentRepo{}
	svc := newStudentServiceAt(repo, 2025)

	student, err := svc.Add(context.Background(), AddStudentRequest{Name: "Asha Verma", Phone: "123"})
	require.NoError(t, err)
	assert.Equal(t, "STU2025-0001", student.StudentID)
}

func TestStudentAddRequiredFields(t *testing.T) {
	repo := &fakeStudentRepo{}
	svc := newStudentServiceAt(repo, 2024)

	_, err := svc.Add(context.Background(), AddStudentRequest{Name: "", Phone: "123"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))

	_, err = svc.Add(context.Background(), AddStudentRequest{Name: "Asha", Phone: ""})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))

	assert.Empty(t, repo.created)
}

func TestStudentAddOptionalFieldsStored(t *testing.T) {
	repo := &fakeStudentRepo{}
	svc := newStudentServiceAt(repo, 2024)

	student, err := svc.Add(context.Background(), AddStudentRequest{
		Name:    "Asha Verma",
		Phone:   "9876543210",
		Email:   "asha@example.com",
		Address: "Model Town, Ludhiana",
	})
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", student.Email)
	assert.Equal(t, "Model Town, Ludhiana", student.Address)
}

func TestStudentDelete(t *testing.T) {
	repo := &fakeStudentRepo{}
	svc := newStudentServiceAt(repo, 2024)

	require.NoError(t, svc.Delete(context.Background(), 7))
	assert.Equal(t, []int64{7}, repo.deleted)
}
