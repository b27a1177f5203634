package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/priorcoder/institute-manager/internal/models"
	appErrors "github.com/priorcoder/institute-manager/pkg/errors"
)

type fakeCourseRepo struct {
	courses   []models.Course
	existing  map[string]bool
	created   []*models.Course
	deleted   []int64
	listErr   error
	existsErr error
	createErr error
}

func (f *fakeCourseRepo) List(context.Context) ([]models.Course, error) {
	return f.courses, f.listErr
}

func (f *fakeCourseRepo) ExistsByName(_ context.Context, name string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.existing[name], nil
}

func (f *fakeCourseRepo) Create(_ context.Context, course *models.Course) error {
	if f.createErr != nil {
		return f.createErr
	}
	course.ID = int64(len(f.created) + 1)
	f.created = append(f.created, course)
	return nil
}

func (f *fakeCourseRepo) Delete(_ context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func TestCourseAdd(t *testing.T) {
	repo := &fakeCourseRepo{existing: map[string]bool{}}
	svc := NewCourseService(repo, nil, nil)

	course, err := svc.Add(context.Background(), AddCourseRequest{Name: "  Python Basics  ", Fee: 15000, Duration: 6})
	require.NoError(t, err)

	assert.Equal(t, "Python Basics", course.Name)
	assert.EqualValues(t, 1, course.ID)
	require.Len(t, repo.created, 1)
}

func TestCourseAddValidation(t *testing.T) {
	cases := []struct {
		name string
		req  AddCourseRequest
	}{
		{"empty name", AddCourseRequest{Name: "", Fee: 100, Duration: 3}},
		{"whitespace name", AddCourseRequest{Name: "   ", Fee: 100, Duration: 3}},
		{"punctuation in name", AddCourseRequest{Name: "C++ Mastery!", Fee: 100, Duration: 3}},
		{"no letters", AddCourseRequest{Name: "12345", Fee: 100, Duration: 3}},
		{"zero fee", AddCourseRequest{Name: "Python", Fee: 0, Duration: 3}},
		{"negative fee", AddCourseRequest{Name: "Python", Fee: -500, Duration: 3}},
		{"fee above cap", AddCourseRequest{Name: "Python", Fee: 1000001, Duration: 3}},
		{"zero duration", AddCourseRequest{Name: "Python", Fee: 100, Duration: 0}},
		{"duration above cap", AddCourseRequest{Name: "Python", Fee: 100, Duration: 61}},
	}

	repo := &fakeCourseRepo{existing: map[string]bool{}}
	svc := NewCourseService(repo, nil, nil)

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Add(context.Background(), tc.req)
			require.Error(t, err)
			assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation), "want validation error, got %v", err)
		})
	}
	assert.Empty(t, repo.created, "invalid requests must not reach the store")
}

func TestCourseAddDuplicateName(t *testing.T) {
	repo := &fakeCourseRepo{existing: map[string]bool{"Python Basics": true}}
	svc := NewCourseService(repo, nil, nil)

	_, err := svc.Add(context.Background(), AddCourseRequest{Name: "Python Basics", Fee: 15000, Duration: 6})

	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrConflict))
	assert.Empty(t, repo.created)
}

func TestCourseAddBoundaryValuesAccepted(t *testing.T) {
	repo := &fakeCourseRepo{existing: map[string]bool{}}
	svc := NewCourseService(repo, nil, nil)

	_, err := svc.Add(context.Background(), AddCourseRequest{Name: "A", Fee: 1, Duration: 1})
	require.NoError(t, err)

	_, err = svc.Add(context.Background(), AddCourseRequest{Name: "B", Fee: 1000000, Duration: 60})
	require.NoError(t, err)
}

func TestCourseDelete(t *testing.T) {
	repo := &fakeCourseRepo{}
	svc := NewCourseService(repo, nil, nil)

	require.NoError(t, svc.Delete(context.Background(), 42))
	assert.Equal(t, []int64{42}, repo.deleted)
}
