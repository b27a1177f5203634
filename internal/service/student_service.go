package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/priorcoder/institute-manager/internal/idgen"
	"github.com/priorcoder/institute-manager/internal/models"
	appErrors "github.com/priorcoder/institute-manager/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context) ([]models.Student, error)
	Search(ctx context.Context, key string) ([]models.Student, error)
	FindByID(ctx context.Context, id int64) (*models.Student, error)
	LastExternalIDForYear(ctx context.Context, prefix string) (string, error)
	Create(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id int64) error
}

// AddStudentRequest describes student registration input.
type AddStudentRequest struct {
	Name    string `validate:"required"`
	Phone   string `validate:"required"`
	Email   string
	Address string
}

// StudentService orchestrates student workflows.
type StudentService struct {
	repo      studentRepository
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewStudentService constructs StudentService.
func NewStudentService(repo studentRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, validator: validate, logger: logger, now: time.Now}
}

// Add registers a student and assigns the next external id for the current
// year. The sequence is re-derived from the store on every call so restarts
// stay correct; ids are never reused.
func (s *StudentService) Add(ctx context.Context, req AddStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, "name and phone number are required")
	}

	year := s.now().Year()
	last, err := s.repo.LastExternalIDForYear(ctx, idgen.StudentIDPrefix(year))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to derive student id")
	}
	externalID, err := idgen.NextStudentID(year, last)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to derive student id")
	}

	student := &models.Student{
		StudentID: externalID,
		Name:      req.Name,
		Phone:     req.Phone,
		Email:     req.Email,
		Address:   req.Address,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to create student")
	}
	s.logger.Sugar().Infow("student added", "student_id", student.StudentID, "internal_id", student.ID)
	return student, nil
}

// List returns all students.
func (s *StudentService) List(ctx context.Context) ([]models.Student, error) {
	students, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to list students")
	}
	return students, nil
}

// Search returns students matching a name or external-id substring.
func (s *StudentService) Search(ctx context.Context, key string) ([]models.Student, error) {
	students, err := s.repo.Search(ctx, key)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to search students")
	}
	return students, nil
}

// Delete removes a student by internal id. Enrollment rows are not cascaded;
// their snapshots remain valid history.
func (s *StudentService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to delete student")
	}
	s.logger.Sugar().Infow("student deleted", "internal_id", id)
	return nil
}
