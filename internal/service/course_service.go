package service

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/priorcoder/institute-manager/internal/models"
	appErrors "github.com/priorcoder/institute-manager/pkg/errors"
)

type courseRepository interface {
	List(ctx context.Context) ([]models.Course, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id int64) error
}

// Course names: letters, digits and spaces only; at least one letter is
// checked separately so an all-digit name gets a precise message.
var courseNamePattern = regexp.MustCompile(`^[A-Za-z0-9 ]+$`)

// AddCourseRequest describes course creation input.
type AddCourseRequest struct {
	Name     string `validate:"required"`
	Fee      int64  `validate:"required,gt=0,lte=1000000"`
	Duration int    `validate:"required,gte=1,lte=60"`
}

// CourseService orchestrates course workflows.
type CourseService struct {
	repo      courseRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs CourseService.
func NewCourseService(repo courseRepository, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, validator: validate, logger: logger}
}

// List returns all courses.
func (s *CourseService) List(ctx context.Context) ([]models.Course, error) {
	courses, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to list courses")
	}
	return courses, nil
}

// Add validates and creates a new course.
func (s *CourseService) Add(ctx context.Context, req AddCourseRequest) (*models.Course, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, "invalid course payload")
	}
	if !courseNamePattern.MatchString(req.Name) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "course name may only contain letters, digits and spaces")
	}
	if !containsLetter(req.Name) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "course name must contain at least one letter")
	}

	exists, err := s.repo.ExistsByName(ctx, req.Name)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to check course name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a course with this name already exists")
	}

	course := &models.Course{Name: req.Name, Fee: req.Fee, Duration: req.Duration}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to create course")
	}
	s.logger.Sugar().Infow("course added", "course_id", course.ID, "name", course.Name)
	return course, nil
}

// Delete removes a course unconditionally. Enrollments keep their own
// snapshotted copy of the course data, so existing enrollees are unaffected.
func (s *CourseService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to delete course")
	}
	s.logger.Sugar().Infow("course deleted", "course_id", id)
	return nil
}

func containsLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
