package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/priorcoder/institute-manager/internal/models"
	appErrors "github.com/priorcoder/institute-manager/pkg/errors"
)

type enrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.Enrollment) error
	FindByID(ctx context.Context, id int64) (*models.Enrollment, error)
	FindByStudentAndCourse(ctx context.Context, studentID int64, courseName string) (*models.Enrollment, error)
	CourseNamesForStudent(ctx context.Context, studentID int64) ([]string, error)
	DeleteByStudentAndCourse(ctx context.Context, studentID int64, courseName string) error
	SearchBalancesByIdentifier(ctx context.Context, identifier string) ([]models.EnrollmentBalance, error)
}

type studentReader interface {
	FindByID(ctx context.Context, id int64) (*models.Student, error)
}

type paymentCounter interface {
	CountForEnrollment(ctx context.Context, enrollmentID int64) (int, error)
}

// EnrollRequest describes an enrollment of a student into a course, carrying
// the course data to snapshot.
type EnrollRequest struct {
	StudentID  int64  `validate:"required"`
	CourseName string `validate:"required"`
	Fee        int64  `validate:"gte=0"`
	Duration   int    `validate:"gte=0"`
	Date       time.Time
}

// EnrollmentService orchestrates enrollment workflows.
type EnrollmentService struct {
	repo      enrollmentRepository
	students  studentReader
	payments  paymentCounter
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(repo enrollmentRepository, students studentReader, payments paymentCounter, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, students: students, payments: payments, validator: validate, logger: logger, now: time.Now}
}

// Enroll registers a student in a course, snapshotting the course fee and
// duration so later course edits do not change what this enrollee owes.
// The duplicate check is a read-then-write; fine for a single-user store.
func (s *EnrollmentService) Enroll(ctx context.Context, req EnrollRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, "invalid enrollment payload")
	}

	student, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to load student")
	}

	enrolled, err := s.repo.CourseNamesForStudent(ctx, req.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to check enrollments")
	}
	for _, name := range enrolled {
		if name == req.CourseName {
			return nil, appErrors.Clone(appErrors.ErrConflict, student.Name+" is already enrolled in "+req.CourseName)
		}
	}

	date := req.Date
	if date.IsZero() {
		date = s.now()
	}
	enrollment := &models.Enrollment{
		StudentID:      req.StudentID,
		StudentName:    student.Name,
		CourseName:     req.CourseName,
		CourseFee:      req.Fee,
		CourseDuration: req.Duration,
		EnrollmentDate: date.Format("2006-01-02"),
	}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to create enrollment")
	}
	s.logger.Sugar().Infow("student enrolled", "student", student.StudentID, "course", req.CourseName)
	return enrollment, nil
}

// CanUnenroll reports whether the (student, course) enrollment exists and has
// no payments recorded against it.
func (s *EnrollmentService) CanUnenroll(ctx context.Context, studentID int64, courseName string) (bool, error) {
	enrollment, err := s.repo.FindByStudentAndCourse(ctx, studentID, courseName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to load enrollment")
	}
	count, err := s.payments.CountForEnrollment(ctx, enrollment.ID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to count payments")
	}
	return count == 0, nil
}

// Unenroll deletes the enrollment for the pair. It fails once any payment
// exists against the enrollment; callers are expected to confirm the
// destructive action beforehand.
func (s *EnrollmentService) Unenroll(ctx context.Context, studentID int64, courseName string) error {
	ok, err := s.CanUnenroll(ctx, studentID, courseName)
	if err != nil {
		return err
	}
	if !ok {
		return appErrors.Clone(appErrors.ErrState, "cannot unenroll: enrollment not found or payments already recorded")
	}
	if err := s.repo.DeleteByStudentAndCourse(ctx, studentID, courseName); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to delete enrollment")
	}
	s.logger.Sugar().Infow("student unenrolled", "internal_id", studentID, "course", courseName)
	return nil
}

// ListForStudent returns the course names the student is enrolled in.
func (s *EnrollmentService) ListForStudent(ctx context.Context, studentID int64) ([]string, error) {
	names, err := s.repo.CourseNamesForStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to list enrollments")
	}
	return names, nil
}

// SearchByIdentifier matches enrollments by exact external student id or a
// student-name substring, each with its aggregated payment total.
func (s *EnrollmentService) SearchByIdentifier(ctx context.Context, identifier string) ([]models.EnrollmentBalance, error) {
	balances, err := s.repo.SearchBalancesByIdentifier(ctx, identifier)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to search enrollments")
	}
	return balances, nil
}
