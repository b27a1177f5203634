package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/priorcoder/institute-manager/internal/backup"
	"github.com/priorcoder/institute-manager/internal/service"
	"github.com/priorcoder/institute-manager/pkg/config"
)

// App bundles the wired services the commands operate on.
type App struct {
	Config       *config.Config
	Logger       *zap.Logger
	Courses      *service.CourseService
	Students     *service.StudentService
	Enrollments  *service.EnrollmentService
	Payments     *service.PaymentService
	Orchestrator *backup.Orchestrator
	Settings     *backup.SettingsStore
}

// NewRootCommand builds the institute command tree.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "institute",
		Short:         "Course, student and fee management for a training institute",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newCourseCommand(app),
		newStudentCommand(app),
		newEnrollmentCommand(app),
		newPaymentCommand(app),
		newBackupCommand(app),
		newSettingsCommand(app),
	)
	return root
}
