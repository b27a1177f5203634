package cli

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/priorcoder/institute-manager/internal/service"
	appErrors "github.com/priorcoder/institute-manager/pkg/errors"
)

func newEnrollmentCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enrollment",
		Short: "Manage course enrollments",
	}
	cmd.AddCommand(
		newEnrollCommand(app),
		newUnenrollCommand(app),
		newEnrollmentListCommand(app),
		newEnrollmentSearchCommand(app),
	)
	return cmd
}

func newEnrollCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <student internal id> <course name>",
		Short: "Enroll a student in a catalogue course",
		Long:  "Enrolls a student in a course, snapshotting the course's current fee and duration into the enrollment.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			studentID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid student id %q", args[0])
			}

			courses, err := app.Courses.List(cmd.Context())
			if err != nil {
				return err
			}
			var fee int64
			var duration int
			found := false
			courseName := args[1]
			for _, c := range courses {
				if strings.EqualFold(c.Name, courseName) {
					courseName = c.Name
					fee = c.Fee
					duration = c.Duration
					found = true
					break
				}
			}
			if !found {
				return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("course %q not found", args[1]))
			}

			enrollment, err := app.Enrollments.Enroll(cmd.Context(), service.EnrollRequest{
				StudentID:  studentID,
				CourseName: courseName,
				Fee:        fee,
				Duration:   duration,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s enrolled in %s (enrollment %d, fee %d)\n",
				enrollment.StudentName, enrollment.CourseName, enrollment.ID, enrollment.CourseFee)
			return nil
		},
	}
}

func newUnenrollCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <student internal id> <course name>",
		Short: "Remove an enrollment that has no payments against it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			studentID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid student id %q", args[0])
			}
			if err := app.Enrollments.Unenroll(cmd.Context(), studentID, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Enrollment in %s removed\n", args[1])
			return nil
		},
	}
}

func newEnrollmentListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list <student internal id>",
		Short: "List the courses a student is enrolled in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			studentID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid student id %q", args[0])
			}
			names, err := app.Enrollments.ListForStudent(cmd.Context(), studentID)
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No enrollments found")
				return nil
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newEnrollmentSearchCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "search <student id or name>",
		Short: "Show enrollments with fee balances for a student",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			balances, err := app.Enrollments.SearchByIdentifier(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(balances) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No enrollments found")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ENROLLMENT\tCOURSE\tFEE\tPAID\tBALANCE")
			for _, b := range balances {
				fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\n",
					b.EnrollmentID, b.CourseName, b.CourseFee, b.TotalPaid, b.CourseFee-b.TotalPaid)
			}
			return w.Flush()
		},
	}
}
