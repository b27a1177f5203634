package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/priorcoder/institute-manager/internal/service"
)

func newCourseCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "course",
		Short: "Manage the course catalogue",
	}
	cmd.AddCommand(newCourseAddCommand(app), newCourseListCommand(app), newCourseDeleteCommand(app))
	return cmd
}

func newCourseAddCommand(app *App) *cobra.Command {
	var fee int64
	var duration int

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a course to the catalogue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			course, err := app.Courses.Add(cmd.Context(), service.AddCourseRequest{
				Name:     args[0],
				Fee:      fee,
				Duration: duration,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Course %q added (id %d, fee %d, %d months)\n",
				course.Name, course.ID, course.Fee, course.Duration)
			return nil
		},
	}
	cmd.Flags().Int64Var(&fee, "fee", 0, "total course fee in rupees")
	cmd.Flags().IntVar(&duration, "duration", 0, "course duration in months")
	_ = cmd.MarkFlagRequired("fee")
	_ = cmd.MarkFlagRequired("duration")
	return cmd
}

func newCourseListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all courses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			courses, err := app.Courses.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(courses) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No courses found")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tFEE\tDURATION")
			for _, c := range courses {
				fmt.Fprintf(w, "%d\t%s\t%d\t%d months\n", c.ID, c.Name, c.Fee, c.Duration)
			}
			return w.Flush()
		},
	}
}

func newCourseDeleteCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a course (existing enrollments keep their snapshotted fee)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid course id %q", args[0])
			}
			if err := app.Courses.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Course %d deleted\n", id)
			return nil
		},
	}
}
