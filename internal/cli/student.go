package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/priorcoder/institute-manager/internal/models"
	"github.com/priorcoder/institute-manager/internal/service"
)

func newStudentCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "student",
		Short: "Manage registered students",
	}
	cmd.AddCommand(
		newStudentAddCommand(app),
		newStudentListCommand(app),
		newStudentSearchCommand(app),
		newStudentDeleteCommand(app),
	)
	return cmd
}

func newStudentAddCommand(app *App) *cobra.Command {
	var phone, email, address string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Register a student and assign the next student id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			student, err := app.Students.Add(cmd.Context(), service.AddStudentRequest{
				Name:    args[0],
				Phone:   phone,
				Email:   email,
				Address: address,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Student %q registered as %s\n", student.Name, student.StudentID)
			return nil
		},
	}
	cmd.Flags().StringVar(&phone, "phone", "", "contact phone number")
	cmd.Flags().StringVar(&email, "email", "", "contact email")
	cmd.Flags().StringVar(&address, "address", "", "postal address")
	_ = cmd.MarkFlagRequired("phone")
	return cmd
}

func newStudentListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all students",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			students, err := app.Students.List(cmd.Context())
			if err != nil {
				return err
			}
			return printStudents(cmd, students)
		},
	}
}

func newStudentSearchCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "search <name or student id>",
		Short: "Search students by name or student id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			students, err := app.Students.Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printStudents(cmd, students)
		},
	}
}

func newStudentDeleteCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <internal id>",
		Short: "Delete a student record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid student id %q", args[0])
			}
			if err := app.Students.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Student %d deleted\n", id)
			return nil
		},
	}
}

func printStudents(cmd *cobra.Command, students []models.Student) error {
	if len(students) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No students found")
		return nil
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTUDENT ID\tNAME\tPHONE\tEMAIL")
	for _, s := range students {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", s.ID, s.StudentID, s.Name, s.Phone, s.Email)
	}
	return w.Flush()
}
