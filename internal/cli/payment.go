package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/priorcoder/institute-manager/internal/service"
)

func newPaymentCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payment",
		Short: "Record fee payments and export receipts",
	}
	cmd.AddCommand(
		newPaymentRecordCommand(app),
		newPaymentHistoryCommand(app),
		newPaymentTotalCommand(app),
		newReceiptExportCommand(app),
	)
	return cmd
}

func newPaymentRecordCommand(app *App) *cobra.Command {
	var amount int64
	var dateFlag string

	cmd := &cobra.Command{
		Use:   "record <enrollment id>",
		Short: "Record a fee payment against an enrollment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enrollmentID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid enrollment id %q", args[0])
			}

			var date time.Time
			if dateFlag != "" {
				date, err = time.Parse("2006-01-02", dateFlag)
				if err != nil {
					return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", dateFlag)
				}
			}

			receiptNo, err := app.Payments.Record(cmd.Context(), service.RecordPaymentRequest{
				EnrollmentID: enrollmentID,
				Amount:       amount,
				Date:         date,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Payment recorded, receipt %s\n", receiptNo)
			return nil
		},
	}
	cmd.Flags().Int64Var(&amount, "amount", 0, "payment amount in rupees")
	cmd.Flags().StringVar(&dateFlag, "date", "", "payment date (YYYY-MM-DD, defaults to today)")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newPaymentHistoryCommand(app *App) *cobra.Command {
	var course string

	cmd := &cobra.Command{
		Use:   "history <student id or name>",
		Short: "Show payment history for a student, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := app.Payments.History(cmd.Context(), args[0], course)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No payments found")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RECEIPT\tDATE\tSTUDENT\tCOURSE\tAMOUNT")
			for _, r := range records {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", r.ReceiptNo, r.Date, r.StudentName, r.CourseName, r.Amount)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&course, "course", "", "restrict to a course name")
	return cmd
}

func newPaymentTotalCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "total <enrollment id>",
		Short: "Show the amount paid against an enrollment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enrollmentID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid enrollment id %q", args[0])
			}
			total, err := app.Payments.TotalPaid(cmd.Context(), enrollmentID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Total paid: %d\n", total)
			return nil
		},
	}
}

func newReceiptExportCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "receipt <receipt number>",
		Short: "Export a payment receipt as PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := app.Payments.ExportReceipt(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Receipt written to %s\n", path)
			return nil
		},
	}
}
