package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Razaranyi/GreenInvoice/internal/cli"
	"github.com/Razaranyi/GreenInvoice/internal/model"
)

func auditCmd() *cobra.Command {
	var unreconciledOnly bool

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "List invoices issued by previous runs",
		Long: `Print the local audit log of issued invoices. Use --unreconciled to
see only submissions whose spreadsheet flag could not be written back and
therefore need manual attention.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := openAudit(ctx)
			if err != nil {
				return err
			}
			if store == nil {
				return fmt.Errorf("audit log is disabled in config")
			}
			defer closeAudit(store)

			var subs []model.Submission
			if unreconciledOnly {
				subs, err = store.Unreconciled(ctx)
			} else {
				subs, err = store.Submissions(ctx)
			}
			if err != nil {
				return err
			}

			if len(subs) == 0 {
				fmt.Println(cli.FormatSuccess("No submissions recorded")) //nolint:forbidigo // User-facing output
				return nil
			}

			lines := make([]string, 0, len(subs))
			for _, sub := range subs {
				marker := ""
				if !sub.MarkedInvoiced {
					marker = " " + cli.FormatWarning("needs reconciliation")
				}
				lines = append(lines, fmt.Sprintf("%s  row %d  %s  %.2f ILS  doc %s%s",
					sub.CreatedAt.Format("2006-01-02 15:04"),
					sub.RowIndex,
					sub.ClientName,
					sub.Amount,
					sub.DocumentID,
					marker))
			}

			fmt.Println(cli.RenderBox("Submission Audit Log", strings.Join(lines, "\n"))) //nolint:forbidigo // User-facing output
			return nil
		},
	}

	cmd.Flags().BoolVar(&unreconciledOnly, "unreconciled", false, "show only submissions needing manual reconciliation")

	return cmd
}
