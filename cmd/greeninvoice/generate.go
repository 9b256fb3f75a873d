package main

import (
	"github.com/spf13/cobra"

	"github.com/Razaranyi/GreenInvoice/internal/service"
)

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Issue tax invoice receipts for every unbilled row",
		Long: `Issue a real tax invoice receipt for every billable row and mark the
row as invoiced. Rows already marked are skipped until the first new invoice
goes out; after that an already-invoiced row halts the run, since it means
the sheet changed underneath us.

Every issued invoice is recorded in the local audit log, including rows
whose spreadsheet flag could not be written back.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipeline(cmd.Context(), service.ModeGenerate)
		},
	}

	addSpreadsheetFlags(cmd)

	return cmd
}
