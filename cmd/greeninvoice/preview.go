package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Razaranyi/GreenInvoice/internal/service"
)

func previewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render non-binding invoice PDFs without issuing anything",
		Long: `Build an invoice request for every billable row and ask GreenInvoice
for a non-binding preview. The returned PDFs are saved locally; no document
is issued and no row is marked invoiced.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipeline(cmd.Context(), service.ModePreview)
		},
	}

	addSpreadsheetFlags(cmd)
	cmd.Flags().StringP("output", "o", "invoices", "directory for preview PDFs")
	_ = viper.BindPFlag("preview.output_dir", cmd.Flags().Lookup("output"))

	return cmd
}
