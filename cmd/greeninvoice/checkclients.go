package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Razaranyi/GreenInvoice/internal/service"
)

func checkClientsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check-clients",
		Short: "Verify every row's client exists with the billing provider",
		Long: `Walk the payment spreadsheet and resolve each client name against
GreenInvoice without issuing anything. Unresolved or ambiguous names are
collected and can be created with the provider at the end of the run.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipeline(cmd.Context(), service.ModeCheckClients)
		},
	}

	addSpreadsheetFlags(cmd)

	return cmd
}

// addSpreadsheetFlags registers the flags every run command shares.
func addSpreadsheetFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("file", "f", "", "path to the payment workbook (prompted if omitted)")
	cmd.Flags().String("sheet", "", "worksheet name (default: EFT & Paybox)")

	_ = viper.BindPFlag("spreadsheet.file", cmd.Flags().Lookup("file"))
	_ = viper.BindPFlag("spreadsheet.sheet", cmd.Flags().Lookup("sheet"))
}
