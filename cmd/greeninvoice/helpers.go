package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/viper"

	"github.com/Razaranyi/GreenInvoice/internal/cli"
	"github.com/Razaranyi/GreenInvoice/internal/config"
	"github.com/Razaranyi/GreenInvoice/internal/greeninvoice"
	"github.com/Razaranyi/GreenInvoice/internal/service"
	"github.com/Razaranyi/GreenInvoice/internal/sheets"
	"github.com/Razaranyi/GreenInvoice/internal/storage"
	"github.com/Razaranyi/GreenInvoice/internal/xlsx"
)

// openRowStore opens the configured spreadsheet backend. A --file path (or
// spreadsheet.file config) selects the local workbook; spreadsheet.backend
// "sheets" selects Google Sheets. With neither, the user is prompted for a
// workbook path, matching the original interactive flow.
func openRowStore(ctx context.Context) (service.RowStore, error) {
	if viper.GetString("spreadsheet.backend") == "sheets" {
		return openSheetsStore(ctx)
	}

	path := viper.GetString("spreadsheet.file")
	if path == "" {
		var err error
		path, err = promptForFile(ctx)
		if err != nil {
			return nil, err
		}
	}

	path = config.ExpandPath(path)
	sheet := viper.GetString("spreadsheet.sheet")
	if sheet == "" {
		sheet = xlsx.SheetName
	}

	return xlsx.OpenSheet(path, sheet)
}

func openSheetsStore(ctx context.Context) (service.RowStore, error) {
	cfg, err := config.LoadSheetsConfig()
	if err != nil {
		return nil, err
	}
	return sheets.Open(ctx, *cfg)
}

func promptForFile(ctx context.Context) (string, error) {
	fmt.Println(cli.FormatPrompt("Path to the payment workbook")) //nolint:forbidigo // User-facing output

	reader := cli.NewNonBlockingReader(os.Stdin)
	path, err := reader.ReadLine(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read file path: %w", err)
	}
	if path == "" {
		return "", fmt.Errorf("no spreadsheet file provided")
	}
	return path, nil
}

// newBillingClient builds and authenticates the GreenInvoice client from the
// configured API key pair.
func newBillingClient(ctx context.Context) (service.BillingClient, error) {
	client, err := greeninvoice.NewClient(
		viper.GetString("api.base_url"),
		viper.GetString("api.key"),
		viper.GetString("api.secret"),
	)
	if err != nil {
		return nil, err
	}

	if err := client.Authenticate(ctx); err != nil {
		return nil, err
	}

	return client, nil
}

// openAudit opens the local submission audit log. Auditing can be disabled
// outright with audit.enabled: false.
func openAudit(ctx context.Context) (*storage.AuditStore, error) {
	if viper.IsSet("audit.enabled") && !viper.GetBool("audit.enabled") {
		return nil, nil
	}

	dbPath := viper.GetString("audit.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/greeninvoice/audit.db"
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewAuditStore(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run audit migrations: %w", err)
	}

	return store, nil
}

func closeAudit(store *storage.AuditStore) {
	if store == nil {
		return
	}
	if err := store.Close(); err != nil {
		slog.Error("failed to close audit store", "error", err)
	}
}
