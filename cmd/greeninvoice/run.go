package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/Razaranyi/GreenInvoice/internal/cli"
	"github.com/Razaranyi/GreenInvoice/internal/engine"
	"github.com/Razaranyi/GreenInvoice/internal/service"
)

// runPipeline wires the spreadsheet, billing client and processor together
// and drives one pass in the given mode.
func runPipeline(ctx context.Context, mode service.RunMode) error {
	store, err := openRowStore(ctx)
	if err != nil {
		return fmt.Errorf("failed to open spreadsheet: %w", err)
	}

	billing, err := newBillingClient(ctx)
	if err != nil {
		return err
	}

	opts := engine.Options{
		Mode:       mode,
		PreviewDir: viper.GetString("preview.output_dir"),
	}

	// The audit log only matters when real invoices are issued.
	if mode == service.ModeGenerate {
		auditStore, auditErr := openAudit(ctx)
		if auditErr != nil {
			return auditErr
		}
		defer closeAudit(auditStore)
		if auditStore != nil {
			opts.Audit = auditStore
		}
	}

	bar := cli.NewRowProgressBar(os.Stderr, store.RowCount(), progressLabel(mode))
	opts.Progress = func(processed, _ int) {
		_ = bar.Set(processed)
	}

	proc := engine.New(store, billing, opts)
	result, runErr := proc.Run(ctx)
	_ = bar.Exit()

	printSummary(mode, result)

	if runErr != nil {
		return runErr
	}

	if mode == service.ModeCheckClients && len(result.MissingClients) > 0 {
		return offerClientCreation(ctx, proc, result.MissingClients)
	}

	return nil
}

func progressLabel(mode service.RunMode) string {
	switch mode {
	case service.ModePreview:
		return "Previewing invoices..."
	case service.ModeGenerate:
		return "Generating invoices..."
	default:
		return "Checking clients..."
	}
}

func printSummary(mode service.RunMode, result *service.RunResult) {
	if result == nil {
		return
	}

	var reconcile int
	for _, outcome := range result.Outcomes {
		if outcome.NeedsReconciliation {
			reconcile++
		}
	}

	lines := []string{
		fmt.Sprintf("Rows processed: %d", len(result.Outcomes)),
		fmt.Sprintf("Skipped (already invoiced): %d", result.Skipped),
	}
	switch mode {
	case service.ModePreview:
		lines = append(lines, fmt.Sprintf("Previews saved: %d", result.Previewed))
	case service.ModeGenerate:
		lines = append(lines, fmt.Sprintf("Invoices issued: %d", result.Submitted))
	case service.ModeCheckClients:
		lines = append(lines, fmt.Sprintf("Missing clients: %d", len(result.MissingClients)))
	}
	if reconcile > 0 {
		lines = append(lines, cli.FormatWarning(fmt.Sprintf("Rows needing manual reconciliation: %d", reconcile)))
	}

	fmt.Println(cli.RenderBox("Invoice Run", strings.Join(lines, "\n"))) //nolint:forbidigo // User-facing output
}

// offerClientCreation lists unresolved clients and offers to create them
// with the provider, all at once or one by one.
func offerClientCreation(ctx context.Context, proc *engine.Processor, missing []string) error {
	fmt.Println(cli.FormatWarning(fmt.Sprintf("%d clients could not be resolved:", len(missing)))) //nolint:forbidigo // User-facing output
	for _, name := range missing {
		fmt.Println("  • " + name) //nolint:forbidigo // User-facing output
	}

	reader := cli.NewNonBlockingReader(os.Stdin)

	fmt.Println(cli.FormatPrompt("Create them in GreenInvoice? (a)ll / (s)elect / (n)one")) //nolint:forbidigo // User-facing output
	choice, err := reader.ReadLine(ctx)
	if err != nil {
		return fmt.Errorf("failed to read answer: %w", err)
	}

	var toCreate []string
	switch strings.ToLower(choice) {
	case "a", "all":
		toCreate = missing
	case "s", "select":
		for _, name := range missing {
			fmt.Println(cli.FormatPrompt(fmt.Sprintf("Create %q? (y/N)", name))) //nolint:forbidigo // User-facing output
			answer, readErr := reader.ReadLine(ctx)
			if readErr != nil {
				return fmt.Errorf("failed to read answer: %w", readErr)
			}
			if strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes") {
				toCreate = append(toCreate, name)
			}
		}
	default:
		return nil
	}

	created, failed := proc.AddClients(ctx, toCreate)
	if len(created) > 0 {
		fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created %d clients", len(created)))) //nolint:forbidigo // User-facing output
	}
	for name, createErr := range failed {
		fmt.Println(cli.FormatError(fmt.Sprintf("Could not create %q: %v", name, createErr))) //nolint:forbidigo // User-facing output
	}

	return nil
}
