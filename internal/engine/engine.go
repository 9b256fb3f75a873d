// Package engine implements the row-to-invoice processing pipeline.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Razaranyi/GreenInvoice/internal/common"
	"github.com/Razaranyi/GreenInvoice/internal/invoice"
	"github.com/Razaranyi/GreenInvoice/internal/model"
	"github.com/Razaranyi/GreenInvoice/internal/parser"
	"github.com/Razaranyi/GreenInvoice/internal/service"
)

// Options configures a Processor.
type Options struct {
	// Audit, when set, durably records every issued invoice.
	Audit service.AuditLog
	// Progress, when set, is called after each row with (processed, total).
	Progress func(processed, total int)
	// PreviewDir is where preview PDFs are written. Empty means the
	// current directory.
	PreviewDir string
	Mode       service.RunMode
}

// Processor drives one pass over all spreadsheet rows. Each row moves
// through Normalize, CheckInvoiced, ResolveClient, BuildRequest, Dispatch
// and Persist; the skip/halt policy lives in the run state below, not in
// the states themselves.
type Processor struct {
	store       service.RowStore
	billing     service.BillingClient
	audit       service.AuditLog
	cache       *resolutionCache
	progress    func(processed, total int)
	missingSeen map[string]struct{}
	previewDir  string
	mode        service.RunMode
	missing     []string
	// allowSkips permits already-invoiced historical rows to be bypassed.
	// It starts true and is cleared the instant this run issues its first
	// real invoice: from then on an already-invoiced row means the sheet
	// changed under us and the run must halt.
	allowSkips bool
}

// New creates a processor over the given spreadsheet and billing provider.
func New(store service.RowStore, billing service.BillingClient, opts Options) *Processor {
	if opts.Mode == "" {
		opts.Mode = service.ModeCheckClients
	}
	return &Processor{
		store:       store,
		billing:     billing,
		audit:       opts.Audit,
		mode:        opts.Mode,
		previewDir:  opts.PreviewDir,
		progress:    opts.Progress,
		cache:       newResolutionCache(billing),
		allowSkips:  true,
		missingSeen: make(map[string]struct{}),
	}
}

// Run processes every row in spreadsheet order. It returns the partial
// result alongside any fatal error; rows submitted before a fatal halt stay
// committed.
func (p *Processor) Run(ctx context.Context) (*service.RunResult, error) {
	total := p.store.RowCount()
	result := &service.RunResult{}

	slog.Info("Starting invoice run", "mode", p.mode, "rows", total)

	for i := 0; i < total; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		outcome, err := p.processRow(ctx, i, result)
		result.Outcomes = append(result.Outcomes, outcome)

		if p.progress != nil {
			p.progress(i+1, total)
		}

		if err != nil {
			return result, err
		}
	}

	result.MissingClients = append(result.MissingClients, p.missing...)

	slog.Info("Invoice run completed",
		"mode", p.mode,
		"rows", total,
		"submitted", result.Submitted,
		"previewed", result.Previewed,
		"skipped", result.Skipped,
		"missing_clients", len(result.MissingClients))

	return result, nil
}

// processRow walks one row through the pipeline states. A non-nil error is
// fatal for the whole run.
func (p *Processor) processRow(ctx context.Context, index int, result *service.RunResult) (model.RowOutcome, error) {
	raw, err := p.store.Row(index)
	if err != nil {
		return failedOutcome(index, "", err), fmt.Errorf("row %d: %w", index, err)
	}

	rec, err := parser.Normalize(raw)
	if err != nil {
		return failedOutcome(index, "", err), fmt.Errorf("row %d: %w", index, err)
	}

	outcome := model.RowOutcome{Row: index, ClientName: rec.ClientName}

	// CheckInvoiced
	if rec.AlreadyInvoiced {
		if p.allowSkips {
			slog.Debug("Skipping already-invoiced row", "row", index, "client", rec.ClientName)
			outcome.Status = model.RowSkipped
			result.Skipped++
			return outcome, nil
		}
		err := fmt.Errorf("%w: row %d (%s)", common.ErrAlreadyInvoiced, index, rec.ClientName)
		return failedOutcome(index, rec.ClientName, err), err
	}

	// ResolveClient
	res, err := p.cache.Resolve(ctx, rec.ClientName)
	if err != nil {
		return failedOutcome(index, rec.ClientName, err), fmt.Errorf("row %d: %w", index, err)
	}
	if !res.Billable() {
		p.addMissing(rec.ClientName)
		if p.mode == service.ModeCheckClients {
			outcome.Status = model.RowDeferred
			return outcome, nil
		}
		err := fmt.Errorf("%w: %q (row %d)", common.ErrUnresolvedClient, rec.ClientName, index)
		return failedOutcome(index, rec.ClientName, err), err
	}

	if p.mode == service.ModeCheckClients {
		outcome.Status = model.RowChecked
		return outcome, nil
	}

	// BuildRequest
	method, err := invoice.ResolveMethod(rec)
	if err != nil {
		return failedOutcome(index, rec.ClientName, err), fmt.Errorf("row %d: %w", index, err)
	}
	req, err := invoice.Build(rec, method, res.ID)
	if err != nil {
		return failedOutcome(index, rec.ClientName, err), fmt.Errorf("row %d: %w", index, err)
	}

	// Dispatch
	switch p.mode {
	case service.ModePreview:
		return p.dispatchPreview(ctx, index, rec, req, result)
	case service.ModeGenerate:
		return p.dispatchGenerate(ctx, index, rec, res, req, result)
	default:
		err := fmt.Errorf("unknown run mode %q", p.mode)
		return failedOutcome(index, rec.ClientName, err), err
	}
}

func (p *Processor) dispatchPreview(ctx context.Context, index int, rec model.PaymentRecord, req model.InvoiceRequest, result *service.RunResult) (model.RowOutcome, error) {
	pdf, err := p.billing.Preview(ctx, req)
	if err != nil {
		return failedOutcome(index, rec.ClientName, err), fmt.Errorf("row %d: %w", index, err)
	}

	if err := p.savePreview(rec.ClientName, pdf); err != nil {
		// The preview itself succeeded; a local write failure should not
		// sink the rest of the run.
		slog.Error("Failed to save preview PDF", "row", index, "client", rec.ClientName, "error", err)
	}

	result.Previewed++
	return model.RowOutcome{Row: index, ClientName: rec.ClientName, Status: model.RowPreviewed}, nil
}

func (p *Processor) dispatchGenerate(ctx context.Context, index int, rec model.PaymentRecord, res model.ClientResolution, req model.InvoiceRequest, result *service.RunResult) (model.RowOutcome, error) {
	receipt, err := p.billing.Generate(ctx, req)
	if err != nil {
		return failedOutcome(index, rec.ClientName, err), fmt.Errorf("row %d: %w", index, err)
	}

	// First successful submission: only the historical tail before this
	// point may be skipped, never a row discovered in-progress later.
	p.allowSkips = false
	result.Submitted++

	outcome := model.RowOutcome{Row: index, ClientName: rec.ClientName, Status: model.RowSubmitted}

	// Persist
	if err := p.store.MarkInvoiced(index); err != nil {
		// The invoice is already issued upstream. Do not resubmit; flag
		// the row for manual reconciliation and keep going.
		outcome.NeedsReconciliation = true
		slog.Error("Invoice issued but row could not be marked; reconcile manually",
			"row", index,
			"client", rec.ClientName,
			"document_id", receipt.ID,
			"error", err)
	}

	p.recordSubmission(ctx, index, rec, res, receipt, !outcome.NeedsReconciliation)

	return outcome, nil
}

func (p *Processor) recordSubmission(ctx context.Context, index int, rec model.PaymentRecord, res model.ClientResolution, receipt model.Receipt, marked bool) {
	if p.audit == nil {
		return
	}

	sub := model.Submission{
		RowIndex:       index,
		ClientName:     rec.ClientName,
		ClientID:       res.ID,
		Amount:         rec.AmountPaid,
		DocumentID:     receipt.ID,
		DocumentNumber: receipt.Number,
		MarkedInvoiced: marked,
		CreatedAt:      time.Now(),
	}
	if err := p.audit.RecordSubmission(ctx, sub); err != nil {
		slog.Warn("Failed to record submission in audit log", "row", index, "error", err)
	}
}

// AddClients creates provider records for the given names, typically the
// missing-client set of a completed check run. A failed creation is logged
// and skipped, never fatal.
func (p *Processor) AddClients(ctx context.Context, names []string) (created []string, failed map[string]error) {
	failed = make(map[string]error)

	for _, name := range names {
		id, err := p.billing.AddClient(ctx, name)
		if err != nil {
			slog.Error("Failed to create client", "name", name, "error", err)
			failed[name] = err
			continue
		}
		slog.Info("Client created", "name", name, "id", id)
		created = append(created, name)
	}

	return created, failed
}

func (p *Processor) addMissing(name string) {
	if _, ok := p.missingSeen[name]; ok {
		return
	}
	p.missingSeen[name] = struct{}{}
	p.missing = append(p.missing, name)
}

func (p *Processor) savePreview(clientName string, pdf []byte) error {
	dir := p.previewDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create preview directory: %w", err)
	}

	name := fmt.Sprintf("%s_%s_Invoice.pdf",
		strings.ReplaceAll(clientName, string(os.PathSeparator), "-"),
		time.Now().Format("20060102_150405"))

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, pdf, 0o600); err != nil {
		return fmt.Errorf("failed to write preview: %w", err)
	}

	slog.Info("Preview PDF saved", "path", path)
	return nil
}

func failedOutcome(index int, client string, err error) model.RowOutcome {
	return model.RowOutcome{Row: index, ClientName: client, Status: model.RowFailed, Err: err}
}
