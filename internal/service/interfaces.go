// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Razaranyi/GreenInvoice/internal/model"
)

// RunMode selects what a processing pass does per row.
type RunMode string

// Run modes. CheckClients only populates the missing-client set; Preview
// fetches non-binding documents; Generate issues real invoices and flips the
// spreadsheet's invoice flag.
const (
	ModeCheckClients RunMode = "checkClient"
	ModePreview      RunMode = "preview"
	ModeGenerate     RunMode = "generate"
)

// RowStore is the spreadsheet adapter. Rows are addressed by zero-based data
// index (the header row is not a data row). MarkInvoiced must be durable
// before returning; it is not safe for concurrent writers.
type RowStore interface {
	RowCount() int
	Row(index int) (map[string]any, error)
	MarkInvoiced(index int) error
}

// BillingClient is the invoicing provider adapter. All calls are synchronous;
// non-2xx transport responses surface as *common.ProviderError.
type BillingClient interface {
	// Authenticate obtains the session token used by all later calls.
	Authenticate(ctx context.Context) error
	SearchClientByName(ctx context.Context, name string) (model.ClientSearchResult, error)
	// Preview returns the decoded PDF of a non-binding document.
	Preview(ctx context.Context, req model.InvoiceRequest) ([]byte, error)
	Generate(ctx context.Context, req model.InvoiceRequest) (model.Receipt, error)
	AddClient(ctx context.Context, name string) (string, error)
}

// AuditLog durably records issued invoices for manual reconciliation.
type AuditLog interface {
	RecordSubmission(ctx context.Context, sub model.Submission) error
	Submissions(ctx context.Context) ([]model.Submission, error)
}

// RunResult summarizes one processing pass.
type RunResult struct {
	MissingClients []string
	Outcomes       []model.RowOutcome
	Submitted      int
	Previewed      int
	Skipped        int
}

// RetryOptions configures retry behavior for provider calls.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
