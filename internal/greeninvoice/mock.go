package greeninvoice

import (
	"context"

	"github.com/Razaranyi/GreenInvoice/internal/model"
)

// MockClient is a mock implementation of BillingClient for testing.
type MockClient struct {
	// Functions that can be set by tests to control behavior
	AuthenticateFn       func(ctx context.Context) error
	SearchClientByNameFn func(ctx context.Context, name string) (model.ClientSearchResult, error)
	PreviewFn            func(ctx context.Context, req model.InvoiceRequest) ([]byte, error)
	GenerateFn           func(ctx context.Context, req model.InvoiceRequest) (model.Receipt, error)
	AddClientFn          func(ctx context.Context, name string) (string, error)

	// Call tracking
	SearchCalls       []string
	PreviewCalls      []model.InvoiceRequest
	GenerateCalls     []model.InvoiceRequest
	AddClientCalls    []string
	AuthenticateCalls int
}

// NewMockClient creates a new mock billing client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Authenticate implements BillingClient.Authenticate.
func (m *MockClient) Authenticate(ctx context.Context) error {
	m.AuthenticateCalls++
	if m.AuthenticateFn != nil {
		return m.AuthenticateFn(ctx)
	}
	return nil
}

// SearchClientByName implements BillingClient.SearchClientByName.
func (m *MockClient) SearchClientByName(ctx context.Context, name string) (model.ClientSearchResult, error) {
	m.SearchCalls = append(m.SearchCalls, name)
	if m.SearchClientByNameFn != nil {
		return m.SearchClientByNameFn(ctx, name)
	}
	// Default behavior: no matches
	return model.ClientSearchResult{}, nil
}

// Preview implements BillingClient.Preview.
func (m *MockClient) Preview(ctx context.Context, req model.InvoiceRequest) ([]byte, error) {
	m.PreviewCalls = append(m.PreviewCalls, req)
	if m.PreviewFn != nil {
		return m.PreviewFn(ctx, req)
	}
	return []byte("%PDF-mock"), nil
}

// Generate implements BillingClient.Generate.
func (m *MockClient) Generate(ctx context.Context, req model.InvoiceRequest) (model.Receipt, error) {
	m.GenerateCalls = append(m.GenerateCalls, req)
	if m.GenerateFn != nil {
		return m.GenerateFn(ctx, req)
	}
	return model.Receipt{ID: "doc-1", Number: "320001"}, nil
}

// AddClient implements BillingClient.AddClient.
func (m *MockClient) AddClient(ctx context.Context, name string) (string, error) {
	m.AddClientCalls = append(m.AddClientCalls, name)
	if m.AddClientFn != nil {
		return m.AddClientFn(ctx, name)
	}
	return "client-" + name, nil
}
