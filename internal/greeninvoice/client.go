// Package greeninvoice provides a client for the GreenInvoice REST API.
package greeninvoice

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Razaranyi/GreenInvoice/internal/common"
	"github.com/Razaranyi/GreenInvoice/internal/model"
	"github.com/Razaranyi/GreenInvoice/internal/service"
)

// DefaultBaseURL is the production API endpoint.
const DefaultBaseURL = "https://api.greeninvoice.co.il/api/v1"

const searchPageSize = 5

// Client implements the BillingClient interface against GreenInvoice.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	apiSecret  string
	token      string
	retryOpts  service.RetryOptions
}

// NewClient creates a GreenInvoice client. The client holds no token until
// Authenticate succeeds.
func NewClient(baseURL, apiKey, apiSecret string) (*Client, error) {
	if apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("%w: api key and secret are required", common.ErrMissingCredential)
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		baseURL:   baseURL,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		retryOpts: service.RetryOptions{MaxAttempts: 3},
	}, nil
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Authenticate exchanges the API key pair for a JWT bearer token.
func (c *Client) Authenticate(ctx context.Context) error {
	payload := map[string]string{
		"id":     c.apiKey,
		"secret": c.apiSecret,
	}

	var resp tokenResponse
	if err := c.post(ctx, "/account/token", payload, &resp); err != nil {
		var providerErr *common.ProviderError
		if isAuthStatus(err, &providerErr) {
			return fmt.Errorf("%w: %v", common.ErrAuth, err)
		}
		return err
	}

	if resp.Token == "" {
		return fmt.Errorf("%w: empty token in response", common.ErrAuth)
	}

	c.token = resp.Token
	slog.Debug("Obtained GreenInvoice session token")
	return nil
}

// SearchClientByName looks up active clients by display name.
func (c *Client) SearchClientByName(ctx context.Context, name string) (model.ClientSearchResult, error) {
	payload := map[string]any{
		"name":     name,
		"active":   "true",
		"page":     1,
		"pageSize": searchPageSize,
	}

	var result model.ClientSearchResult
	if err := c.post(ctx, "/clients/search", payload, &result); err != nil {
		return model.ClientSearchResult{}, fmt.Errorf("failed to search client %q: %w", name, err)
	}

	slog.Debug("Client search completed", "name", name, "total", result.Total)
	return result, nil
}

type previewResponse struct {
	File string `json:"file"`
}

// Preview requests a non-binding render of the document and returns the
// decoded PDF bytes.
func (c *Client) Preview(ctx context.Context, req model.InvoiceRequest) ([]byte, error) {
	var resp previewResponse
	if err := c.post(ctx, "/documents/preview", req, &resp); err != nil {
		return nil, fmt.Errorf("failed to preview document: %w", err)
	}

	if resp.File == "" {
		return nil, fmt.Errorf("preview response carried no file")
	}

	pdf, err := base64.StdEncoding.DecodeString(resp.File)
	if err != nil {
		return nil, fmt.Errorf("failed to decode preview file: %w", err)
	}

	return pdf, nil
}

// Generate issues the document for real and returns the provider's receipt.
func (c *Client) Generate(ctx context.Context, req model.InvoiceRequest) (model.Receipt, error) {
	var receipt model.Receipt
	if err := c.post(ctx, "/documents", req, &receipt); err != nil {
		return model.Receipt{}, fmt.Errorf("failed to generate document: %w", err)
	}

	slog.Info("Document generated", "document_id", receipt.ID, "number", receipt.Number)
	return receipt, nil
}

type addClientResponse struct {
	ID string `json:"id"`
}

// AddClient creates a new provider-side client record under the given name.
func (c *Client) AddClient(ctx context.Context, name string) (string, error) {
	payload := map[string]any{
		"name":   name,
		"active": true,
	}

	var resp addClientResponse
	if err := c.post(ctx, "/clients", payload, &resp); err != nil {
		return "", fmt.Errorf("%w: %q: %v", common.ErrClientCreate, name, err)
	}

	slog.Info("Created provider client", "name", name, "id", resp.ID)
	return resp.ID, nil
}

// post sends a JSON POST and decodes the response into out. Transient
// failures are retried with backoff; non-2xx statuses surface as
// *common.ProviderError.
func (c *Client) post(ctx context.Context, endpoint string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	return common.WithRetry(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return &common.RetryableError{Err: fmt.Errorf("request to %s failed: %w", endpoint, err), Retryable: true}
		}
		defer func() { _ = resp.Body.Close() }()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return &common.ProviderError{Status: resp.StatusCode, Body: string(respBody)}
		}

		if out == nil {
			return nil
		}
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode response from %s: %w", endpoint, err)
		}
		return nil
	}, c.retryOpts)
}

func isAuthStatus(err error, target **common.ProviderError) bool {
	if !errors.As(err, target) {
		return false
	}
	status := (*target).Status
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}
