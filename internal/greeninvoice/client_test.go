package greeninvoice

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Razaranyi/GreenInvoice/internal/common"
	"github.com/Razaranyi/GreenInvoice/internal/model"
	"github.com/Razaranyi/GreenInvoice/internal/service"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL, "key-id", "key-secret")
	require.NoError(t, err)
	client.retryOpts = service.RetryOptions{MaxAttempts: 3, InitialDelay: time.Millisecond}
	return client, server
}

func TestNewClient_RequiresCredentials(t *testing.T) {
	_, err := NewClient("", "", "secret")
	assert.ErrorIs(t, err, common.ErrMissingCredential)

	_, err = NewClient("", "key", "")
	assert.ErrorIs(t, err, common.ErrMissingCredential)
}

func TestNewClient_DefaultBaseURL(t *testing.T) {
	client, err := NewClient("", "key", "secret")
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, client.baseURL)
}

func TestAuthenticate(t *testing.T) {
	var gotPayload map[string]string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/account/token", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		_ = json.NewEncoder(w).Encode(map[string]string{"token": "jwt-abc"})
	}))

	require.NoError(t, client.Authenticate(context.Background()))
	assert.Equal(t, map[string]string{"id": "key-id", "secret": "key-secret"}, gotPayload)
	assert.Equal(t, "jwt-abc", client.token)
}

func TestAuthenticate_Rejected(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"errorMessage":"bad credentials"}`, http.StatusUnauthorized)
	}))

	err := client.Authenticate(context.Background())
	assert.ErrorIs(t, err, common.ErrAuth)
}

func TestAuthenticate_EmptyToken(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"token": ""})
	}))

	err := client.Authenticate(context.Background())
	assert.ErrorIs(t, err, common.ErrAuth)
}

func TestSearchClientByName(t *testing.T) {
	var gotPayload map[string]any
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/clients/search", r.URL.Path)
		require.Equal(t, "Bearer jwt-abc", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		_ = json.NewEncoder(w).Encode(model.ClientSearchResult{
			Total: 1,
			Items: []model.ClientMatch{{ID: "c-9", Email: "jenna@example.com"}},
		})
	}))
	client.token = "jwt-abc"

	result, err := client.SearchClientByName(context.Background(), "Jenna Reichman")
	require.NoError(t, err)

	assert.Equal(t, 1, result.Total)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "c-9", result.Items[0].ID)

	assert.Equal(t, "Jenna Reichman", gotPayload["name"])
	assert.Equal(t, "true", gotPayload["active"])
	assert.Equal(t, float64(1), gotPayload["page"])
	assert.Equal(t, float64(searchPageSize), gotPayload["pageSize"])
}

func TestPreview(t *testing.T) {
	pdf := []byte("%PDF-1.4 fake")
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/documents/preview", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"file": base64.StdEncoding.EncodeToString(pdf),
		})
	}))

	got, err := client.Preview(context.Background(), model.InvoiceRequest{})
	require.NoError(t, err)
	assert.Equal(t, pdf, got)
}

func TestPreview_MissingFile(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{})
	}))

	_, err := client.Preview(context.Background(), model.InvoiceRequest{})
	assert.Error(t, err)
}

func TestGenerate(t *testing.T) {
	var gotReq model.InvoiceRequest
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/documents", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_ = json.NewEncoder(w).Encode(model.Receipt{ID: "doc-7", Number: "320015"})
	}))

	req := model.InvoiceRequest{
		Type:     model.DocTypeTaxInvoiceReceipt,
		Date:     "2023-07-20",
		Currency: model.CurrencyILS,
	}
	receipt, err := client.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "doc-7", receipt.ID)
	assert.Equal(t, "320015", receipt.Number)
	assert.Equal(t, model.DocTypeTaxInvoiceReceipt, gotReq.Type)
}

func TestGenerate_ProviderError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"errorMessage":"document validation failed"}`, http.StatusBadRequest)
	}))

	_, err := client.Generate(context.Background(), model.InvoiceRequest{})
	require.Error(t, err)

	var providerErr *common.ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.Equal(t, http.StatusBadRequest, providerErr.Status)
	assert.Contains(t, providerErr.Body, "document validation failed")
}

func TestPost_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "upstream hiccup", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(model.Receipt{ID: "doc-1", Number: "320001"})
	}))

	receipt, err := client.Generate(context.Background(), model.InvoiceRequest{})
	require.NoError(t, err)
	assert.Equal(t, "doc-1", receipt.ID)
	assert.Equal(t, int32(3), calls.Load())
}

func TestPost_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "bad request", http.StatusBadRequest)
	}))

	_, err := client.Generate(context.Background(), model.InvoiceRequest{})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestAddClient(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/clients", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "c-new"})
	}))

	id, err := client.AddClient(context.Background(), "Jenna Reichman")
	require.NoError(t, err)
	assert.Equal(t, "c-new", id)
}

func TestAddClient_Failure(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"errorMessage":"name already exists"}`, http.StatusConflict)
	}))

	_, err := client.AddClient(context.Background(), "Jenna Reichman")
	assert.ErrorIs(t, err, common.ErrClientCreate)
}
