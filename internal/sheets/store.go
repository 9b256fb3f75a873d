package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/Razaranyi/GreenInvoice/internal/common"
	"github.com/Razaranyi/GreenInvoice/internal/parser"
	"github.com/Razaranyi/GreenInvoice/internal/service"
)

// Store is a Google Sheets-backed RowStore, for practices that keep the
// payment log in a shared sheet instead of a local workbook. Reads happen
// once at open; MarkInvoiced updates the single Invoice cell so the write is
// durable before returning.
type Store struct {
	api        *sheetsapi.Service
	config     Config
	headers    []string
	rows       []map[string]any
	invoiceCol int
}

// Open loads the configured sheet's data region.
func Open(ctx context.Context, config Config) (*Store, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	api, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	s := &Store{api: api, config: config}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// createSheetsService creates a Google Sheets API service from either a
// service account key or OAuth2 refresh-token credentials.
func createSheetsService(ctx context.Context, config Config) (*sheetsapi.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath) // #nosec G304
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheetsapi.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		oauthConfig := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheetsapi.SpreadsheetsScope},
		}

		token := &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		}

		tokenSource = oauthConfig.TokenSource(ctx, token)
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheetsapi.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}

func (s *Store) load(ctx context.Context) error {
	var resp *sheetsapi.ValueRange
	err := common.WithRetry(ctx, func() error {
		var apiErr error
		resp, apiErr = s.api.Spreadsheets.Values.
			Get(s.config.SpreadsheetID, s.config.SheetName).
			Context(ctx).Do()
		if apiErr != nil {
			return &common.RetryableError{Err: apiErr, Retryable: true}
		}
		return nil
	}, s.retryOpts())
	if err != nil {
		return fmt.Errorf("failed to read sheet %q: %w", s.config.SheetName, err)
	}

	if len(resp.Values) == 0 {
		return fmt.Errorf("%w: sheet %q has no header row", common.ErrMalformedRow, s.config.SheetName)
	}

	headers := make([]string, len(resp.Values[0]))
	for i, h := range resp.Values[0] {
		headers[i] = strings.TrimSpace(fmt.Sprintf("%v", h))
	}

	clientCol := columnIndex(headers, parser.ColClient)
	if clientCol < 0 {
		return fmt.Errorf("%w: missing column %q", common.ErrMalformedRow, parser.ColClient)
	}
	s.invoiceCol = columnIndex(headers, parser.ColInvoice)
	if s.invoiceCol < 0 {
		return fmt.Errorf("%w: missing column %q", common.ErrMalformedRow, parser.ColInvoice)
	}
	s.headers = headers

	for _, cells := range resp.Values[1:] {
		if clientCol >= len(cells) || strings.TrimSpace(fmt.Sprintf("%v", cells[clientCol])) == "" {
			break
		}

		row := make(map[string]any, len(headers))
		for i, header := range headers {
			if header == "" {
				continue
			}
			if i < len(cells) {
				row[header] = cells[i]
			} else {
				row[header] = ""
			}
		}
		s.rows = append(s.rows, row)
	}

	slog.Debug("Loaded sheet",
		"spreadsheet_id", s.config.SpreadsheetID,
		"sheet", s.config.SheetName,
		"rows", len(s.rows))

	return nil
}

// RowCount returns the number of data rows.
func (s *Store) RowCount() int {
	return len(s.rows)
}

// Row returns a copy of the row at the zero-based data index.
func (s *Store) Row(index int) (map[string]any, error) {
	if index < 0 || index >= len(s.rows) {
		return nil, fmt.Errorf("%w: %d", common.ErrIndexOutOfRange, index)
	}

	row := make(map[string]any, len(s.rows[index]))
	for k, v := range s.rows[index] {
		row[k] = v
	}
	return row, nil
}

// MarkInvoiced writes TRUE into the row's Invoice cell.
func (s *Store) MarkInvoiced(index int) error {
	if index < 0 || index >= len(s.rows) {
		return fmt.Errorf("%w: %d", common.ErrIndexOutOfRange, index)
	}

	// Data index 0 is sheet row 2: row 1 holds the headers.
	cellRange := fmt.Sprintf("%s!%s%d", s.config.SheetName, columnLetter(s.invoiceCol), index+2)
	valueRange := &sheetsapi.ValueRange{
		Values: [][]any{{true}},
	}

	err := common.WithRetry(context.Background(), func() error {
		_, apiErr := s.api.Spreadsheets.Values.
			Update(s.config.SpreadsheetID, cellRange, valueRange).
			ValueInputOption("USER_ENTERED").Do()
		if apiErr != nil {
			return &common.RetryableError{Err: apiErr, Retryable: true}
		}
		return nil
	}, s.retryOpts())
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", cellRange, err)
	}

	s.rows[index][parser.ColInvoice] = true
	slog.Debug("Marked row invoiced", "row", index, "range", cellRange)
	return nil
}

func (s *Store) retryOpts() service.RetryOptions {
	return service.RetryOptions{
		MaxAttempts:  s.config.RetryAttempts,
		InitialDelay: s.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
}

func columnIndex(headers []string, name string) int {
	for i, h := range headers {
		if h == name {
			return i
		}
	}
	return -1
}

// columnLetter converts a zero-based column index to A1 notation.
func columnLetter(index int) string {
	letter := ""
	for index >= 0 {
		letter = string(rune('A'+index%26)) + letter
		index = index/26 - 1
	}
	return letter
}
