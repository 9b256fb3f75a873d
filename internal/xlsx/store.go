// Package xlsx reads and writes the practice's payment workbook.
package xlsx

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Razaranyi/GreenInvoice/internal/common"
	"github.com/Razaranyi/GreenInvoice/internal/parser"
)

// SheetName is the worksheet the practice keeps its payment log on.
const SheetName = "EFT & Paybox"

// Store is an excelize-backed RowStore. The workbook is read once at open;
// MarkInvoiced reopens it to persist the flag so the write is durable before
// returning. Not safe for concurrent writers.
type Store struct {
	path       string
	sheet      string
	headers    []string
	rows       []map[string]any
	invoiceCol int
}

// Open loads the payment sheet. Header names come from row 1 (trailing
// whitespace trimmed — the source workbook has a stray space in "Bank
// Branch "); data rows run until the first blank Client cell.
func Open(path string) (*Store, error) {
	return OpenSheet(path, SheetName)
}

// OpenSheet loads a specific worksheet by name.
func OpenSheet(path, sheet string) (*Store, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Warn("Failed to close workbook", "path", path, "error", closeErr)
		}
	}()

	raw, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: sheet %q has no header row", common.ErrMalformedRow, sheet)
	}

	headers := make([]string, len(raw[0]))
	for i, h := range raw[0] {
		headers[i] = strings.TrimSpace(h)
	}

	clientCol := columnIndex(headers, parser.ColClient)
	if clientCol < 0 {
		return nil, fmt.Errorf("%w: missing column %q", common.ErrMalformedRow, parser.ColClient)
	}
	invoiceCol := columnIndex(headers, parser.ColInvoice)
	if invoiceCol < 0 {
		return nil, fmt.Errorf("%w: missing column %q", common.ErrMalformedRow, parser.ColInvoice)
	}

	var rows []map[string]any
	for _, cells := range raw[1:] {
		// The ledger's data region ends at the first blank Client cell.
		if clientCol >= len(cells) || strings.TrimSpace(cells[clientCol]) == "" {
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
		rows = append(rows, row)
	}

	slog.Debug("Loaded workbook", "path", path, "sheet", sheet, "rows", len(rows))

	return &Store{
		path:       path,
		sheet:      sheet,
		headers:    headers,
		rows:       rows,
		invoiceCol: invoiceCol,
	}, nil
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

// MarkInvoiced sets the row's Invoice cell to TRUE and saves the workbook.
func (s *Store) MarkInvoiced(index int) error {
	if index < 0 || index >= len(s.rows) {
		return fmt.Errorf("%w: %d", common.ErrIndexOutOfRange, index)
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to reopen workbook: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Warn("Failed to close workbook", "path", s.path, "error", closeErr)
		}
	}()

	// Data index 0 is sheet row 2: row 1 holds the headers.
	cell, err := excelize.CoordinatesToCellName(s.invoiceCol+1, index+2)
	if err != nil {
		return fmt.Errorf("failed to compute cell name: %w", err)
	}

	if err := f.SetCellValue(s.sheet, cell, true); err != nil {
		return fmt.Errorf("failed to set invoice flag: %w", err)
	}
	if err := f.Save(); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	s.rows[index][parser.ColInvoice] = true
	slog.Debug("Marked row invoiced", "row", index, "cell", cell)
	return nil
}

func columnIndex(headers []string, name string) int {
	for i, h := range headers {
		if h == name {
			return i
		}
	}
	return -1
}
