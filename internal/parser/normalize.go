// Package parser normalizes raw spreadsheet rows into typed payment records.
package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Razaranyi/GreenInvoice/internal/common"
	"github.com/Razaranyi/GreenInvoice/internal/model"
)

// Column names the payment sheet must carry.
const (
	ColClient       = "Client"
	ColDatePaid     = "Date Paid"
	ColAmountPaid   = "Amount Paid"
	ColNumberOfApts = "Number of Apts"
	ColTreatment    = "Treatment"
	ColBank         = "Bank"
	ColBankBranch   = "Bank Branch"
	ColAccount      = "Account #"
	ColInvoice      = "Invoice"
	ColBit          = "Bit"
	ColPaybox       = "Paybox"
	ColEFT          = "EFT"
)

// RequiredColumns lists every column a row must provide, in sheet order.
var RequiredColumns = []string{
	ColClient, ColDatePaid, ColAmountPaid, ColNumberOfApts, ColTreatment,
	ColBank, ColBankBranch, ColAccount, ColInvoice, ColBit, ColPaybox, ColEFT,
}

// Cell date layouts seen in practice sheets. ISO first: that is what this
// tool itself writes back.
var dateLayouts = []string{
	model.ISODate,
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
	"1/2/06",
}

// Normalize converts one raw row into a PaymentRecord. It is a pure
// transform: no I/O, no mutation of the input map.
func Normalize(row map[string]any) (model.PaymentRecord, error) {
	for _, col := range RequiredColumns {
		if _, ok := row[col]; !ok {
			return model.PaymentRecord{}, fmt.Errorf("%w: missing column %q", common.ErrMalformedRow, col)
		}
	}

	client := strings.TrimSpace(stringCell(row[ColClient]))
	if client == "" {
		return model.PaymentRecord{}, fmt.Errorf("%w: empty %q cell", common.ErrMalformedRow, ColClient)
	}

	datePaid, err := dateCell(row[ColDatePaid])
	if err != nil {
		return model.PaymentRecord{}, fmt.Errorf("%w: column %q: %v", common.ErrMalformedRow, ColDatePaid, err)
	}

	amount, err := amountCell(row[ColAmountPaid])
	if err != nil {
		return model.PaymentRecord{}, fmt.Errorf("%w: column %q: %v", common.ErrMalformedRow, ColAmountPaid, err)
	}
	if amount < 0 {
		return model.PaymentRecord{}, fmt.Errorf("%w: negative amount %v", common.ErrMalformedRow, amount)
	}

	count, err := countCell(row[ColNumberOfApts])
	if err != nil {
		return model.PaymentRecord{}, fmt.Errorf("%w: column %q: %v", common.ErrMalformedRow, ColNumberOfApts, err)
	}

	treatments, err := treatmentDates(row[ColTreatment])
	if err != nil {
		return model.PaymentRecord{}, fmt.Errorf("%w: column %q: %v", common.ErrMalformedRow, ColTreatment, err)
	}

	return model.PaymentRecord{
		ClientName:     client,
		DatePaid:       datePaid,
		AmountPaid:     amount,
		TreatmentCount: count,
		TreatmentDates: treatments,
		Flags: model.PaymentFlags{
			Bit:    flagCell(row[ColBit]),
			Paybox: flagCell(row[ColPaybox]),
			EFT:    flagCell(row[ColEFT]),
		},
		Bank: model.BankDetails{
			Name:    strings.TrimSpace(stringCell(row[ColBank])),
			Branch:  strings.TrimSpace(stringCell(row[ColBankBranch])),
			Account: strings.TrimSpace(stringCell(row[ColAccount])),
		},
		AlreadyInvoiced: flagCell(row[ColInvoice]),
	}, nil
}

// stringCell renders any cell value as text. Whole-number floats print
// without a decimal point so account numbers survive numeric cells.
func stringCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format(model.ISODate)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// dateCell normalizes a date-typed cell to ISO form. Blank yields empty, not
// an error.
func dateCell(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case time.Time:
		return val.Format(model.ISODate), nil
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return "", nil
		}
		return parseDate(s)
	default:
		return "", fmt.Errorf("unsupported date value %v", v)
	}
}

func parseDate(s string) (string, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(model.ISODate), nil
		}
	}
	return "", fmt.Errorf("unparseable date %q", s)
}

// treatmentDates accepts a single date value or comma-separated date text and
// yields an ordered ISO date sequence.
func treatmentDates(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return []string{val.Format(model.ISODate)}, nil
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return nil, nil
		}
		parts := strings.Split(s, ",")
		dates := make([]string, 0, len(parts))
		for _, part := range parts {
			iso, err := parseDate(strings.TrimSpace(part))
			if err != nil {
				return nil, err
			}
			dates = append(dates, iso)
		}
		return dates, nil
	default:
		return nil, fmt.Errorf("unsupported treatment value %v", v)
	}
}

// amountCell keeps fractional precision for monetary columns.
func amountCell(v any) (float64, error) {
	switch val := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return val, nil
	case int:
		return float64(val), nil
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return 0, nil
		}
		return strconv.ParseFloat(s, 64)
	default:
		return 0, fmt.Errorf("unsupported amount value %v", v)
	}
}

// countCell coerces numeric cells to integers, dropping the fractional part
// spreadsheets attach to whole numbers.
func countCell(v any) (int, error) {
	switch val := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return int(val), nil
	case int:
		return val, nil
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, err
		}
		return int(f), nil
	default:
		return 0, fmt.Errorf("unsupported count value %v", v)
	}
}

// flagCell reads a boolean marker cell. Blank, zero and explicit negatives
// are false; anything else counts as set.
func flagCell(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case float64:
		return val != 0
	case int:
		return val != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "", "0", "false", "no":
			return false
		default:
			return true
		}
	default:
		return true
	}
}
