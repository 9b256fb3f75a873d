// Package model defines the core domain models used throughout the application.
package model

// ISODate is the canonical date layout every cell date is normalized to.
const ISODate = "2006-01-02"

// PaymentFlags holds the mutually exclusive payment-method markers from a
// spreadsheet row. At most one flag should be set; the resolver enforces the
// priority order when a row disagrees.
type PaymentFlags struct {
	Bit    bool
	Paybox bool
	EFT    bool
}

// BankDetails holds the electronic-transfer fields of a row. Absent cells are
// carried as empty strings, never as errors.
type BankDetails struct {
	Name    string
	Branch  string
	Account string
}

// PaymentRecord is the typed form of one spreadsheet row, immutable once
// built by the normalizer.
type PaymentRecord struct {
	ClientName      string
	DatePaid        string // ISO date, empty when the cell was blank
	TreatmentDates  []string
	Bank            BankDetails
	AmountPaid      float64
	TreatmentCount  int
	Flags           PaymentFlags
	AlreadyInvoiced bool
}

// PaymentMethod is the resolved payment variant for a record. Exactly one
// concrete type implements it per record.
type PaymentMethod interface {
	paymentMethod()
}

// AppPayment is a payment made through a payment app (Bit or PayBox).
type AppPayment struct {
	AppID int
}

// BankTransfer is an electronic funds transfer with the payer's bank details.
type BankTransfer struct {
	Bank    string
	Branch  string
	Account string
}

func (AppPayment) paymentMethod()   {}
func (BankTransfer) paymentMethod() {}

// App type identifiers used by the billing provider.
const (
	AppTypeBit    = 1
	AppTypePaybox = 3
)
