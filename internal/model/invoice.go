package model

import "time"

// GreenInvoice document constants.
const (
	DocTypeTaxInvoiceReceipt = 320
	CurrencyILS              = "ILS"
	LangEnglish              = "en"

	// Payment block types per the provider's documents schema.
	PaymentTypeBankTransfer = 4
	PaymentTypeApp          = 10
)

// InvoiceRequest is the provider-facing document request. Field order is
// fixed so identical inputs serialize to byte-identical JSON.
type InvoiceRequest struct {
	Type     int           `json:"type"`
	Date     string        `json:"date"`
	Lang     string        `json:"lang"`
	Currency string        `json:"currency"`
	VATType  int           `json:"vatType"`
	Discount Discount      `json:"discount"`
	Client   ClientRef     `json:"client"`
	Income   []IncomeItem  `json:"income"`
	Payment  []PaymentItem `json:"payment"`
}

// Discount is the document-level discount block. Always zero for this
// practice, but the provider requires the block.
type Discount struct {
	Amount float64 `json:"amount"`
	Type   string  `json:"type"`
}

// ClientRef identifies the billed client by provider ID.
type ClientRef struct {
	ID string `json:"id"`
}

// IncomeItem is one billable line, here one per treatment session.
type IncomeItem struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency"`
	VATType     int     `json:"vatType"`
}

// PaymentItem is one entry of the document's payment block. App payments set
// AppType; bank transfers set the bank fields.
type PaymentItem struct {
	Type        int     `json:"type"`
	Price       float64 `json:"price"`
	Date        string  `json:"date"`
	Currency    string  `json:"currency"`
	AppType     int     `json:"appType,omitempty"`
	BankName    string  `json:"bankName,omitempty"`
	BankBranch  string  `json:"bankBranch,omitempty"`
	BankAccount string  `json:"bankAccount,omitempty"`
}

// Receipt is the provider's acknowledgment of a generated document.
type Receipt struct {
	ID     string `json:"id"`
	Number string `json:"number"`
}

// Submission is one audit-log entry recording an issued invoice.
type Submission struct {
	CreatedAt      time.Time
	ClientName     string
	ClientID       string
	DocumentID     string
	DocumentNumber string
	ID             int64
	RowIndex       int
	Amount         float64
	MarkedInvoiced bool
}
