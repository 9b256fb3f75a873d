package invoice

import (
	"fmt"

	"github.com/Razaranyi/GreenInvoice/internal/common"
	"github.com/Razaranyi/GreenInvoice/internal/model"
)

// Build combines a payment record, its resolved method and a provider client
// ID into a document request. The paid amount is split evenly across the
// treatment line items; fractional remainders are not redistributed, so the
// line items may undersum the payment block by sub-cent amounts. The payment
// block always carries the full amount with a due date equal to the payment
// date.
//
// Build is deterministic: identical inputs produce identical requests, and
// the request's fixed field order makes their JSON byte-identical.
func Build(rec model.PaymentRecord, method model.PaymentMethod, clientID string) (model.InvoiceRequest, error) {
	if rec.TreatmentCount <= 0 {
		return model.InvoiceRequest{}, fmt.Errorf("%w: treatment count %d", common.ErrInvalidRecord, rec.TreatmentCount)
	}
	if len(rec.TreatmentDates) == 0 {
		return model.InvoiceRequest{}, fmt.Errorf("%w: no treatment dates", common.ErrInvalidRecord)
	}
	if len(rec.TreatmentDates) != rec.TreatmentCount {
		return model.InvoiceRequest{}, fmt.Errorf("%w: %d treatment dates for count %d",
			common.ErrInvalidRecord, len(rec.TreatmentDates), rec.TreatmentCount)
	}

	unitPrice := rec.AmountPaid / float64(rec.TreatmentCount)

	income := make([]model.IncomeItem, 0, rec.TreatmentCount)
	for _, date := range rec.TreatmentDates {
		income = append(income, model.IncomeItem{
			Description: fmt.Sprintf("Therapy session on %s", date),
			Quantity:    1,
			Price:       unitPrice,
			Currency:    model.CurrencyILS,
			VATType:     0,
		})
	}

	return model.InvoiceRequest{
		Type:     model.DocTypeTaxInvoiceReceipt,
		Date:     rec.DatePaid,
		Lang:     model.LangEnglish,
		Currency: model.CurrencyILS,
		VATType:  0,
		Discount: model.Discount{Amount: 0, Type: "sum"},
		Client:   model.ClientRef{ID: clientID},
		Income:   income,
		Payment:  []model.PaymentItem{paymentItem(rec, method)},
	}, nil
}

func paymentItem(rec model.PaymentRecord, method model.PaymentMethod) model.PaymentItem {
	item := model.PaymentItem{
		Price:    rec.AmountPaid,
		Date:     rec.DatePaid,
		Currency: model.CurrencyILS,
	}

	switch m := method.(type) {
	case model.AppPayment:
		item.Type = model.PaymentTypeApp
		item.AppType = m.AppID
	case model.BankTransfer:
		item.Type = model.PaymentTypeBankTransfer
		item.BankName = m.Bank
		item.BankBranch = m.Branch
		item.BankAccount = m.Account
	}

	return item
}
