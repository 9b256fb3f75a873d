// Package invoice turns payment records into provider document requests.
package invoice

import (
	"fmt"

	"github.com/Razaranyi/GreenInvoice/internal/common"
	"github.com/Razaranyi/GreenInvoice/internal/model"
)

// ResolveMethod selects the record's payment method from its marker flags.
// The flags are checked in fixed priority order bit > paybox > eft; when a
// row inconsistently sets several, the first wins silently. No flag at all
// is an error.
func ResolveMethod(rec model.PaymentRecord) (model.PaymentMethod, error) {
	switch {
	case rec.Flags.Bit:
		return model.AppPayment{AppID: model.AppTypeBit}, nil
	case rec.Flags.Paybox:
		return model.AppPayment{AppID: model.AppTypePaybox}, nil
	case rec.Flags.EFT:
		// Absent bank sub-fields pass through as empty strings.
		return model.BankTransfer{
			Bank:    rec.Bank.Name,
			Branch:  rec.Bank.Branch,
			Account: rec.Bank.Account,
		}, nil
	default:
		return nil, fmt.Errorf("%w for client %q", common.ErrNoPaymentMethod, rec.ClientName)
	}
}
