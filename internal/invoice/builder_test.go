package invoice

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Razaranyi/GreenInvoice/internal/common"
	"github.com/Razaranyi/GreenInvoice/internal/model"
)

func paidRecord() model.PaymentRecord {
	return model.PaymentRecord{
		ClientName:     "Jenna Reichman",
		DatePaid:       "2023-07-20",
		AmountPaid:     300,
		TreatmentCount: 3,
		TreatmentDates: []string{"2023-07-07", "2023-07-14", "2023-07-20"},
	}
}

func TestBuild(t *testing.T) {
	req, err := Build(paidRecord(), model.AppPayment{AppID: model.AppTypeBit}, "client-42")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if req.Type != model.DocTypeTaxInvoiceReceipt {
		t.Errorf("Type = %d, want %d", req.Type, model.DocTypeTaxInvoiceReceipt)
	}
	if req.Date != "2023-07-20" {
		t.Errorf("Date = %q", req.Date)
	}
	if req.Currency != model.CurrencyILS || req.Lang != model.LangEnglish {
		t.Errorf("Currency/Lang = %q/%q", req.Currency, req.Lang)
	}
	if req.Client.ID != "client-42" {
		t.Errorf("Client.ID = %q", req.Client.ID)
	}

	if len(req.Income) != 3 {
		t.Fatalf("len(Income) = %d, want 3", len(req.Income))
	}
	for i, item := range req.Income {
		if item.Price != 100 {
			t.Errorf("Income[%d].Price = %v, want 100", i, item.Price)
		}
		if item.Quantity != 1 {
			t.Errorf("Income[%d].Quantity = %v, want 1", i, item.Quantity)
		}
	}
	if req.Income[0].Description != "Therapy session on 2023-07-07" {
		t.Errorf("Income[0].Description = %q", req.Income[0].Description)
	}

	if len(req.Payment) != 1 {
		t.Fatalf("len(Payment) = %d, want 1", len(req.Payment))
	}
	pay := req.Payment[0]
	if pay.Type != model.PaymentTypeApp || pay.AppType != model.AppTypeBit {
		t.Errorf("payment Type/AppType = %d/%d", pay.Type, pay.AppType)
	}
	if pay.Price != 300 {
		t.Errorf("payment Price = %v, want full amount 300", pay.Price)
	}
	if pay.Date != req.Date {
		t.Errorf("payment Date = %q, want the payment date", pay.Date)
	}
}

func TestBuild_BankTransferPayment(t *testing.T) {
	method := model.BankTransfer{Bank: "Leumi", Branch: "902", Account: "12345678"}

	req, err := Build(paidRecord(), method, "client-42")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	pay := req.Payment[0]
	if pay.Type != model.PaymentTypeBankTransfer {
		t.Errorf("payment Type = %d, want %d", pay.Type, model.PaymentTypeBankTransfer)
	}
	if pay.AppType != 0 {
		t.Errorf("AppType = %d, want unset for bank transfer", pay.AppType)
	}
	if pay.BankName != "Leumi" || pay.BankBranch != "902" || pay.BankAccount != "12345678" {
		t.Errorf("bank fields = %q/%q/%q", pay.BankName, pay.BankBranch, pay.BankAccount)
	}
}

func TestBuild_UnevenSplitKeepsRawDivision(t *testing.T) {
	rec := paidRecord()
	rec.AmountPaid = 100
	rec.TreatmentCount = 3

	req, err := Build(rec, model.AppPayment{AppID: model.AppTypePaybox}, "client-42")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	want := 100.0 / 3.0
	for i, item := range req.Income {
		if item.Price != want {
			t.Errorf("Income[%d].Price = %v, want %v", i, item.Price, want)
		}
	}
	if req.Payment[0].Price != 100 {
		t.Errorf("payment Price = %v, want 100", req.Payment[0].Price)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	method := model.BankTransfer{Bank: "Leumi", Branch: "902", Account: "12345678"}

	first, err := Build(paidRecord(), method, "client-42")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	second, err := Build(paidRecord(), method, "client-42")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	a, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	b, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Errorf("repeated builds produced different JSON:\n%s\n%s", a, b)
	}
}

func TestBuild_InvalidRecords(t *testing.T) {
	tests := []struct {
		mutate func(*model.PaymentRecord)
		name   string
	}{
		{
			name:   "zero count",
			mutate: func(rec *model.PaymentRecord) { rec.TreatmentCount = 0 },
		},
		{
			name:   "negative count",
			mutate: func(rec *model.PaymentRecord) { rec.TreatmentCount = -1 },
		},
		{
			name:   "no dates",
			mutate: func(rec *model.PaymentRecord) { rec.TreatmentDates = nil },
		},
		{
			name:   "count and dates disagree",
			mutate: func(rec *model.PaymentRecord) { rec.TreatmentCount = 2 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := paidRecord()
			tt.mutate(&rec)

			_, err := Build(rec, model.AppPayment{AppID: model.AppTypeBit}, "client-42")
			if !errors.Is(err, common.ErrInvalidRecord) {
				t.Errorf("Build() error = %v, want ErrInvalidRecord", err)
			}
		})
	}
}
