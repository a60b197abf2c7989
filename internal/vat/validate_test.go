package vat

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testConfig() Config {
	return Config{
		Enabled:     true,
		DefaultRate: dec("10"),
		Categories:  []string{"standard", "exempt"},
		RequiredFields: []string{
			FieldSupplierName,
			FieldSupplierVATID,
			FieldReceiptNumber,
			FieldIssueDate,
			FieldLines,
			FieldTotal,
		},
	}
}

func validInvoice() Invoice {
	return Invoice{
		SupplierName:  "Loja Central Lda",
		SupplierVATID: "TL-100200300",
		ReceiptNumber: "INV-2024-000042",
		IssueDate:     time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Lines: []LineItem{
			{
				Description: "Consulting services",
				Quantity:    dec("1"),
				UnitPrice:   dec("100.00"),
				VATRate:     dec("10"),
				Category:    "standard",
				NetAmount:   dec("100.00"),
				VATAmount:   dec("10.00"),
				GrossAmount: dec("110.00"),
			},
		},
		Total: dec("110.00"),
	}
}

func TestValidateInvoice_Valid(t *testing.T) {
	res := ValidateInvoice(validInvoice(), testConfig())
	if !res.Valid {
		t.Fatalf("expected valid, got errors: %v", res.Errors)
	}
	if len(res.Errors) != 0 {
		t.Fatalf("expected empty errors, got %v", res.Errors)
	}
}

func TestValidateInvoice_VATMismatch(t *testing.T) {
	inv := validInvoice()
	inv.Lines[0].VATAmount = dec("12.00")
	inv.Lines[0].GrossAmount = dec("112.00")
	inv.Total = dec("112.00")

	res := ValidateInvoice(inv, testConfig())
	if res.Valid {
		t.Fatal("expected invalid")
	}
	if len(res.Errors) != 1 {
		t.Fatalf("expected exactly one error, got %v", res.Errors)
	}
	if !strings.Contains(res.Errors[0], "Line 1") {
		t.Errorf("error should reference Line 1: %q", res.Errors[0])
	}
	if !strings.Contains(res.Errors[0], "10") {
		t.Errorf("error should reference the rate: %q", res.Errors[0])
	}
}

func TestValidateInvoice_WithinTolerance(t *testing.T) {
	// 0.02 on VAT and 0.01 on gross/total absorb rounding noise.
	inv := validInvoice()
	inv.Lines[0].VATAmount = dec("10.02")
	inv.Lines[0].GrossAmount = dec("110.01")
	inv.Total = dec("110.00")

	res := ValidateInvoice(inv, testConfig())
	if !res.Valid {
		t.Fatalf("tolerances should absorb the drift, got %v", res.Errors)
	}
}

func TestValidateInvoice_CollectsAllErrors(t *testing.T) {
	inv := Invoice{
		Lines: []LineItem{
			{
				Quantity:    dec("-1"),
				VATRate:     dec("150"),
				NetAmount:   dec("100.00"),
				VATAmount:   dec("0"),
				GrossAmount: dec("90.00"),
			},
		},
		Total: dec("500.00"),
	}
	res := ValidateInvoice(inv, testConfig())
	if res.Valid {
		t.Fatal("expected invalid")
	}
	// 4 missing fields, 4 line violations, 1 total mismatch.
	if len(res.Errors) != 9 {
		t.Fatalf("expected all violations collected, got %d: %v", len(res.Errors), res.Errors)
	}
}

func TestValidateInvoice_RequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Invoice)
		want   string
	}{
		{"supplier name", func(i *Invoice) { i.SupplierName = "" }, "supplier name"},
		{"supplier vat id", func(i *Invoice) { i.SupplierVATID = "" }, "VAT ID"},
		{"receipt number", func(i *Invoice) { i.ReceiptNumber = "" }, "receipt number"},
		{"issue date", func(i *Invoice) { i.IssueDate = time.Time{} }, "issue date"},
		{"lines", func(i *Invoice) { i.Lines = nil }, "line item"},
		{"total", func(i *Invoice) { i.Total = decimal.Zero; i.Lines = nil }, "total"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := validInvoice()
			tt.mutate(&inv)
			res := ValidateInvoice(inv, testConfig())
			if res.Valid {
				t.Fatal("expected invalid")
			}
			found := false
			for _, e := range res.Errors {
				if strings.Contains(e, tt.want) {
					found = true
				}
			}
			if !found {
				t.Errorf("expected an error mentioning %q, got %v", tt.want, res.Errors)
			}
		})
	}
}

func TestValidateInvoice_ZeroRateSkipsVATCheck(t *testing.T) {
	inv := validInvoice()
	inv.Lines[0].VATRate = decimal.Zero
	inv.Lines[0].VATAmount = decimal.Zero
	inv.Lines[0].GrossAmount = dec("100.00")
	inv.Total = dec("100.00")

	res := ValidateInvoice(inv, testConfig())
	if !res.Valid {
		t.Fatalf("zero-rate line should validate, got %v", res.Errors)
	}
}

func TestValidateInvoice_DisabledConfigSkipsPresence(t *testing.T) {
	// DefaultConfig has no required fields; only arithmetic applies.
	inv := Invoice{
		Lines: []LineItem{
			{
				Quantity:    dec("2"),
				VATRate:     decimal.Zero,
				NetAmount:   dec("20.00"),
				VATAmount:   decimal.Zero,
				GrossAmount: dec("20.00"),
			},
		},
		Total: dec("20.00"),
	}
	res := ValidateInvoice(inv, DefaultConfig)
	if !res.Valid {
		t.Fatalf("expected valid under default config, got %v", res.Errors)
	}
}

func TestComputeVAT_RoundsHalfUp(t *testing.T) {
	tests := []struct {
		net, rate, want string
	}{
		{"100.00", "10", "10.00"},
		{"0.05", "10", "0.01"},   // 0.005 rounds up
		{"33.33", "19", "6.33"},  // 6.3327
		{"66.67", "19", "12.67"}, // 12.6673
		{"100.00", "0", "0.00"},
	}
	for _, tt := range tests {
		got := ComputeVAT(dec(tt.net), dec(tt.rate))
		if got.StringFixed(2) != tt.want {
			t.Errorf("ComputeVAT(%s, %s) = %s, want %s", tt.net, tt.rate, got.StringFixed(2), tt.want)
		}
	}
}
