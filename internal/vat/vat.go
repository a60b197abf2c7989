// Package vat implements decimal-safe VAT arithmetic for invoices:
// receipt number formatting and parsing, invoice validation against a
// jurisdiction config, and per-rate tax breakdowns. The package is pure:
// no I/O, no shared state, safe for concurrent use.
package vat

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is a single invoice position. Monetary fields are decimals;
// callers must never round-trip them through float64.
type LineItem struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	VATRate     decimal.Decimal // percent, 0..100
	Category    string
	NetAmount   decimal.Decimal
	VATAmount   decimal.Decimal
	GrossAmount decimal.Decimal
}

// Invoice is the validation input. It carries no identity or persistence
// concerns, only the fields the arithmetic and presence checks look at.
type Invoice struct {
	SupplierName  string
	SupplierVATID string
	ReceiptNumber string
	IssueDate     time.Time
	Lines         []LineItem
	Total         decimal.Decimal
}

// Config describes one jurisdiction: whether VAT applies at all, the
// standard rate, the allowed categories and which invoice fields are
// mandatory. Values are immutable; select a variant explicitly instead
// of mutating the default.
type Config struct {
	Enabled        bool
	DefaultRate    decimal.Decimal
	Categories     []string
	RequiredFields []string
}

// Field names accepted in Config.RequiredFields.
const (
	FieldSupplierName  = "supplierName"
	FieldSupplierVATID = "supplierVATID"
	FieldReceiptNumber = "receiptNumber"
	FieldIssueDate     = "issueDate"
	FieldLines         = "lines"
	FieldTotal         = "total"
)

// DefaultConfig is the disabled jurisdiction: rate 0, nothing mandatory.
var DefaultConfig = Config{Enabled: false, DefaultRate: decimal.Zero}

// ComputeVAT returns net × rate / 100 rounded half-up to 2 decimals.
func ComputeVAT(net, rate decimal.Decimal) decimal.Decimal {
	return net.Mul(rate).Div(decimal.NewFromInt(100)).Round(2)
}
