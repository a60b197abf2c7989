package vat

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Result aggregates every violation found in one validation pass. Valid is
// true exactly when Errors is empty. Checks never short-circuit, so a
// single call surfaces the complete defect list.
type Result struct {
	Valid  bool
	Errors []string
}

var (
	// vatTolerance absorbs rounding noise between a stored VAT amount and
	// net × rate / 100 rounded half-up to 2 decimals.
	vatTolerance = decimal.NewFromFloat(0.02)
	// sumTolerance applies to gross = net + vat and to the invoice total
	// against the sum of line gross amounts.
	sumTolerance = decimal.NewFromFloat(0.01)

	maxRate = decimal.NewFromInt(100)
)

// ValidateInvoice checks the invoice against the jurisdiction config:
// presence of every field the config marks required, per-line arithmetic
// (positive quantity, rate in [0,100], VAT and gross consistency within
// tolerance) and the invoice total against the line sums.
func ValidateInvoice(inv Invoice, cfg Config) Result {
	var errs []string

	for _, field := range cfg.RequiredFields {
		if msg, ok := checkRequired(inv, field); !ok {
			errs = append(errs, msg)
		}
	}

	var grossSum decimal.Decimal
	for i, line := range inv.Lines {
		errs = append(errs, validateLine(i+1, line)...)
		grossSum = grossSum.Add(line.GrossAmount)
	}

	if len(inv.Lines) > 0 {
		if grossSum.Sub(inv.Total).Abs().GreaterThan(sumTolerance) {
			errs = append(errs, fmt.Sprintf(
				"invoice total %s does not match sum of line gross amounts %s",
				inv.Total.StringFixed(2), grossSum.StringFixed(2)))
		}
	}

	return Result{Valid: len(errs) == 0, Errors: errs}
}

func validateLine(n int, line LineItem) []string {
	var errs []string

	if !line.Quantity.IsPositive() {
		errs = append(errs, fmt.Sprintf("Line %d: quantity must be positive", n))
	}
	if line.VATRate.IsNegative() || line.VATRate.GreaterThan(maxRate) {
		errs = append(errs, fmt.Sprintf("Line %d: VAT rate %s is outside [0,100]", n, line.VATRate.String()))
	}

	if line.VATRate.IsPositive() {
		expected := ComputeVAT(line.NetAmount, line.VATRate)
		if expected.Sub(line.VATAmount).Abs().GreaterThan(vatTolerance) {
			errs = append(errs, fmt.Sprintf(
				"Line %d: VAT amount %s does not match rate %s%% of net %s (expected %s)",
				n, line.VATAmount.StringFixed(2), line.VATRate.String(),
				line.NetAmount.StringFixed(2), expected.StringFixed(2)))
		}
	}

	expectedGross := line.NetAmount.Add(line.VATAmount)
	if expectedGross.Sub(line.GrossAmount).Abs().GreaterThan(sumTolerance) {
		errs = append(errs, fmt.Sprintf(
			"Line %d: gross amount %s does not equal net %s + VAT %s",
			n, line.GrossAmount.StringFixed(2), line.NetAmount.StringFixed(2), line.VATAmount.StringFixed(2)))
	}

	return errs
}

func checkRequired(inv Invoice, field string) (string, bool) {
	switch field {
	case FieldSupplierName:
		if inv.SupplierName == "" {
			return "supplier name is required", false
		}
	case FieldSupplierVATID:
		if inv.SupplierVATID == "" {
			return "supplier VAT ID is required", false
		}
	case FieldReceiptNumber:
		if inv.ReceiptNumber == "" {
			return "receipt number is required", false
		}
	case FieldIssueDate:
		if inv.IssueDate.IsZero() {
			return "issue date is required", false
		}
	case FieldLines:
		if len(inv.Lines) == 0 {
			return "invoice must have at least one line item", false
		}
	case FieldTotal:
		if !inv.Total.IsPositive() {
			return "invoice total must be positive", false
		}
	default:
		return fmt.Sprintf("unknown required field %q in VAT config", field), false
	}
	return "", true
}
