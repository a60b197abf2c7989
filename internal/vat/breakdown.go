package vat

import (
	"sort"

	"github.com/shopspring/decimal"
)

// BreakdownLine is one per-rate aggregate: summed net/vat/gross over every
// line item carrying that exact rate, plus the number of contributing
// lines. Category is taken from the first line seen at the rate; mixing
// categories within one rate is not detected (jurisdictions in scope use
// one category per rate).
type BreakdownLine struct {
	Rate        decimal.Decimal
	Category    string
	NetAmount   decimal.Decimal
	VATAmount   decimal.Decimal
	GrossAmount decimal.Decimal
	LineCount   int
}

// FormatBreakdown groups line items by exact VAT rate and returns the
// aggregates sorted ascending by rate. Sums are decimal additions, so the
// result is independent of input order.
func FormatBreakdown(lines []LineItem) []BreakdownLine {
	var groups []BreakdownLine
	for _, line := range lines {
		idx := -1
		for i := range groups {
			if groups[i].Rate.Equal(line.VATRate) {
				idx = i
				break
			}
		}
		if idx < 0 {
			groups = append(groups, BreakdownLine{
				Rate:     line.VATRate,
				Category: line.Category,
			})
			idx = len(groups) - 1
		}
		groups[idx].NetAmount = groups[idx].NetAmount.Add(line.NetAmount)
		groups[idx].VATAmount = groups[idx].VATAmount.Add(line.VATAmount)
		groups[idx].GrossAmount = groups[idx].GrossAmount.Add(line.GrossAmount)
		groups[idx].LineCount++
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Rate.LessThan(groups[j].Rate)
	})
	return groups
}
