package excel

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/nurpe/vat-invoicing/internal/model"
	"github.com/nurpe/vat-invoicing/internal/vat"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleInvoice() model.Invoice {
	return model.Invoice{
		ID:            uuid.New(),
		SupplierName:  "Loja Central Lda",
		SupplierVATID: "TL-100200300",
		CustomerName:  "Cliente Exemplo",
		ReceiptNumber: "INV-2024-000042",
		IssueDate:     time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		Currency:      "USD",
		Lines: []model.InvoiceLine{
			{LineNo: 1, Description: "Consulting", Quantity: dec("2"), UnitPrice: dec("50.00"), VATRate: dec("10"), Category: "standard", NetAmount: dec("100.00"), VATAmount: dec("10.00"), GrossAmount: dec("110.00")},
			{LineNo: 2, Description: "Books", Quantity: dec("1"), UnitPrice: dec("20.00"), VATRate: dec("0"), Category: "exempt", NetAmount: dec("20.00"), VATAmount: dec("0"), GrossAmount: dec("20.00")},
		},
		NetTotal: dec("120.00"),
		VATTotal: dec("10.00"),
		Total:    dec("130.00"),
		Status:   model.InvoiceStatusIssued,
	}
}

func TestGenerate(t *testing.T) {
	invoice := sampleInvoice()
	breakdown := vat.FormatBreakdown([]vat.LineItem{
		{VATRate: dec("10"), Category: "standard", NetAmount: dec("100.00"), VATAmount: dec("10.00"), GrossAmount: dec("110.00")},
		{VATRate: dec("0"), Category: "exempt", NetAmount: dec("20.00"), GrossAmount: dec("20.00")},
	})

	content, err := NewGenerator().Generate(invoice, breakdown)
	require.NoError(t, err)
	require.NotEmpty(t, content)

	file, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer file.Close()

	assert.ElementsMatch(t, []string{"Summary", "Line Items", "VAT Breakdown"}, file.GetSheetList())

	receipt, err := file.GetCellValue("Summary", "B1")
	require.NoError(t, err)
	assert.Equal(t, "INV-2024-000042", receipt)

	total, err := file.GetCellValue("Summary", "B12")
	require.NoError(t, err)
	assert.Equal(t, "130.00", total)

	firstLine, err := file.GetCellValue("Line Items", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Consulting", firstLine)

	// Breakdown rows are sorted ascending by rate: 0 before 10.
	firstRate, err := file.GetCellValue("VAT Breakdown", "A2")
	require.NoError(t, err)
	assert.Equal(t, "0", firstRate)

	secondNet, err := file.GetCellValue("VAT Breakdown", "D3")
	require.NoError(t, err)
	assert.Equal(t, "100.00", secondNet)
}
