package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/nurpe/vat-invoicing/internal/model"
	"github.com/nurpe/vat-invoicing/internal/vat"
)

type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

// Generate renders a printable A4 invoice with the line table, the VAT
// breakdown and the totals block.
func (g *Generator) Generate(invoice model.Invoice, breakdown []vat.BreakdownLine) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 16)
	title := "VAT INVOICE"
	if invoice.Status == model.InvoiceStatusVoid {
		title = "VAT INVOICE (VOID)"
	}
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Receipt No. %s, issued %s", invoice.ReceiptNumber, formatDate(invoice.IssueDate)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	addPartyBlock(pdf, g.fontName, "Supplier", invoice.SupplierName, invoice.SupplierVATID)
	pdf.Ln(2)
	addPartyBlock(pdf, g.fontName, "Customer", invoice.CustomerName, "")
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Line items", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)

	headers := []string{"Description", "Qty", "Unit price", "Rate %", "Net", "VAT", "Gross"}
	colWidths := []float64{60, 15, 22, 16, 22, 22, 23}
	drawTableRow(pdf, g.fontName, headers, colWidths, true)

	for _, line := range invoice.Lines {
		row := []string{
			line.Description,
			line.Quantity.String(),
			formatAmount(line.UnitPrice),
			line.VATRate.String(),
			formatAmount(line.NetAmount),
			formatAmount(line.VATAmount),
			formatAmount(line.GrossAmount),
		}
		drawTableRow(pdf, g.fontName, row, colWidths, false)
	}

	pdf.Ln(4)
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "VAT breakdown", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)

	breakdownHeaders := []string{"Rate %", "Category", "Lines", "Net", "VAT", "Gross"}
	breakdownWidths := []float64{20, 50, 20, 30, 30, 30}
	drawTableRow(pdf, g.fontName, breakdownHeaders, breakdownWidths, true)
	for _, group := range breakdown {
		row := []string{
			group.Rate.String(),
			safeValue(group.Category),
			fmt.Sprintf("%d", group.LineCount),
			formatAmount(group.NetAmount),
			formatAmount(group.VATAmount),
			formatAmount(group.GrossAmount),
		}
		drawTableRow(pdf, g.fontName, row, breakdownWidths, false)
	}

	pdf.Ln(2)
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Net total: %s %s", formatAmount(invoice.NetTotal), invoice.Currency), "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("VAT total: %s %s", formatAmount(invoice.VATTotal), invoice.Currency), "", 1, "R", false, 0, "")
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Total due: %s %s", formatAmount(invoice.Total), invoice.Currency), "", 1, "R", false, 0, "")

	if invoice.VoidReason != nil {
		pdf.Ln(2)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetFont(g.fontName, "", 10)
		pdf.MultiCell(0, 6, fmt.Sprintf("Voided: %s", *invoice.VoidReason), "", "L", false)
		pdf.SetTextColor(0, 0, 0)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func addPartyBlock(pdf *gofpdf.Fpdf, fontName, title, name, vatID string) {
	pdf.SetFont(fontName, "B", 11)
	pdf.CellFormat(0, 6, title, "", 1, "L", false, 0, "")
	pdf.SetFont(fontName, "", 10)
	pdf.MultiCell(0, 5, safeValue(name), "", "L", false)
	if vatID != "" {
		pdf.MultiCell(0, 5, fmt.Sprintf("VAT ID: %s", vatID), "", "L", false)
	}
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i > 0 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 8, col, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatAmount(value decimal.Decimal) string {
	return value.StringFixed(2)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}
