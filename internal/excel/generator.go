package excel

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/nurpe/vat-invoicing/internal/model"
	"github.com/nurpe/vat-invoicing/internal/vat"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate renders an invoice workbook: a summary sheet, the line items
// and the per-rate VAT breakdown.
func (g *Generator) Generate(invoice model.Invoice, breakdown []vat.BreakdownLine) ([]byte, error) {
	file := excelize.NewFile()

	summarySheet := "Summary"
	file.SetSheetName("Sheet1", summarySheet)
	if err := g.writeSummary(file, summarySheet, invoice); err != nil {
		return nil, err
	}

	linesSheet := sanitizeSheetName("Line Items")
	file.NewSheet(linesSheet)
	if err := g.writeLines(file, linesSheet, invoice); err != nil {
		return nil, err
	}

	breakdownSheet := sanitizeSheetName("VAT Breakdown")
	file.NewSheet(breakdownSheet)
	if err := g.writeBreakdown(file, breakdownSheet, invoice, breakdown); err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, invoice model.Invoice) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Receipt number")
	set("B1", invoice.ReceiptNumber)
	set("A2", "Supplier")
	set("B2", invoice.SupplierName)
	set("A3", "Supplier VAT ID")
	set("B3", invoice.SupplierVATID)
	set("A4", "Customer")
	set("B4", invoice.CustomerName)
	set("A5", "Issue date")
	set("B5", formatDate(invoice.IssueDate))
	set("A6", "Currency")
	set("B6", invoice.Currency)
	set("A7", "Status")
	set("B7", string(invoice.Status))
	if invoice.VoidReason != nil {
		set("A8", "Void reason")
		set("B8", *invoice.VoidReason)
	}

	set("A10", "Net total")
	set("B10", formatAmount(invoice.NetTotal))
	set("A11", "VAT total")
	set("B11", formatAmount(invoice.VATTotal))
	set("A12", "Total")
	set("B12", formatAmount(invoice.Total))

	_ = file.SetColWidth(sheet, "A", "A", 22)
	_ = file.SetColWidth(sheet, "B", "B", 32)
	return nil
}

func (g *Generator) writeLines(file *excelize.File, sheet string, invoice model.Invoice) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	headers := []string{
		"#",
		"Description",
		"Quantity",
		"Unit price",
		"VAT rate %",
		"Category",
		"Net",
		"VAT",
		"Gross",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		set(cell, header)
	}

	for i, line := range invoice.Lines {
		row := 2 + i
		set(fmt.Sprintf("A%d", row), line.LineNo)
		set(fmt.Sprintf("B%d", row), line.Description)
		set(fmt.Sprintf("C%d", row), line.Quantity.String())
		set(fmt.Sprintf("D%d", row), formatAmount(line.UnitPrice))
		set(fmt.Sprintf("E%d", row), line.VATRate.String())
		set(fmt.Sprintf("F%d", row), line.Category)
		set(fmt.Sprintf("G%d", row), formatAmount(line.NetAmount))
		set(fmt.Sprintf("H%d", row), formatAmount(line.VATAmount))
		set(fmt.Sprintf("I%d", row), formatAmount(line.GrossAmount))
	}

	_ = file.SetColWidth(sheet, "A", "A", 5)
	_ = file.SetColWidth(sheet, "B", "B", 45)
	_ = file.SetColWidth(sheet, "C", "I", 13)
	return nil
}

func (g *Generator) writeBreakdown(file *excelize.File, sheet string, invoice model.Invoice, breakdown []vat.BreakdownLine) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	headers := []string{"VAT rate %", "Category", "Lines", "Net", "VAT", "Gross"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		set(cell, header)
	}

	for i, group := range breakdown {
		row := 2 + i
		set(fmt.Sprintf("A%d", row), group.Rate.String())
		set(fmt.Sprintf("B%d", row), group.Category)
		set(fmt.Sprintf("C%d", row), group.LineCount)
		set(fmt.Sprintf("D%d", row), formatAmount(group.NetAmount))
		set(fmt.Sprintf("E%d", row), formatAmount(group.VATAmount))
		set(fmt.Sprintf("F%d", row), formatAmount(group.GrossAmount))
	}

	totalRow := 2 + len(breakdown)
	set(fmt.Sprintf("A%d", totalRow), "Total")
	set(fmt.Sprintf("D%d", totalRow), formatAmount(invoice.NetTotal))
	set(fmt.Sprintf("E%d", totalRow), formatAmount(invoice.VATTotal))
	set(fmt.Sprintf("F%d", totalRow), formatAmount(invoice.Total))

	_ = file.SetColWidth(sheet, "A", "B", 14)
	_ = file.SetColWidth(sheet, "C", "C", 8)
	_ = file.SetColWidth(sheet, "D", "F", 13)
	return nil
}

func sanitizeSheetName(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "Sheet"
	}

	replacer := strings.NewReplacer(
		"[", "-",
		"]", "-",
		":", "-",
		"*", "-",
		"?", "-",
		"/", "-",
		"\\", "-",
	)
	value = replacer.Replace(value)
	value = strings.TrimSpace(value)
	if value == "" {
		return "Sheet"
	}
	if len(value) > 31 {
		value = value[:31]
	}
	return value
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatAmount(value decimal.Decimal) string {
	return value.StringFixed(2)
}
