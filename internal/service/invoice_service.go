package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/vat-invoicing/internal/config"
	"github.com/nurpe/vat-invoicing/internal/model"
	"github.com/nurpe/vat-invoicing/internal/repository"
	"github.com/nurpe/vat-invoicing/internal/vat"
)

type InvoiceRepository interface {
	NextSequence(ctx context.Context, prefix string, year int) (int64, error)
	CreateInvoice(ctx context.Context, invoice model.Invoice) (*model.Invoice, error)
	GetInvoice(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	ListInvoices(ctx context.Context, filter repository.InvoiceFilter) ([]model.Invoice, error)
	UpdateInvoiceStatus(ctx context.Context, id uuid.UUID, status model.InvoiceStatus, voidReason *string) error
}

type ExcelGenerator interface {
	Generate(invoice model.Invoice, breakdown []vat.BreakdownLine) ([]byte, error)
}

type PDFGenerator interface {
	Generate(invoice model.Invoice, breakdown []vat.BreakdownLine) ([]byte, error)
}

type InvoiceService struct {
	repo          InvoiceRepository
	excel         ExcelGenerator
	pdf           PDFGenerator
	vatConfig     vat.Config
	receiptPrefix string
}

func NewInvoiceService(
	repo InvoiceRepository,
	excel ExcelGenerator,
	pdf PDFGenerator,
	cfg *config.Config,
) (*InvoiceService, error) {
	rate, err := decimal.NewFromString(cfg.VAT.DefaultRate)
	if err != nil {
		return nil, fmt.Errorf("parse VAT_DEFAULT_RATE: %w", err)
	}

	// The service allocates receipt numbers itself, so the field cannot be
	// missing at validation time and is dropped from the required list.
	required := make([]string, 0, len(cfg.VAT.RequiredFields))
	for _, field := range cfg.VAT.RequiredFields {
		if field == vat.FieldReceiptNumber {
			continue
		}
		required = append(required, field)
	}

	return &InvoiceService{
		repo:  repo,
		excel: excel,
		pdf:   pdf,
		vatConfig: vat.Config{
			Enabled:        cfg.VAT.Enabled,
			DefaultRate:    rate,
			Categories:     cfg.VAT.Categories,
			RequiredFields: required,
		},
		receiptPrefix: cfg.VAT.ReceiptPrefix,
	}, nil
}

type LineInput struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	VATRate     *decimal.Decimal // nil means the jurisdiction default rate
	Category    string
}

type IssueInvoiceInput struct {
	SupplierName  string
	SupplierVATID string
	CustomerName  string
	IssueDate     time.Time
	Currency      string
	Lines         []LineInput
	Principal     model.Principal
}

// IssueInvoice computes VAT for every line, validates the draft against the
// jurisdiction config, reserves the next receipt sequence and persists the
// invoice. Validation failures come back as *ValidationError with the
// complete defect list; nothing is written in that case.
func (s *InvoiceService) IssueInvoice(ctx context.Context, input IssueInvoiceInput) (*model.Invoice, error) {
	if !input.Principal.CanIssue() {
		return nil, ErrPermissionDenied
	}
	if len(input.Lines) == 0 {
		return nil, fmt.Errorf("%w: at least one line item is required", ErrInvalidInput)
	}

	issueDate := dateOnly(input.IssueDate)
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = "USD"
	}

	lines := make([]model.InvoiceLine, 0, len(input.Lines))
	var netTotal, vatTotal, total decimal.Decimal
	for i, in := range input.Lines {
		rate := s.vatConfig.DefaultRate
		if in.VATRate != nil {
			rate = *in.VATRate
		}
		net := in.Quantity.Mul(in.UnitPrice).Round(2)
		vatAmount := vat.ComputeVAT(net, rate)
		gross := net.Add(vatAmount)

		lines = append(lines, model.InvoiceLine{
			LineNo:      i + 1,
			Description: in.Description,
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
			VATRate:     rate,
			Category:    in.Category,
			NetAmount:   net,
			VATAmount:   vatAmount,
			GrossAmount: gross,
		})
		netTotal = netTotal.Add(net)
		vatTotal = vatTotal.Add(vatAmount)
		total = total.Add(gross)
	}

	draft := vat.Invoice{
		SupplierName:  input.SupplierName,
		SupplierVATID: input.SupplierVATID,
		IssueDate:     issueDate,
		Lines:         toVATLines(lines),
		Total:         total,
	}
	if result := vat.ValidateInvoice(draft, s.vatConfig); !result.Valid {
		return nil, &ValidationError{Errors: result.Errors}
	}

	sequence, err := s.repo.NextSequence(ctx, s.receiptPrefix, issueDate.Year())
	if err != nil {
		return nil, err
	}
	receiptNumber := vat.GenerateReceiptNumber(s.receiptPrefix, issueDate.Year(), sequence)

	saved, err := s.repo.CreateInvoice(ctx, model.Invoice{
		SupplierName:    input.SupplierName,
		SupplierVATID:   input.SupplierVATID,
		CustomerName:    input.CustomerName,
		ReceiptNumber:   receiptNumber,
		IssueDate:       issueDate,
		Currency:        currency,
		Lines:           lines,
		NetTotal:        netTotal,
		VATTotal:        vatTotal,
		Total:           total,
		Status:          model.InvoiceStatusIssued,
		CreatedByOrgID:  input.Principal.OrgID,
		CreatedByUserID: input.Principal.UserID,
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID, principal model.Principal) (*model.Invoice, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("%w: invoice id is required", ErrInvalidInput)
	}
	invoice, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return invoice, nil
}

type ListInvoicesInput struct {
	SupplierVATID string
	Status        *model.InvoiceStatus
	Principal     model.Principal
}

func (s *InvoiceService) ListInvoices(ctx context.Context, input ListInvoicesInput) ([]model.Invoice, error) {
	filter := repository.InvoiceFilter{
		SupplierVATID: input.SupplierVATID,
		Status:        input.Status,
	}
	// Non-admins only see invoices issued by their own organization.
	if !input.Principal.IsAdmin() {
		org := input.Principal.OrgID
		filter.CreatedByOrg = &org
	}
	return s.repo.ListInvoices(ctx, filter)
}

type VoidInvoiceInput struct {
	InvoiceID uuid.UUID
	Reason    string
	Principal model.Principal
}

// VoidInvoice flips an issued invoice to VOID. Invoices are never deleted;
// the receipt number stays allocated.
func (s *InvoiceService) VoidInvoice(ctx context.Context, input VoidInvoiceInput) (*model.Invoice, error) {
	if !input.Principal.CanIssue() {
		return nil, ErrPermissionDenied
	}
	if strings.TrimSpace(input.Reason) == "" {
		return nil, fmt.Errorf("%w: void reason is required", ErrInvalidInput)
	}

	invoice, err := s.GetInvoice(ctx, input.InvoiceID, input.Principal)
	if err != nil {
		return nil, err
	}
	if invoice.Status == model.InvoiceStatusVoid {
		return nil, ErrAlreadyVoid
	}

	reason := strings.TrimSpace(input.Reason)
	if err := s.repo.UpdateInvoiceStatus(ctx, invoice.ID, model.InvoiceStatusVoid, &reason); err != nil {
		return nil, err
	}

	invoice.Status = model.InvoiceStatusVoid
	invoice.VoidReason = &reason
	return invoice, nil
}

type ExportResult struct {
	FileName string
	Content  []byte
}

func (s *InvoiceService) ExportInvoiceExcel(ctx context.Context, id uuid.UUID, principal model.Principal) (*ExportResult, error) {
	invoice, err := s.GetInvoice(ctx, id, principal)
	if err != nil {
		return nil, err
	}
	content, err := s.excel.Generate(*invoice, vat.FormatBreakdown(toVATLines(invoice.Lines)))
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		FileName: buildFileName(invoice, "xlsx"),
		Content:  content,
	}, nil
}

func (s *InvoiceService) ExportInvoicePDF(ctx context.Context, id uuid.UUID, principal model.Principal) (*ExportResult, error) {
	invoice, err := s.GetInvoice(ctx, id, principal)
	if err != nil {
		return nil, err
	}
	content, err := s.pdf.Generate(*invoice, vat.FormatBreakdown(toVATLines(invoice.Lines)))
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		FileName: buildFileName(invoice, "pdf"),
		Content:  content,
	}, nil
}

func buildFileName(invoice *model.Invoice, ext string) string {
	name := sanitizeFileName(invoice.ReceiptNumber)
	if name == "" {
		name = invoice.ID.String()
	}
	return fmt.Sprintf("invoice-%s.%s", name, ext)
}

func toVATLines(lines []model.InvoiceLine) []vat.LineItem {
	result := make([]vat.LineItem, 0, len(lines))
	for _, line := range lines {
		result = append(result, vat.LineItem{
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			VATRate:     line.VATRate,
			Category:    line.Category,
			NetAmount:   line.NetAmount,
			VATAmount:   line.VATAmount,
			GrossAmount: line.GrossAmount,
		})
	}
	return result
}

func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sanitizeFileName(input string) string {
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			result = append(result, r)
		case r >= 'A' && r <= 'Z':
			result = append(result, r)
		case r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-")
}
