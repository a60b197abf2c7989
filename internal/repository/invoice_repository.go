package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/vat-invoicing/internal/model"
)

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// NextSequence atomically reserves the next receipt sequence for a
// prefix/year pair. The upsert makes first use and increment a single
// statement, so concurrent callers never see the same value.
func (r *InvoiceRepository) NextSequence(ctx context.Context, prefix string, year int) (int64, error) {
	var next int64
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO receipt_sequences (prefix, year, last_value)
		VALUES (?, ?, 1)
		ON CONFLICT (prefix, year)
		DO UPDATE SET last_value = receipt_sequences.last_value + 1
		RETURNING last_value
	`, prefix, year).Scan(&next).Error
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (r *InvoiceRepository) CreateInvoice(ctx context.Context, invoice model.Invoice) (*model.Invoice, error) {
	var saved model.Invoice
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Raw(`
			INSERT INTO invoices (
				supplier_name,
				supplier_vat_id,
				customer_name,
				receipt_number,
				issue_date,
				currency,
				net_total,
				vat_total,
				total,
				status,
				void_reason,
				created_by_org_id,
				created_by_user_id
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING
				id,
				supplier_name,
				supplier_vat_id,
				customer_name,
				receipt_number,
				issue_date,
				currency,
				net_total,
				vat_total,
				total,
				status,
				void_reason,
				created_by_org_id,
				created_by_user_id,
				created_at
		`,
			invoice.SupplierName,
			invoice.SupplierVATID,
			invoice.CustomerName,
			invoice.ReceiptNumber,
			invoice.IssueDate,
			invoice.Currency,
			invoice.NetTotal,
			invoice.VATTotal,
			invoice.Total,
			invoice.Status,
			invoice.VoidReason,
			invoice.CreatedByOrgID,
			invoice.CreatedByUserID,
		).Scan(&saved).Error
		if err != nil {
			return err
		}

		for _, line := range invoice.Lines {
			if err := tx.Exec(`
				INSERT INTO invoice_lines (
					invoice_id,
					line_no,
					description,
					quantity,
					unit_price,
					vat_rate,
					category,
					net_amount,
					vat_amount,
					gross_amount
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`,
				saved.ID,
				line.LineNo,
				line.Description,
				line.Quantity,
				line.UnitPrice,
				line.VATRate,
				line.Category,
				line.NetAmount,
				line.VATAmount,
				line.GrossAmount,
			).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	saved.Lines = invoice.Lines
	for i := range saved.Lines {
		saved.Lines[i].InvoiceID = saved.ID
	}
	return &saved, nil
}

func (r *InvoiceRepository) GetInvoice(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	var invoice model.Invoice
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			id,
			supplier_name,
			supplier_vat_id,
			customer_name,
			receipt_number,
			issue_date,
			currency,
			net_total,
			vat_total,
			total,
			status,
			void_reason,
			created_by_org_id,
			created_by_user_id,
			created_at
		FROM invoices
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&invoice).Error
	if err != nil {
		return nil, err
	}
	if invoice.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}

	var lines []model.InvoiceLine
	err = r.db.WithContext(ctx).Raw(`
		SELECT
			id,
			invoice_id,
			line_no,
			description,
			quantity,
			unit_price,
			vat_rate,
			category,
			net_amount,
			vat_amount,
			gross_amount
		FROM invoice_lines
		WHERE invoice_id = ?
		ORDER BY line_no ASC
	`, invoice.ID).Scan(&lines).Error
	if err != nil {
		return nil, err
	}

	invoice.Lines = lines
	return &invoice, nil
}

type InvoiceFilter struct {
	SupplierVATID string
	Status        *model.InvoiceStatus
	CreatedByOrg  *uuid.UUID
}

func (r *InvoiceRepository) ListInvoices(ctx context.Context, filter InvoiceFilter) ([]model.Invoice, error) {
	baseQuery := `
		SELECT
			id,
			supplier_name,
			supplier_vat_id,
			customer_name,
			receipt_number,
			issue_date,
			currency,
			net_total,
			vat_total,
			total,
			status,
			void_reason,
			created_by_org_id,
			created_by_user_id,
			created_at
		FROM invoices
	`
	var filters []string
	var args []interface{}
	if filter.SupplierVATID != "" {
		filters = append(filters, "supplier_vat_id = ?")
		args = append(args, filter.SupplierVATID)
	}
	if filter.Status != nil {
		filters = append(filters, "status = ?")
		args = append(args, *filter.Status)
	}
	if filter.CreatedByOrg != nil {
		filters = append(filters, "created_by_org_id = ?")
		args = append(args, *filter.CreatedByOrg)
	}

	if len(filters) > 0 {
		baseQuery += " WHERE " + strings.Join(filters, " AND ")
	}
	baseQuery += " ORDER BY created_at DESC"

	var invoices []model.Invoice
	if err := r.db.WithContext(ctx).Raw(baseQuery, args...).Scan(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// UpdateInvoiceStatus flips an invoice's status. Issued invoices are never
// deleted; voiding keeps the audit trail and the receipt number.
func (r *InvoiceRepository) UpdateInvoiceStatus(
	ctx context.Context,
	id uuid.UUID,
	status model.InvoiceStatus,
	voidReason *string,
) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE invoices
		SET status = ?, void_reason = ?
		WHERE id = ?
	`, status, voidReason, id).Error
}
