package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceStatusIssued InvoiceStatus = "ISSUED"
	InvoiceStatusVoid   InvoiceStatus = "VOID"
)

type Invoice struct {
	ID              uuid.UUID
	SupplierName    string
	SupplierVATID   string
	CustomerName    string
	ReceiptNumber   string
	IssueDate       time.Time
	Currency        string
	Lines           []InvoiceLine `gorm:"-"`
	NetTotal        decimal.Decimal
	VATTotal        decimal.Decimal
	Total           decimal.Decimal
	Status          InvoiceStatus
	VoidReason      *string
	CreatedByOrgID  uuid.UUID
	CreatedByUserID uuid.UUID
	CreatedAt       time.Time
}

type InvoiceLine struct {
	ID          uuid.UUID
	InvoiceID   uuid.UUID
	LineNo      int
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	VATRate     decimal.Decimal
	Category    string
	NetAmount   decimal.Decimal
	VATAmount   decimal.Decimal
	GrossAmount decimal.Decimal
}
