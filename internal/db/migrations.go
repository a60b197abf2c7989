package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'invoice_status') THEN
			CREATE TYPE invoice_status AS ENUM ('ISSUED', 'VOID');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS invoices (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		supplier_name VARCHAR(200) NOT NULL,
		supplier_vat_id VARCHAR(64) NOT NULL,
		customer_name VARCHAR(200) NOT NULL,
		receipt_number VARCHAR(64) NOT NULL,
		issue_date DATE NOT NULL,
		currency CHAR(3) NOT NULL DEFAULT 'USD',
		net_total NUMERIC(18,2) NOT NULL,
		vat_total NUMERIC(18,2) NOT NULL,
		total NUMERIC(18,2) NOT NULL,
		status invoice_status NOT NULL DEFAULT 'ISSUED',
		void_reason TEXT,
		created_by_org_id UUID NOT NULL,
		created_by_user_id UUID NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_invoices_receipt_number ON invoices (receipt_number);`,
	`CREATE INDEX IF NOT EXISTS idx_invoices_supplier_vat_id ON invoices (supplier_vat_id);`,
	`CREATE INDEX IF NOT EXISTS idx_invoices_status ON invoices (status);`,
	`CREATE TABLE IF NOT EXISTS invoice_lines (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		invoice_id UUID NOT NULL REFERENCES invoices(id) ON DELETE CASCADE,
		line_no INT NOT NULL,
		description TEXT NOT NULL,
		quantity NUMERIC(18,3) NOT NULL,
		unit_price NUMERIC(18,4) NOT NULL,
		vat_rate NUMERIC(5,2) NOT NULL,
		category VARCHAR(64) NOT NULL DEFAULT '',
		net_amount NUMERIC(18,2) NOT NULL,
		vat_amount NUMERIC(18,2) NOT NULL,
		gross_amount NUMERIC(18,2) NOT NULL
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_invoice_lines_invoice_line_no ON invoice_lines (invoice_id, line_no);`,
	`CREATE TABLE IF NOT EXISTS receipt_sequences (
		prefix VARCHAR(16) NOT NULL,
		year INT NOT NULL,
		last_value BIGINT NOT NULL DEFAULT 0,
		PRIMARY KEY (prefix, year)
	);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
