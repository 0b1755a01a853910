// Package domain exposes read-only entitlement queries derived from a
// tenant's quota record.
package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// DocumentType names a business document the product can generate. The gate
// does not enumerate every type; anything outside the basic allow-list simply
// requires full document access.
type DocumentType string

const (
	DocumentQuotation   DocumentType = "quotation"
	DocumentReceipt     DocumentType = "receipt"
	DocumentInvoice     DocumentType = "invoice"
	DocumentTaxInvoice  DocumentType = "tax_invoice"
	DocumentBillingNote DocumentType = "billing_note"
	DocumentCreditNote  DocumentType = "credit_note"
)

// PDFExportBudget reports whether a tenant may export another PDF this month.
// Remaining is -1 when the plan places no cap on exports.
type PDFExportBudget struct {
	Allowed   bool  `json:"allowed"`
	Remaining int64 `json:"remaining"`
}

type Service interface {
	// DocumentAccessAllows reports whether the tenant's document-access level
	// covers the given document type.
	DocumentAccessAllows(ctx context.Context, tenantID snowflake.ID, docType DocumentType) (bool, error)
	CanExportPDF(ctx context.Context, tenantID snowflake.ID) (PDFExportBudget, error)
}
