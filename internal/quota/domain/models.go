// Package domain contains the per-tenant quota record and its lifecycle rules.
package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	plancatalogdomain "github.com/smallbiznis/paperflow/internal/plancatalog/domain"
	"gorm.io/datatypes"
)

// RecordStatus represents lifecycle states for a tenant quota record. The
// engine only persists statuses handed to it by billing events; it never
// decides a transition on its own.
type RecordStatus string

const (
	RecordStatusActive    RecordStatus = "active"
	RecordStatusTrial     RecordStatus = "trial"
	RecordStatusExpired   RecordStatus = "expired"
	RecordStatusCanceled  RecordStatus = "canceled"
	RecordStatusSuspended RecordStatus = "suspended"
)

// IsValidStatus reports whether the value is a known record status.
func IsValidStatus(status RecordStatus) bool {
	switch status {
	case RecordStatusActive,
		RecordStatusTrial,
		RecordStatusExpired,
		RecordStatusCanceled,
		RecordStatusSuspended:
		return true
	default:
		return false
	}
}

// IsTransitionAllowed reports whether the status-only update path may move a
// record between the two states. Reactivation of a terminal record goes
// through a plan change, not this path.
func IsTransitionAllowed(current, target RecordStatus) bool {
	switch current {
	case RecordStatusActive:
		return target == RecordStatusTrial ||
			target == RecordStatusExpired ||
			target == RecordStatusCanceled ||
			target == RecordStatusSuspended
	case RecordStatusTrial:
		return target == RecordStatusActive ||
			target == RecordStatusExpired ||
			target == RecordStatusCanceled ||
			target == RecordStatusSuspended
	default:
		return false
	}
}

// ResourceKind names a tracked resource counter.
type ResourceKind string

const (
	ResourceUsers       ResourceKind = "users"
	ResourceDocuments   ResourceKind = "documents"
	ResourceLogos       ResourceKind = "logos"
	ResourceStorage     ResourceKind = "storage"
	ResourceCustomers   ResourceKind = "customers"
	ResourceContractors ResourceKind = "contractors"
	ResourcePDFExports  ResourceKind = "pdfExports"
	ResourceCompanies   ResourceKind = "companies"
)

// ResourceKinds lists every tracked resource.
var ResourceKinds = []ResourceKind{
	ResourceUsers,
	ResourceDocuments,
	ResourceLogos,
	ResourceStorage,
	ResourceCustomers,
	ResourceContractors,
	ResourcePDFExports,
	ResourceCompanies,
}

// ParseResourceKind normalizes user input into a ResourceKind.
func ParseResourceKind(value string) (ResourceKind, error) {
	kind := ResourceKind(strings.TrimSpace(value))
	for _, known := range ResourceKinds {
		if kind == known {
			return known, nil
		}
	}
	return "", ErrInvalidResourceKind
}

// UsageCounters mirrors PlanLimits one counter per limit. Storage is counted
// in MB like its limit.
type UsageCounters struct {
	CurrentUsers       int64 `gorm:"not null;default:0" json:"currentUsers"`
	CurrentDocuments   int64 `gorm:"not null;default:0" json:"currentDocuments"`
	CurrentLogos       int64 `gorm:"not null;default:0" json:"currentLogos"`
	CurrentStorageMB   int64 `gorm:"not null;default:0" json:"currentStorageMB"`
	CurrentCustomers   int64 `gorm:"not null;default:0" json:"currentCustomers"`
	CurrentContractors int64 `gorm:"not null;default:0" json:"currentContractors"`
	CurrentPDFExports  int64 `gorm:"not null;default:0" json:"currentPdfExports"`
	CurrentCompanies   int64 `gorm:"not null;default:0" json:"currentCompanies"`
}

// QuotaRecord is the durable per-tenant entitlement state: the plan limits in
// force, live usage against them, and billing lifecycle dates. Exactly one
// exists per tenant.
type QuotaRecord struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID snowflake.ID `gorm:"not null;uniqueIndex" json:"tenantId"`

	PlanID       string                         `gorm:"type:text;not null" json:"planId"`
	Status       RecordStatus                   `gorm:"type:text;not null" json:"status"`
	BillingCycle plancatalogdomain.BillingCycle `gorm:"type:text;not null" json:"billingCycle"`

	plancatalogdomain.PlanLimits   `gorm:"embedded" json:"limits"`
	plancatalogdomain.PlanFeatures `gorm:"embedded" json:"features"`
	UsageCounters                  `gorm:"embedded" json:"usage"`

	StartAt           time.Time  `gorm:"not null" json:"startAt"`
	EndAt             *time.Time `gorm:"" json:"endAt,omitempty"`
	TrialEndAt        *time.Time `gorm:"" json:"trialEndAt,omitempty"`
	LastPaymentAt     *time.Time `gorm:"" json:"lastPaymentAt,omitempty"`
	NextPaymentAt     *time.Time `gorm:"" json:"nextPaymentAt,omitempty"`
	DocumentResetDate time.Time  `gorm:"not null" json:"documentResetDate"`

	PaymentAmount   *int64  `gorm:"" json:"paymentAmount,omitempty"`
	PaymentCurrency *string `gorm:"type:text" json:"paymentCurrency,omitempty"`

	// Opaque payment-processor linkage. Stored and forwarded, never parsed.
	ProcessorCustomerID     *string `gorm:"type:text" json:"processorCustomerId,omitempty"`
	ProcessorSubscriptionID *string `gorm:"type:text" json:"processorSubscriptionId,omitempty"`
	ProcessorPriceID        *string `gorm:"type:text" json:"processorPriceId,omitempty"`

	LastActivityAt *time.Time        `gorm:"" json:"lastActivityAt,omitempty"`
	Notes          string            `gorm:"type:text" json:"notes,omitempty"`
	Metadata       datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
	UpdatedBy string    `gorm:"type:text" json:"updatedBy,omitempty"`
}

// TableName sets the database table name.
func (QuotaRecord) TableName() string { return "quota_records" }

// LimitFor returns the limit in force for a resource.
func (r *QuotaRecord) LimitFor(kind ResourceKind) plancatalogdomain.Limit {
	switch kind {
	case ResourceUsers:
		return r.MaxUsers
	case ResourceDocuments:
		return r.MaxDocumentsPerMonth
	case ResourceLogos:
		return r.MaxLogos
	case ResourceStorage:
		return r.MaxStorageMB
	case ResourceCustomers:
		return r.MaxCustomers
	case ResourceContractors:
		return r.MaxContractors
	case ResourcePDFExports:
		return r.MaxPDFExportsPerMonth
	case ResourceCompanies:
		return r.MaxCompanies
	default:
		return 0
	}
}

// UsageFor returns the live counter for a resource.
func (r *QuotaRecord) UsageFor(kind ResourceKind) int64 {
	switch kind {
	case ResourceUsers:
		return r.CurrentUsers
	case ResourceDocuments:
		return r.CurrentDocuments
	case ResourceLogos:
		return r.CurrentLogos
	case ResourceStorage:
		return r.CurrentStorageMB
	case ResourceCustomers:
		return r.CurrentCustomers
	case ResourceContractors:
		return r.CurrentContractors
	case ResourcePDFExports:
		return r.CurrentPDFExports
	case ResourceCompanies:
		return r.CurrentCompanies
	default:
		return 0
	}
}

// CounterColumn returns the database column holding the counter for a resource.
func CounterColumn(kind ResourceKind) string {
	switch kind {
	case ResourceUsers:
		return "current_users"
	case ResourceDocuments:
		return "current_documents"
	case ResourceLogos:
		return "current_logos"
	case ResourceStorage:
		return "current_storage_mb"
	case ResourceCustomers:
		return "current_customers"
	case ResourceContractors:
		return "current_contractors"
	case ResourcePDFExports:
		return "current_pdf_exports"
	case ResourceCompanies:
		return "current_companies"
	default:
		return ""
	}
}

// ApplyTemplate overwrites the record's plan identity, limits, and features
// from a catalog template. Usage counters are deliberately untouched so a
// downgrade carries usage over and CheckExceeded reports honestly.
func (r *QuotaRecord) ApplyTemplate(tpl plancatalogdomain.PlanTemplate) {
	r.PlanID = tpl.PlanID
	r.PlanLimits = tpl.PlanLimits
	r.PlanFeatures = tpl.PlanFeatures
}
