// Package domain contains the plan template catalog models.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Limit is a numeric quota ceiling. The stored encoding keeps -1 for
// "unlimited" so records stay compatible with the catalog wire format, but all
// comparisons go through the methods below rather than raw sign checks.
type Limit int64

// Unlimited disables enforcement for a resource.
const Unlimited Limit = -1

// IsUnlimited reports whether the limit disables enforcement.
func (l Limit) IsUnlimited() bool { return l == Unlimited }

// Valid reports whether the limit is a non-negative bound or the unlimited sentinel.
func (l Limit) Valid() bool { return l >= 0 || l == Unlimited }

// Exceeded reports whether usage has reached the limit.
func (l Limit) Exceeded(usage int64) bool {
	if l.IsUnlimited() {
		return false
	}
	return usage >= int64(l)
}

// Remaining returns the budget left before the limit, -1 when unlimited and
// never below zero.
func (l Limit) Remaining(usage int64) int64 {
	if l.IsUnlimited() {
		return -1
	}
	remaining := int64(l) - usage
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Price is a plan price in the smallest currency unit. Zero means free and -1
// means the plan is not self-service.
type Price int64

// PriceContactSales marks plans sold only through sales.
const PriceContactSales Price = -1

func (p Price) IsFree() bool       { return p == 0 }
func (p Price) SelfService() bool  { return p >= 0 }
func (p Price) IsChargeable() bool { return p > 0 }

// BillingCycle is the payment period for a subscription.
type BillingCycle string

const (
	BillingCycleMonthly BillingCycle = "monthly"
	BillingCycleYearly  BillingCycle = "yearly"
)

// DocumentAccess is the categorical document-type entitlement of a plan.
type DocumentAccess string

const (
	DocumentAccessBasic DocumentAccess = "basic"
	DocumentAccessFull  DocumentAccess = "full"
)

// Plan identifiers shipped with this deployment. The catalog accepts others
// without engine changes.
const (
	PlanFree       = "free"
	PlanStarter    = "starter"
	PlanBusiness   = "business"
	PlanEnterprise = "enterprise"
)

// PlanLimits is the fixed set of numeric ceilings a plan grants. It is
// embedded by both the template and the per-tenant quota record so the mirror
// stays 1:1 by construction.
type PlanLimits struct {
	MaxUsers              Limit `gorm:"not null;default:0" json:"maxUsers"`
	MaxDocumentsPerMonth  Limit `gorm:"not null;default:0" json:"maxDocumentsPerMonth"`
	MaxLogos              Limit `gorm:"not null;default:0" json:"maxLogos"`
	MaxStorageMB          Limit `gorm:"not null;default:0" json:"maxStorageMB"`
	MaxCustomers          Limit `gorm:"not null;default:0" json:"maxCustomers"`
	MaxContractors        Limit `gorm:"not null;default:0" json:"maxContractors"`
	MaxPDFExportsPerMonth Limit `gorm:"not null;default:0" json:"maxPdfExportsPerMonth"`
	MaxCompanies          Limit `gorm:"not null;default:0" json:"maxCompanies"`
	HistoryRetentionDays  Limit `gorm:"not null;default:0" json:"historyRetentionDays"`
}

// Valid reports whether every limit is a non-negative bound or unlimited.
func (l PlanLimits) Valid() bool {
	for _, limit := range []Limit{
		l.MaxUsers, l.MaxDocumentsPerMonth, l.MaxLogos, l.MaxStorageMB,
		l.MaxCustomers, l.MaxContractors, l.MaxPDFExportsPerMonth,
		l.MaxCompanies, l.HistoryRetentionDays,
	} {
		if !limit.Valid() {
			return false
		}
	}
	return true
}

// PlanFeatures is the boolean and categorical feature set a plan grants.
type PlanFeatures struct {
	MultiProfile     bool           `gorm:"not null;default:false" json:"multiProfile"`
	APIAccess        bool           `gorm:"not null;default:false" json:"apiAccess"`
	CustomDomain     bool           `gorm:"not null;default:false" json:"customDomain"`
	PrioritySupport  bool           `gorm:"not null;default:false" json:"prioritySupport"`
	ExportFormats    bool           `gorm:"not null;default:false" json:"exportFormats"`
	AdvancedReports  bool           `gorm:"not null;default:false" json:"advancedReports"`
	CustomTemplates  bool           `gorm:"not null;default:false" json:"customTemplates"`
	Watermark        bool           `gorm:"not null;default:true" json:"watermark"`
	LineNotification bool           `gorm:"not null;default:false" json:"lineNotification"`
	DedicatedSupport bool           `gorm:"not null;default:false" json:"dedicatedSupport"`
	FullAuditLog     bool           `gorm:"not null;default:false" json:"fullAuditLog"`
	DocumentAccess   DocumentAccess `gorm:"type:text;not null;default:basic" json:"documentAccess"`
}

// PlanTemplate is the catalog definition of a named plan.
type PlanTemplate struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	PlanID       string       `gorm:"type:text;not null;uniqueIndex" json:"planId"`
	Name         string       `gorm:"type:text;not null" json:"name"`
	Description  string       `gorm:"type:text" json:"description"`
	DisplayOrder int          `gorm:"not null;default:0" json:"displayOrder"`
	IsActive     bool         `gorm:"not null;default:true" json:"isActive"`
	IsPopular    bool         `gorm:"not null;default:false" json:"isPopular"`

	PlanLimits   `gorm:"embedded" json:"limits"`
	PlanFeatures `gorm:"embedded" json:"features"`

	MonthlyPrice Price  `gorm:"not null;default:0" json:"monthlyPrice"`
	YearlyPrice  Price  `gorm:"not null;default:0" json:"yearlyPrice"`
	Currency     string `gorm:"type:text;not null;default:THB" json:"currency"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
	UpdatedBy string    `gorm:"type:text" json:"updatedBy,omitempty"`
}

// TableName sets the database table name.
func (PlanTemplate) TableName() string { return "plan_templates" }

// PriceFor returns the plan price for the given billing cycle.
func (t PlanTemplate) PriceFor(cycle BillingCycle) Price {
	if cycle == BillingCycleYearly {
		return t.YearlyPrice
	}
	return t.MonthlyPrice
}
