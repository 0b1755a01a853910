package domain

import (
	"context"
	"errors"
)

// TemplatePatch carries merge-patch fields for UpsertTemplate. Nil fields are
// left untouched on the stored template.
type TemplatePatch struct {
	Name         *string `json:"name,omitempty"`
	Description  *string `json:"description,omitempty"`
	DisplayOrder *int    `json:"displayOrder,omitempty"`
	IsActive     *bool   `json:"isActive,omitempty"`
	IsPopular    *bool   `json:"isPopular,omitempty"`

	Limits   LimitsPatch   `json:"limits"`
	Features FeaturesPatch `json:"features"`

	MonthlyPrice *Price  `json:"monthlyPrice,omitempty"`
	YearlyPrice  *Price  `json:"yearlyPrice,omitempty"`
	Currency     *string `json:"currency,omitempty"`
}

type LimitsPatch struct {
	MaxUsers              *Limit `json:"maxUsers,omitempty"`
	MaxDocumentsPerMonth  *Limit `json:"maxDocumentsPerMonth,omitempty"`
	MaxLogos              *Limit `json:"maxLogos,omitempty"`
	MaxStorageMB          *Limit `json:"maxStorageMB,omitempty"`
	MaxCustomers          *Limit `json:"maxCustomers,omitempty"`
	MaxContractors        *Limit `json:"maxContractors,omitempty"`
	MaxPDFExportsPerMonth *Limit `json:"maxPdfExportsPerMonth,omitempty"`
	MaxCompanies          *Limit `json:"maxCompanies,omitempty"`
	HistoryRetentionDays  *Limit `json:"historyRetentionDays,omitempty"`
}

type FeaturesPatch struct {
	MultiProfile     *bool           `json:"multiProfile,omitempty"`
	APIAccess        *bool           `json:"apiAccess,omitempty"`
	CustomDomain     *bool           `json:"customDomain,omitempty"`
	PrioritySupport  *bool           `json:"prioritySupport,omitempty"`
	ExportFormats    *bool           `json:"exportFormats,omitempty"`
	AdvancedReports  *bool           `json:"advancedReports,omitempty"`
	CustomTemplates  *bool           `json:"customTemplates,omitempty"`
	Watermark        *bool           `json:"watermark,omitempty"`
	LineNotification *bool           `json:"lineNotification,omitempty"`
	DedicatedSupport *bool           `json:"dedicatedSupport,omitempty"`
	FullAuditLog     *bool           `json:"fullAuditLog,omitempty"`
	DocumentAccess   *DocumentAccess `json:"documentAccess,omitempty"`
}

type UpsertTemplateRequest struct {
	PlanID    string
	Patch     TemplatePatch
	UpdatedBy string
}

type Service interface {
	// Bootstrap persists any built-in template missing from the store. Called
	// once at service start so ordinary reads stay side-effect free.
	Bootstrap(ctx context.Context) error
	GetTemplate(ctx context.Context, planID string) (PlanTemplate, error)
	ListActiveTemplates(ctx context.Context) ([]PlanTemplate, error)
	UpsertTemplate(ctx context.Context, req UpsertTemplateRequest) (PlanTemplate, error)
	// ResolveTemplate is GetTemplate with a second built-in fallback applied
	// even when the store lookup itself fails. Record creation and plan
	// transitions use it so a known plan id always yields a template.
	ResolveTemplate(ctx context.Context, planID string) (PlanTemplate, error)
}

var (
	ErrPlanNotFound          = errors.New("plan_not_found")
	ErrInvalidPlanID         = errors.New("invalid_plan_id")
	ErrInvalidLimit          = errors.New("invalid_limit")
	ErrInvalidDocumentAccess = errors.New("invalid_document_access")
	ErrInvalidPrice          = errors.New("invalid_price")
)
