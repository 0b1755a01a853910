package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	plancatalogdomain "github.com/smallbiznis/paperflow/internal/plancatalog/domain"
)

type CreateRecordRequest struct {
	TenantID     snowflake.ID
	PlanID       string
	BillingCycle plancatalogdomain.BillingCycle
	TrialDays    int
}

type Service interface {
	// CreateRecord provisions the tenant's quota record from a plan template.
	// It is idempotent keyed by tenant: re-creating overwrites the record.
	CreateRecord(ctx context.Context, req CreateRecordRequest) (QuotaRecord, error)
	GetRecord(ctx context.Context, tenantID snowflake.ID) (QuotaRecord, error)
	// CheckExceeded never mutates counters; it only refreshes the tenant's
	// last-activity stamp. An unlimited resource is never exceeded.
	CheckExceeded(ctx context.Context, tenantID snowflake.ID, kind ResourceKind) (bool, error)
	Increment(ctx context.Context, tenantID snowflake.ID, kind ResourceKind, amount int64) error
	// Decrement floors the counter at zero.
	Decrement(ctx context.Context, tenantID snowflake.ID, kind ResourceKind, amount int64) error
	// ResetPeriodicCounters zeroes the monthly document and PDF-export
	// counters and advances the reset date to the first day of next month.
	// Only the scheduler calls this.
	ResetPeriodicCounters(ctx context.Context, tenantID snowflake.ID) error
	// UpdateStatus persists a status handed down by an external billing
	// event, honoring the allowed transitions.
	UpdateStatus(ctx context.Context, tenantID snowflake.ID, status RecordStatus) error
}

var (
	ErrRecordNotFound      = errors.New("quota_record_not_found")
	ErrInvalidTenant       = errors.New("invalid_tenant")
	ErrInvalidResourceKind = errors.New("invalid_resource_kind")
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrInvalidStatus       = errors.New("invalid_status")
	ErrInvalidTransition   = errors.New("invalid_transition")
	ErrInvalidBillingCycle = errors.New("invalid_billing_cycle")
)

// ParseBillingCycle normalizes user input, defaulting empty to monthly.
func ParseBillingCycle(value string) (plancatalogdomain.BillingCycle, error) {
	switch plancatalogdomain.BillingCycle(value) {
	case plancatalogdomain.BillingCycleMonthly, "":
		return plancatalogdomain.BillingCycleMonthly, nil
	case plancatalogdomain.BillingCycleYearly:
		return plancatalogdomain.BillingCycleYearly, nil
	default:
		return "", ErrInvalidBillingCycle
	}
}
