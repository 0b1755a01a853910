package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	quotadomain "github.com/smallbiznis/paperflow/internal/quota/domain"
)

type OnboardRequest struct {
	Name         string
	ContactEmail string
	Country      string
	// PlanID defaults to the deployment's default plan when empty.
	PlanID string
}

type OnboardResponse struct {
	Tenant Tenant                  `json:"tenant"`
	Quota  quotadomain.QuotaRecord `json:"quota"`
}

type Service interface {
	// Onboard creates the tenant and provisions its quota record in one step,
	// so a tenant never exists without entitlements.
	Onboard(ctx context.Context, req OnboardRequest) (OnboardResponse, error)
	Get(ctx context.Context, id snowflake.ID) (Tenant, error)
}

var (
	ErrTenantNotFound   = errors.New("tenant_not_found")
	ErrInvalidName      = errors.New("invalid_tenant_name")
	ErrSlugAlreadyTaken = errors.New("slug_already_taken")
)
