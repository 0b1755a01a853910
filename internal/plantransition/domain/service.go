// Package domain defines plan lifecycle operations driven by checkout and
// billing events.
package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	plancatalogdomain "github.com/smallbiznis/paperflow/internal/plancatalog/domain"
	quotadomain "github.com/smallbiznis/paperflow/internal/quota/domain"
)

type ChangePlanRequest struct {
	TenantID     snowflake.ID
	PlanID       string
	BillingCycle plancatalogdomain.BillingCycle
	UpdatedBy    string
}

// CheckoutCompletedRequest carries the processor identifiers returned by a
// successful checkout. The identifiers are opaque; they are stored for later
// webhook correlation and never parsed.
type CheckoutCompletedRequest struct {
	TenantID                snowflake.ID
	ProcessorCustomerID     string
	ProcessorSubscriptionID string
	ProcessorPriceID        string
}

type Service interface {
	// ChangePlan swaps the tenant's limits and features to the target plan.
	// Usage counters carry over unchanged, so a downgrade can leave the
	// tenant over-quota until usage drains.
	ChangePlan(ctx context.Context, req ChangePlanRequest) (quotadomain.QuotaRecord, error)
	ApplyCheckoutCompleted(ctx context.Context, req CheckoutCompletedRequest) error
	// ApplyCancellation marks the record canceled but leaves limits intact so
	// reads keep working until the period lapses.
	ApplyCancellation(ctx context.Context, tenantID snowflake.ID) error
}

var (
	ErrPlanNotPurchasable = errors.New("plan_not_purchasable")
)
