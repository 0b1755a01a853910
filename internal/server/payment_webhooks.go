package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	plancatalogdomain "github.com/smallbiznis/paperflow/internal/plancatalog/domain"
	plantransitiondomain "github.com/smallbiznis/paperflow/internal/plantransition/domain"
	quotadomain "github.com/smallbiznis/paperflow/internal/quota/domain"
	"go.uber.org/zap"
)

// paymentWebhookEvent is the normalized shape our payment-provider adapters
// post back to us. Processor identifiers are opaque strings, stored for
// correlation and never parsed.
type paymentWebhookEvent struct {
	Type     string `json:"type" binding:"required"`
	TenantID string `json:"tenantId" binding:"required"`

	PlanID       string `json:"planId"`
	BillingCycle string `json:"billingCycle"`

	ProcessorCustomerID     string `json:"processorCustomerId"`
	ProcessorSubscriptionID string `json:"processorSubscriptionId"`
	ProcessorPriceID        string `json:"processorPriceId"`

	Status string `json:"status"`
}

const (
	webhookCheckoutCompleted    = "checkout.completed"
	webhookSubscriptionCanceled = "subscription.canceled"
	webhookStatusChanged        = "subscription.status_changed"
)

func (s *Server) HandlePaymentWebhook(c *gin.Context) {
	provider := strings.TrimSpace(c.Param("provider"))

	var event paymentWebhookEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid webhook payload"))
		return
	}

	tenantID, err := snowflake.ParseString(strings.TrimSpace(event.TenantID))
	if err != nil || tenantID == 0 {
		AbortWithError(c, newValidationError("tenantId", "invalid_tenant", "invalid tenant id"))
		return
	}

	ctx := c.Request.Context()
	log := s.log.With(
		zap.String("provider", provider),
		zap.String("event_type", event.Type),
		zap.Int64("tenant_id", int64(tenantID)),
	)

	switch event.Type {
	case webhookCheckoutCompleted:
		// Checkout carries the purchased plan; apply the change first, then
		// store the processor linkage.
		if event.PlanID != "" {
			record, err := s.transitionSvc.ChangePlan(ctx, plantransitiondomain.ChangePlanRequest{
				TenantID:     tenantID,
				PlanID:       event.PlanID,
				BillingCycle: plancatalogdomain.BillingCycle(event.BillingCycle),
				UpdatedBy:    "webhook:" + provider,
			})
			if err != nil {
				AbortWithError(c, err)
				return
			}
			s.metrics.RecordPlanChange(record.PlanID)
		}
		if err := s.transitionSvc.ApplyCheckoutCompleted(ctx, plantransitiondomain.CheckoutCompletedRequest{
			TenantID:                tenantID,
			ProcessorCustomerID:     event.ProcessorCustomerID,
			ProcessorSubscriptionID: event.ProcessorSubscriptionID,
			ProcessorPriceID:        event.ProcessorPriceID,
		}); err != nil {
			AbortWithError(c, err)
			return
		}
		log.Info("checkout completed")

	case webhookSubscriptionCanceled:
		if err := s.transitionSvc.ApplyCancellation(ctx, tenantID); err != nil {
			AbortWithError(c, err)
			return
		}
		log.Info("subscription canceled")

	case webhookStatusChanged:
		status := quotadomain.RecordStatus(strings.ToLower(strings.TrimSpace(event.Status)))
		if err := s.quotaSvc.UpdateStatus(ctx, tenantID, status); err != nil {
			AbortWithError(c, err)
			return
		}
		log.Info("status updated", zap.String("status", string(status)))

	default:
		// Unknown event types are acknowledged so providers stop retrying.
		log.Warn("ignoring unknown webhook event type")
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
