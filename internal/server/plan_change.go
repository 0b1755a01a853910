package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	plancatalogdomain "github.com/smallbiznis/paperflow/internal/plancatalog/domain"
	plantransitiondomain "github.com/smallbiznis/paperflow/internal/plantransition/domain"
)

type changePlanRequest struct {
	PlanID       string `json:"planId" binding:"required"`
	BillingCycle string `json:"billingCycle"`
	UpdatedBy    string `json:"updatedBy"`
}

func (s *Server) ChangePlan(c *gin.Context) {
	tenantID, err := s.tenantIDParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req changePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}

	record, err := s.transitionSvc.ChangePlan(c.Request.Context(), plantransitiondomain.ChangePlanRequest{
		TenantID:     tenantID,
		PlanID:       req.PlanID,
		BillingCycle: plancatalogdomain.BillingCycle(req.BillingCycle),
		UpdatedBy:    req.UpdatedBy,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.metrics.RecordPlanChange(record.PlanID)
	c.JSON(http.StatusOK, record)
}
