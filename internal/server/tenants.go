package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	tenantdomain "github.com/smallbiznis/paperflow/internal/tenant/domain"
)

type onboardTenantRequest struct {
	Name         string `json:"name" binding:"required"`
	ContactEmail string `json:"contactEmail"`
	Country      string `json:"country"`
	PlanID       string `json:"planId"`
}

func (s *Server) OnboardTenant(c *gin.Context) {
	var req onboardTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}

	resp, err := s.tenantSvc.Onboard(c.Request.Context(), tenantdomain.OnboardRequest{
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
		Country:      req.Country,
		PlanID:       req.PlanID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (s *Server) GetTenant(c *gin.Context) {
	tenantID, err := s.tenantIDParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	t, err := s.tenantSvc.Get(c.Request.Context(), tenantID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}
