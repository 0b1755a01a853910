package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	plancatalogdomain "github.com/smallbiznis/paperflow/internal/plancatalog/domain"
)

func (s *Server) ListPlans(c *gin.Context) {
	templates, err := s.catalogSvc.ListActiveTemplates(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": templates})
}

func (s *Server) GetPlan(c *gin.Context) {
	tpl, err := s.catalogSvc.GetTemplate(c.Request.Context(), c.Param("planId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, tpl)
}

type upsertPlanRequest struct {
	Patch     plancatalogdomain.TemplatePatch `json:"patch"`
	UpdatedBy string                          `json:"updatedBy"`
}

func (s *Server) UpsertPlan(c *gin.Context) {
	var req upsertPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}

	tpl, err := s.catalogSvc.UpsertTemplate(c.Request.Context(), plancatalogdomain.UpsertTemplateRequest{
		PlanID:    c.Param("planId"),
		Patch:     req.Patch,
		UpdatedBy: req.UpdatedBy,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, tpl)
}
