package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	featuregatedomain "github.com/smallbiznis/paperflow/internal/featuregate/domain"
)

func (s *Server) CheckDocumentAccess(c *gin.Context) {
	tenantID, err := s.tenantIDParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	docType := featuregatedomain.DocumentType(strings.TrimSpace(c.Query("documentType")))
	if docType == "" {
		AbortWithError(c, newValidationError("documentType", "invalid_document_type", "document type is required"))
		return
	}

	allowed, err := s.gateSvc.DocumentAccessAllows(c.Request.Context(), tenantID, docType)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"documentType": docType,
		"allowed":      allowed,
	})
}

func (s *Server) CheckPDFExport(c *gin.Context) {
	tenantID, err := s.tenantIDParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	budget, err := s.gateSvc.CanExportPDF(c.Request.Context(), tenantID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, budget)
}
