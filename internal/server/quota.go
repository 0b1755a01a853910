package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	quotadomain "github.com/smallbiznis/paperflow/internal/quota/domain"
)

func (s *Server) tenantIDParam(c *gin.Context) (snowflake.ID, error) {
	raw := strings.TrimSpace(c.Param("tenantId"))
	id, err := snowflake.ParseString(raw)
	if err != nil || id == 0 {
		return 0, newValidationError("tenantId", "invalid_tenant", "invalid tenant id")
	}
	return id, nil
}

func (s *Server) GetQuotaRecord(c *gin.Context) {
	tenantID, err := s.tenantIDParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	record, err := s.quotaSvc.GetRecord(c.Request.Context(), tenantID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (s *Server) CheckExceeded(c *gin.Context) {
	tenantID, err := s.tenantIDParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	kind, err := quotadomain.ParseResourceKind(c.Query("resource"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	exceeded, err := s.quotaSvc.CheckExceeded(c.Request.Context(), tenantID, kind)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.metrics.RecordQuotaCheck(string(kind), exceeded)
	c.JSON(http.StatusOK, gin.H{
		"resource": kind,
		"exceeded": exceeded,
	})
}

type mutateUsageRequest struct {
	Resource string `json:"resource" binding:"required"`
	Amount   int64  `json:"amount"`
}

func (s *Server) IncrementUsage(c *gin.Context) {
	s.mutateUsage(c, "increment", s.quotaSvc.Increment)
}

func (s *Server) DecrementUsage(c *gin.Context) {
	s.mutateUsage(c, "decrement", s.quotaSvc.Decrement)
}

func (s *Server) mutateUsage(c *gin.Context, op string, fn func(ctx context.Context, tenantID snowflake.ID, kind quotadomain.ResourceKind, amount int64) error) {
	tenantID, err := s.tenantIDParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req mutateUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}

	kind, err := quotadomain.ParseResourceKind(req.Resource)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	amount := req.Amount
	if amount == 0 {
		amount = 1
	}
	if amount < 0 {
		AbortWithError(c, quotadomain.ErrInvalidAmount)
		return
	}

	if err := fn(c.Request.Context(), tenantID, kind, amount); err != nil {
		AbortWithError(c, err)
		return
	}

	s.metrics.RecordQuotaMutation(string(kind), op)
	c.JSON(http.StatusOK, gin.H{
		"resource": kind,
		"amount":   amount,
	})
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateQuotaStatus is the status-only path used by billing events that carry
// no plan change, e.g. a suspension for non-payment.
func (s *Server) UpdateQuotaStatus(c *gin.Context) {
	tenantID, err := s.tenantIDParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}

	status := quotadomain.RecordStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if err := s.quotaSvc.UpdateStatus(c.Request.Context(), tenantID, status); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}
