package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/paperflow/internal/featuregate/domain"
	plancatalogdomain "github.com/smallbiznis/paperflow/internal/plancatalog/domain"
	quotadomain "github.com/smallbiznis/paperflow/internal/quota/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// basicAccessAllowList is the fixed set of document types reachable on plans
// with basic document access.
var basicAccessAllowList = map[domain.DocumentType]struct{}{
	domain.DocumentQuotation: {},
	domain.DocumentReceipt:   {},
	domain.DocumentInvoice:   {},
}

type Service struct {
	log *zap.Logger

	quota quotadomain.Service
}

type ServiceParam struct {
	fx.In

	Log   *zap.Logger
	Quota quotadomain.Service
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		log: p.Log.Named("featuregate.service"),

		quota: p.Quota,
	}
}

// DocumentAccessAllows implements domain.Service.
func (s *Service) DocumentAccessAllows(ctx context.Context, tenantID snowflake.ID, docType domain.DocumentType) (bool, error) {
	record, err := s.quota.GetRecord(ctx, tenantID)
	if err != nil {
		return false, err
	}

	if record.DocumentAccess == plancatalogdomain.DocumentAccessFull {
		return true, nil
	}
	_, ok := basicAccessAllowList[docType]
	return ok, nil
}

// CanExportPDF implements domain.Service.
func (s *Service) CanExportPDF(ctx context.Context, tenantID snowflake.ID) (domain.PDFExportBudget, error) {
	record, err := s.quota.GetRecord(ctx, tenantID)
	if err != nil {
		return domain.PDFExportBudget{}, err
	}

	limit := record.MaxPDFExportsPerMonth
	if limit.IsUnlimited() {
		return domain.PDFExportBudget{Allowed: true, Remaining: -1}, nil
	}

	remaining := limit.Remaining(record.CurrentPDFExports)
	return domain.PDFExportBudget{Allowed: remaining > 0, Remaining: remaining}, nil
}
