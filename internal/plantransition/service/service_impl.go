package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/paperflow/internal/clock"
	plancatalogdomain "github.com/smallbiznis/paperflow/internal/plancatalog/domain"
	"github.com/smallbiznis/paperflow/internal/plantransition/domain"
	quotadomain "github.com/smallbiznis/paperflow/internal/quota/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	clock   clock.Clock
	records quotadomain.Repository
	catalog plancatalogdomain.Service
}

type ServiceParam struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Clock   clock.Clock
	Records quotadomain.Repository
	Catalog plancatalogdomain.Service
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("plantransition.service"),

		clock:   p.Clock,
		records: p.Records,
		catalog: p.Catalog,
	}
}

// ChangePlan implements domain.Service. The record is rewritten under a row
// lock so a concurrent counter mutation cannot interleave with the swap.
func (s *Service) ChangePlan(ctx context.Context, req domain.ChangePlanRequest) (quotadomain.QuotaRecord, error) {
	if req.TenantID == 0 {
		return quotadomain.QuotaRecord{}, quotadomain.ErrInvalidTenant
	}

	cycle, err := quotadomain.ParseBillingCycle(string(req.BillingCycle))
	if err != nil {
		return quotadomain.QuotaRecord{}, err
	}

	tpl, err := s.catalog.ResolveTemplate(ctx, req.PlanID)
	if err != nil {
		return quotadomain.QuotaRecord{}, err
	}

	price := tpl.PriceFor(cycle)
	if !price.SelfService() {
		// Contact-sales plans are provisioned manually, never via this path.
		return quotadomain.QuotaRecord{}, domain.ErrPlanNotPurchasable
	}

	var updated quotadomain.QuotaRecord
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, err := s.records.FindByTenantIDForUpdate(ctx, tx, req.TenantID)
		if err != nil {
			return err
		}
		if record == nil {
			return quotadomain.ErrRecordNotFound
		}

		now := s.clock.Now()
		record.ApplyTemplate(tpl)
		record.BillingCycle = cycle
		record.Status = quotadomain.RecordStatusActive
		record.StartAt = now
		record.TrialEndAt = nil
		record.UpdatedAt = now
		record.UpdatedBy = req.UpdatedBy

		if price.IsChargeable() {
			amount := int64(price)
			end := periodEnd(now, cycle)
			record.PaymentAmount = &amount
			record.PaymentCurrency = &tpl.Currency
			record.EndAt = &end
			record.NextPaymentAt = &end
		} else {
			record.PaymentAmount = nil
			record.PaymentCurrency = nil
			record.EndAt = nil
			record.NextPaymentAt = nil
		}

		if err := s.records.Save(ctx, tx, record); err != nil {
			return err
		}
		updated = *record
		return nil
	})
	if err != nil {
		return quotadomain.QuotaRecord{}, err
	}

	s.log.Info("plan changed",
		zap.Int64("tenant_id", int64(req.TenantID)),
		zap.String("plan_id", updated.PlanID),
		zap.String("billing_cycle", string(updated.BillingCycle)),
	)
	return updated, nil
}

// ApplyCheckoutCompleted implements domain.Service.
func (s *Service) ApplyCheckoutCompleted(ctx context.Context, req domain.CheckoutCompletedRequest) error {
	if req.TenantID == 0 {
		return quotadomain.ErrInvalidTenant
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, err := s.records.FindByTenantIDForUpdate(ctx, tx, req.TenantID)
		if err != nil {
			return err
		}
		if record == nil {
			return quotadomain.ErrRecordNotFound
		}

		now := s.clock.Now()
		if req.ProcessorCustomerID != "" {
			record.ProcessorCustomerID = &req.ProcessorCustomerID
		}
		if req.ProcessorSubscriptionID != "" {
			record.ProcessorSubscriptionID = &req.ProcessorSubscriptionID
		}
		if req.ProcessorPriceID != "" {
			record.ProcessorPriceID = &req.ProcessorPriceID
		}
		record.LastPaymentAt = &now
		record.UpdatedAt = now

		return s.records.Save(ctx, tx, record)
	})
}

// ApplyCancellation implements domain.Service.
func (s *Service) ApplyCancellation(ctx context.Context, tenantID snowflake.ID) error {
	if tenantID == 0 {
		return quotadomain.ErrInvalidTenant
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, err := s.records.FindByTenantIDForUpdate(ctx, tx, tenantID)
		if err != nil {
			return err
		}
		if record == nil {
			return quotadomain.ErrRecordNotFound
		}
		if record.Status == quotadomain.RecordStatusCanceled {
			return nil
		}

		return s.records.UpdateStatus(ctx, tx, tenantID, quotadomain.RecordStatusCanceled, s.clock.Now())
	})
	if err != nil {
		return err
	}

	s.log.Info("subscription canceled", zap.Int64("tenant_id", int64(tenantID)))
	return nil
}

func periodEnd(now time.Time, cycle plancatalogdomain.BillingCycle) time.Time {
	if cycle == plancatalogdomain.BillingCycleYearly {
		return now.AddDate(1, 0, 0)
	}
	return now.AddDate(0, 1, 0)
}
