package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/paperflow/internal/clock"
	plancatalogdomain "github.com/smallbiznis/paperflow/internal/plancatalog/domain"
	"github.com/smallbiznis/paperflow/internal/quota/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	catalog plancatalogdomain.Service
}

type ServiceParam struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	Catalog plancatalogdomain.Service
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("quota.service"),

		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		catalog: p.Catalog,
	}
}

// CreateRecord implements domain.Service. The record mirrors the plan
// template with every counter at zero; an existing record for the tenant is
// overwritten wholesale.
func (s *Service) CreateRecord(ctx context.Context, req domain.CreateRecordRequest) (domain.QuotaRecord, error) {
	if req.TenantID == 0 {
		return domain.QuotaRecord{}, domain.ErrInvalidTenant
	}

	cycle, err := domain.ParseBillingCycle(string(req.BillingCycle))
	if err != nil {
		return domain.QuotaRecord{}, err
	}

	tpl, err := s.catalog.ResolveTemplate(ctx, req.PlanID)
	if err != nil {
		return domain.QuotaRecord{}, err
	}

	now := s.clock.Now()
	record := domain.QuotaRecord{
		ID:           s.genID.Generate(),
		TenantID:     req.TenantID,
		Status:       domain.RecordStatusActive,
		BillingCycle: cycle,

		StartAt:           now,
		DocumentResetDate: firstOfNextMonth(now),

		CreatedAt: now,
		UpdatedAt: now,
	}
	record.ApplyTemplate(tpl)

	if req.TrialDays > 0 {
		trialEnd := now.AddDate(0, 0, req.TrialDays)
		record.Status = domain.RecordStatusTrial
		record.TrialEndAt = &trialEnd
	}

	if price := tpl.PriceFor(cycle); price.IsChargeable() {
		amount := int64(price)
		record.PaymentAmount = &amount
		record.PaymentCurrency = &tpl.Currency
	}

	if err := s.repo.Upsert(ctx, s.db, &record); err != nil {
		return domain.QuotaRecord{}, err
	}

	s.log.Info("quota record created",
		zap.Int64("tenant_id", int64(record.TenantID)),
		zap.String("plan_id", record.PlanID),
		zap.String("billing_cycle", string(record.BillingCycle)),
	)
	return record, nil
}

// GetRecord implements domain.Service.
func (s *Service) GetRecord(ctx context.Context, tenantID snowflake.ID) (domain.QuotaRecord, error) {
	if tenantID == 0 {
		return domain.QuotaRecord{}, domain.ErrInvalidTenant
	}

	record, err := s.repo.FindByTenantID(ctx, s.db, tenantID)
	if err != nil {
		return domain.QuotaRecord{}, err
	}
	if record == nil {
		return domain.QuotaRecord{}, domain.ErrRecordNotFound
	}
	return *record, nil
}

// CheckExceeded implements domain.Service.
func (s *Service) CheckExceeded(ctx context.Context, tenantID snowflake.ID, kind domain.ResourceKind) (bool, error) {
	kind, err := domain.ParseResourceKind(string(kind))
	if err != nil {
		return false, err
	}

	record, err := s.GetRecord(ctx, tenantID)
	if err != nil {
		return false, err
	}

	s.touchActivity(ctx, tenantID)
	return record.LimitFor(kind).Exceeded(record.UsageFor(kind)), nil
}

// Increment implements domain.Service. The counter moves inside a transaction
// holding a row lock so concurrent mutations serialize instead of losing
// updates.
func (s *Service) Increment(ctx context.Context, tenantID snowflake.ID, kind domain.ResourceKind, amount int64) error {
	if amount <= 0 {
		return domain.ErrInvalidAmount
	}
	return s.adjustCounter(ctx, tenantID, kind, amount)
}

// Decrement implements domain.Service.
func (s *Service) Decrement(ctx context.Context, tenantID snowflake.ID, kind domain.ResourceKind, amount int64) error {
	if amount <= 0 {
		return domain.ErrInvalidAmount
	}
	return s.adjustCounter(ctx, tenantID, kind, -amount)
}

func (s *Service) adjustCounter(ctx context.Context, tenantID snowflake.ID, kind domain.ResourceKind, delta int64) error {
	if tenantID == 0 {
		return domain.ErrInvalidTenant
	}
	kind, err := domain.ParseResourceKind(string(kind))
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, err := s.repo.FindByTenantIDForUpdate(ctx, tx, tenantID)
		if err != nil {
			return err
		}
		if record == nil {
			return domain.ErrRecordNotFound
		}

		next := record.UsageFor(kind) + delta
		if next < 0 {
			next = 0
		}

		return s.repo.UpdateCounter(ctx, tx, tenantID, domain.CounterColumn(kind), next, s.clock.Now())
	})
	if err != nil {
		return err
	}

	s.touchActivity(ctx, tenantID)
	return nil
}

// ResetPeriodicCounters implements domain.Service.
func (s *Service) ResetPeriodicCounters(ctx context.Context, tenantID snowflake.ID) error {
	if tenantID == 0 {
		return domain.ErrInvalidTenant
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, err := s.repo.FindByTenantIDForUpdate(ctx, tx, tenantID)
		if err != nil {
			return err
		}
		if record == nil {
			return domain.ErrRecordNotFound
		}

		now := s.clock.Now()
		if err := s.repo.ResetPeriodicCounters(ctx, tx, tenantID, firstOfNextMonth(now), now); err != nil {
			return err
		}

		s.log.Info("periodic counters reset",
			zap.Int64("tenant_id", int64(tenantID)),
			zap.String("plan_id", record.PlanID),
		)
		return nil
	})
}

// UpdateStatus implements domain.Service.
func (s *Service) UpdateStatus(ctx context.Context, tenantID snowflake.ID, status domain.RecordStatus) error {
	if tenantID == 0 {
		return domain.ErrInvalidTenant
	}
	if !domain.IsValidStatus(status) {
		return domain.ErrInvalidStatus
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, err := s.repo.FindByTenantIDForUpdate(ctx, tx, tenantID)
		if err != nil {
			return err
		}
		if record == nil {
			return domain.ErrRecordNotFound
		}

		if record.Status == status {
			return nil
		}
		if !domain.IsTransitionAllowed(record.Status, status) {
			return domain.ErrInvalidTransition
		}

		return s.repo.UpdateStatus(ctx, tx, tenantID, status, s.clock.Now())
	})
}

// touchActivity records tenant liveness. Failures are logged and swallowed so
// a bookkeeping hiccup never fails the quota operation that triggered it.
func (s *Service) touchActivity(ctx context.Context, tenantID snowflake.ID) {
	if err := s.repo.TouchLastActivity(ctx, s.db, tenantID, s.clock.Now()); err != nil {
		s.log.Warn("failed to touch last activity",
			zap.Int64("tenant_id", int64(tenantID)),
			zap.Error(err),
		)
	}
}

func firstOfNextMonth(t time.Time) time.Time {
	year, month, _ := t.Date()
	return time.Date(year, month, 1, 0, 0, 0, 0, t.Location()).AddDate(0, 1, 0)
}
