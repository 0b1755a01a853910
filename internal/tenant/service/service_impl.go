package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/paperflow/internal/clock"
	"github.com/smallbiznis/paperflow/internal/config"
	quotadomain "github.com/smallbiznis/paperflow/internal/quota/domain"
	"github.com/smallbiznis/paperflow/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger
	cfg config.Config

	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
	quota quotadomain.Service
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Cfg   config.Config
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
	Quota quotadomain.Service
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("tenant.service"),
		cfg: p.Cfg,

		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
		quota: p.Quota,
	}
}

// Onboard implements domain.Service.
func (s *Service) Onboard(ctx context.Context, req domain.OnboardRequest) (domain.OnboardResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.OnboardResponse{}, domain.ErrInvalidName
	}

	tenantSlug, err := s.uniqueSlug(ctx, name)
	if err != nil {
		return domain.OnboardResponse{}, err
	}

	now := s.clock.Now()
	tenant := domain.Tenant{
		ID:           s.genID.Generate(),
		Name:         name,
		Slug:         tenantSlug,
		ContactEmail: strings.TrimSpace(req.ContactEmail),
		Country:      strings.TrimSpace(req.Country),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if tenant.Country == "" {
		tenant.Country = "TH"
	}

	if err := s.repo.Create(ctx, s.db, &tenant); err != nil {
		return domain.OnboardResponse{}, err
	}

	planID := strings.TrimSpace(req.PlanID)
	if planID == "" {
		planID = s.cfg.DefaultPlanID
	}

	record, err := s.quota.CreateRecord(ctx, quotadomain.CreateRecordRequest{
		TenantID: tenant.ID,
		PlanID:   planID,
	})
	if err != nil {
		return domain.OnboardResponse{}, err
	}

	s.log.Info("tenant onboarded",
		zap.Int64("tenant_id", int64(tenant.ID)),
		zap.String("slug", tenant.Slug),
		zap.String("plan_id", record.PlanID),
	)
	return domain.OnboardResponse{Tenant: tenant, Quota: record}, nil
}

// Get implements domain.Service.
func (s *Service) Get(ctx context.Context, id snowflake.ID) (domain.Tenant, error) {
	tenant, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Tenant{}, err
	}
	if tenant == nil {
		return domain.Tenant{}, domain.ErrTenantNotFound
	}
	return *tenant, nil
}

// uniqueSlug derives a URL-safe slug from the tenant name, appending a short
// numeric suffix when the base slug is taken.
func (s *Service) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		return "", domain.ErrInvalidName
	}

	candidate := base
	for i := 2; i <= 20; i++ {
		existing, err := s.repo.FindBySlug(ctx, s.db, candidate)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", domain.ErrSlugAlreadyTaken
}
