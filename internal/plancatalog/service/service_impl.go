package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/paperflow/internal/clock"
	"github.com/smallbiznis/paperflow/internal/config"
	plancatalogdomain "github.com/smallbiznis/paperflow/internal/plancatalog/domain"
	"github.com/smallbiznis/paperflow/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID     *snowflake.Node
	clock     clock.Clock
	repo      plancatalogdomain.Repository
	overrides *config.PlanOverridesHolder
}

type ServiceParam struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Repo      plancatalogdomain.Repository
	Overrides *config.PlanOverridesHolder `optional:"true"`
}

func NewService(p ServiceParam) plancatalogdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("plancatalog.service"),

		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		overrides: p.Overrides,
	}
}

// Bootstrap implements domain.Service.
func (s *Service) Bootstrap(ctx context.Context) error {
	now := s.clock.Now()
	for _, tpl := range plancatalogdomain.BuiltinTemplates() {
		tpl = s.applyOverride(tpl)
		tpl.ID = s.genID.Generate()
		tpl.CreatedAt = now
		tpl.UpdatedAt = now

		if err := s.repo.Insert(ctx, s.db, &tpl); err != nil && !db.IsDuplicateKeyErr(err) {
			return err
		}
	}

	s.log.Info("plan catalog bootstrapped", zap.Int("templates", len(plancatalogdomain.BuiltinTemplates())))
	return nil
}

// GetTemplate implements domain.Service. Reads are side-effect free; missing
// store entries fall back to the compiled-in catalog without persisting.
func (s *Service) GetTemplate(ctx context.Context, planID string) (plancatalogdomain.PlanTemplate, error) {
	planID = strings.TrimSpace(planID)
	if planID == "" {
		return plancatalogdomain.PlanTemplate{}, plancatalogdomain.ErrInvalidPlanID
	}

	tpl, err := s.repo.FindByPlanID(ctx, s.db, planID)
	if err != nil {
		return plancatalogdomain.PlanTemplate{}, err
	}
	if tpl != nil {
		return *tpl, nil
	}

	builtin, ok := plancatalogdomain.BuiltinTemplate(planID)
	if !ok {
		return plancatalogdomain.PlanTemplate{}, plancatalogdomain.ErrPlanNotFound
	}
	return s.applyOverride(builtin), nil
}

// ResolveTemplate implements domain.Service. Unlike GetTemplate, a failing
// store lookup degrades to the compiled-in catalog so callers creating or
// transitioning quota records always get a template for a known plan id.
func (s *Service) ResolveTemplate(ctx context.Context, planID string) (plancatalogdomain.PlanTemplate, error) {
	tpl, err := s.GetTemplate(ctx, planID)
	if err == nil {
		return tpl, nil
	}

	builtin, ok := plancatalogdomain.BuiltinTemplate(strings.TrimSpace(planID))
	if !ok {
		return plancatalogdomain.PlanTemplate{}, plancatalogdomain.ErrPlanNotFound
	}

	s.log.Warn("plan template store lookup failed, using built-in definition",
		zap.String("plan_id", planID),
		zap.Error(err),
	)
	return s.applyOverride(builtin), nil
}

// ListActiveTemplates implements domain.Service.
func (s *Service) ListActiveTemplates(ctx context.Context) ([]plancatalogdomain.PlanTemplate, error) {
	return s.repo.ListActive(ctx, s.db)
}

// UpsertTemplate implements domain.Service. Omitted patch fields keep their
// stored value; a template absent from the store starts from its built-in
// definition before the patch applies.
func (s *Service) UpsertTemplate(ctx context.Context, req plancatalogdomain.UpsertTemplateRequest) (plancatalogdomain.PlanTemplate, error) {
	planID := strings.TrimSpace(req.PlanID)
	if planID == "" {
		return plancatalogdomain.PlanTemplate{}, plancatalogdomain.ErrInvalidPlanID
	}

	existing, err := s.repo.FindByPlanID(ctx, s.db, planID)
	if err != nil {
		return plancatalogdomain.PlanTemplate{}, err
	}

	var tpl plancatalogdomain.PlanTemplate
	switch {
	case existing != nil:
		tpl = *existing
	default:
		builtin, ok := plancatalogdomain.BuiltinTemplate(planID)
		if !ok {
			// Brand-new plan id: start from an empty template.
			builtin = plancatalogdomain.PlanTemplate{
				PlanID:   planID,
				IsActive: true,
				PlanFeatures: plancatalogdomain.PlanFeatures{
					DocumentAccess: plancatalogdomain.DocumentAccessBasic,
				},
				Currency: "THB",
			}
		}
		tpl = s.applyOverride(builtin)
		tpl.ID = s.genID.Generate()
		tpl.CreatedAt = s.clock.Now()
	}

	applyPatch(&tpl, req.Patch)

	if !tpl.PlanLimits.Valid() {
		return plancatalogdomain.PlanTemplate{}, plancatalogdomain.ErrInvalidLimit
	}
	if tpl.DocumentAccess != plancatalogdomain.DocumentAccessBasic && tpl.DocumentAccess != plancatalogdomain.DocumentAccessFull {
		return plancatalogdomain.PlanTemplate{}, plancatalogdomain.ErrInvalidDocumentAccess
	}
	if !tpl.MonthlyPrice.SelfService() && tpl.MonthlyPrice != plancatalogdomain.PriceContactSales {
		return plancatalogdomain.PlanTemplate{}, plancatalogdomain.ErrInvalidPrice
	}
	if !tpl.YearlyPrice.SelfService() && tpl.YearlyPrice != plancatalogdomain.PriceContactSales {
		return plancatalogdomain.PlanTemplate{}, plancatalogdomain.ErrInvalidPrice
	}

	tpl.UpdatedAt = s.clock.Now()
	tpl.UpdatedBy = strings.TrimSpace(req.UpdatedBy)

	if err := s.repo.Save(ctx, s.db, &tpl); err != nil {
		return plancatalogdomain.PlanTemplate{}, err
	}
	return tpl, nil
}

func (s *Service) applyOverride(tpl plancatalogdomain.PlanTemplate) plancatalogdomain.PlanTemplate {
	if s.overrides == nil {
		return tpl
	}
	override, ok := s.overrides.Current()[tpl.PlanID]
	if !ok {
		return tpl
	}
	if override.MonthlyPrice != nil {
		tpl.MonthlyPrice = plancatalogdomain.Price(*override.MonthlyPrice)
	}
	if override.YearlyPrice != nil {
		tpl.YearlyPrice = plancatalogdomain.Price(*override.YearlyPrice)
	}
	if override.Currency != nil {
		tpl.Currency = *override.Currency
	}
	if override.IsActive != nil {
		tpl.IsActive = *override.IsActive
	}
	return tpl
}

func applyPatch(tpl *plancatalogdomain.PlanTemplate, patch plancatalogdomain.TemplatePatch) {
	if patch.Name != nil {
		tpl.Name = *patch.Name
	}
	if patch.Description != nil {
		tpl.Description = *patch.Description
	}
	if patch.DisplayOrder != nil {
		tpl.DisplayOrder = *patch.DisplayOrder
	}
	if patch.IsActive != nil {
		tpl.IsActive = *patch.IsActive
	}
	if patch.IsPopular != nil {
		tpl.IsPopular = *patch.IsPopular
	}
	if patch.MonthlyPrice != nil {
		tpl.MonthlyPrice = *patch.MonthlyPrice
	}
	if patch.YearlyPrice != nil {
		tpl.YearlyPrice = *patch.YearlyPrice
	}
	if patch.Currency != nil {
		tpl.Currency = *patch.Currency
	}

	applyLimitsPatch(&tpl.PlanLimits, patch.Limits)
	applyFeaturesPatch(&tpl.PlanFeatures, patch.Features)
}

func applyLimitsPatch(limits *plancatalogdomain.PlanLimits, patch plancatalogdomain.LimitsPatch) {
	if patch.MaxUsers != nil {
		limits.MaxUsers = *patch.MaxUsers
	}
	if patch.MaxDocumentsPerMonth != nil {
		limits.MaxDocumentsPerMonth = *patch.MaxDocumentsPerMonth
	}
	if patch.MaxLogos != nil {
		limits.MaxLogos = *patch.MaxLogos
	}
	if patch.MaxStorageMB != nil {
		limits.MaxStorageMB = *patch.MaxStorageMB
	}
	if patch.MaxCustomers != nil {
		limits.MaxCustomers = *patch.MaxCustomers
	}
	if patch.MaxContractors != nil {
		limits.MaxContractors = *patch.MaxContractors
	}
	if patch.MaxPDFExportsPerMonth != nil {
		limits.MaxPDFExportsPerMonth = *patch.MaxPDFExportsPerMonth
	}
	if patch.MaxCompanies != nil {
		limits.MaxCompanies = *patch.MaxCompanies
	}
	if patch.HistoryRetentionDays != nil {
		limits.HistoryRetentionDays = *patch.HistoryRetentionDays
	}
}

func applyFeaturesPatch(features *plancatalogdomain.PlanFeatures, patch plancatalogdomain.FeaturesPatch) {
	if patch.MultiProfile != nil {
		features.MultiProfile = *patch.MultiProfile
	}
	if patch.APIAccess != nil {
		features.APIAccess = *patch.APIAccess
	}
	if patch.CustomDomain != nil {
		features.CustomDomain = *patch.CustomDomain
	}
	if patch.PrioritySupport != nil {
		features.PrioritySupport = *patch.PrioritySupport
	}
	if patch.ExportFormats != nil {
		features.ExportFormats = *patch.ExportFormats
	}
	if patch.AdvancedReports != nil {
		features.AdvancedReports = *patch.AdvancedReports
	}
	if patch.CustomTemplates != nil {
		features.CustomTemplates = *patch.CustomTemplates
	}
	if patch.Watermark != nil {
		features.Watermark = *patch.Watermark
	}
	if patch.LineNotification != nil {
		features.LineNotification = *patch.LineNotification
	}
	if patch.DedicatedSupport != nil {
		features.DedicatedSupport = *patch.DedicatedSupport
	}
	if patch.FullAuditLog != nil {
		features.FullAuditLog = *patch.FullAuditLog
	}
	if patch.DocumentAccess != nil {
		features.DocumentAccess = *patch.DocumentAccess
	}
}
