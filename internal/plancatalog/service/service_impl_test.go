package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/paperflow/internal/clock"
	"github.com/smallbiznis/paperflow/internal/plancatalog/domain"
	"github.com/smallbiznis/paperflow/internal/plancatalog/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupCatalog(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()

	// Named shared-cache memory DB so every pooled connection sees the same
	// schema.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.PlanTemplate{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(ServiceParam{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})
	return svc, db
}

func TestBootstrapIsIdempotent(t *testing.T) {
	svc, db := setupCatalog(t)
	ctx := context.Background()

	require.NoError(t, svc.Bootstrap(ctx))
	require.NoError(t, svc.Bootstrap(ctx))

	var count int64
	require.NoError(t, db.Model(&domain.PlanTemplate{}).Count(&count).Error)
	assert.Equal(t, int64(len(domain.BuiltinTemplates())), count)
}

func TestGetTemplatePrefersStoredRecord(t *testing.T) {
	svc, _ := setupCatalog(t)
	ctx := context.Background()

	require.NoError(t, svc.Bootstrap(ctx))

	name := "Starter (Promo)"
	updated, err := svc.UpsertTemplate(ctx, domain.UpsertTemplateRequest{
		PlanID: domain.PlanStarter,
		Patch:  domain.TemplatePatch{Name: &name},
	})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)

	got, err := svc.GetTemplate(ctx, domain.PlanStarter)
	require.NoError(t, err)
	assert.Equal(t, name, got.Name)
	assert.True(t, got.MaxDocumentsPerMonth.IsUnlimited())
}

func TestGetTemplateFallsBackToBuiltin(t *testing.T) {
	svc, _ := setupCatalog(t)
	ctx := context.Background()

	// No bootstrap: the store is empty, lookups fall through to the
	// compiled-in catalog.
	got, err := svc.GetTemplate(ctx, domain.PlanFree)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanFree, got.PlanID)
	assert.Equal(t, domain.Limit(15), got.MaxDocumentsPerMonth)

	_, err = svc.GetTemplate(ctx, "platinum")
	assert.ErrorIs(t, err, domain.ErrPlanNotFound)

	_, err = svc.GetTemplate(ctx, "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidPlanID)
}

func TestListActiveTemplatesOrdering(t *testing.T) {
	svc, _ := setupCatalog(t)
	ctx := context.Background()

	require.NoError(t, svc.Bootstrap(ctx))

	inactive := false
	_, err := svc.UpsertTemplate(ctx, domain.UpsertTemplateRequest{
		PlanID: domain.PlanBusiness,
		Patch:  domain.TemplatePatch{IsActive: &inactive},
	})
	require.NoError(t, err)

	items, err := svc.ListActiveTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, domain.PlanFree, items[0].PlanID)
	assert.Equal(t, domain.PlanStarter, items[1].PlanID)
	assert.Equal(t, domain.PlanEnterprise, items[2].PlanID)
}

func TestUpsertTemplateMergePatch(t *testing.T) {
	svc, _ := setupCatalog(t)
	ctx := context.Background()

	require.NoError(t, svc.Bootstrap(ctx))

	maxUsers := domain.Limit(5)
	price := domain.Price(24900)
	updated, err := svc.UpsertTemplate(ctx, domain.UpsertTemplateRequest{
		PlanID: domain.PlanStarter,
		Patch: domain.TemplatePatch{
			MonthlyPrice: &price,
			Limits:       domain.LimitsPatch{MaxUsers: &maxUsers},
		},
		UpdatedBy: "ops@paperflow.io",
	})
	require.NoError(t, err)

	// Patched fields move, everything else keeps the stored value.
	assert.Equal(t, price, updated.MonthlyPrice)
	assert.Equal(t, maxUsers, updated.MaxUsers)
	assert.Equal(t, "Starter", updated.Name)
	assert.Equal(t, domain.Price(199000), updated.YearlyPrice)
	assert.Equal(t, "ops@paperflow.io", updated.UpdatedBy)
}

func TestUpsertTemplateNewPlanID(t *testing.T) {
	svc, _ := setupCatalog(t)
	ctx := context.Background()

	name := "Education"
	maxDocs := domain.Limit(50)
	created, err := svc.UpsertTemplate(ctx, domain.UpsertTemplateRequest{
		PlanID: "education",
		Patch: domain.TemplatePatch{
			Name:   &name,
			Limits: domain.LimitsPatch{MaxDocumentsPerMonth: &maxDocs},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "education", created.PlanID)
	assert.Equal(t, maxDocs, created.MaxDocumentsPerMonth)
	assert.Equal(t, domain.DocumentAccessBasic, created.DocumentAccess)
	assert.Equal(t, "THB", created.Currency)

	got, err := svc.GetTemplate(ctx, "education")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestUpsertTemplateValidation(t *testing.T) {
	svc, _ := setupCatalog(t)
	ctx := context.Background()

	badLimit := domain.Limit(-5)
	_, err := svc.UpsertTemplate(ctx, domain.UpsertTemplateRequest{
		PlanID: domain.PlanFree,
		Patch:  domain.TemplatePatch{Limits: domain.LimitsPatch{MaxLogos: &badLimit}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidLimit)

	badPrice := domain.Price(-2)
	_, err = svc.UpsertTemplate(ctx, domain.UpsertTemplateRequest{
		PlanID: domain.PlanFree,
		Patch:  domain.TemplatePatch{MonthlyPrice: &badPrice},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)

	badAccess := domain.DocumentAccess("premium")
	_, err = svc.UpsertTemplate(ctx, domain.UpsertTemplateRequest{
		PlanID: domain.PlanFree,
		Patch:  domain.TemplatePatch{Features: domain.FeaturesPatch{DocumentAccess: &badAccess}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDocumentAccess)
}

func TestResolveTemplateKnownPlanAlwaysResolves(t *testing.T) {
	svc, _ := setupCatalog(t)
	ctx := context.Background()

	got, err := svc.ResolveTemplate(ctx, domain.PlanEnterprise)
	require.NoError(t, err)
	assert.Equal(t, domain.PriceContactSales, got.MonthlyPrice)

	_, err = svc.ResolveTemplate(ctx, "platinum")
	assert.ErrorIs(t, err, domain.ErrPlanNotFound)
}
