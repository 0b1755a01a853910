package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/paperflow/internal/clock"
	"github.com/smallbiznis/paperflow/internal/config"
	plancatalogdomain "github.com/smallbiznis/paperflow/internal/plancatalog/domain"
	plancatalogrepository "github.com/smallbiznis/paperflow/internal/plancatalog/repository"
	plancatalogservice "github.com/smallbiznis/paperflow/internal/plancatalog/service"
	quotadomain "github.com/smallbiznis/paperflow/internal/quota/domain"
	quotarepository "github.com/smallbiznis/paperflow/internal/quota/repository"
	quotaservice "github.com/smallbiznis/paperflow/internal/quota/service"
	"github.com/smallbiznis/paperflow/internal/tenant/domain"
	"github.com/smallbiznis/paperflow/internal/tenant/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTenant(t *testing.T) (domain.Service, quotadomain.Service) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Tenant{},
		&plancatalogdomain.PlanTemplate{},
		&quotadomain.QuotaRecord{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))

	catalog := plancatalogservice.NewService(plancatalogservice.ServiceParam{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fake,
		Repo:  plancatalogrepository.Provide(),
	})
	quota := quotaservice.NewService(quotaservice.ServiceParam{
		DB:      db,
		Log:     zap.NewNop(),
		GenID:   node,
		Clock:   fake,
		Repo:    quotarepository.Provide(),
		Catalog: catalog,
	})
	svc := NewService(ServiceParam{
		DB:    db,
		Log:   zap.NewNop(),
		Cfg:   config.Config{DefaultPlanID: plancatalogdomain.PlanFree},
		GenID: node,
		Clock: fake,
		Repo:  repository.Provide(),
		Quota: quota,
	})
	return svc, quota
}

func TestOnboardCreatesTenantWithQuota(t *testing.T) {
	svc, quota := setupTenant(t)
	ctx := context.Background()

	resp, err := svc.Onboard(ctx, domain.OnboardRequest{
		Name:         "ร้านกาแฟ Good Morning",
		ContactEmail: "owner@goodmorning.th",
	})
	require.NoError(t, err)

	assert.NotZero(t, resp.Tenant.ID)
	assert.Equal(t, "ร้านกาแฟ Good Morning", resp.Tenant.Name)
	assert.NotEmpty(t, resp.Tenant.Slug)
	assert.Equal(t, "TH", resp.Tenant.Country)

	// A tenant never exists without its entitlement record.
	record, err := quota.GetRecord(ctx, resp.Tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, plancatalogdomain.PlanFree, record.PlanID)
	assert.Equal(t, quotadomain.RecordStatusActive, record.Status)
	assert.Equal(t, resp.Quota.ID, record.ID)
}

func TestOnboardExplicitPlan(t *testing.T) {
	svc, _ := setupTenant(t)

	resp, err := svc.Onboard(context.Background(), domain.OnboardRequest{
		Name:   "Bangkok Design Studio",
		PlanID: plancatalogdomain.PlanStarter,
	})
	require.NoError(t, err)
	assert.Equal(t, plancatalogdomain.PlanStarter, resp.Quota.PlanID)
}

func TestOnboardSlugDeduplication(t *testing.T) {
	svc, _ := setupTenant(t)
	ctx := context.Background()

	first, err := svc.Onboard(ctx, domain.OnboardRequest{Name: "Siam Traders"})
	require.NoError(t, err)
	second, err := svc.Onboard(ctx, domain.OnboardRequest{Name: "Siam Traders"})
	require.NoError(t, err)

	assert.Equal(t, "siam-traders", first.Tenant.Slug)
	assert.Equal(t, "siam-traders-2", second.Tenant.Slug)
}

func TestOnboardRejectsEmptyName(t *testing.T) {
	svc, _ := setupTenant(t)

	_, err := svc.Onboard(context.Background(), domain.OnboardRequest{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestGetTenant(t *testing.T) {
	svc, _ := setupTenant(t)
	ctx := context.Background()

	resp, err := svc.Onboard(ctx, domain.OnboardRequest{Name: "Lanna Crafts"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, resp.Tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.Tenant.Slug, got.Slug)

	_, err = svc.Get(ctx, resp.Tenant.ID+1)
	assert.ErrorIs(t, err, domain.ErrTenantNotFound)
}
