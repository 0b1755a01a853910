package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/paperflow/internal/clock"
	plancatalogdomain "github.com/smallbiznis/paperflow/internal/plancatalog/domain"
	plancatalogrepository "github.com/smallbiznis/paperflow/internal/plancatalog/repository"
	plancatalogservice "github.com/smallbiznis/paperflow/internal/plancatalog/service"
	"github.com/smallbiznis/paperflow/internal/quota/domain"
	"github.com/smallbiznis/paperflow/internal/quota/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// lockFreeRepo downgrades the locked read to a plain one. sqlite has no
// SELECT ... FOR UPDATE.
type lockFreeRepo struct {
	domain.Repository
}

func (r lockFreeRepo) FindByTenantIDForUpdate(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) (*domain.QuotaRecord, error) {
	return r.Repository.FindByTenantID(ctx, db, tenantID)
}

type quotaFixture struct {
	svc   domain.Service
	db    *gorm.DB
	node  *snowflake.Node
	clock *clock.FakeClock
}

func setupQuota(t *testing.T) quotaFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&plancatalogdomain.PlanTemplate{}, &domain.QuotaRecord{}))

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

	svc := NewService(ServiceParam{
		DB:      db,
		Log:     zap.NewNop(),
		GenID:   node,
		Clock:   fake,
		Repo:    lockFreeRepo{repository.Provide()},
		Catalog: catalog,
	})
	return quotaFixture{svc: svc, db: db, node: node, clock: fake}
}

func (f quotaFixture) createTenant(t *testing.T, planID string) snowflake.ID {
	t.Helper()
	tenantID := f.node.Generate()
	_, err := f.svc.CreateRecord(context.Background(), domain.CreateRecordRequest{
		TenantID: tenantID,
		PlanID:   planID,
	})
	require.NoError(t, err)
	return tenantID
}

func TestCreateRecordMirrorsTemplate(t *testing.T) {
	f := setupQuota(t)
	ctx := context.Background()
	tenantID := f.node.Generate()

	record, err := f.svc.CreateRecord(ctx, domain.CreateRecordRequest{
		TenantID: tenantID,
		PlanID:   plancatalogdomain.PlanFree,
	})
	require.NoError(t, err)

	tpl, ok := plancatalogdomain.BuiltinTemplate(plancatalogdomain.PlanFree)
	require.True(t, ok)

	assert.Equal(t, tenantID, record.TenantID)
	assert.Equal(t, plancatalogdomain.PlanFree, record.PlanID)
	assert.Equal(t, domain.RecordStatusActive, record.Status)
	assert.Equal(t, plancatalogdomain.BillingCycleMonthly, record.BillingCycle)
	assert.Equal(t, tpl.PlanLimits, record.PlanLimits)
	assert.Equal(t, tpl.PlanFeatures, record.PlanFeatures)
	assert.Equal(t, domain.UsageCounters{}, record.UsageCounters)
	assert.True(t, record.DocumentResetDate.Equal(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)))

	// Free plan carries no payment obligation.
	assert.Nil(t, record.PaymentAmount)
	assert.Nil(t, record.PaymentCurrency)
	assert.Nil(t, record.TrialEndAt)
}

func TestCreateRecordChargeableAndTrial(t *testing.T) {
	f := setupQuota(t)
	ctx := context.Background()

	record, err := f.svc.CreateRecord(ctx, domain.CreateRecordRequest{
		TenantID:     f.node.Generate(),
		PlanID:       plancatalogdomain.PlanStarter,
		BillingCycle: plancatalogdomain.BillingCycleYearly,
		TrialDays:    14,
	})
	require.NoError(t, err)

	require.NotNil(t, record.PaymentAmount)
	assert.Equal(t, int64(199000), *record.PaymentAmount)
	require.NotNil(t, record.PaymentCurrency)
	assert.Equal(t, "THB", *record.PaymentCurrency)

	assert.Equal(t, domain.RecordStatusTrial, record.Status)
	require.NotNil(t, record.TrialEndAt)
	assert.True(t, record.TrialEndAt.Equal(f.clock.Now().AddDate(0, 0, 14)))
}

func TestCreateRecordOverwritesExisting(t *testing.T) {
	f := setupQuota(t)
	ctx := context.Background()
	tenantID := f.createTenant(t, plancatalogdomain.PlanFree)

	_, err := f.svc.CreateRecord(ctx, domain.CreateRecordRequest{
		TenantID: tenantID,
		PlanID:   plancatalogdomain.PlanStarter,
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, f.db.Model(&domain.QuotaRecord{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	record, err := f.svc.GetRecord(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, plancatalogdomain.PlanStarter, record.PlanID)
}

func TestCreateRecordValidation(t *testing.T) {
	f := setupQuota(t)
	ctx := context.Background()

	_, err := f.svc.CreateRecord(ctx, domain.CreateRecordRequest{PlanID: plancatalogdomain.PlanFree})
	assert.ErrorIs(t, err, domain.ErrInvalidTenant)

	_, err = f.svc.CreateRecord(ctx, domain.CreateRecordRequest{
		TenantID:     f.node.Generate(),
		PlanID:       plancatalogdomain.PlanFree,
		BillingCycle: "weekly",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidBillingCycle)

	_, err = f.svc.CreateRecord(ctx, domain.CreateRecordRequest{
		TenantID: f.node.Generate(),
		PlanID:   "platinum",
	})
	assert.ErrorIs(t, err, plancatalogdomain.ErrPlanNotFound)
}

func TestUnlimitedNeverExceeded(t *testing.T) {
	f := setupQuota(t)
	ctx := context.Background()
	tenantID := f.createTenant(t, plancatalogdomain.PlanBusiness)

	require.NoError(t, f.svc.Increment(ctx, tenantID, domain.ResourceDocuments, 1<<40))

	exceeded, err := f.svc.CheckExceeded(ctx, tenantID, domain.ResourceDocuments)
	require.NoError(t, err)
	assert.False(t, exceeded)
}

func TestFreePlanDocumentLimit(t *testing.T) {
	f := setupQuota(t)
	ctx := context.Background()
	tenantID := f.createTenant(t, plancatalogdomain.PlanFree)

	require.NoError(t, f.svc.Increment(ctx, tenantID, domain.ResourceDocuments, 14))
	exceeded, err := f.svc.CheckExceeded(ctx, tenantID, domain.ResourceDocuments)
	require.NoError(t, err)
	assert.False(t, exceeded)

	require.NoError(t, f.svc.Increment(ctx, tenantID, domain.ResourceDocuments, 1))
	exceeded, err = f.svc.CheckExceeded(ctx, tenantID, domain.ResourceDocuments)
	require.NoError(t, err)
	assert.True(t, exceeded)
}

func TestDecrementFloorsAtZero(t *testing.T) {
	f := setupQuota(t)
	ctx := context.Background()
	tenantID := f.createTenant(t, plancatalogdomain.PlanFree)

	require.NoError(t, f.svc.Increment(ctx, tenantID, domain.ResourceCustomers, 3))
	require.NoError(t, f.svc.Decrement(ctx, tenantID, domain.ResourceCustomers, 10))

	record, err := f.svc.GetRecord(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), record.CurrentCustomers)
}

func TestAdjustCounterValidation(t *testing.T) {
	f := setupQuota(t)
	ctx := context.Background()
	tenantID := f.createTenant(t, plancatalogdomain.PlanFree)

	assert.ErrorIs(t, f.svc.Increment(ctx, tenantID, domain.ResourceDocuments, 0), domain.ErrInvalidAmount)
	assert.ErrorIs(t, f.svc.Increment(ctx, tenantID, "widgets", 1), domain.ErrInvalidResourceKind)
	assert.ErrorIs(t, f.svc.Increment(ctx, 0, domain.ResourceDocuments, 1), domain.ErrInvalidTenant)
	assert.ErrorIs(t, f.svc.Increment(ctx, f.node.Generate(), domain.ResourceDocuments, 1), domain.ErrRecordNotFound)

	// A negative amount must not flip the direction of the mutation.
	assert.ErrorIs(t, f.svc.Increment(ctx, tenantID, domain.ResourceDocuments, -1), domain.ErrInvalidAmount)
	assert.ErrorIs(t, f.svc.Decrement(ctx, tenantID, domain.ResourceDocuments, -1), domain.ErrInvalidAmount)

	record, err := f.svc.GetRecord(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), record.CurrentDocuments)
}

func TestResourceKindInputIsNormalized(t *testing.T) {
	f := setupQuota(t)
	ctx := context.Background()
	tenantID := f.createTenant(t, plancatalogdomain.PlanFree)

	// Padded input must behave exactly like the canonical kind, not fall
	// through to a zero limit or an empty counter column.
	padded := domain.ResourceKind(" documents ")

	exceeded, err := f.svc.CheckExceeded(ctx, tenantID, padded)
	require.NoError(t, err)
	assert.False(t, exceeded)

	require.NoError(t, f.svc.Increment(ctx, tenantID, padded, 1))

	record, err := f.svc.GetRecord(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), record.CurrentDocuments)

	require.NoError(t, f.svc.Decrement(ctx, tenantID, padded, 1))
	record, err = f.svc.GetRecord(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), record.CurrentDocuments)
}

func TestResetPeriodicCounters(t *testing.T) {
	f := setupQuota(t)
	ctx := context.Background()
	tenantID := f.createTenant(t, plancatalogdomain.PlanFree)

	require.NoError(t, f.svc.Increment(ctx, tenantID, domain.ResourceDocuments, 12))
	require.NoError(t, f.svc.Increment(ctx, tenantID, domain.ResourcePDFExports, 7))
	require.NoError(t, f.svc.Increment(ctx, tenantID, domain.ResourceUsers, 1))

	f.clock.Advance(30 * 24 * time.Hour) // into April
	require.NoError(t, f.svc.ResetPeriodicCounters(ctx, tenantID))

	record, err := f.svc.GetRecord(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), record.CurrentDocuments)
	assert.Equal(t, int64(0), record.CurrentPDFExports)
	// Non-periodic counters survive the sweep.
	assert.Equal(t, int64(1), record.CurrentUsers)
	assert.True(t, record.DocumentResetDate.Equal(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)))
}

func TestUpdateStatusTransitions(t *testing.T) {
	f := setupQuota(t)
	ctx := context.Background()
	tenantID := f.createTenant(t, plancatalogdomain.PlanFree)

	require.NoError(t, f.svc.UpdateStatus(ctx, tenantID, domain.RecordStatusSuspended))

	record, err := f.svc.GetRecord(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, domain.RecordStatusSuspended, record.Status)

	// Suspended is terminal for the status-only path.
	assert.ErrorIs(t, f.svc.UpdateStatus(ctx, tenantID, domain.RecordStatusActive), domain.ErrInvalidTransition)

	// Re-applying the current status is a no-op, not a conflict.
	assert.NoError(t, f.svc.UpdateStatus(ctx, tenantID, domain.RecordStatusSuspended))

	assert.ErrorIs(t, f.svc.UpdateStatus(ctx, tenantID, "archived"), domain.ErrInvalidStatus)
	assert.ErrorIs(t, f.svc.UpdateStatus(ctx, f.node.Generate(), domain.RecordStatusCanceled), domain.ErrRecordNotFound)
}

func TestCheckExceededTouchesActivity(t *testing.T) {
	f := setupQuota(t)
	ctx := context.Background()
	tenantID := f.createTenant(t, plancatalogdomain.PlanFree)

	_, err := f.svc.CheckExceeded(ctx, tenantID, domain.ResourceDocuments)
	require.NoError(t, err)

	record, err := f.svc.GetRecord(ctx, tenantID)
	require.NoError(t, err)
	require.NotNil(t, record.LastActivityAt)
	assert.True(t, record.LastActivityAt.Equal(f.clock.Now()))
}
