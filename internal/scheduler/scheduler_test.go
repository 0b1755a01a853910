package scheduler

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
	quotadomain "github.com/smallbiznis/paperflow/internal/quota/domain"
	quotarepository "github.com/smallbiznis/paperflow/internal/quota/repository"
	quotaservice "github.com/smallbiznis/paperflow/internal/quota/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// lockFreeRepo downgrades the locked read to a plain one. sqlite has no
// SELECT ... FOR UPDATE.
type lockFreeRepo struct {
	quotadomain.Repository
}

func (r lockFreeRepo) FindByTenantIDForUpdate(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) (*quotadomain.QuotaRecord, error) {
	return r.Repository.FindByTenantID(ctx, db, tenantID)
}

// failingQuota fails every mutation for one tenant so error isolation can be
// observed.
type failingQuota struct {
	quotadomain.Service
	failTenant snowflake.ID
	failErr    error
}

func (q *failingQuota) ResetPeriodicCounters(ctx context.Context, tenantID snowflake.ID) error {
	if tenantID == q.failTenant {
		return q.failErr
	}
	return q.Service.ResetPeriodicCounters(ctx, tenantID)
}

func (q *failingQuota) UpdateStatus(ctx context.Context, tenantID snowflake.ID, status quotadomain.RecordStatus) error {
	if tenantID == q.failTenant {
		return q.failErr
	}
	return q.Service.UpdateStatus(ctx, tenantID, status)
}

type schedulerFixture struct {
	db    *gorm.DB
	node  *snowflake.Node
	clock *clock.FakeClock
	quota quotadomain.Service
	repo  quotadomain.Repository
}

func setupScheduler(t *testing.T) schedulerFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&plancatalogdomain.PlanTemplate{}, &quotadomain.QuotaRecord{}))

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
	repo := lockFreeRepo{quotarepository.Provide()}
	quota := quotaservice.NewService(quotaservice.ServiceParam{
		DB:      db,
		Log:     zap.NewNop(),
		GenID:   node,
		Clock:   fake,
		Repo:    repo,
		Catalog: catalog,
	})
	return schedulerFixture{db: db, node: node, clock: fake, quota: quota, repo: repo}
}

func (f schedulerFixture) newScheduler(t *testing.T, svc quotadomain.Service, cfg Config) *Scheduler {
	t.Helper()
	s, err := New(Params{
		DB:        f.db,
		Log:       zap.NewNop(),
		GenID:     f.node,
		Clock:     f.clock,
		QuotaSvc:  svc,
		QuotaRepo: f.repo,
		Config:    cfg,
	})
	require.NoError(t, err)
	return s
}

func (f schedulerFixture) createTenant(t *testing.T, planID string, trialDays int) snowflake.ID {
	t.Helper()
	tenantID := f.node.Generate()
	_, err := f.quota.CreateRecord(context.Background(), quotadomain.CreateRecordRequest{
		TenantID:  tenantID,
		PlanID:    planID,
		TrialDays: trialDays,
	})
	require.NoError(t, err)
	return tenantID
}

func TestCounterResetJobResetsDueRecords(t *testing.T) {
	f := setupScheduler(t)
	ctx := context.Background()

	tenants := make([]snowflake.ID, 0, 3)
	for i := 0; i < 3; i++ {
		tenantID := f.createTenant(t, plancatalogdomain.PlanFree, 0)
		require.NoError(t, f.quota.Increment(ctx, tenantID, quotadomain.ResourceDocuments, 5))
		tenants = append(tenants, tenantID)
	}

	// Cross the month boundary so every record's reset date is due.
	f.clock.Advance(40 * 24 * time.Hour)

	s := f.newScheduler(t, f.quota, Config{})
	require.NoError(t, s.RunOnce(ctx))

	for _, tenantID := range tenants {
		record, err := f.quota.GetRecord(ctx, tenantID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), record.CurrentDocuments)
		assert.True(t, record.DocumentResetDate.After(f.clock.Now()))
	}
}

func TestCounterResetJobIsolatesTenantFailures(t *testing.T) {
	f := setupScheduler(t)
	ctx := context.Background()

	good := f.createTenant(t, plancatalogdomain.PlanFree, 0)
	bad := f.createTenant(t, plancatalogdomain.PlanFree, 0)
	require.NoError(t, f.quota.Increment(ctx, good, quotadomain.ResourceDocuments, 5))
	require.NoError(t, f.quota.Increment(ctx, bad, quotadomain.ResourceDocuments, 5))

	f.clock.Advance(40 * 24 * time.Hour)

	failErr := fmt.Errorf("storage unavailable")
	s := f.newScheduler(t, &failingQuota{Service: f.quota, failTenant: bad, failErr: failErr},
		Config{EnabledJobs: []string{"counter_reset"}})

	err := s.RunOnce(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, failErr)

	// The healthy tenant still reset.
	record, err := f.quota.GetRecord(ctx, good)
	require.NoError(t, err)
	assert.Equal(t, int64(0), record.CurrentDocuments)

	record, err = f.quota.GetRecord(ctx, bad)
	require.NoError(t, err)
	assert.Equal(t, int64(5), record.CurrentDocuments)
}

func TestExpireTrialsJob(t *testing.T) {
	f := setupScheduler(t)
	ctx := context.Background()

	expiring := f.createTenant(t, plancatalogdomain.PlanStarter, 7)
	fresh := f.createTenant(t, plancatalogdomain.PlanStarter, 30)

	f.clock.Advance(10 * 24 * time.Hour)

	s := f.newScheduler(t, f.quota, Config{EnabledJobs: []string{"expire_trials"}})
	require.NoError(t, s.RunOnce(ctx))

	record, err := f.quota.GetRecord(ctx, expiring)
	require.NoError(t, err)
	assert.Equal(t, quotadomain.RecordStatusExpired, record.Status)

	record, err = f.quota.GetRecord(ctx, fresh)
	require.NoError(t, err)
	assert.Equal(t, quotadomain.RecordStatusTrial, record.Status)
}

func TestExpireLapsedJob(t *testing.T) {
	f := setupScheduler(t)
	ctx := context.Background()

	lapsed := f.createTenant(t, plancatalogdomain.PlanStarter, 0)
	current := f.createTenant(t, plancatalogdomain.PlanStarter, 0)

	past := f.clock.Now().AddDate(0, 0, -1)
	future := f.clock.Now().AddDate(0, 1, 0)
	require.NoError(t, f.db.Model(&quotadomain.QuotaRecord{}).
		Where("tenant_id = ?", lapsed).Update("end_at", past).Error)
	require.NoError(t, f.db.Model(&quotadomain.QuotaRecord{}).
		Where("tenant_id = ?", current).Update("end_at", future).Error)

	s := f.newScheduler(t, f.quota, Config{EnabledJobs: []string{"expire_lapsed"}})
	require.NoError(t, s.RunOnce(ctx))

	record, err := f.quota.GetRecord(ctx, lapsed)
	require.NoError(t, err)
	assert.Equal(t, quotadomain.RecordStatusExpired, record.Status)

	record, err = f.quota.GetRecord(ctx, current)
	require.NoError(t, err)
	assert.Equal(t, quotadomain.RecordStatusActive, record.Status)
}

func TestJobGating(t *testing.T) {
	f := setupScheduler(t)
	ctx := context.Background()

	tenantID := f.createTenant(t, plancatalogdomain.PlanFree, 0)
	require.NoError(t, f.quota.Increment(ctx, tenantID, quotadomain.ResourceDocuments, 5))
	f.clock.Advance(40 * 24 * time.Hour)

	s := f.newScheduler(t, f.quota, Config{EnabledJobs: []string{"expire_trials"}})
	require.NoError(t, s.RunOnce(ctx))

	// counter_reset was gated off, so the due record is untouched.
	record, err := f.quota.GetRecord(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), record.CurrentDocuments)
}
