package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindByTenantID(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) (*QuotaRecord, error)
	FindByTenantIDForUpdate(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) (*QuotaRecord, error)
	Upsert(ctx context.Context, db *gorm.DB, record *QuotaRecord) error
	Save(ctx context.Context, db *gorm.DB, record *QuotaRecord) error
	UpdateCounter(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, column string, value int64, updatedAt time.Time) error
	ResetPeriodicCounters(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, resetDate time.Time, updatedAt time.Time) error
	UpdateStatus(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, status RecordStatus, updatedAt time.Time) error
	TouchLastActivity(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, at time.Time) error
	ListResetDue(ctx context.Context, db *gorm.DB, before time.Time, limit int) ([]QuotaRecord, error)
}
