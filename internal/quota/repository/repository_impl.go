package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/paperflow/internal/quota/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByTenantID(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) (*domain.QuotaRecord, error) {
	return r.find(ctx, db, tenantID, false)
}

func (r *repo) FindByTenantIDForUpdate(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) (*domain.QuotaRecord, error) {
	return r.find(ctx, db, tenantID, true)
}

func (r *repo) find(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, forUpdate bool) (*domain.QuotaRecord, error) {
	stmt := db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if forUpdate {
		stmt = stmt.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var record domain.QuotaRecord
	err := stmt.First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, record *domain.QuotaRecord) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}},
			UpdateAll: true,
		}).
		Create(record).Error
}

func (r *repo) Save(ctx context.Context, db *gorm.DB, record *domain.QuotaRecord) error {
	return db.WithContext(ctx).Save(record).Error
}

func (r *repo) UpdateCounter(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, column string, value int64, updatedAt time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.QuotaRecord{}).
		Where("tenant_id = ?", tenantID).
		Updates(map[string]any{
			column:       value,
			"updated_at": updatedAt,
		}).Error
}

func (r *repo) ResetPeriodicCounters(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, resetDate time.Time, updatedAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE quota_records
		 SET current_documents = 0, current_pdf_exports = 0, document_reset_date = ?, updated_at = ?
		 WHERE tenant_id = ?`,
		resetDate,
		updatedAt,
		tenantID,
	).Error
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, status domain.RecordStatus, updatedAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE quota_records SET status = ?, updated_at = ? WHERE tenant_id = ?`,
		status,
		updatedAt,
		tenantID,
	).Error
}

func (r *repo) TouchLastActivity(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, at time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE quota_records SET last_activity_at = ? WHERE tenant_id = ?`,
		at,
		tenantID,
	).Error
}

func (r *repo) ListResetDue(ctx context.Context, db *gorm.DB, before time.Time, limit int) ([]domain.QuotaRecord, error) {
	var items []domain.QuotaRecord
	stmt := db.WithContext(ctx).
		Where("document_reset_date <= ?", before).
		Order("document_reset_date ASC")
	if limit > 0 {
		stmt = stmt.Limit(limit)
	}
	err := stmt.Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
