package repository

import (
	"context"
	"errors"

	"github.com/smallbiznis/paperflow/internal/plancatalog/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByPlanID(ctx context.Context, db *gorm.DB, planID string) (*domain.PlanTemplate, error) {
	var tpl domain.PlanTemplate
	err := db.WithContext(ctx).Where("plan_id = ?", planID).First(&tpl).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tpl, nil
}

func (r *repo) ListActive(ctx context.Context, db *gorm.DB) ([]domain.PlanTemplate, error) {
	var items []domain.PlanTemplate
	err := db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("display_order ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, template *domain.PlanTemplate) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "plan_id"}},
			DoNothing: true,
		}).
		Create(template).Error
}

func (r *repo) Save(ctx context.Context, db *gorm.DB, template *domain.PlanTemplate) error {
	return db.WithContext(ctx).Save(template).Error
}
