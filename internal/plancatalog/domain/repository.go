package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	FindByPlanID(ctx context.Context, db *gorm.DB, planID string) (*PlanTemplate, error)
	ListActive(ctx context.Context, db *gorm.DB) ([]PlanTemplate, error)
	Insert(ctx context.Context, db *gorm.DB, template *PlanTemplate) error
	Save(ctx context.Context, db *gorm.DB, template *PlanTemplate) error
}
