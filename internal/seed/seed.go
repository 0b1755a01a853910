// Package seed prepares the schema and baseline data at startup.
package seed

import (
	"context"
	"errors"

	plancatalogdomain "github.com/smallbiznis/paperflow/internal/plancatalog/domain"
	quotadomain "github.com/smallbiznis/paperflow/internal/quota/domain"
	tenantdomain "github.com/smallbiznis/paperflow/internal/tenant/domain"
	"gorm.io/gorm"
)

// Migrate creates or updates the tables the engine owns.
func Migrate(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	return db.AutoMigrate(
		&tenantdomain.Tenant{},
		&plancatalogdomain.PlanTemplate{},
		&quotadomain.QuotaRecord{},
	)
}

// Bootstrap runs schema migration and persists the built-in plan catalog.
// Invoked once from fx startup so ordinary reads stay side-effect free.
func Bootstrap(ctx context.Context, db *gorm.DB, catalog plancatalogdomain.Service) error {
	if err := Migrate(db); err != nil {
		return err
	}
	return catalog.Bootstrap(ctx)
}
