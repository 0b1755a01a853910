package plancatalog

import (
	"github.com/smallbiznis/paperflow/internal/plancatalog/repository"
	"github.com/smallbiznis/paperflow/internal/plancatalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("plancatalog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
