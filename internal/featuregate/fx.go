package featuregate

import (
	"github.com/smallbiznis/paperflow/internal/featuregate/service"
	"go.uber.org/fx"
)

var Module = fx.Module("featuregate.service",
	fx.Provide(service.NewService),
)
