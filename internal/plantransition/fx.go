package plantransition

import (
	"github.com/smallbiznis/paperflow/internal/plantransition/service"
	"go.uber.org/fx"
)

var Module = fx.Module("plantransition.service",
	fx.Provide(service.NewService),
)
