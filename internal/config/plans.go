package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// PlanOverride is a partial override of a built-in plan template, loaded from
// an operator-managed plans.yml. Only pricing and availability are tunable per
// deployment; limits and features stay code-defined.
type PlanOverride struct {
	MonthlyPrice *int64  `mapstructure:"monthlyPrice"`
	YearlyPrice  *int64  `mapstructure:"yearlyPrice"`
	Currency     *string `mapstructure:"currency"`
	IsActive     *bool   `mapstructure:"isActive"`
}

// PlanOverrides maps plan identifiers to their deployment overrides.
type PlanOverrides map[string]PlanOverride

// PlanOverridesHolder serves the current override set and hot-reloads it when
// the backing file changes.
type PlanOverridesHolder struct {
	current atomic.Value // holds PlanOverrides
}

// NewPlanOverridesHolder reads plans.yml from the well-known config paths.
// A missing file is not an error; the built-in catalog stands alone.
func NewPlanOverridesHolder() (*PlanOverridesHolder, error) {
	v := viper.New()

	v.SetConfigName("plans")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/paperflow/config") // Volume-mounted config
	v.AddConfigPath("/etc/paperflow")            // System config
	v.AddConfigPath(".")                         // Current directory (dev mode)

	v.SetEnvPrefix("PAPERFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	holder := &PlanOverridesHolder{}
	holder.current.Store(PlanOverrides{})

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		return holder, nil
	}

	if err := holder.reload(v); err != nil {
		return nil, err
	}

	v.OnConfigChange(func(_ fsnotify.Event) {
		if err := holder.reload(v); err != nil {
			log.Printf("plans config reload failed: %v", err)
		}
	})
	v.WatchConfig()

	return holder, nil
}

// Current returns the override set in effect.
func (h *PlanOverridesHolder) Current() PlanOverrides {
	if v, ok := h.current.Load().(PlanOverrides); ok {
		return v
	}
	return PlanOverrides{}
}

func (h *PlanOverridesHolder) reload(v *viper.Viper) error {
	var overrides PlanOverrides
	if err := v.UnmarshalKey("plans", &overrides); err != nil {
		return err
	}
	if overrides == nil {
		overrides = PlanOverrides{}
	}
	h.current.Store(overrides)
	return nil
}
