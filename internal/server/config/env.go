package config

import (
	"context"

	"github.com/sethvargo/go-envconfig"
)

// parseEnv overlays TM_* variables onto config. A nil lookuper reads the
// process environment.
func parseEnv(ctx context.Context, config *Config, l envconfig.Lookuper) error {
	if l == nil {
		l = envconfig.OsLookuper()
	}
	return envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   config,
		Lookuper: l,
	})
}
