package config

import (
	"context"

	"github.com/sethvargo/go-envconfig"
)

func parseEnv(ctx context.Context, cfg *Config, l envconfig.Lookuper) error {
	if l == nil {
		l = envconfig.OsLookuper()
	}
	return envconfig.ProcessWith(ctx, &envconfig.Config{Target: cfg, Lookuper: l})
}
