package config

import (
	"context"
	"time"
)

// Config holds runtime settings for the talentmatch CLI.
type Config struct {
	ServerEndpointAddr  string        `env:"TM_SERVER_ADDR, overwrite"`
	OnlineCheckInterval time.Duration `env:"TM_ONLINE_CHECK_INTERVAL, overwrite"`
	RequestTimeout      time.Duration `env:"TM_REQUEST_TIMEOUT, overwrite"`
	CachePath           string        `env:"TM_CACHE_PATH, overwrite"`
	LogLevel            string        `env:"TM_LOG_LEVEL, overwrite"`
	LogFormat           string        `env:"TM_LOG_FORMAT, overwrite"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.OnlineCheckInterval = 3 * time.Second
	c.RequestTimeout = 10 * time.Second
	c.CachePath = "talentmatch.db"
	c.LogLevel = "warn"
	c.LogFormat = "console"
}

// LoadConfig constructs a Config from defaults, the JSON file, the
// environment and flags. It panics on malformed input.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	if err := parseEnv(context.Background(), cfg, nil); err != nil {
		panic(err)
	}
	parseFlags(cfg)
	return cfg
}
