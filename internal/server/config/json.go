package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/talentmatch/internal/flagx"
	"github.com/dmitrijs2005/talentmatch/internal/timex"
)

// JsonConfig is the on-disk shape of the server config file. Durations
// accept "10m" style strings or integer nanoseconds.
type JsonConfig struct {
	EndpointAddrGRPC             string         `json:"endpoint_addr_grpc"`
	MetricsAddr                  string         `json:"metrics_addr"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	VerificationCodeTTL          timex.Duration `json:"verification_code_ttl"`
	ResendCooldown               timex.Duration `json:"resend_cooldown"`
	ProvisioningGrace            timex.Duration `json:"provisioning_grace"`
	RedisAddr                    string         `json:"redis_addr"`
	MailProvider                 string         `json:"mail_provider"`
	MailFrom                     string         `json:"mail_from"`
	AWSRegion                    string         `json:"aws_region"`
	AWSAccessKeyID               string         `json:"aws_access_key_id"`
	AWSSecretAccessKey           string         `json:"aws_secret_access_key"`
	AWSEndpoint                  string         `json:"aws_endpoint"`
	LogLevel                     string         `json:"log_level"`
	LogFormat                    string         `json:"log_format"`
}

// parseJson loads the file named by -c/-config, if any, and copies every
// field it sets into config. Fields absent from the file keep their current
// value. Unreadable or malformed files panic.
func parseJson(config *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.MetricsAddr, c.MetricsAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	setDuration(&config.RefreshTokenValidityDuration, c.RefreshTokenValidityDuration)
	setDuration(&config.VerificationCodeTTL, c.VerificationCodeTTL)
	setDuration(&config.ResendCooldown, c.ResendCooldown)
	setDuration(&config.ProvisioningGrace, c.ProvisioningGrace)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.MailProvider, c.MailProvider)
	setString(&config.MailFrom, c.MailFrom)
	setString(&config.AWSRegion, c.AWSRegion)
	setString(&config.AWSAccessKeyID, c.AWSAccessKeyID)
	setString(&config.AWSSecretAccessKey, c.AWSSecretAccessKey)
	setString(&config.AWSEndpoint, c.AWSEndpoint)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
