// Package config loads runtime configuration for the talentmatch CLI.
//
// Sources are applied in order, later ones winning:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. TM_* environment variables.
//  4. Command-line flags.
//
// Supported flags
//
//	-a string   address:port of the identity service
//	-i int      online status check interval (seconds)
//	-p string   path of the local session cache
//	-l string   log level
//
// # JSON schema
//
// Intervals accept strings like "3s" or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "online_check_interval": "3s",
//	  "request_timeout": "10s",
//	  "cache_path": "~/.talentmatch/session.db"
//	}
package config
