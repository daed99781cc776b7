// Package client is the CLI's side of the identity service.
//
// GRPCClient dials the service, attaches the access token to every call and,
// when the server answers token_expired, refreshes the pair once and retries.
// Status messages are decoded back into the shared sentinels from
// internal/common, so callers match with errors.Is exactly as on the server.
//
// InitDatabase and RunMigrations bootstrap the local SQLite session cache.
package client
