// Package common contains shared constants and sentinel errors used across
// the talentmatch client and server.
package common

// AccessTokenHeaderName is the gRPC metadata key carrying the access token
// on outbound requests.
const AccessTokenHeaderName = "access_token"

// CodeLength is the number of digits in an email verification code.
const CodeLength = 6
