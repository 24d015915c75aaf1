// Package common contains header names and sentinel errors shared by the API
// client and the development backend.
package common

const (
	// RequestIDHeader carries the per-request correlation id.
	RequestIDHeader = "X-Request-ID"

	AuthorizationHeader = "Authorization"
	BearerPrefix        = "Bearer "
)
