package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrNotFound indicates the requested resource does not exist
	ErrNotFound = errors.New("resource not found")

	// ErrServerOffline indicates the API is unreachable
	ErrServerOffline = errors.New("server is unreachable")

	// ErrAuthFailed indicates the client id was rejected
	ErrAuthFailed = errors.New("client id is invalid")

	// ErrRateLimited indicates the API asked us to back off
	ErrRateLimited = errors.New("rate limit exceeded")
)
