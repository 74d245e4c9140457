package auth

import "errors"

var (
	// ErrConfigMissing: required static credentials or stored token absent
	ErrConfigMissing = errors.New("auth configuration missing")

	// ErrAuthenticationFailed: refresh failed on an already-expired token,
	// or the provider rejected the credentials
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrInvalidState: callback state nonce unknown, expired or reused
	ErrInvalidState = errors.New("invalid authorization state")
)
