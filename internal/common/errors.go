// Package common defines shared constants, sentinel errors and the tagged
// error outcome used across the aureum services. Callers should use
// errors.Is to match sentinels and KindOf to classify arbitrary errors.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("conflict")

	// Service-level errors.
	ErrorValidation          = errors.New("validation error")
	ErrorInternal            = errors.New("internal error")
	ErrorUnauthorized        = errors.New("unauthorized")
	ErrorForbidden           = errors.New("forbidden")
	ErrorUpstreamUnavailable = errors.New("upstream unavailable")

	// Token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
