// Package services defines the business logic for users and projects.
// This file centralizes the application errors returned by service methods
// for predictable failure cases. They are apperr values, so the HTTP layer
// translates them to status codes without per-handler mapping.
package services

import "github.com/tbourn/go-api-base/internal/apperr"

var (
	// ErrUnauthenticated is returned when an operation requires a caller
	// identity and none was established.
	ErrUnauthenticated = apperr.Authentication("Authentication required")

	// ErrNoAccess is returned when the caller may not act on the target.
	ErrNoAccess = apperr.Authorization("No access")
)
