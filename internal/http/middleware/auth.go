// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements Authenticate, a header-based authenticator that
// resolves the caller from the X-User-ID header (the user's external id) and
// stores the result in the Gin context:
//
//   - "currentUser": the resolved *domain.User (absent when anonymous)
//   - "userID":      the user's eid, picked up by the loggers and rate limiter
//
// Anonymous requests are not rejected here. Services decide whether an
// operation needs a caller and fail with an authentication error otherwise.
package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-api-base/internal/domain"
)

const (
	// HeaderUserID carries the caller's external id.
	HeaderUserID = "X-User-ID"
	// CurrentUserKey is the Gin context key holding the resolved *domain.User.
	CurrentUserKey = "currentUser"
)

// UserFinder resolves a user by eid. It returns (nil, nil) when no user
// matches.
type UserFinder func(ctx context.Context, eid string) (*domain.User, error)

// Authenticate resolves the caller from X-User-ID using find.
//
// An unknown eid leaves the request anonymous. A store failure is handed to
// fail (typically the error dispatcher) and the chain stops.
func Authenticate(find UserFinder, fail func(*gin.Context, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		eid := strings.TrimSpace(c.GetHeader(HeaderUserID))
		if eid == "" {
			c.Next()
			return
		}
		u, err := find(c.Request.Context(), eid)
		if err != nil {
			fail(c, err)
			c.Abort()
			return
		}
		if u != nil {
			c.Set(CurrentUserKey, u)
			c.Set(userIDKey, u.EID)
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user, or nil for anonymous requests.
func CurrentUser(c *gin.Context) *domain.User {
	if v, ok := c.Get(CurrentUserKey); ok {
		if u, ok := v.(*domain.User); ok {
			return u
		}
	}
	return nil
}
