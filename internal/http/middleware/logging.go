// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file holds the request plumbing the other middleware builds on:
// correlation ids (RequestID), panic recovery (Recovery) and access to the
// request-scoped logger (LoggerFrom) attached by RedactingLogger.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Gin context keys and headers shared across this package.
const (
	requestIDKey    = "requestID"
	userIDKey       = "userID" // caller eid, set by Authenticate
	loggerKey       = "logger"
	requestIDHeader = "X-Request-ID"

	// maxQueryLogLength caps the logged raw query, in bytes.
	maxQueryLogLength = 2048
)

// RequestID reuses an incoming X-Request-ID or mints a UUIDv4, then echoes it
// on the response and stores it under the "requestID" context key.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}

// PanicHandler renders a recovered panic. err carries the stack captured at
// the point of recovery.
type PanicHandler func(c *gin.Context, err error)

// Recovery turns a panic into an error and hands it to onPanic. Error values
// keep their identity (errors.As still matches); anything else becomes
// "panic: <value>".
//
// Once the response has been written the request is only aborted, so the
// first body stays intact. A nil onPanic writes a bare 500 envelope.
func Recovery(onPanic PanicHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			err := panicError(rec)
			LoggerFrom(c).Warn().Err(err).Bool("written", c.Writer.Written()).Msg("panic recovered")

			switch {
			case c.Writer.Written():
				c.Abort()
			case onPanic != nil:
				onPanic(c, err)
				c.Abort()
			default:
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"errors": []gin.H{{"message": http.StatusText(http.StatusInternalServerError)}},
				})
			}
		}()
		c.Next()
	}
}

func panicError(rec any) error {
	if e, ok := rec.(error); ok {
		return errors.WithStack(e)
	}
	return errors.Errorf("panic: %v", rec)
}

// LoggerFrom returns the request-scoped logger, or a copy of the global one
// when none is attached. The result is never nil.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if lg, ok := c.Value(loggerKey).(*zerolog.Logger); ok {
		return lg
	}
	l := log.With().Logger()
	return &l
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// truncate cuts s to max bytes plus an ellipsis; max <= 0 disables it.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
