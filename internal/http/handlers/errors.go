// Package handlers defines the HTTP-layer error shapes used across all API
// endpoints.
//
// Every failure is rendered in the same envelope: a list of error entries,
// each with a human-readable message and, when the failure concerns a single
// input, the field it refers to. Unclassified failures can additionally carry
// a debug block in verbose mode; it never appears inside "errors".
//
// Example response:
//
//	HTTP/1.1 400 Bad Request
//	{
//	  "errors": [
//	    {"message": "is invalid", "field": "email"},
//	    {"message": "is not a valid timezone", "field": "timezone"}
//	  ]
//	}
package handlers

import "errors"

// ErrDoubleRender is raised (as a panic) when a handler renders twice in the
// same request.
var ErrDoubleRender = errors.New("handlers: response already rendered")

// ErrorEntry is one item of the "errors" list.
type ErrorEntry struct {
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"Missing: user"`
	// Input the message refers to, when there is one
	Field string `json:"field,omitempty" example:"email"`
}

// Debug is the diagnostic block attached to unclassified failures in verbose
// mode.
type Debug struct {
	Message       string   `json:"message"`
	File          string   `json:"file"`
	Line          int      `json:"line"`
	ExceptionType string   `json:"exception_type"`
	Trace         []string `json:"trace"`
}

// ErrorEnvelope documents the error response shape for OpenAPI.
type ErrorEnvelope struct {
	Errors []ErrorEntry `json:"errors"`
	Debug  *Debug       `json:"debug,omitempty"`
}

// Failure kinds reported to metrics, one per dispatcher branch.
const (
	kindValidation = "validation"
	kindNotFound   = "not_found"
	kindForbidden  = "forbidden"
	kindApp        = "app"
	kindInternal   = "internal"
)
