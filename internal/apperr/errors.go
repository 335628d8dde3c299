// Package apperr defines the typed application errors raised by handlers and
// services. It is a leaf package with no internal imports so any layer can
// return these errors without creating import cycles.
//
// The taxonomy is a tagged variant rather than a type hierarchy:
//
//   - *Error carries a Kind (App, NotFound, Authentication, Authorization),
//     a human-readable Message and an optional Field.
//   - *ValidationError carries an ordered list of per-field messages.
//
// Anything else is treated as an internal error by the HTTP layer.
//
// errors.Is understands the conceptual nesting of kinds, so
// errors.Is(apperr.Authorization("x"), apperr.ErrAuthentication) and
// errors.Is(apperr.NotFound("x"), apperr.ErrApp) both hold.
package apperr

import (
	"errors"
	"strings"
)

// Kind tags the variant of an *Error.
type Kind int

const (
	// KindApp is a generic domain failure, optionally tied to a field.
	KindApp Kind = iota
	// KindNotFound means a requested entity is missing.
	KindNotFound
	// KindAuthentication means the caller's identity is not established.
	KindAuthentication
	// KindAuthorization means the identity is known but the action is denied.
	KindAuthorization
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	default:
		return "app"
	}
}

// parent returns the next less specific kind. KindApp is the root.
func (k Kind) parent() (Kind, bool) {
	switch k {
	case KindNotFound, KindAuthentication:
		return KindApp, true
	case KindAuthorization:
		return KindAuthentication, true
	default:
		return KindApp, false
	}
}

// Error is an application error with a message and optional field name.
type Error struct {
	Kind    Kind
	Message string
	Field   string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}

// Is reports whether target is a sentinel of the same kind or of any less
// specific kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*sentinel)
	if !ok {
		return false
	}
	for k := e.Kind; ; {
		if k == t.kind {
			return true
		}
		p, ok := k.parent()
		if !ok {
			return false
		}
		k = p
	}
}

// sentinel is an errors.Is target for a Kind.
type sentinel struct{ kind Kind }

func (s *sentinel) Error() string { return s.kind.String() }

// Sentinels usable with errors.Is. They are never returned directly.
var (
	ErrApp            error = &sentinel{KindApp}
	ErrNotFound       error = &sentinel{KindNotFound}
	ErrAuthentication error = &sentinel{KindAuthentication}
	ErrAuthorization  error = &sentinel{KindAuthorization}
)

// App returns a generic application error. field may be empty.
func App(message, field string) *Error {
	return &Error{Kind: KindApp, Message: message, Field: field}
}

// NotFound returns an error for a missing entity.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Authentication returns an error for an unestablished identity.
func Authentication(message string) *Error {
	return &Error{Kind: KindAuthentication, Message: message}
}

// Authorization returns an error for a denied action.
func Authorization(message string) *Error {
	return &Error{Kind: KindAuthorization, Message: message}
}

// As extracts the *Error from err's chain, if any.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// FieldMessages holds every validation message for one field.
type FieldMessages struct {
	Field    string
	Messages []string
}

// ValidationError reports invalid attributes of a record. Fields keep the
// order in which they were added, which callers make match the declaration
// order of the validated struct.
type ValidationError struct {
	Fields []FieldMessages
}

// Add appends message to field, creating the field entry on first use.
func (v *ValidationError) Add(field, message string) {
	for i := range v.Fields {
		if v.Fields[i].Field == field {
			v.Fields[i].Messages = append(v.Fields[i].Messages, message)
			return
		}
	}
	v.Fields = append(v.Fields, FieldMessages{Field: field, Messages: []string{message}})
}

// Empty reports whether no messages were recorded.
func (v *ValidationError) Empty() bool { return v == nil || len(v.Fields) == 0 }

// OrNil returns v as an error, or nil when nothing was recorded.
func (v *ValidationError) OrNil() error {
	if v.Empty() {
		return nil
	}
	return v
}

// Error joins every field message into a single line.
func (v *ValidationError) Error() string {
	parts := make([]string, 0, len(v.Fields))
	for _, f := range v.Fields {
		for _, m := range f.Messages {
			parts = append(parts, f.Field+" "+m)
		}
	}
	return "validation failed: " + strings.Join(parts, ", ")
}
