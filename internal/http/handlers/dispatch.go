package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/tbourn/go-api-base/internal/apperr"
	"github.com/tbourn/go-api-base/internal/http/middleware"
	"github.com/tbourn/go-api-base/internal/observability"
)

// internalMessage is the only text clients see for unclassified failures.
const internalMessage = "Internal Server Error"

// HandlerFunc is an endpoint that reports failures by returning them.
type HandlerFunc func(c *gin.Context) error

// Dispatcher translates errors into HTTP responses. It is the single place
// where failures become status codes and error envelopes.
//
// Mapping, most specific first:
//
//	*apperr.ValidationError       400, one entry per (field, message)
//	gorm.ErrRecordNotFound        404
//	apperr NotFound               404
//	apperr Authentication/Authz   403
//	apperr App                    400, with field
//	anything else                 500 "Internal Server Error"
//
// When Verbose is set, 500 responses also carry a debug block with the
// error message, origin, type and stack.
type Dispatcher struct {
	Verbose  bool
	Renderer *Renderer
}

// NewDispatcher returns a Dispatcher that writes through r.
func NewDispatcher(r *Renderer, verbose bool) *Dispatcher {
	return &Dispatcher{Verbose: verbose, Renderer: r}
}

// Wrap adapts h to a gin.HandlerFunc; a returned error is dispatched.
func (d *Dispatcher) Wrap(h HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h(c); err != nil {
			d.Handle(c, err)
		}
	}
}

// Recover returns the panic-recovery middleware, rendering panics as 500s.
func (d *Dispatcher) Recover() gin.HandlerFunc {
	return middleware.Recovery(d.Handle)
}

// Handle renders err and aborts the chain. A nil err is ignored.
func (d *Dispatcher) Handle(c *gin.Context, err error) {
	if err == nil {
		return
	}
	p, kind := d.payloadFor(err)
	middleware.ObserveError(kind)
	observability.RecordError(c.Request.Context(), err, kind, p.Status >= http.StatusInternalServerError)

	if p.Status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Stack().
			Err(err).
			Int("status", p.Status).
			Msg("api error")
	}

	_ = d.Renderer.Render(c, p)
	c.Abort()
}

func (d *Dispatcher) payloadFor(err error) (Payload, string) {
	var (
		ve *apperr.ValidationError
		ae *apperr.Error
	)
	switch {
	case errors.As(err, &ve):
		return Payload{Status: http.StatusBadRequest, Errors: validationEntries(ve)}, kindValidation
	case errors.Is(err, gorm.ErrRecordNotFound):
		return Payload{Status: http.StatusNotFound, Errors: []ErrorEntry{{Message: err.Error()}}}, kindNotFound
	case errors.As(err, &ae):
		switch ae.Kind {
		case apperr.KindNotFound:
			return Payload{Status: http.StatusNotFound, Errors: []ErrorEntry{{Message: ae.Message}}}, kindNotFound
		case apperr.KindAuthentication, apperr.KindAuthorization:
			return Payload{Status: http.StatusForbidden, Errors: []ErrorEntry{{Message: ae.Message}}}, kindForbidden
		default:
			return Payload{Status: http.StatusBadRequest, Errors: []ErrorEntry{{Message: ae.Message, Field: ae.Field}}}, kindApp
		}
	}

	p := Payload{Status: http.StatusInternalServerError, Errors: []ErrorEntry{{Message: internalMessage}}}
	if d.Verbose {
		p.Debug = debugFor(err)
	}
	return p, kindInternal
}

// validationEntries flattens field messages; a field with N messages yields
// N entries.
func validationEntries(ve *apperr.ValidationError) []ErrorEntry {
	out := make([]ErrorEntry, 0, len(ve.Fields))
	for _, f := range ve.Fields {
		for _, m := range f.Messages {
			out = append(out, ErrorEntry{Message: m, Field: f.Field})
		}
	}
	return out
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// debugFor builds the verbose diagnostic block. The stack comes from the
// deepest error in the chain that recorded one.
func debugFor(err error) *Debug {
	dbg := &Debug{
		Message:       err.Error(),
		File:          "Unknown",
		ExceptionType: fmt.Sprintf("%T", rootCause(err)),
		Trace:         []string{},
	}

	var st errors.StackTrace
	for e := err; e != nil; e = errors.Unwrap(e) {
		if t, ok := e.(stackTracer); ok {
			st = t.StackTrace()
		}
	}
	st = skipPanicFrames(st)
	if len(st) == 0 {
		return dbg
	}

	dbg.File = frameFile(st[0])
	dbg.Line = frameLine(st[0])
	for _, f := range st {
		dbg.Trace = append(dbg.Trace, fmt.Sprintf("%s:%d:in %n", frameFile(f), frameLine(f), f))
	}
	return dbg
}

// rootCause returns the innermost error of the chain.
func rootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

// skipPanicFrames drops the recovery machinery from a stack captured inside a
// deferred recover, so the trace starts at the panicking function.
func skipPanicFrames(st errors.StackTrace) errors.StackTrace {
	for i, f := range st {
		if frameFunc(f) == "runtime.gopanic" {
			return st[i+1:]
		}
	}
	return st
}

// frameFunc returns the fully qualified function name of f.
func frameFunc(f errors.Frame) string {
	s := fmt.Sprintf("%+s", f)
	if i := strings.Index(s, "\n\t"); i >= 0 {
		return s[:i]
	}
	return s
}

// frameFile returns the full source path of f.
func frameFile(f errors.Frame) string {
	s := fmt.Sprintf("%+s", f)
	if i := strings.Index(s, "\n\t"); i >= 0 {
		return s[i+2:]
	}
	return s
}

func frameLine(f errors.Frame) int {
	n, _ := strconv.Atoi(fmt.Sprintf("%d", f))
	return n
}
