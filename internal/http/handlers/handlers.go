// API HTTP handlers.
//
// Endpoints are transport-thin: they resolve referenced entities through the
// expectation checker, call application services and render the result.
// They never format error responses themselves; every returned error goes to
// the Dispatcher.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/tbourn/go-api-base/internal/apperr"
	"github.com/tbourn/go-api-base/internal/domain"
	"github.com/tbourn/go-api-base/internal/expect"
	"github.com/tbourn/go-api-base/internal/http/middleware"
	"github.com/tbourn/go-api-base/internal/services"
)

//
// Service contracts (context-aware)
//

// UserService defines user lifecycle operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type UserService interface {
	// Create validates and inserts a new user.
	Create(ctx context.Context, in services.UserInput) (*domain.User, error)
	// Update applies in to target on behalf of actor.
	Update(ctx context.Context, actor, target *domain.User, in services.UserInput) (*domain.User, error)
}

// ProjectService defines project operations consumed by HTTP handlers.
type ProjectService interface {
	// Create inserts a project owned by owner.
	Create(ctx context.Context, owner *domain.User, name string) (*domain.Project, error)
	// ListPage returns a page of owner's projects and the total count.
	ListPage(ctx context.Context, owner *domain.User, page, pageSize int) ([]domain.Project, int64, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for users, projects and lookups.
type Handlers struct {
	users    UserService
	projects ProjectService
	reg      *expect.Registry
	render   *Renderer
}

// New constructs a Handlers instance bound to the given services, entity
// registry and renderer.
func New(users UserService, projects ProjectService, reg *expect.Registry, render *Renderer) *Handlers {
	return &Handlers{users: users, projects: projects, reg: reg, render: render}
}

// errMalformedBody is returned when the request body cannot be decoded.
var errMalformedBody = apperr.App("malformed request body", "")

// expectAll resolves spec from the request and binds the results onto c;
// every entry must resolve.
func (h *Handlers) expectAll(c *gin.Context, spec expect.Spec) error {
	params, err := requestParams(c)
	if err != nil {
		return err
	}
	_, err = expect.Expect(c.Request.Context(), h.reg, expect.All, spec, params, c)
	return err
}

// requestParams merges body, query string and path parameters into one
// lookup; later sources win (path over query over body). The body counts
// when it is a form or a JSON object, whose top-level string and number
// fields are taken. A JSON body is restored afterwards so bindBody can still
// decode it. An unreadable form or body is errMalformedBody.
func requestParams(c *gin.Context) (expect.Values, error) {
	out := expect.Values{}
	if c.Request != nil {
		if err := c.Request.ParseForm(); err != nil {
			return nil, errMalformedBody
		}
		for k, vs := range c.Request.PostForm {
			if len(vs) > 0 {
				out[k] = vs[0]
			}
		}
		if c.ContentType() == binding.MIMEJSON {
			if err := mergeJSONParams(c.Request, out); err != nil {
				return nil, err
			}
		}
		for k, vs := range c.Request.URL.Query() {
			if len(vs) > 0 {
				out[k] = vs[0]
			}
		}
	}
	for _, p := range c.Params {
		out[p.Key] = p.Value
	}
	return out, nil
}

func mergeJSONParams(req *http.Request, out expect.Values) error {
	if req.Body == nil || req.Body == http.NoBody {
		return nil
	}
	raw, err := io.ReadAll(req.Body)
	if err != nil {
		return errMalformedBody
	}
	req.Body = io.NopCloser(bytes.NewReader(raw))
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	var fields map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		// Not an object; bindBody reports malformed payloads.
		return nil
	}
	for k, v := range fields {
		switch v := v.(type) {
		case string:
			out[k] = v
		case json.Number:
			out[k] = v.String()
		}
	}
	return nil
}

// bindBody decodes the request body into dst by content type. An empty body
// leaves dst untouched.
func bindBody(c *gin.Context, dst any) error {
	if err := c.ShouldBind(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errMalformedBody
	}
	return nil
}

// currentUser returns the authenticated caller, or nil.
func currentUser(c *gin.Context) *domain.User {
	return middleware.CurrentUser(c)
}
