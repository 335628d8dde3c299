package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// renderedKey marks a request whose response body has been produced.
const renderedKey = "handlers.rendered"

// Payload describes one response.
//
// Exactly one of the envelope keys is emitted: "errors" when Errors is
// non-nil (an empty slice still renders as an error envelope), "results"
// otherwise. Results come from JSON, or from the named View fed with Data.
type Payload struct {
	JSON   any
	View   string
	Data   any
	Errors []ErrorEntry
	Status int // defaults to 200
	Debug  *Debug
}

// ViewRenderer turns a named view and its data into a response value.
type ViewRenderer interface {
	RenderView(c *gin.Context, name string, data any) (any, error)
}

// Renderer writes Payloads as JSON envelopes, at most once per request.
type Renderer struct {
	Views ViewRenderer
}

// NewRenderer returns a Renderer resolving named views through views.
func NewRenderer(views ViewRenderer) *Renderer {
	return &Renderer{Views: views}
}

// Render writes p to c.
//
// It panics with ErrDoubleRender when the request already has a response.
// A failing view returns an error before anything is written, so the caller
// can still dispatch it.
func (r *Renderer) Render(c *gin.Context, p Payload) error {
	if Rendered(c) {
		panic(fmt.Errorf("%w: %s %s", ErrDoubleRender, c.Request.Method, c.Request.URL.Path))
	}

	body := gin.H{}
	if p.Errors != nil {
		body["errors"] = p.Errors
	} else {
		results := p.JSON
		if p.View != "" {
			if r.Views == nil {
				return fmt.Errorf("render view %q: no view renderer configured", p.View)
			}
			v, err := r.Views.RenderView(c, p.View, p.Data)
			if err != nil {
				return fmt.Errorf("render view %q: %w", p.View, err)
			}
			results = v
		}
		body["results"] = results
	}
	if p.Debug != nil {
		body["debug"] = p.Debug
	}

	status := p.Status
	if status == 0 {
		status = http.StatusOK
	}
	c.JSON(status, body)
	c.Set(renderedKey, true)
	return nil
}

// Fail renders a single-message error envelope with status and aborts the
// chain. It is used by the router fallbacks.
func (r *Renderer) Fail(c *gin.Context, status int, msg string) {
	_ = r.Render(c, Payload{Status: status, Errors: []ErrorEntry{{Message: msg}}})
	c.Abort()
}

// Rendered reports whether c already carries a response.
func Rendered(c *gin.Context) bool {
	return c.GetBool(renderedKey) || c.Writer.Written()
}
