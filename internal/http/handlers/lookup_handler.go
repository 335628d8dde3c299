package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-api-base/internal/domain"
	"github.com/tbourn/go-api-base/internal/expect"
)

// LookupResults holds whichever entities a lookup resolved; absent ones are
// null.
type LookupResults struct {
	User    *UserView    `json:"user"`
	Project *ProjectView `json:"project"`
}

// LookupEnvelope documents the lookup response shape for OpenAPI.
type LookupEnvelope struct {
	Results LookupResults `json:"results"`
}

// Lookup godoc
// @ID          lookup
// @Summary     Resolve a user and/or a project
// @Description Resolves the given external ids. At least one must match.
// @Tags        Lookup
// @Produce     json
//
// @Param       user     query  string  false  "User external id"     example(9f2c4e1a0b7d3c58)
// @Param       project  query  string  false  "Project external id"  example(4b1e0c9d2a7f6e35)
//
// @Success     200  {object}  handlers.LookupEnvelope
// @Failure     404  {object}  handlers.ErrorEnvelope  "Missing: user or project"
// @Router      /lookup [get]
func (h *Handlers) Lookup(c *gin.Context) error {
	params, err := requestParams(c)
	if err != nil {
		return err
	}
	res, err := expect.Expect(c.Request.Context(), h.reg, expect.Any, expect.Types("user", "project"), params, c)
	if err != nil {
		return err
	}

	var out LookupResults
	if u, ok := res["user"].(*domain.User); ok {
		v := NewUserView(u)
		out.User = &v
	}
	if p, ok := res["project"].(*domain.Project); ok {
		v := NewProjectView(p)
		out.Project = &v
	}
	return h.render.Render(c, Payload{JSON: out})
}
