// Project HTTP handlers.
//
// This file exposes REST endpoints for project resources:
//   - POST   /projects              (create, owned by the caller)
//   - GET    /projects?user={eid}   (list a user's projects, paginated)
//   - GET    /projects/{project}    (show)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-api-base/internal/domain"
	"github.com/tbourn/go-api-base/internal/expect"
	"github.com/tbourn/go-api-base/internal/utils"
)

// CreateProjectRequest is the payload for creating a project.
type CreateProjectRequest struct {
	// Name is the project name (1–255 chars).
	Name string `json:"name" form:"name" example:"Apollo"`
}

// ProjectEnvelope documents the single-project response shape for OpenAPI.
type ProjectEnvelope struct {
	Results ProjectView `json:"results"`
}

// ProjectListEnvelope documents the project list response shape for OpenAPI.
type ProjectListEnvelope struct {
	Results ProjectList `json:"results"`
}

// CreateProject godoc
// @ID          createProject
// @Summary     Create a project
// @Description Creates a project owned by the calling user.
// @Tags        Projects
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string                         true  "Caller external id"  example(9f2c4e1a0b7d3c58)
// @Param       body       body    handlers.CreateProjectRequest  true  "Project attributes"
//
// @Success     201  {object}  handlers.ProjectEnvelope
// @Failure     400  {object}  handlers.ErrorEnvelope  "Validation failed"
// @Failure     403  {object}  handlers.ErrorEnvelope  "Authentication required"
// @Router      /projects [post]
func (h *Handlers) CreateProject(c *gin.Context) error {
	var req CreateProjectRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	p, err := h.projects.Create(c.Request.Context(), currentUser(c), req.Name)
	if err != nil {
		return err
	}
	return h.render.Render(c, Payload{Status: http.StatusCreated, View: "projects/show", Data: p})
}

// GetProject godoc
// @ID          getProject
// @Summary     Show a project
// @Tags        Projects
// @Produce     json
//
// @Param       project  path  string  true  "Project external id"  example(4b1e0c9d2a7f6e35)
//
// @Success     200  {object}  handlers.ProjectEnvelope
// @Failure     404  {object}  handlers.ErrorEnvelope  "Missing: project"
// @Router      /projects/{project} [get]
func (h *Handlers) GetProject(c *gin.Context) error {
	if err := h.expectAll(c, expect.Types("project")); err != nil {
		return err
	}
	return h.render.Render(c, Payload{View: "projects/show", Data: expect.Get[domain.Project](c, "project")})
}

// ListProjects godoc
// @ID          listProjects
// @Summary     List a user's projects (paginated)
// @Tags        Projects
// @Produce     json
//
// @Param       user       query  string  true   "Owner external id"  example(9f2c4e1a0b7d3c58)
// @Param       page       query  int     false  "Page number"        minimum(1) default(1)
// @Param       page_size  query  int     false  "Items per page"     minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.ProjectListEnvelope
// @Failure     404  {object}  handlers.ErrorEnvelope  "Missing: user"
// @Router      /projects [get]
func (h *Handlers) ListProjects(c *gin.Context) error {
	if err := h.expectAll(c, expect.Spec{expect.Named("user", "user")}); err != nil {
		return err
	}
	owner := expect.Get[domain.User](c, "user")
	page, pageSize := utils.Clamp(c.Query("page"), c.Query("page_size"))

	items, total, err := h.projects.ListPage(c.Request.Context(), owner, page, pageSize)
	if err != nil {
		return err
	}
	return h.render.Render(c, Payload{
		View: "projects/index",
		Data: ProjectPage{Items: items, Page: page, PageSize: pageSize, Total: total},
	})
}
