// User HTTP handlers.
//
// This file exposes REST endpoints for user resources:
//   - POST   /users        (create)
//   - GET    /users/{id}   (show)
//   - PUT    /users/{id}   (update, self or admin)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-api-base/internal/domain"
	"github.com/tbourn/go-api-base/internal/expect"
	"github.com/tbourn/go-api-base/internal/services"
)

// UserRequest is the JSON (or form) payload for creating and updating users.
// Omitted attributes are left unchanged on update.
type UserRequest struct {
	Name     *string `json:"name" form:"name" example:"Ada Lovelace"`
	Email    *string `json:"email" form:"email" example:"ada@example.com"`
	Timezone *string `json:"timezone" form:"timezone" example:"Europe/London"`
}

func (r UserRequest) input() services.UserInput {
	return services.UserInput{Name: r.Name, Email: r.Email, Timezone: r.Timezone}
}

// UserEnvelope documents the single-user response shape for OpenAPI.
type UserEnvelope struct {
	Results UserView `json:"results"`
}

// CreateUser godoc
// @ID          createUser
// @Summary     Create a user
// @Description Creates a user. Timezone defaults to UTC; email must be unique (case-insensitive).
// @Tags        Users
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.UserRequest  true  "User attributes"
//
// @Success     201  {object}  handlers.UserEnvelope
// @Failure     400  {object}  handlers.ErrorEnvelope  "Validation failed"
// @Failure     500  {object}  handlers.ErrorEnvelope  "Internal error"
// @Router      /users [post]
func (h *Handlers) CreateUser(c *gin.Context) error {
	var req UserRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	u, err := h.users.Create(c.Request.Context(), req.input())
	if err != nil {
		return err
	}
	return h.render.Render(c, Payload{Status: http.StatusCreated, View: "users/show", Data: u})
}

// GetUser godoc
// @ID          getUser
// @Summary     Show a user
// @Tags        Users
// @Produce     json
//
// @Param       id  path  string  true  "User external id"  example(9f2c4e1a0b7d3c58)
//
// @Success     200  {object}  handlers.UserEnvelope
// @Failure     404  {object}  handlers.ErrorEnvelope  "Missing: user"
// @Router      /users/{id} [get]
func (h *Handlers) GetUser(c *gin.Context) error {
	if err := h.expectAll(c, expect.Spec{expect.Named("id", "user")}); err != nil {
		return err
	}
	return h.render.Render(c, Payload{View: "users/show", Data: expect.Get[domain.User](c, "user")})
}

// UpdateUser godoc
// @ID          updateUser
// @Summary     Update a user
// @Description Updates a user's attributes. Only the user themselves or an admin may do so.
// @Tags        Users
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string                true  "Caller external id"  example(9f2c4e1a0b7d3c58)
// @Param       id         path    string                true  "User external id"    example(9f2c4e1a0b7d3c58)
// @Param       body       body    handlers.UserRequest  true  "Attributes to change"
//
// @Success     200  {object}  handlers.UserEnvelope
// @Failure     400  {object}  handlers.ErrorEnvelope  "Validation failed"
// @Failure     403  {object}  handlers.ErrorEnvelope  "No access"
// @Failure     404  {object}  handlers.ErrorEnvelope  "Missing: user"
// @Router      /users/{id} [put]
func (h *Handlers) UpdateUser(c *gin.Context) error {
	if err := h.expectAll(c, expect.Spec{expect.Named("id", "user")}); err != nil {
		return err
	}
	var req UserRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	target := expect.Get[domain.User](c, "user")
	u, err := h.users.Update(c.Request.Context(), currentUser(c), target, req.input())
	if err != nil {
		return err
	}
	return h.render.Render(c, Payload{View: "users/show", Data: u})
}
