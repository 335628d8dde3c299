package handlers

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-api-base/internal/domain"
	"github.com/tbourn/go-api-base/internal/utils"
)

// Presenter turns view data into a response value.
type Presenter func(data any) (any, error)

// Presenters is a name → Presenter registry and the default ViewRenderer.
// It is populated at startup and read-only afterwards.
type Presenters map[string]Presenter

// RenderView runs the presenter registered under name.
func (p Presenters) RenderView(_ *gin.Context, name string, data any) (any, error) {
	fn, ok := p[name]
	if !ok {
		return nil, fmt.Errorf("unknown view %q", name)
	}
	return fn(data)
}

// DefaultPresenters returns the views used by the API routes.
func DefaultPresenters() Presenters {
	return Presenters{
		"users/show":     presentUser,
		"projects/show":  presentProject,
		"projects/index": presentProjectPage,
	}
}

// UserView is the public representation of a user. The internal id is never
// exposed; ID is the external id.
type UserView struct {
	ID        string    `json:"id" example:"9f2c4e1a0b7d3c58"`
	Name      string    `json:"name" example:"Ada Lovelace"`
	Email     string    `json:"email" example:"ada@example.com"`
	Timezone  string    `json:"timezone" example:"Europe/London"`
	Admin     bool      `json:"admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProjectView is the public representation of a project.
type ProjectView struct {
	ID        string    `json:"id" example:"4b1e0c9d2a7f6e35"`
	Name      string    `json:"name" example:"Apollo"`
	Owner     string    `json:"owner,omitempty" example:"9f2c4e1a0b7d3c58"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ProjectList wraps a page of projects and pagination information.
type ProjectList struct {
	Projects   []ProjectView `json:"projects"`
	Pagination Pagination    `json:"pagination"`
}

// ProjectPage is the view data for "projects/index".
type ProjectPage struct {
	Items    []domain.Project
	Page     int
	PageSize int
	Total    int64
}

// NewUserView converts u.
func NewUserView(u *domain.User) UserView {
	return UserView{
		ID:        u.EID,
		Name:      u.Name,
		Email:     u.Email,
		Timezone:  u.Timezone,
		Admin:     u.Admin,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// NewProjectView converts p. Owner is filled when the owner is loaded.
func NewProjectView(p *domain.Project) ProjectView {
	return ProjectView{
		ID:        p.EID,
		Name:      p.Name,
		Owner:     p.Owner.EID,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func presentUser(data any) (any, error) {
	u, ok := data.(*domain.User)
	if !ok || u == nil {
		return nil, fmt.Errorf("users/show: unexpected data %T", data)
	}
	return NewUserView(u), nil
}

func presentProject(data any) (any, error) {
	p, ok := data.(*domain.Project)
	if !ok || p == nil {
		return nil, fmt.Errorf("projects/show: unexpected data %T", data)
	}
	return NewProjectView(p), nil
}

func presentProjectPage(data any) (any, error) {
	pg, ok := data.(ProjectPage)
	if !ok {
		return nil, fmt.Errorf("projects/index: unexpected data %T", data)
	}
	views := make([]ProjectView, 0, len(pg.Items))
	for i := range pg.Items {
		views = append(views, NewProjectView(&pg.Items[i]))
	}
	totalPages := utils.TotalPages(pg.Total, pg.PageSize)
	return ProjectList{
		Projects: views,
		Pagination: Pagination{
			Page:       pg.Page,
			PageSize:   pg.PageSize,
			Total:      pg.Total,
			TotalPages: totalPages,
			HasNext:    pg.Page < totalPages,
		},
	}, nil
}
