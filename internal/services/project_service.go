// Package services – ProjectService
//
// This file implements the ProjectService, which creates projects for an
// authenticated owner and lists an owner's projects page by page.
package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/go-api-base/internal/domain"
	"github.com/tbourn/go-api-base/internal/repo"
)

// ProjectService implements the project use-cases on top of a GORM handle.
type ProjectService struct {
	DB *gorm.DB
}

// NewProjectService constructs a ProjectService.
func NewProjectService(db *gorm.DB) *ProjectService { return &ProjectService{DB: db} }

// Create inserts a project named name owned by owner. owner nil yields
// ErrUnauthenticated; a blank or overlong name yields a ValidationError.
func (s *ProjectService) Create(ctx context.Context, owner *domain.User, name string) (*domain.Project, error) {
	if owner == nil {
		return nil, ErrUnauthenticated
	}
	p := &domain.Project{OwnerID: owner.ID, Name: strings.TrimSpace(name)}

	c := newChecker(p)
	if err := c.run(p); err != nil {
		return nil, err
	}
	if err := c.err(); err != nil {
		return nil, err
	}
	if err := repo.CreateProject(ctx, s.DB, p); err != nil {
		return nil, err
	}
	p.Owner = *owner
	return p, nil
}

// ListPage returns page (1-based) of owner's projects and the total count.
func (s *ProjectService) ListPage(ctx context.Context, owner *domain.User, page, pageSize int) ([]domain.Project, int64, error) {
	total, err := repo.CountProjects(ctx, s.DB, owner.ID)
	if err != nil {
		return nil, 0, err
	}
	items, err := repo.ListProjectsPage(ctx, s.DB, owner.ID, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, 0, err
	}
	for i := range items {
		items[i].Owner = *owner
	}
	return items, total, nil
}
