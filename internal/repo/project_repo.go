// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Project model.
//
// Functions:
//
//   - CreateProject(ctx, db, p) -> error
//   - FindProjectByEID(ctx, db, eid) -> *domain.Project, error
//   - CountProjects(ctx, db, ownerID) -> int64, error
//   - ListProjectsPage(ctx, db, ownerID, offset, limit) -> []domain.Project, error
package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-api-base/internal/domain"
)

// CreateProject inserts p. The external identifier is assigned by the model's
// BeforeCreate hook. Associations are never written.
func CreateProject(ctx context.Context, db *gorm.DB, p *domain.Project) error {
	return db.WithContext(ctx).Omit(clause.Associations).Create(p).Error
}

// FindProjectByEID fetches a project (with its owner) by external identifier.
// A blank eid returns ErrNotFound without querying.
func FindProjectByEID(ctx context.Context, db *gorm.DB, eid string) (*domain.Project, error) {
	eid = strings.TrimSpace(eid)
	if eid == "" {
		return nil, ErrNotFound
	}
	var p domain.Project
	err := db.WithContext(ctx).
		Preload("Owner").
		Where("eid = ?", eid).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CountProjects returns the total number of projects owned by ownerID.
func CountProjects(ctx context.Context, db *gorm.DB, ownerID uint) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Project{}).
		Where("owner_id = ?", ownerID).
		Count(&total).Error
	return total, err
}

// ListProjectsPage returns a page of projects owned by ownerID, newest first.
// The caller computes offset and limit (e.g., (page-1)*pageSize).
func ListProjectsPage(ctx context.Context, db *gorm.DB, ownerID uint, offset, limit int) ([]domain.Project, error) {
	var out []domain.Project
	err := db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at desc, id desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
