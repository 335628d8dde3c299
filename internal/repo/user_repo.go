// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the User model.
//
// Lookups by external identifier only ever match the eid column; the internal
// auto-increment key is never accepted as an external lookup key.
//
// Error semantics:
//   - When a user is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/go-api-base/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateUser inserts u. The external identifier is assigned by the model's
// BeforeCreate hook.
func CreateUser(ctx context.Context, db *gorm.DB, u *domain.User) error {
	return db.WithContext(ctx).Create(u).Error
}

// SaveUser persists every mutable column of an existing user.
func SaveUser(ctx context.Context, db *gorm.DB, u *domain.User) error {
	return db.WithContext(ctx).Save(u).Error
}

// FindUserByEID fetches a user by external identifier. A blank eid returns
// ErrNotFound without querying.
func FindUserByEID(ctx context.Context, db *gorm.DB, eid string) (*domain.User, error) {
	eid = strings.TrimSpace(eid)
	if eid == "" {
		return nil, ErrNotFound
	}
	var u domain.User
	if err := db.WithContext(ctx).Where("eid = ?", eid).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUser fetches a user by internal primary key. It is meant for joins
// inside the service layer, never for request parameters.
func GetUser(ctx context.Context, db *gorm.DB, id uint) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// EmailTaken reports whether another user (any id other than exceptID) already
// uses email. Pass exceptID 0 for new records.
func EmailTaken(ctx context.Context, db *gorm.DB, email string, exceptID uint) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("email = ? AND id <> ?", email, exceptID).
		Count(&n).Error
	return n > 0, err
}
