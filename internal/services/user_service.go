// Package services – UserService
//
// This file implements the UserService, which creates and updates users. It
// normalizes input, runs struct-tag validation plus the email uniqueness rule,
// and enforces that only the user themselves or an admin may update a record.
//
// Predictable failures are apperr values: *apperr.ValidationError for invalid
// attributes, ErrUnauthenticated and ErrNoAccess for access checks. Unexpected
// DB failures are returned raw.
package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/text/cases"
	"gorm.io/gorm"

	"github.com/tbourn/go-api-base/internal/domain"
	"github.com/tbourn/go-api-base/internal/repo"
)

// defaultTimezone is applied to new users that do not specify one.
const defaultTimezone = "UTC"

// UserInput carries optional attribute changes. Nil fields are left as is.
type UserInput struct {
	Name     *string
	Email    *string
	Timezone *string
}

// UserService implements the user use-cases on top of a GORM handle.
type UserService struct {
	// DB is the database handle used for all user operations.
	DB *gorm.DB
}

// NewUserService constructs a UserService.
func NewUserService(db *gorm.DB) *UserService { return &UserService{DB: db} }

// Create validates in and inserts a new user. The external identifier is
// assigned on insert.
func (s *UserService) Create(ctx context.Context, in UserInput) (*domain.User, error) {
	u := &domain.User{Timezone: defaultTimezone}
	apply(u, in)

	if err := s.check(ctx, u); err != nil {
		return nil, err
	}
	if err := repo.CreateUser(ctx, s.DB, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicate(err) {
			return nil, takenEmail()
		}
		return nil, err
	}
	return u, nil
}

// Update applies in to target on behalf of actor.
//
// Access rules:
//   - actor nil: ErrUnauthenticated.
//   - actor is neither target nor an admin: ErrNoAccess.
//
// target is not modified when validation fails.
func (s *UserService) Update(ctx context.Context, actor, target *domain.User, in UserInput) (*domain.User, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	if actor.ID != target.ID && !actor.Admin {
		return nil, ErrNoAccess
	}

	u := *target
	apply(&u, in)

	if err := s.check(ctx, &u); err != nil {
		return nil, err
	}
	if err := repo.SaveUser(ctx, s.DB, &u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicate(err) {
			return nil, takenEmail()
		}
		return nil, err
	}
	return &u, nil
}

// check runs tag validation and the uniqueness rule.
func (s *UserService) check(ctx context.Context, u *domain.User) error {
	c := newChecker(u)
	if err := c.run(u); err != nil {
		return err
	}
	if !c.has("email") {
		taken, err := repo.EmailTaken(ctx, s.DB, u.Email, u.ID)
		if err != nil {
			return err
		}
		if taken {
			c.add("email", msgTaken)
		}
	}
	return c.err()
}

// apply copies the non-nil fields of in onto u.
func apply(u *domain.User, in UserInput) {
	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		u.Email = normalizeEmail(*in.Email)
	}
	if in.Timezone != nil {
		u.Timezone = strings.TrimSpace(*in.Timezone)
	}
}

// normalizeEmail trims and case-folds an address so uniqueness is
// case-insensitive.
func normalizeEmail(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

func takenEmail() error {
	c := &checker{fields: map[string][]string{}}
	c.add("email", msgTaken)
	return c.err()
}

// isDuplicate attempts to detect unique-constraint violations across drivers
// that may not map to gorm.ErrDuplicatedKey.
func isDuplicate(err error) bool {
	// SQLite typically: "UNIQUE constraint failed"
	// Postgres typically: "duplicate key value violates unique constraint"
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
