// Package domain defines the persistence models for users and projects.
// These types are mapped with GORM and form the core data layer of the API.
//
// Every model carries two identities:
//   - ID: an internal auto-increment primary key, never serialized.
//   - EID: an opaque external identifier assigned once on create and used for
//     every external-facing lookup.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account that can own projects.
//
// Fields:
//   - ID: internal primary key (json:"-").
//   - EID: external identifier, create-only column.
//   - Name: optional display name.
//   - Email: unique login address (case-folded before persisting).
//   - Timezone: IANA zone name, e.g. "Europe/London".
//   - Admin: grants write access to other users.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type User struct {
	ID        uint      `json:"-"          gorm:"primaryKey;autoIncrement"`
	EID       string    `json:"eid"        gorm:"column:eid;type:char(16);not null;uniqueIndex:ux_users_eid;<-:create"`
	Name      string    `json:"name"       gorm:"type:varchar(255);not null;default:''" validate:"max=255"`
	Email     string    `json:"email"      gorm:"type:varchar(255);not null;uniqueIndex:ux_users_email" validate:"required,email,max=255"`
	Timezone  string    `json:"timezone"   gorm:"type:varchar(64);not null;default:'UTC'" validate:"required,timezone"`
	Admin     bool      `json:"admin"      gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// BeforeCreate assigns the external identifier.
func (u *User) BeforeCreate(*gorm.DB) error { return AssignEID(&u.EID) }

// Project is a named workspace owned by a user.
//
// Fields:
//   - ID: internal primary key (json:"-").
//   - EID: external identifier, create-only column.
//   - OwnerID: internal key of the owning user (indexed).
//   - Name: required, 1–255 chars.
//   - Owner: FK association, cascade-deleted with the user.
type Project struct {
	ID        uint      `json:"-"          gorm:"primaryKey;autoIncrement"`
	EID       string    `json:"eid"        gorm:"column:eid;type:char(16);not null;uniqueIndex:ux_projects_eid;<-:create"`
	OwnerID   uint      `json:"-"          gorm:"not null;index:idx_owner_projects"`
	Name      string    `json:"name"       gorm:"type:varchar(255);not null" validate:"required,max=255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Owner User `json:"-" gorm:"foreignKey:OwnerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" validate:"-"`
}

// TableName returns the database table name for Project.
func (Project) TableName() string { return "projects" }

// BeforeCreate assigns the external identifier.
func (p *Project) BeforeCreate(*gorm.DB) error { return AssignEID(&p.EID) }
