package domain

import (
	"regexp"
	"testing"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var eidRE = regexp.MustCompile(`^[0-9a-f]{16}$`)

func newDomainDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:domain_models?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// Enforce FKs so cascades actually execute.
	db.Exec("PRAGMA foreign_keys=ON;")
	if err := db.AutoMigrate(&User{}, &Project{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	t.Cleanup(func() {
		db.Exec("DELETE FROM projects")
		db.Exec("DELETE FROM users")
	})
	return db
}

func TestTableNames(t *testing.T) {
	if (User{}).TableName() != "users" {
		t.Fatalf("User.TableName() = %q; want %q", (User{}).TableName(), "users")
	}
	if (Project{}).TableName() != "projects" {
		t.Fatalf("Project.TableName() = %q; want %q", (Project{}).TableName(), "projects")
	}
}

func TestNewEID_FormatAndUniqueness(t *testing.T) {
	seen := make(map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		eid, err := NewEID()
		if err != nil {
			t.Fatalf("NewEID: %v", err)
		}
		if !eidRE.MatchString(eid) {
			t.Fatalf("bad eid format %q", eid)
		}
		if _, dup := seen[eid]; dup {
			t.Fatalf("duplicate eid %q", eid)
		}
		seen[eid] = struct{}{}
	}
}

func TestAssignEID_KeepsExisting(t *testing.T) {
	eid := "0123456789abcdef"
	if err := AssignEID(&eid); err != nil {
		t.Fatalf("AssignEID: %v", err)
	}
	if eid != "0123456789abcdef" {
		t.Fatalf("existing eid overwritten: %q", eid)
	}
}

func TestCreate_AssignsEID_AndUpdateCannotChangeIt(t *testing.T) {
	db := newDomainDB(t)

	u := &User{Email: "a@example.com", Timezone: "UTC"}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	if !eidRE.MatchString(u.EID) {
		t.Fatalf("expected eid assigned on create, got %q", u.EID)
	}
	if u.ID == 0 {
		t.Fatalf("expected internal id assigned")
	}
	original := u.EID

	// Attempt to rewrite the eid through a full save and a column update.
	u.EID = "ffffffffffffffff"
	u.Name = "renamed"
	if err := db.Save(u).Error; err != nil {
		t.Fatalf("save: %v", err)
	}
	db.Model(&User{}).Where("id = ?", u.ID).Update("eid", "eeeeeeeeeeeeeeee")

	var got User
	if err := db.First(&got, u.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.EID != original {
		t.Fatalf("eid changed after update: %q -> %q", original, got.EID)
	}
	if got.Name != "renamed" {
		t.Fatalf("expected other columns to update, got %+v", got)
	}
}

func TestMigrations_Indexes_AndCascades(t *testing.T) {
	db := newDomainDB(t)
	m := db.Migrator()

	for _, tbl := range []any{&User{}, &Project{}} {
		if !m.HasTable(tbl) {
			t.Fatalf("expected table for %T to exist", tbl)
		}
	}
	if !m.HasIndex(&User{}, "ux_users_eid") || !m.HasIndex(&User{}, "ux_users_email") {
		t.Fatalf("expected unique indexes on users")
	}
	if !m.HasIndex(&Project{}, "ux_projects_eid") || !m.HasIndex(&Project{}, "idx_owner_projects") {
		t.Fatalf("expected indexes on projects")
	}

	owner := &User{Email: "owner@example.com", Timezone: "UTC"}
	if err := db.Create(owner).Error; err != nil {
		t.Fatalf("create owner: %v", err)
	}
	p := &Project{OwnerID: owner.ID, Name: "Apollo"}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("create project: %v", err)
	}
	if !eidRE.MatchString(p.EID) || p.EID == owner.EID {
		t.Fatalf("expected distinct project eid, got %q", p.EID)
	}

	// Duplicate email violates the unique index.
	if err := db.Create(&User{Email: "owner@example.com", Timezone: "UTC"}).Error; err == nil {
		t.Fatalf("expected unique violation on email")
	}

	// CASCADE: deleting the owner removes the project.
	if err := db.Delete(&User{}, owner.ID).Error; err != nil {
		t.Fatalf("delete owner: %v", err)
	}
	var cnt int64
	if err := db.Model(&Project{}).Where("owner_id = ?", owner.ID).Count(&cnt).Error; err != nil {
		t.Fatalf("count projects: %v", err)
	}
	if cnt != 0 {
		t.Fatalf("expected projects to cascade-delete with owner, got %d", cnt)
	}
}
