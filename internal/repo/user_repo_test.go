package repo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-api-base/internal/domain"
)

func newRepoDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) *domain.User {
	t.Helper()
	u := &domain.User{Email: email, Timezone: "UTC"}
	if err := CreateUser(context.Background(), db, u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func TestFindUserByEID_FoundAndMissing(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()
	u := seedUser(t, db, "find@example.com")

	got, err := FindUserByEID(ctx, db, u.EID)
	if err != nil {
		t.Fatalf("FindUserByEID: %v", err)
	}
	if got.ID != u.ID || got.Email != "find@example.com" {
		t.Fatalf("unexpected user: %+v", got)
	}

	// Whitespace around the eid is tolerated.
	if _, err := FindUserByEID(ctx, db, "  "+u.EID+" "); err != nil {
		t.Fatalf("expected trimmed lookup to succeed: %v", err)
	}

	for _, eid := range []string{"", "   ", "deadbeefdeadbeef", strconv.Itoa(int(u.ID))} {
		if _, err := FindUserByEID(ctx, db, eid); !errors.Is(err, ErrNotFound) {
			t.Fatalf("FindUserByEID(%q) err=%v; want ErrNotFound", eid, err)
		}
	}
}

func TestGetUser_ByInternalID(t *testing.T) {
	db := newRepoDB(t)
	u := seedUser(t, db, "get@example.com")

	got, err := GetUser(context.Background(), db, u.ID)
	if err != nil || got.EID != u.EID {
		t.Fatalf("GetUser: err=%v got=%+v", err, got)
	}
	if _, err := GetUser(context.Background(), db, u.ID+100); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveUser_UpdatesColumns(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()
	u := seedUser(t, db, "save@example.com")

	u.Timezone = "Etc/GMT+1"
	u.Name = "Saved"
	if err := SaveUser(ctx, db, u); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}
	got, err := FindUserByEID(ctx, db, u.EID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Timezone != "Etc/GMT+1" || got.Name != "Saved" {
		t.Fatalf("columns not updated: %+v", got)
	}
}

func TestEmailTaken(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()
	a := seedUser(t, db, "a@example.com")
	b := seedUser(t, db, "b@example.com")

	cases := []struct {
		email  string
		except uint
		want   bool
	}{
		{"a@example.com", 0, true},
		{"a@example.com", a.ID, false},
		{"a@example.com", b.ID, true},
		{"c@example.com", 0, false},
	}
	for _, tc := range cases {
		got, err := EmailTaken(ctx, db, tc.email, tc.except)
		if err != nil {
			t.Fatalf("EmailTaken: %v", err)
		}
		if got != tc.want {
			t.Fatalf("EmailTaken(%q, %d) = %v; want %v", tc.email, tc.except, got, tc.want)
		}
	}
}

func TestCreateUser_Error_NoTable(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:nousers?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := CreateUser(context.Background(), db, &domain.User{Email: "x@example.com"}); err == nil {
		t.Fatalf("expected error when users table is missing")
	}
}
