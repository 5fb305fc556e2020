package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/signquick/signquick/core"
	"github.com/signquick/signquick/core/user"
	"github.com/signquick/signquick/storage/database"
)

// Config returns the default config pointed at an in-memory sqlite database.
func Config() *core.Config {
	conf := core.NewConfig()
	conf.TestMode = true
	conf.Database.Engine = "sqlite"
	conf.Database.Path = ":memory:"
	return conf
}

// PrepareDB opens a migrated in-memory database that is closed when the test ends.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := database.Open(Config())
	if err != nil {
		t.Fatalf("database.Open(): %v", err)
	}
	if err = database.Migrate(db, false /* verbose */); err != nil {
		t.Fatalf("database.Migrate(): %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func CreateUser(t *testing.T, repo user.Repository, uname, pwd string, createdAt ...time.Time) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Username:  uname,
		CreatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}
