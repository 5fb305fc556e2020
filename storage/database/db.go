package database

import (
	"database/sql"
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/signquick/signquick/core"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

const (
	sqliteDriver   = "sqlite"
	postgresDriver = "postgres"
	memoryPath     = ":memory:"
)

func init() {
	sqlx.BindDriver(sqliteDriver, sqlx.QUESTION)
}

func sqliteDSN(path string) string {
	q := make(url.Values)
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	if path == memoryPath {
		return "file::memory:?" + q.Encode()
	}
	return "file:" + path + "?" + q.Encode()
}

func postgresDSN(dbName string, conf *core.Config) string {
	sslMode := "require"
	if conf.Database.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   postgresDriver,
		User:     url.UserPassword(conf.Database.User, conf.Database.Password),
		Host:     conf.Database.Address(),
		Path:     dbName,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// Open connects to the configured database. sqlite pools hold a single connection: it is the only writer.
func Open(conf *core.Config) (*sqlx.DB, error) {
	if !conf.Database.IsSQLite() {
		db, err := sqlx.Open(postgresDriver, postgresDSN(conf.Database.Name, conf))
		if err != nil {
			return nil, errors.Wrap(err, "opening postgres database")
		}
		return db, nil
	}

	if conf.Database.Path != memoryPath {
		if err := os.MkdirAll(filepath.Dir(conf.Database.Path), 0o755); err != nil {
			return nil, errors.Wrap(err, "creating database directory")
		}
	}
	db, err := sqlx.Open(sqliteDriver, sqliteDSN(conf.Database.Path))
	if err != nil {
		return nil, errors.Wrap(err, "opening sqlite database")
	}
	db.SetMaxOpenConns(1)
	if _, err = db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "enabling foreign keys")
	}
	return db, nil
}

// Ping waits for the database to be ready. Waits 100ms longer between each attempt.
func Ping(db *sqlx.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

// CreateIfNotExist creates the configured postgres database. It is a no-op for sqlite.
func CreateIfNotExist(conf *core.Config) error {
	if conf.Database.IsSQLite() {
		return nil
	}

	db, err := sql.Open(postgresDriver, postgresDSN("postgres", conf))
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() { _ = db.Close() }()

	if err = Ping(sqlx.NewDb(db, postgresDriver)); err != nil {
		return errors.Wrap(err, "pinging database")
	}

	var exists bool
	if err = db.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", conf.Database.Name).Scan(&exists); err != nil {
		return errors.Wrap(err, "checking DB")
	}
	if !exists {
		if _, err = db.Exec(fmt.Sprintf("CREATE DATABASE %q", conf.Database.Name)); err != nil {
			return errors.Wrap(err, "creating database")
		}
	}
	return nil
}

// Dialect returns the goose dialect and the migrations directory of db.
func Dialect(db *sqlx.DB) (string, string) {
	if db.DriverName() == postgresDriver {
		return "postgres", "migrations/postgres"
	}
	return "sqlite3", "migrations/sqlite"
}

// RunMigrations runs a goose command (up, down, status, ...) with the embedded migrations.
func RunMigrations(db *sqlx.DB, command string, args ...string) error {
	dialect, dir := Dialect(db)
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect(dialect); err != nil {
		return errors.Wrap(err, "setting goose dialect")
	}
	return goose.Run(command, db.DB, dir, args...)
}

// Migrate brings the schema up to date. verbose=false silences goose.
func Migrate(db *sqlx.DB, verbose ...bool) error {
	if len(verbose) > 0 && !verbose[0] {
		goose.SetLogger(goose.NopLogger())
	}
	if err := RunMigrations(db, "up"); err != nil {
		return errors.Wrap(err, "migrating database")
	}
	return nil
}
