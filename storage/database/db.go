package database

import (
	"context"
	"embed"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/madamaths/madamaths/core"
)

// supported engines
const (
	Postgres = "postgres"
	SQLite   = "sqlite"
)

//go:embed migrations/*/*.sql
var migrationsFS embed.FS

func postgresDSN(conf *core.Config) string {
	sslMode := "require"
	if conf.Database.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   Postgres,
		User:     url.UserPassword(conf.Database.User, conf.Database.Password),
		Host:     conf.Database.Address(),
		Path:     conf.Database.Name,
		RawQuery: q.Encode(),
	}
	return u.String()
}

func sqliteDSN(conf *core.Config) string {
	path := conf.Database.Path
	if path == "" || path == ":memory:" {
		path = ":memory:"
	}
	q := make(url.Values)
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	q.Set("_time_format", "sqlite")
	return "file:" + path + "?" + q.Encode()
}

// Open opens the configured database and waits for it to be reachable.
func Open(conf *core.Config) (*sqlx.DB, error) {
	var (
		db  *sqlx.DB
		err error
	)
	switch strings.ToLower(conf.Database.Engine) {
	case Postgres:
		db, err = sqlx.Open(Postgres, postgresDSN(conf))
	case SQLite:
		db, err = sqlx.Open(SQLite, sqliteDSN(conf))
		if err == nil {
			// an in-memory database lives and dies with its connection;
			// a file database serializes writers anyway
			db.SetMaxOpenConns(1)
			db.SetConnMaxLifetime(0)
			db.SetConnMaxIdleTime(0)
		}
	default:
		return nil, errors.Errorf("unsupported database engine %q", conf.Database.Engine)
	}
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}

	if err = ping(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sqlx.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		err = db.PingContext(ctx)
		cancel()
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

func gooseSetup(db *sqlx.DB) (string, error) {
	goose.SetBaseFS(migrationsFS)

	switch db.DriverName() {
	case Postgres:
		if err := goose.SetDialect("postgres"); err != nil {
			return "", errors.Wrap(err, "setting goose dialect")
		}
		return "migrations/postgres", nil
	case SQLite:
		if err := goose.SetDialect("sqlite3"); err != nil {
			return "", errors.Wrap(err, "setting goose dialect")
		}
		return "migrations/sqlite", nil
	}
	return "", errors.Errorf("unsupported database driver %q", db.DriverName())
}

// Migrate applies every pending migration.
func Migrate(db *sqlx.DB) error {
	dir, err := gooseSetup(db)
	if err != nil {
		return err
	}
	goose.SetLogger(goose.NopLogger())
	if err = goose.Up(db.DB, dir); err != nil {
		return errors.Wrap(err, "migrating database")
	}
	return nil
}

// RunMigrations runs a goose command (up, down, status, version, redo, reset, ...)
// against the embedded migrations.
func RunMigrations(db *sqlx.DB, command string, args ...string) error {
	dir, err := gooseSetup(db)
	if err != nil {
		return err
	}
	goose.SetLogger(log.New(os.Stdout, "", log.LstdFlags))
	if err = goose.Run(command, db.DB, dir, args...); err != nil {
		return errors.Wrapf(err, "running goose %s", command)
	}
	return nil
}
