package database

import (
	"context"
	"log"
	"net/url"
	"path"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	"github.com/trezcool/scolarite/core"
	"github.com/trezcool/scolarite/fs"
)

// engines
const (
	EngineSQLite   = "sqlite3"
	EnginePostgres = "postgres"
	EngineMemory   = "memory"
)

func sqliteDSN(dbPath string) string {
	q := make(url.Values)
	q.Set("_foreign_keys", "1")
	q.Set("_busy_timeout", "5000")
	if dbPath == ":memory:" {
		return "file::memory:?" + q.Encode()
	}
	return "file:" + dbPath + "?" + q.Encode()
}

// Open connects to the SQL database configured in conf.Database.
func Open(conf *core.Config) (*sqlx.DB, error) {
	var (
		db  *sqlx.DB
		err error
	)
	switch conf.Database.Engine {
	case EngineSQLite:
		db, err = sqlx.Open(EngineSQLite, sqliteDSN(conf.Database.Path))
		if err != nil {
			return nil, errors.Wrap(err, "opening sqlite database")
		}
		// a single connection serialises writers and keeps `:memory:` databases alive
		db.SetMaxOpenConns(1)
	case EnginePostgres:
		db, err = sqlx.Open(EnginePostgres, conf.Database.DSN)
		if err != nil {
			return nil, errors.Wrap(err, "opening postgres database")
		}
	default:
		return nil, errors.Errorf("unsupported database engine %q", conf.Database.Engine)
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

// SetMigrationLogger sets the logger goose reports to.
func SetMigrationLogger(logger *log.Logger) {
	goose.SetLogger(logger)
}

// RunMigration runs the goose `command` against the migrations embedded for the db's dialect.
func RunMigration(ctx context.Context, db *sqlx.DB, command string, args ...string) error {
	goose.SetBaseFS(appfs.FS)
	if err := goose.SetDialect(db.DriverName()); err != nil {
		return errors.Wrap(err, "setting migrations dialect")
	}
	dir := path.Join("migrations", db.DriverName())
	if err := goose.RunContext(ctx, command, db.DB, dir, args...); err != nil {
		return errors.Wrapf(err, "running migrations %s", command)
	}
	return nil
}

func Migrate(ctx context.Context, db *sqlx.DB) error {
	return RunMigration(ctx, db, "up")
}

// IsUniqueViolation reports whether err was caused by a UNIQUE constraint.
func IsUniqueViolation(err error) bool {
	switch dbErr := errors.Cause(err).(type) {
	case sqlite3.Error:
		return dbErr.ExtendedCode == sqlite3.ErrConstraintUnique || dbErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	case *pq.Error:
		return dbErr.Code == "23505"
	}
	return false
}

// IsForeignKeyViolation reports whether err was caused by a FOREIGN KEY constraint.
func IsForeignKeyViolation(err error) bool {
	switch dbErr := errors.Cause(err).(type) {
	case sqlite3.Error:
		return dbErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	case *pq.Error:
		return dbErr.Code == "23503"
	}
	return false
}
