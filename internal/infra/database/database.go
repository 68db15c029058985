package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PoolConf configures the database/sql connection pool.
type PoolConf struct {
	MaxOpenConns    int           `json:",default=10"`
	MaxIdleConns    int           `json:",default=5"`
	ConnMaxLifetime time.Duration `json:",default=5m"`
}

// Config is the Postgres connection configuration shared by the services.
type Config struct {
	DataSource  string
	Pool        PoolConf
	AutoMigrate bool `json:",default=true"`
}

// OpenDB opens a Postgres connection through go-zero sqlx and applies the pool settings.
func OpenDB(c Config) (sqlx.SqlConn, error) {
	conn := sqlx.NewSqlConn("postgres", c.DataSource)

	db, err := conn.RawDB()
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(c.Pool.MaxOpenConns)
	db.SetMaxIdleConns(c.Pool.MaxIdleConns)
	db.SetConnMaxLifetime(c.Pool.ConnMaxLifetime)
	logx.Infof("Connection pool configured: MaxOpen=%d, MaxIdle=%d, MaxLifetime=%s",
		c.Pool.MaxOpenConns, c.Pool.MaxIdleConns, c.Pool.ConnMaxLifetime)

	if c.AutoMigrate {
		if err := RunMigrations(db); err != nil {
			return nil, err
		}
	}

	return conn, nil
}

// MustOpenDB is OpenDB that exits on error.
func MustOpenDB(c Config) sqlx.SqlConn {
	conn, err := OpenDB(c)
	logx.Must(err)
	return conn
}

// RunMigrations runs all pending migrations
func RunMigrations(db *sql.DB) error {
	// Create source driver from embedded filesystem
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
