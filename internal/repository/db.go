package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/receiptlens/receiptlens/constants"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Driver           string
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// DB wraps the sql handle together with its dialect so every repository can
// write queries with `?` placeholders regardless of driver.
type DB struct {
	sql    *sql.DB
	pool   *pgxpool.Pool // nil under sqlite
	driver string
	logger *slog.Logger
}

// Open connects using the configured driver, applies per-driver settings,
// and runs schema migrations.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	d := &DB{driver: cfg.Driver, logger: logger}

	switch cfg.Driver {
	case DriverPostgres:
		logger.Info("connecting to database", "driver", DriverPostgres)
		pc, err := pgxpool.ParseConfig(cfg.DSN)
		if err != nil {
			logger.Error("failed to parse database config", "error", err)
			return nil, err
		}
		pc.MaxConns = cfg.MaxConns
		pc.MinConns = cfg.MinConns
		pc.MaxConnLifetime = cfg.MaxConnLifetime
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
		pc.ConnConfig.RuntimeParams["application_name"] = constants.AppName
		if cfg.StatementTimeout > 0 {
			pc.ConnConfig.RuntimeParams["statement_timeout"] = cfg.StatementTimeout.String()
		}

		dialCtx := ctx
		if cfg.DialTimeout > 0 {
			var cancel context.CancelFunc
			dialCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
			defer cancel()
		}
		pool, err := pgxpool.NewWithConfig(dialCtx, pc)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			return nil, err
		}
		d.pool = pool
		d.sql = stdlib.OpenDBFromPool(pool)

	case DriverSQLite, "":
		d.driver = DriverSQLite
		logger.Info("connecting to database", "driver", DriverSQLite, "dsn", cfg.DSN)
		db, err := sql.Open("sqlite", cfg.DSN)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			return nil, err
		}
		// modernc sqlite allows one writer; a single conn also keeps
		// :memory: databases from silently forking per connection.
		db.SetMaxOpenConns(1)
		for _, pragma := range []string{
			"PRAGMA journal_mode = WAL",
			"PRAGMA busy_timeout = 5000",
			"PRAGMA foreign_keys = ON",
		} {
			if _, err := db.ExecContext(ctx, pragma); err != nil {
				_ = db.Close()
				logger.Error("failed to apply pragma", "pragma", pragma, "error", err)
				return nil, err
			}
		}
		d.sql = db

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	if err := d.migrate(ctx); err != nil {
		d.Close()
		return nil, err
	}

	logger.Info("successfully connected to database")
	return d, nil
}

// Close closes the database connections gracefully.
func (d *DB) Close() {
	d.logger.Info("closing database connections")
	if d.sql != nil {
		if err := d.sql.Close(); err != nil {
			d.logger.Error("failed to close sql handle", "error", err)
		}
	}
	if d.pool != nil {
		d.pool.Close()
	}
	d.logger.Info("database connections closed")
}

// HealthCheck pings through database/sql to catch DSN issues early.
func (d *DB) HealthCheck(ctx context.Context, timeout time.Duration) error {
	d.logger.Debug("pinging database")
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := d.sql.PingContext(ctx); err != nil {
		return err
	}
	d.logger.Debug("database ping successful")
	return nil
}

// Driver reports the active dialect.
func (d *DB) Driver() string { return d.driver }

func (d *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return d.sql.ExecContext(ctx, d.rebind(query), args...)
}

func (d *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return d.sql.QueryContext(ctx, d.rebind(query), args...)
}

func (d *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return d.sql.QueryRowContext(ctx, d.rebind(query), args...)
}

// rebind rewrites `?` placeholders to `$n` for postgres. Queries here never
// carry literal question marks, so a plain scan is enough.
func (d *DB) rebind(query string) string {
	if d.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
