package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	"edubot/pkg/config"

	"github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DB wraps a database/sql handle with a squirrel builder that emits the
// placeholder style of the underlying engine.
type DB struct {
	*sql.DB
	Driver  string
	Builder squirrel.StatementBuilderType
}

// Open connects to the configured store and creates the schema if absent.
func Open(ctx context.Context, cfg *config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	var (
		sqlDB *sql.DB
		err   error
		db    *DB
	)

	switch cfg.Driver {
	case DriverSQLite, "":
		sqlDB, err = sql.Open("sqlite", sqliteDSN(cfg.Path))
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		db = &DB{
			DB:      sqlDB,
			Driver:  DriverSQLite,
			Builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		}
	case DriverPostgres:
		dsn := fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
		)
		sqlDB, err = sql.Open("pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres database: %w", err)
		}
		db = &DB{
			DB:      sqlDB,
			Driver:  DriverPostgres,
			Builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("Database connection established",
		zap.String("driver", db.Driver),
		zap.String("database", databaseName(cfg)),
	)

	return db, nil
}

// Migrate creates the knowledge base and conversation log tables.
func (db *DB) Migrate(ctx context.Context) error {
	statements := sqliteSchema
	if db.Driver == DriverPostgres {
		statements = postgresSchema
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
	}
	return nil
}

// sqlitePragmas are applied by the driver on every new connection, so each
// connection in the pool waits for the write lock instead of failing with
// SQLITE_BUSY.
var sqlitePragmas = []string{
	"busy_timeout(5000)",
	"journal_mode(WAL)",
}

func sqliteDSN(path string) string {
	params := make(url.Values)
	for _, p := range sqlitePragmas {
		params.Add("_pragma", p)
	}
	return "file:" + path + "?" + params.Encode()
}

func databaseName(cfg *config.DatabaseConfig) string {
	if cfg.Driver == DriverPostgres {
		return cfg.DBName
	}
	return cfg.Path
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS static_responses (
		question TEXT PRIMARY KEY,
		answer   TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS education_facts (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		topic        TEXT NOT NULL UNIQUE,
		level        TEXT NOT NULL DEFAULT '',
		information  TEXT NOT NULL,
		last_updated TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS conversation_log (
		id           TEXT PRIMARY KEY,
		user_input   TEXT NOT NULL,
		bot_response TEXT NOT NULL,
		logged_at    TIMESTAMP NOT NULL,
		feedback     TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_conversation_log_logged_at ON conversation_log (logged_at)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS static_responses (
		question TEXT PRIMARY KEY,
		answer   TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS education_facts (
		id           BIGSERIAL PRIMARY KEY,
		topic        TEXT NOT NULL UNIQUE,
		level        TEXT NOT NULL DEFAULT '',
		information  TEXT NOT NULL,
		last_updated TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS conversation_log (
		id           UUID PRIMARY KEY,
		user_input   TEXT NOT NULL,
		bot_response TEXT NOT NULL,
		logged_at    TIMESTAMPTZ NOT NULL,
		feedback     TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_conversation_log_logged_at ON conversation_log (logged_at)`,
}
