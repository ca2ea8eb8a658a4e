// Package storage persists the sportsbook aggregates in PostgreSQL and
// provides the transactional unit of work the betting engine runs inside.
package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Store is the PostgreSQL-backed persistence layer.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Config holds PostgreSQL configuration.
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
	Logger   *zap.Logger
}

// New opens a connection pool and verifies connectivity.
func New(cfg *Config) (*Store, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	err = db.Ping()
	if err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	cfg.Logger.Info("postgres-store-connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database))

	return &Store{db: db, logger: cfg.Logger}, nil
}

// NewWithDB wraps an existing database handle. Used by tests.
func NewWithDB(db *sql.DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.logger.Info("closing-postgres-store")
	return s.db.Close()
}

// Ping verifies database connectivity. Used by the readiness probe.
func (s *Store) Ping() error {
	return s.db.Ping()
}

// Migrate creates the schema when it does not exist yet.
func (s *Store) Migrate() error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id             BIGSERIAL PRIMARY KEY,
			username       TEXT NOT NULL UNIQUE,
			balance        NUMERIC(12,2) NOT NULL DEFAULT 0,
			registered_on  TIMESTAMPTZ NOT NULL,
			deactivated_on TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			id        BIGSERIAL PRIMARY KEY,
			name      TEXT NOT NULL,
			sport     TEXT NOT NULL,
			starts_at TIMESTAMPTZ NOT NULL,
			ends_at   TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS fixtures (
			id          BIGSERIAL PRIMARY KEY,
			event_id    BIGINT NOT NULL REFERENCES events(id),
			type        TEXT NOT NULL,
			is_promoted BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE TABLE IF NOT EXISTS markets (
			id         BIGSERIAL PRIMARY KEY,
			fixture_id BIGINT NOT NULL REFERENCES fixtures(id),
			type       TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS outcomes (
			id              BIGSERIAL PRIMARY KEY,
			market_id       BIGINT NOT NULL REFERENCES markets(id),
			name            TEXT NOT NULL,
			value           TEXT,
			odds            NUMERIC(8,2),
			available_from  TIMESTAMPTZ NOT NULL,
			available_until TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tickets (
			id            BIGSERIAL PRIMARY KEY,
			user_id       BIGINT NOT NULL REFERENCES users(id),
			pay_in_amount NUMERIC(12,2) NOT NULL,
			pay_in_time   TIMESTAMPTZ NOT NULL,
			total_odds    NUMERIC(12,2) NOT NULL,
			status        TEXT NOT NULL,
			is_resolved   BOOLEAN NOT NULL DEFAULT FALSE,
			resolved_time TIMESTAMPTZ,
			cost_amount   NUMERIC(12,2),
			win_amount    NUMERIC(12,2),
			pay_out_time  TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS ticket_selections (
			ticket_id  BIGINT NOT NULL REFERENCES tickets(id),
			outcome_id BIGINT NOT NULL REFERENCES outcomes(id),
			PRIMARY KEY (ticket_id, outcome_id)
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id        UUID PRIMARY KEY,
			user_id   BIGINT NOT NULL REFERENCES users(id),
			type      TEXT NOT NULL,
			ticket_id BIGINT REFERENCES tickets(id),
			time      TIMESTAMPTZ NOT NULL,
			amount    NUMERIC(12,2) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tax_grades (
			id          BIGSERIAL PRIMARY KEY,
			lower_bound NUMERIC(12,2),
			upper_bound NUMERIC(12,2),
			rate        NUMERIC(5,4) NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_window
			ON outcomes (available_from, available_until)`,
		`CREATE INDEX IF NOT EXISTS idx_tickets_user ON tickets (user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_user ON transactions (user_id)`,
	}

	for _, stmt := range ddl {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate schema: %w", err)
		}
	}

	s.logger.Info("postgres-schema-ready")

	return nil
}
