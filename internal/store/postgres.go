package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// PostgresStore is a Postgres-backed KV implementation using a single
// key/value table.
type PostgresStore struct {
	db     *sqlx.DB
	config *PostgresConfig
	logger *zap.Logger
}

// PostgresConfig contains database configuration
type PostgresConfig struct {
	DatabaseURL     string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	MaxItemBytes    int64
}

// NewPostgresStore connects to the database and ensures the kv table exists
func NewPostgresStore(config *PostgresConfig, logger *zap.Logger) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", config.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)

	s := &PostgresStore{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	logger.Info("Postgres store initialized",
		zap.Int("max_open_conns", config.MaxOpenConns),
		zap.Int("max_idle_conns", config.MaxIdleConns))

	return s, nil
}

func (s *PostgresStore) initialize() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS kv_entries (
			key        TEXT PRIMARY KEY,
			value      BYTEA NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create kv table: %w", err)
	}
	return nil
}

type kvRow struct {
	Key   string `db:"key"`
	Value []byte `db:"value"`
}

func (s *PostgresStore) Get(ctx context.Context, keys []string) (map[string][]byte, error) {
	if len(keys) == 0 {
		return map[string][]byte{}, nil
	}

	var rows []kvRow
	query := `SELECT key, value FROM kv_entries WHERE key = ANY($1)`
	if err := s.db.SelectContext(ctx, &rows, query, pq.Array(keys)); err != nil {
		return nil, fmt.Errorf("kv select failed: %w", err)
	}

	out := make(map[string][]byte, len(rows))
	for _, r := range rows {
		out[r.Key] = r.Value
	}
	return out, nil
}

func (s *PostgresStore) Set(ctx context.Context, items map[string][]byte) error {
	if s.config.MaxItemBytes > 0 {
		for k, v := range items {
			if int64(len(k)+len(v)) > s.config.MaxItemBytes {
				return ErrItemTooLarge
			}
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("kv tx begin failed: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	upsert := `
		INSERT INTO kv_entries (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	for k, v := range items {
		if _, err := tx.ExecContext(ctx, upsert, k, v); err != nil {
			return fmt.Errorf("kv upsert failed for %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("kv tx commit failed: %w", err)
	}
	return nil
}

func (s *PostgresStore) Remove(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	query := `DELETE FROM kv_entries WHERE key = ANY($1)`
	if _, err := s.db.ExecContext(ctx, query, pq.Array(keys)); err != nil {
		return fmt.Errorf("kv delete failed: %w", err)
	}
	return nil
}

func (s *PostgresStore) BytesInUse(ctx context.Context, key string) (int64, error) {
	var total int64
	if key != "" {
		query := `SELECT COALESCE(SUM(octet_length(key) + octet_length(value)), 0) FROM kv_entries WHERE key = $1`
		if err := s.db.GetContext(ctx, &total, query, key); err != nil {
			return 0, fmt.Errorf("kv usage query failed: %w", err)
		}
		return total, nil
	}

	query := `SELECT COALESCE(SUM(octet_length(key) + octet_length(value)), 0) FROM kv_entries`
	if err := s.db.GetContext(ctx, &total, query); err != nil {
		return 0, fmt.Errorf("kv usage query failed: %w", err)
	}
	return total, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
