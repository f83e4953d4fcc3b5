// Package postgres stores the chat log in a PostgreSQL table.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/bnema/voxlate/internal/domain"
	"github.com/bnema/voxlate/internal/ports"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const DefaultTable = "chat_log"

type Store struct {
	pool  *pgxpool.Pool
	table string
}

var _ ports.ChatLog = (*Store)(nil)

// Open connects to url, verifies the connection and makes sure the log
// table exists.
func Open(ctx context.Context, url, table string) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse postgres url: %w", err)
	}
	poolConfig.MaxConns = 4
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	store := NewStore(pool, table)
	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return store, nil
}

func NewStore(pool *pgxpool.Pool, table string) *Store {
	if table == "" {
		table = DefaultTable
	}

	return &Store{pool: pool, table: pgx.Identifier{table}.Sanitize()}
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id BIGSERIAL PRIMARY KEY,
	sender TEXT NOT NULL,
	ts TIMESTAMPTZ NOT NULL,
	message TEXT NOT NULL,
	type TEXT NOT NULL CHECK (type IN ('original', 'translated'))
)`, s.table)

	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("create chat log table: %w", err)
	}

	return nil
}

func (s *Store) Append(ctx context.Context, entry domain.LogEntry) error {
	query := fmt.Sprintf(`INSERT INTO %s (sender, ts, message, type) VALUES ($1, $2, $3, $4)`, s.table)
	if _, err := s.pool.Exec(ctx, query, entry.Sender, entry.Timestamp.UTC(), entry.Message, string(entry.Kind)); err != nil {
		return fmt.Errorf("insert chat log entry: %w", err)
	}

	return nil
}

func (s *Store) List(ctx context.Context) ([]domain.LogEntry, error) {
	query := fmt.Sprintf(`SELECT sender, ts, message, type FROM %s ORDER BY id`, s.table)
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query chat log: %w", err)
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.LogEntry, error) {
		var entry domain.LogEntry
		var kind string
		if err := row.Scan(&entry.Sender, &entry.Timestamp, &entry.Message, &kind); err != nil {
			return domain.LogEntry{}, err
		}
		entry.Kind = domain.LogKind(kind)
		return entry, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan chat log: %w", err)
	}

	return entries, nil
}

func (s *Store) Close() {
	s.pool.Close()
}
