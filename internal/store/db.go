// Package store implements the nutrition repositories on PostgreSQL via pgx.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/thitiph0n/second-brain-sub001/internal/nutrition"
)

// uniqueViolation is the SQLSTATE for a unique or primary key conflict.
const uniqueViolation = "23505"

// Connect creates a connection pool. We use a pool (not a single conn) because
// Neon closes idle connections after ~5 minutes.
func Connect(ctx context.Context, dbURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse DB URL: %w", err)
	}
	// Use simple query protocol to avoid "cached plan must not change result type"
	// errors from Neon's server-side prepared statement cache after schema changes.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so the same
// repository code runs inside and outside a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store is the PostgreSQL nutrition.Store.
type Store struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

var _ nutrition.Store = (*Store)(nil)

func New(pool *pgxpool.Pool, log *zap.Logger) *Store {
	return &Store{pool: pool, log: log}
}

func (s *Store) base() conn { return conn{db: s.pool, log: s.log} }

func (s *Store) Entries() nutrition.FoodEntryRepository { return foodEntries{s.base()} }
func (s *Store) Favorites() nutrition.FavoriteFoodRepository { return favoriteFoods{s.base()} }
func (s *Store) Profiles() nutrition.ProfileRepository { return profiles{s.base()} }
func (s *Store) Freezes() nutrition.FreezeRepository { return freezes{s.base()} }

// Users exposes the account queries used by login and the CLI tools.
func (s *Store) Users() Users { return Users{s.base()} }

// WithinTx runs fn in a single transaction. fn's error is returned as is
// after rollback so domain errors keep their kind.
func (s *Store) WithinTx(ctx context.Context, fn func(tx nutrition.Repositories) error) error {
	var fnErr error
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		fnErr = fn(txRepos{conn{db: tx, log: s.log}})
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	return mapErr("tx", err)
}

type txRepos struct{ c conn }

func (t txRepos) Entries() nutrition.FoodEntryRepository { return foodEntries{t.c} }
func (t txRepos) Favorites() nutrition.FavoriteFoodRepository { return favoriteFoods{t.c} }
func (t txRepos) Profiles() nutrition.ProfileRepository { return profiles{t.c} }
func (t txRepos) Freezes() nutrition.FreezeRepository { return freezes{t.c} }

// conn pairs a querier with the logger every repository reports through.
type conn struct {
	db  querier
	log *zap.Logger
}

/* ─── Query helpers ───────────────────────────────────────────────────── */

// queryOne runs a query and scans the first row into T using RowToStructByName.
// Logs query and scan errors for debugging (e.g. struct/column mismatches).
func queryOne[T any](ctx context.Context, c conn, op, sql string, args pgx.NamedArgs) (T, error) {
	var zero T
	rows, err := c.db.Query(ctx, sql, args)
	if err != nil {
		c.log.Error("query failed", zap.String("helper", "queryOne"), zap.String("op", op), zap.Error(err))
		return zero, mapErr(op, err)
	}
	result, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			c.log.Error("scan failed", zap.String("helper", "queryOne"), zap.String("op", op), zap.Error(err))
		}
		return zero, mapErr(op, err)
	}
	return result, nil
}

// queryMany runs a query and scans all rows into []T using RowToStructByName.
func queryMany[T any](ctx context.Context, c conn, op, sql string, args pgx.NamedArgs) ([]T, error) {
	rows, err := c.db.Query(ctx, sql, args)
	if err != nil {
		c.log.Error("query failed", zap.String("helper", "queryMany"), zap.String("op", op), zap.Error(err))
		return nil, mapErr(op, err)
	}
	results, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		c.log.Error("scan failed", zap.String("helper", "queryMany"), zap.String("op", op), zap.Error(err))
		return nil, mapErr(op, err)
	}
	return results, nil
}

// exec runs a statement and returns the number of affected rows.
func exec(ctx context.Context, c conn, op, sql string, args pgx.NamedArgs) (int64, error) {
	tag, err := c.db.Exec(ctx, sql, args)
	if err != nil {
		c.log.Error("exec failed", zap.String("op", op), zap.Error(err))
		return 0, mapErr(op, err)
	}
	return tag.RowsAffected(), nil
}

// mapErr translates driver errors into nutrition error kinds.
func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return nutrition.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", nutrition.ErrConflict, pgErr.ConstraintName)
	}
	return &nutrition.PersistenceError{Op: op, Err: err}
}
