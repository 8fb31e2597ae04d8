package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"storefront/internal/domain"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const stateSchema = `
        CREATE TABLE IF NOT EXISTS storefront_state (
            namespace  TEXT        NOT NULL,
            key        TEXT        NOT NULL,
            value      TEXT        NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            PRIMARY KEY (namespace, key)
        )`

const upsertStateQuery = `
        INSERT INTO storefront_state (namespace, key, value)
        VALUES ($1, $2, $3)
        ON CONFLICT (namespace, key) DO UPDATE
        SET value = EXCLUDED.value, updated_at = NOW()`

type PostgresStateStore struct {
	db        *sql.DB
	namespace string
	log       *logrus.Logger
}

var _ domain.StateStore = (*PostgresStateStore)(nil)

// NewPostgresStateStore stores every key under namespace, so several browser
// profiles can share one table.
func NewPostgresStateStore(db *sql.DB, namespace string, logger *logrus.Logger) *PostgresStateStore {
	return &PostgresStateStore{
		db:        db,
		namespace: namespace,
		log:       logger,
	}
}

func (r *PostgresStateStore) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, stateSchema); err != nil {
		r.log.Errorf("Repository: Failed to ensure storefront_state schema: %v", err)
		return fmt.Errorf("could not create state table: %w", err)
	}
	r.log.Info("Repository: storefront_state schema ready")
	return nil
}

func (r *PostgresStateStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	query := `
        SELECT value
        FROM storefront_state
        WHERE namespace = $1 AND key = $2`

	var value string
	err := r.db.QueryRowContext(ctx, query, r.namespace, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Debugf("Repository: Key %s not present in namespace %s", key, r.namespace)
			return nil, false, nil
		}
		r.log.Errorf("Repository: Failed to read key %s in namespace %s: %v", key, r.namespace, err)
		return nil, false, fmt.Errorf("could not read state key %s: %w", key, err)
	}
	return []byte(value), true, nil
}

func (r *PostgresStateStore) Set(ctx context.Context, key string, value []byte) error {
	if _, err := r.db.ExecContext(ctx, upsertStateQuery, r.namespace, key, string(value)); err != nil {
		r.log.Errorf("Repository: Failed to write key %s in namespace %s: %v", key, r.namespace, err)
		return fmt.Errorf("could not write state key %s: %w", key, err)
	}
	r.log.Debugf("Repository: Wrote key %s in namespace %s", key, r.namespace)
	return nil
}

func (r *PostgresStateStore) SetMany(ctx context.Context, values map[string][]byte) (err error) {
	if len(values) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.log.Errorf("Repository: Failed to begin transaction: %v", err)
		return fmt.Errorf("could not start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			r.log.Error("Repository: Recovered from panic, rolling back transaction")
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			r.log.Warnf("Repository: Rolling back transaction due to error: %v", err)
			if rbErr := tx.Rollback(); rbErr != nil {
				r.log.Errorf("Repository: Failed to rollback transaction: %v", rbErr)
			}
		} else if cErr := tx.Commit(); cErr != nil {
			r.log.Errorf("Repository: Failed to commit transaction: %v", cErr)
			err = fmt.Errorf("failed to commit transaction: %w", cErr)
		}
	}()

	stmt, err := tx.PrepareContext(ctx, upsertStateQuery)
	if err != nil {
		r.log.Errorf("Repository: Failed to prepare state upsert: %v", err)
		return fmt.Errorf("could not prepare state statement: %w", err)
	}
	defer stmt.Close()

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if _, err = stmt.ExecContext(ctx, r.namespace, key, string(values[key])); err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) {
				r.log.Errorf("Repository: Postgres rejected key %s (code %s): %s", key, pqErr.Code, pqErr.Message)
			}
			return fmt.Errorf("could not write state key %s: %w", key, err)
		}
	}

	r.log.Debugf("Repository: Wrote %d keys in namespace %s", len(keys), r.namespace)
	return nil
}

func (r *PostgresStateStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	query := `
        DELETE FROM storefront_state
        WHERE namespace = $1 AND key = ANY($2)`

	if _, err := r.db.ExecContext(ctx, query, r.namespace, pq.Array(keys)); err != nil {
		r.log.Errorf("Repository: Failed to delete keys %v in namespace %s: %v", keys, r.namespace, err)
		return fmt.Errorf("could not delete state keys: %w", err)
	}
	r.log.Debugf("Repository: Deleted keys %v in namespace %s", keys, r.namespace)
	return nil
}
