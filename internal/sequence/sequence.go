// Package sequence issues gapless human-readable document numbers
// (PUR-000001, ADJ-000042) from an atomic counters table. The increment is
// one INSERT ... ON CONFLICT ... RETURNING statement, so two concurrent
// creations can never observe the same value.
package sequence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tair/commerce-core/pkg/apperror"
)

// Generator issues the next number for a named sequence
type Generator interface {
	Next(ctx context.Context, name, prefix string) (string, error)
}

// PostgresGenerator backs sequences with a counters table, using the raw
// database/sql connection for RETURNING semantics.
type PostgresGenerator struct {
	db *sql.DB
}

func NewPostgresGenerator(db *sql.DB) *PostgresGenerator {
	return &PostgresGenerator{db: db}
}

// EnsureSchema creates the counters table if it does not exist
func (g *PostgresGenerator) EnsureSchema(ctx context.Context) error {
	_, err := g.db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS counters (
		     name  TEXT PRIMARY KEY,
		     value BIGINT NOT NULL
		 )`)
	if err != nil {
		return apperror.Internal(err)
	}
	return nil
}

// Next atomically increments the named counter and formats the result
func (g *PostgresGenerator) Next(ctx context.Context, name, prefix string) (string, error) {
	var value int64
	err := g.db.QueryRowContext(ctx,
		`INSERT INTO counters (name, value) VALUES ($1, 1)
		 ON CONFLICT (name) DO UPDATE SET value = counters.value + 1
		 RETURNING value`,
		name,
	).Scan(&value)
	if err != nil {
		return "", apperror.Internal(err)
	}
	return fmt.Sprintf("%s-%06d", prefix, value), nil
}
