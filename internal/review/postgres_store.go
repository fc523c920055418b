package review

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgxpool.Pool the store needs.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore stores reviews in the relational database.
type PostgresStore struct {
	pool Querier
}

// NewPostgresStore initializes a store backed by pgxpool.
func NewPostgresStore(pool Querier) *PostgresStore {
	if pool == nil {
		panic("review: pgx pool required")
	}
	return &PostgresStore{pool: pool}
}

// Insert stores a new review row.
func (s *PostgresStore) Insert(ctx context.Context, rec Review) (Review, error) {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO reviews (id, contact_number, user_name, product_name, product_review, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := s.pool.Exec(ctx, query,
		rec.ID,
		rec.ContactNumber,
		rec.UserName,
		rec.ProductName,
		rec.Body,
		rec.CreatedAt,
	); err != nil {
		return Review{}, fmt.Errorf("review: insert failed: %w", err)
	}
	return rec, nil
}

// ListAll returns reviews newest first. The id tiebreak keeps the order
// stable when timestamps collide.
func (s *PostgresStore) ListAll(ctx context.Context) ([]Review, error) {
	query := `
		SELECT id, contact_number, user_name, product_name, product_review, created_at
		FROM reviews
		ORDER BY created_at DESC, id DESC
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("review: list failed: %w", err)
	}
	defer rows.Close()

	var out []Review
	for rows.Next() {
		var rec Review
		if err := rows.Scan(
			&rec.ID,
			&rec.ContactNumber,
			&rec.UserName,
			&rec.ProductName,
			&rec.Body,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("review: scan failed: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
