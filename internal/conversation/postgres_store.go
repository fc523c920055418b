package conversation

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/wolfman30/review-collector/internal/review"
)

// PgxPool is the subset of pgxpool.Pool the store needs.
type PgxPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists conversation state in Postgres. Per-contact
// serialization comes from the row lock taken by the upsert: concurrent
// transitions for the same contact queue on that lock while different
// contacts touch different rows.
type PostgresStore struct {
	pool PgxPool
}

// NewPostgresStore initializes a store backed by pgxpool.
func NewPostgresStore(pool PgxPool) *PostgresStore {
	if pool == nil {
		panic("conversation: pgx pool required")
	}
	return &PostgresStore{pool: pool}
}

// Transition implements Store.
func (s *PostgresStore) Transition(ctx context.Context, contactNumber string, fn TransitionFunc) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("conversation: begin transition: %w", err)
	}
	if err := s.transitionTx(ctx, tx, contactNumber, fn); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("conversation: commit transition: %w", err)
	}
	return nil
}

func (s *PostgresStore) transitionTx(ctx context.Context, tx pgx.Tx, contactNumber string, fn TransitionFunc) error {
	// The no-op DO UPDATE locks an existing row for the rest of the
	// transaction, so the read-mutate-write below is serialized per contact.
	query := `
		INSERT INTO conversation_states (contact_number, step)
		VALUES ($1, 'product')
		ON CONFLICT (contact_number)
		DO UPDATE SET contact_number = EXCLUDED.contact_number
		RETURNING step, COALESCE(product_name, ''), COALESCE(user_name, ''), updated_at
	`
	state := State{ContactNumber: contactNumber}
	var rawStep string
	if err := tx.QueryRow(ctx, query, contactNumber).Scan(&rawStep, &state.ProductName, &state.UserName, &state.UpdatedAt); err != nil {
		return fmt.Errorf("conversation: lock state: %w", err)
	}
	step, err := ParseStep(rawStep)
	if err != nil {
		return fmt.Errorf("conversation: stored state for %s: %w", contactNumber, err)
	}
	state.Step = step

	outcome, err := fn(&state)
	if err != nil {
		return err
	}

	// A completed review is written through the same transaction, so the
	// insert and the state delete commit or roll back together.
	if outcome.review != nil {
		if _, err := review.NewPostgresStore(tx).Insert(ctx, *outcome.review); err != nil {
			return fmt.Errorf("conversation: store review: %w", err)
		}
	}

	if outcome.deleteState {
		if _, err := tx.Exec(ctx, `DELETE FROM conversation_states WHERE contact_number = $1`, contactNumber); err != nil {
			return fmt.Errorf("conversation: delete state: %w", err)
		}
	} else {
		update := `
			UPDATE conversation_states
			SET step = $2, product_name = NULLIF($3, ''), user_name = NULLIF($4, ''), updated_at = now()
			WHERE contact_number = $1
		`
		if _, err := tx.Exec(ctx, update, contactNumber, string(state.Step), state.ProductName, state.UserName); err != nil {
			return fmt.Errorf("conversation: save state: %w", err)
		}
	}
	return nil
}

// Reset implements Store. The single upsert makes the reset atomic: the
// fresh state and the discarded fields become visible together.
func (s *PostgresStore) Reset(ctx context.Context, contactNumber string) error {
	query := `
		INSERT INTO conversation_states (contact_number, step)
		VALUES ($1, 'product')
		ON CONFLICT (contact_number)
		DO UPDATE SET step = 'product', product_name = NULL, user_name = NULL, updated_at = now()
	`
	if _, err := s.pool.Exec(ctx, query, contactNumber); err != nil {
		return fmt.Errorf("conversation: reset state: %w", err)
	}
	return nil
}

// Delete implements Store.
func (s *PostgresStore) Delete(ctx context.Context, contactNumber string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM conversation_states WHERE contact_number = $1`, contactNumber); err != nil {
		return fmt.Errorf("conversation: delete state: %w", err)
	}
	return nil
}
