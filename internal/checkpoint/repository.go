// Package checkpoint persists session score snapshots so a finished or
// interrupted session can be inspected later. The engine calls it as a
// fire-and-forget hook; nothing in the live path depends on it.
package checkpoint

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Robinsstudio/PIX-L/internal/models"
)

// Repository stores session records in Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a checkpoint repository backed by the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveSession upserts a session's ledgers, replacing any earlier snapshot
// of the same session.
func (r *Repository) SaveSession(ctx context.Context, rec models.SessionRecord) error {
	scores, err := json.Marshal(rec.Scores)
	if err != nil {
		return fmt.Errorf("failed to marshal session scores: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO sessions (id, game_id, scores, started_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET scores = EXCLUDED.scores`,
		rec.ID, rec.GameID, scores, rec.StartedAt)
	if err != nil {
		return fmt.Errorf("failed to save session %s: %w", rec.ID, err)
	}
	return nil
}
