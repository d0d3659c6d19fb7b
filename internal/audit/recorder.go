package audit

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// ErrDuplicate signals the assignment was already recorded. Task
// redelivery treats it as success.
var ErrDuplicate = errors.New("audit: assignment already recorded")

// Recorder writes assignments into permission_assignments.
type Recorder struct {
	pool *pgxpool.Pool
}

// NewRecorder returns a Recorder backed by the provided pool.
func NewRecorder(pool *pgxpool.Pool) *Recorder {
	return &Recorder{pool: pool}
}

// Record persists one assignment. The record id is the idempotency key.
func (r *Recorder) Record(ctx context.Context, a Assignment) error {
	if r == nil || r.pool == nil {
		return errors.New("audit: recorder not initialised")
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO permission_assignments (id, actor_id, group_id, audience, added, removed, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.ActorID, a.GroupID, a.Audience, a.Added, a.Removed, a.At)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicate
		}
		return err
	}
	return nil
}
