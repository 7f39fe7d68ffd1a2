package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/NordCoder/Careline/internal/domain/checkin"
)

var _ checkin.Repo = (*CheckinRepoImpl)(nil)

type CheckinRepoImpl struct {
	db *DB
}

func NewCheckinRepo(db *DB) *CheckinRepoImpl { return &CheckinRepoImpl{db: db} }

const (
	qCheckinInsert = `
INSERT INTO checkins (ts, mood, response_text, analysis)
VALUES ($1, $2, $3, $4)
RETURNING id;
`

	qLastCheckin = `SELECT ts FROM last_checkin WHERE id = 1;`

	// Monotone upsert: an older timestamp never regresses the marker.
	qMarkCheckin = `
INSERT INTO last_checkin (id, ts)
VALUES (1, $1)
ON CONFLICT (id) DO UPDATE SET ts = GREATEST(last_checkin.ts, EXCLUDED.ts);
`

	qRecentHistory = `
SELECT id, ts, mood, response_text, analysis
FROM (
    SELECT id, ts, mood, response_text, analysis
    FROM checkins
    ORDER BY id DESC
    LIMIT $1
) recent
ORDER BY id ASC;
`
)

func (r *CheckinRepoImpl) Append(ctx context.Context, c *checkin.Checkin) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	eq := r.db.execQueryer(ctx)
	if err := eq.QueryRow(ctx, qCheckinInsert,
		c.Timestamp.UTC(), c.Mood, c.ResponseText, c.Analysis,
	).Scan(&c.ID); err != nil {
		return fmt.Errorf("insert checkin: %w", mapPgError(err))
	}
	return nil
}

func (r *CheckinRepoImpl) LastCheckinTime(ctx context.Context) (*time.Time, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	eq := r.db.execQueryer(ctx)
	var ts time.Time
	if err := eq.QueryRow(ctx, qLastCheckin).Scan(&ts); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("last checkin: %w", err)
	}
	return &ts, nil
}

func (r *CheckinRepoImpl) MarkCheckin(ctx context.Context, t time.Time) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	eq := r.db.execQueryer(ctx)
	if _, err := eq.Exec(ctx, qMarkCheckin, t.UTC()); err != nil {
		return fmt.Errorf("mark checkin: %w", err)
	}
	return nil
}

func (r *CheckinRepoImpl) RecentHistory(ctx context.Context, n int) ([]*checkin.Checkin, error) {
	if n <= 0 {
		return nil, nil
	}
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, qRecentHistory, n)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []*checkin.Checkin
	for rows.Next() {
		var c checkin.Checkin
		if err := rows.Scan(&c.ID, &c.Timestamp, &c.Mood, &c.ResponseText, &c.Analysis); err != nil {
			return nil, fmt.Errorf("scan checkin: %w", err)
		}
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}
