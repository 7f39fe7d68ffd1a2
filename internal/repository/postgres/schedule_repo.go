package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/NordCoder/Careline/internal/domain/schedule"
)

var _ schedule.Repo = (*ScheduleRepoImpl)(nil)

// ScheduleRepoImpl persists the single-row schedule state so a restart
// does not re-fire alerts the agent already sent.
type ScheduleRepoImpl struct {
	db *DB
}

func NewScheduleRepo(db *DB) *ScheduleRepoImpl { return &ScheduleRepoImpl{db: db} }

const (
	qScheduleLoad = `
SELECT last_periodic_at, last_inactivity_alert_at
FROM schedule_state
WHERE id = 1;
`

	qScheduleSave = `
INSERT INTO schedule_state (id, last_periodic_at, last_inactivity_alert_at)
VALUES (1, $1, $2)
ON CONFLICT (id) DO UPDATE
SET last_periodic_at = EXCLUDED.last_periodic_at,
    last_inactivity_alert_at = EXCLUDED.last_inactivity_alert_at;
`
)

func (r *ScheduleRepoImpl) Load(ctx context.Context) (schedule.State, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var st schedule.State
	err := r.db.Pool.QueryRow(ctx, qScheduleLoad).Scan(&st.LastPeriodicAt, &st.LastInactivityAlertAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schedule.State{}, nil
		}
		return schedule.State{}, fmt.Errorf("load schedule state: %w", err)
	}
	return st, nil
}

func (r *ScheduleRepoImpl) Save(ctx context.Context, st schedule.State) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if _, err := r.db.Pool.Exec(ctx, qScheduleSave, st.LastPeriodicAt, st.LastInactivityAlertAt); err != nil {
		return fmt.Errorf("save schedule state: %w", err)
	}
	return nil
}
