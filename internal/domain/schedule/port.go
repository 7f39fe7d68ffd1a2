package schedule

import (
	"context"
	"time"
)

type Repo interface {
	// Load returns the persisted state, or a zero State if none was
	// ever saved.
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, st State) error
}

type Clock interface {
	Now() time.Time
}
