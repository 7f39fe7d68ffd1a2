package checkin

import (
	"context"
	"time"
)

type Repo interface {
	Append(ctx context.Context, c *Checkin) error
	// LastCheckinTime returns nil before the first-ever check-in.
	LastCheckinTime(ctx context.Context) (*time.Time, error)
	// RecentHistory returns up to the last n records in chronological order.
	RecentHistory(ctx context.Context, n int) ([]*Checkin, error)
	// MarkCheckin advances the last-checkin marker. A timestamp at or
	// before the current marker is a no-op: the marker never regresses.
	MarkCheckin(ctx context.Context, t time.Time) error
}
