package repo

import (
	"context"
	"time"

	"github.com/NordCoder/Careline/internal/domain/checkin"
	"github.com/NordCoder/Careline/internal/domain/notification"
	"github.com/NordCoder/Careline/internal/domain/schedule"
)

type CheckinReader struct{ R checkin.Repo }
type ScheduleStore struct{ R schedule.Repo }
type NotificationLog struct{ R notification.Repo }

func (a CheckinReader) LastCheckinTime(ctx context.Context) (*time.Time, error) {
	return a.R.LastCheckinTime(ctx)
}

func (a CheckinReader) RecentHistory(ctx context.Context, n int) ([]*checkin.Checkin, error) {
	return a.R.RecentHistory(ctx, n)
}

func (a ScheduleStore) Load(ctx context.Context) (schedule.State, error) {
	return a.R.Load(ctx)
}

func (a ScheduleStore) Save(ctx context.Context, st schedule.State) error {
	return a.R.Save(ctx, st)
}

func (a NotificationLog) Create(ctx context.Context, n *notification.Notification) error {
	return a.R.Create(ctx, n)
}
