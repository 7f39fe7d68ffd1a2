package agent

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/NordCoder/Careline/internal/compose"
	"github.com/NordCoder/Careline/internal/domain/checkin"
	"github.com/NordCoder/Careline/internal/domain/notification"
	"github.com/NordCoder/Careline/internal/domain/schedule"
	"github.com/NordCoder/Careline/internal/obs"
	"github.com/NordCoder/Careline/internal/obs/retry"
)

type CheckinReader interface {
	LastCheckinTime(ctx context.Context) (*time.Time, error)
	RecentHistory(ctx context.Context, n int) ([]*checkin.Checkin, error)
}

type ScheduleStore interface {
	Load(ctx context.Context) (schedule.State, error)
	Save(ctx context.Context, st schedule.State) error
}

type NotificationLog interface {
	Create(ctx context.Context, n *notification.Notification) error
}

// Usecase runs one evaluation cycle per call. Errors are contained in
// the tick: a store failure skips the tick, a send failure leaves the
// schedule state untouched so the next due tick retries.
type Usecase struct {
	Checkins CheckinReader
	Schedule ScheduleStore
	Notifs   NotificationLog
	Composer *compose.Composer
	Out      notification.Sender // nil when notifications are disabled
	Events   notification.Events // nil when the egress stream is off
	Clock    schedule.Clock
	Policy   Policy
	Window   int
	Log      *zap.Logger
}

type TickResult struct {
	Decision schedule.Decision
	Sent     bool
	Skipped  bool
}

// Preflight reads the primary persisted state once. Run at startup,
// before the first tick: an unreadable store there is fatal, whereas
// the same failure mid-loop only skips a tick.
func (u *Usecase) Preflight(ctx context.Context) error {
	if _, err := u.Checkins.LastCheckinTime(ctx); err != nil {
		return fmt.Errorf("last checkin: %w", err)
	}
	if _, err := u.Schedule.Load(ctx); err != nil {
		return fmt.Errorf("load schedule state: %w", err)
	}
	return nil
}

func (u *Usecase) Tick(ctx context.Context) (TickResult, error) {
	tr := otel.Tracer("agent.uc")
	ctx, span := tr.Start(ctx, "agent.tick")
	defer span.End()

	now := u.Clock.Now()

	last, err := u.Checkins.LastCheckinTime(ctx)
	if err != nil {
		span.RecordError(err)
		return TickResult{}, fmt.Errorf("last checkin: %w", err)
	}
	st, err := u.Schedule.Load(ctx)
	if err != nil {
		span.RecordError(err)
		return TickResult{}, fmt.Errorf("load schedule state: %w", err)
	}

	d := Evaluate(now, last, st, u.Policy)
	span.SetAttributes(attribute.String("tick.decision", d.String()))
	if d == schedule.Idle {
		return TickResult{Decision: d}, nil
	}

	log := obs.WithTrace(ctx, u.Log)

	history, err := u.Checkins.RecentHistory(ctx, u.Window)
	if err != nil {
		// Personalization is best-effort; the reminder still goes out.
		log.Warn("history read failed; composing without memory window", zap.Error(err))
		history = nil
	}

	kind := notification.KindPeriodic
	if d == schedule.InactivityDue {
		kind = notification.KindInactivityAlert
	}
	payload := u.Composer.Compose(ctx, kind, history, now)

	if u.Out == nil {
		log.Info("send skipped, disabled",
			zap.String("decision", d.String()),
			zap.String("subject", payload.Subject),
		)
		if err := u.Schedule.Save(ctx, Advance(st, d, now)); err != nil {
			span.RecordError(err)
			return TickResult{Decision: d, Skipped: true}, fmt.Errorf("save schedule state: %w", err)
		}
		return TickResult{Decision: d, Skipped: true}, nil
	}

	if err := u.Out.Send(ctx, payload); err != nil {
		span.RecordError(err)
		// State deliberately untouched: the next tick retries.
		return TickResult{Decision: d}, fmt.Errorf("send %s: %w", kind, err)
	}

	if err := u.Schedule.Save(ctx, Advance(st, d, now)); err != nil {
		span.RecordError(err)
		log.Error("schedule state not saved; a duplicate send is possible", zap.Error(err))
		return TickResult{Decision: d, Sent: true}, fmt.Errorf("save schedule state: %w", err)
	}

	n := &notification.Notification{
		Kind:    payload.Kind,
		Subject: payload.Subject,
		SentAt:  now.UTC(),
		Payload: payload.Body,
	}
	if err := u.Notifs.Create(ctx, n); err != nil {
		log.Warn("notification log write failed", zap.Error(err))
	}

	if u.Events != nil {
		if err := retry.Do(ctx, func() error {
			return u.Events.PublishNotificationSent(ctx, n)
		}, retry.PublishPolicy(log)); err != nil {
			log.Warn("notification event not published", zap.Error(err))
		}
	}

	log.Info("notification sent",
		zap.String("decision", d.String()),
		zap.String("kind", string(payload.Kind)),
		zap.String("subject", payload.Subject),
	)
	return TickResult{Decision: d, Sent: true}, nil
}
