package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/NordCoder/Careline/internal/compose"
	"github.com/NordCoder/Careline/internal/domain/checkin"
	"github.com/NordCoder/Careline/internal/domain/notification"
	"github.com/NordCoder/Careline/internal/domain/schedule"
	"github.com/NordCoder/Careline/internal/obs"
	"github.com/NordCoder/Careline/internal/obs/retry"
	"github.com/NordCoder/Careline/internal/repository/postgres"
)

// Submission is the decoded check-in event from the chat UI.
type Submission struct {
	Timestamp    time.Time
	Mood         string
	ResponseText string
	Analysis     string
}

// Handler records submitted check-ins: the record append and the marker
// advance happen in one transaction, so the agent never observes a
// marker without its record. When a check-in ends a long absence it also
// greets the user with a welcome-back message.
type Handler struct {
	Store    checkin.Repo
	Tx       postgres.Transactor
	Notifs   notification.Repo   // nil disables the action log
	Composer *compose.Composer
	Out      notification.Sender // nil when mail is disabled
	Clock    schedule.Clock

	WelcomeBackAfter time.Duration
	Window           int
	Log              *zap.Logger
}

func (h *Handler) HandleSubmission(ctx context.Context, sub Submission) error {
	log := obs.WithTrace(ctx, h.Log)

	if strings.TrimSpace(sub.Mood) == "" && strings.TrimSpace(sub.ResponseText) == "" {
		log.Warn("empty submission; skipped")
		return nil
	}
	ts := sub.Timestamp
	if ts.IsZero() {
		ts = h.Clock.Now()
	}

	prev, err := h.Store.LastCheckinTime(ctx)
	if err != nil {
		return fmt.Errorf("last checkin: %w", err)
	}

	rec := &checkin.Checkin{
		Timestamp:    ts.UTC(),
		Mood:         sub.Mood,
		ResponseText: sub.ResponseText,
		Analysis:     sub.Analysis,
	}
	if err := retry.Do(ctx, func() error {
		return h.Tx.WithTx(ctx, func(txCtx context.Context) error {
			if err := h.Store.Append(txCtx, rec); err != nil {
				return fmt.Errorf("append checkin: %w", err)
			}
			if err := h.Store.MarkCheckin(txCtx, rec.Timestamp); err != nil {
				return fmt.Errorf("mark checkin: %w", err)
			}
			return nil
		})
	}, retry.StorePolicy(log)); err != nil {
		return err
	}

	log.Info("checkin recorded",
		zap.Time("ts", rec.Timestamp),
		zap.String("mood", rec.Mood),
	)

	if prev != nil && rec.Timestamp.Sub(*prev) >= h.WelcomeBackAfter {
		h.welcomeBack(ctx, *prev, log)
	}
	return nil
}

// welcomeBack is best-effort: a failed greeting never fails the ingest,
// the check-in is already durable.
func (h *Handler) welcomeBack(ctx context.Context, prev time.Time, log *zap.Logger) {
	if h.Out == nil {
		log.Info("welcome-back skipped, disabled", zap.Time("previous_checkin", prev))
		return
	}

	now := h.Clock.Now()
	history, err := h.Store.RecentHistory(ctx, h.Window)
	if err != nil {
		log.Warn("history read failed; composing without memory window", zap.Error(err))
		history = nil
	}
	// The greeting references the gap that just ended, not the fresh
	// record that ended it.
	if len(history) > 0 {
		history = history[:len(history)-1]
	}

	payload := h.Composer.Compose(ctx, notification.KindWelcomeBack, history, now)
	if err := h.Out.Send(ctx, payload); err != nil {
		log.Warn("welcome-back send failed", zap.Error(err))
		return
	}

	if h.Notifs != nil {
		n := &notification.Notification{
			Kind:    payload.Kind,
			Subject: payload.Subject,
			SentAt:  now.UTC(),
			Payload: payload.Body,
		}
		if err := h.Notifs.Create(ctx, n); err != nil {
			log.Warn("notification log write failed", zap.Error(err))
		}
	}
	log.Info("welcome-back sent", zap.Duration("absence", now.Sub(prev)))
}
