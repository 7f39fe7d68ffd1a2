package kafka

import (
	"context"
	"strconv"
	"time"

	"github.com/NordCoder/Careline/internal/domain/notification"
)

// CheckinSubmitted is the ingest event published by the chat UI when the
// user completes a check-in.
type CheckinSubmitted struct {
	Timestamp    time.Time `json:"ts"`
	Mood         string    `json:"mood"`
	ResponseText string    `json:"response_text"`
	Analysis     string    `json:"analysis"`
}

// NotificationSent is the egress event the agent publishes after a
// successful dispatch, for downstream consumers such as the UI timeline.
type NotificationSent struct {
	ID      int64     `json:"id"`
	Kind    string    `json:"kind"`
	Subject string    `json:"subject"`
	SentAt  time.Time `json:"sent_at"`
}

type NotificationEventsKafka struct {
	p *Producer
}

func NewNotificationEventsKafka(p *Producer) *NotificationEventsKafka {
	return &NotificationEventsKafka{p: p}
}

var _ notification.Events = (*NotificationEventsKafka)(nil)

func (e *NotificationEventsKafka) PublishNotificationSent(ctx context.Context, n *notification.Notification) error {
	return e.p.PublishJSON(ctx, KeyFromInt64(n.ID), NotificationSent{
		ID:      n.ID,
		Kind:    string(n.Kind),
		Subject: n.Subject,
		SentAt:  n.SentAt,
	})
}

func KeyFromInt64(id int64) []byte { return []byte(strconv.FormatInt(id, 10)) }
