package notification

import "time"

type Kind string

const (
	KindPeriodic        Kind = "periodic"
	KindInactivityAlert Kind = "inactivity_alert"
	KindWelcomeBack     Kind = "welcome_back"
)

// Payload is a composed message ready for dispatch. It is created fresh
// per send attempt and persisted only as a Notification row afterwards.
type Payload struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Kind    Kind   `json:"kind"`
}

// Notification is the durable record of a dispatched payload. The
// notifications table doubles as the agent's action log.
type Notification struct {
	ID      int64     `json:"id"`
	Kind    Kind      `json:"kind"`
	Subject string    `json:"subject"`
	SentAt  time.Time `json:"sent_at"`
	Payload string    `json:"payload"`
}
