package notification

import "context"

type Repo interface {
	Create(ctx context.Context, n *Notification) error
	ListRecent(ctx context.Context, limit int) ([]*Notification, error)
}

// Sender is the outbound mail boundary. Implementations must bound the
// send with a timeout; a timeout counts as a send failure.
type Sender interface {
	Send(ctx context.Context, payload Payload) error
}

// Events is the optional egress stream of dispatched notifications.
type Events interface {
	PublishNotificationSent(ctx context.Context, n *Notification) error
}
