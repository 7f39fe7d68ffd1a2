package schedule

import "time"

// State carries the debounce markers for the agent loop. Nil means the
// corresponding send has never happened. State advances only after a
// successful dispatch, so a failed send is retried on the next tick.
type State struct {
	LastPeriodicAt        *time.Time `json:"last_periodic_at"`
	LastInactivityAlertAt *time.Time `json:"last_inactivity_alert_at"`
}

type Decision int

const (
	Idle Decision = iota
	PeriodicDue
	InactivityDue
)

func (d Decision) String() string {
	switch d {
	case PeriodicDue:
		return "periodic_due"
	case InactivityDue:
		return "inactivity_due"
	default:
		return "idle"
	}
}
