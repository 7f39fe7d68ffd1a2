package agent

import (
	"time"

	"github.com/NordCoder/Careline/internal/domain/schedule"
)

type Policy struct {
	PeriodicInterval    time.Duration
	InactivityThreshold time.Duration
}

// Evaluate decides what, if anything, is due on this tick. It is a pure
// function of the clock, the last-checkin marker and the persisted
// schedule state; the caller owns persisting any state change.
//
// A nil lastCheckin (no check-in has ever happened) counts as infinitely
// inactive: the very first tick is eligible for an inactivity alert,
// which is then debounced like any other.
//
// Inactivity wins over periodic when both are due, so a long-silent user
// gets the urgent message, not both.
func Evaluate(now time.Time, lastCheckin *time.Time, st schedule.State, p Policy) schedule.Decision {
	inactive := lastCheckin == nil || now.Sub(*lastCheckin) >= p.InactivityThreshold
	if inactive {
		if st.LastInactivityAlertAt == nil || now.Sub(*st.LastInactivityAlertAt) >= p.InactivityThreshold {
			return schedule.InactivityDue
		}
	}

	// A periodic nudge is due only when the user has been quiet for a
	// full interval and we have not nudged within that interval either.
	// Computing against the marker means a fresh check-in suppresses a
	// reminder that was scheduled off the old marker.
	quiet := lastCheckin == nil || now.Sub(*lastCheckin) >= p.PeriodicInterval
	if quiet {
		if st.LastPeriodicAt == nil || now.Sub(*st.LastPeriodicAt) >= p.PeriodicInterval {
			return schedule.PeriodicDue
		}
	}

	return schedule.Idle
}

// Advance returns the state after a successful dispatch for decision d.
// An inactivity alert also refreshes the periodic marker so the next
// tick does not immediately follow the alert with a routine nudge.
func Advance(st schedule.State, d schedule.Decision, now time.Time) schedule.State {
	t := now
	switch d {
	case schedule.PeriodicDue:
		st.LastPeriodicAt = &t
	case schedule.InactivityDue:
		st.LastInactivityAlertAt = &t
		st.LastPeriodicAt = &t
	}
	return st
}
