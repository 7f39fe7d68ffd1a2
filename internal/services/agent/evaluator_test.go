package agent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NordCoder/Careline/internal/domain/schedule"
)

var testPolicy = Policy{
	PeriodicInterval:    3 * time.Hour,
	InactivityThreshold: 12 * time.Hour,
}

func tp(t time.Time) *time.Time { return &t }

func TestEvaluateFirstRunNoCheckins(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	d := Evaluate(now, nil, schedule.State{}, testPolicy)
	assert.Equal(t, schedule.InactivityDue, d, "zero check-ins counts as infinitely inactive")
}

func TestEvaluateInactivityDebounce(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	st := Advance(schedule.State{}, schedule.InactivityDue, t0)

	assert.Equal(t, schedule.Idle, Evaluate(t0.Add(5*time.Minute), nil, st, testPolicy),
		"no re-alert right after an alert")
	assert.Equal(t, schedule.Idle, Evaluate(t0.Add(11*time.Hour), nil, st, testPolicy))
	assert.Equal(t, schedule.InactivityDue, Evaluate(t0.Add(12*time.Hour), nil, st, testPolicy),
		"a new alert once the debounce window has passed")
}

func TestEvaluatePeriodicCadence(t *testing.T) {
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	last := base
	st := Advance(schedule.State{}, schedule.PeriodicDue, base)

	// Last check-in at T, periodic interval 3h, tick at T+4h.
	now := base.Add(4 * time.Hour)
	d := Evaluate(now, tp(last), st, testPolicy)
	require.Equal(t, schedule.PeriodicDue, d)

	// After a successful send the very next tick is idle again.
	st = Advance(st, d, now)
	assert.Equal(t, schedule.Idle, Evaluate(now.Add(time.Minute), tp(last), st, testPolicy))
}

func TestEvaluateFreshCheckinSuppressesStalePeriodic(t *testing.T) {
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	st := Advance(schedule.State{}, schedule.PeriodicDue, base)

	// The user checked in again at T+1h; at T+3h30m only 2h30m have
	// passed against the fresh marker, so nothing is due — against the
	// stale marker the nudge would have fired.
	fresh := base.Add(time.Hour)
	now := base.Add(3*time.Hour + 30*time.Minute)

	assert.Equal(t, schedule.Idle, Evaluate(now, tp(fresh), st, testPolicy))
	assert.Equal(t, schedule.PeriodicDue, Evaluate(now, tp(base), st, testPolicy))
}

func TestEvaluateInactivityBeatsPeriodic(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	last := now.Add(-13 * time.Hour)

	// Both conditions hold; the urgent one wins.
	d := Evaluate(now, tp(last), schedule.State{}, testPolicy)
	assert.Equal(t, schedule.InactivityDue, d)
}

func TestEvaluateAlertAtMostOncePerWindow(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	st := schedule.State{}

	var alerts []time.Time
	for tick := 0; tick < 48*6; tick++ { // every 10m for 48h
		now := t0.Add(time.Duration(tick) * 10 * time.Minute)
		if d := Evaluate(now, nil, st, testPolicy); d == schedule.InactivityDue {
			alerts = append(alerts, now)
			st = Advance(st, d, now)
		}
	}

	require.Len(t, alerts, 4, "one alert per 12h window over 48h")
	for i := 1; i < len(alerts); i++ {
		assert.GreaterOrEqual(t, alerts[i].Sub(alerts[i-1]), testPolicy.InactivityThreshold)
	}
}

func TestAdvanceInactivityRefreshesPeriodicMarker(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	st := Advance(schedule.State{}, schedule.InactivityDue, now)

	require.NotNil(t, st.LastInactivityAlertAt)
	require.NotNil(t, st.LastPeriodicAt)
	assert.Equal(t, schedule.Idle, Evaluate(now.Add(5*time.Minute), nil, st, testPolicy),
		"no routine nudge right after the alert")
}
