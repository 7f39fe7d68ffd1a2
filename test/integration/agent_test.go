//go:build integration

package integration

import (
	"strings"
	"testing"
	"time"
)

// The compose environment runs the agent with a short tick (SCHED_TICK)
// so a due decision lands within the wait below.
func TestAgent_InactivityAlertOnEmptyStore(t *testing.T) {
	cfg := LoadCfg()
	MailhogPurge(t, cfg.MailhogAPI)
	WaitHealthz(t, cfg.AgentHealthURL, 60*time.Second)

	db := DBOpen(t, cfg.DBDSN)
	defer db.Close()
	PurgeState(t, db)

	// No check-ins at all reads as an unbounded absence, so the very
	// next tick raises the alert.
	rep := WaitMailhogCount(t, cfg.MailhogAPI, 1, 30*time.Second)
	if len(rep.Items) == 0 {
		t.Fatalf("no mail")
	}
	subj := ""
	if v, ok := rep.Items[0].Content.Headers["Subject"]; ok && len(v) > 0 {
		subj = v[0]
	}
	if !strings.Contains(subj, "We Miss You") {
		t.Fatalf("bad subject: %q", subj)
	}

	ok, payload := FindNotification(t, db, "inactivity_alert")
	if !ok || payload == "" {
		t.Fatalf("notification not stored")
	}

	// The alert debounces: no second mail inside the threshold window.
	MailhogPurge(t, cfg.MailhogAPI)
	ExpectNoMailhog(t, cfg.MailhogAPI, 8*time.Second)
}

func TestAgent_RecentCheckinKeepsQuiet(t *testing.T) {
	cfg := LoadCfg()
	MailhogPurge(t, cfg.MailhogAPI)
	WaitHealthz(t, cfg.AgentHealthURL, 60*time.Second)

	db := DBOpen(t, cfg.DBDSN)
	defer db.Close()
	PurgeState(t, db)
	SeedCheckin(t, db, time.Now().UTC().Add(-10*time.Minute), "calm", "just checked in")

	ExpectNoMailhog(t, cfg.MailhogAPI, 10*time.Second)
}
