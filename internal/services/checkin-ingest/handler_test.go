package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/NordCoder/Careline/internal/compose"
	"github.com/NordCoder/Careline/internal/domain/checkin"
	"github.com/NordCoder/Careline/internal/domain/notification"
)

type memStore struct {
	records   []*checkin.Checkin
	marker    *time.Time
	appendErr error
}

func (s *memStore) Append(_ context.Context, c *checkin.Checkin) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	c.ID = int64(len(s.records) + 1)
	s.records = append(s.records, c)
	return nil
}

func (s *memStore) LastCheckinTime(context.Context) (*time.Time, error) {
	return s.marker, nil
}

func (s *memStore) RecentHistory(_ context.Context, n int) ([]*checkin.Checkin, error) {
	if len(s.records) > n {
		return s.records[len(s.records)-n:], nil
	}
	return s.records, nil
}

func (s *memStore) MarkCheckin(_ context.Context, t time.Time) error {
	if s.marker == nil || t.After(*s.marker) {
		s.marker = &t
	}
	return nil
}

type passTx struct{ calls int }

func (t *passTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

type memSender struct {
	sent []notification.Payload
	err  error
}

func (s *memSender) Send(_ context.Context, p notification.Payload) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, p)
	return nil
}

type memNotifs struct{ rows []*notification.Notification }

func (n *memNotifs) Create(_ context.Context, row *notification.Notification) error {
	n.rows = append(n.rows, row)
	return nil
}

func (n *memNotifs) ListRecent(_ context.Context, limit int) ([]*notification.Notification, error) {
	if len(n.rows) > limit {
		return n.rows[:limit], nil
	}
	return n.rows, nil
}

type stoppedClock struct{ t time.Time }

func (c *stoppedClock) Now() time.Time { return c.t }

func newTestHandler(store *memStore, out *memSender, now time.Time) (*Handler, *passTx, *memNotifs) {
	tx := &passTx{}
	notifs := &memNotifs{}
	h := &Handler{
		Store:            store,
		Tx:               tx,
		Notifs:           notifs,
		Composer:         &compose.Composer{Log: zap.NewNop()},
		Clock:            &stoppedClock{t: now},
		WelcomeBackAfter: 12 * time.Hour,
		Window:           3,
		Log:              zap.NewNop(),
	}
	if out != nil {
		h.Out = out
	}
	return h, tx, notifs
}

func TestHandleSubmissionAppendsAndAdvancesMarker(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	store := &memStore{}
	h, tx, _ := newTestHandler(store, &memSender{}, now)

	err := h.HandleSubmission(context.Background(), Submission{
		Timestamp:    now,
		Mood:         "happy",
		ResponseText: "good morning",
	})
	require.NoError(t, err)

	require.Len(t, store.records, 1)
	assert.Equal(t, "happy", store.records[0].Mood)
	require.NotNil(t, store.marker)
	assert.Equal(t, now, *store.marker)
	assert.Equal(t, 1, tx.calls, "record and marker share one transaction")
}

func TestHandleSubmissionFillsZeroTimestamp(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	store := &memStore{}
	h, _, _ := newTestHandler(store, nil, now)

	require.NoError(t, h.HandleSubmission(context.Background(), Submission{Mood: "calm"}))
	require.Len(t, store.records, 1)
	assert.Equal(t, now, store.records[0].Timestamp)
}

func TestHandleSubmissionSkipsEmptyEvent(t *testing.T) {
	store := &memStore{}
	h, tx, _ := newTestHandler(store, nil, time.Now().UTC())

	require.NoError(t, h.HandleSubmission(context.Background(), Submission{Mood: "  ", ResponseText: "\n"}))
	assert.Empty(t, store.records)
	assert.Zero(t, tx.calls)
}

func TestHandleSubmissionGreetsAfterLongAbsence(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	prev := now.Add(-13 * time.Hour)
	store := &memStore{marker: &prev}
	store.records = []*checkin.Checkin{{ID: 1, Timestamp: prev, Mood: "tired"}}
	out := &memSender{}
	h, _, notifs := newTestHandler(store, out, now)

	err := h.HandleSubmission(context.Background(), Submission{Timestamp: now, Mood: "happy"})
	require.NoError(t, err)

	require.Len(t, out.sent, 1)
	assert.Equal(t, notification.KindWelcomeBack, out.sent[0].Kind)
	assert.Contains(t, out.sent[0].Body, "13 hours")
	require.Len(t, notifs.rows, 1)
	assert.Equal(t, notification.KindWelcomeBack, notifs.rows[0].Kind)
}

func TestHandleSubmissionShortGapStaysQuiet(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	prev := now.Add(-time.Hour)
	store := &memStore{marker: &prev}
	out := &memSender{}
	h, _, _ := newTestHandler(store, out, now)

	require.NoError(t, h.HandleSubmission(context.Background(), Submission{Timestamp: now, Mood: "good"}))
	assert.Empty(t, out.sent)
}

func TestHandleSubmissionFirstCheckinStaysQuiet(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	out := &memSender{}
	h, _, _ := newTestHandler(&memStore{}, out, now)

	require.NoError(t, h.HandleSubmission(context.Background(), Submission{Timestamp: now, Mood: "good"}))
	assert.Empty(t, out.sent, "no previous marker means nothing to welcome back from")
}

func TestHandleSubmissionWelcomeBackDisabled(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	prev := now.Add(-24 * time.Hour)
	store := &memStore{marker: &prev}
	h, _, notifs := newTestHandler(store, nil, now)

	require.NoError(t, h.HandleSubmission(context.Background(), Submission{Timestamp: now, Mood: "ok"}))
	require.Len(t, store.records, 1, "ingest itself is unaffected")
	assert.Empty(t, notifs.rows)
}

func TestHandleSubmissionSendFailureNeverFailsIngest(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	prev := now.Add(-24 * time.Hour)
	store := &memStore{marker: &prev}
	out := &memSender{err: errors.New("smtp down")}
	h, _, notifs := newTestHandler(store, out, now)

	require.NoError(t, h.HandleSubmission(context.Background(), Submission{Timestamp: now, Mood: "ok"}))
	require.Len(t, store.records, 1)
	assert.Empty(t, notifs.rows, "nothing logged when the greeting never went out")
}

func TestHandleSubmissionMarkerNeverRegresses(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := &memStore{}
	h, _, _ := newTestHandler(store, nil, now)

	require.NoError(t, h.HandleSubmission(context.Background(), Submission{Timestamp: now, Mood: "good"}))
	// A late-arriving older event keeps the newer marker.
	require.NoError(t, h.HandleSubmission(context.Background(), Submission{Timestamp: now.Add(-2 * time.Hour), Mood: "ok"}))

	require.NotNil(t, store.marker)
	assert.Equal(t, now, *store.marker)
	assert.Len(t, store.records, 2)
}
