package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONHandlerDecodesEvent(t *testing.T) {
	var got *CheckinSubmitted
	h := JSONHandler[CheckinSubmitted](nil, func(_ context.Context, key []byte, ev *CheckinSubmitted) error {
		assert.Equal(t, []byte("k1"), key)
		got = ev
		return nil
	})

	err := h(context.Background(), []byte("k1"),
		[]byte(`{"ts":"2025-06-01T09:00:00Z","mood":"happy","response_text":"doing fine"}`))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "happy", got.Mood)
	assert.Equal(t, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC), got.Timestamp)
}

func TestJSONHandlerCommitsMalformedPayload(t *testing.T) {
	var decodeErr error
	called := false
	h := JSONHandler[CheckinSubmitted](func(err error) { decodeErr = err }, func(context.Context, []byte, *CheckinSubmitted) error {
		called = true
		return nil
	})

	// nil error commits the offset; redelivery would poison the consumer.
	err := h(context.Background(), nil, []byte(`{not json`))
	require.NoError(t, err)
	assert.Error(t, decodeErr)
	assert.False(t, called)
}

func TestJSONHandlerPropagatesHandlerError(t *testing.T) {
	want := errors.New("db unavailable")
	h := JSONHandler[CheckinSubmitted](nil, func(context.Context, []byte, *CheckinSubmitted) error {
		return want
	})

	err := h(context.Background(), nil, []byte(`{"mood":"ok"}`))
	assert.ErrorIs(t, err, want)
}

func TestKeyFromInt64(t *testing.T) {
	assert.Equal(t, []byte("42"), KeyFromInt64(42))
}
