package kafka

import (
	"context"
	"encoding/json"
	"fmt"
)

// JSONHandler decodes each message value into T before calling fn.
// Undecodable messages are reported once and committed; redelivering
// them would poison the consumer.
func JSONHandler[T any](onDecodeErr func(err error), fn func(ctx context.Context, key []byte, ev *T) error) Handler {
	return func(ctx context.Context, key, value []byte) error {
		var ev T
		if err := json.Unmarshal(value, &ev); err != nil {
			if onDecodeErr != nil {
				onDecodeErr(fmt.Errorf("decode event: %w", err))
			}
			return nil
		}
		return fn(ctx, key, &ev)
	}
}
