package kafka

import (
	"context"
	"time"

	"aspen/config"
)

type (
	MessageWriter = messageWriter
	MessageReader = messageReader
)

// NewForTest builds a client over in-memory IO that never sleeps.
func NewForTest(cfg *config.Config, writer MessageWriter, newReader func(groupID, topic string) MessageReader) Client {
	client := newClient(cfg, writer, newReader)
	client.sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }

	return client
}
