package queue

import (
	"context"

	"github.com/yanqian/smart-faq/internal/domain/analytics"
)

// Handler consumes one job. Payload is the JSON encoding of the enqueued value.
type Handler func(ctx context.Context, name string, payload []byte) error

// HandlerQueue supports setting a handler for job delivery.
type HandlerQueue interface {
	analytics.JobQueue
	SetHandler(handler Handler)
	Close() error
}
