package events

import (
	"context"
	"log/slog"
)

// ChannelSink buffers events on a channel for asynchronous publishing. When
// the buffer is full the event is dropped; delivery is best-effort and must
// never stall an issuance.
type ChannelSink struct {
	inbox  chan Event
	logger *slog.Logger
}

func NewChannelSink(buffer int, logger *slog.Logger) *ChannelSink {
	return &ChannelSink{
		inbox:  make(chan Event, buffer),
		logger: logger,
	}
}

func (c *ChannelSink) Emit(ctx context.Context, event Event) error {
	select {
	case c.inbox <- event:
	default:
		if c.logger != nil {
			c.logger.WarnContext(ctx, "event buffer full, dropping event",
				"event", event.Name,
				"event_id", event.ID,
			)
		}
	}
	return nil
}

// Worker drains a ChannelSink into a downstream sink. It keeps broker
// publishing off the request path.
type Worker struct {
	source *ChannelSink
	sink   Sink
}

func NewWorker(source *ChannelSink, sink Sink) *Worker {
	return &Worker{source: source, sink: sink}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.source.inbox:
			if err := w.sink.Emit(ctx, event); err != nil && w.source.logger != nil {
				w.source.logger.WarnContext(ctx, "event publish failed",
					"event", event.Name,
					"error", err,
				)
			}
		}
	}
}
