package events

import (
	"context"
	"log/slog"
)

// LoggingPublisher wraps a Publisher so that delivery failures are logged
// instead of failing the command that triggered them.
type LoggingPublisher struct {
	next   Publisher
	logger *slog.Logger
}

// NewLoggingPublisher returns a LoggingPublisher around next. A nil logger
// uses slog.Default().
func NewLoggingPublisher(next Publisher, logger *slog.Logger) *LoggingPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingPublisher{next: next, logger: logger}
}

// Publish forwards the event and always returns nil.
func (p *LoggingPublisher) Publish(ctx context.Context, topic string, event any) error {
	if err := p.next.Publish(ctx, topic, event); err != nil {
		p.logger.Warn("event not published", "topic", topic, "err", err)
		return nil
	}
	p.logger.Debug("event published", "topic", topic)
	return nil
}

func (p *LoggingPublisher) Close() error {
	return p.next.Close()
}
