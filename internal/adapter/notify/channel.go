package notify

import (
	"context"
	"log/slog"
)

// Attachment is a named payload delivered along with a notification.
type Attachment struct {
	Name    string
	Content []byte
}

// Channel delivers best-effort messages to an actor over the chat transport.
// Failures are reported to the caller but never roll back committed state.
type Channel interface {
	Notify(ctx context.Context, actorID int64, text string, attachments ...Attachment) error
}

// LogChannel records notifications in the operational log. It stands in for
// the chat transport when none is attached.
type LogChannel struct {
	logger *slog.Logger
}

// NewLogChannel creates a log-backed notification channel.
func NewLogChannel(logger *slog.Logger) *LogChannel {
	return &LogChannel{logger: logger}
}

// Notify writes the notification to the log.
func (c *LogChannel) Notify(_ context.Context, actorID int64, text string, attachments ...Attachment) error {
	c.logger.Info("notification",
		slog.Int64("actor_id", actorID),
		slog.String("text", text),
		slog.Int("attachments", len(attachments)),
	)
	return nil
}
