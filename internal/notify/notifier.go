// Package notify delivers domain events to the chat gateway.
package notify

import (
	"context"

	"go.uber.org/zap"
)

//go:generate mockgen -destination=mock/mock_notifier.go -package=mock github.com/smallbiznis/civitas/internal/notify Notifier

// Notifier publishes an event. Callers treat failures as non-fatal.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

type NoOpNotifier struct{}

func (NoOpNotifier) Notify(ctx context.Context, event Event) error {
	return nil
}

// LogNotifier writes events to the log instead of a queue.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log.Named("notify")}
}

func (n *LogNotifier) Notify(ctx context.Context, event Event) error {
	n.log.Info("event",
		zap.String("type", string(event.Type)),
		zap.String("guild_id", event.GuildID),
		zap.Time("occurred_at", event.OccurredAt),
		zap.Any("payload", payloadOf(event)),
	)
	return nil
}

func payloadOf(event Event) any {
	switch {
	case event.Record != nil:
		return event.Record
	case event.Settlement != nil:
		return event.Settlement
	case event.Outstanding != nil:
		return event.Outstanding
	case event.Reminder != nil:
		return event.Reminder
	}
	return nil
}
