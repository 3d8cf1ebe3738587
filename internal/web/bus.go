package web

import (
	"context"
	"log/slog"
)

// logBus is the default NotificationBus: emissions are logged at debug
// level so operators can trace provider side effects without a real
// listener attached.
type logBus struct {
	log *slog.Logger
}

func (b *logBus) Emit(event string, payload ...any) {
	b.log.Debug("notification", "event", event, "args", len(payload))
}

// logMailer stands in for a real email backend. The import pipeline still
// drives the full dispatch decision per provider and status; delivery is
// reduced to a log line.
type logMailer struct {
	log *slog.Logger
}

func (m *logMailer) SendTicketEmail(ctx context.Context, orderID string, eventID int64) error {
	m.log.Info("ticket email", "order_id", orderID, "event_id", eventID)
	return nil
}

func (m *logMailer) SendNonAttendanceEmail(ctx context.Context, orderID string, eventID int64) error {
	m.log.Info("non-attendance email", "order_id", orderID, "event_id", eventID)
	return nil
}
