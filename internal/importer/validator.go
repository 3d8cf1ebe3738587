package importer

import (
	"context"
	"fmt"
)

// Messages surfaced for skipped rows. Rows rejected for other reasons fall
// back to the host's generic skip message.
const (
	msgEventRequired  = "An event is required to import attendees."
	msgRecurringEvent = "Recurring event tickets are not supported, event %s."
)

// requiredColumns must exist in the row for it to pass structural
// validation, regardless of provider. Emptiness is judged downstream,
// where the failure can name the field: an empty ticket name fails
// resolution, an empty attendee name or email fails creation.
var requiredColumns = []string{
	ColTicketName,
	ColAttendeeName,
	ColEmail,
}

// validateRow determines whether a row can be imported. Checks run in
// order and short-circuit: structural fields, event resolution, ticket
// resolution, provider match, recurring-event rejection. Some failures
// carry an operator-facing message, others skip silently; r.rowMessage
// holds whichever applies and is cleared when the row is valid.
func (r *Run) validateRow(ctx context.Context, row Row) bool {
	r.rowMessage = ""

	for _, col := range requiredColumns {
		if _, ok := row[col]; !ok {
			return false
		}
	}

	event := r.resolveEvent(ctx, row)
	if event == nil {
		r.rowMessage = msgEventRequired
		return false
	}

	ticket := r.resolveTicket(ctx, row, event)
	if ticket == nil {
		// No message: the row is silently skipped.
		return false
	}

	if ticket.Provider == "" || ticket.Provider != r.imp.cfg.Provider {
		return false
	}

	// Recurring-event detection is an optional host capability. Without
	// it the check is skipped entirely.
	if r.imp.backend.Recurrence != nil {
		recurring, err := r.imp.backend.Recurrence.IsRecurring(ctx, event.ID)
		if err == nil && recurring {
			r.rowMessage = fmt.Sprintf(msgRecurringEvent, event.Title)
			return false
		}
	}

	return true
}
