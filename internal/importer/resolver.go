package importer

import (
	"context"
	"strconv"
)

// resolveEvent finds the event a row targets. A pinned event on the run
// overrides any per-row event name; otherwise the row's event_name is
// required. Results are memoized by the raw lookup key for the remainder
// of the run, including misses, so one bad key costs one store query.
//
// Resolution never returns an error: lookup failures of any kind report
// absence.
func (r *Run) resolveEvent(ctx context.Context, row Row) *Event {
	key := row[ColEventName]

	if r.imp.cfg.PinnedEventID > 0 {
		key = strconv.FormatInt(r.imp.cfg.PinnedEventID, 10)
	} else if key == "" {
		return nil
	}

	if ev, ok := r.events[key]; ok {
		return ev
	}

	ev, err := r.imp.backend.Events.FindEvent(ctx, EventStatuses, key)
	if err != nil {
		ev = nil
	}

	r.events[key] = ev

	return ev
}

// resolveTicket finds the ticket named by a row among the tickets scoped to
// the event and the run's provider type. Memoized by event id + ticket name.
func (r *Run) resolveTicket(ctx context.Context, row Row, event *Event) *Ticket {
	name := row[ColTicketName]
	if name == "" {
		return nil
	}

	key := strconv.FormatInt(event.ID, 10) + "-" + name

	if t, ok := r.tickets[key]; ok {
		return t
	}

	t, err := r.imp.backend.Tickets.FindTicket(ctx, event.ID, r.imp.cfg.Provider, name)
	if err != nil {
		t = nil
	}

	r.tickets[key] = t

	return t
}
