package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/ticketry/attendee-importer/internal/importer"
)

// eventPostType is the posts.post_type value that marks an event.
const eventPostType = "event"

// FindEvent matches an event by numeric id, exact title, or slug among the
// given statuses. Absence is not an error: no match returns (nil, nil).
func (s *Store) FindEvent(ctx context.Context, statuses []string, key string) (*importer.Event, error) {
	var id int64
	if n, err := strconv.ParseInt(key, 10, 64); err == nil && n > 0 {
		id = n
	}

	const q = `
		select id, title, slug
		from posts
		where post_type = $1
		  and post_status = any($2)
		  and (id = $3 or title = $4 or slug = $4)
		order by id
		limit 1`

	var ev importer.Event
	err := s.pool.QueryRow(ctx, q, eventPostType, statuses, id, key).
		Scan(&ev.ID, &ev.Title, &ev.Slug)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find event %q: %w", key, err)
	}

	return &ev, nil
}

// FindTicket matches a ticket on the event by numeric id or exact name,
// scoped to the provider that owns it. No match returns (nil, nil).
func (s *Store) FindTicket(ctx context.Context, eventID int64, provider importer.ProviderType, key string) (*importer.Ticket, error) {
	var id int64
	if n, err := strconv.ParseInt(key, 10, 64); err == nil && n > 0 {
		id = n
	}

	const q = `
		select id, event_id, name, provider, product_id, price,
		       currency_symbol, manage_stock, shared_capacity
		from tickets
		where event_id = $1
		  and provider = $2
		  and (id = $3 or name = $4)
		order by id
		limit 1`

	var t importer.Ticket
	err := s.pool.QueryRow(ctx, q, eventID, provider, id, key).
		Scan(&t.ID, &t.EventID, &t.Name, &t.Provider, &t.ProductID,
			&t.Price, &t.CurrencySymbol, &t.ManageStock, &t.SharedCapacity)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find ticket %q on event %d: %w", key, eventID, err)
	}

	return &t, nil
}

// IsRecurring reports whether the event carries recurrence metadata.
func (s *Store) IsRecurring(ctx context.Context, eventID int64) (bool, error) {
	val, err := s.Get(ctx, eventID, "_event_recurrence")
	if err != nil {
		return false, err
	}
	return val != "", nil
}
