package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/ticketry/attendee-importer/internal/importer"
)

// FindUserByEmail returns the matching user's id, or 0 when none exists.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (int64, error) {
	const q = `select id from users where email = $1 order by id limit 1`

	var id int64
	err := s.pool.QueryRow(ctx, q, email).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("find user by email: %w", err)
	}
	return id, nil
}

// CreateUser inserts a new user account.
func (s *Store) CreateUser(ctx context.Context, u importer.NewUser) (int64, error) {
	const q = `
		insert into users (login, email, display_name, first_name, last_name)
		values ($1, $2, $3, $4, $5)
		returning id`

	var id int64
	err := s.pool.QueryRow(ctx, q, u.Login, u.Email, u.DisplayName, u.FirstName, u.LastName).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create user: %w", err)
	}
	return id, nil
}

// Get reads one meta value. Absent keys read as the empty string.
func (s *Store) Get(ctx context.Context, entityID int64, key string) (string, error) {
	const q = `select meta_value from postmeta where entity_id = $1 and meta_key = $2`

	var val string
	err := s.pool.QueryRow(ctx, q, entityID, key).Scan(&val)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get meta %q for %d: %w", key, entityID, err)
	}
	return val, nil
}

// Set upserts one meta value.
func (s *Store) Set(ctx context.Context, entityID int64, key, value string) error {
	const q = `
		insert into postmeta (entity_id, meta_key, meta_value)
		values ($1, $2, $3)
		on conflict (entity_id, meta_key) do update set meta_value = excluded.meta_value`

	if _, err := s.pool.Exec(ctx, q, entityID, key, value); err != nil {
		return fmt.Errorf("set meta %q for %d: %w", key, entityID, err)
	}
	return nil
}

// CreateAttendee inserts one attendee record.
func (s *Store) CreateAttendee(ctx context.Context, rec importer.AttendeeRecord) (int64, error) {
	const q = `
		insert into attendees (
			provider, title, ticket_id, event_id, order_ref, security_code,
			optout, full_name, email, user_id, paid_price, currency_symbol, status
		)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		returning id`

	var id int64
	err := s.pool.QueryRow(ctx, q,
		rec.Provider, rec.Title, rec.TicketID, rec.EventID, rec.OrderID,
		rec.SecurityCode, rec.Optout, rec.FullName, rec.Email, rec.UserID,
		rec.PaidPrice, rec.CurrencySymbol, rec.Status,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create attendee: %w", err)
	}
	return id, nil
}

// CreateOrder inserts an order with its line items in one transaction.
// Only the WooCommerce path synthesizes orders; the other providers track
// order references as opaque tokens and must never reach this.
func (s *Store) CreateOrder(ctx context.Context, ord importer.OrderRecord) (int64, error) {
	if ord.Provider != importer.ProviderWooCommerce {
		return 0, fmt.Errorf("create order for provider %q: %w", ord.Provider, importer.ErrNotImplemented)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("create order: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const q = `
		insert into orders (
			provider, customer_id, created_via, status, payment_method,
			total, billing_first, billing_last, billing_email
		)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		returning id`

	var id int64
	err = tx.QueryRow(ctx, q,
		ord.Provider, ord.CustomerID, ord.CreatedVia, ord.Status,
		ord.PaymentMethod, ord.Total,
		ord.Billing.FirstName, ord.Billing.LastName, ord.Billing.Email,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create order: %w", err)
	}

	for _, item := range ord.Items {
		const iq = `insert into order_items (order_id, product_id, quantity) values ($1, $2, $3)`
		if _, err := tx.Exec(ctx, iq, id, item.ProductID, item.Quantity); err != nil {
			return 0, fmt.Errorf("create order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("create order: commit: %w", err)
	}
	return id, nil
}

// OrderPurchaser returns the customer id on an existing order, or 0 when
// the reference is not a stored order or has no purchaser.
func (s *Store) OrderPurchaser(ctx context.Context, orderID string) (int64, error) {
	id, err := strconv.ParseInt(orderID, 10, 64)
	if err != nil || id <= 0 {
		return 0, nil
	}

	const q = `select customer_id from orders where id = $1`

	var customer int64
	err = s.pool.QueryRow(ctx, q, id).Scan(&customer)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("order purchaser %d: %w", id, err)
	}
	return customer, nil
}

// Invalidate drops cached entries for the event and scope. Invalidation is
// best effort and never surfaces an error to the pipeline.
func (s *Store) Invalidate(ctx context.Context, eventID int64, scope string) {
	const q = `delete from cache_entries where event_id = $1 and scope = $2`
	_, _ = s.pool.Exec(ctx, q, eventID, scope)
}
