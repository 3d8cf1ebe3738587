// Package postgres implements the import pipeline's collaborator
// interfaces against a PostgreSQL content store, plus the import-run
// history table.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the pgx-backed implementation of every interface in
// importer.Backend.
type Store struct {
	pool *pgxpool.Pool
}

// New wraps an existing connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Ready verifies the database is reachable.
func (s *Store) Ready(ctx context.Context) error {
	var one int
	return s.pool.QueryRow(ctx, "select 1").Scan(&one)
}

// schema is the content-store layout the importer reads and writes. It is
// applied idempotently on startup.
const schema = `
create table if not exists posts (
	id          bigserial primary key,
	post_type   text not null,
	post_status text not null default 'publish',
	title       text not null,
	slug        text not null default ''
);

create index if not exists posts_type_status_idx on posts (post_type, post_status);

create table if not exists tickets (
	id              bigserial primary key,
	event_id        bigint not null,
	name            text not null,
	provider        text not null,
	product_id      bigint not null default 0,
	price           numeric(12,2) not null default 0,
	currency_symbol text not null default '$',
	manage_stock    boolean not null default false,
	shared_capacity boolean not null default false
);

create index if not exists tickets_event_provider_idx on tickets (event_id, provider);

create table if not exists users (
	id           bigserial primary key,
	login        text not null,
	email        text not null,
	display_name text not null default '',
	first_name   text not null default '',
	last_name    text not null default ''
);

create index if not exists users_email_idx on users (email);

create table if not exists postmeta (
	entity_id  bigint not null,
	meta_key   text not null,
	meta_value text not null default '',
	primary key (entity_id, meta_key)
);

create table if not exists attendees (
	id              bigserial primary key,
	provider        text not null,
	title           text not null,
	ticket_id       bigint not null,
	event_id        bigint not null,
	order_ref       text not null,
	security_code   text not null,
	optout          boolean not null default true,
	full_name       text not null,
	email           text not null,
	user_id         bigint not null default 0,
	paid_price      numeric(12,2) not null default 0,
	currency_symbol text not null default '',
	status          text not null,
	created_at      timestamptz not null default now()
);

create index if not exists attendees_event_idx on attendees (event_id);

create table if not exists orders (
	id             bigserial primary key,
	provider       text not null,
	customer_id    bigint not null default 0,
	created_via    text not null default '',
	status         text not null,
	payment_method text not null default '',
	total          numeric(12,2) not null default 0,
	billing_first  text not null default '',
	billing_last   text not null default '',
	billing_email  text not null default '',
	created_at     timestamptz not null default now()
);

create table if not exists order_items (
	order_id   bigint not null references orders (id),
	product_id bigint not null,
	quantity   int not null default 1
);

create table if not exists cache_entries (
	event_id bigint not null,
	scope    text not null,
	payload  text not null default '',
	primary key (event_id, scope)
);

create table if not exists import_runs (
	id          uuid primary key,
	provider    text not null,
	file_name   text not null default '',
	total       int not null default 0,
	created     int not null default 0,
	skipped     int not null default 0,
	duration_ms bigint not null default 0,
	created_at  timestamptz not null default now()
);
`

// Migrate applies the schema.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
