// Package importer implements the attendee CSV import pipeline: field
// mapping, event/ticket resolution, row validation, and provider-specific
// attendee and order creation. It has no HTTP or storage dependencies and
// talks to the host system only through the narrow interfaces in Backend.
package importer

import "context"

// ProviderType identifies a payment/fulfillment backend that owns tickets
// and dictates how orders and attendees are created for them.
type ProviderType string

const (
	ProviderRSVP        ProviderType = "rsvp"
	ProviderPayPal      ProviderType = "paypal"
	ProviderEDD         ProviderType = "edd"
	ProviderWooCommerce ProviderType = "woocommerce"
)

// Row is one CSV line of input, keyed by canonical column name.
// Values are raw strings exactly as they appeared in the file; a key that
// is absent means the column did not exist in the upload.
type Row map[string]string

// Canonical column keys. Providers may remap CSV headers onto these keys,
// but the pipeline only ever reads the canonical names.
const (
	ColEventName    = "event_name"
	ColTicketName   = "ticket_name"
	ColAttendeeName = "attendee_name"
	ColEmail        = "attendee_email"
	ColOptIn        = "display_opt_in"
	ColUserID       = "user_id"
	ColOrderID      = "order_id"
	ColSendEmail    = "send_email"
	ColOrderStatus  = "order_status"
	ColRefundOrder  = "refund_order_id" // PayPal-style only
	ColGoing        = "going"           // RSVP only
)

// Event is an existing content record resolved read-only by the pipeline.
// Events are never created here.
type Event struct {
	ID    int64
	Title string
	Slug  string
}

// Ticket is an existing purchasable item scoped to exactly one event.
type Ticket struct {
	ID       int64
	EventID  int64
	Name     string
	Provider ProviderType

	// ProductID is the commerce product backing the ticket. For providers
	// without a separate product concept it equals ID.
	ProductID int64

	Price          float64
	CurrencySymbol string

	// ManageStock reports whether stock bookkeeping applies to this ticket.
	ManageStock bool

	// SharedCapacity marks tickets that draw from the event-level stock
	// pool instead of their own counter.
	SharedCapacity bool
}

// AttendeeData is the canonical, provider-agnostic record built from a Row
// by the field mapper. HasFullName/HasEmail record whether the source column
// existed at all, so required-field failures can distinguish an absent key
// from a present-but-empty value.
type AttendeeData struct {
	FullName    string
	HasFullName bool
	Email       string
	HasEmail    bool

	// Optout is the negation of the row's display opt-in flag.
	Optout bool

	// UserID is 0 when unresolved.
	UserID int64

	// OrderID is empty when the row supplied none; providers either
	// generate a token (RSVP) or synthesize an order (WooCommerce).
	OrderID string

	// OrderStatus uses provider-specific vocabulary ("yes"/"no" for RSVP,
	// "completed"/"refunded" for PayPal, and so on). Empty means default.
	OrderStatus string

	// OrderAttendeeID is the attendee's position within a multi-attendee
	// order; 0 means unset.
	OrderAttendeeID int

	// RefundOrderID is the refund transaction reference recorded on
	// refunded PayPal-style attendees, when supplied.
	RefundOrderID string

	SendEmail bool

	// Going is only meaningful for RSVP rows.
	Going bool
}

// AttendeeRecord is what gets persisted for one successful row.
type AttendeeRecord struct {
	Provider       ProviderType
	Title          string
	TicketID       int64
	EventID        int64
	OrderID        string
	SecurityCode   string
	Optout         bool
	FullName       string
	Email          string
	UserID         int64
	PaidPrice      float64
	CurrencySymbol string
	Status         string
}

// Address carries the billing/shipping details copied onto a synthesized
// WooCommerce-style order.
type Address struct {
	FirstName string
	LastName  string
	Email     string
}

// LineItem is one product entry on an order. The import pipeline never
// builds multi-item carts: every order it creates holds exactly one line
// item of quantity 1.
type LineItem struct {
	ProductID int64
	Quantity  int
}

// OrderRecord is the input to OrderStore.CreateOrder.
type OrderRecord struct {
	Provider      ProviderType
	CustomerID    int64
	CreatedVia    string
	Status        string
	Items         []LineItem
	Billing       Address
	Shipping      Address
	PaymentMethod string

	// Total is computed from the line items before the order is stored.
	Total float64
}

// NewUser is the input to UserStore.CreateUser when the WooCommerce path
// has to materialize a purchaser account.
type NewUser struct {
	Login       string
	Email       string
	DisplayName string
	FirstName   string
	LastName    string
}

// EventLookup finds existing events by id, exact title, or slug.
type EventLookup interface {
	// FindEvent returns the first event whose id, title, or slug equals
	// key among the given statuses, or nil when nothing matches.
	FindEvent(ctx context.Context, statuses []string, key string) (*Event, error)
}

// TicketLookup finds tickets scoped to an event and provider ticket type.
type TicketLookup interface {
	// FindTicket returns the first ticket of the provider's type on the
	// event whose id or name equals key, or nil when nothing matches.
	FindTicket(ctx context.Context, eventID int64, provider ProviderType, key string) (*Ticket, error)
}

// UserStore looks up and creates host users.
type UserStore interface {
	// FindUserByEmail returns the user's id, or 0 when no user exists.
	FindUserByEmail(ctx context.Context, email string) (int64, error)
	CreateUser(ctx context.Context, u NewUser) (int64, error)
}

// MetaStore reads and writes per-entity key/value metadata. Stock and sales
// counters live here, as do all attendee fields beyond the core record.
type MetaStore interface {
	Get(ctx context.Context, entityID int64, key string) (string, error)
	Set(ctx context.Context, entityID int64, key, value string) error
}

// AttendeeStore creates attendee records.
type AttendeeStore interface {
	CreateAttendee(ctx context.Context, rec AttendeeRecord) (int64, error)
}

// OrderStore creates commerce orders and exposes the purchaser of an
// existing order for the EDD user-id backfill.
type OrderStore interface {
	CreateOrder(ctx context.Context, ord OrderRecord) (int64, error)
	// OrderPurchaser returns the user id stored on an existing order,
	// or 0 when the order is unknown or has no purchaser.
	OrderPurchaser(ctx context.Context, orderID string) (int64, error)
}

// CacheInvalidator drops host-side caches after attendee creation.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, eventID int64, scope string)
}

// AttendeesCacheScope is the cache scope invalidated after every
// successful attendee creation.
const AttendeesCacheScope = "attendees"

// NotificationBus is the fire-and-forget extensibility hook. Emit never
// returns anything; listeners are outside this module's contract beyond
// the payload shapes documented on each emission site.
type NotificationBus interface {
	Emit(event string, payload ...any)
}

// RecurrenceChecker probes whether an event is a recurring-series instance.
// The capability is optional: a nil checker skips the recurring-event
// validation entirely.
type RecurrenceChecker interface {
	IsRecurring(ctx context.Context, eventID int64) (bool, error)
}

// Mailer dispatches post-creation attendee emails. It is a collaborator
// capability: the pipeline decides whether and which email to send, the
// host decides how.
type Mailer interface {
	SendTicketEmail(ctx context.Context, orderID string, eventID int64) error
	SendNonAttendanceEmail(ctx context.Context, orderID string, eventID int64) error
}

// Backend bundles every collaborator interface the pipeline consumes.
// Cache, Bus, Recurrence, and Mailer may be nil; the corresponding
// behavior is skipped.
type Backend struct {
	Events     EventLookup
	Tickets    TicketLookup
	Users      UserStore
	Meta       MetaStore
	Attendees  AttendeeStore
	Orders     OrderStore
	Cache      CacheInvalidator
	Bus        NotificationBus
	Recurrence RecurrenceChecker
	Mailer     Mailer
}

// EventStatuses are the content statuses an event lookup may match.
var EventStatuses = []string{"publish", "private", "draft"}

// Meta keys shared across providers. Providers that need their own keys
// carry them on their ProviderConfig.
const (
	MetaTotalSales      = "total_sales"
	MetaStock           = "_stock"
	MetaRefundTxn       = "_refund_transaction_id"
	MetaOrderHasTickets = "_order_has_tickets"
	MetaOrderItemLink   = "_order_item_id"
)
