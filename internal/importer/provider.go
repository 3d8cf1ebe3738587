package importer

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Created reports one successful attendee creation: the new attendee, the
// order it references, and the status the provider settled on after
// defaulting and normalization.
type Created struct {
	AttendeeID int64
	OrderID    string
	Status     string
}

// Provider encapsulates how one payment backend turns AttendeeData into
// stored records: whether an order is created or referenced, how the
// attendee title is composed, which status vocabulary applies, and what
// stock side effects fire.
type Provider interface {
	Type() ProviderType

	// CreateAttendee creates the attendee record (and, where the payment
	// model requires one, an order first) for a resolved ticket. There
	// are no retries: a store failure surfaces as a CreationError and
	// the row is skipped.
	CreateAttendee(ctx context.Context, ticket *Ticket, data AttendeeData) (Created, error)

	// NotifyAttendee dispatches the post-creation email appropriate for
	// the attendee's order status, if any.
	NotifyAttendee(ctx context.Context, orderID string, eventID int64, status string) error
}

// requireAttendeeFields enforces the creation-time contract shared by every
// provider: full_name and email must be set and non-empty. The optout flag
// is exempt from emptiness checks by design (false is a legitimate value).
func requireAttendeeFields(data AttendeeData) error {
	if !data.HasFullName {
		return FieldMissing("full_name")
	}
	if data.FullName == "" {
		return FieldEmpty("full_name")
	}
	if !data.HasEmail {
		return FieldMissing("email")
	}
	if data.Email == "" {
		return FieldEmpty("email")
	}
	return nil
}

// generateOrderID produces the opaque token used as an order reference when
// the row supplied none. 32 lowercase hex characters.
func generateOrderID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// generateSecurityCode produces the per-attendee opaque security code.
func generateSecurityCode() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}

// attendeeTitle composes the stored attendee title: the order reference,
// the display name, and the attendee's position within the order when it
// has one.
func attendeeTitle(orderID, name string, orderAttendeeID int) string {
	title := orderID + " | " + name
	if orderAttendeeID > 0 {
		title += " | " + strconv.Itoa(orderAttendeeID)
	}
	return title
}

// splitFullName breaks a display name on the first space. A single-word
// name becomes the first name with an empty last name.
func splitFullName(full string) (first, last string) {
	first = full
	if i := strings.IndexByte(full, ' '); i >= 0 {
		first = full[:i]
		last = full[i+1:]
	}
	return first, last
}

// normalizeOrderStatus lowercases and trims a requested order status,
// substituting the provider default when the row carried none.
func normalizeOrderStatus(requested, def string) string {
	s := strings.ToLower(strings.TrimSpace(requested))
	if s == "" {
		return def
	}
	return s
}

// stockEntity returns the entity whose stock counters a ticket draws from:
// the event for shared-capacity tickets, the backing product otherwise.
func stockEntity(ticket *Ticket) int64 {
	if ticket.SharedCapacity {
		return ticket.EventID
	}
	return ticket.ProductID
}

// adjustStockAndSales applies the sale bookkeeping for one attendee:
// total_sales moves by salesDelta and _stock by -stockDelta.
//
// This is deliberately an unguarded read-modify-write, two store calls per
// counter with no transactional guard, preserved from the system this
// replaces. An import run is single-writer, so the window only matters
// against concurrent storefront purchases.
func adjustStockAndSales(ctx context.Context, meta MetaStore, entityID int64, salesDelta, stockDelta int) error {
	sales, err := metaInt(ctx, meta, entityID, MetaTotalSales)
	if err != nil {
		return err
	}
	if err := meta.Set(ctx, entityID, MetaTotalSales, strconv.Itoa(sales+salesDelta)); err != nil {
		return err
	}

	stock, err := metaInt(ctx, meta, entityID, MetaStock)
	if err != nil {
		return err
	}
	return meta.Set(ctx, entityID, MetaStock, strconv.Itoa(stock-stockDelta))
}

// metaInt reads a numeric meta value, treating absent or malformed values
// as zero the way the host store does.
func metaInt(ctx context.Context, meta MetaStore, entityID int64, key string) (int, error) {
	raw, err := meta.Get(ctx, entityID, key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, nil
	}
	return n, nil
}

// invalidateAttendees drops the host's attendee-list cache for an event
// after a successful creation.
func (imp *Importer) invalidateAttendees(ctx context.Context, eventID int64) {
	if imp.backend.Cache != nil {
		imp.backend.Cache.Invalidate(ctx, eventID, AttendeesCacheScope)
	}
}

// emit fires an extensibility notification. Fire-and-forget: no return
// value is consumed and a nil bus is a no-op.
func (imp *Importer) emit(event string, payload ...any) {
	if imp.backend.Bus != nil {
		imp.backend.Bus.Emit(event, payload...)
	}
}
