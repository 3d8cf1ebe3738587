package importer

import (
	"context"
	"strconv"
)

// PayPal-style order statuses that drive stock bookkeeping. Anything else
// is stored on the attendee as-is with no counter movement.
const (
	paypalStatusCompleted = "completed"
	paypalStatusRefunded  = "refunded"
)

// paypalProvider creates attendees for PayPal-style tickets. Order creation
// is not exercised from CSV import: the order reference is taken from the
// row or generated.
type paypalProvider struct {
	imp *Importer
}

func newPayPalProvider(imp *Importer) Provider {
	return &paypalProvider{imp: imp}
}

func (p *paypalProvider) Type() ProviderType {
	return ProviderPayPal
}

func (p *paypalProvider) CreateAttendee(ctx context.Context, ticket *Ticket, data AttendeeData) (Created, error) {
	if err := requireAttendeeFields(data); err != nil {
		return Created{}, err
	}

	status := normalizeOrderStatus(data.OrderStatus, paypalStatusCompleted)

	orderID := data.OrderID
	if orderID == "" {
		orderID = generateOrderID()
	}

	rec := AttendeeRecord{
		Provider:       ProviderPayPal,
		Title:          attendeeTitle(orderID, data.FullName, data.OrderAttendeeID),
		TicketID:       ticket.ID,
		EventID:        ticket.EventID,
		OrderID:        orderID,
		SecurityCode:   generateSecurityCode(),
		Optout:         data.Optout,
		FullName:       data.FullName,
		Email:          data.Email,
		UserID:         data.UserID,
		PaidPrice:      ticket.Price,
		CurrencySymbol: ticket.CurrencySymbol,
		Status:         status,
	}

	attendeeID, err := p.imp.backend.Attendees.CreateAttendee(ctx, rec)
	if err != nil {
		return Created{}, creationFailed("create paypal attendee", err)
	}

	meta := p.imp.backend.Meta

	switch status {
	case paypalStatusCompleted:
		if err := adjustStockAndSales(ctx, meta, stockEntity(ticket), 1, 1); err != nil {
			return Created{}, creationFailed("adjust paypal stock", err)
		}
	case paypalStatusRefunded:
		if err := adjustStockAndSales(ctx, meta, stockEntity(ticket), -1, -1); err != nil {
			return Created{}, creationFailed("adjust paypal stock", err)
		}
		if data.RefundOrderID != "" {
			if err := meta.Set(ctx, attendeeID, MetaRefundTxn, data.RefundOrderID); err != nil {
				return Created{}, creationFailed("record paypal refund", err)
			}
		}
	}

	return Created{AttendeeID: attendeeID, OrderID: orderID, Status: status}, nil
}

// NotifyAttendee sends a ticket email only for completed orders. Refunded
// or otherwise non-completed attendees are never emailed.
func (p *paypalProvider) NotifyAttendee(ctx context.Context, orderID string, eventID int64, status string) error {
	if p.imp.backend.Mailer == nil || status != paypalStatusCompleted {
		return nil
	}
	return p.imp.backend.Mailer.SendTicketEmail(ctx, orderID, eventID)
}

// orderEntityID converts an order reference to a meta entity id. Generated
// opaque tokens are not meta entities; only numeric store ids qualify.
func orderEntityID(orderID string) (int64, bool) {
	id, err := strconv.ParseInt(orderID, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
