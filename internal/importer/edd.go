package importer

import "context"

const eddDefaultStatus = "publish"

// eddProvider creates attendees for EDD-style tickets. Orders are
// referenced, never created, from CSV import; when a row names an existing
// order, its stored purchaser backfills a missing user id.
type eddProvider struct {
	imp *Importer
}

func newEDDProvider(imp *Importer) Provider {
	return &eddProvider{imp: imp}
}

func (p *eddProvider) Type() ProviderType {
	return ProviderEDD
}

func (p *eddProvider) CreateAttendee(ctx context.Context, ticket *Ticket, data AttendeeData) (Created, error) {
	if err := requireAttendeeFields(data); err != nil {
		return Created{}, err
	}

	status := normalizeOrderStatus(data.OrderStatus, eddDefaultStatus)

	userID := data.UserID
	if userID == 0 && data.OrderID != "" {
		if id, err := p.imp.backend.Orders.OrderPurchaser(ctx, data.OrderID); err == nil {
			userID = id
		}
	}

	orderID := data.OrderID
	if orderID == "" {
		orderID = generateOrderID()
	}

	rec := AttendeeRecord{
		Provider: ProviderEDD,
		// EDD attendee titles carry the ticket's display name, not the
		// attendee's.
		Title:          attendeeTitle(orderID, ticket.Name, data.OrderAttendeeID),
		TicketID:       ticket.ID,
		EventID:        ticket.EventID,
		OrderID:        orderID,
		SecurityCode:   generateSecurityCode(),
		Optout:         data.Optout,
		FullName:       data.FullName,
		Email:          data.Email,
		UserID:         userID,
		PaidPrice:      ticket.Price,
		CurrencySymbol: ticket.CurrencySymbol,
		Status:         status,
	}

	attendeeID, err := p.imp.backend.Attendees.CreateAttendee(ctx, rec)
	if err != nil {
		return Created{}, creationFailed("create edd attendee", err)
	}

	return Created{AttendeeID: attendeeID, OrderID: orderID, Status: status}, nil
}

// NotifyAttendee marks the order as carrying tickets, so a later dispatch
// for the same order is idempotent host-side, then sends the ticket email
// unconditionally.
func (p *eddProvider) NotifyAttendee(ctx context.Context, orderID string, eventID int64, status string) error {
	if p.imp.backend.Mailer == nil {
		return nil
	}

	if id, ok := orderEntityID(orderID); ok {
		if err := p.imp.backend.Meta.Set(ctx, id, MetaOrderHasTickets, "1"); err != nil {
			return err
		}
	}

	return p.imp.backend.Mailer.SendTicketEmail(ctx, orderID, eventID)
}
