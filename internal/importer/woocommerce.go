package importer

import (
	"context"
	"strconv"
)

const (
	wooDefaultStatus = "completed"

	// wooPaymentMethod is the payment gateway forced onto synthesized
	// orders. Imports never charge anyone, bank transfer is the neutral
	// offline method.
	wooPaymentMethod = "bacs"

	wooCreatedVia = "import"
)

// wooProvider creates attendees for WooCommerce-style tickets. WooCommerce
// has no free-standing attendee concept, so every import row synthesizes a
// fresh order first and the attendee references it.
type wooProvider struct {
	imp *Importer
}

func newWooProvider(imp *Importer) Provider {
	return &wooProvider{imp: imp}
}

func (p *wooProvider) Type() ProviderType {
	return ProviderWooCommerce
}

// createOrder builds the one-line-item order backing an imported attendee:
// purchaser resolved or created from the row's name and email, exactly one
// unit of the ticket's product, name and email copied into billing and
// shipping, totals computed, status as requested.
func (p *wooProvider) createOrder(ctx context.Context, ticket *Ticket, data AttendeeData) (int64, error) {
	if err := requireAttendeeFields(data); err != nil {
		return 0, err
	}

	first, last := splitFullName(data.FullName)

	userID := data.UserID

	if userID == 0 && !p.imp.cfg.SkipExistingUsers {
		if id, err := p.imp.backend.Users.FindUserByEmail(ctx, data.Email); err == nil {
			userID = id
		}
	}

	if userID == 0 && !p.imp.cfg.SkipUserCreation {
		id, err := p.imp.backend.Users.CreateUser(ctx, NewUser{
			Login:       data.Email,
			Email:       data.Email,
			DisplayName: data.FullName,
			FirstName:   first,
			LastName:    last,
		})
		if err == nil {
			userID = id
		}
	}

	address := Address{FirstName: first, LastName: last, Email: data.Email}

	ord := OrderRecord{
		Provider:      ProviderWooCommerce,
		CustomerID:    userID,
		CreatedVia:    wooCreatedVia,
		Status:        normalizeOrderStatus(data.OrderStatus, wooDefaultStatus),
		Items:         []LineItem{{ProductID: ticket.ProductID, Quantity: 1}},
		Billing:       address,
		Shipping:      address,
		PaymentMethod: wooPaymentMethod,
		Total:         ticket.Price,
	}

	orderID, err := p.imp.backend.Orders.CreateOrder(ctx, ord)
	if err != nil {
		return 0, creationFailed("create woocommerce order", err)
	}

	return orderID, nil
}

func (p *wooProvider) CreateAttendee(ctx context.Context, ticket *Ticket, data AttendeeData) (Created, error) {
	orderID, err := p.createOrder(ctx, ticket, data)
	if err != nil {
		return Created{}, err
	}

	orderRef := strconv.FormatInt(orderID, 10)

	rec := AttendeeRecord{
		Provider:       ProviderWooCommerce,
		Title:          attendeeTitle(orderRef, data.FullName, data.OrderAttendeeID),
		TicketID:       ticket.ID,
		EventID:        ticket.EventID,
		OrderID:        orderRef,
		SecurityCode:   generateSecurityCode(),
		Optout:         data.Optout,
		FullName:       data.FullName,
		Email:          data.Email,
		UserID:         data.UserID,
		PaidPrice:      ticket.Price,
		CurrencySymbol: ticket.CurrencySymbol,
		Status:         normalizeOrderStatus(data.OrderStatus, wooDefaultStatus),
	}

	attendeeID, err := p.imp.backend.Attendees.CreateAttendee(ctx, rec)
	if err != nil {
		return Created{}, creationFailed("create woocommerce attendee", err)
	}

	meta := p.imp.backend.Meta

	// Link the attendee to its order line item and flag the order as
	// ticket-bearing so the host's email logic stays idempotent.
	if err := meta.Set(ctx, attendeeID, MetaOrderItemLink, orderRef); err != nil {
		return Created{}, creationFailed("link woocommerce order item", err)
	}
	if err := meta.Set(ctx, orderID, MetaOrderHasTickets, "1"); err != nil {
		return Created{}, creationFailed("flag woocommerce order", err)
	}

	p.imp.invalidateAttendees(ctx, ticket.EventID)

	return Created{AttendeeID: attendeeID, OrderID: orderRef, Status: rec.Status}, nil
}

// NotifyAttendee sends the ticket email unconditionally; the run-level
// toggle has already been applied by the driver.
func (p *wooProvider) NotifyAttendee(ctx context.Context, orderID string, eventID int64, status string) error {
	if p.imp.backend.Mailer == nil {
		return nil
	}
	return p.imp.backend.Mailer.SendTicketEmail(ctx, orderID, eventID)
}
