package importer

import "context"

// rsvpOption describes one RSVP going status: its stock cost and whether
// it triggers an attendance confirmation or a non-attendance notice.
type rsvpOption struct {
	Label            string
	DecreaseStockBy  int
	SendConfirmation bool
}

// rsvpOptions is the fixed RSVP status vocabulary. Statuses outside this
// set fall back to attending.
var rsvpOptions = map[string]rsvpOption{
	"yes": {Label: "Going", DecreaseStockBy: 1, SendConfirmation: true},
	"no":  {Label: "Not Going"},
}

const rsvpDefaultStatus = "yes"

// rsvpProvider creates free RSVP attendees. There is no commerce order: the
// order reference is an opaque generated token unless the row supplied one.
type rsvpProvider struct {
	imp *Importer
}

func newRSVPProvider(imp *Importer) Provider {
	return &rsvpProvider{imp: imp}
}

func (p *rsvpProvider) Type() ProviderType {
	return ProviderRSVP
}

func (p *rsvpProvider) CreateAttendee(ctx context.Context, ticket *Ticket, data AttendeeData) (Created, error) {
	if err := requireAttendeeFields(data); err != nil {
		return Created{}, err
	}

	status := data.OrderStatus
	if status == "" {
		status = "no"
		if data.Going {
			status = "yes"
		}
	}
	if _, ok := rsvpOptions[status]; !ok {
		status = rsvpDefaultStatus
	}

	orderID := data.OrderID
	if orderID == "" {
		orderID = generateOrderID()
	}

	userID := data.UserID
	if userID == 0 {
		if id, err := p.imp.backend.Users.FindUserByEmail(ctx, data.Email); err == nil {
			userID = id
		}
	}

	rec := AttendeeRecord{
		Provider:     ProviderRSVP,
		Title:        attendeeTitle(orderID, data.FullName, data.OrderAttendeeID),
		TicketID:     ticket.ID,
		EventID:      ticket.EventID,
		OrderID:      orderID,
		SecurityCode: generateSecurityCode(),
		Optout:       data.Optout,
		FullName:     data.FullName,
		Email:        data.Email,
		UserID:       userID,
		PaidPrice:    0,
		Status:       status,
	}

	attendeeID, err := p.imp.backend.Attendees.CreateAttendee(ctx, rec)
	if err != nil {
		return Created{}, creationFailed("create rsvp attendee", err)
	}

	if opt := rsvpOptions[status]; opt.DecreaseStockBy > 0 {
		if err := adjustStockAndSales(ctx, p.imp.backend.Meta, stockEntity(ticket), 1, opt.DecreaseStockBy); err != nil {
			return Created{}, creationFailed("adjust rsvp stock", err)
		}
	}

	p.imp.emit("rsvp.attendee_created", attendeeID, ticket.EventID, orderID, ticket.ID)
	p.imp.emit("rsvp.ticket_created", attendeeID, ticket.EventID, ticket.ID, data.OrderAttendeeID)
	p.imp.emit("rsvp.tickets_generated_for_product", ticket.ID, orderID, 1)

	p.imp.invalidateAttendees(ctx, ticket.EventID)

	return Created{AttendeeID: attendeeID, OrderID: orderID, Status: status}, nil
}

// NotifyAttendee sends the attendance confirmation for statuses configured
// to dispatch one, and a non-attendance notice for everything else.
func (p *rsvpProvider) NotifyAttendee(ctx context.Context, orderID string, eventID int64, status string) error {
	mailer := p.imp.backend.Mailer
	if mailer == nil {
		return nil
	}

	if rsvpOptions[status].SendConfirmation {
		return mailer.SendTicketEmail(ctx, orderID, eventID)
	}
	return mailer.SendNonAttendanceEmail(ctx, orderID, eventID)
}
