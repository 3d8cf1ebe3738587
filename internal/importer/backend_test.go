package importer

import (
	"context"
	"errors"
	"strconv"
	"sync"
)

// fakeStore is an in-memory Backend implementation for tests. It records
// every mutation so assertions can inspect exactly what a provider did.
type fakeStore struct {
	mu sync.Mutex

	events  map[string]*Event
	tickets map[string]*Ticket

	usersByEmail map[string]int64
	createdUsers []NewUser
	nextUserID   int64

	meta map[int64]map[string]string

	attendees      []AttendeeRecord
	nextAttendeeID int64
	failAttendee   error

	orders      []OrderRecord
	nextOrderID int64
	purchasers  map[string]int64

	recurring map[int64]bool

	invalidated []int64
	emitted     []string

	ticketEmails        []string
	nonAttendanceEmails []string

	eventLookups  int
	ticketLookups int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		events:         make(map[string]*Event),
		tickets:        make(map[string]*Ticket),
		usersByEmail:   make(map[string]int64),
		meta:           make(map[int64]map[string]string),
		purchasers:     make(map[string]int64),
		recurring:      make(map[int64]bool),
		nextUserID:     500,
		nextAttendeeID: 1000,
		nextOrderID:    2000,
	}
}

// addEvent registers an event under every key it should resolve by.
func (f *fakeStore) addEvent(ev *Event) {
	f.events[strconv.FormatInt(ev.ID, 10)] = ev
	if ev.Title != "" {
		f.events[ev.Title] = ev
	}
	if ev.Slug != "" {
		f.events[ev.Slug] = ev
	}
}

func (f *fakeStore) addTicket(t *Ticket) {
	f.tickets[strconv.FormatInt(t.EventID, 10)+"/"+string(t.Provider)+"/"+t.Name] = t
}

func (f *fakeStore) FindEvent(ctx context.Context, statuses []string, key string) (*Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.eventLookups++
	return f.events[key], nil
}

func (f *fakeStore) FindTicket(ctx context.Context, eventID int64, provider ProviderType, key string) (*Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ticketLookups++
	return f.tickets[strconv.FormatInt(eventID, 10)+"/"+string(provider)+"/"+key], nil
}

func (f *fakeStore) FindUserByEmail(ctx context.Context, email string) (int64, error) {
	return f.usersByEmail[email], nil
}

func (f *fakeStore) CreateUser(ctx context.Context, u NewUser) (int64, error) {
	f.nextUserID++
	f.createdUsers = append(f.createdUsers, u)
	f.usersByEmail[u.Email] = f.nextUserID
	return f.nextUserID, nil
}

func (f *fakeStore) Get(ctx context.Context, entityID int64, key string) (string, error) {
	return f.meta[entityID][key], nil
}

func (f *fakeStore) Set(ctx context.Context, entityID int64, key, value string) error {
	if f.meta[entityID] == nil {
		f.meta[entityID] = make(map[string]string)
	}
	f.meta[entityID][key] = value
	return nil
}

func (f *fakeStore) CreateAttendee(ctx context.Context, rec AttendeeRecord) (int64, error) {
	if f.failAttendee != nil {
		return 0, f.failAttendee
	}
	f.nextAttendeeID++
	f.attendees = append(f.attendees, rec)
	return f.nextAttendeeID, nil
}

func (f *fakeStore) CreateOrder(ctx context.Context, ord OrderRecord) (int64, error) {
	if ord.Provider != ProviderWooCommerce {
		return 0, ErrNotImplemented
	}
	f.nextOrderID++
	f.orders = append(f.orders, ord)
	return f.nextOrderID, nil
}

func (f *fakeStore) OrderPurchaser(ctx context.Context, orderID string) (int64, error) {
	return f.purchasers[orderID], nil
}

func (f *fakeStore) Invalidate(ctx context.Context, eventID int64, scope string) {
	f.invalidated = append(f.invalidated, eventID)
}

func (f *fakeStore) Emit(event string, payload ...any) {
	f.emitted = append(f.emitted, event)
}

func (f *fakeStore) IsRecurring(ctx context.Context, eventID int64) (bool, error) {
	return f.recurring[eventID], nil
}

func (f *fakeStore) SendTicketEmail(ctx context.Context, orderID string, eventID int64) error {
	f.ticketEmails = append(f.ticketEmails, orderID)
	return nil
}

func (f *fakeStore) SendNonAttendanceEmail(ctx context.Context, orderID string, eventID int64) error {
	f.nonAttendanceEmails = append(f.nonAttendanceEmails, orderID)
	return nil
}

// backend wraps the fake store into a fully wired Backend.
func (f *fakeStore) backend() *Backend {
	return &Backend{
		Events:     f,
		Tickets:    f,
		Users:      f,
		Meta:       f,
		Attendees:  f,
		Orders:     f,
		Cache:      f,
		Bus:        f,
		Recurrence: f,
		Mailer:     f,
	}
}

// seeded returns a fake store pre-populated with one event and one ticket
// per provider, all hanging off event 7.
func seeded() *fakeStore {
	f := newFakeStore()
	f.addEvent(&Event{ID: 7, Title: "Summer Gala", Slug: "summer-gala"})
	f.addTicket(&Ticket{ID: 31, EventID: 7, Name: "General Admission", Provider: ProviderRSVP, ProductID: 31})
	f.addTicket(&Ticket{ID: 32, EventID: 7, Name: "Early Bird", Provider: ProviderPayPal, ProductID: 32, Price: 25, CurrencySymbol: "$"})
	f.addTicket(&Ticket{ID: 33, EventID: 7, Name: "Download Pass", Provider: ProviderEDD, ProductID: 33, Price: 10, CurrencySymbol: "$"})
	f.addTicket(&Ticket{ID: 34, EventID: 7, Name: "VIP", Provider: ProviderWooCommerce, ProductID: 98, Price: 100, CurrencySymbol: "$"})
	return f
}

func mustImporter(f *fakeStore, cfg Config) *Importer {
	imp, err := New(f.backend(), cfg, nil)
	if err != nil {
		panic(err)
	}
	return imp
}

var errStoreDown = errors.New("store rejected the record")
