package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// genericSkipMessage is reported for skipped rows that carry no specific
// validation message.
const genericSkipMessage = "Row could not be imported."

// RowStatus is the terminal state of one processed row.
type RowStatus string

const (
	RowCreated RowStatus = "created"
	RowSkipped RowStatus = "skipped"
)

// RowResult is the per-row outcome surfaced to the caller: a new attendee
// id on success, or a human-readable skip message. There are no structured
// error codes beyond the message string.
type RowResult struct {
	Line       int       `json:"line"`
	Status     RowStatus `json:"status"`
	AttendeeID int64     `json:"attendeeId,omitempty"`
	Message    string    `json:"message,omitempty"`
}

// RunResult summarizes one import run.
type RunResult struct {
	RunID    string        `json:"runId"`
	Provider ProviderType  `json:"provider"`
	FileName string        `json:"fileName,omitempty"`
	Total    int           `json:"total"`
	Created  int           `json:"created"`
	Skipped  int           `json:"skipped"`
	Rows     []RowResult   `json:"rows"`
	Duration time.Duration `json:"duration"`
}

// Config selects and tunes the import pipeline for one operator setup.
type Config struct {
	// Provider is the payment backend whose tickets this importer
	// targets. Required.
	Provider ProviderType

	// PinnedEventID, when set, overrides every row's event_name: the
	// operator pre-selected one event for the whole run.
	PinnedEventID int64

	// SendEmail is the run-level default applied when a row's
	// send_email column is absent or empty.
	SendEmail bool

	// SkipExistingUsers disables the lookup of an existing user by email
	// when a row carries no user_id (WooCommerce path).
	SkipExistingUsers bool

	// SkipUserCreation disables creating a purchaser account when no
	// user could be resolved (WooCommerce path).
	SkipUserCreation bool

	// Columns remaps CSV header names onto canonical column keys.
	// Unmapped headers match canonically by their own name.
	Columns map[string]string
}

// Importer drives the per-row pipeline for one provider: resolve event and
// ticket, validate, map fields, create, record the outcome.
type Importer struct {
	cfg      Config
	backend  *Backend
	provider Provider
	columns  []string
	log      *slog.Logger
}

// New builds an Importer for the configured provider.
func New(backend *Backend, cfg Config, log *slog.Logger) (*Importer, error) {
	if backend == nil {
		return nil, errors.New("importer: backend is required")
	}
	if backend.Events == nil || backend.Tickets == nil || backend.Users == nil ||
		backend.Meta == nil || backend.Attendees == nil || backend.Orders == nil {
		return nil, errors.New("importer: backend stores are incomplete")
	}

	reg, ok := Lookup(cfg.Provider)
	if !ok {
		return nil, fmt.Errorf("importer: unknown provider %q", cfg.Provider)
	}

	if log == nil {
		log = slog.Default()
	}

	imp := &Importer{
		cfg:     cfg,
		backend: backend,
		columns: reg.Columns,
		log:     log.With("provider", cfg.Provider),
	}
	imp.provider = reg.New(imp)

	return imp, nil
}

// Provider returns the configured provider type.
func (imp *Importer) Provider() ProviderType {
	return imp.cfg.Provider
}

// Run carries the state of one import run: the resolution caches and the
// accumulated row results. Runs are not safe for concurrent use; rows are
// processed one at a time, each to completion before the next.
type Run struct {
	imp     *Importer
	id      string
	started time.Time

	// Resolution caches, keyed by raw lookup string. A present nil entry
	// is a memoized miss.
	events  map[string]*Event
	tickets map[string]*Ticket

	// rowMessage holds the current row's validation message, cleared
	// when the row is valid.
	rowMessage string

	rows    []RowResult
	created int
	skipped int
	line    int
}

// OpenRun starts a new run with fresh caches. Callers must Close the run
// when done so cached entries cannot leak into a later run.
func (imp *Importer) OpenRun() *Run {
	return &Run{
		imp:     imp,
		id:      uuid.NewString(),
		started: time.Now(),
		events:  make(map[string]*Event),
		tickets: make(map[string]*Ticket),
	}
}

// ID returns the run's identifier.
func (r *Run) ID() string {
	return r.id
}

// Close resets the run's caches. A closed run can keep accepting rows, but
// every resolution after Close hits the store again.
func (r *Run) Close() {
	r.events = make(map[string]*Event)
	r.tickets = make(map[string]*Ticket)
}

// ImportRow processes one row to completion: resolve, validate, map,
// create, record. Creation failures of any kind are caught here and
// converted to a skip; they never abort the run.
func (r *Run) ImportRow(ctx context.Context, row Row) RowResult {
	r.line++

	result := RowResult{Line: r.line, Status: RowSkipped}

	if !r.validateRow(ctx, row) {
		result.Message = r.rowMessage
		if result.Message == "" {
			result.Message = genericSkipMessage
		}
		r.record(result)
		return result
	}

	// Both resolutions below are cache hits: validateRow already
	// resolved and memoized them.
	event := r.resolveEvent(ctx, row)
	ticket := r.resolveTicket(ctx, row, event)

	data := r.imp.attendeeDataFrom(row)

	created, err := r.imp.provider.CreateAttendee(ctx, ticket, data)
	if err != nil {
		r.imp.log.Warn("attendee creation failed",
			"run_id", r.id,
			"line", r.line,
			"event_id", event.ID,
			"ticket_id", ticket.ID,
			"error", err,
		)
		result.Message = genericSkipMessage
		r.record(result)
		return result
	}

	if data.SendEmail {
		if err := r.imp.provider.NotifyAttendee(ctx, created.OrderID, ticket.EventID, created.Status); err != nil {
			// Email failures do not undo the import; the attendee
			// exists either way.
			r.imp.log.Warn("attendee email failed",
				"run_id", r.id,
				"line", r.line,
				"order_id", created.OrderID,
				"error", err,
			)
		}
	}

	result.Status = RowCreated
	result.AttendeeID = created.AttendeeID
	result.Message = ""
	r.record(result)

	return result
}

func (r *Run) record(result RowResult) {
	r.rows = append(r.rows, result)
	if result.Status == RowCreated {
		r.created++
	} else {
		r.skipped++
	}
}

// Result summarizes the run so far.
func (r *Run) Result(fileName string) RunResult {
	return RunResult{
		RunID:    r.id,
		Provider: r.imp.cfg.Provider,
		FileName: fileName,
		Total:    len(r.rows),
		Created:  r.created,
		Skipped:  r.skipped,
		Rows:     r.rows,
		Duration: time.Since(r.started),
	}
}

// ImportRows processes a batch of already-parsed rows as one run.
func (imp *Importer) ImportRows(ctx context.Context, rows []Row) RunResult {
	run := imp.OpenRun()
	defer run.Close()

	for _, row := range rows {
		if ctx.Err() != nil {
			break
		}
		run.ImportRow(ctx, row)
	}

	result := run.Result("")

	imp.log.Info("import run finished",
		"run_id", result.RunID,
		"total", result.Total,
		"created", result.Created,
		"skipped", result.Skipped,
	)

	return result
}
