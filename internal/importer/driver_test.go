package importer

import (
	"context"
	"strings"
	"testing"
)

func TestImportRow_Created(t *testing.T) {
	f := seeded()
	imp := mustImporter(f, Config{Provider: ProviderRSVP})
	run := imp.OpenRun()
	defer run.Close()

	result := run.ImportRow(context.Background(), validRSVPRow())

	if result.Status != RowCreated {
		t.Fatalf("Status = %q (message %q), want created", result.Status, result.Message)
	}
	if result.AttendeeID == 0 {
		t.Error("AttendeeID = 0, want the new attendee id")
	}
	if result.Line != 1 {
		t.Errorf("Line = %d, want 1", result.Line)
	}
	if len(f.attendees) != 1 {
		t.Errorf("attendees stored = %d, want 1", len(f.attendees))
	}
}

func TestImportRow_UnknownEventMessage(t *testing.T) {
	f := seeded()
	imp := mustImporter(f, Config{Provider: ProviderRSVP})
	run := imp.OpenRun()
	defer run.Close()

	row := validRSVPRow()
	row[ColEventName] = "No Such Event"

	result := run.ImportRow(context.Background(), row)

	if result.Status != RowSkipped {
		t.Fatalf("Status = %q, want skipped", result.Status)
	}
	if result.Message != "An event is required to import attendees." {
		t.Errorf("Message = %q, want event-required message", result.Message)
	}
	if len(f.attendees) != 0 {
		t.Error("attendee stored for a skipped row")
	}
}

func TestImportRow_EmptyEmailSkipsBeforeAnyWrite(t *testing.T) {
	f := seeded()
	imp := mustImporter(f, Config{Provider: ProviderRSVP})
	run := imp.OpenRun()
	defer run.Close()

	row := validRSVPRow()
	row[ColEmail] = ""

	result := run.ImportRow(context.Background(), row)

	if result.Status != RowSkipped {
		t.Fatalf("Status = %q, want skipped", result.Status)
	}
	if result.Message != "Row could not be imported." {
		t.Errorf("Message = %q, want generic skip message", result.Message)
	}
	if len(f.attendees) != 0 {
		t.Error("attendee stored despite empty email")
	}
	if got := metaOf(f, 31, MetaStock); got != "" {
		t.Errorf("_stock = %q, want untouched", got)
	}
}

func TestImportRow_StoreFailureDoesNotAbortRun(t *testing.T) {
	f := seeded()
	imp := mustImporter(f, Config{Provider: ProviderRSVP})
	run := imp.OpenRun()
	defer run.Close()

	f.failAttendee = errStoreDown
	first := run.ImportRow(context.Background(), validRSVPRow())
	if first.Status != RowSkipped || first.Message != "Row could not be imported." {
		t.Errorf("failed row = %+v, want generic skip", first)
	}

	f.failAttendee = nil
	second := run.ImportRow(context.Background(), validRSVPRow())
	if second.Status != RowCreated {
		t.Errorf("second row = %+v, want created after store recovered", second)
	}
}

func TestImportRow_EmailDispatch(t *testing.T) {
	f := seeded()
	imp := mustImporter(f, Config{Provider: ProviderRSVP, SendEmail: true})
	run := imp.OpenRun()
	defer run.Close()

	run.ImportRow(context.Background(), validRSVPRow())

	notGoing := validRSVPRow()
	notGoing[ColGoing] = "no"
	run.ImportRow(context.Background(), notGoing)

	muted := validRSVPRow()
	muted[ColSendEmail] = "no"
	run.ImportRow(context.Background(), muted)

	if len(f.ticketEmails) != 1 {
		t.Errorf("ticketEmails = %d, want 1 (attending row)", len(f.ticketEmails))
	}
	if len(f.nonAttendanceEmails) != 1 {
		t.Errorf("nonAttendanceEmails = %d, want 1 (not-going row)", len(f.nonAttendanceEmails))
	}
}

func TestImportRows_Summary(t *testing.T) {
	f := seeded()
	imp := mustImporter(f, Config{Provider: ProviderRSVP})

	bad := validRSVPRow()
	bad[ColEventName] = "No Such Event"

	result := imp.ImportRows(context.Background(), []Row{
		validRSVPRow(),
		bad,
		validRSVPRow(),
	})

	if result.Total != 3 || result.Created != 2 || result.Skipped != 1 {
		t.Errorf("summary = %d/%d/%d, want 3 total, 2 created, 1 skipped",
			result.Total, result.Created, result.Skipped)
	}
	if result.RunID == "" {
		t.Error("RunID is empty")
	}
	if result.Provider != ProviderRSVP {
		t.Errorf("Provider = %q, want rsvp", result.Provider)
	}
	if len(result.Rows) != 3 {
		t.Errorf("Rows = %d, want 3", len(result.Rows))
	}

	// One store lookup per distinct key despite three rows.
	if f.eventLookups != 2 {
		t.Errorf("eventLookups = %d, want 2 (memoized per run)", f.eventLookups)
	}
}

func TestImportCSV_EndToEnd(t *testing.T) {
	f := seeded()
	imp := mustImporter(f, Config{Provider: ProviderRSVP})

	payload := strings.Join([]string{
		"Exported attendees,,,,",
		"\ufeffEvent Name,Ticket Name,Attendee Name,Attendee Email,Going",
		`Summer Gala,General Admission,="Ada Lovelace",ada@example.com,yes`,
		",,,,",
		"Summer Gala,General Admission,Grace Hopper,grace@example.com,no",
		"No Such Event,General Admission,Alan Turing,alan@example.com,yes",
	}, "\n")

	result, err := imp.ImportCSV(context.Background(), []byte(payload), "attendees.csv")
	if err != nil {
		t.Fatalf("ImportCSV() error = %v", err)
	}

	if result.Total != 3 || result.Created != 2 || result.Skipped != 1 {
		t.Fatalf("summary = %d/%d/%d, want 3 total, 2 created, 1 skipped",
			result.Total, result.Created, result.Skipped)
	}
	if result.FileName != "attendees.csv" {
		t.Errorf("FileName = %q", result.FileName)
	}

	// Cell cleaning: the ="..." wrapper is stripped.
	if f.attendees[0].FullName != "Ada Lovelace" {
		t.Errorf("FullName = %q, want cleaned cell value", f.attendees[0].FullName)
	}
	// Row-level going flag made it through header normalization.
	if f.attendees[1].Status != "no" {
		t.Errorf("second attendee Status = %q, want no", f.attendees[1].Status)
	}
}

func TestImportCSV_ColumnRemap(t *testing.T) {
	f := seeded()
	imp := mustImporter(f, Config{
		Provider: ProviderRSVP,
		Columns: map[string]string{
			"e-mail":    ColEmail,
			"guest":     ColAttendeeName,
			"happening": ColEventName,
		},
	})

	payload := strings.Join([]string{
		"Happening,Ticket Name,Guest,E-Mail",
		"Summer Gala,General Admission,Ada Lovelace,ada@example.com",
	}, "\n")

	result, err := imp.ImportCSV(context.Background(), []byte(payload), "remap.csv")
	if err != nil {
		t.Fatalf("ImportCSV() error = %v", err)
	}
	if result.Created != 1 {
		t.Fatalf("Created = %d (rows %+v), want 1", result.Created, result.Rows)
	}
	if f.attendees[0].Email != "ada@example.com" {
		t.Errorf("Email = %q, want the remapped column value", f.attendees[0].Email)
	}
}

func TestImportCSV_ShortRecordLeavesFieldsAbsent(t *testing.T) {
	f := seeded()
	imp := mustImporter(f, Config{Provider: ProviderRSVP})

	// The data row ends before the attendee_email column: structural
	// validation rejects it for the missing key.
	payload := strings.Join([]string{
		"Event Name,Ticket Name,Attendee Name,Attendee Email",
		"Summer Gala,General Admission,Ada Lovelace",
	}, "\n")

	result, err := imp.ImportCSV(context.Background(), []byte(payload), "short.csv")
	if err != nil {
		t.Fatalf("ImportCSV() error = %v", err)
	}
	if result.Skipped != 1 || result.Created != 0 {
		t.Errorf("summary = %+v, want the short row skipped", result)
	}
}

func TestImportCSV_EmptyFile(t *testing.T) {
	imp := mustImporter(seeded(), Config{Provider: ProviderRSVP})

	if _, err := imp.ImportCSV(context.Background(), nil, "empty.csv"); err != ErrEmptyFile {
		t.Errorf("ImportCSV(empty) error = %v, want ErrEmptyFile", err)
	}
}

func TestImportCSV_HeaderNotFound(t *testing.T) {
	imp := mustImporter(seeded(), Config{Provider: ProviderRSVP})

	payload := "just,some,random\ncells,with,nothing\n"
	if _, err := imp.ImportCSV(context.Background(), []byte(payload), "noheader.csv"); err != ErrHeaderNotFound {
		t.Errorf("ImportCSV(no header) error = %v, want ErrHeaderNotFound", err)
	}
}

func TestRun_CloseIsolatesCaches(t *testing.T) {
	f := seeded()
	imp := mustImporter(f, Config{Provider: ProviderRSVP})

	run := imp.OpenRun()
	run.ImportRow(context.Background(), validRSVPRow())
	run.Close()

	run2 := imp.OpenRun()
	run2.ImportRow(context.Background(), validRSVPRow())
	run2.Close()

	// Each run resolves the event and ticket once for itself.
	if f.eventLookups != 2 {
		t.Errorf("eventLookups = %d, want 2 across two runs", f.eventLookups)
	}
	if f.ticketLookups != 2 {
		t.Errorf("ticketLookups = %d, want 2 across two runs", f.ticketLookups)
	}
}
