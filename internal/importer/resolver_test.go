package importer

import (
	"context"
	"testing"
)

func TestResolveEvent_ByIDTitleAndSlug(t *testing.T) {
	f := seeded()
	imp := mustImporter(f, Config{Provider: ProviderRSVP})

	for _, key := range []string{"7", "Summer Gala", "summer-gala"} {
		run := imp.OpenRun()
		ev := run.resolveEvent(context.Background(), Row{ColEventName: key})
		if ev == nil || ev.ID != 7 {
			t.Errorf("resolveEvent(%q) = %v, want event 7", key, ev)
		}
		run.Close()
	}
}

func TestResolveEvent_EmptyKey(t *testing.T) {
	f := seeded()
	imp := mustImporter(f, Config{Provider: ProviderRSVP})
	run := imp.OpenRun()
	defer run.Close()

	if ev := run.resolveEvent(context.Background(), Row{}); ev != nil {
		t.Errorf("resolveEvent with no event_name = %v, want nil", ev)
	}
	if f.eventLookups != 0 {
		t.Errorf("eventLookups = %d, want 0 for empty key", f.eventLookups)
	}
}

func TestResolveEvent_MemoizesMisses(t *testing.T) {
	f := seeded()
	imp := mustImporter(f, Config{Provider: ProviderRSVP})
	run := imp.OpenRun()
	defer run.Close()

	row := Row{ColEventName: "No Such Event"}
	for i := 0; i < 3; i++ {
		if ev := run.resolveEvent(context.Background(), row); ev != nil {
			t.Fatalf("resolveEvent = %v, want nil", ev)
		}
	}

	if f.eventLookups != 1 {
		t.Errorf("eventLookups = %d, want 1 (miss should be memoized)", f.eventLookups)
	}
}

func TestResolveEvent_CacheClearedOnClose(t *testing.T) {
	f := seeded()
	imp := mustImporter(f, Config{Provider: ProviderRSVP})

	row := Row{ColEventName: "Summer Gala"}

	run := imp.OpenRun()
	run.resolveEvent(context.Background(), row)
	run.resolveEvent(context.Background(), row)
	run.Close()
	run.resolveEvent(context.Background(), row)

	if f.eventLookups != 2 {
		t.Errorf("eventLookups = %d, want 2 (one per open cache)", f.eventLookups)
	}
}

func TestResolveEvent_PinnedOverridesRow(t *testing.T) {
	f := seeded()
	imp := mustImporter(f, Config{Provider: ProviderRSVP, PinnedEventID: 7})
	run := imp.OpenRun()
	defer run.Close()

	ev := run.resolveEvent(context.Background(), Row{ColEventName: "No Such Event"})
	if ev == nil || ev.ID != 7 {
		t.Errorf("resolveEvent with pinned event = %v, want event 7", ev)
	}
}

func TestResolveTicket_ScopedToProvider(t *testing.T) {
	f := seeded()
	imp := mustImporter(f, Config{Provider: ProviderRSVP})
	run := imp.OpenRun()
	defer run.Close()

	event := &Event{ID: 7}

	tk := run.resolveTicket(context.Background(), Row{ColTicketName: "General Admission"}, event)
	if tk == nil || tk.ID != 31 {
		t.Fatalf("resolveTicket = %v, want ticket 31", tk)
	}

	// A ticket owned by another provider does not resolve.
	if tk := run.resolveTicket(context.Background(), Row{ColTicketName: "Early Bird"}, event); tk != nil {
		t.Errorf("resolveTicket for foreign provider = %v, want nil", tk)
	}
}

func TestResolveTicket_Memoized(t *testing.T) {
	f := seeded()
	imp := mustImporter(f, Config{Provider: ProviderRSVP})
	run := imp.OpenRun()
	defer run.Close()

	event := &Event{ID: 7}
	row := Row{ColTicketName: "General Admission"}

	run.resolveTicket(context.Background(), row, event)
	run.resolveTicket(context.Background(), row, event)

	if f.ticketLookups != 1 {
		t.Errorf("ticketLookups = %d, want 1", f.ticketLookups)
	}
}
