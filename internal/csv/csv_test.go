package csv

import (
	"strings"
	"testing"
)

func TestParse_RaggedRows(t *testing.T) {
	records, err := Parse([]byte("a,b,c\n1,2\n3,4,5,6\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Parse() rows = %d, want 3", len(records))
	}
	if len(records[1]) != 2 || len(records[2]) != 4 {
		t.Errorf("row lengths = %d, %d; want 2, 4", len(records[1]), len(records[2]))
	}
}

func TestParse_InvalidUTF8(t *testing.T) {
	data := []byte("name\nAd\xff\xfea\n")
	records, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Parse() rows = %d, want 2", len(records))
	}
	if !strings.Contains(records[1][0], "�") {
		t.Errorf("cell = %q, want invalid bytes replaced", records[1][0])
	}
}

func TestParse_LazyQuotes(t *testing.T) {
	records, err := Parse([]byte("name,note\nAda,=\"quoted\"\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if records[1][1] != `="quoted"` {
		t.Errorf("cell = %q", records[1][1])
	}
}

func TestCleanCell(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"  padded  ", "padded"},
		{"\ufeffbom", "bom"},
		{`="Excel escape"`, "Excel escape"},
		{`="  padded escape  "`, "padded escape"},
		{`=""`, `=""`},
		{"", ""},
	}

	for _, tt := range tests {
		if got := CleanCell(tt.in); got != tt.want {
			t.Errorf("CleanCell(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCleanHeader(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Event Name", "event_name"},
		{"  Attendee Email ", "attendee_email"},
		{"\ufeffTicket Name", "ticket_name"},
		{"going", "going"},
	}

	for _, tt := range tests {
		if got := CleanHeader(tt.in); got != tt.want {
			t.Errorf("CleanHeader(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func recognizer(known ...string) func(string) (string, bool) {
	return func(h string) (string, bool) {
		for _, k := range known {
			if k == h {
				return k, true
			}
		}
		return "", false
	}
}

func TestFindHeader(t *testing.T) {
	rec := recognizer("event_name", "ticket_name", "attendee_email")

	records := [][]string{
		{"Attendee export", "", ""},
		{"generated", "2024-05-01", ""},
		{"Event Name", "Ticket Name", "Notes"},
		{"Gala", "GA", "hi"},
	}

	if got := FindHeader(records, rec); got != 2 {
		t.Errorf("FindHeader() = %d, want 2", got)
	}
}

func TestFindHeader_SingleMatchIsNotAHeader(t *testing.T) {
	rec := recognizer("event_name")

	records := [][]string{
		{"Event Name", "whatever"},
	}

	if got := FindHeader(records, rec); got != -1 {
		t.Errorf("FindHeader() = %d, want -1 for a single recognized cell", got)
	}
}

func TestFindHeader_RespectsSearchWindow(t *testing.T) {
	rec := recognizer("event_name", "ticket_name")

	var records [][]string
	for i := 0; i < MaxHeaderSearchRows; i++ {
		records = append(records, []string{"noise", "noise"})
	}
	records = append(records, []string{"Event Name", "Ticket Name"})

	if got := FindHeader(records, rec); got != -1 {
		t.Errorf("FindHeader() = %d, want -1 for a header past the window", got)
	}
}

func TestIsEmptyRow(t *testing.T) {
	if !IsEmptyRow([]string{"", "  ", "\t"}) {
		t.Error("IsEmptyRow(blank cells) = false, want true")
	}
	if IsEmptyRow([]string{"", "x", ""}) {
		t.Error("IsEmptyRow(one value) = true, want false")
	}
	if !IsEmptyRow(nil) {
		t.Error("IsEmptyRow(nil) = false, want true")
	}
}
