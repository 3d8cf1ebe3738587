// Package csv holds the CSV-handling helpers shared by the import
// pipeline: tolerant parsing, UTF-8 sanitizing, header discovery, and cell
// cleaning for spreadsheet-exported artifacts.
package csv

import (
	"bytes"
	enccsv "encoding/csv"
	"strings"
	"unicode/utf8"
)

// MaxHeaderSearchRows is the maximum number of rows scanned for the header.
var MaxHeaderSearchRows = 20

// Parse reads an entire CSV payload. Input is sanitized to valid UTF-8
// first, rows may have ragged lengths, and lazy quoting is tolerated:
// spreadsheet exports are rarely pristine.
func Parse(data []byte) ([][]string, error) {
	r := enccsv.NewReader(bytes.NewReader(sanitizeUTF8(data)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.ReadAll()
}

// sanitizeUTF8 replaces invalid byte sequences with the replacement rune.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('\uFFFD')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}

// CleanCell strips a cell of the artifacts Excel and friends leave behind:
// BOMs, wrapping whitespace, and formula-escape prefixes like ="value".
func CleanCell(s string) string {
	s = strings.TrimPrefix(s, "\uFEFF")
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) && len(s) > 3 {
		s = s[2 : len(s)-1]
	}

	return strings.TrimSpace(s)
}

// CleanHeader normalizes a header cell for matching: cleaned like a cell,
// lowercased, with internal spaces collapsed to underscores.
func CleanHeader(s string) string {
	s = strings.ToLower(CleanCell(s))
	return strings.ReplaceAll(s, " ", "_")
}

// FindHeader returns the index of the first row within the search window
// where at least two cells resolve to recognized column keys, or -1.
// recognize maps a cleaned header cell to a canonical key and reports
// whether it is known.
func FindHeader(records [][]string, recognize func(string) (string, bool)) int {
	maxRows := MaxHeaderSearchRows
	if len(records) < maxRows {
		maxRows = len(records)
	}

	for i := 0; i < maxRows; i++ {
		known := 0
		for _, cell := range records[i] {
			if _, ok := recognize(CleanHeader(cell)); ok {
				known++
			}
		}
		if known >= 2 {
			return i
		}
	}

	return -1
}

// IsEmptyRow reports whether every cell is blank.
func IsEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
