package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/ticketry/attendee-importer/internal/csv"
)

// ErrEmptyFile is returned for uploads with no parseable rows.
var ErrEmptyFile = errors.New("empty file")

// ErrHeaderNotFound is returned when no row in the search window looks
// like a header for this provider's columns.
var ErrHeaderNotFound = errors.New("header row not found")

// recognizeColumn resolves a cleaned header cell to a canonical column
// key, honoring the operator's column remapping first.
func (imp *Importer) recognizeColumn(header string) (string, bool) {
	if mapped, ok := imp.cfg.Columns[header]; ok {
		header = mapped
	}
	for _, col := range imp.columns {
		if col == header {
			return col, true
		}
	}
	return "", false
}

// ImportCSV parses a CSV payload and imports every data row as one run.
// Parse and header errors fail the whole upload; anything row-level only
// skips that row.
func (imp *Importer) ImportCSV(ctx context.Context, data []byte, fileName string) (RunResult, error) {
	records, err := csv.Parse(data)
	if err != nil {
		return RunResult{}, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return RunResult{}, ErrEmptyFile
	}

	headerIdx := csv.FindHeader(records, imp.recognizeColumn)
	if headerIdx < 0 {
		return RunResult{}, ErrHeaderNotFound
	}

	// Precompute the canonical key for each header position; unknown
	// columns are carried along under their cleaned name so provider
	// extensions can still see them.
	header := records[headerIdx]
	keys := make([]string, len(header))
	for i, cell := range header {
		cleaned := csv.CleanHeader(cell)
		if key, ok := imp.recognizeColumn(cleaned); ok {
			keys[i] = key
		} else {
			keys[i] = cleaned
		}
	}

	run := imp.OpenRun()
	defer run.Close()

	for _, record := range records[headerIdx+1:] {
		if ctx.Err() != nil {
			break
		}
		if csv.IsEmptyRow(record) {
			continue
		}

		row := make(Row, len(keys))
		for i, cell := range record {
			if i >= len(keys) || keys[i] == "" {
				continue
			}
			row[keys[i]] = csv.CleanCell(cell)
		}

		run.ImportRow(ctx, row)
	}

	result := run.Result(fileName)

	imp.log.Info("csv import finished",
		"run_id", result.RunID,
		"file", fileName,
		"total", result.Total,
		"created", result.Created,
		"skipped", result.Skipped,
	)

	return result, nil
}
