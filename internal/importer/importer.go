// Package importer turns raw delimited deck content into validated,
// typed rows for the sync engine. Conversion from the loosely-typed
// tabular shape happens exactly once, here at the sync boundary.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/jtkearn/deckbox/internal/domain"
)

// requiredHeaders must all be present in the header row, even the ones
// whose per-row values may be blank.
var requiredHeaders = []string{"id", "subject", "topic", "question", "answer", "notes"}

// requiredFields must be non-blank in every data row.
var requiredFields = []string{"id", "subject", "question", "answer"}

// Parse reads CSV content, validates headers and required fields, and
// returns the typed rows. Header names are matched case-insensitively
// after trimming. On failure it returns a *ValidationError; no rows are
// produced for a rejected import.
func Parse(r io.Reader) ([]domain.Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // ragged rows are handled per-field below
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) < 2 {
		return nil, &ValidationError{Kind: KindEmptyImport}
	}

	// Header row: trimmed, lowercased, positional.
	index := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var missingHeaders []string
	for _, h := range requiredHeaders {
		if _, ok := index[h]; !ok {
			missingHeaders = append(missingHeaders, h)
		}
	}
	if len(missingHeaders) > 0 {
		return nil, &ValidationError{Kind: KindMissingHeaders, MissingHeaders: missingHeaders}
	}

	field := func(record []string, name string) string {
		i := index[name]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	rows := make([]domain.Row, 0, len(records)-1)
	var issues []RowIssue
	for n, record := range records[1:] {
		var missing []string
		for _, f := range requiredFields {
			if field(record, f) == "" {
				missing = append(missing, f)
			}
		}
		if len(missing) > 0 {
			issues = append(issues, RowIssue{Row: n + 1, MissingFields: missing})
			continue
		}

		rows = append(rows, domain.Row{
			ID:       field(record, "id"),
			Subject:  field(record, "subject"),
			Topic:    field(record, "topic"),
			Question: field(record, "question"),
			Answer:   field(record, "answer"),
			Notes:    field(record, "notes"),
		})
	}

	if len(issues) > 0 {
		return nil, &ValidationError{Kind: KindMissingFields, Rows: issues}
	}
	if len(rows) == 0 {
		return nil, &ValidationError{Kind: KindEmptyImport}
	}
	return rows, nil
}
