package importer

import (
	"fmt"
	"strings"
)

// ErrorKind discriminates validation failures so callers can react
// without parsing message text.
type ErrorKind string

const (
	KindEmptyImport    ErrorKind = "EMPTY_IMPORT"
	KindMissingHeaders ErrorKind = "MISSING_HEADERS"
	KindMissingFields  ErrorKind = "MISSING_FIELDS_IN_ROWS"
)

// RowIssue records one rejected row: its 1-based position in the import
// and the required fields it left blank.
type RowIssue struct {
	Row           int
	MissingFields []string
}

// ValidationError reports a malformed or incomplete import. It is
// raised before any store mutation; a failed validation never leaves
// partial state behind.
type ValidationError struct {
	Kind           ErrorKind
	MissingHeaders []string
	Rows           []RowIssue
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case KindEmptyImport:
		return "import is empty"
	case KindMissingHeaders:
		return fmt.Sprintf("import is missing required headers: %s", strings.Join(e.MissingHeaders, ", "))
	case KindMissingFields:
		return fmt.Sprintf("%d row(s) are missing required fields", len(e.Rows))
	default:
		return "import validation failed"
	}
}

// TransportError reports a failure fetching the import source. It is
// recoverable: the caller surfaces it for retry.
type TransportError struct {
	Source string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("failed to fetch %s: status %d", e.Source, e.Status)
	}
	return fmt.Sprintf("failed to fetch %s: %v", e.Source, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
