// Package fingerprint produces the stable content digests used for
// change detection. All digests are SHA-256 hex strings compared by
// exact equality; there is no partial or fuzzy matching.
package fingerprint

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"

	"github.com/jtkearn/deckbox/internal/domain"
)

// Normalize trims the text and collapses every internal whitespace run
// (spaces, tabs, newlines) to a single space. Case-sensitive.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func digest(text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("%x", sum)
}

// Core hashes the semantic payload of a card: normalized question
// followed by normalized answer.
func Core(question, answer string) string {
	return digest(Normalize(question) + Normalize(answer))
}

// Context hashes the normalized notes field on its own. A context-only
// change invalidates cloze progress but not qa progress.
func Context(notes string) string {
	return digest(Normalize(notes))
}

// Row hashes every field of a row. Keys are sorted lexicographically
// before concatenation so the digest is independent of the input column
// order, and any field-level change, including cosmetic ones, produces
// a new digest.
func Row(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+":"+Normalize(fields[k]))
	}
	return digest(strings.Join(parts, "|"))
}

// Import hashes a whole import in row order, letting the sync engine
// short-circuit when the source is byte-for-byte identical to the last
// applied import.
func Import(rows []domain.Row) string {
	var b strings.Builder
	for _, row := range rows {
		b.WriteString(Row(row.Fields()))
		b.WriteByte('\n')
	}
	return digest(b.String())
}
