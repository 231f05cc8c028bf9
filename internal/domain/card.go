package domain

import "time"

// Status is the lifecycle state of a card. Cards are never physically
// deleted; dropping out of the import source archives them.
type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// Row is one validated record from the import source. The importer
// converts the loosely-typed tabular input into this shape once, at the
// sync boundary, so everything downstream works with typed fields.
type Row struct {
	ID       string
	Subject  string
	Topic    string
	Question string
	Answer   string
	Notes    string
}

// Fields returns the row as a field map keyed by column name. Row-hash
// computation is defined over sorted field names, so the map shape is
// what matters, not declaration order.
func (r Row) Fields() map[string]string {
	return map[string]string{
		"id":       r.ID,
		"subject":  r.Subject,
		"topic":    r.Topic,
		"question": r.Question,
		"answer":   r.Answer,
		"notes":    r.Notes,
	}
}

// Card is one imported learning unit plus its content fingerprints.
// Owned and mutated exclusively by the sync engine.
type Card struct {
	ID            string
	Subject       string
	Topic         string
	Question      string
	Answer        string
	Notes         string
	Status        Status
	SourceRowHash string
	CoreHash      string
	ContextHash   string
	UpdatedAt     time.Time
}
