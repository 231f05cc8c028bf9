package domain

import (
	"fmt"
	"time"
)

// VariantType names one quizzable rendering of a card.
type VariantType string

const (
	VariantQA    VariantType = "qa"
	VariantCloze VariantType = "cloze"
)

// Outcome is the learner's answer to a review.
type Outcome string

const (
	OutcomeKnow     Outcome = "know"
	OutcomeDontKnow Outcome = "dont_know"
)

// Progress is the per-learner scheduling state for one variant of one
// card. Box is always a valid index into the interval ladder, and DueAt
// is always derived from Box via the ladder.
type Progress struct {
	ProfileID      string
	RowID          string
	VariantType    VariantType
	Box            int
	DueAt          time.Time
	LastReviewedAt time.Time
	Lapses         int
}

// PK returns the composite primary key for a progress record.
func (p Progress) PK() string {
	return ProgressKey(p.ProfileID, p.RowID, p.VariantType)
}

// ProgressKey builds the composite progress key used by the store.
func ProgressKey(profileID, rowID string, variantType VariantType) string {
	return fmt.Sprintf("%s|%s::%s", profileID, rowID, variantType)
}

// Variant is one renderable prompt derived from a card.
type Variant struct {
	RowID string
	Type  VariantType
	Front string
	Back  string
}

// ID returns the variant identifier, unique per (card, type).
func (v Variant) ID() string {
	return fmt.Sprintf("%s::%s", v.RowID, v.Type)
}

// StudyItem is a hydrated queue entry: the variant to show plus the
// progress record that made it due.
type StudyItem struct {
	Variant
	Progress Progress
}

// SyncMeta is the singleton commit marker for the last applied import.
type SyncMeta struct {
	CSVHash    string
	LastSyncAt time.Time
}

// SyncResult counts the mutations one sync run performed.
type SyncResult struct {
	Added    int
	Updated  int
	Archived int
}
