// Package variant turns one stored card into its quizzable prompts.
package variant

import (
	"regexp"

	"github.com/jtkearn/deckbox/internal/domain"
)

// clozeMarker matches one cloze span: a double-brace or double-bracket
// opener through its matching closer.
var clozeMarker = regexp.MustCompile(`(?:\{\{|\[\[)(.*?)(?:\}\}|\]\])`)

const blank = "_____"

// HasCloze reports whether notes contains at least one cloze marker.
func HasCloze(notes string) bool {
	return clozeMarker.MatchString(notes)
}

// Expand derives the variants of a card. Every card yields a qa variant;
// a single merged cloze variant is added iff the notes contain at least
// one marker. The cloze front blanks every marker, the back reveals
// every marker's content highlighted.
func Expand(card domain.Card) []domain.Variant {
	back := card.Answer
	if card.Notes != "" {
		back = card.Answer + " <hr> " + card.Notes
	}

	variants := []domain.Variant{{
		RowID: card.ID,
		Type:  domain.VariantQA,
		Front: card.Question,
		Back:  back,
	}}

	if HasCloze(card.Notes) {
		variants = append(variants, domain.Variant{
			RowID: card.ID,
			Type:  domain.VariantCloze,
			Front: clozeMarker.ReplaceAllString(card.Notes, blank),
			Back:  clozeMarker.ReplaceAllString(card.Notes, "<mark>$1</mark>"),
		})
	}

	return variants
}

// Find returns the variant of the requested type, if the card can still
// derive it.
func Find(card domain.Card, variantType domain.VariantType) (domain.Variant, bool) {
	for _, v := range Expand(card) {
		if v.Type == variantType {
			return v, true
		}
	}
	return domain.Variant{}, false
}
