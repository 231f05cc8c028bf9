package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jtkearn/deckbox/internal/domain"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "deckbox.db"))
	if err != nil {
		t.Fatalf("Open() returned an unexpected error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testCard(id string) domain.Card {
	return domain.Card{
		ID:            id,
		Subject:       "Maths",
		Question:      "2+2=?",
		Answer:        "4",
		Status:        domain.StatusActive,
		SourceRowHash: "rowhash-" + id,
		CoreHash:      "corehash-" + id,
		ContextHash:   "ctxhash-" + id,
		UpdatedAt:     time.Now().UTC(),
	}
}

func TestCardRoundTrip(t *testing.T) {
	db := openTestDB(t)

	card := testCard("card001")
	card.Topic = "Arithmetic"
	card.Notes = "with {{cloze}}"
	if err := db.UpsertCard(card); err != nil {
		t.Fatalf("UpsertCard() error: %v", err)
	}

	got, err := db.FindCardByID("card001")
	if err != nil {
		t.Fatalf("FindCardByID() error: %v", err)
	}
	if got == nil {
		t.Fatal("expected card, got nil")
	}
	if got.Question != card.Question || got.Notes != card.Notes || got.Status != domain.StatusActive {
		t.Errorf("round-tripped card mismatch: %+v", got)
	}

	missing, err := db.FindCardByID("nope")
	if err != nil {
		t.Fatalf("FindCardByID(missing) error: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing card")
	}
}

func TestCardUpsertReplaces(t *testing.T) {
	db := openTestDB(t)

	card := testCard("card001")
	if err := db.UpsertCard(card); err != nil {
		t.Fatalf("UpsertCard() error: %v", err)
	}

	card.Question = "Capital of France?"
	card.Answer = "Paris"
	card.SourceRowHash = "rowhash-v2"
	if err := db.UpsertCard(card); err != nil {
		t.Fatalf("UpsertCard() second write error: %v", err)
	}

	got, err := db.FindCardByID("card001")
	if err != nil {
		t.Fatalf("FindCardByID() error: %v", err)
	}
	if got.Answer != "Paris" || got.SourceRowHash != "rowhash-v2" {
		t.Errorf("expected replaced content, got %+v", got)
	}
}

func TestArchiveAndActiveIDs(t *testing.T) {
	db := openTestDB(t)

	for _, id := range []string{"a", "b", "c"} {
		if err := db.UpsertCard(testCard(id)); err != nil {
			t.Fatalf("UpsertCard(%s) error: %v", id, err)
		}
	}
	if err := db.ArchiveCard("b", time.Now()); err != nil {
		t.Fatalf("ArchiveCard() error: %v", err)
	}

	ids, err := db.ActiveCardIDs()
	if err != nil {
		t.Fatalf("ActiveCardIDs() error: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 active ids, got %v", ids)
	}
	for _, id := range ids {
		if id == "b" {
			t.Error("archived card still listed as active")
		}
	}

	archived, err := db.FindCardByID("b")
	if err != nil {
		t.Fatalf("FindCardByID() error: %v", err)
	}
	if archived == nil || archived.Status != domain.StatusArchived {
		t.Errorf("expected archived card preserved, got %+v", archived)
	}
}

func TestGetCardsByIDs(t *testing.T) {
	db := openTestDB(t)

	if err := db.UpsertCard(testCard("a")); err != nil {
		t.Fatal(err)
	}
	if err := db.UpsertCard(testCard("b")); err != nil {
		t.Fatal(err)
	}

	cards, err := db.GetCardsByIDs([]string{"a", "b", "missing"})
	if err != nil {
		t.Fatalf("GetCardsByIDs() error: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(cards))
	}
	if _, ok := cards["missing"]; ok {
		t.Error("unexpected entry for missing id")
	}

	none, err := db.GetCardsByIDs(nil)
	if err != nil {
		t.Fatalf("GetCardsByIDs(nil) error: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected empty map, got %v", none)
	}
}

func TestResetProgressCreatesLazily(t *testing.T) {
	db := openTestDB(t)
	now := time.Now().UTC().Truncate(time.Second)

	if err := db.ResetProgress("p1", "card001", domain.VariantQA, now); err != nil {
		t.Fatalf("ResetProgress() error: %v", err)
	}

	got, err := db.FindProgress("p1", "card001", domain.VariantQA)
	if err != nil {
		t.Fatalf("FindProgress() error: %v", err)
	}
	if got == nil {
		t.Fatal("expected progress record to be created")
	}
	if got.Box != 0 || got.Lapses != 0 {
		t.Errorf("expected fresh record, got %+v", got)
	}

	// Overwrites in place on a second reset.
	adv := *got
	adv.Box = 3
	adv.Lapses = 2
	if err := db.SaveProgress(adv); err != nil {
		t.Fatalf("SaveProgress() error: %v", err)
	}
	if err := db.ResetProgress("p1", "card001", domain.VariantQA, now); err != nil {
		t.Fatalf("ResetProgress() second call error: %v", err)
	}
	got, err = db.FindProgress("p1", "card001", domain.VariantQA)
	if err != nil {
		t.Fatalf("FindProgress() error: %v", err)
	}
	if got.Box != 0 || got.Lapses != 0 {
		t.Errorf("expected reset-in-place, got %+v", got)
	}
}

func TestGetDueProgress(t *testing.T) {
	db := openTestDB(t)
	now := time.Now().UTC().Truncate(time.Second)

	save := func(rowID string, vt domain.VariantType, due time.Time) {
		t.Helper()
		if err := db.SaveProgress(domain.Progress{
			ProfileID: "p1", RowID: rowID, VariantType: vt, DueAt: due,
		}); err != nil {
			t.Fatal(err)
		}
	}

	save("past", domain.VariantQA, now.Add(-time.Hour))
	save("exact", domain.VariantQA, now)
	save("future", domain.VariantQA, now.Add(time.Hour))
	// Another profile's record must not leak in.
	if err := db.SaveProgress(domain.Progress{
		ProfileID: "p2", RowID: "past", VariantType: domain.VariantQA, DueAt: now.Add(-time.Hour),
	}); err != nil {
		t.Fatal(err)
	}

	due, err := db.GetDueProgress("p1", now)
	if err != nil {
		t.Fatalf("GetDueProgress() error: %v", err)
	}
	if len(due) != 2 {
		t.Fatalf("expected 2 due records (past + exact), got %d", len(due))
	}
	for _, p := range due {
		if p.ProfileID != "p1" {
			t.Errorf("foreign profile record in due set: %+v", p)
		}
		if p.RowID == "future" {
			t.Error("future record in due set")
		}
	}
}

func TestResetRowProgressAcrossProfiles(t *testing.T) {
	db := openTestDB(t)
	now := time.Now().UTC().Truncate(time.Second)

	seed := func(profile string, vt domain.VariantType, box int) {
		t.Helper()
		if err := db.SaveProgress(domain.Progress{
			ProfileID: profile, RowID: "card001", VariantType: vt,
			Box: box, DueAt: now.Add(72 * time.Hour), Lapses: 1,
		}); err != nil {
			t.Fatal(err)
		}
	}
	seed("p1", domain.VariantQA, 4)
	seed("p2", domain.VariantQA, 2)
	seed("p1", domain.VariantCloze, 3)

	if err := db.ResetRowProgress("card001", domain.VariantQA, now); err != nil {
		t.Fatalf("ResetRowProgress() error: %v", err)
	}

	records, err := db.GetProgressByRow("card001")
	if err != nil {
		t.Fatalf("GetProgressByRow() error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for _, p := range records {
		switch p.VariantType {
		case domain.VariantQA:
			if p.Box != 0 || p.Lapses != 0 {
				t.Errorf("qa record for %s not reset: %+v", p.ProfileID, p)
			}
		case domain.VariantCloze:
			if p.Box != 3 {
				t.Errorf("cloze record should be untouched, got %+v", p)
			}
		}
	}
}

func TestSyncMetaSingleton(t *testing.T) {
	db := openTestDB(t)

	got, err := db.GetSyncMeta()
	if err != nil {
		t.Fatalf("GetSyncMeta() error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil before first sync, got %+v", got)
	}

	first := domain.SyncMeta{CSVHash: "hash-1", LastSyncAt: time.Now().UTC().Truncate(time.Second)}
	if err := db.SaveSyncMeta(first); err != nil {
		t.Fatalf("SaveSyncMeta() error: %v", err)
	}
	second := domain.SyncMeta{CSVHash: "hash-2", LastSyncAt: first.LastSyncAt.Add(time.Hour)}
	if err := db.SaveSyncMeta(second); err != nil {
		t.Fatalf("SaveSyncMeta() second write error: %v", err)
	}

	got, err = db.GetSyncMeta()
	if err != nil {
		t.Fatalf("GetSyncMeta() error: %v", err)
	}
	if got.CSVHash != "hash-2" {
		t.Errorf("expected latest marker, got %+v", got)
	}
}
