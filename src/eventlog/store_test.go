package eventlog

import (
	"testing"
	"time"

	"exchange-core/src/engine"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Failed to close store: %v", err)
		}
	})
	return store
}

func sessionEvents(t *testing.T, bookID engine.BookID) []engine.Event {
	t.Helper()

	created := engine.BooksCreatedEvent{
		EvID:            0,
		BookID:          bookID,
		BusinessDate:    "2026-09-01",
		TradingStatuses: engine.TradingStatuses{Default: engine.OpenForTrading},
	}
	books := created.Play(engine.NewBooks(bookID)).Aggregate
	events := []engine.Event{engine.Event(created)}

	price := engine.Price(15050)
	cmd := engine.PlaceOrderCommand{
		RequestID:     engine.ClientRequestId{Current: "r-1"},
		WhoRequested:  engine.Client{FirmID: "firm-a"},
		BookID:        bookID,
		EntryType:     engine.TypeLimit,
		Side:          engine.SideSell,
		Size:          500,
		Price:         &price,
		TimeInForce:   engine.GoodTillCancel,
		WhenRequested: time.Date(2026, time.September, 1, 9, 0, 0, 0, time.UTC),
	}
	transaction, err := cmd.Execute(&books)
	if err != nil {
		t.Fatalf("Failed to execute setup command: %v", err)
	}
	return append(events, transaction.Events...)
}

func TestAppendAndReadBack(t *testing.T) {
	store := openStore(t)
	events := sessionEvents(t, "INST-1")

	if err := store.Append("INST-1", events); err != nil {
		t.Fatalf("Failed to append: %v", err)
	}

	read, err := store.ReadBook("INST-1")
	if err != nil {
		t.Fatalf("Failed to read back: %v", err)
	}
	if len(read) != len(events) {
		t.Fatalf("Expected %d events, got: %d", len(events), len(read))
	}
	for i, event := range read {
		if event.EventID() != events[i].EventID() {
			t.Errorf("Expected event %d to carry id %d, got: %d", i, events[i].EventID(), event.EventID())
		}
	}
}

func TestReadBookKeepsSequenceOrder(t *testing.T) {
	store := openStore(t)
	events := sessionEvents(t, "INST-1")

	// append out of order across two batches; key order must still win
	if err := store.Append("INST-1", events[1:]); err != nil {
		t.Fatalf("Failed to append: %v", err)
	}
	if err := store.Append("INST-1", events[:1]); err != nil {
		t.Fatalf("Failed to append: %v", err)
	}

	read, err := store.ReadBook("INST-1")
	if err != nil {
		t.Fatalf("Failed to read back: %v", err)
	}
	last := read[0].EventID()
	for _, event := range read[1:] {
		if !event.EventID().IsNextOf(last) {
			t.Errorf("Expected contiguous ascending ids, got %d after %d", event.EventID(), last)
		}
		last = event.EventID()
	}
}

func TestBooksAreIsolated(t *testing.T) {
	store := openStore(t)

	if err := store.Append("INST-1", sessionEvents(t, "INST-1")); err != nil {
		t.Fatalf("Failed to append: %v", err)
	}
	if err := store.Append("INST-2", sessionEvents(t, "INST-2")[:1]); err != nil {
		t.Fatalf("Failed to append: %v", err)
	}

	first, err := store.ReadBook("INST-1")
	if err != nil {
		t.Fatalf("Failed to read INST-1: %v", err)
	}
	second, err := store.ReadBook("INST-2")
	if err != nil {
		t.Fatalf("Failed to read INST-2: %v", err)
	}
	if len(first) != 3 || len(second) != 1 {
		t.Errorf("Expected 3 and 1 events, got: %d and %d", len(first), len(second))
	}
}

func TestBookIDs(t *testing.T) {
	store := openStore(t)

	ids, err := store.BookIDs()
	if err != nil {
		t.Fatalf("Failed to scan empty store: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("Expected no book ids in an empty store, got: %v", ids)
	}

	if err := store.Append("INST-2", sessionEvents(t, "INST-2")); err != nil {
		t.Fatalf("Failed to append: %v", err)
	}
	if err := store.Append("INST-1", sessionEvents(t, "INST-1")); err != nil {
		t.Fatalf("Failed to append: %v", err)
	}

	ids, err = store.BookIDs()
	if err != nil {
		t.Fatalf("Failed to scan book ids: %v", err)
	}
	if len(ids) != 2 || ids[0] != "INST-1" || ids[1] != "INST-2" {
		t.Errorf("Expected [INST-1 INST-2], got: %v", ids)
	}
}

func TestReadMissingBookReturnsEmpty(t *testing.T) {
	store := openStore(t)

	read, err := store.ReadBook("INST-404")
	if err != nil {
		t.Fatalf("Expected no error for missing book, got: %v", err)
	}
	if len(read) != 0 {
		t.Errorf("Expected empty log, got: %d events", len(read))
	}
}
