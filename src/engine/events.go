package engine

import (
	"time"

	"exchange-core/src/cqrs"
)

// Event is the book aggregate's event contract. Every persisted event
// carries its book, its sequence number and when it happened; playing it is
// a pure function of the aggregate so that replay is deterministic.
type Event = cqrs.Event[Books]

type Transaction = cqrs.Transaction[Books]

// playAndAppend plays the event and returns its transaction with the event
// itself prepended before the side effects it generated.
func playAndAppend(event Event, books Books) Transaction {
	played := event.Play(books)
	events := make([]Event, 0, len(played.Events)+1)
	events = append(events, event)
	events = append(events, played.Events...)
	return Transaction{Aggregate: played.Aggregate, Events: events}
}

// BooksCreatedEvent is the genesis event of a book. It carries sequence
// number zero; the first command against the book produces event one.
type BooksCreatedEvent struct {
	EvID            cqrs.EventID    `json:"eventId"`
	BookID          BookID          `json:"bookId"`
	BusinessDate    string          `json:"businessDate"`
	TradingStatuses TradingStatuses `json:"tradingStatuses"`
}

func (e BooksCreatedEvent) EventID() cqrs.EventID { return e.EvID }
func (e BooksCreatedEvent) IsPrimary() bool       { return true }

func (e BooksCreatedEvent) Play(Books) Transaction {
	books := NewBooks(e.BookID)
	books.BusinessDate = e.BusinessDate
	books.TradingStatuses = e.TradingStatuses
	books.LastEventID = e.EvID
	return cqrs.NewTransaction(books)
}

// EntryAddedToBookEvent records an entry resting on the book: a GTC
// remainder after matching, or a quote leg.
type EntryAddedToBookEvent struct {
	EvID         cqrs.EventID `json:"eventId"`
	BookID       BookID       `json:"bookId"`
	Entry        BookEntry    `json:"entry"`
	WhenHappened time.Time    `json:"whenHappened"`
}

func (e EntryAddedToBookEvent) EventID() cqrs.EventID { return e.EvID }
func (e EntryAddedToBookEvent) IsPrimary() bool       { return false }

func (e EntryAddedToBookEvent) Play(books Books) Transaction {
	return cqrs.NewTransaction(books.AddBookEntry(e.Entry))
}

// EntriesRemovedFromBookEvent records a batch removal of resting entries.
type EntriesRemovedFromBookEvent struct {
	EvID         cqrs.EventID `json:"eventId"`
	BookID       BookID       `json:"bookId"`
	Entries      []BookEntry  `json:"entries"`
	WhenHappened time.Time    `json:"whenHappened"`
}

func (e EntriesRemovedFromBookEvent) EventID() cqrs.EventID { return e.EvID }
func (e EntriesRemovedFromBookEvent) IsPrimary() bool       { return false }

func (e EntriesRemovedFromBookEvent) Play(books Books) Transaction {
	return cqrs.NewTransaction(books.RemoveBookEntries(e.EvID, e.Entries))
}
