package engine

import (
	"fmt"

	"exchange-core/src/cqrs"
)

type BookID string

// Books is the per-instrument aggregate root: the two priced sides, the
// trading status stack and the last applied sequence number. Books is an
// immutable value; every mutation goes through playing an event and yields a
// new snapshot, which is what makes replay bit-identical.
type Books struct {
	BookID          BookID
	BuyLimitBook    LimitBook
	SellLimitBook   LimitBook
	BusinessDate    string
	TradingStatuses TradingStatuses
	LastEventID     cqrs.EventID
}

func NewBooks(bookID BookID) Books {
	return Books{
		BookID:        bookID,
		BuyLimitBook:  NewLimitBook(SideBuy),
		SellLimitBook: NewLimitBook(SideSell),
		TradingStatuses: TradingStatuses{
			Default: OpenForTrading,
		},
	}
}

// VerifyEventID asserts that the incoming event directly succeeds the last
// applied one. This is the single point enforcing event-log contiguity; a
// mismatch means replay corruption or a caller bug, not user input, so it is
// fatal.
func (b Books) VerifyEventID(eventID cqrs.EventID) cqrs.EventID {
	if !eventID.IsNextOf(b.LastEventID) {
		panic(fmt.Sprintf(
			"event is not the next expected in book %s: lastEventId=%d, incomingEventId=%d",
			b.BookID, b.LastEventID, eventID,
		))
	}
	return eventID
}

// OfEventID advances only the sequence counter, for events that mutate no
// book entry.
func (b Books) OfEventID(eventID cqrs.EventID) Books {
	b.LastEventID = b.VerifyEventID(eventID)
	return b
}

// AddBookEntry routes the entry to its side's book. The entry's key event id
// must be the next in sequence.
func (b Books) AddBookEntry(entry BookEntry) Books {
	b.LastEventID = b.VerifyEventID(entry.Key.EventID)
	if entry.Side == SideBuy {
		b.BuyLimitBook = b.BuyLimitBook.Add(entry)
	} else {
		b.SellLimitBook = b.SellLimitBook.Add(entry)
	}
	return b
}

// RemoveBookEntries batch-removes the given entries from whichever side book
// each belongs to.
func (b Books) RemoveBookEntries(eventID cqrs.EventID, entries []BookEntry) Books {
	b.LastEventID = b.VerifyEventID(eventID)
	b.BuyLimitBook = b.BuyLimitBook.RemoveAll(entries)
	b.SellLimitBook = b.SellLimitBook.RemoveAll(entries)
	return b
}

// RemoveBookEntriesMatching removes every entry of the given side matching
// the predicate, advancing the sequence whether or not anything matched.
func (b Books) RemoveBookEntriesMatching(eventID cqrs.EventID, side Side, pred func(BookEntry) bool) Books {
	b.LastEventID = b.VerifyEventID(eventID)
	book := side.SameSideBook(b)
	matched := book.FindAll(pred)
	if len(matched) == 0 {
		return b
	}
	if side == SideBuy {
		b.BuyLimitBook = b.BuyLimitBook.RemoveAll(matched)
	} else {
		b.SellLimitBook = b.SellLimitBook.RemoveAll(matched)
	}
	return b
}

// Traded applies one side of a trade snapshot to the book holding it. The
// sequence counter is untouched; TradeEvent advances it once for both sides.
func (b Books) Traded(entry TradeSideEntry) Books {
	if entry.Side == SideBuy {
		b.BuyLimitBook = b.BuyLimitBook.Update(entry)
	} else {
		b.SellLimitBook = b.SellLimitBook.Update(entry)
	}
	return b
}

// FindBookEntries collects entries from both sides matching the predicate,
// buy side first, each side in priority order.
func (b Books) FindBookEntries(pred func(BookEntry) bool) []BookEntry {
	found := b.BuyLimitBook.FindAll(pred)
	return append(found, b.SellLimitBook.FindAll(pred)...)
}
