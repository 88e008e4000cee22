package engine

import (
	"fmt"
	"math"
	"time"

	"exchange-core/src/cqrs"
)

// QuoteEntry is one two-sided level of a mass quote. Either side may be
// absent for a one-sided level.
type QuoteEntry struct {
	QuoteEntryID string       `json:"quoteEntryId"`
	QuoteSetID   string       `json:"quoteSetId"`
	EntryType    EntryType    `json:"entryType"`
	Bid          *SizeAtPrice `json:"bid,omitempty"`
	Offer        *SizeAtPrice `json:"offer,omitempty"`
}

func (q QuoteEntry) toClientRequestID(quoteID string) ClientRequestId {
	return ClientRequestId{
		Current:      q.QuoteEntryID,
		CollectionID: q.QuoteSetID,
		ParentID:     quoteID,
	}
}

// toBookEntries expands the level into book entries, bid before offer. Legs
// are initially keyed with the placed event's id; each is re-keyed by its
// own EntryAddedToBookEvent when it rests.
func (q QuoteEntry) toBookEntries(
	whenHappened time.Time,
	eventID cqrs.EventID,
	quoteID string,
	whoRequested Client,
	timeInForce TimeInForce,
) []BookEntry {
	var entries []BookEntry
	if q.Bid != nil {
		entries = append(entries, q.toBookEntry(SideBuy, *q.Bid, whenHappened, eventID, quoteID, whoRequested, timeInForce))
	}
	if q.Offer != nil {
		entries = append(entries, q.toBookEntry(SideSell, *q.Offer, whenHappened, eventID, quoteID, whoRequested, timeInForce))
	}
	return entries
}

func (q QuoteEntry) toBookEntry(
	side Side,
	level SizeAtPrice,
	whenHappened time.Time,
	eventID cqrs.EventID,
	quoteID string,
	whoRequested Client,
	timeInForce TimeInForce,
) BookEntry {
	price := level.Price
	return BookEntry{
		Key: BookEntryKey{
			Price:         &price,
			WhenSubmitted: whenHappened,
			EventID:       eventID,
		},
		RequestID:    q.toClientRequestID(quoteID),
		WhoRequested: whoRequested,
		IsQuote:      true,
		EntryType:    q.EntryType,
		Side:         side,
		TimeInForce:  timeInForce,
		Sizes:        NewEntrySizes(level.Size),
		Status:       StatusNew,
	}
}

// cancelExistingQuotes cancels every resting quote leg of the firm in this
// book. The empty transaction is returned when the firm has none resting.
func cancelExistingQuotes(books Books, whoRequested Client, whenHappened time.Time) Transaction {
	resting := books.FindBookEntries(func(entry BookEntry) bool {
		return entry.IsQuote && entry.WhoRequested.FirmID == whoRequested.FirmID
	})
	if len(resting) == 0 {
		return Transaction{Aggregate: books}
	}

	cancelled := make([]BookEntry, len(resting))
	for i, entry := range resting {
		cancelled[i] = entry.Cancelled()
	}

	event := MassQuoteCancelledEvent{
		EvID:         books.LastEventID.Next(),
		BookID:       books.BookID,
		Entries:      cancelled,
		WhoRequested: whoRequested,
		WhenHappened: whenHappened,
	}
	return playAndAppend(event, books)
}

// PlaceMassQuoteCommand requests replacing the firm's quotes in a book with
// a new set of two-sided levels.
type PlaceMassQuoteCommand struct {
	QuoteID       string
	WhoRequested  Client
	BookID        BookID
	Entries       []QuoteEntry
	TimeInForce   TimeInForce
	WhenRequested time.Time
}

// Execute cancels the firm's existing quote legs first, whether or not the
// new quote is accepted, then validates and places the new levels.
func (c PlaceMassQuoteCommand) Execute(books *Books) (Transaction, error) {
	if books == nil {
		return Transaction{}, fmt.Errorf("books %s not found", c.BookID)
	}

	transaction := cancelExistingQuotes(*books, c.WhoRequested, c.WhenRequested)

	if rejected, ok := c.validate(transaction.Aggregate); ok {
		return transaction.Append(playAndAppend(rejected, transaction.Aggregate)), nil
	}
	return transaction.Append(playAndAppend(c.toPlacedEvent(transaction.Aggregate), transaction.Aggregate)), nil
}

func (c PlaceMassQuoteCommand) toPlacedEvent(books Books) MassQuotePlacedEvent {
	return MassQuotePlacedEvent{
		EvID:         books.LastEventID.Next(),
		QuoteID:      c.QuoteID,
		WhoRequested: c.WhoRequested,
		BookID:       c.BookID,
		TimeInForce:  c.TimeInForce,
		Entries:      c.Entries,
		WhenHappened: c.WhenRequested,
	}
}

func (c PlaceMassQuoteCommand) toRejectedEvent(books Books, reason QuoteRejectReason, text string) MassQuoteRejectedEvent {
	return MassQuoteRejectedEvent{
		EvID:         books.LastEventID.Next(),
		QuoteID:      c.QuoteID,
		WhoRequested: c.WhoRequested,
		BookID:       c.BookID,
		TimeInForce:  c.TimeInForce,
		Entries:      c.Entries,
		WhenHappened: c.WhenRequested,
		RejectReason: reason,
		RejectText:   text,
	}
}

type quoteRejection struct {
	reason QuoteRejectReason
	text   string
}

func (c PlaceMassQuoteCommand) validate(books Books) (MassQuoteRejectedEvent, bool) {
	var failures []quoteRejection

	if c.BookID != books.BookID {
		failures = append(failures, quoteRejection{
			reason: QuoteRejectUnknownSymbol,
			text:   fmt.Sprintf("Unknown book ID: %s", c.BookID),
		})
	}
	if effective := books.TradingStatuses.EffectiveStatus(); !effective.AllowsPlacing() {
		failures = append(failures, quoteRejection{
			reason: QuoteRejectExchangeClosed,
			text:   fmt.Sprintf("Placing mass quote is currently not allowed: %s", effective),
		})
	}
	if size, found := c.findNonPositiveSize(); found {
		failures = append(failures, quoteRejection{
			reason: QuoteRejectInvalidQuantity,
			text:   fmt.Sprintf("Quote sizes must be positive: %d", size),
		})
	}
	if lowestOffer, highestBid, crossed := c.crossedPrices(); crossed {
		failures = append(failures, quoteRejection{
			reason: QuoteRejectInvalidBidAskSpread,
			text: fmt.Sprintf(
				"Quote prices must not cross within a mass quote: lowestSellPrice=%d, highestBuyPrice=%d",
				lowestOffer, highestBid,
			),
		})
	}

	if len(failures) == 0 {
		return MassQuoteRejectedEvent{}, false
	}

	reason := failures[0].reason
	text := failures[0].text
	for _, f := range failures[1:] {
		if f.reason != reason {
			reason = QuoteRejectOther
		}
		text = text + "; " + f.text
	}
	return c.toRejectedEvent(books, reason, text), true
}

func (c PlaceMassQuoteCommand) findNonPositiveSize() (int64, bool) {
	for _, entry := range c.Entries {
		if entry.Bid != nil && entry.Bid.Size <= 0 {
			return entry.Bid.Size, true
		}
		if entry.Offer != nil && entry.Offer.Size <= 0 {
			return entry.Offer.Size, true
		}
	}
	return 0, false
}

// crossedPrices checks the spread across all submitted levels: no bid may be
// at or above any offer.
func (c PlaceMassQuoteCommand) crossedPrices() (lowestOffer, highestBid Price, crossed bool) {
	lowestOffer = Price(math.MaxInt64)
	highestBid = Price(math.MinInt64)
	hasOffer, hasBid := false, false

	for _, entry := range c.Entries {
		if entry.Bid != nil && entry.Bid.Price > highestBid {
			highestBid = entry.Bid.Price
			hasBid = true
		}
		if entry.Offer != nil && entry.Offer.Price < lowestOffer {
			lowestOffer = entry.Offer.Price
			hasOffer = true
		}
	}
	return lowestOffer, highestBid, hasOffer && hasBid && lowestOffer <= highestBid
}
