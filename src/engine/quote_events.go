package engine

import (
	"time"

	"exchange-core/src/cqrs"
)

// MassQuoteCancelledEvent records the cancellation of every resting quote
// leg of a firm, with each leg's cancelled-size delta. It precedes the
// placed or rejected event of the quote that displaced them.
type MassQuoteCancelledEvent struct {
	EvID         cqrs.EventID `json:"eventId"`
	BookID       BookID       `json:"bookId"`
	Entries      []BookEntry  `json:"entries"`
	WhoRequested Client       `json:"whoRequested"`
	WhenHappened time.Time    `json:"whenHappened"`
}

func (e MassQuoteCancelledEvent) EventID() cqrs.EventID { return e.EvID }
func (e MassQuoteCancelledEvent) IsPrimary() bool       { return true }

func (e MassQuoteCancelledEvent) Play(books Books) Transaction {
	return cqrs.NewTransaction(books.RemoveBookEntries(e.EvID, e.Entries))
}

// MassQuotePlacedEvent is the accepted quote's header event: it advances the
// sequence, then playing it expands the levels into book entries and runs
// each through matching and finalisation, level by level, bid then offer.
type MassQuotePlacedEvent struct {
	EvID         cqrs.EventID `json:"eventId"`
	QuoteID      string       `json:"quoteId"`
	WhoRequested Client       `json:"whoRequested"`
	BookID       BookID       `json:"bookId"`
	TimeInForce  TimeInForce  `json:"timeInForce"`
	Entries      []QuoteEntry `json:"entries"`
	WhenHappened time.Time    `json:"whenHappened"`
}

func (e MassQuotePlacedEvent) EventID() cqrs.EventID { return e.EvID }
func (e MassQuotePlacedEvent) IsPrimary() bool       { return true }

func (e MassQuotePlacedEvent) Play(books Books) Transaction {
	transaction := cqrs.NewTransaction(books.OfEventID(e.EvID))
	for _, entry := range e.toBookEntries() {
		transaction = transaction.Append(matchAndFinalise(entry, transaction.Aggregate))
	}
	return transaction
}

func (e MassQuotePlacedEvent) toBookEntries() []BookEntry {
	var entries []BookEntry
	for _, quoteEntry := range e.Entries {
		entries = append(entries, quoteEntry.toBookEntries(
			e.WhenHappened, e.EvID, e.QuoteID, e.WhoRequested, e.TimeInForce,
		)...)
	}
	return entries
}

type QuoteRejectReason string

const (
	QuoteRejectUnknownSymbol       QuoteRejectReason = "UNKNOWN_SYMBOL"
	QuoteRejectExchangeClosed      QuoteRejectReason = "EXCHANGE_CLOSED"
	QuoteRejectInvalidQuantity     QuoteRejectReason = "INVALID_QUANTITY"
	QuoteRejectInvalidBidAskSpread QuoteRejectReason = "INVALID_BID_ASK_SPREAD"
	QuoteRejectOther               QuoteRejectReason = "OTHER"
)

// MassQuoteRejectedEvent is the primary event of a rejected mass quote. The
// firm's previous quotes stay cancelled; no new leg is added.
type MassQuoteRejectedEvent struct {
	EvID         cqrs.EventID      `json:"eventId"`
	QuoteID      string            `json:"quoteId"`
	WhoRequested Client            `json:"whoRequested"`
	BookID       BookID            `json:"bookId"`
	TimeInForce  TimeInForce       `json:"timeInForce"`
	Entries      []QuoteEntry      `json:"entries"`
	WhenHappened time.Time         `json:"whenHappened"`
	RejectReason QuoteRejectReason `json:"rejectReason"`
	RejectText   string            `json:"rejectText,omitempty"`
}

func (e MassQuoteRejectedEvent) EventID() cqrs.EventID { return e.EvID }
func (e MassQuoteRejectedEvent) IsPrimary() bool       { return true }

func (e MassQuoteRejectedEvent) Play(books Books) Transaction {
	return cqrs.NewTransaction(books.OfEventID(e.EvID))
}
