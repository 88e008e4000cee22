package engine

import (
	"time"

	"exchange-core/src/cqrs"
)

// TradeEvent records one fill between an aggressor and a passive entry. Both
// sides are value-copy snapshots carrying their own post-trade sizes and
// status; playing the event updates or removes the passive entry in its book
// (the aggressor is not yet on a book while matching).
type TradeEvent struct {
	EvID         cqrs.EventID   `json:"eventId"`
	BookID       BookID         `json:"bookId"`
	Size         int64          `json:"size"`
	Price        Price          `json:"price"`
	WhenHappened time.Time      `json:"whenHappened"`
	Aggressor    TradeSideEntry `json:"aggressor"`
	Passive      TradeSideEntry `json:"passive"`
}

func (e TradeEvent) EventID() cqrs.EventID { return e.EvID }
func (e TradeEvent) IsPrimary() bool       { return false }

func (e TradeEvent) Play(books Books) Transaction {
	updated := books.OfEventID(e.EvID).Traded(e.Aggressor).Traded(e.Passive)
	return cqrs.NewTransaction(updated)
}
