package engine

import (
	"time"

	"exchange-core/src/cqrs"
)

// OrderPlacedEvent is the primary event of an accepted order. Playing it
// feeds the order as an aggressor through the matching algorithm and
// time-in-force finalisation; the trades, rests and cancellations that
// result are its side-effect events.
type OrderPlacedEvent struct {
	EvID         cqrs.EventID    `json:"eventId"`
	RequestID    ClientRequestId `json:"requestId"`
	WhoRequested Client          `json:"whoRequested"`
	BookID       BookID          `json:"bookId"`
	EntryType    EntryType       `json:"entryType"`
	Side         Side            `json:"side"`
	Sizes        EntrySizes      `json:"sizes"`
	Price        *Price          `json:"price,omitempty"`
	TimeInForce  TimeInForce     `json:"timeInForce"`
	WhenHappened time.Time       `json:"whenHappened"`
}

func (e OrderPlacedEvent) EventID() cqrs.EventID { return e.EvID }
func (e OrderPlacedEvent) IsPrimary() bool       { return true }

func (e OrderPlacedEvent) Play(books Books) Transaction {
	placed := books.OfEventID(e.EvID)
	return matchAndFinalise(e.ToBookEntry(), placed)
}

func (e OrderPlacedEvent) ToBookEntry() BookEntry {
	return BookEntry{
		Key: BookEntryKey{
			Price:         e.Price,
			WhenSubmitted: e.WhenHappened,
			EventID:       e.EvID,
		},
		RequestID:    e.RequestID,
		WhoRequested: e.WhoRequested,
		EntryType:    e.EntryType,
		Side:         e.Side,
		TimeInForce:  e.TimeInForce,
		Sizes:        e.Sizes,
		Status:       StatusNew,
	}
}

type OrderRejectReason string

const (
	RejectUnknownSymbol        OrderRejectReason = "UNKNOWN_SYMBOL"
	RejectExchangeClosed       OrderRejectReason = "EXCHANGE_CLOSED"
	RejectIncorrectQuantity    OrderRejectReason = "INCORRECT_QUANTITY"
	RejectUnsupportedCharacter OrderRejectReason = "UNSUPPORTED_ORDER_CHARACTERISTIC"
	RejectOther                OrderRejectReason = "OTHER"
)

// OrderRejectedEvent is the primary event of a rejected order. It mutates no
// book entry; the sequence counter still advances so that rejections replay
// identically.
type OrderRejectedEvent struct {
	EvID         cqrs.EventID      `json:"eventId"`
	RequestID    ClientRequestId   `json:"requestId"`
	WhoRequested Client            `json:"whoRequested"`
	BookID       BookID            `json:"bookId"`
	EntryType    EntryType         `json:"entryType"`
	Side         Side              `json:"side"`
	Size         int64             `json:"size"`
	Price        *Price            `json:"price,omitempty"`
	TimeInForce  TimeInForce       `json:"timeInForce"`
	WhenHappened time.Time         `json:"whenHappened"`
	RejectReason OrderRejectReason `json:"rejectReason"`
	RejectText   string            `json:"rejectText,omitempty"`
}

func (e OrderRejectedEvent) EventID() cqrs.EventID { return e.EvID }
func (e OrderRejectedEvent) IsPrimary() bool       { return true }

func (e OrderRejectedEvent) Play(books Books) Transaction {
	return cqrs.NewTransaction(books.OfEventID(e.EvID))
}

// OrderCancelledByExchangeEvent records the exchange cancelling remaining
// quantity: an IOC remainder, a FOK kill, or a resting entry being removed.
type OrderCancelledByExchangeEvent struct {
	EvID         cqrs.EventID    `json:"eventId"`
	RequestID    ClientRequestId `json:"requestId"`
	WhoRequested Client          `json:"whoRequested"`
	BookID       BookID          `json:"bookId"`
	EntryType    EntryType       `json:"entryType"`
	Side         Side            `json:"side"`
	Sizes        EntrySizes      `json:"sizes"`
	Price        *Price          `json:"price,omitempty"`
	TimeInForce  TimeInForce     `json:"timeInForce"`
	Status       EntryStatus     `json:"status"`
	WhenHappened time.Time       `json:"whenHappened"`
}

func (e OrderCancelledByExchangeEvent) EventID() cqrs.EventID { return e.EvID }
func (e OrderCancelledByExchangeEvent) IsPrimary() bool       { return false }

func (e OrderCancelledByExchangeEvent) Play(books Books) Transaction {
	// Removal is a no-op when the cancelled entry never rested (aggressor
	// remainders); the sequence still advances.
	updated := books.RemoveBookEntriesMatching(e.EvID, e.Side, func(entry BookEntry) bool {
		return entry.WhoRequested.Equals(e.WhoRequested) && entry.RequestID.Current == e.RequestID.Current
	})
	return cqrs.NewTransaction(updated)
}
