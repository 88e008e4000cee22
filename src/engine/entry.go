package engine

import (
	"time"

	"exchange-core/src/cqrs"
)

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// ComparatorMultiplier flips price comparison so that the better price sorts
// first on either side: highest first for BUY, lowest first for SELL.
func (s Side) ComparatorMultiplier() int {
	if s == SideBuy {
		return -1
	}
	return 1
}

func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

func (s Side) SameSideBook(books Books) LimitBook {
	if s == SideBuy {
		return books.BuyLimitBook
	}
	return books.SellLimitBook
}

func (s Side) OppositeSideBook(books Books) LimitBook {
	if s == SideBuy {
		return books.SellLimitBook
	}
	return books.BuyLimitBook
}

type EntryType string

const (
	TypeLimit  EntryType = "LIMIT"
	TypeMarket EntryType = "MARKET"
)

// PriceRequired reports whether the price is required; if false the price
// must be absent.
func (t EntryType) PriceRequired() bool {
	return t == TypeLimit
}

type TimeInForce string

const (
	GoodTillCancel    TimeInForce = "GOOD_TILL_CANCEL"
	ImmediateOrCancel TimeInForce = "IMMEDIATE_OR_CANCEL"
	FillOrKill        TimeInForce = "FILL_OR_KILL"
)

func (t TimeInForce) CanStayOnBook(sizes EntrySizes) bool {
	return t == GoodTillCancel && sizes.Available > 0
}

var validEntryTypeTimeInForce = map[EntryType][]TimeInForce{
	TypeLimit:  {GoodTillCancel, ImmediateOrCancel, FillOrKill},
	TypeMarket: {ImmediateOrCancel, FillOrKill},
}

func ValidEntryTypeTimeInForceCombo(entryType EntryType, timeInForce TimeInForce) bool {
	for _, tif := range validEntryTypeTimeInForce[entryType] {
		if tif == timeInForce {
			return true
		}
	}
	return false
}

// BookEntryKey is the full priority tuple. Because the key embeds price,
// submission time and sequence number, insertion position in the limit book
// is final: no re-sorting ever happens after a trade or cancel.
type BookEntryKey struct {
	Price         *Price       `json:"price,omitempty"`
	WhenSubmitted time.Time    `json:"whenSubmitted"`
	EventID       cqrs.EventID `json:"eventId"`
}

// CompareBookEntryKeys orders keys by price (side-correct direction, absent
// price always first), then submission time ascending, then event id
// ascending.
func CompareBookEntryKeys(side Side, a, b BookEntryKey) int {
	if c := comparePrices(side, a.Price, b.Price); c != 0 {
		return c
	}
	if c := a.WhenSubmitted.Compare(b.WhenSubmitted); c != 0 {
		return c
	}
	return a.EventID.Compare(b.EventID)
}

func comparePrices(side Side, a, b *Price) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return side.ComparatorMultiplier() * a.Compare(*b)
	}
}

// BookEntry is one resting order or one leg of a quote.
type BookEntry struct {
	Key          BookEntryKey    `json:"key"`
	RequestID    ClientRequestId `json:"requestId"`
	WhoRequested Client          `json:"whoRequested"`
	IsQuote      bool            `json:"isQuote"`
	EntryType    EntryType       `json:"entryType"`
	Side         Side            `json:"side"`
	TimeInForce  TimeInForce     `json:"timeInForce"`
	Sizes        EntrySizes      `json:"sizes"`
	Status       EntryStatus     `json:"status"`
}

// Traded returns the entry after trading the given size, with the derived
// status.
func (e BookEntry) Traded(size int64) BookEntry {
	newSizes := e.Sizes.WithTraded(size)
	e.Sizes = newSizes
	e.Status = e.Status.Traded(newSizes)
	return e
}

// Cancelled returns the entry with all remaining quantity cancelled.
func (e BookEntry) Cancelled() BookEntry {
	e.Sizes = e.Sizes.WithCancelled()
	e.Status = StatusCancelled
	return e
}

// WithEventID re-keys the entry under a new sequence number, used when a
// matched remainder rests on the book under its EntryAddedToBookEvent id.
func (e BookEntry) WithEventID(eventID cqrs.EventID) BookEntry {
	e.Key.EventID = eventID
	return e
}

func (e BookEntry) ToTradeSideEntry() TradeSideEntry {
	return TradeSideEntry{
		RequestID:     e.RequestID,
		WhoRequested:  e.WhoRequested,
		IsQuote:       e.IsQuote,
		EntryType:     e.EntryType,
		Side:          e.Side,
		Sizes:         e.Sizes,
		Price:         e.Key.Price,
		TimeInForce:   e.TimeInForce,
		WhenSubmitted: e.Key.WhenSubmitted,
		EventID:       e.Key.EventID,
		Status:        e.Status,
	}
}

// TradeSideEntry is a value-copy snapshot of one side of a trade, carrying
// the sizes and status resulting from the trade. Trade events never hold a
// reference into the live book.
type TradeSideEntry struct {
	RequestID     ClientRequestId `json:"requestId"`
	WhoRequested  Client          `json:"whoRequested"`
	IsQuote       bool            `json:"isQuote"`
	EntryType     EntryType       `json:"entryType"`
	Side          Side            `json:"side"`
	Sizes         EntrySizes      `json:"sizes"`
	Price         *Price          `json:"price,omitempty"`
	TimeInForce   TimeInForce     `json:"timeInForce"`
	WhenSubmitted time.Time       `json:"whenSubmitted"`
	EventID       cqrs.EventID    `json:"eventId"`
	Status        EntryStatus     `json:"status"`
}

func (t TradeSideEntry) ToBookEntryKey() BookEntryKey {
	return BookEntryKey{Price: t.Price, WhenSubmitted: t.WhenSubmitted, EventID: t.EventID}
}
