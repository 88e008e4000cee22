package engine

import (
	"fmt"
	"time"
)

// PlaceOrderCommand requests placing a single order against a book.
type PlaceOrderCommand struct {
	RequestID     ClientRequestId
	WhoRequested  Client
	BookID        BookID
	EntryType     EntryType
	Side          Side
	Size          int64
	Price         *Price
	TimeInForce   TimeInForce
	WhenRequested time.Time
}

// Execute validates the command against the current aggregate. A rejection
// is a successful outcome carrying an OrderRejectedEvent; the error return
// is reserved for commands that cannot be addressed at all.
func (c PlaceOrderCommand) Execute(books *Books) (Transaction, error) {
	if books == nil {
		return Transaction{}, fmt.Errorf("books %s not found", c.BookID)
	}

	if rejected, ok := c.validate(*books); ok {
		return playAndAppend(rejected, *books), nil
	}
	return playAndAppend(c.toPlacedEvent(*books), *books), nil
}

func (c PlaceOrderCommand) toPlacedEvent(books Books) OrderPlacedEvent {
	return OrderPlacedEvent{
		EvID:         books.LastEventID.Next(),
		RequestID:    c.RequestID,
		WhoRequested: c.WhoRequested,
		BookID:       c.BookID,
		EntryType:    c.EntryType,
		Side:         c.Side,
		Sizes:        NewEntrySizes(c.Size),
		Price:        c.Price,
		TimeInForce:  c.TimeInForce,
		WhenHappened: c.WhenRequested,
	}
}

func (c PlaceOrderCommand) toRejectedEvent(books Books, reason OrderRejectReason, text string) OrderRejectedEvent {
	return OrderRejectedEvent{
		EvID:         books.LastEventID.Next(),
		RequestID:    c.RequestID,
		WhoRequested: c.WhoRequested,
		BookID:       c.BookID,
		EntryType:    c.EntryType,
		Side:         c.Side,
		Size:         c.Size,
		Price:        c.Price,
		TimeInForce:  c.TimeInForce,
		WhenHappened: c.WhenRequested,
		RejectReason: reason,
		RejectText:   text,
	}
}

type orderRejection struct {
	reason OrderRejectReason
	text   string
}

// validate runs every rule and merges the failures: differing reasons
// collapse to OTHER, texts are joined. Running the complete rule set keeps
// the rejection text informative when several things are wrong at once.
func (c PlaceOrderCommand) validate(books Books) (OrderRejectedEvent, bool) {
	var failures []orderRejection

	if c.BookID != books.BookID {
		failures = append(failures, orderRejection{
			reason: RejectUnknownSymbol,
			text:   fmt.Sprintf("Unknown book ID: %s", c.BookID),
		})
	}
	if effective := books.TradingStatuses.EffectiveStatus(); !effective.AllowsPlacing() {
		failures = append(failures, orderRejection{
			reason: RejectExchangeClosed,
			text:   fmt.Sprintf("Placing orders is currently not allowed: %s", effective),
		})
	}
	if c.Size <= 0 {
		failures = append(failures, orderRejection{
			reason: RejectIncorrectQuantity,
			text:   fmt.Sprintf("Order sizes must be positive: %d", c.Size),
		})
	}
	if c.EntryType.PriceRequired() != (c.Price != nil) {
		presence := "absent"
		if c.EntryType.PriceRequired() {
			presence = "present"
		}
		failures = append(failures, orderRejection{
			reason: RejectUnsupportedCharacter,
			text:   fmt.Sprintf("Price must be %s for %s order", presence, c.EntryType),
		})
	}
	if !ValidEntryTypeTimeInForceCombo(c.EntryType, c.TimeInForce) {
		failures = append(failures, orderRejection{
			reason: RejectUnsupportedCharacter,
			text:   fmt.Sprintf("%s %s is not supported", c.EntryType, c.TimeInForce),
		})
	}

	if len(failures) == 0 {
		return OrderRejectedEvent{}, false
	}

	reason := failures[0].reason
	text := failures[0].text
	for _, f := range failures[1:] {
		if f.reason != reason {
			reason = RejectOther
		}
		text = text + "; " + f.text
	}
	return c.toRejectedEvent(books, reason, text), true
}
