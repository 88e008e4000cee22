package engine

import (
	"time"

	"exchange-core/src/cqrs"
)

var testBase = time.Date(2026, time.September, 1, 9, 0, 0, 0, time.UTC)

// openBooks returns a freshly created book open for trading, last event id 0.
func openBooks(bookID BookID) Books {
	event := BooksCreatedEvent{
		EvID:            0,
		BookID:          bookID,
		BusinessDate:    "2026-09-01",
		TradingStatuses: TradingStatuses{Default: OpenForTrading},
	}
	return event.Play(NewBooks(bookID)).Aggregate
}

func firmClient(firmID, firmClientID string) Client {
	c := Client{FirmID: firmID}
	if firmClientID != "" {
		c.FirmClientID = &firmClientID
	}
	return c
}

func limitOrder(requestID string, who Client, bookID BookID, side Side, price Price, size int64, tif TimeInForce, offset time.Duration) PlaceOrderCommand {
	return PlaceOrderCommand{
		RequestID:     ClientRequestId{Current: requestID},
		WhoRequested:  who,
		BookID:        bookID,
		EntryType:     TypeLimit,
		Side:          side,
		Size:          size,
		Price:         PricePtr(price),
		TimeInForce:   tif,
		WhenRequested: testBase.Add(offset),
	}
}

func marketOrder(requestID string, who Client, bookID BookID, side Side, size int64, tif TimeInForce, offset time.Duration) PlaceOrderCommand {
	return PlaceOrderCommand{
		RequestID:     ClientRequestId{Current: requestID},
		WhoRequested:  who,
		BookID:        bookID,
		EntryType:     TypeMarket,
		Side:          side,
		Size:          size,
		TimeInForce:   tif,
		WhenRequested: testBase.Add(offset),
	}
}

// place executes the command and feeds the new aggregate back, so tests can
// chain setup orders without tracking state by hand.
func place(books *Books, cmd PlaceOrderCommand) Transaction {
	transaction, err := cmd.Execute(books)
	if err != nil {
		panic(err)
	}
	*books = transaction.Aggregate
	return transaction
}

func placeQuote(books *Books, cmd PlaceMassQuoteCommand) Transaction {
	transaction, err := cmd.Execute(books)
	if err != nil {
		panic(err)
	}
	*books = transaction.Aggregate
	return transaction
}

func replayAll(events []Event) Books {
	return cqrs.Replay(Books{}, events)
}

func tradesOf(transaction Transaction) []TradeEvent {
	var trades []TradeEvent
	for _, event := range transaction.Events {
		if trade, ok := event.(TradeEvent); ok {
			trades = append(trades, trade)
		}
	}
	return trades
}

func cancelsOf(transaction Transaction) []OrderCancelledByExchangeEvent {
	var cancels []OrderCancelledByExchangeEvent
	for _, event := range transaction.Events {
		if cancel, ok := event.(OrderCancelledByExchangeEvent); ok {
			cancels = append(cancels, cancel)
		}
	}
	return cancels
}
