package engine

import (
	"fmt"

	"exchange-core/src/cqrs"
)

// CreateBooksCommand creates a new per-instrument aggregate.
type CreateBooksCommand struct {
	BookID               BookID
	BusinessDate         string
	DefaultTradingStatus TradingStatus
}

func (c CreateBooksCommand) Execute(books *Books) (Transaction, error) {
	if books != nil {
		return Transaction{}, fmt.Errorf("books %s already exists", c.BookID)
	}

	event := BooksCreatedEvent{
		EvID:            cqrs.EventID(0),
		BookID:          c.BookID,
		BusinessDate:    c.BusinessDate,
		TradingStatuses: TradingStatuses{Default: c.DefaultTradingStatus},
	}
	played := event.Play(NewBooks(c.BookID))
	return cqrs.NewTransaction(played.Aggregate, Event(event)), nil
}
