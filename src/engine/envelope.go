package engine

import (
	"encoding/json"
	"fmt"
)

// The wire/storage format of the event log: a type-discriminated JSON
// envelope. Downstream readers and the replay path must round-trip every
// event field-for-field, so each event struct is fully tagged.
type eventEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	typeBooksCreated             = "BOOKS_CREATED"
	typeOrderPlaced              = "ORDER_PLACED"
	typeOrderRejected            = "ORDER_REJECTED"
	typeOrderCancelledByExchange = "ORDER_CANCELLED_BY_EXCHANGE"
	typeEntryAddedToBook         = "ENTRY_ADDED_TO_BOOK"
	typeEntriesRemovedFromBook   = "ENTRIES_REMOVED_FROM_BOOK"
	typeTrade                    = "TRADE"
	typeMassQuotePlaced          = "MASS_QUOTE_PLACED"
	typeMassQuoteRejected        = "MASS_QUOTE_REJECTED"
	typeMassQuoteCancelled       = "MASS_QUOTE_CANCELLED"
)

func eventTypeName(event Event) (string, error) {
	switch event.(type) {
	case BooksCreatedEvent:
		return typeBooksCreated, nil
	case OrderPlacedEvent:
		return typeOrderPlaced, nil
	case OrderRejectedEvent:
		return typeOrderRejected, nil
	case OrderCancelledByExchangeEvent:
		return typeOrderCancelledByExchange, nil
	case EntryAddedToBookEvent:
		return typeEntryAddedToBook, nil
	case EntriesRemovedFromBookEvent:
		return typeEntriesRemovedFromBook, nil
	case TradeEvent:
		return typeTrade, nil
	case MassQuotePlacedEvent:
		return typeMassQuotePlaced, nil
	case MassQuoteRejectedEvent:
		return typeMassQuoteRejected, nil
	case MassQuoteCancelledEvent:
		return typeMassQuoteCancelled, nil
	default:
		return "", fmt.Errorf("unknown event type %T", event)
	}
}

func MarshalEvent(event Event) ([]byte, error) {
	name, err := eventTypeName(event)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return json.Marshal(eventEnvelope{Type: name, Data: data})
}

func UnmarshalEvent(raw []byte) (Event, error) {
	var envelope eventEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, err
	}

	decode := func(event any) error {
		return json.Unmarshal(envelope.Data, event)
	}

	switch envelope.Type {
	case typeBooksCreated:
		var event BooksCreatedEvent
		err := decode(&event)
		return event, err
	case typeOrderPlaced:
		var event OrderPlacedEvent
		err := decode(&event)
		return event, err
	case typeOrderRejected:
		var event OrderRejectedEvent
		err := decode(&event)
		return event, err
	case typeOrderCancelledByExchange:
		var event OrderCancelledByExchangeEvent
		err := decode(&event)
		return event, err
	case typeEntryAddedToBook:
		var event EntryAddedToBookEvent
		err := decode(&event)
		return event, err
	case typeEntriesRemovedFromBook:
		var event EntriesRemovedFromBookEvent
		err := decode(&event)
		return event, err
	case typeTrade:
		var event TradeEvent
		err := decode(&event)
		return event, err
	case typeMassQuotePlaced:
		var event MassQuotePlacedEvent
		err := decode(&event)
		return event, err
	case typeMassQuoteRejected:
		var event MassQuoteRejectedEvent
		err := decode(&event)
		return event, err
	case typeMassQuoteCancelled:
		var event MassQuoteCancelledEvent
		err := decode(&event)
		return event, err
	default:
		return nil, fmt.Errorf("unknown event envelope type %q", envelope.Type)
	}
}
