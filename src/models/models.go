package models

import (
	"fmt"

	"github.com/shopspring/decimal"

	"exchange-core/src/engine"
)

// Prices travel as decimal strings on the wire and as integer ticks inside
// the engine. ParsePrice converts one to the other at the configured scale.
func ParsePrice(s string, scale int32) (engine.Price, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", s, err)
	}
	shifted := d.Shift(scale)
	if !shifted.IsInteger() {
		return 0, fmt.Errorf("price %q has more than %d decimal places", s, scale)
	}
	if !shifted.BigInt().IsInt64() {
		return 0, fmt.Errorf("price %q out of range", s)
	}
	return engine.Price(shifted.IntPart()), nil
}

// FormatPrice renders an integer tick price back to its decimal string.
func FormatPrice(p engine.Price, scale int32) string {
	return decimal.New(int64(p), -scale).String()
}

type CreateBooksRequest struct {
	BookID               string `json:"book_id"`
	BusinessDate         string `json:"business_date"`
	DefaultTradingStatus string `json:"default_trading_status,omitempty"`
}

type CreateBooksResponse struct {
	BookID        string `json:"book_id"`
	BusinessDate  string `json:"business_date"`
	TradingStatus string `json:"trading_status"`
	EventID       uint64 `json:"event_id"`
}

type PlaceOrderRequest struct {
	RequestID    string `json:"request_id"`
	FirmID       string `json:"firm_id"`
	FirmClientID string `json:"firm_client_id,omitempty"`
	Side         string `json:"side"`
	Type         string `json:"type"`
	TimeInForce  string `json:"time_in_force"`
	Price        string `json:"price,omitempty"` // decimal string, required for LIMIT
	Size         int64  `json:"size"`
}

type PlaceOrderResponse struct {
	RequestID         string      `json:"request_id"`
	EventID           uint64      `json:"event_id"`
	Status            string      `json:"status"`
	RejectReason      string      `json:"reject_reason,omitempty"`
	RejectText        string      `json:"reject_text,omitempty"`
	TradedQuantity    int64       `json:"traded_quantity"`
	AvailableQuantity int64       `json:"available_quantity"`
	CancelledQuantity int64       `json:"cancelled_quantity"`
	Trades            []TradeInfo `json:"trades,omitempty"`
}

type TradeInfo struct {
	EventID   uint64 `json:"event_id"`
	Price     string `json:"price"` // decimal string
	Size      int64  `json:"size"`
	Timestamp int64  `json:"timestamp"` // unix timestamp in milliseconds
}

type QuoteEntryRequest struct {
	QuoteEntryID string `json:"quote_entry_id"`
	BidSize      int64  `json:"bid_size,omitempty"`
	BidPrice     string `json:"bid_price,omitempty"`
	OfferSize    int64  `json:"offer_size,omitempty"`
	OfferPrice   string `json:"offer_price,omitempty"`
}

type PlaceMassQuoteRequest struct {
	QuoteSetID   string              `json:"quote_set_id"`
	FirmID       string              `json:"firm_id"`
	FirmClientID string              `json:"firm_client_id,omitempty"`
	Entries      []QuoteEntryRequest `json:"entries"`
}

type PlaceMassQuoteResponse struct {
	QuoteSetID       string      `json:"quote_set_id"`
	EventID          uint64      `json:"event_id"`
	Status           string      `json:"status"`
	RejectReason     string      `json:"reject_reason,omitempty"`
	RejectText       string      `json:"reject_text,omitempty"`
	CancelledEntries int         `json:"cancelled_entries"`
	Trades           []TradeInfo `json:"trades,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type OrderBookResponse struct {
	BookID        string           `json:"book_id"`
	BusinessDate  string           `json:"business_date"`
	TradingStatus string           `json:"trading_status"`
	LastEventID   uint64           `json:"last_event_id"`
	Timestamp     int64            `json:"timestamp"` // unix timestamp in milliseconds
	Bids          []PriceLevelInfo `json:"bids"`      // sorted descending (highest first)
	Asks          []PriceLevelInfo `json:"asks"`      // sorted ascending (lowest first)
}

type PriceLevelInfo struct {
	Price    string `json:"price"`    // decimal string
	Quantity int64  `json:"quantity"` // aggregated quantity at this price
}

type HealthResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	BooksOpen     int64  `json:"books_open"`
}

type MetricsResponse struct {
	OrdersReceived int64 `json:"orders_received"`
	OrdersRejected int64 `json:"orders_rejected"`
	QuotesReceived int64 `json:"quotes_received"`
	QuotesRejected int64 `json:"quotes_rejected"`
	TradesExecuted int64 `json:"trades_executed"`
	BooksCreated   int64 `json:"books_created"`
}
