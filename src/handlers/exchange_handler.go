package handlers

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"exchange-core/src/config"
	"exchange-core/src/engine"
	"exchange-core/src/exchange"
	"exchange-core/src/models"
)

type ExchangeHandler struct {
	Service   *exchange.Service
	Config    *config.Config
	StartTime time.Time
}

func NewExchangeHandler(service *exchange.Service, cfg *config.Config) *ExchangeHandler {
	return &ExchangeHandler{
		Service:   service,
		Config:    cfg,
		StartTime: time.Now(),
	}
}

func (h *ExchangeHandler) CreateBooks(c *fiber.Ctx) error {
	var req models.CreateBooksRequest

	if err := c.BodyParser(&req); err != nil {
		log.Warn().
			Err(err).
			Str("ip", c.IP()).
			Str("path", c.Path()).
			Msg("Invalid request: malformed JSON")
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "Invalid request: malformed JSON",
		})
	}

	if req.BookID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "Invalid request: book_id is required",
		})
	}
	if req.BusinessDate == "" {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "Invalid request: business_date is required",
		})
	}
	if _, err := time.Parse("2006-01-02", req.BusinessDate); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "Invalid request: business_date must be YYYY-MM-DD",
		})
	}

	status := engine.TradingStatus(req.DefaultTradingStatus)
	if req.DefaultTradingStatus == "" {
		status = engine.TradingStatus(h.Config.Trading.DefaultTradingStatus)
	}

	cmd := engine.CreateBooksCommand{
		BookID:               engine.BookID(req.BookID),
		BusinessDate:         req.BusinessDate,
		DefaultTradingStatus: status,
	}

	transaction, err := h.Service.CreateBooks(c.Context(), cmd)
	if err != nil {
		log.Warn().
			Err(err).
			Str("book_id", req.BookID).
			Str("ip", c.IP()).
			Msg("Create books rejected")
		return c.Status(fiber.StatusConflict).JSON(models.ErrorResponse{
			Error: err.Error(),
		})
	}

	log.Info().
		Str("book_id", req.BookID).
		Str("business_date", req.BusinessDate).
		Str("trading_status", string(status)).
		Msg("Books created")

	return c.Status(fiber.StatusCreated).JSON(models.CreateBooksResponse{
		BookID:        req.BookID,
		BusinessDate:  req.BusinessDate,
		TradingStatus: string(transaction.Aggregate.TradingStatuses.EffectiveStatus()),
		EventID:       uint64(transaction.Aggregate.LastEventID),
	})
}

func (h *ExchangeHandler) PlaceOrder(c *fiber.Ctx) error {
	bookID := c.Params("bookId")

	var req models.PlaceOrderRequest

	if err := c.BodyParser(&req); err != nil {
		log.Warn().
			Err(err).
			Str("ip", c.IP()).
			Str("path", c.Path()).
			Msg("Invalid request: malformed JSON")
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "Invalid request: malformed JSON",
		})
	}

	if req.FirmID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "Invalid order: firm_id is required",
		})
	}

	var price *engine.Price
	if req.Price != "" {
		parsed, err := models.ParsePrice(req.Price, h.Config.Trading.PriceScale)
		if err != nil {
			log.Warn().
				Err(err).
				Str("book_id", bookID).
				Str("ip", c.IP()).
				Msg("Invalid order price")
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
				Error: err.Error(),
			})
		}
		price = &parsed
	}

	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}

	cmd := engine.PlaceOrderCommand{
		RequestID:     engine.ClientRequestId{Current: requestID},
		WhoRequested:  client(req.FirmID, req.FirmClientID),
		BookID:        engine.BookID(bookID),
		EntryType:     engine.EntryType(req.Type),
		Side:          engine.Side(req.Side),
		Size:          req.Size,
		Price:         price,
		TimeInForce:   engine.TimeInForce(req.TimeInForce),
		WhenRequested: time.Now().UTC(),
	}

	log.Info().
		Str("book_id", bookID).
		Str("request_id", requestID).
		Str("firm_id", req.FirmID).
		Str("side", req.Side).
		Str("type", req.Type).
		Str("time_in_force", req.TimeInForce).
		Str("price", req.Price).
		Int64("size", req.Size).
		Str("ip", c.IP()).
		Msg("Order submitted")

	transaction, err := h.Service.PlaceOrder(c.Context(), cmd)
	if err != nil {
		log.Warn().
			Err(err).
			Str("book_id", bookID).
			Str("request_id", requestID).
			Msg("Order not addressable")
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{
			Error: err.Error(),
		})
	}

	response := h.orderResponse(requestID, transaction)

	log.Info().
		Str("book_id", bookID).
		Str("request_id", requestID).
		Str("status", response.Status).
		Int64("traded_quantity", response.TradedQuantity).
		Int64("available_quantity", response.AvailableQuantity).
		Int("trades_count", len(response.Trades)).
		Msg("Order processed")

	if response.RejectReason != "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(response)
	}
	if response.Status == string(engine.StatusNew) && len(response.Trades) == 0 {
		return c.Status(fiber.StatusCreated).JSON(response)
	}
	return c.Status(fiber.StatusOK).JSON(response)
}

// orderResponse folds the transaction's events into the client's view of the
// order: its final sizes and status plus the trades it took part in.
func (h *ExchangeHandler) orderResponse(requestID string, transaction engine.Transaction) models.PlaceOrderResponse {
	response := models.PlaceOrderResponse{RequestID: requestID}

	for _, event := range transaction.Events {
		switch e := event.(type) {
		case engine.OrderPlacedEvent:
			response.EventID = uint64(e.EvID)
			response.Status = string(engine.StatusNew)
			response.AvailableQuantity = e.Sizes.Available
		case engine.OrderRejectedEvent:
			response.EventID = uint64(e.EvID)
			response.Status = "REJECTED"
			response.RejectReason = string(e.RejectReason)
			response.RejectText = e.RejectText
		case engine.TradeEvent:
			if e.Aggressor.RequestID.Current != requestID {
				continue
			}
			response.Status = string(e.Aggressor.Status)
			response.TradedQuantity = e.Aggressor.Sizes.Traded
			response.AvailableQuantity = e.Aggressor.Sizes.Available
			response.Trades = append(response.Trades, models.TradeInfo{
				EventID:   uint64(e.EvID),
				Price:     models.FormatPrice(e.Price, h.Config.Trading.PriceScale),
				Size:      e.Size,
				Timestamp: e.WhenHappened.UnixMilli(),
			})
		case engine.EntryAddedToBookEvent:
			if e.Entry.RequestID.Current != requestID {
				continue
			}
			response.Status = string(e.Entry.Status)
			response.AvailableQuantity = e.Entry.Sizes.Available
		case engine.OrderCancelledByExchangeEvent:
			if e.RequestID.Current != requestID {
				continue
			}
			response.Status = string(e.Status)
			response.TradedQuantity = e.Sizes.Traded
			response.AvailableQuantity = e.Sizes.Available
			response.CancelledQuantity = e.Sizes.Cancelled
		}
	}
	return response
}

func (h *ExchangeHandler) PlaceMassQuote(c *fiber.Ctx) error {
	bookID := c.Params("bookId")

	var req models.PlaceMassQuoteRequest

	if err := c.BodyParser(&req); err != nil {
		log.Warn().
			Err(err).
			Str("ip", c.IP()).
			Str("path", c.Path()).
			Msg("Invalid request: malformed JSON")
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "Invalid request: malformed JSON",
		})
	}

	if req.FirmID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "Invalid quote: firm_id is required",
		})
	}
	if len(req.Entries) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "Invalid quote: at least one entry is required",
		})
	}

	quoteSetID := req.QuoteSetID
	if quoteSetID == "" {
		quoteSetID = uuid.New().String()
	}

	entries := make([]engine.QuoteEntry, 0, len(req.Entries))
	for i, entry := range req.Entries {
		quoteEntryID := entry.QuoteEntryID
		if quoteEntryID == "" {
			quoteEntryID = strconv.Itoa(i + 1)
		}
		converted := engine.QuoteEntry{
			QuoteEntryID: quoteEntryID,
			QuoteSetID:   quoteSetID,
			EntryType:    engine.TypeLimit,
		}
		if entry.BidSize > 0 || entry.BidPrice != "" {
			level, err := h.parseQuoteLevel(entry.BidSize, entry.BidPrice)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
					Error: "Invalid quote bid: " + err.Error(),
				})
			}
			converted.Bid = level
		}
		if entry.OfferSize > 0 || entry.OfferPrice != "" {
			level, err := h.parseQuoteLevel(entry.OfferSize, entry.OfferPrice)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
					Error: "Invalid quote offer: " + err.Error(),
				})
			}
			converted.Offer = level
		}
		entries = append(entries, converted)
	}

	cmd := engine.PlaceMassQuoteCommand{
		QuoteID:       uuid.New().String(),
		WhoRequested:  client(req.FirmID, req.FirmClientID),
		BookID:        engine.BookID(bookID),
		Entries:       entries,
		TimeInForce:   engine.GoodTillCancel,
		WhenRequested: time.Now().UTC(),
	}

	log.Info().
		Str("book_id", bookID).
		Str("quote_set_id", quoteSetID).
		Str("firm_id", req.FirmID).
		Int("entries", len(entries)).
		Str("ip", c.IP()).
		Msg("Mass quote submitted")

	transaction, err := h.Service.PlaceMassQuote(c.Context(), cmd)
	if err != nil {
		log.Warn().
			Err(err).
			Str("book_id", bookID).
			Str("quote_set_id", quoteSetID).
			Msg("Mass quote not addressable")
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{
			Error: err.Error(),
		})
	}

	response := models.PlaceMassQuoteResponse{QuoteSetID: quoteSetID}
	for _, event := range transaction.Events {
		switch e := event.(type) {
		case engine.MassQuotePlacedEvent:
			response.EventID = uint64(e.EvID)
			response.Status = "PLACED"
		case engine.MassQuoteRejectedEvent:
			response.EventID = uint64(e.EvID)
			response.Status = "REJECTED"
			response.RejectReason = string(e.RejectReason)
			response.RejectText = e.RejectText
		case engine.MassQuoteCancelledEvent:
			response.CancelledEntries = len(e.Entries)
		case engine.TradeEvent:
			response.Trades = append(response.Trades, models.TradeInfo{
				EventID:   uint64(e.EvID),
				Price:     models.FormatPrice(e.Price, h.Config.Trading.PriceScale),
				Size:      e.Size,
				Timestamp: e.WhenHappened.UnixMilli(),
			})
		}
	}

	log.Info().
		Str("book_id", bookID).
		Str("quote_set_id", quoteSetID).
		Str("status", response.Status).
		Int("cancelled_entries", response.CancelledEntries).
		Int("trades_count", len(response.Trades)).
		Msg("Mass quote processed")

	if response.RejectReason != "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(response)
	}
	return c.Status(fiber.StatusOK).JSON(response)
}

func (h *ExchangeHandler) parseQuoteLevel(size int64, priceStr string) (*engine.SizeAtPrice, error) {
	if priceStr == "" {
		return nil, &ValidationError{Message: "price is required"}
	}
	price, err := models.ParsePrice(priceStr, h.Config.Trading.PriceScale)
	if err != nil {
		return nil, err
	}
	return &engine.SizeAtPrice{Size: size, Price: price}, nil
}

func (h *ExchangeHandler) GetOrderBook(c *fiber.Ctx) error {
	bookID := c.Params("bookId")

	defaultDepth := h.Config.Trading.SnapshotDepth
	depthStr := c.Query("depth", strconv.Itoa(defaultDepth))
	depth, err := strconv.Atoi(depthStr)
	if err != nil || depth <= 0 {
		depth = defaultDepth
	}

	// edge case: enforce maximum depth limit
	if depth > 1000 {
		depth = 1000
	}

	books, found := h.Service.FindBooks(engine.BookID(bookID))
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{
			Error: "Books not found",
		})
	}

	bidLevels, askLevels, _ := h.Service.Snapshot(engine.BookID(bookID), depth)

	bids := make([]models.PriceLevelInfo, 0, len(bidLevels))
	for _, level := range bidLevels {
		bids = append(bids, models.PriceLevelInfo{
			Price:    models.FormatPrice(level.Price, h.Config.Trading.PriceScale),
			Quantity: level.Quantity,
		})
	}

	asks := make([]models.PriceLevelInfo, 0, len(askLevels))
	for _, level := range askLevels {
		asks = append(asks, models.PriceLevelInfo{
			Price:    models.FormatPrice(level.Price, h.Config.Trading.PriceScale),
			Quantity: level.Quantity,
		})
	}

	return c.Status(fiber.StatusOK).JSON(models.OrderBookResponse{
		BookID:        bookID,
		BusinessDate:  books.BusinessDate,
		TradingStatus: string(books.TradingStatuses.EffectiveStatus()),
		LastEventID:   uint64(books.LastEventID),
		Timestamp:     time.Now().UnixMilli(),
		Bids:          bids,
		Asks:          asks,
	})
}

func (h *ExchangeHandler) HealthCheck(c *fiber.Ctx) error {
	uptime := time.Since(h.StartTime).Seconds()

	return c.Status(fiber.StatusOK).JSON(models.HealthResponse{
		Status:        "healthy",
		UptimeSeconds: int64(uptime),
		BooksOpen:     atomic.LoadInt64(&h.Service.BooksCreated),
	})
}

func (h *ExchangeHandler) Metrics(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(models.MetricsResponse{
		OrdersReceived: atomic.LoadInt64(&h.Service.OrdersReceived),
		OrdersRejected: atomic.LoadInt64(&h.Service.OrdersRejected),
		QuotesReceived: atomic.LoadInt64(&h.Service.QuotesReceived),
		QuotesRejected: atomic.LoadInt64(&h.Service.QuotesRejected),
		TradesExecuted: atomic.LoadInt64(&h.Service.TradesExecuted),
		BooksCreated:   atomic.LoadInt64(&h.Service.BooksCreated),
	})
}

func client(firmID, firmClientID string) engine.Client {
	c := engine.Client{FirmID: firmID}
	if firmClientID != "" {
		c.FirmClientID = &firmClientID
	}
	return c
}

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
