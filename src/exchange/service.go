// Package exchange drives the matching core: it serializes command
// execution per book, makes the event log durable before acknowledging, and
// recovers book state from the log at startup.
package exchange

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"exchange-core/src/cqrs"
	"exchange-core/src/engine"
	"exchange-core/src/eventlog"
	"exchange-core/src/publisher"
)

type Service struct {
	repo  *cqrs.MemoryRepository[engine.BookID, engine.Books]
	store *eventlog.Store
	pub   *publisher.Publisher

	locks   map[engine.BookID]*sync.Mutex
	locksMu sync.Mutex

	recovered int32

	OrdersReceived int64
	OrdersRejected int64
	QuotesReceived int64
	QuotesRejected int64
	TradesExecuted int64
	BooksCreated   int64
}

// NewService wires the repository, the durable event log and the optional
// kafka publisher. A nil store keeps everything in memory (tests).
func NewService(store *eventlog.Store, pub *publisher.Publisher) *Service {
	return &Service{
		repo:  cqrs.NewMemoryRepository[engine.BookID, engine.Books](),
		store: store,
		pub:   pub,
		locks: make(map[engine.BookID]*sync.Mutex),
	}
}

// Recover folds every book's event log over an empty aggregate and seeds
// the repository. Books replay independently; within one book the fold is
// strictly sequential.
func (s *Service) Recover() error {
	defer atomic.StoreInt32(&s.recovered, 1)

	if s.store == nil {
		return nil
	}

	bookIDs, err := s.store.BookIDs()
	if err != nil {
		return fmt.Errorf("scan books for recovery: %w", err)
	}

	for _, bookID := range bookIDs {
		events, err := s.store.ReadBook(bookID)
		if err != nil {
			return fmt.Errorf("read log of book %s: %w", bookID, err)
		}
		books := cqrs.Replay(engine.Books{}, events)
		s.repo.CreateOrUpdate(bookID, books)

		log.Info().
			Str("book_id", string(bookID)).
			Int("events", len(events)).
			Uint64("last_event_id", uint64(books.LastEventID)).
			Msg("Book recovered from event log")
	}
	return nil
}

// Ready reports whether recovery has completed.
func (s *Service) Ready() bool {
	return atomic.LoadInt32(&s.recovered) == 1
}

// bookLock returns the mutex serializing commands against one book. Two
// commands racing on the same book would otherwise both claim the same next
// sequence number.
func (s *Service) bookLock(bookID engine.BookID) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	lock, ok := s.locks[bookID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[bookID] = lock
	}
	return lock
}

// commit appends the transaction's events durably, publishes them and only
// then stores the new aggregate. The caller holds the book lock.
func (s *Service) commit(ctx context.Context, bookID engine.BookID, transaction engine.Transaction) error {
	if s.store != nil {
		if err := s.store.Append(bookID, transaction.Events); err != nil {
			return fmt.Errorf("append events of book %s: %w", bookID, err)
		}
	}
	s.pub.Publish(ctx, bookID, transaction.Events)
	s.repo.CreateOrUpdate(bookID, transaction.Aggregate)
	return nil
}

func (s *Service) CreateBooks(ctx context.Context, cmd engine.CreateBooksCommand) (engine.Transaction, error) {
	lock := s.bookLock(cmd.BookID)
	lock.Lock()
	defer lock.Unlock()

	var existing *engine.Books
	if books, ok := s.repo.Find(cmd.BookID); ok {
		existing = &books
	}

	transaction, err := cmd.Execute(existing)
	if err != nil {
		return engine.Transaction{}, err
	}
	if err := s.commit(ctx, cmd.BookID, transaction); err != nil {
		return engine.Transaction{}, err
	}

	atomic.AddInt64(&s.BooksCreated, 1)
	return transaction, nil
}

func (s *Service) PlaceOrder(ctx context.Context, cmd engine.PlaceOrderCommand) (engine.Transaction, error) {
	atomic.AddInt64(&s.OrdersReceived, 1)

	lock := s.bookLock(cmd.BookID)
	lock.Lock()
	defer lock.Unlock()

	books, ok := s.repo.Find(cmd.BookID)
	if !ok {
		return engine.Transaction{}, fmt.Errorf("books %s not found", cmd.BookID)
	}

	transaction, err := cmd.Execute(&books)
	if err != nil {
		return engine.Transaction{}, err
	}
	if err := s.commit(ctx, cmd.BookID, transaction); err != nil {
		return engine.Transaction{}, err
	}

	s.count(transaction)
	return transaction, nil
}

func (s *Service) PlaceMassQuote(ctx context.Context, cmd engine.PlaceMassQuoteCommand) (engine.Transaction, error) {
	atomic.AddInt64(&s.QuotesReceived, 1)

	lock := s.bookLock(cmd.BookID)
	lock.Lock()
	defer lock.Unlock()

	books, ok := s.repo.Find(cmd.BookID)
	if !ok {
		return engine.Transaction{}, fmt.Errorf("books %s not found", cmd.BookID)
	}

	transaction, err := cmd.Execute(&books)
	if err != nil {
		return engine.Transaction{}, err
	}
	if err := s.commit(ctx, cmd.BookID, transaction); err != nil {
		return engine.Transaction{}, err
	}

	s.count(transaction)
	return transaction, nil
}

func (s *Service) count(transaction engine.Transaction) {
	for _, event := range transaction.Events {
		switch event.(type) {
		case engine.TradeEvent:
			atomic.AddInt64(&s.TradesExecuted, 1)
		case engine.OrderRejectedEvent:
			atomic.AddInt64(&s.OrdersRejected, 1)
		case engine.MassQuoteRejectedEvent:
			atomic.AddInt64(&s.QuotesRejected, 1)
		}
	}
}

func (s *Service) FindBooks(bookID engine.BookID) (engine.Books, bool) {
	return s.repo.Find(bookID)
}

// PriceLevel is one aggregated depth level of a book snapshot.
type PriceLevel struct {
	Price    engine.Price
	Quantity int64
}

// Snapshot aggregates each side into price levels, best first, up to depth
// levels per side.
func (s *Service) Snapshot(bookID engine.BookID, depth int) (bids, asks []PriceLevel, ok bool) {
	books, found := s.repo.Find(bookID)
	if !found {
		return nil, nil, false
	}
	return aggregateLevels(books.BuyLimitBook, depth), aggregateLevels(books.SellLimitBook, depth), true
}

func aggregateLevels(book engine.LimitBook, depth int) []PriceLevel {
	levels := make([]PriceLevel, 0, depth)
	book.Ascend(func(entry engine.BookEntry) bool {
		if entry.Key.Price == nil {
			return true
		}
		price := *entry.Key.Price
		if n := len(levels); n > 0 && levels[n-1].Price == price {
			levels[n-1].Quantity += entry.Sizes.Available
			return true
		}
		if len(levels) == depth {
			return false
		}
		levels = append(levels, PriceLevel{Price: price, Quantity: entry.Sizes.Available})
		return true
	})
	return levels
}
