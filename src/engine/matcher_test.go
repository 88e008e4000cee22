package engine

import (
	"testing"
	"time"
)

// TestNoCrossRestsOnBook
// Initial state: empty book
// New order: BUY 500 @ 15045 GTC
// Expected: no trade; the order rests on the buy side under the id of its
// added-to-book event.
func TestNoCrossRestsOnBook(t *testing.T) {
	books := openBooks("INST-1")

	transaction := place(&books, limitOrder("b-1", firmClient("firm-b", ""), "INST-1", SideBuy, 15045, 500, GoodTillCancel, 0))

	if len(transaction.Events) != 2 {
		t.Fatalf("Expected placed and added events, got: %d events", len(transaction.Events))
	}
	if _, ok := transaction.Events[0].(OrderPlacedEvent); !ok {
		t.Errorf("Expected first event to be OrderPlacedEvent, got: %T", transaction.Events[0])
	}
	added, ok := transaction.Events[1].(EntryAddedToBookEvent)
	if !ok {
		t.Fatalf("Expected second event to be EntryAddedToBookEvent, got: %T", transaction.Events[1])
	}
	if added.EvID != 2 {
		t.Errorf("Expected added event id 2, got: %d", added.EvID)
	}

	entries := books.BuyLimitBook.Entries()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 resting buy entry, got: %d", len(entries))
	}
	if entries[0].Key.EventID != 2 {
		t.Errorf("Expected resting entry re-keyed under event id 2, got: %d", entries[0].Key.EventID)
	}
	if entries[0].Sizes.Available != 500 || entries[0].Status != StatusNew {
		t.Errorf("Expected 500 available NEW, got: %+v %s", entries[0].Sizes, entries[0].Status)
	}
}

// TestSimpleFullMatch
// Initial state: SELL 1000 @ 15050, BUY 500 @ 15045 (different firms)
// New order: BUY 500 @ 15050 GTC
// Expected: one trade of 500 at 15050; the resting sell keeps 500.
func TestSimpleFullMatch(t *testing.T) {
	books := openBooks("INST-1")
	place(&books, limitOrder("s-1", firmClient("firm-s", ""), "INST-1", SideSell, 15050, 1000, GoodTillCancel, 0))
	place(&books, limitOrder("b-1", firmClient("firm-b", ""), "INST-1", SideBuy, 15045, 500, GoodTillCancel, time.Second))

	transaction := place(&books, limitOrder("b-2", firmClient("firm-b", ""), "INST-1", SideBuy, 15050, 500, GoodTillCancel, 2*time.Second))

	trades := tradesOf(transaction)
	if len(trades) != 1 {
		t.Fatalf("Expected 1 trade, got: %d", len(trades))
	}
	if trades[0].Price != 15050 || trades[0].Size != 500 {
		t.Errorf("Expected trade 500 @ 15050, got: %d @ %d", trades[0].Size, trades[0].Price)
	}
	if trades[0].Aggressor.Status != StatusFilled {
		t.Errorf("Expected aggressor FILLED, got: %s", trades[0].Aggressor.Status)
	}
	if trades[0].Passive.Status != StatusPartialFill {
		t.Errorf("Expected passive PARTIAL_FILL, got: %s", trades[0].Passive.Status)
	}

	// filled aggressor leaves nothing to rest
	for _, event := range transaction.Events {
		if _, ok := event.(EntryAddedToBookEvent); ok {
			t.Error("Expected no added-to-book event for a fully filled aggressor")
		}
	}

	sells := books.SellLimitBook.Entries()
	if len(sells) != 1 || sells[0].Sizes.Available != 500 {
		t.Fatalf("Expected resting sell with 500 remaining, got: %+v", sells)
	}
	buys := books.BuyLimitBook.Entries()
	if len(buys) != 1 || buys[0].RequestID.Current != "b-1" {
		t.Fatalf("Expected only the earlier buy to remain, got: %+v", buys)
	}
}

// TestTradePriceIsPassivePrice
// Initial state: SELL 500 @ 15050
// New order: BUY 500 @ 15060 GTC (crossing past the passive price)
// Expected: trade executes at the passive 15050, not the aggressor's 15060.
func TestTradePriceIsPassivePrice(t *testing.T) {
	books := openBooks("INST-1")
	place(&books, limitOrder("s-1", firmClient("firm-s", ""), "INST-1", SideSell, 15050, 500, GoodTillCancel, 0))

	transaction := place(&books, limitOrder("b-1", firmClient("firm-b", ""), "INST-1", SideBuy, 15060, 500, GoodTillCancel, time.Second))

	trades := tradesOf(transaction)
	if len(trades) != 1 {
		t.Fatalf("Expected 1 trade, got: %d", len(trades))
	}
	if trades[0].Price != 15050 {
		t.Errorf("Expected trade at passive price 15050, got: %d", trades[0].Price)
	}
}

// TestMultiLevelSweep
// Initial state: SELL 300 @ 15050, SELL 300 @ 15055, SELL 300 @ 15060
// New order: BUY 700 @ 15058 GTC
// Expected: trades of 300 @ 15050 and 300 @ 15055 in price order; the level
// at 15060 is beyond the limit, so the remaining 100 rests.
func TestMultiLevelSweep(t *testing.T) {
	books := openBooks("INST-1")
	place(&books, limitOrder("s-1", firmClient("firm-s", ""), "INST-1", SideSell, 15050, 300, GoodTillCancel, 0))
	place(&books, limitOrder("s-2", firmClient("firm-s", ""), "INST-1", SideSell, 15055, 300, GoodTillCancel, time.Second))
	place(&books, limitOrder("s-3", firmClient("firm-s", ""), "INST-1", SideSell, 15060, 300, GoodTillCancel, 2*time.Second))

	transaction := place(&books, limitOrder("b-1", firmClient("firm-b", ""), "INST-1", SideBuy, 15058, 700, GoodTillCancel, 3*time.Second))

	trades := tradesOf(transaction)
	if len(trades) != 2 {
		t.Fatalf("Expected 2 trades, got: %d", len(trades))
	}
	if trades[0].Price != 15050 || trades[0].Size != 300 {
		t.Errorf("Expected first trade 300 @ 15050, got: %d @ %d", trades[0].Size, trades[0].Price)
	}
	if trades[1].Price != 15055 || trades[1].Size != 300 {
		t.Errorf("Expected second trade 300 @ 15055, got: %d @ %d", trades[1].Size, trades[1].Price)
	}

	buys := books.BuyLimitBook.Entries()
	if len(buys) != 1 || buys[0].Sizes.Available != 100 {
		t.Fatalf("Expected remainder of 100 resting, got: %+v", buys)
	}
	if buys[0].Status != StatusPartialFill {
		t.Errorf("Expected resting remainder PARTIAL_FILL, got: %s", buys[0].Status)
	}

	sells := books.SellLimitBook.Entries()
	if len(sells) != 1 || *sells[0].Key.Price != 15060 {
		t.Fatalf("Expected only the 15060 level to remain, got: %+v", sells)
	}
}

// TestTimePriorityWithinLevel
// Initial state: two SELL entries at the same price, submitted in sequence
// Expected: the earlier entry trades first.
func TestTimePriorityWithinLevel(t *testing.T) {
	books := openBooks("INST-1")
	place(&books, limitOrder("s-early", firmClient("firm-s", ""), "INST-1", SideSell, 15050, 300, GoodTillCancel, 0))
	place(&books, limitOrder("s-late", firmClient("firm-s", ""), "INST-1", SideSell, 15050, 300, GoodTillCancel, time.Second))

	transaction := place(&books, limitOrder("b-1", firmClient("firm-b", ""), "INST-1", SideBuy, 15050, 300, GoodTillCancel, 2*time.Second))

	trades := tradesOf(transaction)
	if len(trades) != 1 {
		t.Fatalf("Expected 1 trade, got: %d", len(trades))
	}
	if trades[0].Passive.RequestID.Current != "s-early" {
		t.Errorf("Expected earlier entry to trade first, got: %s", trades[0].Passive.RequestID.Current)
	}

	sells := books.SellLimitBook.Entries()
	if len(sells) != 1 || sells[0].RequestID.Current != "s-late" {
		t.Fatalf("Expected later entry to remain, got: %+v", sells)
	}
}

// TestWashTradeSameClientSkipped
// Initial state: SELL 500 @ 15050 from firm-a, SELL 500 @ 15055 from firm-b
// New order: BUY 500 @ 15055 from firm-a
// Expected: firm-a's own entry is skipped, the trade happens with firm-b at
// 15055, and firm-a's sell stays on the book.
func TestWashTradeSameClientSkipped(t *testing.T) {
	books := openBooks("INST-1")
	place(&books, limitOrder("s-a", firmClient("firm-a", ""), "INST-1", SideSell, 15050, 500, GoodTillCancel, 0))
	place(&books, limitOrder("s-b", firmClient("firm-b", ""), "INST-1", SideSell, 15055, 500, GoodTillCancel, time.Second))

	transaction := place(&books, limitOrder("b-a", firmClient("firm-a", ""), "INST-1", SideBuy, 15055, 500, GoodTillCancel, 2*time.Second))

	trades := tradesOf(transaction)
	if len(trades) != 1 {
		t.Fatalf("Expected 1 trade, got: %d", len(trades))
	}
	if trades[0].Passive.WhoRequested.FirmID != "firm-b" {
		t.Errorf("Expected trade against firm-b, got: %s", trades[0].Passive.WhoRequested.FirmID)
	}
	if trades[0].Price != 15055 {
		t.Errorf("Expected trade at 15055, got: %d", trades[0].Price)
	}

	sells := books.SellLimitBook.Entries()
	if len(sells) != 1 || sells[0].WhoRequested.FirmID != "firm-a" {
		t.Fatalf("Expected firm-a's sell untouched, got: %+v", sells)
	}
}

// TestWashTradeAmbiguousFirmClientSkipped
// Same firm with one side missing its firm client id cannot be proven not
// to be a self-trade, so it is skipped too.
func TestWashTradeAmbiguousFirmClientSkipped(t *testing.T) {
	books := openBooks("INST-1")
	place(&books, limitOrder("s-1", firmClient("firm-a", "client-1"), "INST-1", SideSell, 15050, 500, GoodTillCancel, 0))

	transaction := place(&books, limitOrder("b-1", firmClient("firm-a", ""), "INST-1", SideBuy, 15050, 500, GoodTillCancel, time.Second))

	if len(tradesOf(transaction)) != 0 {
		t.Error("Expected no trade for ambiguous same-firm pairing")
	}
	if books.SellLimitBook.Len() != 1 || books.BuyLimitBook.Len() != 1 {
		t.Error("Expected both entries resting on their sides")
	}
}

// TestSameFirmDistinctClientsTrade
// Same firm but two distinct firm client ids are different beneficial
// owners and may trade with each other.
func TestSameFirmDistinctClientsTrade(t *testing.T) {
	books := openBooks("INST-1")
	place(&books, limitOrder("s-1", firmClient("firm-a", "client-1"), "INST-1", SideSell, 15050, 500, GoodTillCancel, 0))

	transaction := place(&books, limitOrder("b-1", firmClient("firm-a", "client-2"), "INST-1", SideBuy, 15050, 500, GoodTillCancel, time.Second))

	if len(tradesOf(transaction)) != 1 {
		t.Errorf("Expected distinct clients of one firm to trade, got: %d trades", len(tradesOf(transaction)))
	}
}

// TestImmediateOrCancelCancelsRemainder
// Initial state: SELL 500 @ 15050
// New order: BUY 800 @ 15050 IOC
// Expected: trade of 500, remainder of 300 cancelled, nothing rests.
func TestImmediateOrCancelCancelsRemainder(t *testing.T) {
	books := openBooks("INST-1")
	place(&books, limitOrder("s-1", firmClient("firm-s", ""), "INST-1", SideSell, 15050, 500, GoodTillCancel, 0))

	transaction := place(&books, limitOrder("b-1", firmClient("firm-b", ""), "INST-1", SideBuy, 15050, 800, ImmediateOrCancel, time.Second))

	trades := tradesOf(transaction)
	if len(trades) != 1 || trades[0].Size != 500 {
		t.Fatalf("Expected 1 trade of 500, got: %+v", trades)
	}

	cancels := cancelsOf(transaction)
	if len(cancels) != 1 {
		t.Fatalf("Expected 1 cancel event, got: %d", len(cancels))
	}
	if cancels[0].Sizes.Traded != 500 || cancels[0].Sizes.Cancelled != 300 || cancels[0].Sizes.Available != 0 {
		t.Errorf("Expected traded=500, cancelled=300, available=0, got: %+v", cancels[0].Sizes)
	}
	if cancels[0].Status != StatusCancelled {
		t.Errorf("Expected status CANCELLED, got: %s", cancels[0].Status)
	}

	if books.BuyLimitBook.Len() != 0 {
		t.Error("Expected nothing resting on the buy side")
	}
}

// TestFillOrKillKilledWhenUnderfilled
// Initial state: SELL 500 @ 15050
// New order: BUY 800 @ 15050 FOK
// Expected: no trade at all; the order is killed in full and the resting
// sell is untouched.
func TestFillOrKillKilledWhenUnderfilled(t *testing.T) {
	books := openBooks("INST-1")
	place(&books, limitOrder("s-1", firmClient("firm-s", ""), "INST-1", SideSell, 15050, 500, GoodTillCancel, 0))

	transaction := place(&books, limitOrder("b-1", firmClient("firm-b", ""), "INST-1", SideBuy, 15050, 800, FillOrKill, time.Second))

	if len(tradesOf(transaction)) != 0 {
		t.Error("Expected no trade from an unfillable fill-or-kill order")
	}

	cancels := cancelsOf(transaction)
	if len(cancels) != 1 {
		t.Fatalf("Expected 1 cancel event, got: %d", len(cancels))
	}
	if cancels[0].Sizes.Cancelled != 800 || cancels[0].Sizes.Traded != 0 {
		t.Errorf("Expected whole size cancelled, got: %+v", cancels[0].Sizes)
	}

	sells := books.SellLimitBook.Entries()
	if len(sells) != 1 || sells[0].Sizes.Available != 500 {
		t.Fatalf("Expected resting sell untouched, got: %+v", sells)
	}
}

// TestFillOrKillFilledAcrossLevels
// Initial state: SELL 500 @ 15050, SELL 500 @ 15055
// New order: BUY 1000 @ 15060 FOK
// Expected: filled in full across both levels.
func TestFillOrKillFilledAcrossLevels(t *testing.T) {
	books := openBooks("INST-1")
	place(&books, limitOrder("s-1", firmClient("firm-s", ""), "INST-1", SideSell, 15050, 500, GoodTillCancel, 0))
	place(&books, limitOrder("s-2", firmClient("firm-s", ""), "INST-1", SideSell, 15055, 500, GoodTillCancel, time.Second))

	transaction := place(&books, limitOrder("b-1", firmClient("firm-b", ""), "INST-1", SideBuy, 15060, 1000, FillOrKill, 2*time.Second))

	trades := tradesOf(transaction)
	if len(trades) != 2 {
		t.Fatalf("Expected 2 trades, got: %d", len(trades))
	}
	if len(cancelsOf(transaction)) != 0 {
		t.Error("Expected no cancel for a fully filled fill-or-kill order")
	}
	if books.SellLimitBook.Len() != 0 {
		t.Error("Expected sell side emptied")
	}
}

// TestFillOrKillPreCheckSkipsWashEntries
// The fillable pre-check walks the same eligibility rules as matching: the
// firm's own resting quantity must not count towards fillability.
func TestFillOrKillPreCheckSkipsWashEntries(t *testing.T) {
	books := openBooks("INST-1")
	place(&books, limitOrder("s-own", firmClient("firm-a", ""), "INST-1", SideSell, 15050, 500, GoodTillCancel, 0))
	place(&books, limitOrder("s-other", firmClient("firm-b", ""), "INST-1", SideSell, 15050, 300, GoodTillCancel, time.Second))

	transaction := place(&books, limitOrder("b-1", firmClient("firm-a", ""), "INST-1", SideBuy, 15050, 500, FillOrKill, 2*time.Second))

	if len(tradesOf(transaction)) != 0 {
		t.Error("Expected kill: only 300 eligible shares were available")
	}
	if len(cancelsOf(transaction)) != 1 {
		t.Error("Expected the order cancelled in full")
	}
}

// TestMarketOrderTradesAtPassivePrice
// Initial state: SELL 500 @ 15050
// New order: BUY MARKET 300 IOC
// Expected: trade of 300 at the passive 15050.
func TestMarketOrderTradesAtPassivePrice(t *testing.T) {
	books := openBooks("INST-1")
	place(&books, limitOrder("s-1", firmClient("firm-s", ""), "INST-1", SideSell, 15050, 500, GoodTillCancel, 0))

	transaction := place(&books, marketOrder("b-1", firmClient("firm-b", ""), "INST-1", SideBuy, 300, ImmediateOrCancel, time.Second))

	trades := tradesOf(transaction)
	if len(trades) != 1 {
		t.Fatalf("Expected 1 trade, got: %d", len(trades))
	}
	if trades[0].Price != 15050 || trades[0].Size != 300 {
		t.Errorf("Expected trade 300 @ 15050, got: %d @ %d", trades[0].Size, trades[0].Price)
	}
}

// TestMarketOrderAgainstEmptyBookCancelled
// A market order with nothing to trade against cannot rest (it has no
// price); its whole size is cancelled.
func TestMarketOrderAgainstEmptyBookCancelled(t *testing.T) {
	books := openBooks("INST-1")

	transaction := place(&books, marketOrder("b-1", firmClient("firm-b", ""), "INST-1", SideBuy, 300, ImmediateOrCancel, 0))

	if len(tradesOf(transaction)) != 0 {
		t.Error("Expected no trade against an empty book")
	}
	cancels := cancelsOf(transaction)
	if len(cancels) != 1 || cancels[0].Sizes.Cancelled != 300 {
		t.Fatalf("Expected whole size cancelled, got: %+v", cancels)
	}
}

// TestEventIDsAreContiguous verifies the sequence accounting across a
// transaction that mixes a trade, a cancel and a rest.
func TestEventIDsAreContiguous(t *testing.T) {
	books := openBooks("INST-1")
	place(&books, limitOrder("s-1", firmClient("firm-s", ""), "INST-1", SideSell, 15050, 500, GoodTillCancel, 0))

	transaction := place(&books, limitOrder("b-1", firmClient("firm-b", ""), "INST-1", SideBuy, 15050, 800, GoodTillCancel, time.Second))

	last := books.LastEventID
	wantNext := transaction.Events[0].EventID()
	for i, event := range transaction.Events {
		if event.EventID() != wantNext {
			t.Errorf("Expected event %d to carry id %d, got: %d", i, wantNext, event.EventID())
		}
		wantNext = wantNext.Next()
	}
	if transaction.Events[len(transaction.Events)-1].EventID() != last {
		t.Errorf("Expected aggregate's last id %d to match the final event", last)
	}
}
