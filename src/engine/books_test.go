package engine

import (
	"testing"
	"time"
)

func TestNewBooksIsEmpty(t *testing.T) {
	books := NewBooks("INST-1")

	if !books.BuyLimitBook.IsEmpty() || !books.SellLimitBook.IsEmpty() {
		t.Error("Expected both sides empty")
	}
	if books.LastEventID != 0 {
		t.Errorf("Expected last event id 0, got: %d", books.LastEventID)
	}
	if books.TradingStatuses.EffectiveStatus() != OpenForTrading {
		t.Errorf("Expected default OPEN_FOR_TRADING, got: %s", books.TradingStatuses.EffectiveStatus())
	}
}

// A non-contiguous event id means log corruption or a caller bug and must
// not be absorbed silently.
func TestVerifyEventIDPanicsOnGap(t *testing.T) {
	books := openBooks("INST-1")

	defer func() {
		if recover() == nil {
			t.Error("Expected panic applying event id 5 after 0")
		}
	}()
	books.OfEventID(5)
}

func TestVerifyEventIDAcceptsNext(t *testing.T) {
	books := openBooks("INST-1")
	books = books.OfEventID(1)

	if books.LastEventID != 1 {
		t.Errorf("Expected last event id 1, got: %d", books.LastEventID)
	}
}

func TestTradingStatusPriority(t *testing.T) {
	statuses := TradingStatuses{Default: OpenForTrading}
	if statuses.EffectiveStatus() != OpenForTrading {
		t.Errorf("Expected default status, got: %s", statuses.EffectiveStatus())
	}

	statuses.Scheduled = PreOpen
	if statuses.EffectiveStatus() != PreOpen {
		t.Errorf("Expected scheduled to override default, got: %s", statuses.EffectiveStatus())
	}

	statuses.FastMarket = Closed
	if statuses.EffectiveStatus() != Closed {
		t.Errorf("Expected fast market to override scheduled, got: %s", statuses.EffectiveStatus())
	}

	statuses.Manual = Halted
	if statuses.EffectiveStatus() != Halted {
		t.Errorf("Expected manual to override everything, got: %s", statuses.EffectiveStatus())
	}
}

func TestFindBookEntriesBuySideFirst(t *testing.T) {
	books := openBooks("INST-1")
	place(&books, limitOrder("s-1", firmClient("firm-s", ""), "INST-1", SideSell, 15060, 100, GoodTillCancel, 0))
	place(&books, limitOrder("b-1", firmClient("firm-b", ""), "INST-1", SideBuy, 15040, 100, GoodTillCancel, time.Second))

	found := books.FindBookEntries(func(BookEntry) bool { return true })
	if len(found) != 2 {
		t.Fatalf("Expected 2 entries, got: %d", len(found))
	}
	if found[0].Side != SideBuy || found[1].Side != SideSell {
		t.Error("Expected buy side entries before sell side entries")
	}
}

func TestClientEquals(t *testing.T) {
	cases := []struct {
		a, b Client
		want bool
	}{
		{firmClient("firm-a", ""), firmClient("firm-a", ""), true},
		{firmClient("firm-a", "c1"), firmClient("firm-a", "c1"), true},
		{firmClient("firm-a", "c1"), firmClient("firm-a", "c2"), false},
		{firmClient("firm-a", "c1"), firmClient("firm-a", ""), false},
		{firmClient("firm-a", ""), firmClient("firm-b", ""), false},
	}

	for _, c := range cases {
		if got := c.a.Equals(c.b); got != c.want {
			t.Errorf("Equals(%+v, %+v): expected %v, got: %v", c.a, c.b, c.want, got)
		}
	}
}
