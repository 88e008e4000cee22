package engine

// Trade eligibility and pricing rules.
//
// A passive entry is skipped (not traded against, but the scan continues)
// when trading it would be a wash trade or could not be proven not to be
// one. The scan stops entirely at the first non-skipped candidate whose
// price has not crossed: the book is priority-ordered, so every later entry
// has an equal-or-worse price.

// sameFirmAndSameFirmClient reports a certain wash trade: the identical
// beneficial owner on both sides. Two nil firm-client ids of the same firm
// compare equal.
func sameFirmAndSameFirmClient(aggressor, passive Client) bool {
	return aggressor.Equals(passive)
}

// sameFirmButPossibleFirmAgainstClient reports the ambiguous case: same firm
// with either side's firm-client id missing, where a self-trade cannot be
// ruled out.
func sameFirmButPossibleFirmAgainstClient(aggressor, passive Client) bool {
	return aggressor.FirmID == passive.FirmID &&
		(aggressor.FirmClientID == nil || passive.FirmClientID == nil)
}

// priceHasCrossed reports whether the aggressor's price is equal or better
// than the passive's, in the aggressor's side-specific direction. An absent
// price on either side accepts the other side's price.
func priceHasCrossed(aggressor, passive BookEntry) bool {
	aggressorPrice := aggressor.Key.Price
	passivePrice := passive.Key.Price

	if aggressorPrice != nil && passivePrice != nil {
		return aggressor.Side.ComparatorMultiplier()*aggressorPrice.Compare(*passivePrice) <= 0
	}
	return findTradePrice(aggressor, passive) != nil
}

// findTradePrice resolves the execution price: the passive's price when
// present, else the aggressor's. Nil when neither side is priced.
func findTradePrice(aggressor, passive BookEntry) *Price {
	if passive.Key.Price != nil {
		return passive.Key.Price
	}
	return aggressor.Key.Price
}

func getTradeSize(aggressor, passive BookEntry) int64 {
	if aggressor.Sizes.Available < passive.Sizes.Available {
		return aggressor.Sizes.Available
	}
	return passive.Sizes.Available
}

func notAvailableForTrade(aggressor BookEntry) bool {
	return aggressor.Sizes.Available <= 0
}

func isEligiblePassive(aggressor, passive BookEntry) bool {
	return !sameFirmAndSameFirmClient(aggressor.WhoRequested, passive.WhoRequested) &&
		!sameFirmButPossibleFirmAgainstClient(aggressor.WhoRequested, passive.WhoRequested)
}

// findNextMatch scans the opposite book in priority order for the first
// passive entry the aggressor may trade with.
func findNextMatch(aggressor BookEntry, book LimitBook) (BookEntry, bool) {
	var match BookEntry
	var found bool

	book.Ascend(func(passive BookEntry) bool {
		if !isEligiblePassive(aggressor, passive) {
			return true
		}
		if findTradePrice(aggressor, passive) == nil {
			// two priceless entries cannot form a trade
			return true
		}
		if !priceHasCrossed(aggressor, passive) {
			return false
		}
		match = passive
		found = true
		return false
	})
	return match, found
}

// match crosses the aggressor against the opposite book until it is
// exhausted or no eligible passive entry remains, emitting one TradeEvent
// per fill. Iterative rather than recursive so a sweep across many levels
// cannot exhaust the stack.
func match(aggressor BookEntry, books Books) (BookEntry, Transaction) {
	transaction := Transaction{Aggregate: books}

	for {
		if notAvailableForTrade(aggressor) {
			return aggressor, transaction
		}
		opposite := aggressor.Side.OppositeSideBook(transaction.Aggregate)
		if opposite.IsEmpty() {
			return aggressor, transaction
		}

		passive, ok := findNextMatch(aggressor, opposite)
		if !ok {
			return aggressor, transaction
		}

		tradeSize := getTradeSize(aggressor, passive)
		tradePrice := findTradePrice(aggressor, passive)
		if tradePrice == nil {
			panic("cannot match two entries without price")
		}

		tradedAggressor := aggressor.Traded(tradeSize)
		tradedPassive := passive.Traded(tradeSize)

		event := TradeEvent{
			EvID:         transaction.Aggregate.LastEventID.Next(),
			BookID:       transaction.Aggregate.BookID,
			Size:         tradeSize,
			Price:        *tradePrice,
			WhenHappened: aggressor.Key.WhenSubmitted,
			Aggressor:    tradedAggressor.ToTradeSideEntry(),
			Passive:      tradedPassive.ToTradeSideEntry(),
		}

		transaction = transaction.Append(playAndAppend(event, transaction.Aggregate))
		aggressor = tradedAggressor
	}
}

// fillableQuantity simulates the matching scan without emitting anything and
// returns how much of the aggressor could trade right now. Used by the
// fill-or-kill pre-check so that no speculative trade ever needs reverting.
func fillableQuantity(aggressor BookEntry, books Books) int64 {
	var total int64
	aggressor.Side.OppositeSideBook(books).Ascend(func(passive BookEntry) bool {
		if !isEligiblePassive(aggressor, passive) {
			return true
		}
		if findTradePrice(aggressor, passive) == nil {
			return true
		}
		if !priceHasCrossed(aggressor, passive) {
			return false
		}
		total += passive.Sizes.Available
		return total < aggressor.Sizes.Available
	})
	return total
}

// matchAndFinalise runs the aggressor through matching and then settles its
// remainder according to its time in force.
func matchAndFinalise(aggressor BookEntry, books Books) Transaction {
	if aggressor.TimeInForce == FillOrKill && fillableQuantity(aggressor, books) < aggressor.Sizes.Available {
		// kill in full before matching: a fill-or-kill order that cannot
		// be completely filled must produce no trade at all
		return cancelRemainder(aggressor, Transaction{Aggregate: books})
	}

	remainder, transaction := match(aggressor, books)
	return finalise(remainder, transaction)
}

func finalise(remainder BookEntry, transaction Transaction) Transaction {
	switch remainder.TimeInForce {
	case GoodTillCancel:
		if remainder.TimeInForce.CanStayOnBook(remainder.Sizes) {
			return restOnBook(remainder, transaction)
		}
		return transaction
	case ImmediateOrCancel, FillOrKill:
		if remainder.Sizes.Available > 0 {
			return cancelRemainder(remainder, transaction)
		}
		return transaction
	default:
		panic("unknown time in force: " + string(remainder.TimeInForce))
	}
}

// restOnBook re-keys the remainder under the next sequence number and adds
// it to its side's book.
func restOnBook(remainder BookEntry, transaction Transaction) Transaction {
	books := transaction.Aggregate
	eventID := books.LastEventID.Next()
	entry := remainder.WithEventID(eventID)

	event := EntryAddedToBookEvent{
		EvID:         eventID,
		BookID:       books.BookID,
		Entry:        entry,
		WhenHappened: entry.Key.WhenSubmitted,
	}
	return transaction.Append(playAndAppend(event, books))
}

func cancelRemainder(remainder BookEntry, transaction Transaction) Transaction {
	books := transaction.Aggregate
	cancelled := remainder.Cancelled()

	event := OrderCancelledByExchangeEvent{
		EvID:         books.LastEventID.Next(),
		RequestID:    cancelled.RequestID,
		WhoRequested: cancelled.WhoRequested,
		BookID:       books.BookID,
		EntryType:    cancelled.EntryType,
		Side:         cancelled.Side,
		Sizes:        cancelled.Sizes,
		Price:        cancelled.Key.Price,
		TimeInForce:  cancelled.TimeInForce,
		Status:       cancelled.Status,
		WhenHappened: cancelled.Key.WhenSubmitted,
	}
	return transaction.Append(playAndAppend(event, books))
}
