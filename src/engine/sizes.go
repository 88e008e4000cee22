package engine

import "fmt"

// EntrySizes tracks how the total quantity of an entry is split between what
// is still available, what has traded and what has been cancelled. All three
// are always non-negative; a negative size is a corruption of book state and
// panics rather than propagating.
type EntrySizes struct {
	Available int64 `json:"available"`
	Traded    int64 `json:"traded"`
	Cancelled int64 `json:"cancelled"`
}

func NewEntrySizes(available int64) EntrySizes {
	return mustSizes(EntrySizes{Available: available})
}

func mustSizes(s EntrySizes) EntrySizes {
	if s.Available < 0 || s.Traded < 0 || s.Cancelled < 0 {
		panic(fmt.Sprintf(
			"entry sizes cannot be negative: available=%d, traded=%d, cancelled=%d",
			s.Available, s.Traded, s.Cancelled,
		))
	}
	return s
}

// WithTraded moves size from available to traded.
func (s EntrySizes) WithTraded(size int64) EntrySizes {
	return mustSizes(EntrySizes{
		Available: s.Available - size,
		Traded:    s.Traded + size,
		Cancelled: s.Cancelled,
	})
}

// WithCancelled moves all remaining available quantity to cancelled.
func (s EntrySizes) WithCancelled() EntrySizes {
	return EntrySizes{
		Available: 0,
		Traded:    s.Traded,
		Cancelled: s.Cancelled + s.Available,
	}
}

// WithAmended recomputes the available quantity against a new total order
// size. Amending down to or below what has already traded or been cancelled
// leaves nothing available and is a caller bug.
func (s EntrySizes) WithAmended(newTotal int64) EntrySizes {
	available := newTotal - s.Traded - s.Cancelled
	if available <= 0 {
		panic(fmt.Sprintf(
			"cannot amend to non-positive available size: newTotal=%d, traded=%d, cancelled=%d",
			newTotal, s.Traded, s.Cancelled,
		))
	}
	return EntrySizes{Available: available, Traded: s.Traded, Cancelled: s.Cancelled}
}

type EntryStatus string

const (
	StatusNew         EntryStatus = "NEW"
	StatusPartialFill EntryStatus = "PARTIAL_FILL"
	StatusFilled      EntryStatus = "FILLED"
	StatusCancelled   EntryStatus = "CANCELLED"
)

func (s EntryStatus) IsFinal() bool {
	return s == StatusFilled || s == StatusCancelled
}

// Traded derives the status after a trade from the resulting sizes.
func (s EntryStatus) Traded(newSizes EntrySizes) EntryStatus {
	if newSizes.Available == 0 {
		return StatusFilled
	}
	return StatusPartialFill
}
