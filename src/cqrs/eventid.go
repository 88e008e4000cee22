package cqrs

import "math"

// EventID is the per-aggregate monotonic sequence number. The value space
// wraps: MaxUint64 is immediately followed by 0, so ordering near the top of
// the range must go through Compare rather than plain < on the raw value.
type EventID uint64

func (id EventID) Next() EventID {
	if id == math.MaxUint64 {
		return 0
	}
	return id + 1
}

// IsNextOf reports whether id directly succeeds other, including the
// MaxUint64 -> 0 wrap.
func (id EventID) IsNextOf(other EventID) bool {
	if id == 0 && other == math.MaxUint64 {
		return true
	}
	return uint64(id) == uint64(other)+1
}

func (id EventID) Compare(other EventID) int {
	if id == other {
		return 0
	}
	// wrap pair: MaxUint64 sorts immediately before 0
	if id == math.MaxUint64 && other == 0 {
		return -1
	}
	if id == 0 && other == math.MaxUint64 {
		return 1
	}
	if id < other {
		return -1
	}
	return 1
}
