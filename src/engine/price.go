package engine

// Price is an integer normalized by a fixed, instrument-specific decimal
// scale. E.g. with a scale of 2, 1234 represents 12.34. Comparison is exact
// integer comparison; no floating point anywhere in the core.
type Price int64

func (p Price) Compare(other Price) int {
	switch {
	case p < other:
		return -1
	case p > other:
		return 1
	default:
		return 0
	}
}

// PricePtr is a convenience for building optional prices in literals.
func PricePtr(p Price) *Price {
	return &p
}

// SizeAtPrice is one priced level of a quote leg.
type SizeAtPrice struct {
	Size  int64 `json:"size"`
	Price Price `json:"price"`
}
