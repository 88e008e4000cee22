package engine

type TradingStatus string

const (
	OpenForTrading         TradingStatus = "OPEN_FOR_TRADING"
	Closed                 TradingStatus = "CLOSED"
	Halted                 TradingStatus = "HALTED"
	PreOpen                TradingStatus = "PRE_OPEN"
	NotAvailableForTrading TradingStatus = "NOT_AVAILABLE_FOR_TRADING"
)

// AllowsPlacing reports whether new orders and mass quotes may be placed
// under this status.
func (s TradingStatus) AllowsPlacing() bool {
	return s == OpenForTrading
}

// TradingStatuses layers the status sources that can apply to a book at the
// same time. The effective status is resolved by priority: manual overrides
// fast market, which overrides the scheduled status, which overrides the
// default.
type TradingStatuses struct {
	Default    TradingStatus `json:"default"`
	Scheduled  TradingStatus `json:"scheduled,omitempty"`
	FastMarket TradingStatus `json:"fastMarket,omitempty"`
	Manual     TradingStatus `json:"manual,omitempty"`
}

func (t TradingStatuses) EffectiveStatus() TradingStatus {
	if t.Manual != "" {
		return t.Manual
	}
	if t.FastMarket != "" {
		return t.FastMarket
	}
	if t.Scheduled != "" {
		return t.Scheduled
	}
	return t.Default
}
