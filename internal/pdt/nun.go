package pdt

// Nun is the conservative PDT policy: it never opens a position unless
// it can guarantee closing it the same day within the 3-day-trade
// rolling limit.
type Nun struct{}

// Evaluate implements Policy for the Nun strategy.
func (Nun) Evaluate(ctx Context) (Decision, error) {
	switch ctx.Side {
	case "BUY":
		available := 3 - ctx.RollingDayTradeCount
		if ctx.PositionsOpenedToday < available {
			return Decision{Allowed: true}, nil
		}
		return Decision{Allowed: false, Reason: "day trade limit reached under conservative PDT policy"}, nil
	case "SELL":
		if !ctx.PositionOpenedToday {
			return Decision{Allowed: true}, nil
		}
		// Nun never opens a position it can't also close same-day, so
		// reaching this branch with no day trades left means the
		// policy's own invariant has been broken upstream.
		if ctx.RollingDayTradeCount >= 3 {
			return Decision{}, &StrategyError{
				Message: "Nun strategy should never be unable to close a position opened today",
			}
		}
		return Decision{Allowed: true}, nil
	default:
		return Decision{Allowed: false, Reason: "unsupported order side"}, nil
	}
}
