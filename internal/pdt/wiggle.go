package pdt

// Wiggle allows opening more positions than the strict day-trade budget
// permits, trading the risk of an un-closeable same-day position for
// more entries. WiggleRoom is the number of extra positions allowed
// beyond Nun's hard limit.
type Wiggle struct {
	WiggleRoom int
}

// NewWiggle constructs a Wiggle policy with the given wiggle room.
// Negative wiggle room is clamped to zero.
func NewWiggle(wiggleRoom int) Wiggle {
	if wiggleRoom < 0 {
		wiggleRoom = 0
	}
	return Wiggle{WiggleRoom: wiggleRoom}
}

// Evaluate implements Policy for the Wiggle strategy.
func (w Wiggle) Evaluate(ctx Context) (Decision, error) {
	switch ctx.Side {
	case "BUY":
		maxPositions := (3 - ctx.RollingDayTradeCount) + w.WiggleRoom
		if ctx.PositionsOpenedToday < maxPositions {
			return Decision{Allowed: true}, nil
		}
		return Decision{Allowed: false, Reason: "day trade limit reached under wiggle PDT policy"}, nil
	case "SELL":
		if !ctx.PositionOpenedToday {
			return Decision{Allowed: true}, nil
		}
		if ctx.RollingDayTradeCount >= 3 {
			// Unlike Nun, wiggle room can open more positions than it can
			// close same-day — this is an expected, reportable rule
			// violation, not a policy-invariant breach.
			return Decision{Allowed: false, Reason: "cannot close position opened today: day trade budget exhausted"}, nil
		}
		return Decision{Allowed: true}, nil
	default:
		return Decision{Allowed: false, Reason: "unsupported order side"}, nil
	}
}
