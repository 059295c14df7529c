package pdt

// Yolo ignores PDT constraints on entry entirely, but refuses to close
// anything opened today — so a same-day reversal can't be cut.
type Yolo struct{}

// Evaluate implements Policy for the Yolo strategy.
func (Yolo) Evaluate(ctx Context) (Decision, error) {
	switch ctx.Side {
	case "BUY":
		return Decision{Allowed: true}, nil
	case "SELL":
		if ctx.PositionOpenedToday {
			return Decision{Allowed: false, Reason: "Cannot sell position opened today under YOLO strategy"}, nil
		}
		return Decision{Allowed: true}, nil
	default:
		return Decision{Allowed: false, Reason: "unsupported order side"}, nil
	}
}
