package money

import "fmt"

// Timeframe is the closed set of lookback windows understood by the
// indicator and DSL layers. m15 is intraday and is rejected wherever a
// day-granularity computation (moving average, average volume) is
// requested.
type Timeframe string

// The complete enumeration. New members are never added dynamically —
// indicator identifiers in the DSL (MA5...MA200, AV5...AV200) are
// generated from exactly this set.
const (
	TimeframeM15 Timeframe = "m15"
	TimeframeD1  Timeframe = "d1"
	TimeframeD5  Timeframe = "d5"
	TimeframeD20 Timeframe = "d20"
	TimeframeD50 Timeframe = "d50"
	TimeframeD100 Timeframe = "d100"
	TimeframeD200 Timeframe = "d200"
)

var daysByTimeframe = map[Timeframe]int{
	TimeframeM15:  0,
	TimeframeD1:   1,
	TimeframeD5:   5,
	TimeframeD20:  20,
	TimeframeD50:  50,
	TimeframeD100: 100,
	TimeframeD200: 200,
}

// ToDays returns the number of daily bars the timeframe spans. m15
// returns 0 — callers must check IsIntraday first.
func (t Timeframe) ToDays() int {
	return daysByTimeframe[t]
}

// IsIntraday reports whether the timeframe is sub-daily (only m15 today).
func (t Timeframe) IsIntraday() bool {
	return t == TimeframeM15
}

// Valid reports whether t is a recognized member of the enumeration.
func (t Timeframe) Valid() bool {
	_, ok := daysByTimeframe[t]
	return ok
}

func (t Timeframe) String() string {
	switch t {
	case TimeframeM15:
		return "15 minutes"
	case TimeframeD1:
		return "1 day"
	case TimeframeD5:
		return "5 days"
	case TimeframeD20:
		return "20 days"
	case TimeframeD50:
		return "50 days"
	case TimeframeD100:
		return "100 days"
	case TimeframeD200:
		return "200 days"
	default:
		return fmt.Sprintf("Timeframe(%s)", string(t))
	}
}
