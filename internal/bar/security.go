package bar

import (
	"github.com/eddiefleurent/trdr/internal/money"
	"github.com/shopspring/decimal"
)

// Security pairs a symbol with its current bar and its ordered
// (oldest-to-newest) bar history. CurrentBar is treated as "today" —
// moving averages computed for "today" fold it into the series;
// "yesterday's" values come from History alone, which is how
// BullishCrossover/BearishCrossover tell whether the crossing happened
// on the transition into today.
type Security struct {
	Symbol     string
	CurrentBar Bar
	History    []Bar // oldest -> newest, does not include CurrentBar
}

// New constructs a Security. History is stored as given (oldest-first);
// callers own the slice and must not mutate it afterward.
func New(symbol string, currentBar Bar, history []Bar) Security {
	return Security{Symbol: symbol, CurrentBar: currentBar, History: history}
}

// CurrentPrice returns the current bar's closing price.
func (s Security) CurrentPrice() decimal.Decimal {
	return s.CurrentBar.Close
}

// CurrentVolume returns the current bar's volume.
func (s Security) CurrentVolume() int64 {
	return s.CurrentBar.Volume
}

// todaySeries is History with CurrentBar folded in as the most recent
// entry — this is "as of today."
func (s Security) todaySeries() []Bar {
	series := make([]Bar, 0, len(s.History)+1)
	series = append(series, s.History...)
	series = append(series, s.CurrentBar)
	return series
}

func lastCloses(bars []Bar, n int) []decimal.Decimal {
	start := len(bars) - n
	out := make([]decimal.Decimal, 0, n)
	for _, b := range bars[start:] {
		out = append(out, b.Close)
	}
	return out
}

// MovingAverage computes the mean closing price over the last
// period.ToDays() bars, as of today (CurrentBar counts as the latest
// bar). It fails if period is intraday. ok is false if there isn't
// enough history yet — that is not an error, just "missing."
func (s Security) MovingAverage(period money.Timeframe) (value decimal.Decimal, ok bool, err error) {
	if period.IsIntraday() {
		return decimal.Decimal{}, false, &ValidationError{Message: "intraday timeframe not supported for moving average"}
	}
	n := period.ToDays()
	series := s.todaySeries()
	if len(series) < n {
		return decimal.Decimal{}, false, nil
	}
	closes := lastCloses(series, n)
	sum := decimal.Zero
	for _, c := range closes {
		sum = sum.Add(c)
	}
	return sum.Div(decimal.NewFromInt(int64(n))), true, nil
}

// yesterdayMovingAverage computes the moving average as it stood at the
// close of the prior trading day — i.e. without folding in CurrentBar.
func (s Security) yesterdayMovingAverage(period money.Timeframe) (value decimal.Decimal, ok bool, err error) {
	if period.IsIntraday() {
		return decimal.Decimal{}, false, &ValidationError{Message: "intraday timeframe not supported for moving average"}
	}
	n := period.ToDays()
	if len(s.History) < n {
		return decimal.Decimal{}, false, nil
	}
	closes := lastCloses(s.History, n)
	sum := decimal.Zero
	for _, c := range closes {
		sum = sum.Add(c)
	}
	return sum.Div(decimal.NewFromInt(int64(n))), true, nil
}

// AverageVolume computes the floor-divided mean volume over the last
// period.ToDays() bars, as of today. Same intraday/missing rules as
// MovingAverage.
func (s Security) AverageVolume(period money.Timeframe) (value int64, ok bool, err error) {
	if period.IsIntraday() {
		return 0, false, &ValidationError{Message: "intraday timeframe not supported for average volume"}
	}
	n := period.ToDays()
	series := s.todaySeries()
	if len(series) < n {
		return 0, false, nil
	}
	start := len(series) - n
	var sum int64
	for _, b := range series[start:] {
		sum += b.Volume
	}
	return sum / int64(n), true, nil
}

// BullishCrossover reports whether, on the previous trading day, the
// short moving average was below the long one, and today it is
// strictly above. Missing data (either side) returns false, not an
// error.
func (s Security) BullishCrossover(short, long money.Timeframe) bool {
	shortYesterday, okSY, errSY := s.yesterdayMovingAverage(short)
	longYesterday, okLY, errLY := s.yesterdayMovingAverage(long)
	shortToday, okST, errST := s.MovingAverage(short)
	longToday, okLT, errLT := s.MovingAverage(long)
	if errSY != nil || errLY != nil || errST != nil || errLT != nil {
		return false
	}
	if !okSY || !okLY || !okST || !okLT {
		return false
	}
	return shortYesterday.LessThan(longYesterday) && shortToday.GreaterThan(longToday)
}

// BearishCrossover is the mirror of BullishCrossover: short was above
// long yesterday, and is strictly below it today.
func (s Security) BearishCrossover(short, long money.Timeframe) bool {
	shortYesterday, okSY, errSY := s.yesterdayMovingAverage(short)
	longYesterday, okLY, errLY := s.yesterdayMovingAverage(long)
	shortToday, okST, errST := s.MovingAverage(short)
	longToday, okLT, errLT := s.MovingAverage(long)
	if errSY != nil || errLY != nil || errST != nil || errLT != nil {
		return false
	}
	if !okSY || !okLY || !okST || !okLT {
		return false
	}
	return shortYesterday.GreaterThan(longYesterday) && shortToday.LessThan(longToday)
}
