package money

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromUTC_RejectsNonUTCLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	_, err = FromUTC(time.Date(2026, time.March, 3, 15, 0, 0, 0, loc))
	assert.Error(t, err)
}

func TestFromUTC_RejectsWeekend(t *testing.T) {
	_, err := FromUTC(time.Date(2026, time.March, 7, 15, 0, 0, 0, time.UTC)) // a Saturday
	assert.Error(t, err)
}

func TestFromUTC_AcceptsWeekday(t *testing.T) {
	tdt, err := FromUTC(time.Date(2026, time.March, 3, 15, 0, 0, 0, time.UTC)) // a Tuesday
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC), tdt.Date())
}

func TestFromDailyClose_RejectsWeekend(t *testing.T) {
	_, err := FromDailyClose(time.Date(2026, time.March, 8, 0, 0, 0, 0, time.UTC)) // a Sunday
	assert.Error(t, err)
}

func TestAdd_CrossingIntoWeekendFails(t *testing.T) {
	friday, err := FromUTC(time.Date(2026, time.March, 6, 15, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	_, err = friday.Add(24 * time.Hour) // lands on Saturday
	assert.Error(t, err)
}

func TestAdd_StayingWithinWeekdaysSucceeds(t *testing.T) {
	tuesday, err := FromUTC(time.Date(2026, time.March, 3, 15, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	wednesday, err := tuesday.Add(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC), wednesday.Date())
}

func TestSub_ReturnsInstantDifference(t *testing.T) {
	a, err := FromUTC(time.Date(2026, time.March, 3, 15, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	b, err := FromUTC(time.Date(2026, time.March, 3, 14, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, time.Hour, a.Sub(b))
}

func TestBefore_OrdersInstants(t *testing.T) {
	a, err := FromUTC(time.Date(2026, time.March, 3, 14, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	b, err := FromUTC(time.Date(2026, time.March, 3, 15, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, a.Before(b))
	assert.False(t, b.Before(a))
}
