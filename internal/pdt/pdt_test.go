package pdt

import (
	"errors"
	"testing"

	"github.com/eddiefleurent/trdr/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNun_BuyAdmission(t *testing.T) {
	tests := []struct {
		name                 string
		positionsOpenedToday int
		rollingDayTradeCount int
		wantAllowed          bool
	}{
		{"1 opened, 1 day trade used -> allowed", 1, 1, true},
		{"2 opened, 1 day trade used -> denied", 2, 1, false},
		{"0 opened, 0 used -> allowed", 0, 0, true},
		{"2 opened, 0 used -> allowed (2 < 3)", 2, 0, true},
		{"3 opened, 0 used -> denied", 3, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision, err := Nun{}.Evaluate(Context{
				Side:                 models.SideBuy,
				PositionsOpenedToday: tt.positionsOpenedToday,
				RollingDayTradeCount: tt.rollingDayTradeCount,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantAllowed, decision.Allowed)
		})
	}
}

func TestNun_SellOpenedToday_InvariantBreach(t *testing.T) {
	_, err := Nun{}.Evaluate(Context{
		Side:                 models.SideSell,
		PositionOpenedToday:  true,
		RollingDayTradeCount: 3,
	})
	var strategyErr *StrategyError
	require.Error(t, err)
	require.True(t, errors.As(err, &strategyErr))
}

func TestNun_SellOpenedToday_Admissible(t *testing.T) {
	decision, err := Nun{}.Evaluate(Context{
		Side:                 models.SideSell,
		PositionOpenedToday:  true,
		RollingDayTradeCount: 2,
	})
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestNun_SellNotOpenedToday_AlwaysAdmissible(t *testing.T) {
	decision, err := Nun{}.Evaluate(Context{
		Side:                 models.SideSell,
		PositionOpenedToday:  false,
		RollingDayTradeCount: 3,
	})
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestWiggle_BuyAdmission(t *testing.T) {
	w := NewWiggle(2)

	decision, err := w.Evaluate(Context{
		Side:                 models.SideBuy,
		PositionsOpenedToday: 3,
		RollingDayTradeCount: 1,
	})
	require.NoError(t, err)
	assert.True(t, decision.Allowed, "1 day trade used + wiggle_room=2 allows up to 4 positions")

	decision, err = w.Evaluate(Context{
		Side:                 models.SideBuy,
		PositionsOpenedToday: 4,
		RollingDayTradeCount: 1,
	})
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
}

func TestWiggle_SellExhausted_IsRuleViolationNotStrategyError(t *testing.T) {
	decision, err := NewWiggle(2).Evaluate(Context{
		Side:                 models.SideSell,
		PositionOpenedToday:  true,
		RollingDayTradeCount: 3,
	})
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.NotEmpty(t, decision.Reason)
}

func TestYolo_BuyAlwaysAllowed(t *testing.T) {
	decision, err := Yolo{}.Evaluate(Context{Side: models.SideBuy, PositionsOpenedToday: 99, RollingDayTradeCount: 3})
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestYolo_SellOpenedTodayDenied(t *testing.T) {
	decision, err := Yolo{}.Evaluate(Context{Side: models.SideSell, PositionOpenedToday: true})
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Contains(t, decision.Reason, "YOLO")
}

func TestYolo_SellNotOpenedTodayAllowed(t *testing.T) {
	decision, err := Yolo{}.Evaluate(Context{Side: models.SideSell, PositionOpenedToday: false})
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}
