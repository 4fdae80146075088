package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKylesLambda_RecoversLinearImpact(t *testing.T) {
	const lambda = 0.0001
	now := int64(1700000000000)
	w := newTradeWindow(100)

	p := 100.0
	w.push(mustTrade(t, p, 1, now-5000, SideBuy))
	for _, leg := range []struct {
		amount float64
		side   Side
	}{
		{2, SideBuy}, {3, SideSell}, {1, SideBuy}, {4, SideSell},
	} {
		sv := leg.amount * leg.side.signMultiplier()
		p *= math.Exp(lambda * sv)
		w.push(mustTrade(t, p, leg.amount, now-4000, leg.side))
	}

	got := kylesLambda(w, dayMs, now)
	assert.InDelta(t, lambda, got, 1e-12, "OLS must recover the impact coefficient exactly")
}

func TestKylesLambda_FewerThanTwoPairsIsZero(t *testing.T) {
	now := int64(1700000000000)
	w := newTradeWindow(100)

	assert.Zero(t, kylesLambda(w, dayMs, now), "empty history")

	w.push(mustTrade(t, 100, 1, now-1000, SideBuy))
	w.push(mustTrade(t, 101, 1, now-500, SideBuy))
	assert.Zero(t, kylesLambda(w, dayMs, now), "two trades form a single pair")
}

func TestKylesLambda_WindowFiltersOldPairs(t *testing.T) {
	now := int64(1700000000000)
	w := newTradeWindow(100)

	// All prints older than an hour: the hourly fit has no pairs, the
	// daily fit still sees them.
	old := now - 2*hourMs
	p := 100.0
	for i, sv := range []float64{0, 2, -3, 1} {
		p *= math.Exp(0.001 * sv)
		side := SideBuy
		if sv < 0 {
			side = SideSell
		}
		amount := math.Abs(sv)
		if amount == 0 {
			amount = 1
		}
		w.push(mustTrade(t, p, amount, old+int64(i), side))
	}

	assert.Zero(t, kylesLambda(w, hourMs, now))
	assert.InDelta(t, 0.001, kylesLambda(w, dayMs, now), 1e-12)
}

func TestKylesLambda_DiscardsBrokenPrints(t *testing.T) {
	now := int64(1700000000000)
	w := newTradeWindow(100)

	// A 10x jump between consecutive prints is treated as bad data.
	w.push(mustTrade(t, 100, 1, now-100, SideBuy))
	w.push(mustTrade(t, 1000, 1, now-90, SideBuy))
	w.push(mustTrade(t, 100, 1, now-80, SideSell))

	assert.Zero(t, kylesLambda(w, dayMs, now))
}

func TestAmihud_PerDayRatios(t *testing.T) {
	now := int64(1700000000000)
	dayB := (now / dayMs) * dayMs
	dayA := dayB - dayMs
	w := newTradeWindow(100)

	// Day A: 100 -> 110 on 1 unit. Day B: 100 -> 105 on 1 unit. The pair
	// crossing midnight is skipped.
	w.push(mustTrade(t, 100, 1, dayA+1000, SideBuy))
	w.push(mustTrade(t, 110, 1, dayA+2000, SideBuy))
	w.push(mustTrade(t, 100, 1, dayB+1000, SideSell))
	w.push(mustTrade(t, 105, 1, dayB+2000, SideBuy))

	ratioA := 0.1 / 110.0
	ratioB := 0.05 / 105.0
	got := amihud(w, 90, now)
	assert.InDelta(t, (ratioA+ratioB)/2, got, 1e-12)
}

func TestAmihud_PeriodExcludesOldDays(t *testing.T) {
	now := int64(1700000000000)
	dayB := (now / dayMs) * dayMs
	dayA := dayB - 10*dayMs
	w := newTradeWindow(100)

	w.push(mustTrade(t, 100, 1, dayA+1000, SideBuy))
	w.push(mustTrade(t, 120, 1, dayA+2000, SideBuy))
	w.push(mustTrade(t, 100, 1, dayB+1000, SideSell))
	w.push(mustTrade(t, 105, 1, dayB+2000, SideBuy))

	got := amihud(w, 1, now)
	assert.InDelta(t, 0.05/105.0, got, 1e-12, "only the recent day qualifies")
}

func TestAmihud_NoQualifyingDaysIsZero(t *testing.T) {
	now := int64(1700000000000)
	w := newTradeWindow(100)
	assert.Zero(t, amihud(w, 30, now))

	w.push(mustTrade(t, 100, 1, now-1000, SideBuy))
	assert.Zero(t, amihud(w, 30, now), "a single trade forms no pair")
}

func TestOLSSlope(t *testing.T) {
	assert.Zero(t, olsSlope([]float64{1}, []float64{2}), "fewer than two points")
	assert.Zero(t, olsSlope([]float64{1, 2}, []float64{3}), "length mismatch")
	assert.Zero(t, olsSlope([]float64{5, 5, 5}, []float64{1, 2, 3}), "zero x variance")

	require.InDelta(t, 2.0, olsSlope([]float64{0, 1, 2, 3}, []float64{1, 3, 5, 7}), 1e-12)
}
