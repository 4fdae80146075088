package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBook(bids, asks []OrderBookLevel) *bookView {
	var b bookView
	b.replace(bids, asks)
	return &b
}

func TestBookView_FilterAndSort(t *testing.T) {
	b := testBook(
		[]OrderBookLevel{{Price: 99, Size: 5}, {Price: -1, Size: 3}, {Price: 100, Size: 2}, {Price: 98, Size: 0}},
		[]OrderBookLevel{{Price: 102, Size: 4}, {Price: 101, Size: 3}, {Price: 0, Size: 9}},
	)

	require.Len(t, b.bids, 2)
	require.Len(t, b.asks, 2)
	for i := 1; i < len(b.bids); i++ {
		assert.Greater(t, b.bids[i-1].Price, b.bids[i].Price, "bids descending")
	}
	for i := 1; i < len(b.asks); i++ {
		assert.Less(t, b.asks[i-1].Price, b.asks[i].Price, "asks ascending")
	}
}

func TestComputeLiquidity_ReferenceBook(t *testing.T) {
	// bids=[(100,2),(99,5)], asks=[(101,3),(102,4)]
	b := testBook(
		[]OrderBookLevel{{Price: 100, Size: 2}, {Price: 99, Size: 5}},
		[]OrderBookLevel{{Price: 101, Size: 3}, {Price: 102, Size: 4}},
	)

	m := computeLiquidity(b, 2, 1.0)

	assert.Equal(t, 1.0, m.Spread)
	assert.InDelta(t, 1.0/100.5, m.RelativeSpread, 1e-12)
	assert.Equal(t, 7.0, m.BidDepth)
	assert.Equal(t, 7.0, m.AskDepth)
	require.NotNil(t, m.Imbalance)
	assert.Zero(t, *m.Imbalance)
}

func TestComputeLiquidity_EmptySideMeansAbsent(t *testing.T) {
	b := testBook([]OrderBookLevel{{Price: 100, Size: 2}}, nil)

	m := computeLiquidity(b, 10, 1.0)
	assert.Zero(t, m.Spread)
	assert.Nil(t, m.Imbalance)
	assert.Nil(t, m.BidVWAP)
	assert.Nil(t, m.AskVWAP)
}

func TestWalkVWAP_TargetWithinFirstLevel(t *testing.T) {
	levels := []OrderBookLevel{{Price: 100, Size: 2}, {Price: 99, Size: 5}}

	vwap, ok := walkVWAP(levels, 1.5)
	require.True(t, ok)
	assert.Equal(t, 100.0, vwap, "a fill inside the first level executes at that price")
}

func TestWalkVWAP_WalksOutward(t *testing.T) {
	levels := []OrderBookLevel{{Price: 100, Size: 2}, {Price: 99, Size: 5}}

	// 2 at 100, 2 at 99 -> (200+198)/4
	vwap, ok := walkVWAP(levels, 4)
	require.True(t, ok)
	assert.InDelta(t, 99.5, vwap, 1e-12)
}

func TestWalkVWAP_ExhaustionAndDegenerates(t *testing.T) {
	levels := []OrderBookLevel{{Price: 100, Size: 1}}

	// Target beyond available depth: consume what exists.
	vwap, ok := walkVWAP(levels, 50)
	require.True(t, ok)
	assert.Equal(t, 100.0, vwap)

	_, ok = walkVWAP(nil, 1)
	assert.False(t, ok)
	_, ok = walkVWAP(levels, 0)
	assert.False(t, ok)
}

func TestSlippage_SignsRelativeToTopOfBook(t *testing.T) {
	b := testBook(
		[]OrderBookLevel{{Price: 100, Size: 1}, {Price: 90, Size: 10}},
		[]OrderBookLevel{{Price: 101, Size: 1}, {Price: 111, Size: 10}},
	)

	// Filling 2 units walks into the worse level on each side.
	m := computeLiquidity(b, 10, 2)
	require.NotNil(t, m.BidSlippage)
	require.NotNil(t, m.AskSlippage)
	assert.InDelta(t, (100.0-95.0)/100.0, *m.BidSlippage, 1e-12)
	assert.InDelta(t, (106.0-101.0)/101.0, *m.AskSlippage, 1e-12)
}

func TestBookSlope(t *testing.T) {
	// Prices fall linearly as cumulative size grows by 1 per level:
	// slope is exactly -1.
	levels := []OrderBookLevel{
		{Price: 100, Size: 1},
		{Price: 99, Size: 1},
		{Price: 98, Size: 1},
	}
	assert.InDelta(t, -1.0, bookSlope(levels, 10), 1e-12)

	assert.Zero(t, bookSlope(levels[:1], 10), "fewer than two levels")
	assert.Zero(t, bookSlope(nil, 10))
}
