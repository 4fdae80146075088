package analytics

import "math"

const (
	hourMs = int64(3600000)
	dayMs  = int64(86400000)

	// maxAbsImpactReturn discards obviously broken prints from the Kyle's
	// lambda fit (a 100%+ move between consecutive trades).
	maxAbsImpactReturn = 1.0
)

// ImpactMetrics captures market-impact estimates over the standard windows.
type ImpactMetrics struct {
	KylesLambda struct {
		Daily  float64 `json:"daily"`
		Hourly float64 `json:"hourly"`
	} `json:"kyles_lambda"`
	Amihud struct {
		OneDay     float64 `json:"1_day"`
		ThirtyDays float64 `json:"30_days"`
		NinetyDays float64 `json:"90_days"`
	} `json:"amihud_measures"`
}

// computeImpact recomputes every impact measure from the trade history.
// nowMs anchors the lookback windows.
func computeImpact(w *tradeWindow, nowMs int64) ImpactMetrics {
	var m ImpactMetrics
	m.KylesLambda.Daily = kylesLambda(w, dayMs, nowMs)
	m.KylesLambda.Hourly = kylesLambda(w, hourMs, nowMs)
	m.Amihud.OneDay = amihud(w, 1, nowMs)
	m.Amihud.ThirtyDays = amihud(w, 30, nowMs)
	m.Amihud.NinetyDays = amihud(w, 90, nowMs)
	return m
}

// kylesLambda fits log returns against signed volumes over consecutive trade
// pairs whose later print falls within windowMs of now. 0 with fewer than
// two valid pairs.
func kylesLambda(w *tradeWindow, windowMs, nowMs int64) float64 {
	if w.len() < 2 {
		return 0
	}

	var logRets, signedVols []float64
	for i := 1; i < w.len(); i++ {
		prev, curr := w.at(i-1), w.at(i)
		if nowMs-curr.Timestamp > windowMs {
			continue
		}
		if prev.Price <= 0 || curr.Price <= 0 {
			continue
		}
		r := math.Log(curr.Price / prev.Price)
		if !isFinite(r) || math.Abs(r) >= maxAbsImpactReturn {
			continue
		}
		logRets = append(logRets, r)
		signedVols = append(signedVols, curr.Amount*curr.Side.signMultiplier())
	}

	if len(logRets) < 2 {
		return 0
	}
	return olsSlope(signedVols, logRets)
}

// amihud averages the per-day ratio of summed absolute returns to summed
// dollar volume over same-calendar-day consecutive trade pairs within the
// period. 0 when no day qualifies.
func amihud(w *tradeWindow, periodDays int, nowMs int64) float64 {
	if w.len() < 2 {
		return 0
	}

	type dayTotals struct {
		absReturn float64
		volume    float64
	}
	days := make(map[int64]*dayTotals)
	periodMs := int64(periodDays) * dayMs

	for i := 1; i < w.len(); i++ {
		prev, curr := w.at(i-1), w.at(i)
		if nowMs-curr.Timestamp > periodMs {
			continue
		}
		day := curr.Timestamp / dayMs
		if prev.Timestamp/dayMs != day || prev.Price <= 0 {
			continue
		}
		ret := math.Abs(curr.Price-prev.Price) / prev.Price
		volume := curr.Cost
		if !isFinite(ret) || !isFinite(volume) || volume <= 0 {
			continue
		}
		totals, ok := days[day]
		if !ok {
			totals = &dayTotals{}
			days[day] = totals
		}
		totals.absReturn += ret
		totals.volume += volume
	}

	sum := 0.0
	validDays := 0
	for _, totals := range days {
		if totals.volume <= 0 {
			continue
		}
		ratio := totals.absReturn / totals.volume
		if isFinite(ratio) {
			sum += ratio
			validDays++
		}
	}
	if validDays == 0 {
		return 0
	}
	return sum / float64(validDays)
}

// olsSlope fits y = a + bx by ordinary least squares and returns b.
// 0 on mismatched input, fewer than two points, or zero x variance.
func olsSlope(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return 0
	}

	xMean, yMean := 0.0, 0.0
	for i := range x {
		xMean += x[i]
		yMean += y[i]
	}
	xMean /= float64(len(x))
	yMean /= float64(len(y))

	num, den := 0.0, 0.0
	for i := range x {
		num += (x[i] - xMean) * (y[i] - yMean)
		den += (x[i] - xMean) * (x[i] - xMean)
	}
	if den == 0 || !isFinite(num) || !isFinite(den) {
		return 0
	}
	return num / den
}
