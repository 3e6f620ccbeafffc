package simulator

import (
	"math"

	"hawkbook/book"
	"hawkbook/hawkes"
)

const (
	minWeight = 0.05
	maxWeight = 50.0
)

// computeWeights implements the weights(book) function of spec.md §4.3:
// wide spreads attract liquidity provision, thick queues invite
// cancellations, and order-flow imbalance amplifies the corresponding
// market-order category.
func computeWeights(top book.TopOfBook, tick float64) [hawkes.Dim]float64 {
	if top.BestBidPrice == nil || top.BestAskPrice == nil {
		return [hawkes.Dim]float64{1, 1, 1, 1, 1, 1}
	}

	spread := *top.BestAskPrice - *top.BestBidPrice
	st := spread / tick

	var qb, qa float64
	if top.BestBidQty != nil {
		qb = *top.BestBidQty
	}
	if top.BestAskQty != nil {
		qa = *top.BestAskQty
	}
	imbalance := 0.0
	if qb+qa > 0 {
		imbalance = (qb - qa) / (qb + qa)
	}

	wide := 1 + 0.8*st
	tight := 1 + 2.5/(1+st)

	var w [hawkes.Dim]float64
	w[hawkes.CategoryBidAdd] = wide
	w[hawkes.CategoryAskAdd] = wide
	w[hawkes.CategoryBidCancel] = 1 + 0.01*qb
	w[hawkes.CategoryAskCancel] = 1 + 0.01*qa
	w[hawkes.CategoryMarketBuy] = tight * (1 + 1.5*maxf(0, imbalance))
	w[hawkes.CategoryMarketSell] = tight * (1 + 1.5*maxf(0, -imbalance))

	for i := range w {
		w[i] = clampWeight(w[i])
	}
	return w
}

func clampWeight(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return minWeight
	}
	if v < minWeight {
		return minWeight
	}
	if v > maxWeight {
		return maxWeight
	}
	return v
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
