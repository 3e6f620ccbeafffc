package simulator

import (
	"math"
	"math/rand"

	"hawkbook/book"
)

// placementPolicy resolves a concrete price for a category once the
// Hawkes engine has chosen it, closing the feedback loop between book
// state and the next event (spec.md §4.3). It owns an RNG stream
// independent of the Hawkes engine's (spec.md §5, §9).
type placementPolicy struct {
	rng *rand.Rand
}

func newPlacementPolicy(seed int64) *placementPolicy {
	return &placementPolicy{rng: rand.New(rand.NewSource(seed))}
}

// resolve returns the price to use for evtType/side given the current
// top of book and tick size. Cancel resolves to the current best on
// the same side (0 if that side is empty, which book.Apply then drops
// as a precondition failure — an observable no-op). Market prices are
// unused and set to 0.
func (p *placementPolicy) resolve(evtType book.EventType, side book.Side, top book.TopOfBook, tick float64) float64 {
	switch evtType {
	case book.Market:
		return 0
	case book.Cancel:
		return p.resolveCancel(side, top)
	default:
		return p.resolveAdd(side, top, tick)
	}
}

func (p *placementPolicy) resolveCancel(side book.Side, top book.TopOfBook) float64 {
	if side == book.Bid {
		if top.BestBidPrice != nil {
			return *top.BestBidPrice
		}
		return 0
	}
	if top.BestAskPrice != nil {
		return *top.BestAskPrice
	}
	return 0
}

// resolveAdd implements spec.md §4.3's Add placement: an improve/join/
// behind ladder driven by an integer roll compared against
// floor(prob*100) thresholds (spec.md §9, "Open question — off-by-one
// in probability thresholds" — the integer-roll comparison is kept
// deliberately, for reproducible traces, rather than corrected to a
// continuous draw).
func (p *placementPolicy) resolveAdd(side book.Side, top book.TopOfBook, tick float64) float64 {
	haveBid := top.BestBidPrice != nil
	haveAsk := top.BestAskPrice != nil
	var bestBid, bestAsk float64
	if haveBid {
		bestBid = *top.BestBidPrice
	}
	if haveAsk {
		bestAsk = *top.BestAskPrice
	}

	st := 0.0
	if haveBid && haveAsk {
		st = (bestAsk - bestBid) / tick
	}

	improveProb := 0.20
	if st >= 3 {
		improveProb = 0.45
	}
	const joinProb = 0.50

	roll := p.rng.Intn(100)
	improveThreshold := int(math.Floor(improveProb * 100))
	joinThreshold := int(math.Floor((improveProb + joinProb) * 100))

	depth := float64(p.rng.Intn(5) + 1)

	if side == book.Bid {
		if roll < improveThreshold && haveBid && haveAsk && bestBid+tick < bestAsk {
			return bestBid + tick
		}
		if roll < joinThreshold && haveBid {
			return bestBid
		}
		if haveBid {
			return bestBid - depth*tick
		}
		if haveAsk {
			return bestAsk - depth*tick
		}
		return tick
	}

	if roll < improveThreshold && haveBid && haveAsk && bestAsk-tick > bestBid {
		return bestAsk - tick
	}
	if roll < joinThreshold && haveAsk {
		return bestAsk
	}
	if haveAsk {
		return bestAsk + depth*tick
	}
	if haveBid {
		return bestBid + depth*tick
	}
	return tick
}
