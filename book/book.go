package book

import (
	"math"

	"go.uber.org/zap"
)

const defaultTickSize = 0.1

// OrderBook maintains aggregated price-level quantities per side and
// applies limit-add, cancel, and market events under price-time
// priority (teacher: engine/orderbook.go), generalized from per-order
// identity to aggregated levels (spec.md §3, "Book side").
//
// OrderBook is not safe for concurrent use. The core is strictly
// single-threaded and sequential (spec.md §5); unlike the teacher's
// OrderBook, there is no internal actor goroutine or request channel —
// Apply/Top/Metrics are plain synchronous method calls made only from
// the simulator's loop.
type OrderBook struct {
	tick   float64
	bids   *bookSide
	asks   *bookSide
	logger *zap.Logger
}

// New builds an empty order book. A non-finite or non-positive
// tickSize is silently replaced by the default of 0.1, logged at Warn
// on the given logger (spec.md §4.1, §7). A nil logger defaults to a
// no-op logger, same convention as simulator.New.
func New(tickSize float64, logger *zap.Logger) *OrderBook {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !isFinite(tickSize) || tickSize <= 0 {
		logger.Warn("tick size defaulted",
			zap.Float64("requested", tickSize),
			zap.Float64("default", defaultTickSize),
		)
		tickSize = defaultTickSize
	}
	return &OrderBook{
		tick:   tickSize,
		bids:   newBookSide(true),
		asks:   newBookSide(false),
		logger: logger,
	}
}

// TickSize returns the book's tick size.
func (ob *OrderBook) TickSize() float64 { return ob.tick }

// BidLevels returns the number of distinct resting bid price levels.
func (ob *OrderBook) BidLevels() int { return ob.bids.len() }

// AskLevels returns the number of distinct resting ask price levels.
func (ob *OrderBook) AskLevels() int { return ob.asks.len() }

// Snap rounds price to the nearest multiple of the book's tick size.
func (ob *OrderBook) Snap(price float64) float64 {
	return snap(price, ob.tick)
}

func snap(price, tick float64) float64 {
	return math.Round(price/tick) * tick
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Apply attempts to apply event atomically. It returns false — with no
// state change at all — iff the event fails a precondition (spec.md
// §4.1). The book never panics or returns an error; malformed events
// are simply dropped.
func (ob *OrderBook) Apply(ev Event) bool {
	if !isFinite(ev.T) || ev.Quantity <= 0 {
		return false
	}

	switch ev.Type {
	case Add:
		if !isFinite(ev.Price) || ev.Price <= 0 {
			return false
		}
		ob.applyAdd(ev)
	case Cancel:
		if !isFinite(ev.Price) || ev.Price <= 0 {
			return false
		}
		ob.applyCancel(ev)
	case Market:
		ob.applyMarket(ev)
	default:
		return false
	}
	return true
}

func (ob *OrderBook) applyAdd(ev Event) {
	price := snap(ev.Price, ob.tick)

	if ev.Side == Bid {
		if best := ob.asks.best(); best != nil && price >= best.price {
			ob.asks.consume(ev.Quantity)
			return
		}
		ob.bids.rest(price, ev.Quantity)
		return
	}

	// Ask side, symmetric.
	if best := ob.bids.best(); best != nil && price <= best.price {
		ob.bids.consume(ev.Quantity)
		return
	}
	ob.asks.rest(price, ev.Quantity)
}

func (ob *OrderBook) applyCancel(ev Event) {
	price := snap(ev.Price, ob.tick)
	if ev.Side == Bid {
		ob.bids.cancel(price, ev.Quantity)
	} else {
		ob.asks.cancel(price, ev.Quantity)
	}
}

func (ob *OrderBook) applyMarket(ev Event) {
	// side denotes the aggressor: Bid = market buy, consumes asks.
	if ev.Side == Bid {
		ob.asks.consume(ev.Quantity)
	} else {
		ob.bids.consume(ev.Quantity)
	}
}

// Top returns an O(log N) snapshot of the best bid/ask price and
// quantity. Optional fields are nil when a side is empty.
func (ob *OrderBook) Top() TopOfBook {
	var top TopOfBook
	if best := ob.bids.best(); best != nil {
		price, qty := best.price, best.qty
		top.BestBidPrice, top.BestBidQty = &price, &qty
	}
	if best := ob.asks.best(); best != nil {
		price, qty := best.price, best.qty
		top.BestAskPrice, top.BestAskQty = &price, &qty
	}
	return top
}

// Metrics returns mid/spread/imbalance derived from Top().
func (ob *OrderBook) Metrics() Metrics {
	return MetricsFrom(ob.Top())
}
