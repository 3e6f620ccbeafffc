package simulator

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hawkbook/book"
	"hawkbook/hawkes"
)

// categoryMapping is the load-bearing category-to-event table of
// spec.md §4.2, owned here because it is the seam between hawkes
// (which only knows integer categories) and book (which only knows
// EventType/Side) — spec.md §3 assigns this mapping to neither package
// on its own.
type categoryMapping struct {
	Type book.EventType
	Side book.Side
}

var categoryTable = [hawkes.Dim]categoryMapping{
	hawkes.CategoryBidAdd:     {book.Add, book.Bid},
	hawkes.CategoryAskAdd:     {book.Add, book.Ask},
	hawkes.CategoryBidCancel:  {book.Cancel, book.Bid},
	hawkes.CategoryAskCancel:  {book.Cancel, book.Ask},
	hawkes.CategoryMarketBuy:  {book.Market, book.Bid},
	hawkes.CategoryMarketSell: {book.Market, book.Ask},
}

// ObservationRecord is the boundary type external collaborators (the
// stream and recorder packages) consume: the event as applied, plus
// top-of-book and derived metrics taken after it was applied
// (spec.md §6). Optional fields are nil when the corresponding book
// side is empty, so a CSV encoder can emit "" and a columnar encoder
// can emit NaN from the same struct without the simulator knowing
// about either encoding.
type ObservationRecord struct {
	T         float64
	EventType book.EventType
	Side      book.Side
	Quantity  float64
	Price     float64
	Applied   bool

	BestBidPrice *float64
	BestBidQty   *float64
	BestAskPrice *float64
	BestAskQty   *float64

	Mid       *float64
	Spread    *float64
	Imbalance *float64
}

// Simulator seeds the book, then drives the feedback loop described in
// spec.md §2: book.Top() -> weights(state) -> engine.SetWeights(w) ->
// engine.Next(t) -> placement(category, top) -> book.Apply(event) ->
// observation. It is strictly single-threaded and sequential
// (spec.md §5): Step/Run must not be called concurrently, and nothing
// inside owns a goroutine.
type Simulator struct {
	params    Params
	book      *book.OrderBook
	engine    *hawkes.Engine
	placement *placementPolicy
	clock     float64
	logger    *zap.Logger
	runID     uuid.UUID
}

// New builds a Simulator, seeds the book per spec.md §4.3, and
// constructs the Hawkes engine from params.Hawkes. A nil logger
// defaults to a no-op logger (zap.NewNop()) — Simulator never checks
// for nil before logging.
func New(params Params, logger *zap.Logger) (*Simulator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	params = params.WithDefaults()

	engine, err := hawkes.New(
		params.Hawkes.Mu,
		params.Hawkes.Alpha,
		params.Hawkes.Beta,
		params.Hawkes.QtyMin,
		params.Hawkes.QtyMax,
		params.Hawkes.Seed,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("simulator: %w", err)
	}

	s := &Simulator{
		params:    params,
		book:      book.New(params.TickSize, logger),
		engine:    engine,
		placement: newPlacementPolicy(params.Placement.Seed),
		logger:    logger.With(zap.String("component", "simulator")),
		runID:     uuid.New(),
	}
	s.seed()
	return s, nil
}

// RunID identifies this simulation run for log/CSV/stream correlation.
func (s *Simulator) RunID() uuid.UUID { return s.runID }

// Book exposes the underlying order book for inspection (e.g. by the
// stream adapter's initial snapshot).
func (s *Simulator) Book() *book.OrderBook { return s.book }

// seed populates SeedLevels levels (default ten) on each side at price_center +/- k*tick for
// k = 1..SeedLevels with SeedQuantity units, before any Hawkes event is
// drawn (spec.md §4.3).
func (s *Simulator) seed() {
	tick := s.book.TickSize()
	for k := 1; k <= s.params.SeedLevels; k++ {
		offset := float64(k) * tick
		s.book.Apply(book.Event{
			T: 0, Type: book.Add, Side: book.Bid,
			Price: s.params.PriceCenter - offset, Quantity: s.params.SeedQuantity,
		})
		s.book.Apply(book.Event{
			T: 0, Type: book.Add, Side: book.Ask,
			Price: s.params.PriceCenter + offset, Quantity: s.params.SeedQuantity,
		})
	}
	s.logger.Info("seeded book",
		zap.String("run_id", s.runID.String()),
		zap.Int("levels", s.params.SeedLevels),
		zap.Float64("quantity", s.params.SeedQuantity),
	)
}

// ensureLiveness injects a safety Add of quantity 50 on whichever side
// is empty, one tick off price_center, so placement always has a best
// price to read from (spec.md §4.3, "Book liveness").
func (s *Simulator) ensureLiveness() {
	tick := s.book.TickSize()
	top := s.book.Top()
	if top.BestBidPrice == nil {
		s.book.Apply(book.Event{T: s.clock, Type: book.Add, Side: book.Bid, Price: s.params.PriceCenter - tick, Quantity: 50})
		s.logger.Warn("injected safety bid liquidity", zap.String("run_id", s.runID.String()))
	}
	if top.BestAskPrice == nil {
		s.book.Apply(book.Event{T: s.clock, Type: book.Add, Side: book.Ask, Price: s.params.PriceCenter + tick, Quantity: 50})
		s.logger.Warn("injected safety ask liquidity", zap.String("run_id", s.runID.String()))
	}
}

// Step advances the simulation by exactly one event and returns the
// resulting observation record.
func (s *Simulator) Step() ObservationRecord {
	top := s.book.Top()
	w := computeWeights(top, s.book.TickSize())
	if s.params.Burst.active(s.clock) {
		for i := range w {
			w[i] = clampWeight(w[i] * s.params.Burst.WeightScale)
		}
	}

	if err := s.engine.SetWeights(w[:]); err != nil {
		// Unreachable: w always has hawkes.Dim entries by construction.
		s.logger.Warn("set_weights failed", zap.Error(err))
	}

	ev := s.engine.Next(s.clock)
	s.clock = ev.T

	mapping := categoryTable[ev.Category]

	s.ensureLiveness()
	top = s.book.Top()
	price := s.placement.resolve(mapping.Type, mapping.Side, top, s.book.TickSize())

	bookEvent := book.Event{T: ev.T, Type: mapping.Type, Side: mapping.Side, Price: price, Quantity: ev.Quantity}
	applied := s.book.Apply(bookEvent)
	if !applied {
		s.logger.Warn("event dropped by book precondition",
			zap.String("run_id", s.runID.String()),
			zap.String("type", mapping.Type.String()),
			zap.String("side", mapping.Side.String()),
		)
	}

	topAfter := s.book.Top()
	metricsAfter := s.book.Metrics()

	return ObservationRecord{
		T:         ev.T,
		EventType: mapping.Type,
		Side:      mapping.Side,
		Quantity:  ev.Quantity,
		Price:     price,
		Applied:   applied,

		BestBidPrice: topAfter.BestBidPrice,
		BestBidQty:   topAfter.BestBidQty,
		BestAskPrice: topAfter.BestAskPrice,
		BestAskQty:   topAfter.BestAskQty,

		Mid:       metricsAfter.Mid,
		Spread:    metricsAfter.Spread,
		Imbalance: metricsAfter.Imbalance,
	}
}

// Run steps the simulation n times and returns every observation, in
// order. This is the API external collaborators call (spec.md §6).
func (s *Simulator) Run(n int) []ObservationRecord {
	records := make([]ObservationRecord, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, s.Step())
	}
	return records
}
