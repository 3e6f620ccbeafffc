package simulator

import (
	"testing"

	"hawkbook/book"
	"hawkbook/hawkes"
)

func testParams() Params {
	alpha := make([][]float64, hawkes.Dim)
	beta := make([][]float64, hawkes.Dim)
	mu := make([]float64, hawkes.Dim)
	for i := range mu {
		mu[i] = 1.0
		alpha[i] = make([]float64, hawkes.Dim)
		beta[i] = make([]float64, hawkes.Dim)
		alpha[i][i] = 0.5
		beta[i][i] = 1.2
	}
	return Params{
		TickSize:    0.1,
		PriceCenter: 100.0,
		Hawkes: HawkesParams{
			Mu: mu, Alpha: alpha, Beta: beta,
			QtyMin: 1, QtyMax: 10, Seed: 11,
		},
		Placement: PlacementParams{Seed: 22},
	}
}

func TestNewSeedsTenLevelsPerSide(t *testing.T) {
	sim, err := New(testParams(), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if got := sim.Book().BidLevels(); got != 10 {
		t.Fatalf("expected 10 seeded bid levels, got %d", got)
	}
	if got := sim.Book().AskLevels(); got != 10 {
		t.Fatalf("expected 10 seeded ask levels, got %d", got)
	}
}

func TestRunIsDeterministicForIdenticalSeeds(t *testing.T) {
	sim1, err := New(testParams(), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	sim2, err := New(testParams(), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	records1 := sim1.Run(500)
	records2 := sim2.Run(500)

	if len(records1) != len(records2) {
		t.Fatalf("record count mismatch: %d vs %d", len(records1), len(records2))
	}
	for i := range records1 {
		a, b := records1[i], records2[i]
		if a.T != b.T || a.EventType != b.EventType || a.Side != b.Side ||
			a.Quantity != b.Quantity || a.Price != b.Price {
			t.Fatalf("record %d diverged: %+v vs %+v", i, a, b)
		}
	}
}

func TestRunProducesNonDecreasingTime(t *testing.T) {
	sim, err := New(testParams(), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	records := sim.Run(1000)
	for i := 1; i < len(records); i++ {
		if records[i].T < records[i-1].T {
			t.Fatalf("time decreased at step %d: %v -> %v", i, records[i-1].T, records[i].T)
		}
	}
}

func TestRunNeverCrossesTheBook(t *testing.T) {
	sim, err := New(testParams(), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	records := sim.Run(2000)
	for i, rec := range records {
		if rec.BestBidPrice != nil && rec.BestAskPrice != nil {
			if *rec.BestBidPrice >= *rec.BestAskPrice {
				t.Fatalf("book crossed at step %d: bid=%v ask=%v", i, *rec.BestBidPrice, *rec.BestAskPrice)
			}
		}
	}
}

func TestWeightsNeutralOnEmptySide(t *testing.T) {
	w := computeWeights(book.TopOfBook{}, 0.1)
	for i, v := range w {
		if v != 1.0 {
			t.Fatalf("expected neutral weight at index %d, got %v", i, v)
		}
	}
}

func TestWeightsClampToBounds(t *testing.T) {
	bid, ask := 100.0, 100.1
	qb, qa := 1e9, 1e9
	top := book.TopOfBook{BestBidPrice: &bid, BestAskPrice: &ask, BestBidQty: &qb, BestAskQty: &qa}
	w := computeWeights(top, 0.1)
	for i, v := range w {
		if v < minWeight || v > maxWeight {
			t.Fatalf("weight %d out of bounds: %v", i, v)
		}
	}
}

func TestLivenessInjectionGuaranteesBothSides(t *testing.T) {
	sim, err := New(testParams(), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	// Cancel every seeded level to empty both sides before liveness runs.
	tick := sim.Book().TickSize()
	for k := 1; k <= 10; k++ {
		offset := float64(k) * tick
		sim.Book().Apply(book.Event{Type: book.Cancel, Side: book.Bid, Price: 100.0 - offset, Quantity: 1e9})
		sim.Book().Apply(book.Event{Type: book.Cancel, Side: book.Ask, Price: 100.0 + offset, Quantity: 1e9})
	}
	if sim.Book().BidLevels() != 0 || sim.Book().AskLevels() != 0 {
		t.Fatalf("expected both sides empty before liveness check")
	}

	sim.ensureLiveness()

	if sim.Book().BidLevels() == 0 || sim.Book().AskLevels() == 0 {
		t.Fatalf("expected liveness injection to populate both sides")
	}
}
