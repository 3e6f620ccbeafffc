package book

import (
	"math/rand"
	"testing"
)

func BenchmarkApplyThroughput(b *testing.B) {
	ob := New(0.01, nil)
	rng := rand.New(rand.NewSource(42))

	events := make([]Event, b.N)
	for i := range events {
		events[i] = randomBenchmarkEvent(rng)
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		ob.Apply(events[i])
	}
}

func randomBenchmarkEvent(rng *rand.Rand) Event {
	base := 10000.0
	width := 100.0

	side := Bid
	if rng.Intn(2) == 1 {
		side = Ask
	}

	var price float64
	if side == Bid {
		price = base + rng.Float64()*width
	} else {
		price = base - rng.Float64()*width
		if price <= 0 {
			price = 1
		}
	}

	typ := Add
	switch rng.Intn(5) {
	case 0:
		typ = Market
	case 1:
		typ = Cancel
	}

	return Event{
		T:        0,
		Type:     typ,
		Side:     side,
		Price:    price,
		Quantity: rng.Float64()*5 + 1,
	}
}
