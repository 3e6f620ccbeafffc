package hawkes

import (
	"fmt"
	"math"
	"math/rand"

	"go.uber.org/zap"
)

// Engine is the six-dimensional state-dependent Hawkes event generator
// driven by Ogata thinning (spec.md §4.2). It owns its own RNG stream,
// exactly as the teacher's cmd/loadgen/main.go and
// engine/orderbook_bench_test.go seed a dedicated *rand.Rand per
// deterministic run — this stream must never be shared with the
// placement policy's RNG (spec.md §5, §9).
type Engine struct {
	mu       [Dim]float64
	alpha    [Dim][Dim]float64
	betaDiag [Dim]float64

	qtyMin, qtyMax int64

	s        [Dim]float64
	lambda   [Dim]float64
	w        [Dim]float64
	lastTime float64

	rng    *rand.Rand
	logger *zap.Logger
}

// New constructs an Engine. It fails if mu does not have exactly Dim
// entries, if alpha or beta do not have exactly Dim rows each of
// exactly Dim entries, or if any mu_i is non-finite or <= 0
// (spec.md §4.2). Only the diagonal of beta (beta[i][i]) is consumed —
// off-diagonal decay terms are shape-checked but never read, stored
// or used (spec.md §9, "Diagonal-only decay"; see decayTo). A nil
// logger defaults to a no-op logger, same convention as
// simulator.New.
func New(mu []float64, alpha, beta [][]float64, qtyMin, qtyMax, seed int64, logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(mu) != Dim {
		return nil, fmt.Errorf("hawkes: mu must have %d entries, got %d", Dim, len(mu))
	}
	if err := checkMatrixShape("alpha", alpha); err != nil {
		return nil, err
	}
	if err := checkMatrixShape("beta", beta); err != nil {
		return nil, err
	}

	e := &Engine{
		qtyMin: qtyMin,
		qtyMax: qtyMax,
		rng:    rand.New(rand.NewSource(seed)),
		logger: logger,
	}

	for i := 0; i < Dim; i++ {
		if !isFinite(mu[i]) || mu[i] <= 0 {
			return nil, fmt.Errorf("hawkes: mu[%d] must be finite and positive, got %v", i, mu[i])
		}
		e.mu[i] = mu[i]
		e.lambda[i] = mu[i]
		e.w[i] = 1.0
		e.betaDiag[i] = beta[i][i]
		copy(e.alpha[i][:], alpha[i])
	}

	return e, nil
}

func checkMatrixShape(name string, m [][]float64) error {
	if len(m) != Dim {
		return fmt.Errorf("hawkes: %s must have %d rows, got %d", name, Dim, len(m))
	}
	for i, row := range m {
		if len(row) != Dim {
			return fmt.Errorf("hawkes: %s row %d must have %d entries, got %d", name, i, Dim, len(row))
		}
	}
	return nil
}

// SetWeights replaces the state weight vector wholesale. It fails only
// if w does not have exactly Dim entries; individual non-finite or
// non-positive entries are coerced to 1.0 rather than rejected
// (spec.md §4.2, defensive stability).
func (e *Engine) SetWeights(w []float64) error {
	if len(w) != Dim {
		return fmt.Errorf("hawkes: weights must have %d entries, got %d", Dim, len(w))
	}
	for i, v := range w {
		if !isFinite(v) || v <= 0 {
			e.logger.Warn("pathological weight coerced",
				zap.Int("category", i),
				zap.Float64("requested", v),
			)
			v = 1.0
		}
		e.w[i] = v
	}
	return nil
}

// Next produces the next event at a time strictly >= t, drawing its
// category from the weighted multivariate Hawkes law via Ogata
// thinning. Next never panics or returns an error.
func (e *Engine) Next(t float64) Event {
	tNow := t
	e.decayTo(tNow)

	for {
		upperBound := e.weightedIntensitySum()
		if upperBound <= 0 {
			// Reachable only if a caller drives w or mu to zero through
			// something other than SetWeights' coercion path (spec.md
			// §4.2). Reset and retry rather than diverge.
			e.logger.Warn("intensity upper bound non-positive, resetting weights")
			for i := range e.w {
				e.w[i] = 1.0
			}
			continue
		}

		u1 := e.rng.Float64()
		for u1 == 0 {
			u1 = e.rng.Float64()
		}
		tCandidate := tNow - math.Log(u1)/upperBound

		e.decayTo(tCandidate)
		candidateSum := e.weightedIntensitySum()

		u2 := e.rng.Float64()
		if u2*upperBound <= candidateSum {
			category := e.sampleCategory(candidateSum)
			for i := 0; i < Dim; i++ {
				e.s[i] += e.alpha[i][category]
				if e.s[i] < 0 {
					e.s[i] = 0
				}
				e.lambda[i] = clampNonNegative(e.mu[i] + e.s[i])
			}
			return Event{
				T:        tCandidate,
				Category: category,
				Quantity: e.sampleQuantity(),
			}
		}

		tNow = tCandidate
	}
}

// decayTo advances the excitation state and lastTime from e.lastTime to
// t, using only the diagonal of beta (spec.md §9, "Diagonal-only
// decay"). Intensities are clamped to >= 0 after every update
// (spec.md §4.2, numerical safety).
func (e *Engine) decayTo(t float64) {
	dt := t - e.lastTime
	if dt > 0 {
		for i := 0; i < Dim; i++ {
			e.s[i] *= math.Exp(-e.betaDiag[i] * dt)
			e.lambda[i] = clampNonNegative(e.mu[i] + e.s[i])
		}
	}
	e.lastTime = t
}

func (e *Engine) weightedIntensitySum() float64 {
	var total float64
	for i := 0; i < Dim; i++ {
		li := e.lambda[i]
		if li < 0 {
			li = 0
		}
		total += e.w[i] * li
	}
	return total
}

// sampleCategory walks the cumulative sum of w_i*lambda_i with a draw
// in (0, total]; if floating-point drift leaves the draw above the
// running sum, the last non-zero-weight index is returned (spec.md
// §4.2).
func (e *Engine) sampleCategory(total float64) int {
	u := total * (1 - e.rng.Float64())
	var cumulative float64
	lastNonZero := 0
	for i := 0; i < Dim; i++ {
		contribution := e.w[i] * e.lambda[i]
		if contribution < 0 {
			contribution = 0
		}
		if contribution > 0 {
			lastNonZero = i
		}
		cumulative += contribution
		if u <= cumulative {
			return i
		}
	}
	return lastNonZero
}

func (e *Engine) sampleQuantity() float64 {
	if e.qtyMax <= e.qtyMin {
		return float64(e.qtyMin)
	}
	return float64(e.qtyMin + e.rng.Int63n(e.qtyMax-e.qtyMin+1))
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
