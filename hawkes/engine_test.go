package hawkes

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sixByZero() [][]float64 {
	m := make([][]float64, Dim)
	for i := range m {
		m[i] = make([]float64, Dim)
	}
	return m
}

func uniformMu(v float64) []float64 {
	mu := make([]float64, Dim)
	for i := range mu {
		mu[i] = v
	}
	return mu
}

func TestNewRejectsWrongDimensions(t *testing.T) {
	alpha := sixByZero()
	beta := sixByZero()
	for i := range beta {
		beta[i][i] = 1.5
	}

	_, err := New(uniformMu(1)[:5], alpha, beta, 1, 10, 1, nil)
	require.Error(t, err)

	badAlpha := sixByZero()
	badAlpha[2] = badAlpha[2][:5]
	_, err = New(uniformMu(1), badAlpha, beta, 1, 10, 1, nil)
	require.Error(t, err)
}

func TestNewRejectsNonPositiveMu(t *testing.T) {
	alpha := sixByZero()
	beta := sixByZero()
	for i := range beta {
		beta[i][i] = 1.5
	}
	mu := uniformMu(1)
	mu[3] = 0

	_, err := New(mu, alpha, beta, 1, 10, 1, nil)
	require.Error(t, err)
}

func TestSetWeightsCoercesPathologicalValues(t *testing.T) {
	e := newTestEngine(t)
	err := e.SetWeights([]float64{1, -1, 0, math.NaN(), math.Inf(1), 2})
	require.NoError(t, err)
	for i, v := range e.w {
		assert.Greater(t, v, 0.0, "weight %d should be positive after coercion", i)
	}
}

func TestSetWeightsRejectsWrongLength(t *testing.T) {
	e := newTestEngine(t)
	err := e.SetWeights([]float64{1, 1, 1})
	require.Error(t, err)
}

func TestNextIsMonotoneAndDeterministic(t *testing.T) {
	e1 := newTestEngine(t)
	e2 := newTestEngine(t)

	tPrev := 0.0
	for i := 0; i < 200; i++ {
		ev1 := e1.Next(tPrev)
		ev2 := e2.Next(tPrev)

		require.Equal(t, ev1, ev2, "identical seeds must produce identical streams")
		assert.GreaterOrEqual(t, ev1.T, tPrev)
		tPrev = ev1.T
	}
}

func TestSelfExcitationRaisesEmpiricalRate(t *testing.T) {
	mu := uniformMu(1)
	alpha := sixByZero()
	beta := sixByZero()
	for i := 0; i < Dim; i++ {
		alpha[i][i] = 0.8
		beta[i][i] = 1.5
	}

	e, err := New(mu, alpha, beta, 1, 10, 7, nil)
	require.NoError(t, err)
	require.NoError(t, e.SetWeights([]float64{1, 1, 1, 1, 1, 1}))

	const n = 10000
	var counts [Dim]int
	tCur := 0.0
	for i := 0; i < n; i++ {
		ev := e.Next(tCur)
		counts[ev.Category]++
		tCur = ev.T
	}

	empiricalTotalRate := float64(n) / tCur
	baselineTotalRate := 0.0
	for _, m := range mu {
		baselineTotalRate += m
	}

	assert.Greater(t, empiricalTotalRate, baselineTotalRate,
		"self-excitation should push the empirical rate above the unweighted baseline sum")
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	alpha := sixByZero()
	beta := sixByZero()
	for i := range beta {
		beta[i][i] = 1.5
	}
	e, err := New(uniformMu(1), alpha, beta, 1, 10, 42, nil)
	require.NoError(t, err)
	return e
}
