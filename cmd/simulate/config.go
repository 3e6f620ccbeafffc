package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"hawkbook/hawkes"
	"hawkbook/simulator"
)

// loadParams reads a parameter bundle from a YAML file, generalizing
// the teacher's flag-only configuration (cmd/loadgen/main.go) with the
// one piece spec.md §6 leaves to the caller: "N and the parameter
// bundle". An empty path returns a reasonable six-dimensional default
// bundle so the binary is still runnable with no -config flag.
func loadParams(path string) (simulator.Params, error) {
	if path == "" {
		return defaultParams(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return simulator.Params{}, fmt.Errorf("load params: %w", err)
	}
	var params simulator.Params
	if err := yaml.Unmarshal(data, &params); err != nil {
		return simulator.Params{}, fmt.Errorf("load params: %w", err)
	}
	return params, nil
}

// defaultParams is a symmetric, mildly self-exciting bundle of the same
// shape as the simulator package's test parameters, with smaller
// values: uniform baseline
// intensity, excitation only on the diagonal, decay fast enough that
// the process settles between bursts.
func defaultParams() simulator.Params {
	mu := make([]float64, hawkes.Dim)
	alpha := make([][]float64, hawkes.Dim)
	beta := make([][]float64, hawkes.Dim)
	for i := range mu {
		mu[i] = 0.5
		alpha[i] = make([]float64, hawkes.Dim)
		beta[i] = make([]float64, hawkes.Dim)
		alpha[i][i] = 0.4
		beta[i][i] = 1.0
	}
	return simulator.Params{
		TickSize:    0.1,
		PriceCenter: 100.0,
		Hawkes: simulator.HawkesParams{
			Mu: mu, Alpha: alpha, Beta: beta,
			QtyMin: 1, QtyMax: 20, Seed: 1,
		},
		Placement: simulator.PlacementParams{Seed: 2},
	}
}
