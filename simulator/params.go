package simulator

// HawkesParams bundles the six-dimensional Hawkes process parameters.
// Shape mirrors the corpus's scenario.Config/ScenarioParams pattern
// (akshitanchan-execution-fairness-simulator): a flat, tagged struct
// that can round-trip through YAML or JSON untouched.
type HawkesParams struct {
	Mu     []float64   `yaml:"mu" json:"mu"`
	Alpha  [][]float64 `yaml:"alpha" json:"alpha"`
	Beta   [][]float64 `yaml:"beta" json:"beta"`
	QtyMin int64       `yaml:"qty_min" json:"qty_min"`
	QtyMax int64       `yaml:"qty_max" json:"qty_max"`
	Seed   int64       `yaml:"seed" json:"seed"`
}

// PlacementParams bundles the independent RNG stream used only by the
// placement policy (spec.md §5: must never share a generator with the
// Hawkes engine).
type PlacementParams struct {
	Seed int64 `yaml:"seed" json:"seed"`
}

// BurstParams is a supplemented, off-by-default regime: a sub-window of
// the run during which the computed weight vector is scaled up,
// modeled after the burst-window fields in
// akshitanchan-execution-fairness-simulator's ScenarioParams. The zero
// value disables it entirely, so spec.md §8's boundary scenarios are
// unaffected unless a caller opts in.
type BurstParams struct {
	WindowStart float64 `yaml:"window_start,omitempty" json:"window_start,omitempty"`
	WindowEnd   float64 `yaml:"window_end,omitempty" json:"window_end,omitempty"`
	WeightScale float64 `yaml:"weight_scale,omitempty" json:"weight_scale,omitempty"`
}

func (b BurstParams) active(t float64) bool {
	return b.WeightScale > 0 && t >= b.WindowStart && t < b.WindowEnd
}

// Params gathers everything a single simulation run needs. The core
// engine packages take no configuration of their own (spec.md §6); this
// is the one struct the caller (in practice, cmd/simulate) assembles and
// hands to New.
type Params struct {
	TickSize     float64         `yaml:"tick_size" json:"tick_size"`
	PriceCenter  float64         `yaml:"price_center" json:"price_center"`
	SeedLevels   int             `yaml:"seed_levels" json:"seed_levels"`
	SeedQuantity float64         `yaml:"seed_quantity" json:"seed_quantity"`
	Hawkes       HawkesParams    `yaml:"hawkes" json:"hawkes"`
	Placement    PlacementParams `yaml:"placement" json:"placement"`
	Burst        BurstParams     `yaml:"burst,omitempty" json:"burst,omitempty"`
}

const (
	defaultSeedLevels   = 10
	defaultSeedQuantity = 60.0
)

// WithDefaults fills the seeding depth/quantity defaults from spec.md
// §4.3 ("ten levels ... default 60") when the caller left them at zero.
func (p Params) WithDefaults() Params {
	if p.SeedLevels == 0 {
		p.SeedLevels = defaultSeedLevels
	}
	if p.SeedQuantity == 0 {
		p.SeedQuantity = defaultSeedQuantity
	}
	return p
}
