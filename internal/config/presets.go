package config

import (
	"sort"

	"github.com/controldev/mracsim/internal/dynamo"
)

// presets reproduce the classic single-experiment setups. Each entry is
// cloned on lookup so callers can mutate freely.
var presets = map[string]*Config{
	// First-order unstable plant with an unknown constant disturbance.
	// Sigma modification keeps the feedback gain bounded; the baseline
	// variant below shows the drift it prevents.
	"sigma-mod": {
		Scenario:   "sigma-mod",
		Kind:       KindMRAC,
		Integrator: "rk4",
		Dt:         0.01,
		Duration:   30,
		Plant: PlantConfig{
			A: [][]float64{{4}}, B: []float64{1}, C: []float64{1}, Bias: 10,
		},
		RefModel: RefModelConfig{
			A: [][]float64{{-1}}, B: []float64{1}, C: []float64{1}, Mode: "open",
		},
		Adaptive: AdaptiveConfig{
			GammaScalar: 1, Sigma: 1, KFixed: 1,
		},
		Command: CommandConfig{Type: "zero"},
		Init: InitConfig{
			XP: []float64{5}, XM: []float64{0}, Controller: []float64{0},
		},
	},

	// Same setup without leakage; the gain drifts without bound.
	"sigma-mod-off": {
		Scenario:   "sigma-mod-off",
		Kind:       KindMRAC,
		Integrator: "rk4",
		Dt:         0.01,
		Duration:   30,
		Plant: PlantConfig{
			A: [][]float64{{4}}, B: []float64{1}, C: []float64{1}, Bias: 10,
		},
		RefModel: RefModelConfig{
			A: [][]float64{{-1}}, B: []float64{1}, C: []float64{1}, Mode: "open",
		},
		Adaptive: AdaptiveConfig{
			GammaScalar: 1, Sigma: 0, KFixed: 1,
		},
		Command: CommandConfig{Type: "zero"},
		Init: InitConfig{
			XP: []float64{5}, XM: []float64{0}, Controller: []float64{0},
		},
	},

	// Input saturation at |u| <= 10 with the deficit-observer protection
	// scheme. Controller state is [theta, k, beta_delta, e_delta].
	"saturation": {
		Scenario:   "saturation",
		Kind:       KindMRAC,
		Integrator: "rk4",
		Dt:         0.01,
		Duration:   20,
		Plant: PlantConfig{
			A: [][]float64{{1}}, B: []float64{1}, C: []float64{1},
			Saturate: true, UMax: 10,
		},
		RefModel: RefModelConfig{
			A: [][]float64{{-1}}, B: []float64{1}, C: []float64{1}, Mode: "open",
		},
		Adaptive: AdaptiveConfig{
			Gamma:                [][]float64{{0.1, 0}, {0, 0.1}},
			AdaptFeedforward:     true,
			SaturationProtection: true,
			GammaBeta:            1,
		},
		Command: CommandConfig{Type: "sine", Amp: 5, Freq: 0.5},
		Init: InitConfig{
			XP: []float64{-9.99}, XM: []float64{-9.9},
			Controller: []float64{-2.2, 1.1, 0, 0},
		},
	},

	// Same saturated plant without protection, for comparison.
	"saturation-unprotected": {
		Scenario:   "saturation-unprotected",
		Kind:       KindMRAC,
		Integrator: "rk4",
		Dt:         0.01,
		Duration:   20,
		Plant: PlantConfig{
			A: [][]float64{{1}}, B: []float64{1}, C: []float64{1},
			Saturate: true, UMax: 10,
		},
		RefModel: RefModelConfig{
			A: [][]float64{{-1}}, B: []float64{1}, C: []float64{1}, Mode: "open",
		},
		Adaptive: AdaptiveConfig{
			Gamma:            [][]float64{{0.1, 0}, {0, 0.1}},
			AdaptFeedforward: true,
		},
		Command: CommandConfig{Type: "sine", Amp: 5, Freq: 0.5},
		Init: InitConfig{
			XP: []float64{-9.99}, XM: []float64{-9.9},
			Controller: []float64{-2.2, 1.1},
		},
	},

	// High-gain adaptation with an open-loop reference model: large
	// transient oscillations after the step command.
	"orm": {
		Scenario:   "orm",
		Kind:       KindMRAC,
		Integrator: "rk4",
		Dt:         0.01,
		Duration:   30,
		Plant: PlantConfig{
			A: [][]float64{{1}}, B: []float64{2}, C: []float64{1},
		},
		RefModel: RefModelConfig{
			A: [][]float64{{-1}}, B: []float64{1}, C: []float64{1}, Mode: "open",
		},
		Adaptive: AdaptiveConfig{
			GammaScalar:      100,
			AdaptFeedforward: true,
		},
		Command: CommandConfig{Type: "step", Amp: 1, Start: 5},
		Init: InitConfig{
			XP: []float64{0}, XM: []float64{0}, Controller: []float64{0, 0},
		},
	},

	// Same plant and gains with the closed-loop reference model pulled
	// toward the plant by the error feedback; the transient smooths out.
	"crm": {
		Scenario:   "crm",
		Kind:       KindMRAC,
		Integrator: "rk4",
		Dt:         0.01,
		Duration:   30,
		Plant: PlantConfig{
			A: [][]float64{{1}}, B: []float64{2}, C: []float64{1},
		},
		RefModel: RefModelConfig{
			A: [][]float64{{-1}}, B: []float64{1}, C: []float64{1},
			Mode: "closed", L: -100,
		},
		Adaptive: AdaptiveConfig{
			GammaScalar:      100,
			AdaptFeedforward: true,
		},
		Command: CommandConfig{Type: "step", Amp: 1, Start: 5},
		Init: InitConfig{
			XP: []float64{0}, XM: []float64{0}, Controller: []float64{0, 0},
		},
	},

	// First-order motor G = 1/(Js+b) with unknown inertia and damping,
	// tracked by an adaptive PI controller.
	"adaptive-pi": {
		Scenario:   "adaptive-pi",
		Kind:       KindPI,
		Integrator: "rk4",
		Dt:         0.01,
		Duration:   30,
		PI: PIConfig{
			Inertia: 2, Damping: 0.5,
			K: 1, Lambda: 1, Gamma1: 1, Gamma2: 1,
			Adaptive: true,
		},
		Command: CommandConfig{Type: "sine", Amp: 1, Freq: 0.5},
		Init: InitConfig{
			XP: []float64{0}, Controller: []float64{0.1, 2, 0},
		},
	},

	// Two-input two-output gradient law with the stacked regressor.
	"mimo": {
		Scenario:   "mimo",
		Kind:       KindMIMO,
		Integrator: "rk4",
		Dt:         0.01,
		Duration:   20,
		MIMO: MIMOConfig{
			A: [][]float64{
				{0, 1, 0, 0},
				{-2, -3, 1, 0},
				{0, 0, 0, 1},
				{1, 0, -2, -3},
			},
			B: [][]float64{
				{0, 0},
				{1, 0},
				{0, 0},
				{0, 1},
			},
			C: [][]float64{
				{1, 0, 0, 0},
				{0, 0, 1, 0},
			},
			RefA: [][]float64{{-1, 0}, {0, -1}},
			RefB: [][]float64{{1, 0}, {0, 1}},
			RefC: [][]float64{{1, 0}, {0, 1}},

			Gamma: 1,
		},
		Command: CommandConfig{
			Type: "step", Amp: 1, Start: 1,
			Type2: "zero",
		},
		Init: InitConfig{
			XP: []float64{0, 0, 0, 0},
			XM: []float64{0, 0},
			Controller: []float64{
				0, 0, 0, 0,
				0, 0, 0, 0,
			},
		},
	},
}

// GetPreset returns a deep copy of the named preset.
func GetPreset(name string) (*Config, error) {
	p, ok := presets[name]
	if !ok {
		return nil, dynamo.Configf("preset", "unknown preset %q", name)
	}
	return p.Clone(), nil
}

func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
