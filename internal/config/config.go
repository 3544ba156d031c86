// Package config defines the scenario-configuration schema, yaml
// loading, and the named presets reproducing the classic adaptive-control
// experiments.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/controldev/mracsim/internal/dynamo"
)

// Scenario kinds.
const (
	KindMRAC = "mrac"
	KindPI   = "pi"
	KindMIMO = "mimo"
)

const (
	DefaultDt       = 0.01
	DefaultDuration = 30.0
)

// Config is one simulation scenario: plant, reference model, adaptive law,
// command profile, initial conditions, and horizon.
type Config struct {
	Scenario   string  `yaml:"scenario"`
	Kind       string  `yaml:"kind"`
	Integrator string  `yaml:"integrator"`
	Dt         float64 `yaml:"dt"`
	Duration   float64 `yaml:"duration"`
	Steps      int     `yaml:"steps"`

	Plant    PlantConfig    `yaml:"plant"`
	RefModel RefModelConfig `yaml:"ref_model"`
	Adaptive AdaptiveConfig `yaml:"adaptive"`
	PI       PIConfig       `yaml:"adaptive_pi"`
	MIMO     MIMOConfig     `yaml:"mimo"`
	Command  CommandConfig  `yaml:"command"`
	Init     InitConfig     `yaml:"init"`
}

type PlantConfig struct {
	A    [][]float64 `yaml:"a"`
	B    []float64   `yaml:"b"`
	C    []float64   `yaml:"c"`
	Bias float64     `yaml:"bias"`

	Saturate bool    `yaml:"saturate"`
	UMax     float64 `yaml:"u_max"`
}

type RefModelConfig struct {
	A    [][]float64 `yaml:"a"`
	B    []float64   `yaml:"b"`
	C    []float64   `yaml:"c"`
	Mode string      `yaml:"mode"`
	L    float64     `yaml:"l"`
}

// AdaptiveConfig configures the gradient law. Gamma takes a full matrix;
// the scalar shorthand GammaScalar means gamma*I sized to the regressor.
type AdaptiveConfig struct {
	Gamma       [][]float64 `yaml:"gamma"`
	GammaScalar float64     `yaml:"gamma_scalar"`
	Sigma       float64     `yaml:"sigma"`

	AdaptFeedforward bool    `yaml:"adapt_feedforward"`
	KFixed           float64 `yaml:"k_fixed"`

	SaturationProtection bool    `yaml:"saturation_protection"`
	GammaBeta            float64 `yaml:"gamma_beta"`
}

// PIConfig configures the adaptive PI scenario: the true motor parameters
// and the controller gains.
type PIConfig struct {
	Inertia float64 `yaml:"inertia"`
	Damping float64 `yaml:"damping"`

	K        float64 `yaml:"k"`
	Lambda   float64 `yaml:"lambda"`
	Gamma1   float64 `yaml:"gamma1"`
	Gamma2   float64 `yaml:"gamma2"`
	Adaptive bool    `yaml:"adaptive"`
}

// MIMOConfig configures the multivariable scenario with full matrices.
type MIMOConfig struct {
	A [][]float64 `yaml:"a"`
	B [][]float64 `yaml:"b"`
	C [][]float64 `yaml:"c"`

	RefA [][]float64 `yaml:"ref_a"`
	RefB [][]float64 `yaml:"ref_b"`
	RefC [][]float64 `yaml:"ref_c"`

	Gamma float64 `yaml:"gamma"`
}

type CommandConfig struct {
	Type  string  `yaml:"type"`
	Amp   float64 `yaml:"amp"`
	Freq  float64 `yaml:"freq"`
	Start float64 `yaml:"start"`

	// Second channel for two-input MIMO scenarios.
	Type2 string  `yaml:"type2"`
	Amp2  float64 `yaml:"amp2"`
	Freq2 float64 `yaml:"freq2"`
}

type InitConfig struct {
	XP         []float64 `yaml:"x_p"`
	XM         []float64 `yaml:"x_m"`
	Controller []float64 `yaml:"controller"`
}

func DefaultConfig() *Config {
	return &Config{
		Kind:       KindMRAC,
		Integrator: "rk4",
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
	}
}

// Validate checks the envelope; component-level consistency (dimensions,
// positive definiteness) is checked by the constructors during build.
func (c *Config) Validate() error {
	switch c.Kind {
	case KindMRAC, KindPI, KindMIMO:
	default:
		return dynamo.Configf("kind", "unknown scenario kind %q", c.Kind)
	}
	if c.Dt <= 0 {
		return dynamo.Configf("dt", "must be positive, got %v", c.Dt)
	}
	if c.Steps <= 0 && c.Duration <= 0 {
		return dynamo.Configf("horizon", "need steps or duration")
	}
	if c.Plant.Saturate && c.Plant.UMax <= 0 {
		return dynamo.Configf("plant.u_max", "must be positive with saturation, got %v", c.Plant.UMax)
	}
	switch c.Integrator {
	case "", "rk4", "euler":
	default:
		return dynamo.Configf("integrator", "unknown integrator %q", c.Integrator)
	}
	return nil
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone deep-copies the configuration so sweeps can perturb fields
// without sharing slices.
func (c *Config) Clone() *Config {
	out := *c
	out.Plant.A = copyMatrix(c.Plant.A)
	out.Plant.B = copyVec(c.Plant.B)
	out.Plant.C = copyVec(c.Plant.C)
	out.RefModel.A = copyMatrix(c.RefModel.A)
	out.RefModel.B = copyVec(c.RefModel.B)
	out.RefModel.C = copyVec(c.RefModel.C)
	out.Adaptive.Gamma = copyMatrix(c.Adaptive.Gamma)
	out.MIMO.A = copyMatrix(c.MIMO.A)
	out.MIMO.B = copyMatrix(c.MIMO.B)
	out.MIMO.C = copyMatrix(c.MIMO.C)
	out.MIMO.RefA = copyMatrix(c.MIMO.RefA)
	out.MIMO.RefB = copyMatrix(c.MIMO.RefB)
	out.MIMO.RefC = copyMatrix(c.MIMO.RefC)
	out.Init.XP = copyVec(c.Init.XP)
	out.Init.XM = copyVec(c.Init.XM)
	out.Init.Controller = copyVec(c.Init.Controller)
	return &out
}

func copyVec(v []float64) []float64 {
	if v == nil {
		return nil
	}
	out := make([]float64, len(v))
	copy(out, v)
	return out
}

func copyMatrix(m [][]float64) [][]float64 {
	if m == nil {
		return nil
	}
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = copyVec(row)
	}
	return out
}
