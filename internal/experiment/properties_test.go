package experiment_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/controldev/mracsim/internal/config"
	"github.com/controldev/mracsim/internal/experiment"
	"github.com/controldev/mracsim/internal/sim"
)

// leakageConfig is a first-order unstable plant with a constant input
// disturbance and no command, the minimal setup where the feedback gain
// drifts unless sigma modification bleeds it off. The drift and settling
// cases run this exact configuration and vary only sigma; the initial
// gain sits near the sigma = 0.1 equilibrium so the settled estimate is
// quiet well before the window the bound is checked over.
func leakageConfig(sigma float64) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Dt = 0.01
	cfg.Duration = 0
	cfg.Steps = 1000
	cfg.Plant = config.PlantConfig{
		A: [][]float64{{4}}, B: []float64{1}, C: []float64{1}, Bias: 1,
	}
	cfg.RefModel = config.RefModelConfig{
		A: [][]float64{{-1}}, B: []float64{1}, C: []float64{1}, Mode: "open",
	}
	cfg.Adaptive = config.AdaptiveConfig{GammaScalar: 1, Sigma: sigma, KFixed: 1}
	cfg.Command = config.CommandConfig{Type: "zero"}
	cfg.Init = config.InitConfig{
		XP: []float64{0.7}, XM: []float64{0}, Controller: []float64{-5.4},
	}
	return cfg
}

// secondOrderLeakageConfig is the order-2 form of the same experiment: a
// position/velocity plant destabilized through the position channel, with
// the disturbance entering alongside the control. At the sigma = 0.1
// equilibrium the velocity gain leaks away entirely, so the plant carries
// its own damping and both gains start at their settled values.
func secondOrderLeakageConfig(sigma float64) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Dt = 0.01
	cfg.Duration = 0
	cfg.Steps = 1000
	cfg.Plant = config.PlantConfig{
		A:    [][]float64{{0, 1}, {4, -3}},
		B:    []float64{0, 1},
		C:    []float64{1, 0},
		Bias: 1,
	}
	cfg.RefModel = config.RefModelConfig{
		A: [][]float64{{0, 1}, {-1, -2}}, B: []float64{0, 1}, C: []float64{1, 0}, Mode: "open",
	}
	cfg.Adaptive = config.AdaptiveConfig{GammaScalar: 1, Sigma: sigma, KFixed: 1}
	cfg.Command = config.CommandConfig{Type: "zero"}
	cfg.Init = config.InitConfig{
		XP: []float64{0.7325, 0}, XM: []float64{0, 0}, Controller: []float64{-5.365, 0},
	}
	return cfg
}

func gainNorm(theta []float64) float64 {
	s := 0.0
	for _, v := range theta {
		s += v * v
	}
	return math.Sqrt(s)
}

func run(cfg *config.Config) *sim.Result {
	GinkgoHelper()
	s, err := experiment.Build(cfg)
	Expect(err).NotTo(HaveOccurred())
	res, err := s.Run(context.Background())
	Expect(err).NotTo(HaveOccurred())
	Expect(res.Status).To(Equal(sim.Completed))
	return res
}

var _ = Describe("adaptive gain under a constant disturbance", func() {
	pairs := []struct {
		order string
		build func(sigma float64) *config.Config
	}{
		{"first-order", leakageConfig},
		{"second-order", secondOrderLeakageConfig},
	}

	for _, p := range pairs {
		Context("on the "+p.order+" plant", func() {
			When("sigma modification is off", func() {
				It("drifts without settling", func() {
					res := run(p.build(0))

					early := gainNorm(res.At(100).Theta)
					late := gainNorm(res.At(1000).Theta)
					Expect(late).To(BeNumerically(">", early+0.5),
						"gain should keep ratcheting up while the disturbance persists")
				})
			})

			When("sigma modification is on", func() {
				It("settles to a bounded gain with a nonzero residual error", func() {
					res := run(p.build(0.1))

					Expect(gainNorm(res.At(1000).Theta.Sub(res.At(800).Theta))).
						To(BeNumerically("<", 1e-3), "gain should have converged")

					e := res.Final().TrackingError()
					Expect(math.Abs(e[0])).To(BeNumerically(">", 0.1),
						"leakage trades drift for a steady-state tracking error")
				})
			})
		})
	}
})

var _ = Describe("saturation protection", func() {
	It("keeps the adapted gains no larger than the unprotected run", func() {
		protected, err := config.GetPreset("saturation")
		Expect(err).NotTo(HaveOccurred())
		unprotected, err := config.GetPreset("saturation-unprotected")
		Expect(err).NotTo(HaveOccurred())

		resP := run(protected)
		resU := run(unprotected)

		Expect(resP.Metrics["param_norm"]).
			To(BeNumerically("<=", resU.Metrics["param_norm"]))
	})

	It("reports time spent at the control limit", func() {
		cfg, err := config.GetPreset("saturation")
		Expect(err).NotTo(HaveOccurred())
		res := run(cfg)

		duty := res.Metrics["saturation_duty"]
		Expect(duty).To(BeNumerically(">", 0), "the command 5*sin drives u past 10 early on")
		Expect(duty).To(BeNumerically("<=", 1))
	})
})

var _ = Describe("closed-loop reference model", func() {
	It("reduces exactly to the open-loop model when the feedback gain is zero", func() {
		open, err := config.GetPreset("orm")
		Expect(err).NotTo(HaveOccurred())
		closed := open.Clone()
		closed.RefModel.Mode = "closed"
		closed.RefModel.L = 0

		resO := run(open)
		resC := run(closed)

		Expect(resC.Records).To(HaveLen(len(resO.Records)))
		for i := range resO.Records {
			Expect(resC.Records[i].XM).To(Equal(resO.Records[i].XM))
			Expect(resC.Records[i].XP).To(Equal(resO.Records[i].XP))
			Expect(resC.Records[i].Theta).To(Equal(resO.Records[i].Theta))
		}
	})

	It("damps the high-gain transient relative to the open-loop model", func() {
		orm, err := config.GetPreset("orm")
		Expect(err).NotTo(HaveOccurred())
		crm, err := config.GetPreset("crm")
		Expect(err).NotTo(HaveOccurred())

		resO := run(orm)
		resC := run(crm)

		Expect(resC.Metrics["control_effort"]).
			To(BeNumerically("<", resO.Metrics["control_effort"]))
	})
})

var _ = Describe("determinism", func() {
	It("produces identical histories for identical configurations", func() {
		cfg, err := config.GetPreset("sigma-mod")
		Expect(err).NotTo(HaveOccurred())
		cfg.Steps = 300

		a := run(cfg.Clone())
		b := run(cfg.Clone())

		Expect(a.Records).To(Equal(b.Records))
		Expect(a.Metrics).To(Equal(b.Metrics))
	})
})
