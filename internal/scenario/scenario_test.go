package scenario_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/seirsim/internal/dynamo"
	"github.com/san-kum/seirsim/internal/epidemic"
	"github.com/san-kum/seirsim/internal/scenario"
)

func noteFor(sc *scenario.Scenario, quantity string) (scenario.Note, bool) {
	for _, n := range sc.Notes() {
		if n.Quantity == quantity {
			return n, true
		}
	}
	return scenario.Note{}, false
}

var _ = Describe("Spec", func() {
	Describe("Baseline", func() {
		It("uses the reference parameters and seeds", func() {
			sc, err := scenario.Baseline().Build()
			Expect(err).NotTo(HaveOccurred())

			Expect(sc.Params()).To(Equal(epidemic.Params{N: 1000, Alpha: 0.1, Beta: 0.2, Gamma: 0.1, Mu: 3.2e-5}))
			Expect(sc.Initial()).To(Equal(epidemic.Compartments{S: 999, E: 1, I: 1, R: 0}))
			Expect(sc.Label()).To(Equal("Baseline"))
		})

		It("samples 80 points across 80 days", func() {
			sc, err := scenario.Baseline().Build()
			Expect(err).NotTo(HaveOccurred())

			grid := sc.Grid()
			Expect(grid).To(HaveLen(80))
			Expect(grid.Start()).To(Equal(0.0))
			Expect(grid.End()).To(Equal(80.0))
			Expect(grid[1]).To(BeNumerically("~", 80.0/79, 1e-12))
		})

		It("leaves the exposed seed outside S0", func() {
			sc, err := scenario.Baseline().Build()
			Expect(err).NotTo(HaveOccurred())

			Expect(sc.Initial().Total()).To(Equal(1001.0))
			note, ok := noteFor(sc, "S0")
			Expect(ok).To(BeTrue())
			Expect(note.Rationale).To(Equal("N - M - I0 - R0"))
		})
	})

	Describe("Intervention", func() {
		var sc *scenario.Scenario

		BeforeEach(func() {
			var err error
			sc, err = scenario.Intervention().Build()
			Expect(err).NotTo(HaveOccurred())
		})

		It("removes the compliant share and rescales the seeds", func() {
			init := sc.Initial()
			Expect(init.I).To(BeNumerically("~", 0.1, 1e-12))
			Expect(init.E).To(BeNumerically("~", 0.9, 1e-12))
			Expect(init.R).To(Equal(0.0))
			Expect(init.S).To(BeNumerically("~", 899.9, 1e-9))
		})

		It("slows incubation and keeps the other rates", func() {
			p := sc.Params()
			Expect(p.Alpha).To(BeNumerically("~", 0.09, 1e-12))
			Expect(p.Beta).To(Equal(0.2))
			Expect(p.Gamma).To(Equal(0.1))
			Expect(p.Mu).To(Equal(3.2e-5))
			Expect(p.N).To(Equal(1000.0))
		})

		It("records each derived quantity", func() {
			for _, q := range []string{"M", "I0", "E0", "alpha", "S0"} {
				_, ok := noteFor(sc, q)
				Expect(ok).To(BeTrue(), "missing note for %s", q)
			}
			m, _ := noteFor(sc, "M")
			Expect(m.Value).To(BeNumerically("~", 100, 1e-12))
		})

		It("does not modify the baseline spec", func() {
			Expect(scenario.Baseline().Hygiene).To(BeNil())
		})
	})

	Describe("Closed", func() {
		It("switches off vital dynamics", func() {
			sc, err := scenario.Closed().Build()
			Expect(err).NotTo(HaveOccurred())
			Expect(sc.Params().Mu).To(Equal(0.0))
			Expect(sc.Initial()).To(Equal(epidemic.Compartments{S: 999, E: 1, I: 1}))
		})
	})

	Describe("CarveExposed", func() {
		It("subtracts E0 from S0", func() {
			spec := scenario.Baseline()
			spec.CarveExposed = true

			sc, err := spec.Build()
			Expect(err).NotTo(HaveOccurred())
			Expect(sc.Initial().S).To(Equal(998.0))
			Expect(sc.Initial().Total()).To(Equal(1000.0))
		})

		It("applies after the hygiene scaling", func() {
			spec := scenario.Intervention()
			spec.CarveExposed = true

			sc, err := spec.Build()
			Expect(err).NotTo(HaveOccurred())
			Expect(sc.Initial().S).To(BeNumerically("~", 899.0, 1e-9))
		})
	})

	Describe("validation", func() {
		DescribeTable("rejects bad specs",
			func(mutate func(*scenario.Spec)) {
				spec := scenario.Baseline()
				mutate(&spec)

				sc, err := spec.Build()
				Expect(sc).To(BeNil())
				Expect(errors.Is(err, dynamo.ErrInvalidParameter)).To(BeTrue(), "got %v", err)
			},
			Entry("empty name", func(s *scenario.Spec) { s.Name = "" }),
			Entry("nan beta", func(s *scenario.Spec) { s.Rates.Beta = math.NaN() }),
			Entry("infinite population", func(s *scenario.Spec) { s.Population = math.Inf(1) }),
			Entry("nan seed", func(s *scenario.Spec) { s.Initial.Infected = math.NaN() }),
			Entry("no grid points", func(s *scenario.Spec) { s.Grid.Points = 0 }),
			Entry("reversed grid", func(s *scenario.Spec) { s.Grid.Stop = -1 }),
			Entry("nan hygiene", func(s *scenario.Spec) {
				s.Hygiene = scenario.DefaultHygiene()
				s.Hygiene.CompliantFraction = math.NaN()
			}),
		)

		It("names the scenario in build errors", func() {
			spec := scenario.Baseline()
			spec.Rates.Gamma = math.Inf(-1)

			_, err := spec.Build()
			Expect(err).To(MatchError(ContainSubstring("scenario baseline")))
			var perr *dynamo.InvalidParameterError
			Expect(errors.As(err, &perr)).To(BeTrue())
			Expect(perr.Name).To(Equal("gamma"))
		})
	})
})

var _ = Describe("Scenario", func() {
	params := map[string]float64{"n": 1000, "alpha": 0.1, "beta": 0.2, "gamma": 0.1, "mu": 0}

	It("builds from a raw vector", func() {
		sc, err := scenario.FromVector("raw", "", params, []float64{999, 1, 1, 0}, dynamo.Linspace(0, 10, 11))
		Expect(err).NotTo(HaveOccurred())
		Expect(sc.Label()).To(Equal("raw"))
		Expect(sc.State()).To(Equal(dynamo.State{999, 1, 1, 0}))
	})

	It("rejects a vector of the wrong arity", func() {
		_, err := scenario.FromVector("raw", "", params, []float64{999, 1, 1}, dynamo.Linspace(0, 10, 11))
		var perr *dynamo.InvalidParameterError
		Expect(errors.As(err, &perr)).To(BeTrue())
		Expect(perr.Name).To(Equal("initial"))
	})

	It("rejects a missing parameter", func() {
		_, err := scenario.FromVector("raw", "", map[string]float64{"n": 1}, []float64{1, 0, 0, 0}, dynamo.Grid{0, 1})
		Expect(errors.Is(err, dynamo.ErrInvalidParameter)).To(BeTrue())
	})

	It("hands out copies", func() {
		sc, err := scenario.Intervention().Build()
		Expect(err).NotTo(HaveOccurred())

		grid := sc.Grid()
		grid[0] = 42
		Expect(sc.Grid()[0]).To(Equal(0.0))

		notes := sc.Notes()
		notes[0].Value = -1
		Expect(sc.Notes()[0].Value).NotTo(Equal(-1.0))

		x := sc.State()
		x[0] = 0
		Expect(sc.State()[0]).To(BeNumerically("~", 899.9, 1e-9))

		sys := sc.System()
		Expect(sys.SetParam("beta", 9)).To(Succeed())
		Expect(sc.Params().Beta).To(Equal(0.2))
	})

	It("copies the caller's grid", func() {
		grid := dynamo.Linspace(0, 1, 3)
		sc, err := scenario.FromVector("raw", "", params, []float64{1, 0, 0, 0}, grid)
		Expect(err).NotTo(HaveOccurred())
		grid[2] = 99
		Expect(sc.Grid().End()).To(Equal(1.0))
	})

	It("derives variants with WithParam", func() {
		sc, err := scenario.Baseline().Build()
		Expect(err).NotTo(HaveOccurred())

		hot, err := sc.WithParam("beta", 0.4)
		Expect(err).NotTo(HaveOccurred())
		Expect(hot.Params().Beta).To(Equal(0.4))
		Expect(sc.Params().Beta).To(Equal(0.2))

		_, err = sc.WithParam("delta", 1)
		Expect(errors.Is(err, dynamo.ErrInvalidParameter)).To(BeTrue())
	})

	It("reports R0 at the initial susceptible count", func() {
		sc, err := scenario.Baseline().Build()
		Expect(err).NotTo(HaveOccurred())
		want := 0.2 * 999 * 0.1 / ((0.1 + 3.2e-5) * (0.1 + 3.2e-5))
		Expect(sc.R0()).To(BeNumerically("~", want, 1e-9))
	})
})
