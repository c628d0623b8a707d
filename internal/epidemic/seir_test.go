package epidemic_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/seirsim/internal/dynamo"
	"github.com/san-kum/seirsim/internal/epidemic"
)

var _ = Describe("SEIR", func() {
	var params epidemic.Params

	BeforeEach(func() {
		params = epidemic.Params{N: 1000, Alpha: 0.1, Beta: 0.2, Gamma: 0.1, Mu: 3.2e-5}
	})

	Describe("Derive", func() {
		It("evaluates the mass-action right-hand side", func() {
			sys := epidemic.NewSEIR(params)
			dx := sys.Derive(dynamo.State{999, 1, 1, 0}, 0)

			Expect(dx).To(HaveLen(4))
			Expect(dx[epidemic.S]).To(BeNumerically("~", 3.2e-5*1000-0.2*999*1-3.2e-5*999, 1e-12))
			Expect(dx[epidemic.E]).To(BeNumerically("~", 0.2*999-0.1-3.2e-5, 1e-12))
			Expect(dx[epidemic.I]).To(BeNumerically("~", 0.1-0.1-3.2e-5, 1e-12))
			Expect(dx[epidemic.R]).To(BeNumerically("~", 0.1, 1e-12))
		})

		It("does not normalise incidence by N", func() {
			small := epidemic.NewSEIR(epidemic.Params{N: 10, Beta: 0.2})
			large := epidemic.NewSEIR(epidemic.Params{N: 1e6, Beta: 0.2})
			x := dynamo.State{500, 0, 2, 0}

			Expect(small.Derive(x, 0)[epidemic.E]).To(Equal(large.Derive(x, 0)[epidemic.E]))
			Expect(small.Derive(x, 0)[epidemic.E]).To(BeNumerically("~", 200, 1e-12))
		})

		It("is independent of time", func() {
			sys := epidemic.NewSEIR(params)
			x := dynamo.State{800, 50, 30, 120}
			Expect(sys.Derive(x, 0)).To(Equal(sys.Derive(x, 42.5)))
		})

		It("does not modify its input", func() {
			sys := epidemic.NewSEIR(params)
			x := dynamo.State{800, 50, 30, 120}
			sys.Derive(x, 0)
			Expect(x).To(Equal(dynamo.State{800, 50, 30, 120}))
		})

		It("conserves the total when mu is zero", func() {
			params.Mu = 0
			sys := epidemic.NewSEIR(params)
			dx := sys.Derive(dynamo.State{640, 120, 90, 150}, 0)
			Expect(dx.Sum()).To(BeNumerically("~", 0, 1e-12))
		})

		It("lets the total relax toward N when mu is positive", func() {
			sys := epidemic.NewSEIR(params)
			dx := sys.Derive(dynamo.State{500, 0, 0, 0}, 0)
			Expect(dx.Sum()).To(BeNumerically("~", params.Mu*(params.N-500), 1e-15))
		})
	})

	Describe("parameters", func() {
		It("round-trips through the Configurable interface", func() {
			var sys dynamo.Configurable = epidemic.NewSEIR(params)
			Expect(sys.SetParam("beta", 0.5)).To(Succeed())
			Expect(sys.GetParams()).To(HaveKeyWithValue("beta", 0.5))
			Expect(sys.SetParam("delta", 1)).NotTo(Succeed())
		})

		It("clones independently", func() {
			sys := epidemic.NewSEIR(params)
			c := sys.Clone()
			Expect(c.SetParam("alpha", 9)).To(Succeed())
			Expect(sys.Alpha).To(Equal(0.1))
		})

		DescribeTable("rejects non-finite values",
			func(mutate func(*epidemic.Params), name string) {
				mutate(&params)
				err := params.Validate()
				var pe *dynamo.InvalidParameterError
				Expect(errors.As(err, &pe)).To(BeTrue())
				Expect(pe.Name).To(Equal(name))
				Expect(errors.Is(err, dynamo.ErrInvalidParameter)).To(BeTrue())
			},
			Entry("N", func(p *epidemic.Params) { p.N = math.NaN() }, "n"),
			Entry("alpha", func(p *epidemic.Params) { p.Alpha = math.Inf(1) }, "alpha"),
			Entry("beta", func(p *epidemic.Params) { p.Beta = math.Inf(-1) }, "beta"),
			Entry("gamma", func(p *epidemic.Params) { p.Gamma = math.NaN() }, "gamma"),
			Entry("mu", func(p *epidemic.Params) { p.Mu = math.NaN() }, "mu"),
		)

		It("accepts negative but finite values", func() {
			params.Beta = -0.2
			Expect(params.Validate()).To(Succeed())
		})

		It("reports missing names when built from a map", func() {
			_, err := epidemic.ParamsFromMap(map[string]float64{"n": 1000, "alpha": 0.1, "beta": 0.2, "gamma": 0.1})
			var pe *dynamo.InvalidParameterError
			Expect(errors.As(err, &pe)).To(BeTrue())
			Expect(pe.Name).To(Equal("mu"))

			p, err := epidemic.ParamsFromMap(params.Map())
			Expect(err).NotTo(HaveOccurred())
			Expect(p).To(Equal(params))
		})

		It("computes the mass-action reproduction number", func() {
			params.Mu = 0
			Expect(params.BasicReproductionNumber(999)).To(BeNumerically("~", 0.2*999, 1e-9))
			params.Beta = 1e-5
			Expect(params.BasicReproductionNumber(999)).To(BeNumerically("<", 1))
		})
	})

	Describe("Compartments", func() {
		It("maps to the S, E, I, R order", func() {
			c := epidemic.Compartments{S: 1, E: 2, I: 3, R: 4}
			Expect(c.State()).To(Equal(dynamo.State{1, 2, 3, 4}))
			Expect(c.Total()).To(Equal(10.0))
		})

		It("looks up indices by name", func() {
			idx, err := epidemic.CompartmentIndex("I")
			Expect(err).NotTo(HaveOccurred())
			Expect(idx).To(Equal(epidemic.I))
			_, err = epidemic.CompartmentIndex("D")
			Expect(err).To(HaveOccurred())
		})

		It("rejects vectors of the wrong arity", func() {
			_, err := epidemic.FromState([]float64{1, 2, 3})
			Expect(errors.Is(err, dynamo.ErrInvalidParameter)).To(BeTrue())

			c, err := epidemic.FromState([]float64{1, 2, 3, 4})
			Expect(err).NotTo(HaveOccurred())
			Expect(c.R).To(Equal(4.0))
		})

		It("rejects non-finite counts", func() {
			_, err := epidemic.FromState([]float64{1, math.NaN(), 3, 4})
			var pe *dynamo.InvalidParameterError
			Expect(errors.As(err, &pe)).To(BeTrue())
			Expect(pe.Name).To(Equal("E0"))
		})
	})
})
