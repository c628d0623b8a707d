package scenario_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/seirsim/internal/dynamo"
	"github.com/san-kum/seirsim/internal/epidemic"
	"github.com/san-kum/seirsim/internal/integrators"
	"github.com/san-kum/seirsim/internal/scenario"
	"github.com/san-kum/seirsim/internal/sim"
)

func simulate(spec scenario.Spec) (*scenario.Scenario, *sim.Trajectory, error) {
	sc, err := spec.Build()
	if err != nil {
		return nil, nil, err
	}
	tr, err := sim.New(sc.System(), integrators.NewRK45()).Run(context.Background(), sc.State(), sc.Grid(), sim.DefaultOptions())
	return sc, tr, err
}

func peak(series []float64) (int, float64) {
	k := 0
	for i, v := range series {
		if v > series[k] {
			k = i
		}
	}
	return k, series[k]
}

var _ = Describe("Outbreak", func() {
	It("conserves the population without vital dynamics", func() {
		sc, tr, err := simulate(scenario.Closed())
		Expect(err).NotTo(HaveOccurred())

		total := sc.Initial().Total()
		for _, x := range tr.States {
			Expect(x.Sum()).To(BeNumerically("~", total, 1e-6))
		}
	})

	It("starts from the initial vector exactly", func() {
		sc, tr, err := simulate(scenario.Intervention())
		Expect(err).NotTo(HaveOccurred())
		Expect(tr.States[0]).To(Equal(sc.State()))
		Expect(tr.Times).To(Equal([]float64(sc.Grid())))
	})

	It("peaks inside the observation window and infects most of the population", func() {
		_, tr, err := simulate(scenario.Closed())
		Expect(err).NotTo(HaveOccurred())

		k, _ := peak(tr.Series(epidemic.I))
		Expect(tr.Times[k]).To(BeNumerically(">", 10))
		Expect(tr.Times[k]).To(BeNumerically("<", 40))
		Expect(tr.Final()[epidemic.R]).To(BeNumerically(">", 900))
	})

	It("lets exposed and infected rise and then fall", func() {
		sc, tr, err := simulate(scenario.Baseline())
		Expect(err).NotTo(HaveOccurred())
		Expect(sc.R0()).To(BeNumerically(">", 1))

		for _, c := range []int{epidemic.E, epidemic.I} {
			series := tr.Series(c)
			k, top := peak(series)
			Expect(top).To(BeNumerically(">", series[0]))
			Expect(k).To(BeNumerically("<", len(series)-1))
			Expect(series[len(series)-1]).To(BeNumerically("<", top))
		}
	})

	It("dies out below the epidemic threshold", func() {
		spec := scenario.Closed()
		spec.Rates.Beta = 1e-5

		sc, tr, err := simulate(spec)
		Expect(err).NotTo(HaveOccurred())
		Expect(sc.R0()).To(BeNumerically("<", 1))

		k, _ := peak(tr.Series(epidemic.I))
		Expect(k).To(Equal(0))
	})

	It("is insensitive to the output grid", func() {
		sc, coarse, err := simulate(scenario.Baseline())
		Expect(err).NotTo(HaveOccurred())

		fineGrid := sc.Grid().Refine(2)
		fine, err := sim.New(sc.System(), integrators.NewRK45()).Run(context.Background(), sc.State(), fineGrid, sim.DefaultOptions())
		Expect(err).NotTo(HaveOccurred())

		for k, x := range coarse.States {
			y := fine.States[2*k]
			for c := range x {
				Expect(math.Abs(y[c] - x[c])).To(BeNumerically("<=", 1e-6*math.Max(1, math.Abs(x[c]))))
			}
		}
	})

	It("flattens the curve under hygiene", func() {
		_, base, err := simulate(scenario.Baseline())
		Expect(err).NotTo(HaveOccurred())
		_, hyg, err := simulate(scenario.Intervention())
		Expect(err).NotTo(HaveOccurred())

		_, basePeak := peak(base.Series(epidemic.I))
		_, hygPeak := peak(hyg.Series(epidemic.I))
		Expect(hygPeak).To(BeNumerically("<", basePeak))
		Expect(basePeak).To(BeNumerically("~", 367.8, 0.5))
		Expect(hygPeak).To(BeNumerically("~", 313.8, 0.5))
	})

	It("lowers the peak slightly when E0 is carved out of S0", func() {
		_, ref, err := simulate(scenario.Baseline())
		Expect(err).NotTo(HaveOccurred())

		spec := scenario.Baseline()
		spec.CarveExposed = true
		_, carved, err := simulate(spec)
		Expect(err).NotTo(HaveOccurred())

		_, refPeak := peak(ref.Series(epidemic.I))
		_, carvedPeak := peak(carved.Series(epidemic.I))
		Expect(carvedPeak).To(BeNumerically("<", refPeak))
	})

	It("fails cleanly on an absurd transmission rate", func() {
		spec := scenario.Baseline()
		spec.Rates.Beta = 1e12

		_, tr, err := simulate(spec)
		Expect(tr).To(BeNil())

		var ierr *dynamo.IntegrationError
		Expect(errors.As(err, &ierr)).To(BeTrue(), "got %v", err)
		Expect(ierr.State.IsValid()).To(BeTrue())
	})

	It("runs baseline and intervention side by side", func() {
		base, err := scenario.Baseline().Build()
		Expect(err).NotTo(HaveOccurred())
		hyg, err := scenario.Intervention().Build()
		Expect(err).NotTo(HaveOccurred())

		e := sim.NewEnsemble(func() dynamo.Integrator { return integrators.NewRK45() }, sim.DefaultOptions())
		results, err := e.Run(context.Background(), []sim.Job{base.Job(nil), hyg.Job(nil)})
		Expect(err).NotTo(HaveOccurred())

		_, serial, err := simulate(scenario.Baseline())
		Expect(err).NotTo(HaveOccurred())
		Expect(results[0].States).To(Equal(serial.States))
		Expect(results[1].Final()[epidemic.R]).To(BeNumerically("<", results[0].Final()[epidemic.R]))
	})
})
