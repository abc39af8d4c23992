package analysis

import (
	"fmt"
	"math"

	"sidamp/pkg/solver"
)

// Point is one sample of the voltage transfer curve.
type Point struct {
	Vin  float64
	Vout float64
}

// SampleFailure records a sweep point that did not produce a valid
// operating point. The sweep carries on past it.
type SampleFailure struct {
	Vin float64
	Err error
}

// TransferSweep walks the input voltage across a range and resolves the
// coupled (Vx, Vo) operating point at each step with a Gauss-Seidel fixed
// point over the two stages. The converged output seeds the next step.
type TransferSweep struct {
	*BaseAnalysis
	input  solver.Stage
	output solver.Stage

	start float64
	stop  float64
	step  float64
	seed  float64

	curve    []Point
	failures []SampleFailure
}

func NewTransferSweep(input, output solver.Stage, start, stop, step, seed float64) *TransferSweep {
	return &TransferSweep{
		BaseAnalysis: NewBaseAnalysis(),
		input:        input,
		output:       output,
		start:        start,
		stop:         stop,
		step:         step,
		seed:         seed,
	}
}

func (t *TransferSweep) Setup() error {
	if t.step == 0 {
		return fmt.Errorf("sweep step must be nonzero")
	}
	if (t.stop-t.start)*t.step < 0 {
		return fmt.Errorf("sweep step %g does not move %g toward %g", t.step, t.start, t.stop)
	}
	if t.input.Unknown != solver.NodeInternal || t.output.Unknown != solver.NodeOutput {
		return fmt.Errorf("stage unknowns must be Vx and Vo")
	}
	return nil
}

func (t *TransferSweep) Execute() error {
	n := int(math.Floor((t.stop-t.start)/t.step+0.5)) + 1
	seed := t.seed

	for i := 0; i < n; i++ {
		vi := t.start + float64(i)*t.step

		vx, vo, iters, err := t.solvePoint(vi, seed)
		if err != nil {
			t.failures = append(t.failures, SampleFailure{Vin: vi, Err: err})
			continue
		}

		seed = vo
		t.curve = append(t.curve, Point{Vin: vi, Vout: vo})
		t.StoreSweepResult(vi, map[string]float64{
			"V(x)":   vx,
			"V(out)": vo,
			"ITER":   float64(iters),
		})
	}

	return nil
}

// solvePoint alternates the two stage solves until the output voltage
// settles. The input stage sees the current output estimate through its
// feedback gate.
func (t *TransferSweep) solvePoint(vi, voSeed float64) (vx, vo float64, iters int, err error) {
	vo = voSeed

	for iters = 1; iters <= t.MaxIterations(); iters++ {
		nv := solver.NodeVoltages{Vi: vi, Vo: vo}

		opX, err := t.input.Solve(nv)
		if err != nil {
			return 0, 0, iters, fmt.Errorf("input stage at Vi=%.3f: %w", vi, err)
		}
		vx = opX.Voltage

		nv.Vx = vx
		opO, err := t.output.Solve(nv)
		if err != nil {
			return 0, 0, iters, fmt.Errorf("output stage at Vi=%.3f: %w", vi, err)
		}

		oldVo := vo
		vo = opO.Voltage
		if t.Converged(oldVo, vo) {
			return vx, vo, iters, nil
		}
	}

	return vx, vo, iters, fmt.Errorf("fixed point at Vi=%.3f: %w", vi, solver.ErrNoConvergence)
}

// Curve returns the solved samples in sweep order.
func (t *TransferSweep) Curve() []Point {
	return t.curve
}

// Failures returns the sweep points that were skipped.
func (t *TransferSweep) Failures() []SampleFailure {
	return t.failures
}
