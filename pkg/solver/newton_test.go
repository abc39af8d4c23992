package solver_test

import (
	"math"
	"testing"

	"sidamp/pkg/refdata"
	"sidamp/pkg/solver"
)

// fixedPoint runs the per-stage Gauss-Seidel iteration directly, the same
// scheme the transfer sweep uses.
func fixedPoint(t *testing.T, input, output solver.Stage, vi, voSeed float64) (vx, vo float64) {
	t.Helper()
	vo = voSeed

	for iter := 0; iter < 100; iter++ {
		nv := solver.NodeVoltages{Vi: vi, Vo: vo}
		opX, err := input.Solve(nv)
		if err != nil {
			t.Fatalf("input stage at Vi=%.3f: %v", vi, err)
		}
		vx = opX.Voltage

		nv.Vx = vx
		opO, err := output.Solve(nv)
		if err != nil {
			t.Fatalf("output stage at Vi=%.3f: %v", vi, err)
		}

		if math.Abs(opO.Voltage-vo) < 1e-9 {
			return vx, opO.Voltage
		}
		vo = opO.Voltage
	}

	t.Fatalf("fixed point did not settle at Vi=%.3f", vi)
	return 0, 0
}

func TestCoupledNewtonAgreesWithFixedPoint(t *testing.T) {
	preset := refdata.Quadratic6581()

	newton, err := solver.NewCoupled(preset.Input, preset.Output)
	if err != nil {
		t.Fatalf("NewCoupled failed: %v", err)
	}
	defer newton.Destroy()

	vt := preset.Input.Driver.Params.Vt
	for _, vi := range []float64{3.0, 4.54, 5.60} {
		wantVx, wantVo := fixedPoint(t, preset.Input, preset.Output, vi, 4.54)

		vx, vo, err := newton.Solve(vi, vi-vt+2.0, 4.54)
		if err != nil {
			t.Fatalf("Vi=%.2f: newton solve failed: %v", vi, err)
		}

		if diff := math.Abs(vx - wantVx); diff > 1e-6 {
			t.Errorf("Vi=%.2f: Vx newton=%.9f fixed=%.9f diff=%g", vi, vx, wantVx, diff)
		}
		if diff := math.Abs(vo - wantVo); diff > 1e-6 {
			t.Errorf("Vi=%.2f: Vo newton=%.9f fixed=%.9f diff=%g", vi, vo, wantVo, diff)
		}
		t.Logf("Vi=%.2f: Vx=%.6f Vo=%.6f", vi, vx, vo)
	}
}
