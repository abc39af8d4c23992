package solver

import (
	"fmt"
	"math"

	"sidamp/pkg/matrix"
)

const jacobianDelta = 1e-7

// Coupled solves the two-node system {input balance, output balance}
// simultaneously by Newton-Raphson, stamping the finite-difference
// Jacobian into a sparse 2x2 system. It is the cross-check for the
// per-stage fixed point.
type Coupled struct {
	input  Stage
	output Stage
	mat    *matrix.Matrix

	maxIter int
	abstol  float64
	reltol  float64
	gmin    float64
}

func NewCoupled(input, output Stage) (*Coupled, error) {
	mat, err := matrix.New(2)
	if err != nil {
		return nil, err
	}
	mat.SetupElements()

	return &Coupled{
		input:   input,
		output:  output,
		mat:     mat,
		maxIter: 100,
		abstol:  1e-12,
		reltol:  1e-6,
		gmin:    1e-12,
	}, nil
}

func (c *Coupled) residuals(vi, vx, vo float64) (f1, f2 float64) {
	nv := NodeVoltages{Vi: vi, Vx: vx, Vo: vo}
	f1 = c.input.Residual(nv, vx)
	f2 = c.output.Residual(nv, vo)
	return f1, f2
}

// Solve iterates from the given seeds to the coupled operating point for
// input voltage vi. Steps are clamped to the rail bracket.
func (c *Coupled) Solve(vi, vxSeed, voSeed float64) (vx, vo float64, err error) {
	vx, vo = vxSeed, voSeed
	lo, hi := -1.0, c.input.Vdd+1.0

	for iter := 0; iter < c.maxIter; iter++ {
		f1, f2 := c.residuals(vi, vx, vo)

		j11 := (firstOf(c.residuals(vi, vx+jacobianDelta, vo)) - f1) / jacobianDelta
		j12 := (firstOf(c.residuals(vi, vx, vo+jacobianDelta)) - f1) / jacobianDelta
		j21 := (secondOf(c.residuals(vi, vx+jacobianDelta, vo)) - f2) / jacobianDelta
		j22 := (secondOf(c.residuals(vi, vx, vo+jacobianDelta)) - f2) / jacobianDelta

		c.mat.Clear()
		c.mat.AddElement(1, 1, j11)
		c.mat.AddElement(1, 2, j12)
		c.mat.AddElement(2, 1, j21)
		c.mat.AddElement(2, 2, j22)
		c.mat.LoadGmin(c.gmin)
		c.mat.AddRHS(1, -f1)
		c.mat.AddRHS(2, -f2)

		if err := c.mat.Solve(); err != nil {
			return vx, vo, fmt.Errorf("newton iteration %d: %w", iter, err)
		}

		sol := c.mat.Solution()
		dx, do := sol[1], sol[2]

		vx = clamp(vx+dx, lo, hi)
		vo = clamp(vo+do, lo, hi)

		if c.converged(dx, vx) && c.converged(do, vo) {
			return vx, vo, nil
		}
	}

	return vx, vo, fmt.Errorf("coupled solve at Vi=%.3f: %w", vi, ErrNoConvergence)
}

func (c *Coupled) converged(delta, value float64) bool {
	d := math.Abs(delta)
	return d <= c.abstol || d <= c.reltol*math.Abs(value)
}

func (c *Coupled) Destroy() {
	c.mat.Destroy()
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func firstOf(a, _ float64) float64  { return a }
func secondOf(_, b float64) float64 { return b }
