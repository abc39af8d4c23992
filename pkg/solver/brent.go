package solver

import (
	"fmt"
	"math"
)

const maxRootIter = 100

// RootFunc is a scalar function whose zero is sought.
type RootFunc func(x float64) float64

// RootResult reports the located root, the final bracket width and the
// number of iterations spent.
type RootResult struct {
	Root       float64
	Bracket    float64
	Iterations int
}

// FindRoot locates a zero of f in [lo, hi] with Brent's method, combining
// bisection, secant steps and inverse quadratic interpolation. f(lo) and
// f(hi) must differ in sign.
func FindRoot(f RootFunc, lo, hi, tol float64) (RootResult, error) {
	a, b := lo, hi
	fa, fb := f(a), f(b)

	if fa == 0 {
		return RootResult{Root: a, Bracket: 0}, nil
	}
	if fb == 0 {
		return RootResult{Root: b, Bracket: 0}, nil
	}
	if (fa > 0) == (fb > 0) {
		return RootResult{}, fmt.Errorf("f(%g)=%g, f(%g)=%g: %w", lo, fa, hi, fb, ErrInvalidBracket)
	}

	c, fc := b, fb
	var d, e float64

	for iter := 1; iter <= maxRootIter; iter++ {
		if (fb > 0) == (fc > 0) {
			c, fc = a, fa
			d = b - a
			e = d
		}
		if math.Abs(fc) < math.Abs(fb) {
			a, b, c = b, c, b
			fa, fb, fc = fb, fc, fb
		}

		tol1 := 2.0*machEps*math.Abs(b) + 0.5*tol
		xm := 0.5 * (c - b)
		if math.Abs(xm) <= tol1 || fb == 0 {
			return RootResult{Root: b, Bracket: math.Abs(c - b), Iterations: iter}, nil
		}

		if math.Abs(e) >= tol1 && math.Abs(fa) > math.Abs(fb) {
			// Try interpolation: secant when a == c, inverse quadratic otherwise.
			var p, q float64
			s := fb / fa
			if a == c {
				p = 2.0 * xm * s
				q = 1.0 - s
			} else {
				q = fa / fc
				r := fb / fc
				p = s * (2.0*xm*q*(q-r) - (b-a)*(r-1.0))
				q = (q - 1.0) * (r - 1.0) * (s - 1.0)
			}
			if p > 0 {
				q = -q
			}
			p = math.Abs(p)

			min1 := 3.0*xm*q - math.Abs(tol1*q)
			min2 := math.Abs(e * q)
			if 2.0*p < math.Min(min1, min2) {
				e = d
				d = p / q
			} else {
				d = xm
				e = d
			}
		} else {
			d = xm
			e = d
		}

		a, fa = b, fb
		if math.Abs(d) > tol1 {
			b += d
		} else {
			b += math.Copysign(tol1, xm)
		}
		fb = f(b)
	}

	return RootResult{Root: b, Bracket: math.Abs(c - b), Iterations: maxRootIter},
		fmt.Errorf("bracket still %g wide after %d iterations: %w", math.Abs(c-b), maxRootIter, ErrNoConvergence)
}

const machEps = 2.220446049250313e-16
