package fit

import (
	"math"

	"github.com/maorshutman/lm"
)

// Refine polishes stochastic search output with a Levenberg-Marquardt pass
// over the same relative residuals. When LM fails or does not improve the
// score, the input parameters come back unchanged.
func Refine(reference []Sample, start Parameters) (Parameters, float64, error) {
	model, err := NewModel(reference)
	if err != nil {
		return start, 0, err
	}

	startScore := math.Inf(1)
	if s, err := model.Score(start, reference); err == nil {
		startScore = s
	}

	residuals := func(dst, x []float64) {
		p := Parameters{Q: x[0], B: x[1], V: x[2]}
		for i, ref := range reference {
			sim, err := model.Simulate(p, ref.Vin)
			if err != nil {
				dst[i] = 1e6
				continue
			}
			dst[i] = (sim - ref.Vout) / ref.Vout
		}
	}

	jac := lm.NumJac{Func: residuals}
	prob := lm.LMProblem{
		Dim:        3,
		Size:       len(reference),
		Func:       residuals,
		Jac:        jac.Jac,
		InitParams: []float64{start.Q, start.B, start.V},
		Tau:        1e-6,
		Eps1:       1e-8,
		Eps2:       1e-8,
	}

	results, err := lm.LM(prob, &lm.Settings{Iterations: 100, ObjectiveTol: 1e-16})
	if err != nil {
		return start, startScore, nil
	}

	refined := Parameters{Q: results.X[0], B: results.X[1], V: results.X[2]}
	if refined.Q <= 0 {
		refined.Q = paramFloor
	}
	if refined.V <= 0 {
		refined.V = paramFloor
	}

	score, err := model.Score(refined, reference)
	if err != nil || score >= startScore {
		return start, startScore, nil
	}
	return refined, score, nil
}
