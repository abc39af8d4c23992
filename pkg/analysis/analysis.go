package analysis

import "math"

type Analysis interface {
	Setup() error
	Execute() error
	GetResults() map[string][]float64
}

type BaseAnalysis struct {
	results     map[string][]float64 // key: variable name, value: result by sweep point
	convergence struct {
		maxIter int
		abstol  float64
		reltol  float64
	}
}

func NewBaseAnalysis() *BaseAnalysis {
	ba := &BaseAnalysis{results: make(map[string][]float64)}

	ba.convergence.maxIter = 100
	ba.convergence.abstol = 1e-12
	ba.convergence.reltol = 1e-6

	return ba
}

func (a *BaseAnalysis) MaxIterations() int {
	return a.convergence.maxIter
}

func (a *BaseAnalysis) Converged(oldVal, newVal float64) bool {
	diff := math.Abs(newVal - oldVal)
	if diff > a.convergence.abstol && diff > a.convergence.reltol*math.Abs(newVal) {
		return false
	}
	return true
}

func (a *BaseAnalysis) StoreSweepResult(sweep float64, solution map[string]float64) {
	if _, exists := a.results["SWEEP1"]; !exists {
		a.results["SWEEP1"] = make([]float64, 0)
	}
	a.results["SWEEP1"] = append(a.results["SWEEP1"], sweep)

	for name, value := range solution {
		if _, exists := a.results[name]; !exists {
			a.results[name] = make([]float64, 0)
		}
		a.results[name] = append(a.results[name], value)
	}
}

func (a *BaseAnalysis) GetResults() map[string][]float64 {
	return a.results
}
