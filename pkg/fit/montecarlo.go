package fit

import (
	"context"
	"math"
	"math/rand"
)

const (
	paramFloor   = 1e-6 // smallest value Q and V may take
	perturbSigma = 1e-4 // stddev of the multiplicative step
)

// Status is the terminal state of an optimizer run.
type Status int

const (
	StatusOptimal   Status = iota // score reached exactly zero
	StatusExhausted               // trial budget ran out
	StatusCanceled                // context canceled
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusExhausted:
		return "exhausted"
	case StatusCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Config holds the optimizer knobs.
type Config struct {
	MaxTrials int
	Rand      *rand.Rand
	// Progress, when set, is called each time a strictly better candidate
	// is accepted.
	Progress func(p Parameters, score float64)
}

func DefaultConfig() Config {
	return Config{
		MaxTrials: 100000,
		Rand:      rand.New(rand.NewSource(1)),
	}
}

// Result of an optimizer run. Params always carries the parameters that
// achieved Score.
type Result struct {
	Params Parameters
	Score  float64
	Status Status
	Trials int
}

// Optimize runs a Monte Carlo local search for logistic parameters against
// the reference table, starting from start.
//
// Each trial perturbs every parameter independently with 50% probability by
// a multiplicative draw from N(1, sigma); Q and V are floored when a draw
// goes non-positive. A strictly better candidate becomes the new best. A
// candidate scoring exactly the current best replaces the walking point
// without touching the recorded best, so plateaus can be crossed. Candidates
// that leave the model domain are rejected.
func Optimize(ctx context.Context, reference []Sample, start Parameters, cfg Config) (Result, error) {
	model, err := NewModel(reference)
	if err != nil {
		return Result{}, err
	}

	if cfg.Rand == nil {
		cfg.Rand = DefaultConfig().Rand
	}

	bestScore := math.Inf(1)
	if score, err := model.Score(start, reference); err == nil {
		bestScore = score
	}
	best := start
	current := start

	res := Result{Params: best, Score: bestScore, Status: StatusExhausted}
	if bestScore == 0 {
		res.Status = StatusOptimal
		return res, nil
	}

	for trial := 0; trial < cfg.MaxTrials; trial++ {
		if ctx.Err() != nil {
			res.Status = StatusCanceled
			res.Trials = trial
			return res, nil
		}

		candidate := perturb(current, cfg.Rand)

		score, err := model.Score(candidate, reference)
		if err != nil {
			continue
		}

		switch {
		case score < bestScore:
			best, bestScore = candidate, score
			current = candidate
			res.Params, res.Score = best, bestScore
			if cfg.Progress != nil {
				cfg.Progress(best, bestScore)
			}
		case score == bestScore:
			current = candidate
		}

		if bestScore == 0 {
			res.Status = StatusOptimal
			res.Trials = trial + 1
			return res, nil
		}
	}

	res.Trials = cfg.MaxTrials
	return res, nil
}

// perturb redraws until at least one parameter actually moved.
func perturb(p Parameters, rng *rand.Rand) Parameters {
	for {
		next := p

		if rng.Float64() < 0.5 {
			next.Q *= 1.0 + perturbSigma*rng.NormFloat64()
			if next.Q <= 0 {
				next.Q = paramFloor
			}
		}
		if rng.Float64() < 0.5 {
			next.B *= 1.0 + perturbSigma*rng.NormFloat64()
		}
		if rng.Float64() < 0.5 {
			next.V *= 1.0 + perturbSigma*rng.NormFloat64()
			if next.V <= 0 {
				next.V = paramFloor
			}
		}

		if next != p {
			return next
		}
	}
}
