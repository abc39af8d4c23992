package fit_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"sidamp/pkg/fit"
	"sidamp/pkg/refdata"
)

func TestOptimizeEmptyReference(t *testing.T) {
	_, err := fit.Optimize(context.Background(), nil, fit.Parameters{Q: 1, B: 1, V: 1}, fit.DefaultConfig())
	if !errors.Is(err, fit.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestOptimizePerfectStartIsOptimal(t *testing.T) {
	reference := []fit.Sample{{Vin: 5, Vout: 5}}

	result, err := fit.Optimize(context.Background(), reference, fit.Parameters{Q: 1, B: 1, V: 1}, fit.DefaultConfig())
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
	if result.Status != fit.StatusOptimal {
		t.Errorf("status = %v, want optimal", result.Status)
	}
	if result.Score != 0 {
		t.Errorf("score = %g, want 0", result.Score)
	}
	if result.Trials != 0 {
		t.Errorf("trials = %d, want 0 for an already perfect start", result.Trials)
	}
}

func TestOptimizeImprovesMonotonically(t *testing.T) {
	reference, _ := refdata.ByChip(refdata.Chip6581)
	start, _ := refdata.InitialParams(refdata.Chip6581)

	var improvements []float64
	cfg := fit.Config{
		MaxTrials: 5000,
		Rand:      rand.New(rand.NewSource(42)),
		Progress: func(_ fit.Parameters, score float64) {
			improvements = append(improvements, score)
		},
	}

	result, err := fit.Optimize(context.Background(), reference, start, cfg)
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
	if result.Status != fit.StatusExhausted {
		t.Errorf("status = %v, want exhausted", result.Status)
	}
	if result.Trials != cfg.MaxTrials {
		t.Errorf("trials = %d, want %d", result.Trials, cfg.MaxTrials)
	}

	const startScore = 6.181291913060027
	if result.Score > startScore {
		t.Errorf("best score %.6f worse than start %.6f", result.Score, startScore)
	}
	for i := 1; i < len(improvements); i++ {
		if improvements[i] >= improvements[i-1] {
			t.Errorf("improvement %d not strictly better: %.9f -> %.9f",
				i, improvements[i-1], improvements[i])
		}
	}
	t.Logf("%d improvements, final score %.9f", len(improvements), result.Score)
}

func TestOptimizeReportedScoreMatchesParams(t *testing.T) {
	reference, _ := refdata.ByChip(refdata.Chip6581)
	start, _ := refdata.InitialParams(refdata.Chip6581)

	cfg := fit.Config{MaxTrials: 1000, Rand: rand.New(rand.NewSource(7))}
	result, err := fit.Optimize(context.Background(), reference, start, cfg)
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	model, _ := fit.NewModel(reference)
	score, err := model.Score(result.Params, reference)
	if err != nil {
		t.Fatalf("rescoring best params failed: %v", err)
	}
	if score != result.Score {
		t.Errorf("reported score %.17g, recomputed %.17g", result.Score, score)
	}
}

func TestOptimizeCanceledContext(t *testing.T) {
	reference, _ := refdata.ByChip(refdata.Chip6581)
	start, _ := refdata.InitialParams(refdata.Chip6581)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := fit.Optimize(ctx, reference, start, fit.DefaultConfig())
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
	if result.Status != fit.StatusCanceled {
		t.Errorf("status = %v, want canceled", result.Status)
	}
	if result.Trials != 0 {
		t.Errorf("trials = %d, want 0 after pre-canceled context", result.Trials)
	}
	if result.Params != start {
		t.Errorf("params changed despite immediate cancellation")
	}
}

func TestOptimizeDeterministicWithSeed(t *testing.T) {
	reference, _ := refdata.ByChip(refdata.Chip6581)
	start, _ := refdata.InitialParams(refdata.Chip6581)

	run := func() fit.Result {
		cfg := fit.Config{MaxTrials: 2000, Rand: rand.New(rand.NewSource(99))}
		result, err := fit.Optimize(context.Background(), reference, start, cfg)
		if err != nil {
			t.Fatalf("Optimize failed: %v", err)
		}
		return result
	}

	a, b := run(), run()
	if a.Params != b.Params || a.Score != b.Score {
		t.Errorf("seeded runs diverged: %+v vs %+v", a, b)
	}
}
