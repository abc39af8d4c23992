package fit_test

import (
	"errors"
	"testing"

	"sidamp/pkg/fit"
	"sidamp/pkg/refdata"
)

func TestRefineEmptyReference(t *testing.T) {
	_, _, err := fit.Refine(nil, fit.Parameters{Q: 1, B: 1, V: 1})
	if !errors.Is(err, fit.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestRefineNeverWorsens(t *testing.T) {
	reference, _ := refdata.ByChip(refdata.Chip6581)
	start, _ := refdata.InitialParams(refdata.Chip6581)

	model, _ := fit.NewModel(reference)
	startScore, err := model.Score(start, reference)
	if err != nil {
		t.Fatalf("scoring start params failed: %v", err)
	}

	params, score, err := fit.Refine(reference, start)
	if err != nil {
		t.Fatalf("Refine failed: %v", err)
	}
	if score > startScore {
		t.Errorf("refined score %.9f worse than start %.9f", score, startScore)
	}
	if params.Q <= 0 || params.V <= 0 {
		t.Errorf("refined parameters left the positive domain: %+v", params)
	}
	t.Logf("start %.9f -> refined %.9f", startScore, score)
}
