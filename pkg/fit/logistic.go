package fit

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidInput means the reference data cannot seed a fit.
	ErrInvalidInput = errors.New("invalid reference data")

	// ErrDomain means the model left its numeric domain for the
	// candidate parameters.
	ErrDomain = errors.New("model domain error")
)

// Sample is one (Vin, Vout) pair of a transfer curve.
type Sample struct {
	Vin  float64
	Vout float64
}

// Parameters of the generalized logistic function. Q and V must stay
// positive; B may take either sign.
type Parameters struct {
	Q float64
	B float64
	V float64
}

func (p Parameters) String() string {
	return fmt.Sprintf("q = %.17g\nb = %.17g\nv = %.17g", p.Q, p.B, p.V)
}

// Model is a generalized logistic transfer function anchored at the first
// reference sample: Vmin is its input, Vmax its output.
//
//	Vsim = Vmin + (Vmax-Vmin) / (1 + Q*e^(B*(Vin-Vmin)))^(1/V)
type Model struct {
	Vmin float64
	Vmax float64
}

func NewModel(reference []Sample) (Model, error) {
	if len(reference) == 0 {
		return Model{}, fmt.Errorf("empty reference table: %w", ErrInvalidInput)
	}
	return Model{Vmin: reference[0].Vin, Vmax: reference[0].Vout}, nil
}

// Simulate evaluates the model at vin.
func (m Model) Simulate(p Parameters, vin float64) (float64, error) {
	if p.V == 0 {
		return 0, fmt.Errorf("v=0: %w", ErrDomain)
	}

	base := 1.0 + p.Q*math.Exp(p.B*(vin-m.Vmin))
	if base <= 0 {
		return 0, fmt.Errorf("pow base %g: %w", base, ErrDomain)
	}

	val := m.Vmin + (m.Vmax-m.Vmin)/math.Pow(base, 1.0/p.V)
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return 0, fmt.Errorf("non-finite model value: %w", ErrDomain)
	}
	return val, nil
}

// Score is the root of the summed squared relative errors against the
// reference table. Lower is better; zero is a perfect fit.
func (m Model) Score(p Parameters, reference []Sample) (float64, error) {
	sum := 0.0
	for _, ref := range reference {
		sim, err := m.Simulate(p, ref.Vin)
		if err != nil {
			return 0, err
		}
		diff := (sim - ref.Vout) / ref.Vout
		sum += diff * diff
	}
	return math.Sqrt(sum), nil
}
