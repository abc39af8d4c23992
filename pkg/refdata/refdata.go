// Package refdata carries the measured op-amp transfer tables for the two
// chip revisions, the logistic parameters previously fitted to them, and
// the circuit presets the solvers run from.
package refdata

import (
	"errors"
	"fmt"

	"sidamp/pkg/fit"
)

// Chip identifies a SID revision.
type Chip int

const (
	Chip6581 Chip = 6581
	Chip8580 Chip = 8580
)

var ErrUnknownChip = errors.New("unknown chip model")

// Measured voltage pairs, sampled from silicon. The first entry anchors the
// logistic model: its Vin is Vmin, its Vout is Vmax.
var reference6581 = []fit.Sample{
	{Vin: 0.81, Vout: 10.31},
	{Vin: 2.40, Vout: 10.31},
	{Vin: 2.60, Vout: 10.30},
	{Vin: 2.70, Vout: 10.29},
	{Vin: 2.80, Vout: 10.26},
	{Vin: 2.90, Vout: 10.17},
	{Vin: 3.00, Vout: 10.04},
	{Vin: 3.10, Vout: 9.83},
	{Vin: 3.20, Vout: 9.58},
	{Vin: 3.30, Vout: 9.32},
	{Vin: 3.50, Vout: 8.69},
	{Vin: 3.70, Vout: 8.00},
	{Vin: 4.00, Vout: 6.89},
	{Vin: 4.40, Vout: 5.21},
	{Vin: 4.54, Vout: 4.54},
	{Vin: 4.60, Vout: 4.19},
	{Vin: 4.80, Vout: 3.00},
	{Vin: 4.90, Vout: 2.30},
	{Vin: 4.95, Vout: 2.03},
	{Vin: 5.00, Vout: 1.88},
	{Vin: 5.05, Vout: 1.77},
	{Vin: 5.10, Vout: 1.69},
	{Vin: 5.20, Vout: 1.58},
	{Vin: 5.40, Vout: 1.44},
	{Vin: 5.60, Vout: 1.33},
	{Vin: 5.80, Vout: 1.26},
	{Vin: 6.00, Vout: 1.21},
	{Vin: 6.40, Vout: 1.12},
	{Vin: 7.00, Vout: 1.02},
	{Vin: 7.50, Vout: 0.97},
	{Vin: 8.50, Vout: 0.89},
	{Vin: 10.00, Vout: 0.81},
	{Vin: 10.31, Vout: 0.81},
}

var reference8580 = []fit.Sample{
	{Vin: 1.30, Vout: 8.91},
	{Vin: 4.76, Vout: 8.91},
	{Vin: 4.77, Vout: 8.90},
	{Vin: 4.78, Vout: 8.88},
	{Vin: 4.785, Vout: 8.86},
	{Vin: 4.79, Vout: 8.80},
	{Vin: 4.795, Vout: 8.60},
	{Vin: 4.80, Vout: 8.25},
	{Vin: 4.805, Vout: 7.50},
	{Vin: 4.81, Vout: 6.10},
	{Vin: 4.815, Vout: 4.05},
	{Vin: 4.82, Vout: 2.27},
	{Vin: 4.825, Vout: 1.65},
	{Vin: 4.83, Vout: 1.55},
	{Vin: 4.84, Vout: 1.47},
	{Vin: 4.85, Vout: 1.43},
	{Vin: 4.87, Vout: 1.37},
	{Vin: 4.90, Vout: 1.34},
	{Vin: 5.00, Vout: 1.30},
	{Vin: 5.10, Vout: 1.30},
	{Vin: 8.91, Vout: 1.30},
}

// ByChip returns the measured reference table for a chip revision.
func ByChip(chip Chip) ([]fit.Sample, error) {
	switch chip {
	case Chip6581:
		return reference6581, nil
	case Chip8580:
		return reference8580, nil
	default:
		return nil, fmt.Errorf("chip %d: %w", chip, ErrUnknownChip)
	}
}

// InitialParams returns the best previously known logistic parameters for
// a chip, the seed for further optimization.
func InitialParams(chip Chip) (fit.Parameters, error) {
	switch chip {
	case Chip6581:
		return fit.Parameters{
			Q: 5.5285312141864937e-05,
			B: 2.1608922897100533,
			V: 0.67181935418132133,
		}, nil
	case Chip8580:
		return fit.Parameters{
			Q: 2.4325259082487039e-310,
			B: 147.10522534153901,
			V: 0.010293750527798712,
		}, nil
	default:
		return fit.Parameters{}, fmt.Errorf("chip %d: %w", chip, ErrUnknownChip)
	}
}
