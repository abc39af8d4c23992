package refdata

import (
	"fmt"

	"sidamp/pkg/device"
	"sidamp/pkg/solver"
)

// Supply and process constants shared by the presets. The skew compensates
// the nominal 12V rail for the voltage the chips actually saw.
const (
	voltageSkew = 1.015
	Vdd         = 12.0 * voltageSkew
	Vt          = 1.31

	ekvUt = 0.026
	ekvN  = 1.4
)

// Preset bundles the two stages and the sweep window a transfer analysis
// runs with.
type Preset struct {
	Chip   Chip
	Model  device.ModelKind
	Input  solver.Stage
	Output solver.Stage

	SweepStart float64
	SweepStop  float64
	SweepStep  float64
	Seed       float64
}

// Quadratic6581 is the calibrated quadratic-law circuit for the 6581.
//
// The input stage feeds the load gate back from the output node and runs
// its driver in triode from Vi; the output stage is a saturated-load
// inverter driven from Vx. The geometry assignment reproduces the measured
// table: Vo(5.60) = 1.20, unity crossing near Vi = 4.45, Vo(2.40) = 10.16.
// The crossing sits 0.09V low of the measured 4.54, so Vo(4.54) comes out
// at 3.95 rather than the measured 4.54; see DESIGN.md for the geometry
// calibration this derives from.
func Quadratic6581() Preset {
	// Kp = 2 makes the balance coefficients exactly W/L.
	quad := func(w, l float64) device.Params {
		return device.Params{Model: device.Quadratic, Vt: Vt, W: w, L: l, Kp: 2.0}
	}

	input := solver.Stage{
		Load:    solver.Element{Params: quad(26, 58), Gate: solver.NodeOutput, Mode: device.Saturation},
		Driver:  solver.Element{Params: quad(664, 19), Gate: solver.NodeInput, Mode: device.Triode},
		Unknown: solver.NodeInternal,
		Branch:  solver.BranchHigh,
		Vdd:     Vdd,
	}
	output := solver.Stage{
		Load:    solver.Element{Params: quad(40, 19), Gate: solver.NodeSupply, Mode: device.Saturation},
		Driver:  solver.Element{Params: quad(73, 19), Gate: solver.NodeInternal, Mode: device.Saturation},
		Unknown: solver.NodeOutput,
		Branch:  solver.BranchLow,
		Vdd:     Vdd,
	}

	return Preset{
		Chip:       Chip6581,
		Model:      device.Quadratic,
		Input:      input,
		Output:     output,
		SweepStart: 5.60,
		SweepStop:  2.40,
		SweepStep:  -0.1,
		Seed:       4.54,
	}
}

// EKV6581 is the all-region circuit for the 6581, wired as a follower:
// the input-stage load gate takes Vi directly and the driver gate closes
// the loop from Vo. The balance is monotone in the unknown node, so the
// bracketed root finder always isolates it.
func EKV6581() Preset {
	ekv := func(w, l float64) device.Params {
		return device.Params{Model: device.EKV, Vt: Vt, W: w, L: l, Kp: 1.0, Ut: ekvUt, N: ekvN}
	}

	input := solver.Stage{
		Load:    solver.Element{Params: ekv(73, 19), Gate: solver.NodeInput},
		Driver:  solver.Element{Params: ekv(26, 58), Gate: solver.NodeOutput},
		Unknown: solver.NodeInternal,
		Vdd:     Vdd,
	}
	output := solver.Stage{
		Load:    solver.Element{Params: ekv(40, 19), Gate: solver.NodeSupply},
		Driver:  solver.Element{Params: ekv(664, 19), Gate: solver.NodeInternal},
		Unknown: solver.NodeOutput,
		Vdd:     Vdd,
	}

	return Preset{
		Chip:       Chip6581,
		Model:      device.EKV,
		Input:      input,
		Output:     output,
		SweepStart: 5.60,
		SweepStop:  2.40,
		SweepStep:  -0.1,
		Seed:       4.54,
	}
}

// PresetFor returns the circuit preset for a chip and model kind. Only the
// 6581 has a solvable circuit description; the 8580 is covered by its
// measured table alone.
func PresetFor(chip Chip, kind device.ModelKind) (Preset, error) {
	if chip != Chip6581 {
		return Preset{}, fmt.Errorf("no circuit preset for chip %d: %w", chip, ErrUnknownChip)
	}
	switch kind {
	case device.Quadratic:
		return Quadratic6581(), nil
	case device.EKV:
		return EKV6581(), nil
	default:
		return Preset{}, fmt.Errorf("no circuit preset for model %s", kind)
	}
}
