package solver

import (
	"fmt"
	"math"

	"sidamp/pkg/device"
)

// Node identifies which circuit node feeds a gate.
type Node int

const (
	NodeInput    Node = iota // Vi
	NodeInternal             // Vx
	NodeOutput               // Vo
	NodeSupply               // Vdd
)

func (n Node) String() string {
	switch n {
	case NodeInput:
		return "Vi"
	case NodeInternal:
		return "Vx"
	case NodeOutput:
		return "Vo"
	case NodeSupply:
		return "Vdd"
	default:
		return "?"
	}
}

// Element is one transistor of a stage.
type Element struct {
	Params device.Params
	Gate   Node
	Mode   device.Mode
}

// Branch selects a root of the quadratic balance when both are real.
type Branch int

const (
	BranchHigh Branch = iota
	BranchLow
)

// Stage is a load/driver pair sharing one unknown node. The load hangs from
// Vdd with its source at the unknown node; the driver sits between the
// unknown node and ground.
type Stage struct {
	Load    Element
	Driver  Element
	Unknown Node
	Branch  Branch
	Vdd     float64
}

// NodeVoltages carries the known node voltages during a solve. The entry
// for the stage's unknown node is ignored.
type NodeVoltages struct {
	Vi float64
	Vx float64
	Vo float64
}

// OperatingPoint is the solved stage node. Valid is false when the voltage
// left the supply rails. Notes record violated mode assumptions; callers
// decide whether those are fatal.
type OperatingPoint struct {
	Voltage    float64
	Valid      bool
	Iterations int
	Bracket    float64
	Notes      []string
}

func (s Stage) nodeVoltage(n Node, nv NodeVoltages, x float64) float64 {
	if n == s.Unknown {
		return x
	}
	switch n {
	case NodeInput:
		return nv.Vi
	case NodeInternal:
		return nv.Vx
	case NodeOutput:
		return nv.Vo
	default:
		return s.Vdd
	}
}

func (s Stage) loadTerminals(nv NodeVoltages, x float64) device.TerminalVoltages {
	return device.TerminalVoltages{
		Vg: s.nodeVoltage(s.Load.Gate, nv, x),
		Vs: x,
		Vd: s.Vdd,
	}
}

func (s Stage) driverTerminals(nv NodeVoltages, x float64) device.TerminalVoltages {
	return device.TerminalVoltages{
		Vg: s.nodeVoltage(s.Driver.Gate, nv, x),
		Vs: 0,
		Vd: x,
	}
}

// Residual is the Kirchhoff current balance at the unknown node: load
// current in minus driver current out, evaluated at node voltage x.
func (s Stage) Residual(nv NodeVoltages, x float64) float64 {
	iLoad := s.Load.Params.Current(s.Load.Mode, s.loadTerminals(nv, x))
	iDriver := s.Driver.Params.Current(s.Driver.Mode, s.driverTerminals(nv, x))
	return iLoad - iDriver
}

// Solve balances the stage for its unknown node voltage. Quadratic stages
// with known gate feeds solve in closed form; everything else goes through
// Brent on the residual over [-1, Vdd+1].
func (s Stage) Solve(nv NodeVoltages) (OperatingPoint, error) {
	var op OperatingPoint
	var err error

	analytic := s.Load.Params.Model == device.Quadratic &&
		s.Driver.Params.Model == device.Quadratic &&
		s.Load.Gate != s.Unknown && s.Driver.Gate != s.Unknown

	if analytic {
		op, err = s.solveQuadratic(nv)
	} else {
		op, err = s.solveBracketed(nv)
	}
	if err != nil {
		return op, err
	}

	if op.Voltage <= 0 || op.Voltage >= s.Vdd {
		op.Valid = false
		return op, fmt.Errorf("node %s=%.6f outside rails (0, %.3f): %w",
			s.Unknown, op.Voltage, s.Vdd, ErrInvalidOperatingPoint)
	}
	op.Valid = true
	op.Notes = s.modeNotes(nv, op.Voltage)
	return op, nil
}

// solveQuadratic assembles the balance as A*x^2 + B*x + C = 0 and takes
// the configured root branch.
func (s Stage) solveQuadratic(nv NodeVoltages) (OperatingPoint, error) {
	var a, b, c float64

	kl := s.Load.Params.Kp / 2.0 * s.Load.Params.WL()
	gl := s.nodeVoltage(s.Load.Gate, nv, 0)
	cl := gl - s.Load.Params.Vt

	a += kl
	b -= 2.0 * kl * cl
	c += kl * cl * cl
	if s.Load.Mode == device.Triode {
		vgdt := gl - s.Vdd - s.Load.Params.Vt
		c -= kl * vgdt * vgdt
	}

	kd := s.Driver.Params.Kp / 2.0 * s.Driver.Params.WL()
	gd := s.nodeVoltage(s.Driver.Gate, nv, 0)
	cd := gd - s.Driver.Params.Vt

	if s.Driver.Mode == device.Saturation {
		c -= kd * cd * cd
	} else {
		a += kd
		b -= 2.0 * kd * cd
	}

	disc := b*b - 4.0*a*c
	if disc < 0 {
		return OperatingPoint{}, fmt.Errorf("balance has no real root: %w", ErrInvalidOperatingPoint)
	}

	sq := math.Sqrt(disc)
	x := (-b + sq) / (2.0 * a)
	if s.Branch == BranchLow {
		x = (-b - sq) / (2.0 * a)
	}
	return OperatingPoint{Voltage: x}, nil
}

func (s Stage) solveBracketed(nv NodeVoltages) (OperatingPoint, error) {
	res, err := FindRoot(func(x float64) float64 {
		return s.Residual(nv, x)
	}, -1.0, s.Vdd+1.0, 1e-12)
	if err != nil {
		return OperatingPoint{}, fmt.Errorf("stage %s: %w", s.Unknown, err)
	}
	return OperatingPoint{Voltage: res.Root, Iterations: res.Iterations, Bracket: res.Bracket}, nil
}

func (s Stage) modeNotes(nv NodeVoltages, x float64) []string {
	if s.Load.Params.Model != device.Quadratic {
		return nil
	}

	var notes []string
	check := func(role string, e Element, t device.TerminalVoltages) {
		if !e.Params.Conducting(t) {
			notes = append(notes, fmt.Sprintf("%s not conducting (vgst=%.3f)", role, t.Vg-t.Vs-e.Params.Vt))
		}
		if e.Mode == device.Saturation && !e.Params.Saturated(t) {
			notes = append(notes, fmt.Sprintf("%s assumed saturated, vgdt=%.3f", role, t.Vg-t.Vd-e.Params.Vt))
		}
	}
	check("load", s.Load, s.loadTerminals(nv, x))
	check("driver", s.Driver, s.driverTerminals(nv, x))
	return notes
}
