package device

// ModelKind selects the current law used for a transistor.
type ModelKind int

const (
	Quadratic ModelKind = iota
	EKV
)

func (k ModelKind) String() string {
	switch k {
	case Quadratic:
		return "quadratic"
	case EKV:
		return "ekv"
	default:
		return "unknown"
	}
}

// Mode is the assumed conduction mode of a device under the quadratic law.
type Mode int

const (
	Saturation Mode = iota
	Triode
)

func (m Mode) String() string {
	switch m {
	case Saturation:
		return "saturation"
	case Triode:
		return "triode"
	default:
		return "unknown"
	}
}

// TerminalVoltages are referenced to the grounded substrate.
type TerminalVoltages struct {
	Vg float64
	Vs float64
	Vd float64
}

// Params holds the per-device model parameters. Kp is the process
// transconductance coefficient; Ut and N are used by the EKV law only.
type Params struct {
	Model ModelKind
	Vt    float64 // threshold voltage
	W     float64 // channel width
	L     float64 // channel length
	Kp    float64 // uCox
	Ut    float64 // thermal voltage
	N     float64 // subthreshold slope factor
}

func (p Params) WL() float64 {
	return p.W / p.L
}
