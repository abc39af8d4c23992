package device

import (
	"math"

	"sidamp/internal/consts"
)

// Current returns the drain-source current of the device. The quadratic law
// uses the assumed conduction mode; EKV covers all regions and ignores it.
func (p Params) Current(mode Mode, t TerminalVoltages) float64 {
	switch p.Model {
	case EKV:
		return p.ekvCurrent(t)
	default:
		return p.quadraticCurrent(mode, t)
	}
}

// quadraticCurrent evaluates the level-1 law in its signed
// difference-of-squares form:
//
//	Ids = Kp/2 * W/L * (Vgst^2 - Vgdt^2)
//
// with the Vgdt term dropped in saturation. The squares are not clamped;
// the closed-form stage balance depends on the law being defined on the
// whole real line. Callers check the mode preconditions separately.
func (p Params) quadraticCurrent(mode Mode, t TerminalVoltages) float64 {
	k := p.Kp / 2.0 * p.WL()
	vgst := t.Vg - t.Vs - p.Vt
	if mode == Saturation {
		return k * vgst * vgst
	}
	vgdt := t.Vg - t.Vd - p.Vt
	return k * (vgst*vgst - vgdt*vgdt)
}

// ekvCurrent evaluates the EKV all-region law:
//
//	Ids = Is * (if - ir)
//	Is  = 2*N*Kp*W/L*Ut^2
//	if  = ln(1 + e^((Vp-Vs)/2Ut))^2, ir likewise with Vd
//	Vp  = (Vg - Vt)/N
func (p Params) ekvCurrent(t TerminalVoltages) float64 {
	ut := p.Ut
	if ut == 0 {
		ut = consts.ThermalVoltage(27.0)
	}

	is := 2.0 * p.N * p.Kp * p.WL() * ut * ut
	vp := (t.Vg - p.Vt) / p.N

	fwd := softplus((vp - t.Vs) / (2.0 * ut))
	rev := softplus((vp - t.Vd) / (2.0 * ut))
	return is * (fwd*fwd - rev*rev)
}

// softplus is ln(1 + e^x), switched to its asymptote before exp overflows.
func softplus(x float64) float64 {
	if x > 34.0 {
		return x + math.Log1p(math.Exp(-x))
	}
	return math.Log1p(math.Exp(x))
}

// Conducting reports whether the gate overdrive at the source is positive.
func (p Params) Conducting(t TerminalVoltages) bool {
	return t.Vg-t.Vs-p.Vt > 0
}

// Saturated reports whether the drain end of the channel is pinched off,
// the precondition for dropping the Vgdt term.
func (p Params) Saturated(t TerminalVoltages) bool {
	return t.Vg-t.Vd-p.Vt <= 0
}
